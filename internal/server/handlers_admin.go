package server

import (
	"net/http"

	"quill/internal/api"
	"quill/internal/models"
	"quill/internal/store"
)

// pathEntity resolves {entity}, writing a 404 for unknown names.
func (s *Server) pathEntity(w http.ResponseWriter, r *http.Request) (models.Entity, bool) {
	entity, err := normalizeEntity(r.PathValue("entity"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return "", false
	}
	return entity, true
}

func (s *Server) pathEntityID(w http.ResponseWriter, r *http.Request) (models.Entity, string, bool) {
	entity, ok := s.pathEntity(w, r)
	if !ok {
		return "", "", false
	}
	id, err := requirePathID(r, entityPrefix(entity))
	if err != nil {
		s.writeServiceError(w, r, err)
		return "", "", false
	}
	return entity, id, true
}

func (s *Server) handleAdminList(w http.ResponseWriter, r *http.Request) {
	entity, ok := s.pathEntity(w, r)
	if !ok {
		return
	}
	q, err := parseAdminListQuery(r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	ctx := r.Context()
	switch entity {
	case models.EntityArticle:
		items, total, err := s.articleService.List(ctx, q.articleFilter())
		writeAdminList(s, w, r, entity, q.Scope, items, total, err)
	case models.EntityComment:
		items, total, err := s.commentService.List(ctx, q.commentFilter())
		writeAdminList(s, w, r, entity, q.Scope, items, total, err)
	default:
		kind, _ := termKindFor(entity)
		items, total, err := s.taxonomyService.List(ctx, kind, q.termFilter())
		writeAdminList(s, w, r, entity, q.Scope, items, total, err)
	}
}

func writeAdminList[T any](s *Server, w http.ResponseWriter, r *http.Request, entity models.Entity, scope models.Scope, items []T, total int, err error) {
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if items == nil {
		items = []T{}
	}
	s.writeJSON(w, http.StatusOK, api.AdminListResponse[T]{
		Entity: string(entity),
		Scope:  string(scope),
		Total:  total,
		Items:  items,
	})
}

func (s *Server) handleAdminGet(w http.ResponseWriter, r *http.Request) {
	entity, id, ok := s.pathEntityID(w, r)
	if !ok {
		return
	}
	scope, err := normalizeScope(r.URL.Query().Get("scope"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	var record any
	switch entity {
	case models.EntityArticle:
		record, err = s.articleService.Get(r.Context(), id, scope)
	case models.EntityComment:
		record, err = s.commentService.Get(r.Context(), id, scope)
	default:
		kind, _ := termKindFor(entity)
		record, err = s.taxonomyService.Get(r.Context(), kind, id, scope)
	}
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, record)
}

func (s *Server) handleAdminCreate(w http.ResponseWriter, r *http.Request) {
	entity, ok := s.pathEntity(w, r)
	if !ok {
		return
	}
	actor := currentPrincipal(r).actor()

	var record any
	var err error
	switch entity {
	case models.EntityArticle:
		var req api.ArticleCreateRequest
		if !s.decodeJSONReq(w, r, &req) {
			return
		}
		record, err = s.articleService.Create(r.Context(), req, actor)
	case models.EntityComment:
		var req api.CommentAdminCreateRequest
		if !s.decodeJSONReq(w, r, &req) {
			return
		}
		record, err = s.commentService.AdminCreate(r.Context(), req, actor)
	default:
		var req api.TermCreateRequest
		if !s.decodeJSONReq(w, r, &req) {
			return
		}
		kind, _ := termKindFor(entity)
		record, err = s.taxonomyService.Create(r.Context(), kind, req, actor)
	}
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, record)
}

func (s *Server) handleAdminUpdate(w http.ResponseWriter, r *http.Request) {
	entity, id, ok := s.pathEntityID(w, r)
	if !ok {
		return
	}
	actor := currentPrincipal(r).actor()

	var record any
	var err error
	switch entity {
	case models.EntityArticle:
		var req api.ArticleUpdateRequest
		if !s.decodeJSONReq(w, r, &req) {
			return
		}
		record, err = s.articleService.Update(r.Context(), id, req, actor)
	case models.EntityComment:
		var req api.CommentUpdateRequest
		if !s.decodeJSONReq(w, r, &req) {
			return
		}
		record, err = s.commentService.Update(r.Context(), id, req, actor)
	default:
		var req api.TermUpdateRequest
		if !s.decodeJSONReq(w, r, &req) {
			return
		}
		kind, _ := termKindFor(entity)
		record, err = s.taxonomyService.Update(r.Context(), kind, id, req, actor)
	}
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, record)
}

func (s *Server) handleAdminDeleteOne(w http.ResponseWriter, r *http.Request) {
	entity, id, ok := s.pathEntityID(w, r)
	if !ok {
		return
	}
	result, err := s.auditService.DeleteOne(r.Context(), entity, id, currentPrincipal(r).actor())
	s.writeBulkResult(w, r, result, err)
}

func (s *Server) handleAdminRestoreOne(w http.ResponseWriter, r *http.Request) {
	entity, id, ok := s.pathEntityID(w, r)
	if !ok {
		return
	}
	result, err := s.auditService.RestoreOne(r.Context(), entity, id)
	s.writeBulkResult(w, r, result, err)
}

func (s *Server) handleAdminBulkDelete(w http.ResponseWriter, r *http.Request) {
	entity, ok := s.pathEntity(w, r)
	if !ok {
		return
	}
	ids, ok := s.decodeIDsReq(w, r, entityPrefix(entity))
	if !ok {
		return
	}
	result, err := s.auditService.Delete(r.Context(), entity, ids, currentPrincipal(r).actor())
	s.writeBulkResult(w, r, result, err)
}

func (s *Server) handleAdminBulkRestore(w http.ResponseWriter, r *http.Request) {
	entity, ok := s.pathEntity(w, r)
	if !ok {
		return
	}
	ids, ok := s.decodeIDsReq(w, r, entityPrefix(entity))
	if !ok {
		return
	}
	result, err := s.auditService.Restore(r.Context(), entity, ids)
	s.writeBulkResult(w, r, result, err)
}

func (s *Server) handleAdminPurge(w http.ResponseWriter, r *http.Request) {
	entity, id, ok := s.pathEntityID(w, r)
	if !ok {
		return
	}
	result, err := s.auditService.Purge(r.Context(), entity, id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	purged := result.PurgedFiles
	if purged == nil {
		purged = []string{}
	}
	s.writeJSON(w, http.StatusOK, api.PurgeResponse{
		Entity:      string(result.Entity),
		ID:          result.ID,
		Deleted:     true,
		PurgedFiles: purged,
	})
}

func (s *Server) handlePublishArticles(w http.ResponseWriter, r *http.Request) {
	ids, ok := s.decodeIDsReq(w, r, store.PrefixArticle)
	if !ok {
		return
	}
	result, err := s.articleService.Publish(r.Context(), ids, currentPrincipal(r).actor())
	s.writeBulkResult(w, r, result, err)
}

func (s *Server) handleApproveComments(w http.ResponseWriter, r *http.Request) {
	ids, ok := s.decodeIDsReq(w, r, store.PrefixComment)
	if !ok {
		return
	}
	result, err := s.commentService.Approve(r.Context(), ids, currentPrincipal(r).actor())
	s.writeBulkResult(w, r, result, err)
}

func (s *Server) writeBulkResult(w http.ResponseWriter, r *http.Request, result BulkResult, err error) {
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.BulkActionResponse{
		Entity:  string(result.Entity),
		Action:  result.Action,
		Count:   result.Count,
		Message: result.Message,
	})
}
