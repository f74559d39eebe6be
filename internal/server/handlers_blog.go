package server

import (
	"fmt"
	"net/http"
	"strings"

	"quill/internal/api"
	"quill/internal/models"
)

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	resp, err := s.articleService.Home(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListArticles(w http.ResponseWriter, r *http.Request) {
	page, err := queryIntDefault(r, "page", 1)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	query := r.URL.Query()
	search := strings.TrimSpace(query.Get("q"))
	if len(search) > maxSearchQueryLength {
		s.writeServiceError(w, r, badRequestCode(fmt.Errorf("q must be at most %d characters", maxSearchQueryLength), ErrCodeInvalidSearchQuery))
		return
	}
	resp, err := s.articleService.PublicList(r.Context(), PublicQuery{
		Page:     page,
		Category: query.Get("category"),
		Tag:      query.Get("tag"),
		Search:   search,
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleArticleDetail(w http.ResponseWriter, r *http.Request) {
	resp, err := s.articleService.Detail(r.Context(), r.PathValue("slug"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleLikeArticle(w http.ResponseWriter, r *http.Request) {
	resp, err := s.articleService.Like(r.Context(), r.PathValue("slug"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAddComment(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	if user == nil {
		s.writeServiceError(w, r, forbidden(fmt.Errorf("commenting requires a user session")))
		return
	}
	var req api.CommentCreateRequest
	if !s.decodeJSONReq(w, r, &req) {
		return
	}
	comment, err := s.commentService.Create(r.Context(), r.PathValue("slug"), req, user)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, comment)
}

func (s *Server) handlePublicCategories(w http.ResponseWriter, r *http.Request) {
	s.writePublicTerms(w, r, models.TermCategory)
}

func (s *Server) handlePublicTags(w http.ResponseWriter, r *http.Request) {
	s.writePublicTerms(w, r, models.TermTag)
}

func (s *Server) writePublicTerms(w http.ResponseWriter, r *http.Request, kind models.TermKind) {
	terms, err := s.taxonomyService.Public(r.Context(), kind)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, terms)
}

func (s *Server) handleContact(w http.ResponseWriter, r *http.Request) {
	if !s.allowForm(w, r) {
		return
	}
	var req api.ContactRequest
	if !s.decodeJSONReq(w, r, &req) {
		return
	}
	resp, err := s.accountService.SubmitContact(r.Context(), req)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, resp)
}
