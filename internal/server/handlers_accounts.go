package server

import (
	"net/http"
	"strings"

	"quill/internal/api"
	"quill/internal/store"
)

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.accountService.ListUsers(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, users)
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req api.AdminUserCreateRequest
	if !s.decodeJSONReq(w, r, &req) {
		return
	}
	user, err := s.accountService.CreateUser(r.Context(), req)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, user)
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	var req api.AdminUserUpdateRequest
	if !s.decodeJSONReq(w, r, &req) {
		return
	}
	user, err := s.accountService.UpdateUser(r.Context(), usernamePath(r), req)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	resp, err := s.accountService.DeleteUser(r.Context(), usernamePath(r))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListCompanies(w http.ResponseWriter, r *http.Request) {
	companies, err := s.accountService.ListCompanies(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, companies)
}

func (s *Server) handleGetCompany(w http.ResponseWriter, r *http.Request) {
	id, err := requirePathID(r, store.PrefixCompany)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	company, err := s.accountService.GetCompany(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, company)
}

func (s *Server) handleCreateCompany(w http.ResponseWriter, r *http.Request) {
	var req api.CompanyRequest
	if !s.decodeJSONReq(w, r, &req) {
		return
	}
	company, err := s.accountService.CreateCompany(r.Context(), req)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, company)
}

func (s *Server) handleUpdateCompany(w http.ResponseWriter, r *http.Request) {
	id, err := requirePathID(r, store.PrefixCompany)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	var req api.CompanyRequest
	if !s.decodeJSONReq(w, r, &req) {
		return
	}
	company, err := s.accountService.UpdateCompany(r.Context(), id, req)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, company)
}

func (s *Server) handleDeleteCompany(w http.ResponseWriter, r *http.Request) {
	id, err := requirePathID(r, store.PrefixCompany)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	resp, err := s.accountService.DeleteCompany(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListContacts(w http.ResponseWriter, r *http.Request) {
	limit, err := queryIntDefault(r, "limit", defaultAdminListLimit)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	offset, err := queryInt(r, "offset")
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	contacts, err := s.accountService.ListContacts(r.Context(), min(limit, maxAdminListLimit), offset)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, contacts)
}

// usernamePath trims the {username} segment.
func usernamePath(r *http.Request) string {
	return strings.TrimSpace(r.PathValue("username"))
}
