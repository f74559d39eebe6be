package server

import (
	"net/http"
)

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	// Health check and info.
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /v1/info", s.requireStaff(s.handleInfo))

	// Accounts.
	mux.HandleFunc("POST /v1/auth/register", s.handleRegister)
	mux.HandleFunc("POST /v1/auth/login", s.handleAuthLogin)
	mux.HandleFunc("POST /v1/auth/logout", s.handleAuthLogout)
	mux.HandleFunc("GET /v1/auth/me", s.handleAuthMe)
	mux.HandleFunc("GET /v1/me/profile", s.requireMember(s.handleGetProfile))
	mux.HandleFunc("PATCH /v1/me/profile", s.requireMember(s.handleUpdateProfile))

	// Public blog.
	mux.HandleFunc("GET /v1/home", s.handleHome)
	mux.HandleFunc("GET /v1/articles", s.handleListArticles)
	mux.HandleFunc("GET /v1/articles/{slug}", s.handleArticleDetail)
	mux.HandleFunc("POST /v1/articles/{slug}/like", s.handleLikeArticle)
	mux.HandleFunc("POST /v1/articles/{slug}/comments", s.requireMember(s.handleAddComment))
	mux.HandleFunc("GET /v1/categories", s.handlePublicCategories)
	mux.HandleFunc("GET /v1/tags", s.handlePublicTags)
	mux.HandleFunc("POST /v1/contact", s.handleContact)

	// Media.
	mux.HandleFunc("POST /v1/media", s.requireStaff(s.handleUploadMedia))
	mux.HandleFunc("GET /media/{key...}", s.handleServeMedia)

	// Audited content.
	mux.HandleFunc("GET /v1/admin/{entity}", s.requireStaff(s.handleAdminList))
	mux.HandleFunc("POST /v1/admin/{entity}", s.requireStaff(s.handleAdminCreate))
	mux.HandleFunc("GET /v1/admin/{entity}/{id}", s.requireStaff(s.handleAdminGet))
	mux.HandleFunc("PATCH /v1/admin/{entity}/{id}", s.requireStaff(s.handleAdminUpdate))
	mux.HandleFunc("DELETE /v1/admin/{entity}/{id}", s.requireStaff(s.handleAdminDeleteOne))
	mux.HandleFunc("POST /v1/admin/{entity}/{id}/restore", s.requireStaff(s.handleAdminRestoreOne))
	mux.HandleFunc("POST /v1/admin/{entity}/delete", s.requireStaff(s.handleAdminBulkDelete))
	mux.HandleFunc("POST /v1/admin/{entity}/restore", s.requireStaff(s.handleAdminBulkRestore))
	mux.HandleFunc("POST /v1/admin/articles/publish", s.requireStaff(s.handlePublishArticles))
	mux.HandleFunc("POST /v1/admin/comments/approve", s.requireStaff(s.handleApproveComments))
	mux.HandleFunc("DELETE /v1/admin/{entity}/{id}/purge", s.requireAdmin(s.handleAdminPurge))

	// Account administration.
	mux.HandleFunc("GET /v1/admin/users", s.requireAdmin(s.handleListUsers))
	mux.HandleFunc("POST /v1/admin/users", s.requireAdmin(s.handleCreateUser))
	mux.HandleFunc("PATCH /v1/admin/users/{username}", s.requireAdmin(s.handleUpdateUser))
	mux.HandleFunc("DELETE /v1/admin/users/{username}", s.requireAdmin(s.handleDeleteUser))
	mux.HandleFunc("GET /v1/admin/companies", s.requireAdmin(s.handleListCompanies))
	mux.HandleFunc("POST /v1/admin/companies", s.requireAdmin(s.handleCreateCompany))
	mux.HandleFunc("GET /v1/admin/companies/{id}", s.requireAdmin(s.handleGetCompany))
	mux.HandleFunc("PATCH /v1/admin/companies/{id}", s.requireAdmin(s.handleUpdateCompany))
	mux.HandleFunc("DELETE /v1/admin/companies/{id}", s.requireAdmin(s.handleDeleteCompany))
	mux.HandleFunc("GET /v1/admin/contacts", s.requireAdmin(s.handleListContacts))
	mux.HandleFunc("POST /v1/admin/media/gc", s.requireAdmin(s.handleMediaGC))

	return mux
}
