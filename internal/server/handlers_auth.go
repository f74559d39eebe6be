package server

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"quill/internal/api"
)

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if !s.allowForm(w, r) {
		return
	}
	var req api.RegisterRequest
	if !s.decodeJSONReq(w, r, &req) {
		return
	}
	user, err := s.accountService.Register(r.Context(), req)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, user)
}

func (s *Server) handleAuthLogin(w http.ResponseWriter, r *http.Request) {
	var req api.AuthLoginRequest
	if !s.decodeJSONReq(w, r, &req) {
		return
	}

	now := time.Now().UTC()
	limiterKey := loginAttemptKey(req.Username, r)
	if !s.loginLimiter.Allow(limiterKey, now) {
		s.writeServiceError(w, r, tooManyRequests(fmt.Errorf("too many login attempts; retry later")))
		return
	}

	result, err := s.authService.Login(r.Context(), req.Username, req.Password, now)
	if err != nil {
		if errors.Is(err, errInvalidCredentials) {
			s.loginLimiter.Record(limiterKey, now)
			s.writeServiceError(w, r, unauthorized(fmt.Errorf("invalid credentials")))
			return
		}
		s.writeServiceError(w, r, err)
		return
	}
	s.loginLimiter.Reset(limiterKey)

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    result.Token,
		Path:     "/",
		HttpOnly: true,
		Secure:   requestScheme(r) == "https",
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(result.ExpiresAt.Sub(now) / time.Second),
		Expires:  result.ExpiresAt,
	})

	s.writeJSON(w, http.StatusOK, api.AuthLoginResponse{
		User:      *result.User,
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
	})
}

func (s *Server) handleAuthLogout(w http.ResponseWriter, r *http.Request) {
	if token := sessionTokenFromRequest(r); token != "" {
		if err := s.authService.RevokeSessionToken(r.Context(), token, time.Now().UTC()); err != nil {
			s.writeStoreError(w, r, err)
			return
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   requestScheme(r) == "https",
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0).UTC(),
	})
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAuthMe(w http.ResponseWriter, r *http.Request) {
	principal, ok := authPrincipalFromContext(r.Context())
	if !ok {
		s.writeJSON(w, http.StatusOK, api.AuthMeResponse{Authenticated: false})
		return
	}
	s.writeJSON(w, http.StatusOK, api.AuthMeResponse{
		Authenticated: true,
		AuthType:      principal.AuthType,
		Staff:         principal.isStaff(),
		Admin:         principal.isAdmin(),
		User:          principal.User,
	})
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	if user == nil {
		s.writeServiceError(w, r, forbidden(fmt.Errorf("profile requires a user session")))
		return
	}
	profile, err := s.accountService.Profile(r.Context(), user.ID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, profile)
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	if user == nil {
		s.writeServiceError(w, r, forbidden(fmt.Errorf("profile requires a user session")))
		return
	}
	var req api.ProfileUpdateRequest
	if !s.decodeJSONReq(w, r, &req) {
		return
	}
	profile, err := s.accountService.UpdateProfile(r.Context(), user.ID, req)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, profile)
}

// allowForm throttles anonymous form posts per client address.
func (s *Server) allowForm(w http.ResponseWriter, r *http.Request) bool {
	if s.formLimiter.Hit(clientKey(r)+"|"+r.URL.Path, time.Now().UTC()) {
		return true
	}
	s.writeServiceError(w, r, tooManyRequests(fmt.Errorf("too many submissions; retry later")))
	return false
}
