package server

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// withAuth resolves the caller and stores it in the request context. It only
// rejects requests presenting a token that does not match; anonymous requests
// pass through and are gated per route.
func (s *Server) withAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, ok, err := s.resolvePrincipal(r)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		holder := principalHolderFromContext(r.Context())
		if ok {
			r = r.WithContext(contextWithAuthPrincipal(r.Context(), principal))
			if holder != nil {
				holder.principal = principal
			}
		}
		next.ServeHTTP(w, r)
		if holder != nil {
			holder.route = r.Pattern
		}
	})
}

func (s *Server) resolvePrincipal(r *http.Request) (authPrincipal, bool, error) {
	var principal authPrincipal
	found := false

	if token := sessionTokenFromRequest(r); token != "" && s.authService != nil {
		user, err := s.authService.AuthenticateSessionToken(r.Context(), token, time.Now().UTC())
		if err != nil {
			return principal, false, storeFailure(err)
		}
		if user != nil {
			principal = authPrincipal{AuthType: authTypeSession, User: user}
			found = true
		}
	}

	if token, ok := bearerToken(r); ok {
		if !tokenMatches(s.apiToken, token) {
			return principal, false, unauthorized(fmt.Errorf("invalid api token"))
		}
		if !found {
			principal = authPrincipal{AuthType: authTypeBearer}
			found = true
		}
	}

	if token := strings.TrimSpace(r.Header.Get("X-Admin-Token")); token != "" {
		if !tokenMatches(s.adminToken, token) {
			return principal, false, unauthorized(fmt.Errorf("invalid admin token"))
		}
		if !found {
			principal.AuthType = authTypeAdmin
			found = true
		}
		principal.Admin = true
	}

	return principal, found, nil
}

func (s *Server) requireMember(next http.HandlerFunc) http.HandlerFunc {
	return s.requirePrincipal(func(p authPrincipal) bool { return p.User != nil }, "a user session is required", next)
}

func (s *Server) requireStaff(next http.HandlerFunc) http.HandlerFunc {
	return s.requirePrincipal(authPrincipal.isStaff, "staff role required", next)
}

func (s *Server) requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return s.requirePrincipal(authPrincipal.isAdmin, "admin role required", next)
}

func (s *Server) requirePrincipal(allowed func(authPrincipal) bool, denied string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, ok := authPrincipalFromContext(r.Context())
		if !ok {
			s.writeErrorReq(w, r, http.StatusUnauthorized, unauthorized(fmt.Errorf("authentication required")))
			return
		}
		if !allowed(principal) {
			s.writeErrorReq(w, r, http.StatusForbidden, forbidden(fmt.Errorf("%s", denied)))
			return
		}
		next(w, r)
	}
}

func tokenMatches(expected, presented string) bool {
	if expected == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(presented)) == 1
}

func bearerToken(r *http.Request) (string, bool) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return "", false
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func sessionTokenFromRequest(r *http.Request) string {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(cookie.Value)
}

func requestScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if proto := strings.TrimSpace(r.Header.Get("X-Forwarded-Proto")); proto != "" {
		return strings.ToLower(proto)
	}
	return "http"
}
