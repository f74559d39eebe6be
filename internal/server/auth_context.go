package server

import (
	"context"
	"net/http"

	"quill/internal/auth"
	"quill/internal/models"
)

type authContextKey struct{}

// authPrincipal is the resolved caller of one request.
type authPrincipal struct {
	AuthType string
	User     *models.User
	// Admin is set by the admin token regardless of the user's role.
	Admin bool
}

// actor is the user id stamped into audit fields. Token principals have none.
func (p authPrincipal) actor() string {
	if p.User == nil {
		return ""
	}
	return p.User.ID
}

func (p authPrincipal) isStaff() bool {
	if p.Admin || p.AuthType == authTypeBearer {
		return true
	}
	return p.User != nil && auth.IsStaff(p.User.Role)
}

func (p authPrincipal) isAdmin() bool {
	if p.Admin {
		return true
	}
	return p.User != nil && auth.IsAdmin(p.User.Role)
}

func contextWithAuthPrincipal(ctx context.Context, principal authPrincipal) context.Context {
	return context.WithValue(ctx, authContextKey{}, principal)
}

func authPrincipalFromContext(ctx context.Context) (authPrincipal, bool) {
	if ctx == nil {
		return authPrincipal{}, false
	}
	principal, ok := ctx.Value(authContextKey{}).(authPrincipal)
	return principal, ok
}

// principalHolder carries what inner layers learned back to request logging.
type principalHolder struct {
	principal authPrincipal
	route     string
}

type principalHolderKey struct{}

func contextWithPrincipalHolder(ctx context.Context, holder *principalHolder) context.Context {
	return context.WithValue(ctx, principalHolderKey{}, holder)
}

func principalHolderFromContext(ctx context.Context) *principalHolder {
	holder, _ := ctx.Value(principalHolderKey{}).(*principalHolder)
	return holder
}

func currentPrincipal(r *http.Request) authPrincipal {
	principal, _ := authPrincipalFromContext(r.Context())
	return principal
}

// currentUser is the session user, or nil for token and anonymous callers.
func currentUser(r *http.Request) *models.User {
	return currentPrincipal(r).User
}
