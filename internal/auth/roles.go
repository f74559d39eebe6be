package auth

import (
	"strings"

	"quill/internal/models"
)

// StaffRoles may edit content.
const StaffRoles = "admin,editor"

// HasAnyRole reports whether role appears in a comma-separated list.
func HasAnyRole(role models.Role, roles string) bool {
	if role == "" {
		return false
	}
	for _, candidate := range strings.Split(roles, ",") {
		if models.Role(strings.ToLower(strings.TrimSpace(candidate))) == role {
			return true
		}
	}
	return false
}

// IsStaff reports whether role may edit content.
func IsStaff(role models.Role) bool {
	return HasAnyRole(role, StaffRoles)
}

// IsAdmin reports whether role has full control.
func IsAdmin(role models.Role) bool {
	return role == models.RoleAdmin
}
