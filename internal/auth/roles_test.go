package auth

import (
	"testing"

	"quill/internal/models"
)

func TestHasAnyRole(t *testing.T) {
	tests := []struct {
		role  models.Role
		roles string
		want  bool
	}{
		{role: models.RoleAdmin, roles: "admin,editor", want: true},
		{role: models.RoleEditor, roles: " Admin , EDITOR ", want: true},
		{role: models.RoleMember, roles: "admin,editor", want: false},
		{role: "", roles: "admin", want: false},
		{role: models.RoleMember, roles: "", want: false},
	}
	for _, tc := range tests {
		if got := HasAnyRole(tc.role, tc.roles); got != tc.want {
			t.Fatalf("HasAnyRole(%q, %q) = %v, want %v", tc.role, tc.roles, got, tc.want)
		}
	}
	if !IsStaff(models.RoleEditor) || IsStaff(models.RoleMember) {
		t.Fatal("unexpected staff classification")
	}
	if !IsAdmin(models.RoleAdmin) || IsAdmin(models.RoleEditor) {
		t.Fatal("unexpected admin classification")
	}
}
