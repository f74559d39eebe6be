package main

import (
	"context"
	"net/http"
	"testing"

	"quill/internal/models"
)

func TestAdminUserListUsesAPIClient(t *testing.T) {
	fake, cfg := newFakeAPI(t, http.StatusOK, []models.User{{ID: "us-aaaaaa", Username: "ada", Role: models.RoleEditor}})

	jsonOutput := false
	cmd := newAdminUserListCmd(cfg, &jsonOutput)
	cmd.SetArgs([]string{})
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("execute admin user list: %v", err)
	}

	requests := fake.recorded()
	if len(requests) != 1 || requests[0].Method != http.MethodGet || requests[0].Path != "/v1/admin/users" {
		t.Fatalf("expected GET /v1/admin/users, got %+v", requests)
	}
}

func TestAdminUserUpdateSendsOnlyChangedFields(t *testing.T) {
	fake, cfg := newFakeAPI(t, http.StatusOK, models.User{ID: "us-aaaaaa", Username: "ada", Role: models.RoleAdmin})

	jsonOutput := true
	cmd := newAdminUserUpdateCmd(cfg, &jsonOutput)
	cmd.SetArgs([]string{"ada", "--role", "admin", "--disable"})
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("execute admin user update: %v", err)
	}

	requests := fake.recorded()
	if len(requests) != 1 {
		t.Fatalf("expected one request, got %+v", requests)
	}
	got := requests[0]
	if got.Method != http.MethodPatch || got.Path != "/v1/admin/users/ada" {
		t.Fatalf("unexpected request %s %s", got.Method, got.Path)
	}
	if got.Body != `{"role":"admin","disabled":true}` {
		t.Fatalf("unexpected body %q", got.Body)
	}
}

func TestAdminUserUpdateRejectsConflictingFlags(t *testing.T) {
	fake, cfg := newFakeAPI(t, http.StatusOK, models.User{})

	jsonOutput := false
	cmd := newAdminUserUpdateCmd(cfg, &jsonOutput)
	cmd.SetArgs([]string{"ada", "--disable", "--enable"})
	if err := cmd.ExecuteContext(context.Background()); err == nil {
		t.Fatal("expected error for --disable with --enable")
	}
	if len(fake.recorded()) != 0 {
		t.Fatal("expected no API call")
	}
}
