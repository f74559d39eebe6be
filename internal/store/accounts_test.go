package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"quill/internal/models"
)

func TestUserAndSessionLifecycle(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()

	count, err := st.CountEnabledUsers(ctx, "")
	if err != nil {
		t.Fatalf("count enabled users: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected 0 users, got %d", count)
	}

	created := createTestUser(t, st, "Admin")
	if created.Username != "admin" {
		t.Fatalf("expected normalized username admin, got %q", created.Username)
	}

	loaded, err := st.GetUserByUsername(ctx, "ADMIN")
	if err != nil || loaded == nil {
		t.Fatalf("get user by username: %v", err)
	}
	if loaded.ID != created.ID || loaded.Email != created.Email {
		t.Fatalf("unexpected loaded user %+v", loaded)
	}

	expiresAt := testNow.Add(2 * time.Hour)
	if err := st.CreateSession(ctx, created.ID, "token-hash", expiresAt, testNow); err != nil {
		t.Fatalf("create session: %v", err)
	}
	authed, err := st.GetUserBySessionTokenHash(ctx, "token-hash", testNow.Add(30*time.Minute))
	if err != nil || authed == nil {
		t.Fatalf("expected authenticated user from session, err=%v", err)
	}
	if authed.ID != created.ID {
		t.Fatalf("expected session user %q, got %q", created.ID, authed.ID)
	}
	if expired, _ := st.GetUserBySessionTokenHash(ctx, "token-hash", expiresAt.Add(time.Second)); expired != nil {
		t.Fatal("expected expired session to resolve nothing")
	}

	if err := st.RevokeSessionByTokenHash(ctx, "token-hash", testNow.Add(time.Hour)); err != nil {
		t.Fatalf("revoke session: %v", err)
	}
	if revoked, _ := st.GetUserBySessionTokenHash(ctx, "token-hash", testNow.Add(30*time.Minute)); revoked != nil {
		t.Fatal("expected revoked session to resolve nothing")
	}

	admins, err := st.CountEnabledUsers(ctx, models.RoleAdmin)
	if err != nil {
		t.Fatalf("count admins: %v", err)
	}
	if admins != 0 {
		t.Fatalf("expected no admins, got %d", admins)
	}
	count, _ = st.CountEnabledUsers(ctx, created.Role)
	if count != 1 {
		t.Fatalf("expected 1 enabled %s, got %d", created.Role, count)
	}

	created.Disabled = true
	created.UpdatedAt = testNow.Add(time.Hour)
	if err := st.UpdateUser(ctx, created); err != nil {
		t.Fatalf("disable user: %v", err)
	}
	count, _ = st.CountEnabledUsers(ctx, "")
	if count != 0 {
		t.Fatalf("expected 0 enabled users, got %d", count)
	}
}

func TestUserSaveSyncsProfile(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()
	user := createTestUser(t, st, "bob")

	profile, err := st.GetProfileByUserID(ctx, user.ID)
	if err != nil || profile == nil {
		t.Fatalf("expected profile created with user, err=%v", err)
	}
	if profile.Name != "Test bob" || profile.Email != "bob@example.com" {
		t.Fatalf("unexpected profile %+v", profile)
	}

	user.FirstName = "Robert"
	user.LastName = "Builder"
	user.Email = "robert@example.com"
	user.UpdatedAt = testNow.Add(time.Minute)
	if err := st.UpdateUser(ctx, user); err != nil {
		t.Fatalf("update user: %v", err)
	}
	synced, _ := st.GetProfileByUserID(ctx, user.ID)
	if synced.ID != profile.ID {
		t.Fatalf("expected same profile row, got %q vs %q", synced.ID, profile.ID)
	}
	if synced.Name != "Robert Builder" || synced.Email != "robert@example.com" {
		t.Fatalf("expected synced profile, got %+v", synced)
	}
}

func TestProfileEmailUniqueAcrossUsers(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()
	createTestUser(t, st, "carol")

	dup := &models.User{Username: "carol2", Email: "carol@example.com", PasswordHash: "hash", Role: models.RoleMember, CreatedAt: testNow, UpdatedAt: testNow}
	err := st.CreateUser(ctx, dup)
	if !IsUniqueConstraint(err) {
		t.Fatalf("expected unique violation, got %v", err)
	}
	if got, _ := st.GetUserByUsername(ctx, "carol2"); got != nil {
		t.Fatal("expected user insert rolled back")
	}
}

func TestDeleteUserReleasesAvatar(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()
	user := createTestUser(t, st, "dave")
	createTestMedia(t, st, "avatar/dave.png")
	createTestMedia(t, st, "avatar/dave2.png")

	profile, _ := st.GetProfileByUserID(ctx, user.ID)
	profile.Avatar = "avatar/dave.png"
	profile.Phone = "+14155550100"
	profile.UpdatedAt = testNow
	released, err := st.UpdateProfile(ctx, profile)
	if err != nil {
		t.Fatalf("update profile: %v", err)
	}
	if len(released) != 0 {
		t.Fatalf("expected nothing released on first avatar, got %v", released)
	}

	profile.Avatar = "avatar/dave2.png"
	released, err = st.UpdateProfile(ctx, profile)
	if err != nil {
		t.Fatalf("swap avatar: %v", err)
	}
	if len(released) != 1 || released[0] != "avatar/dave.png" {
		t.Fatalf("expected first avatar released, got %v", released)
	}

	released, err = st.DeleteUser(ctx, "dave", testNow)
	if err != nil {
		t.Fatalf("delete user: %v", err)
	}
	if len(released) != 1 || released[0] != "avatar/dave2.png" {
		t.Fatalf("expected current avatar released, got %v", released)
	}
	if got, _ := st.GetProfileByUserID(ctx, user.ID); got != nil {
		t.Fatal("expected profile removed")
	}
	if _, err := st.DeleteUser(ctx, "dave", testNow); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeletedUserKeepsAuthoredRecords(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()
	user := createTestUser(t, st, "erin")

	term := &models.Term{Kind: models.TermTag, Name: "Owned", Slug: "owned", Description: "x", IsActive: true}
	term.StampCreate(user.ID, testNow)
	if err := st.CreateTerm(ctx, term); err != nil {
		t.Fatalf("create term: %v", err)
	}
	if _, err := st.DeleteUser(ctx, "erin", testNow); err != nil {
		t.Fatalf("delete user: %v", err)
	}
	got, err := st.GetTerm(ctx, models.TermTag, term.ID, models.ScopeAlive)
	if err != nil || got == nil {
		t.Fatalf("expected term kept, err=%v", err)
	}
	if got.CreatedBy != "" || got.UpdatedBy != "" {
		t.Fatalf("expected nulled actors, got %+v", got.Audit)
	}
}

func TestContactsNewestFirst(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()
	for i, name := range []string{"first", "second"} {
		contact := &models.Contact{Name: name, Email: name + "@example.com", Message: "hello", CreatedAt: testNow.Add(time.Duration(i) * time.Minute)}
		if err := st.CreateContact(ctx, contact); err != nil {
			t.Fatalf("create contact: %v", err)
		}
	}
	contacts, err := st.ListContacts(ctx, 10, 0)
	if err != nil {
		t.Fatalf("list contacts: %v", err)
	}
	if len(contacts) != 2 || contacts[0].Name != "second" {
		t.Fatalf("expected newest first, got %+v", contacts)
	}
}
