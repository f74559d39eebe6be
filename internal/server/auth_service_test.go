package server

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	internalauth "quill/internal/auth"
	"quill/internal/models"
	"quill/internal/store"
)

func TestAuthServiceLoginStoresHashedToken(t *testing.T) {
	hash, err := internalauth.HashPassword(testPassword)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	fake := &fakeAccountStore{users: map[string]*models.User{
		"alice": {ID: "us-alice1", Username: "alice", PasswordHash: hash, Role: models.RoleMember},
	}}
	svc := NewAuthService(fake)
	if svc == nil {
		t.Fatal("expected auth service")
	}
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	result, err := svc.Login(context.Background(), " Alice ", testPassword, now)
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if result.Token == "" {
		t.Fatal("expected session token")
	}
	if !result.ExpiresAt.Equal(now.Add(defaultSessionTTL)) {
		t.Fatalf("expected expiry %v, got %v", now.Add(defaultSessionTTL), result.ExpiresAt)
	}
	if fake.sessionUserID != "us-alice1" {
		t.Fatalf("expected session for us-alice1, got %q", fake.sessionUserID)
	}
	if fake.sessionTokenHash == result.Token || fake.sessionTokenHash != hashSessionToken(result.Token) {
		t.Fatalf("expected stored hash of token, got %q", fake.sessionTokenHash)
	}

	user, err := svc.AuthenticateSessionToken(context.Background(), result.Token, now.Add(time.Minute))
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if user == nil || user.ID != "us-alice1" {
		t.Fatalf("expected alice from session, got %+v", user)
	}

	if err := svc.RevokeSessionToken(context.Background(), result.Token, now); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if fake.revokedHash != hashSessionToken(result.Token) {
		t.Fatalf("expected revoke by token hash, got %q", fake.revokedHash)
	}
}

func TestAuthServiceLoginRejectsBadCredentials(t *testing.T) {
	hash, err := internalauth.HashPassword(testPassword)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	fake := &fakeAccountStore{users: map[string]*models.User{
		"bob":   {ID: "us-bob001", Username: "bob", PasswordHash: hash},
		"carol": {ID: "us-carol1", Username: "carol", PasswordHash: hash, Disabled: true},
	}}
	svc := NewAuthService(fake)
	now := time.Now().UTC()

	tests := []struct {
		name     string
		username string
		password string
	}{
		{name: "unknown user", username: "nobody", password: testPassword},
		{name: "wrong password", username: "bob", password: "not-the-password"},
		{name: "disabled user", username: "carol", password: testPassword},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Login(context.Background(), tc.username, tc.password, now)
			if !errors.Is(err, errInvalidCredentials) {
				t.Fatalf("expected invalid credentials, got %v", err)
			}
		})
	}
	if fake.sessionUserID != "" {
		t.Fatalf("expected no session created, got one for %q", fake.sessionUserID)
	}

	_, err = svc.Login(context.Background(), "bob", "  ", now)
	if httpStatusFromError(err) != http.StatusBadRequest {
		t.Fatalf("expected bad request for blank password, got %v", err)
	}
}

func TestAuthServiceIgnoresBlankToken(t *testing.T) {
	svc := NewAuthService(&fakeAccountStore{})
	user, err := svc.AuthenticateSessionToken(context.Background(), "   ", time.Now())
	if err != nil || user != nil {
		t.Fatalf("expected nothing for blank token, got %+v err=%v", user, err)
	}
	if NewAuthService(nil) != nil {
		t.Fatal("expected nil service without a store")
	}
}

func TestAttemptLimiterBlocksAndRecovers(t *testing.T) {
	limiter := newAttemptLimiter(2, time.Minute, 5*time.Minute)
	now := time.Now()

	if !limiter.Allow("k", now) {
		t.Fatal("expected fresh key allowed")
	}
	limiter.Record("k", now)
	if !limiter.Allow("k", now) {
		t.Fatal("expected key allowed below the limit")
	}
	limiter.Record("k", now.Add(time.Second))
	if limiter.Allow("k", now.Add(2*time.Second)) {
		t.Fatal("expected key blocked after two attempts")
	}
	if !limiter.Allow("k", now.Add(6*time.Minute)) {
		t.Fatal("expected block to expire")
	}

	limiter.Record("w", now)
	if !limiter.Allow("w", now.Add(2*time.Minute)) {
		t.Fatal("expected window to reset attempts")
	}
	limiter.Record("w", now.Add(2*time.Minute))
	if !limiter.Allow("w", now.Add(2*time.Minute)) {
		t.Fatal("expected attempts outside the window not to accumulate")
	}

	if !limiter.Hit("form", now) || !limiter.Hit("form", now) {
		t.Fatal("expected the first two hits allowed")
	}
	if limiter.Hit("form", now) {
		t.Fatal("expected Hit to count every request")
	}
	limiter.Reset("form")
	if !limiter.Allow("form", now) {
		t.Fatal("expected reset to clear the block")
	}

	var disabled *attemptLimiter
	if !disabled.Hit("k", now) {
		t.Fatal("expected nil limiter to allow everything")
	}
}

type fakeAccountStore struct {
	store.AccountStore

	users            map[string]*models.User
	sessionUserID    string
	sessionTokenHash string
	revokedHash      string
}

func (f *fakeAccountStore) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	user, ok := f.users[username]
	if !ok {
		return nil, nil
	}
	cloned := *user
	return &cloned, nil
}

func (f *fakeAccountStore) CreateSession(_ context.Context, userID, tokenHash string, _, _ time.Time) error {
	f.sessionUserID = userID
	f.sessionTokenHash = tokenHash
	return nil
}

func (f *fakeAccountStore) GetUserBySessionTokenHash(_ context.Context, tokenHash string, _ time.Time) (*models.User, error) {
	if tokenHash == "" || tokenHash != f.sessionTokenHash {
		return nil, nil
	}
	for _, user := range f.users {
		if user.ID == f.sessionUserID {
			return user, nil
		}
	}
	return nil, nil
}

func (f *fakeAccountStore) RevokeSessionByTokenHash(_ context.Context, tokenHash string, _ time.Time) error {
	f.revokedHash = tokenHash
	return nil
}
