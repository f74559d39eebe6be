package models

import "testing"

func TestParseArticleStatus(t *testing.T) {
	got, err := ParseArticleStatus(" published ")
	if err != nil {
		t.Fatalf("parse status: %v", err)
	}
	if got != ArticlePublished {
		t.Fatalf("expected %q, got %q", ArticlePublished, got)
	}

	got, err = ParseArticleStatus("AR")
	if err != nil {
		t.Fatalf("parse status code: %v", err)
	}
	if got.Label() != "Archive" {
		t.Fatalf("expected Archive label, got %q", got.Label())
	}

	if _, err := ParseArticleStatus("invalid"); err == nil {
		t.Fatal("expected invalid status error")
	}
}

func TestParseRole(t *testing.T) {
	got, err := ParseRole("")
	if err != nil {
		t.Fatalf("parse empty role: %v", err)
	}
	if got != RoleMember {
		t.Fatalf("expected default role %q, got %q", RoleMember, got)
	}
	if _, err := ParseRole("root"); err == nil {
		t.Fatal("expected invalid role error")
	}
}

func TestParseMediaKind(t *testing.T) {
	got, err := ParseMediaKind("Avatar")
	if err != nil {
		t.Fatalf("parse kind: %v", err)
	}
	if got != MediaAvatar {
		t.Fatalf("expected %q, got %q", MediaAvatar, got)
	}
	if _, err := ParseMediaKind("video"); err == nil {
		t.Fatal("expected invalid kind error")
	}
}

func TestSlugify(t *testing.T) {
	if got := Slugify("  Hello, Go World!  "); got != "hello-go-world" {
		t.Fatalf("unexpected slug %q", got)
	}
	if !IsValidSlug("hello-go-world") {
		t.Fatal("expected canonical slug to validate")
	}
	if IsValidSlug("Hello World") {
		t.Fatal("expected spaced text to be rejected")
	}
}

func TestUserFullName(t *testing.T) {
	u := User{FirstName: " Ada ", LastName: "Lovelace"}
	if got := u.FullName(); got != "Ada Lovelace" {
		t.Fatalf("unexpected full name %q", got)
	}
	if got := (User{}).FullName(); got != "" {
		t.Fatalf("expected empty full name, got %q", got)
	}
}
