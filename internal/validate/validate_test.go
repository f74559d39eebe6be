package validate

import (
	"errors"
	"testing"
)

type sample struct {
	Name  string `json:"name" validate:"required,min=3,max=10"`
	Slug  string `json:"slug" validate:"omitempty,slug"`
	Phone string `json:"phone" validate:"omitempty,e164"`
	Email string `json:"email" validate:"omitempty,email"`
	User  string `json:"username" validate:"omitempty,username"`
	Role  string `json:"role" validate:"omitempty,oneof=admin editor member"`
}

func TestStructValid(t *testing.T) {
	err := Struct(sample{Name: "golang", Slug: "go-lang_2", Phone: "+12015550123", Email: "a@b.io", User: "ann.lee", Role: "editor"})
	if err != nil {
		t.Fatalf("expected valid sample, got %v", err)
	}
}

func TestStructCollectsFieldErrors(t *testing.T) {
	err := Struct(sample{Name: "go", Slug: "Bad Slug", Phone: "12345", Role: "owner"})
	var verr *Error
	if !errors.As(err, &verr) {
		t.Fatalf("expected *Error, got %T %v", err, err)
	}

	got := map[string]string{}
	for _, f := range verr.Fields {
		got[f.Field] = f.Tag
	}
	want := map[string]string{"name": "min", "slug": "slug", "phone": "e164", "role": "oneof"}
	for field, tag := range want {
		if got[field] != tag {
			t.Fatalf("expected %s to fail %s, got %v", field, tag, got)
		}
	}
	if verr.First() != "name must be at least 3 characters" {
		t.Fatalf("unexpected first message %q", verr.First())
	}
}

func TestNormalizePhone(t *testing.T) {
	got, err := NormalizePhone(" +1 201 555 0123 ")
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if got != "+12015550123" {
		t.Fatalf("expected +12015550123, got %s", got)
	}
	for _, raw := range []string{"", "4155550100", "+1", "+999123"} {
		if _, err := NormalizePhone(raw); err == nil {
			t.Fatalf("expected error for %q", raw)
		}
	}
}
