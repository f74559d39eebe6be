package models

import (
	"testing"
	"time"
)

func TestAuditValidate(t *testing.T) {
	now := time.Now().UTC()

	tests := []struct {
		name    string
		audit   Audit
		wantErr bool
	}{
		{name: "live", audit: Audit{}},
		{name: "deleted with timestamp", audit: Audit{IsDeleted: true, DeletedAt: &now, DeletedBy: "us-ab12"}},
		{name: "deleted without actor", audit: Audit{IsDeleted: true, DeletedAt: &now}},
		{name: "deleted without timestamp", audit: Audit{IsDeleted: true}, wantErr: true},
		{name: "live with deleted_at", audit: Audit{DeletedAt: &now}, wantErr: true},
		{name: "live with deleted_by", audit: Audit{DeletedBy: "us-ab12"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.audit.Validate()
			if tt.wantErr && err == nil {
				t.Fatal("expected invariant error")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestAuditDeleteRestoreCycle(t *testing.T) {
	now := time.Now().UTC()
	var a Audit
	a.StampCreate("us-0001", now)

	a.MarkDeleted("us-0002", now.Add(time.Minute))
	if err := a.Validate(); err != nil {
		t.Fatalf("validate after delete: %v", err)
	}
	if a.DeletedBy != "us-0002" {
		t.Fatalf("expected deleted_by us-0002, got %q", a.DeletedBy)
	}

	first := *a.DeletedAt
	a.MarkDeleted("us-0003", now.Add(time.Hour))
	if a.DeletedBy != "us-0002" || !a.DeletedAt.Equal(first) {
		t.Fatalf("repeat delete must keep provenance, got by=%q at=%v", a.DeletedBy, a.DeletedAt)
	}

	a.Restore()
	if err := a.Validate(); err != nil {
		t.Fatalf("validate after restore: %v", err)
	}
	if a.IsDeleted || a.DeletedAt != nil || a.DeletedBy != "" {
		t.Fatalf("restore must clear deletion fields: %#v", a)
	}
	if a.CreatedBy != "us-0001" {
		t.Fatalf("restore must keep created_by, got %q", a.CreatedBy)
	}
}

func TestParseScope(t *testing.T) {
	cases := map[string]Scope{"": ScopeAlive, "alive": ScopeAlive, "DEAD": ScopeDeleted, "deleted": ScopeDeleted, " all ": ScopeAll}
	for raw, want := range cases {
		got, err := ParseScope(raw)
		if err != nil {
			t.Fatalf("parse %q: %v", raw, err)
		}
		if got != want {
			t.Fatalf("parse %q: expected %q, got %q", raw, want, got)
		}
	}
	if _, err := ParseScope("purged"); err == nil {
		t.Fatal("expected invalid scope error")
	}
}

func TestParseEntity(t *testing.T) {
	got, err := ParseEntity(" Articles ")
	if err != nil {
		t.Fatalf("parse entity: %v", err)
	}
	if got != EntityArticle {
		t.Fatalf("expected %q, got %q", EntityArticle, got)
	}
	if _, err := ParseEntity("users"); err == nil {
		t.Fatal("expected users to be rejected as an audited entity")
	}
}
