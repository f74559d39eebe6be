package models

import (
	"fmt"
	"strings"
	"time"
)

// Audit carries provenance and soft-delete state for an editorial record.
type Audit struct {
	CreatedBy string     `json:"created_by,omitempty"`
	UpdatedBy string     `json:"updated_by,omitempty"`
	DeletedBy string     `json:"deleted_by,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	IsDeleted bool       `json:"is_deleted"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// Validate checks the deletion-field invariant.
// A deleted record must carry deleted_at; a live record carries neither deleted_at nor deleted_by.
func (a Audit) Validate() error {
	if a.IsDeleted {
		if a.DeletedAt == nil || a.DeletedAt.IsZero() {
			return fmt.Errorf("deleted record requires deleted_at")
		}
		return nil
	}
	if a.DeletedAt != nil {
		return fmt.Errorf("live record must not carry deleted_at")
	}
	if a.DeletedBy != "" {
		return fmt.Errorf("live record must not carry deleted_by")
	}
	return nil
}

// StampCreate records the creating actor. Timestamps default to now.
func (a *Audit) StampCreate(actor string, now time.Time) {
	a.CreatedBy = actor
	a.UpdatedBy = actor
	a.CreatedAt = now.UTC()
	a.UpdatedAt = now.UTC()
}

// StampUpdate records the updating actor.
func (a *Audit) StampUpdate(actor string, now time.Time) {
	a.UpdatedBy = actor
	a.UpdatedAt = now.UTC()
}

// MarkDeleted flags the record deleted. Deleting an already-deleted record keeps
// its original provenance.
func (a *Audit) MarkDeleted(actor string, now time.Time) {
	if a.IsDeleted {
		return
	}
	at := now.UTC()
	a.IsDeleted = true
	a.DeletedAt = &at
	a.DeletedBy = actor
}

// Restore clears the deletion fields.
func (a *Audit) Restore() {
	a.IsDeleted = false
	a.DeletedAt = nil
	a.DeletedBy = ""
}

// Scope selects which rows a query sees.
type Scope string

const (
	ScopeAlive   Scope = "alive"
	ScopeDeleted Scope = "deleted"
	ScopeAll     Scope = "all"
)

// ParseScope accepts alive (default), deleted, dead, or all.
func ParseScope(raw string) (Scope, error) {
	value := strings.ToLower(strings.TrimSpace(raw))
	switch value {
	case "", string(ScopeAlive):
		return ScopeAlive, nil
	case string(ScopeDeleted), "dead":
		return ScopeDeleted, nil
	case string(ScopeAll):
		return ScopeAll, nil
	default:
		return "", fmt.Errorf("invalid scope: %s", value)
	}
}

// Entity names an audited record type.
type Entity string

const (
	EntityCategory Entity = "categories"
	EntityTag      Entity = "tags"
	EntityArticle  Entity = "articles"
	EntityComment  Entity = "comments"

	// Account records are deleted physically and carry no audit columns.
	EntityUser    Entity = "users"
	EntityProfile Entity = "profiles"
	EntityCompany Entity = "companies"
)

var auditedEntities = []Entity{EntityCategory, EntityTag, EntityArticle, EntityComment}

// AuditedEntities lists every entity carrying the soft-delete lifecycle.
func AuditedEntities() []Entity {
	out := make([]Entity, len(auditedEntities))
	copy(out, auditedEntities)
	return out
}

func ParseEntity(raw string) (Entity, error) {
	value := Entity(strings.ToLower(strings.TrimSpace(raw)))
	for _, e := range auditedEntities {
		if e == value {
			return e, nil
		}
	}
	return "", fmt.Errorf("invalid entity: %s", value)
}

// Singular returns the human name used in messages.
func (e Entity) Singular() string {
	switch e {
	case EntityCategory:
		return "category"
	case EntityTag:
		return "tag"
	case EntityArticle:
		return "article"
	case EntityComment:
		return "comment"
	case EntityUser:
		return "user"
	case EntityProfile:
		return "profile"
	case EntityCompany:
		return "company"
	default:
		return string(e)
	}
}
