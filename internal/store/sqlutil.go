package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"quill/internal/models"
)

var (
	// ErrNotFound is returned by mutations that address a missing row.
	ErrNotFound = errors.New("not found")
	// ErrMediaInUse is returned when a file is already claimed by another record field.
	ErrMediaInUse = errors.New("media is attached to another record")
	// ErrMediaMissing is returned when a referenced media key has no metadata row.
	ErrMediaMissing = errors.New("media not found")
	// ErrMediaReleased is returned when a referenced file was released and waits
	// for removal. It can only come back through a new upload.
	ErrMediaReleased = errors.New("media was released and is pending removal")
)

// queryer is satisfied by *sql.DB and *sql.Tx.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type scanner interface {
	Scan(dest ...any) error
}

// withTx runs fn in one transaction, rolling back on error.
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func rowExists(ctx context.Context, q queryer, table, id string) (bool, error) {
	var exists int
	err := q.QueryRowContext(ctx, "SELECT 1 FROM "+table+" WHERE id = ? LIMIT 1", id).Scan(&exists)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func newID(ctx context.Context, q queryer, table, prefix string) (string, error) {
	return GenerateID(prefix, func(id string) (bool, error) {
		return rowExists(ctx, q, table, id)
	})
}

const auditColumns = "created_by, updated_by, deleted_by, created_at, updated_at, is_deleted, deleted_at"

// auditScan collects nullable audit columns during a row scan.
type auditScan struct {
	createdBy, updatedBy, deletedBy sql.NullString
	createdAt, updatedAt            string
	isDeleted                       int
	deletedAt                       sql.NullString
}

func (a *auditScan) dest() []any {
	return []any{&a.createdBy, &a.updatedBy, &a.deletedBy, &a.createdAt, &a.updatedAt, &a.isDeleted, &a.deletedAt}
}

func (a *auditScan) apply(out *models.Audit) error {
	out.CreatedBy = a.createdBy.String
	out.UpdatedBy = a.updatedBy.String
	out.DeletedBy = a.deletedBy.String
	out.IsDeleted = a.isDeleted != 0

	created, err := dbParseTime(a.createdAt)
	if err != nil {
		return err
	}
	updated, err := dbParseTime(a.updatedAt)
	if err != nil {
		return err
	}
	out.CreatedAt = created
	out.UpdatedAt = updated

	out.DeletedAt = nil
	if a.deletedAt.Valid {
		parsed, err := dbParseTime(a.deletedAt.String)
		if err != nil {
			return err
		}
		out.DeletedAt = &parsed
	}
	return nil
}

func auditArgs(a models.Audit) []any {
	return []any{
		nullIfEmpty(a.CreatedBy),
		nullIfEmpty(a.UpdatedBy),
		nullIfEmpty(a.DeletedBy),
		dbFormatTime(a.CreatedAt),
		dbFormatTime(a.UpdatedAt),
		boolToInt(a.IsDeleted),
		nullTime(a.DeletedAt),
	}
}

// scopeClause returns the WHERE fragment selecting rows in scope, or "" for all rows.
func scopeClause(scope models.Scope, alias string) string {
	column := "is_deleted"
	if alias != "" {
		column = alias + ".is_deleted"
	}
	switch scope {
	case models.ScopeAll:
		return ""
	case models.ScopeDeleted:
		return column + " = 1"
	default:
		return column + " = 0"
	}
}

func placeholders(count int) string {
	if count <= 0 {
		return ""
	}
	return strings.TrimRight(strings.Repeat("?,", count), ",")
}

func stringArgs(values []string) []any {
	args := make([]any, 0, len(values))
	for _, v := range values {
		args = append(args, v)
	}
	return args
}

func nullIfEmpty(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullTime(value *time.Time) any {
	if value == nil || value.IsZero() {
		return nil
	}
	return dbFormatTime(*value)
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func dbFormatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func dbParseTime(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	parsed, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse time %q: %w", value, err)
	}
	return parsed, nil
}

func dbParseNullTime(value sql.NullString) (*time.Time, error) {
	if !value.Valid || value.String == "" {
		return nil, nil
	}
	parsed, err := dbParseTime(value.String)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

// IsUniqueConstraint reports whether err is a SQLite unique violation.
func IsUniqueConstraint(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}

func dedupeIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
