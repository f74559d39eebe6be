package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"quill/internal/models"
)

const termColumns = "id, name, slug, description, is_active, meta_title, meta_description, " + auditColumns

// TermFilter narrows a category or tag listing.
type TermFilter struct {
	Scope      models.Scope
	ActiveOnly bool
	Query      string
	Limit      int
	Offset     int
}

func termTable(kind models.TermKind) (string, string, error) {
	switch kind {
	case models.TermCategory:
		return "categories", PrefixCategory, nil
	case models.TermTag:
		return "tags", PrefixTag, nil
	default:
		return "", "", fmt.Errorf("unknown term kind: %s", kind)
	}
}

// CreateTerm inserts a category or tag, assigning an id when empty.
func (s *Store) CreateTerm(ctx context.Context, term *models.Term) error {
	if term == nil {
		return fmt.Errorf("term is required")
	}
	table, prefix, err := termTable(term.Kind)
	if err != nil {
		return err
	}
	if err := term.Audit.Validate(); err != nil {
		return err
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		if term.ID == "" {
			id, err := newID(ctx, tx, table, prefix)
			if err != nil {
				return err
			}
			term.ID = id
		}
		args := []any{
			term.ID,
			term.Name,
			term.Slug,
			term.Description,
			boolToInt(term.IsActive),
			nullIfEmpty(term.MetaTitle),
			nullIfEmpty(term.MetaDescription),
		}
		args = append(args, auditArgs(term.Audit)...)
		_, err := tx.ExecContext(ctx, `INSERT INTO `+table+` (`+termColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, args...)
		return err
	})
}

// GetTerm returns one category or tag within scope.
func (s *Store) GetTerm(ctx context.Context, kind models.TermKind, id string, scope models.Scope) (*models.Term, error) {
	table, _, err := termTable(kind)
	if err != nil {
		return nil, err
	}
	query := "SELECT " + termColumns + " FROM " + table + " WHERE id = ?"
	if clause := scopeClause(scope, ""); clause != "" {
		query += " AND " + clause
	}
	return scanTerm(s.db.QueryRowContext(ctx, query, id), kind)
}

// GetActiveTermBySlug returns a live, active category or tag by slug.
func (s *Store) GetActiveTermBySlug(ctx context.Context, kind models.TermKind, slug string) (*models.Term, error) {
	table, _, err := termTable(kind)
	if err != nil {
		return nil, err
	}
	row := s.db.QueryRowContext(ctx, "SELECT "+termColumns+" FROM "+table+" WHERE slug = ? AND is_active = 1 AND is_deleted = 0 ORDER BY name LIMIT 1", slug)
	return scanTerm(row, kind)
}

// UpdateTerm writes the mutable columns of a category or tag.
func (s *Store) UpdateTerm(ctx context.Context, term *models.Term) error {
	if term == nil {
		return fmt.Errorf("term is required")
	}
	table, _, err := termTable(term.Kind)
	if err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE `+table+`
		SET name = ?, slug = ?, description = ?, is_active = ?, meta_title = ?, meta_description = ?,
		    updated_by = ?, updated_at = ?
		WHERE id = ?
	`,
		term.Name,
		term.Slug,
		term.Description,
		boolToInt(term.IsActive),
		nullIfEmpty(term.MetaTitle),
		nullIfEmpty(term.MetaDescription),
		nullIfEmpty(term.UpdatedBy),
		dbFormatTime(term.UpdatedAt),
		term.ID,
	)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListTerms lists categories or tags ordered by name.
func (s *Store) ListTerms(ctx context.Context, kind models.TermKind, filter TermFilter) ([]models.Term, error) {
	table, _, err := termTable(kind)
	if err != nil {
		return nil, err
	}

	where := []string{}
	args := []any{}
	if clause := scopeClause(filter.Scope, ""); clause != "" {
		where = append(where, clause)
	}
	if filter.ActiveOnly {
		where = append(where, "is_active = 1")
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		where = append(where, "(name LIKE ? OR slug LIKE ?)")
		like := "%" + q + "%"
		args = append(args, like, like)
	}

	query := "SELECT " + termColumns + " FROM " + table
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY name COLLATE NOCASE ASC, id ASC"
	query, args = appendPagination(query, args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	terms := []models.Term{}
	for rows.Next() {
		term, err := scanTerm(rows, kind)
		if err != nil {
			return nil, err
		}
		if term != nil {
			terms = append(terms, *term)
		}
	}
	return terms, rows.Err()
}

// TermNameTaken reports whether a live term already uses name, ignoring case.
func (s *Store) TermNameTaken(ctx context.Context, kind models.TermKind, name, excludeID string) (bool, error) {
	table, _, err := termTable(kind)
	if err != nil {
		return false, err
	}
	var exists int
	err = s.db.QueryRowContext(ctx, "SELECT 1 FROM "+table+" WHERE lower(name) = lower(?) AND is_deleted = 0 AND id != ? LIMIT 1", strings.TrimSpace(name), excludeID).Scan(&exists)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ResolveTermIDs returns the subset of ids naming live terms of kind.
func (s *Store) ResolveTermIDs(ctx context.Context, kind models.TermKind, ids []string) ([]string, error) {
	table, _, err := termTable(kind)
	if err != nil {
		return nil, err
	}
	ids = dedupeIDs(ids)
	if len(ids) == 0 {
		return []string{}, nil
	}
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf("SELECT id FROM %s WHERE is_deleted = 0 AND id IN (%s) ORDER BY id", table, placeholders(len(ids))), stringArgs(ids)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	found := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		found = append(found, id)
	}
	return found, rows.Err()
}

func appendPagination(query string, args []any, limit, offset int) (string, []any) {
	hasLimit := false
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
		hasLimit = true
	}
	if offset > 0 {
		if !hasLimit {
			query += " LIMIT -1"
		}
		query += " OFFSET ?"
		args = append(args, offset)
	}
	return query, args
}

func scanTerm(row scanner, kind models.TermKind) (*models.Term, error) {
	term := models.Term{Kind: kind}
	var isActive int
	var metaTitle, metaDescription sql.NullString
	var audit auditScan

	dest := []any{&term.ID, &term.Name, &term.Slug, &term.Description, &isActive, &metaTitle, &metaDescription}
	if err := row.Scan(append(dest, audit.dest()...)...); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	term.IsActive = isActive != 0
	term.MetaTitle = metaTitle.String
	term.MetaDescription = metaDescription.String
	if err := audit.apply(&term.Audit); err != nil {
		return nil, err
	}
	return &term, nil
}
