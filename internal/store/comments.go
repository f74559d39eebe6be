package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"quill/internal/models"
)

const qualifiedCommentColumns = "c.id, c.article_id, c.user_id, COALESCE(u.username, ''), c.text, c.is_approved, " +
	"c.created_by, c.updated_by, c.deleted_by, c.created_at, c.updated_at, c.is_deleted, c.deleted_at"

// CommentFilter narrows a comment listing.
type CommentFilter struct {
	ArticleID string
	UserID    string
	Scope     models.Scope
	Approved  *bool
	Limit     int
	Offset    int
}

// CreateComment inserts a comment, assigning an id when empty.
func (s *Store) CreateComment(ctx context.Context, comment *models.Comment) error {
	if comment == nil {
		return fmt.Errorf("comment is required")
	}
	if err := comment.Audit.Validate(); err != nil {
		return err
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		if comment.ID == "" {
			id, err := newID(ctx, tx, "comments", PrefixComment)
			if err != nil {
				return err
			}
			comment.ID = id
		}
		args := []any{comment.ID, comment.ArticleID, comment.UserID, comment.Text, boolToInt(comment.IsApproved)}
		args = append(args, auditArgs(comment.Audit)...)
		_, err := tx.ExecContext(ctx, `INSERT INTO comments (id, article_id, user_id, text, is_approved, `+auditColumns+`) VALUES (`+placeholders(len(args))+`)`, args...)
		return err
	})
}

// GetComment returns one comment within scope.
func (s *Store) GetComment(ctx context.Context, id string, scope models.Scope) (*models.Comment, error) {
	query := "SELECT " + qualifiedCommentColumns + " FROM comments c LEFT JOIN users u ON u.id = c.user_id WHERE c.id = ?"
	if clause := scopeClause(scope, "c"); clause != "" {
		query += " AND " + clause
	}
	return scanComment(s.db.QueryRowContext(ctx, query, id))
}

// UpdateComment writes the text and approval flag of a comment.
func (s *Store) UpdateComment(ctx context.Context, comment *models.Comment) error {
	if comment == nil {
		return fmt.Errorf("comment is required")
	}
	result, err := s.db.ExecContext(ctx, `
		UPDATE comments SET text = ?, is_approved = ?, updated_by = ?, updated_at = ?
		WHERE id = ?
	`, comment.Text, boolToInt(comment.IsApproved), nullIfEmpty(comment.UpdatedBy), dbFormatTime(comment.UpdatedAt), comment.ID)
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

// ListComments lists comments newest first.
func (s *Store) ListComments(ctx context.Context, filter CommentFilter) ([]models.Comment, error) {
	where, args := commentWhere(filter)
	query := "SELECT " + qualifiedCommentColumns + " FROM comments c LEFT JOIN users u ON u.id = c.user_id"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY c.created_at DESC, c.id ASC"
	query, args = appendPagination(query, args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	comments := []models.Comment{}
	for rows.Next() {
		comment, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		if comment != nil {
			comments = append(comments, *comment)
		}
	}
	return comments, rows.Err()
}

// CountComments counts comments matching filter, ignoring pagination.
func (s *Store) CountComments(ctx context.Context, filter CommentFilter) (int, error) {
	where, args := commentWhere(filter)
	query := "SELECT COUNT(*) FROM comments c"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	var count int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func commentWhere(filter CommentFilter) ([]string, []any) {
	where := []string{}
	args := []any{}
	if clause := scopeClause(filter.Scope, "c"); clause != "" {
		where = append(where, clause)
	}
	if filter.ArticleID != "" {
		where = append(where, "c.article_id = ?")
		args = append(args, filter.ArticleID)
	}
	if filter.UserID != "" {
		where = append(where, "c.user_id = ?")
		args = append(args, filter.UserID)
	}
	if filter.Approved != nil {
		where = append(where, "c.is_approved = ?")
		args = append(args, boolToInt(*filter.Approved))
	}
	return where, args
}

// ApproveComments approves live, unapproved comments and returns how many changed.
func (s *Store) ApproveComments(ctx context.Context, ids []string, actor string, now time.Time) (int, error) {
	ids = dedupeIDs(ids)
	if len(ids) == 0 {
		return 0, nil
	}

	count := 0
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		args := append([]any{nullIfEmpty(actor), dbFormatTime(now)}, stringArgs(ids)...)
		query := fmt.Sprintf("UPDATE comments SET is_approved = 1, updated_by = ?, updated_at = ? WHERE is_approved = 0 AND is_deleted = 0 AND id IN (%s)", placeholders(len(ids)))
		result, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return err
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return err
		}
		count = int(affected)
		return nil
	})
	return count, err
}

func scanComment(row scanner) (*models.Comment, error) {
	comment := models.Comment{}
	var isApproved int
	var audit auditScan

	dest := []any{&comment.ID, &comment.ArticleID, &comment.UserID, &comment.Username, &comment.Text, &isApproved}
	if err := row.Scan(append(dest, audit.dest()...)...); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	comment.IsApproved = isApproved != 0
	if err := audit.apply(&comment.Audit); err != nil {
		return nil, err
	}
	return &comment, nil
}
