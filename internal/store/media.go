package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"quill/internal/models"
)

const mediaColumns = "key, kind, filename, media_type, size_bytes, sha256, owner_type, owner_id, owner_field, uploaded_by, created_at, released_at"

// CreateMedia inserts one unowned media row.
func (s *Store) CreateMedia(ctx context.Context, media *models.Media) error {
	if media == nil {
		return fmt.Errorf("media is required")
	}
	media.Key = strings.TrimSpace(media.Key)
	if media.Key == "" {
		return fmt.Errorf("media key is required")
	}
	if media.SizeBytes < 0 {
		return fmt.Errorf("size_bytes must be >= 0")
	}
	if media.CreatedAt.IsZero() {
		media.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO media (key, kind, filename, media_type, size_bytes, sha256, uploaded_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, media.Key, string(media.Kind), media.Filename, media.MediaType, media.SizeBytes, media.SHA256,
		nullIfEmpty(media.UploadedBy), dbFormatTime(media.CreatedAt))
	return err
}

// GetMedia returns one media row by key.
func (s *Store) GetMedia(ctx context.Context, key string) (*models.Media, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+mediaColumns+` FROM media WHERE key = ?`, strings.TrimSpace(key))
	return scanMedia(row)
}

// ListUnownedMedia returns media no record references, released or uploaded before cutoff.
func (s *Store) ListUnownedMedia(ctx context.Context, cutoff time.Time, limit int) ([]models.Media, error) {
	query := `SELECT ` + mediaColumns + ` FROM media
		WHERE owner_id IS NULL AND COALESCE(released_at, created_at) <= ?
		ORDER BY created_at ASC`
	args := []any{dbFormatTime(cutoff)}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Media{}
	for rows.Next() {
		media, err := scanMedia(rows)
		if err != nil {
			return nil, err
		}
		if media != nil {
			out = append(out, *media)
		}
	}
	return out, rows.Err()
}

// DeleteUnownedMedia removes a media row only if no record has claimed it since.
func (s *Store) DeleteUnownedMedia(ctx context.Context, key string) (bool, error) {
	result, err := s.db.ExecContext(ctx, "DELETE FROM media WHERE key = ? AND owner_id IS NULL", key)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// swapMediaTx moves one record field from oldKey to newKey. The previous file is
// released and returned for purging once the caller commits.
func swapMediaTx(ctx context.Context, tx *sql.Tx, owner models.OwnerType, ownerID, field, oldKey, newKey string, now time.Time) ([]string, error) {
	oldKey = strings.TrimSpace(oldKey)
	newKey = strings.TrimSpace(newKey)
	if oldKey == newKey {
		return nil, nil
	}

	var released []string
	if oldKey != "" {
		result, err := tx.ExecContext(ctx, `
			UPDATE media SET owner_type = NULL, owner_id = NULL, owner_field = NULL, released_at = ?
			WHERE key = ? AND owner_type = ? AND owner_id = ? AND owner_field = ?
		`, dbFormatTime(now), oldKey, string(owner), ownerID, field)
		if err != nil {
			return nil, err
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return nil, err
		}
		if affected > 0 {
			released = append(released, oldKey)
		}
	}

	if newKey != "" {
		if err := claimMediaTx(ctx, tx, owner, ownerID, field, newKey); err != nil {
			return nil, err
		}
	}
	return released, nil
}

func claimMediaTx(ctx context.Context, tx *sql.Tx, owner models.OwnerType, ownerID, field, key string) error {
	result, err := tx.ExecContext(ctx, `
		UPDATE media SET owner_type = ?, owner_id = ?, owner_field = ?, released_at = NULL
		WHERE key = ? AND owner_id IS NULL AND released_at IS NULL
	`, string(owner), ownerID, field, key)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected > 0 {
		return nil
	}

	existing, err := scanMedia(tx.QueryRowContext(ctx, `SELECT `+mediaColumns+` FROM media WHERE key = ?`, key))
	if err != nil {
		return err
	}
	if existing == nil {
		return fmt.Errorf("%w: %s", ErrMediaMissing, key)
	}
	if existing.OwnerType == owner && existing.OwnerID == ownerID && existing.OwnerField == field {
		return nil
	}
	if existing.OwnerID == "" {
		return fmt.Errorf("%w: %s", ErrMediaReleased, key)
	}
	return fmt.Errorf("%w: %s", ErrMediaInUse, key)
}

// releaseOwnerMediaTx releases every file owned by one record, returning the keys.
func releaseOwnerMediaTx(ctx context.Context, tx *sql.Tx, owner models.OwnerType, ownerID string, now time.Time) ([]string, error) {
	rows, err := tx.QueryContext(ctx, "SELECT key FROM media WHERE owner_type = ? AND owner_id = ? ORDER BY key", string(owner), ownerID)
	if err != nil {
		return nil, err
	}
	keys := []string{}
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			rows.Close()
			return nil, err
		}
		keys = append(keys, key)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return nil, nil
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE media SET owner_type = NULL, owner_id = NULL, owner_field = NULL, released_at = ?
		WHERE owner_type = ? AND owner_id = ?
	`, dbFormatTime(now), string(owner), ownerID)
	if err != nil {
		return nil, err
	}
	return keys, nil
}

func scanMedia(row scanner) (*models.Media, error) {
	media := models.Media{}
	var kind string
	var ownerType, ownerID, ownerField, uploadedBy sql.NullString
	var createdAt string
	var releasedAt sql.NullString

	err := row.Scan(
		&media.Key,
		&kind,
		&media.Filename,
		&media.MediaType,
		&media.SizeBytes,
		&media.SHA256,
		&ownerType,
		&ownerID,
		&ownerField,
		&uploadedBy,
		&createdAt,
		&releasedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	media.Kind = models.MediaKind(kind)
	media.OwnerType = models.OwnerType(ownerType.String)
	media.OwnerID = ownerID.String
	media.OwnerField = ownerField.String
	media.UploadedBy = uploadedBy.String

	parsedCreated, err := dbParseTime(createdAt)
	if err != nil {
		return nil, err
	}
	media.CreatedAt = parsedCreated

	media.ReleasedAt, err = dbParseNullTime(releasedAt)
	if err != nil {
		return nil, err
	}
	return &media, nil
}
