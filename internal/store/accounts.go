package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"quill/internal/models"
)

const userColumns = "id, username, email, first_name, last_name, password_hash, role, disabled, created_at, updated_at"

const (
	sessionTokenBytes  = 10
	profileFieldAvatar = "avatar"
)

// CountEnabledUsers returns the number of non-disabled users, limited to one
// role unless role is empty.
func (s *Store) CountEnabledUsers(ctx context.Context, role models.Role) (int, error) {
	query := "SELECT COUNT(*) FROM users WHERE disabled = 0"
	args := []any{}
	if role != "" {
		query += " AND role = ?"
		args = append(args, string(role))
	}
	var count int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// CreateUser inserts a user and its profile in one transaction.
func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	if user == nil {
		return fmt.Errorf("user is required")
	}
	user.Username = normalizeUsername(user.Username)
	if user.Username == "" {
		return fmt.Errorf("username is required")
	}
	if strings.TrimSpace(user.PasswordHash) == "" {
		return fmt.Errorf("password hash is required")
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		if user.ID == "" {
			id, err := newID(ctx, tx, "users", PrefixUser)
			if err != nil {
				return err
			}
			user.ID = id
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO users (`+userColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, user.ID, user.Username, nullIfEmpty(user.Email), nullIfEmpty(user.FirstName), nullIfEmpty(user.LastName),
			user.PasswordHash, string(user.Role), boolToInt(user.Disabled),
			dbFormatTime(user.CreatedAt), dbFormatTime(user.UpdatedAt))
		if err != nil {
			return err
		}
		return syncProfileTx(ctx, tx, user)
	})
}

// UpdateUser writes the mutable user columns and syncs the profile's name and email.
func (s *Store) UpdateUser(ctx context.Context, user *models.User) error {
	if user == nil {
		return fmt.Errorf("user is required")
	}
	return s.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `
			UPDATE users
			SET email = ?, first_name = ?, last_name = ?, password_hash = ?, role = ?, disabled = ?, updated_at = ?
			WHERE id = ?
		`, nullIfEmpty(user.Email), nullIfEmpty(user.FirstName), nullIfEmpty(user.LastName), user.PasswordHash,
			string(user.Role), boolToInt(user.Disabled), dbFormatTime(user.UpdatedAt), user.ID)
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
		return syncProfileTx(ctx, tx, user)
	})
}

// syncProfileTx creates the user's profile or refreshes its name and email.
func syncProfileTx(ctx context.Context, tx *sql.Tx, user *models.User) error {
	profileID, err := newID(ctx, tx, "profiles", PrefixProfile)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO profiles (id, user_id, name, email, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
		  name = excluded.name,
		  email = excluded.email,
		  updated_at = excluded.updated_at
	`, profileID, user.ID, nullIfEmpty(user.FullName()), nullIfEmpty(strings.TrimSpace(user.Email)),
		dbFormatTime(user.UpdatedAt), dbFormatTime(user.UpdatedAt))
	return err
}

// GetUserByUsername returns a user by normalized username.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	username = normalizeUsername(username)
	if username == "" {
		return nil, nil
	}
	row := s.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE username = ? LIMIT 1", username)
	return scanUser(row)
}

// GetUserByID returns a user by id.
func (s *Store) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, nil
	}
	row := s.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id = ? LIMIT 1", id)
	return scanUser(row)
}

// ListUsers returns all users sorted by username.
func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+userColumns+" FROM users ORDER BY username ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]models.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		if user == nil {
			continue
		}
		users = append(users, *user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

// DeleteUser removes a user and its profile. The profile's files are released
// and returned for purging after commit.
func (s *Store) DeleteUser(ctx context.Context, username string, now time.Time) ([]string, error) {
	username = normalizeUsername(username)
	if username == "" {
		return nil, fmt.Errorf("username is required")
	}

	var released []string
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var userID string
		err := tx.QueryRowContext(ctx, "SELECT id FROM users WHERE username = ?", username).Scan(&userID)
		if err == sql.ErrNoRows {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		var profileID string
		err = tx.QueryRowContext(ctx, "SELECT id FROM profiles WHERE user_id = ?", userID).Scan(&profileID)
		if err != nil && err != sql.ErrNoRows {
			return err
		}
		if profileID != "" {
			keys, err := releaseOwnerMediaTx(ctx, tx, models.OwnerProfile, profileID, now)
			if err != nil {
				return err
			}
			released = keys
			if _, err := tx.ExecContext(ctx, "DELETE FROM profiles WHERE id = ?", profileID); err != nil {
				return err
			}
		}

		_, err = tx.ExecContext(ctx, "DELETE FROM users WHERE id = ?", userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return released, nil
}

// CreateSession creates a browser session bound to one user and token hash.
func (s *Store) CreateSession(ctx context.Context, userID, tokenHash string, expiresAt, createdAt time.Time) error {
	userID = strings.TrimSpace(userID)
	tokenHash = strings.TrimSpace(tokenHash)
	if userID == "" {
		return fmt.Errorf("user id is required")
	}
	if tokenHash == "" {
		return fmt.Errorf("token hash is required")
	}

	suffix, err := randomHex(sessionTokenBytes)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, user_id, token_hash, expires_at, revoked_at, created_at)
		VALUES (?, ?, ?, ?, NULL, ?)
	`, prefixSession+"-"+suffix, userID, tokenHash, dbFormatTime(expiresAt), dbFormatTime(createdAt))
	return err
}

// GetUserBySessionTokenHash returns the owning user for an active, non-revoked session token hash.
func (s *Store) GetUserBySessionTokenHash(ctx context.Context, tokenHash string, now time.Time) (*models.User, error) {
	tokenHash = strings.TrimSpace(tokenHash)
	if tokenHash == "" {
		return nil, nil
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT u.id, u.username, u.email, u.first_name, u.last_name, u.password_hash, u.role, u.disabled, u.created_at, u.updated_at
		FROM sessions s
		JOIN users u ON u.id = s.user_id
		WHERE s.token_hash = ?
		  AND s.revoked_at IS NULL
		  AND s.expires_at > ?
		  AND u.disabled = 0
		LIMIT 1
	`, tokenHash, dbFormatTime(now))

	return scanUser(row)
}

// RevokeSessionByTokenHash marks one session revoked by token hash.
func (s *Store) RevokeSessionByTokenHash(ctx context.Context, tokenHash string, revokedAt time.Time) error {
	tokenHash = strings.TrimSpace(tokenHash)
	if tokenHash == "" {
		return nil
	}
	_, err := s.db.ExecContext(ctx, `
		UPDATE sessions
		SET revoked_at = ?
		WHERE token_hash = ?
		  AND revoked_at IS NULL
	`, dbFormatTime(revokedAt), tokenHash)
	return err
}

func scanUser(row scanner) (*models.User, error) {
	var user models.User
	var email, firstName, lastName sql.NullString
	var role string
	var disabled int
	var createdAt, updatedAt string
	err := row.Scan(&user.ID, &user.Username, &email, &firstName, &lastName, &user.PasswordHash, &role, &disabled, &createdAt, &updatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	user.Email = email.String
	user.FirstName = firstName.String
	user.LastName = lastName.String
	user.Role = models.Role(role)
	user.Disabled = disabled != 0

	parsedCreated, err := dbParseTime(createdAt)
	if err != nil {
		return nil, err
	}
	parsedUpdated, err := dbParseTime(updatedAt)
	if err != nil {
		return nil, err
	}
	user.CreatedAt = parsedCreated
	user.UpdatedAt = parsedUpdated
	return &user, nil
}

func normalizeUsername(username string) string {
	return strings.TrimSpace(strings.ToLower(username))
}
