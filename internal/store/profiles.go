package store

import (
	"context"
	"database/sql"
	"fmt"

	"quill/internal/models"
)

const profileColumns = "id, user_id, name, avatar, phone, email, address, created_at, updated_at"

// GetProfileByUserID returns the profile bound to a user.
func (s *Store) GetProfileByUserID(ctx context.Context, userID string) (*models.Profile, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+profileColumns+" FROM profiles WHERE user_id = ?", userID)
	return scanProfile(row)
}

// UpdateProfile writes the profile fields and swaps the avatar when it changed.
// The replaced avatar key is returned for purging after commit.
func (s *Store) UpdateProfile(ctx context.Context, profile *models.Profile) ([]string, error) {
	if profile == nil {
		return nil, fmt.Errorf("profile is required")
	}

	var released []string
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var oldAvatar sql.NullString
		err := tx.QueryRowContext(ctx, "SELECT avatar FROM profiles WHERE id = ?", profile.ID).Scan(&oldAvatar)
		if err == sql.ErrNoRows {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE profiles
			SET name = ?, avatar = ?, phone = ?, email = ?, address = ?, updated_at = ?
			WHERE id = ?
		`, nullIfEmpty(profile.Name), nullIfEmpty(profile.Avatar), nullIfEmpty(profile.Phone),
			nullIfEmpty(profile.Email), nullIfEmpty(profile.Address), dbFormatTime(profile.UpdatedAt), profile.ID)
		if err != nil {
			return err
		}

		keys, err := swapMediaTx(ctx, tx, models.OwnerProfile, profile.ID, profileFieldAvatar, oldAvatar.String, profile.Avatar, profile.UpdatedAt)
		if err != nil {
			return err
		}
		released = keys
		return nil
	})
	if err != nil {
		return nil, err
	}
	return released, nil
}

func scanProfile(row scanner) (*models.Profile, error) {
	profile := models.Profile{}
	var userID, name, avatar, phone, email, address sql.NullString
	var createdAt, updatedAt string
	err := row.Scan(&profile.ID, &userID, &name, &avatar, &phone, &email, &address, &createdAt, &updatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	profile.UserID = userID.String
	profile.Name = name.String
	profile.Avatar = avatar.String
	profile.Phone = phone.String
	profile.Email = email.String
	profile.Address = address.String

	if profile.CreatedAt, err = dbParseTime(createdAt); err != nil {
		return nil, err
	}
	if profile.UpdatedAt, err = dbParseTime(updatedAt); err != nil {
		return nil, err
	}
	return &profile, nil
}
