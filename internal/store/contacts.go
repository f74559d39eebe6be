package store

import (
	"context"
	"database/sql"
	"fmt"

	"quill/internal/models"
)

// CreateContact stores one contact form submission.
func (s *Store) CreateContact(ctx context.Context, contact *models.Contact) error {
	if contact == nil {
		return fmt.Errorf("contact is required")
	}
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if contact.ID == "" {
			id, err := newID(ctx, tx, "contacts", PrefixContact)
			if err != nil {
				return err
			}
			contact.ID = id
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO contacts (id, name, email, phone, message, created_at)
			VALUES (?, ?, ?, ?, ?, ?)
		`, contact.ID, contact.Name, contact.Email, nullIfEmpty(contact.Phone), contact.Message, dbFormatTime(contact.CreatedAt))
		return err
	})
}

// ListContacts returns submissions newest first.
func (s *Store) ListContacts(ctx context.Context, limit, offset int) ([]models.Contact, error) {
	query, args := appendPagination("SELECT id, name, email, phone, message, created_at FROM contacts ORDER BY created_at DESC, id ASC", nil, limit, offset)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	contacts := []models.Contact{}
	for rows.Next() {
		var contact models.Contact
		var phone sql.NullString
		var createdAt string
		if err := rows.Scan(&contact.ID, &contact.Name, &contact.Email, &phone, &contact.Message, &createdAt); err != nil {
			return nil, err
		}
		contact.Phone = phone.String
		if contact.CreatedAt, err = dbParseTime(createdAt); err != nil {
			return nil, err
		}
		contacts = append(contacts, contact)
	}
	return contacts, rows.Err()
}
