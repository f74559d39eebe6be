package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"quill/internal/models"
)

const (
	companyColumns   = "id, name, logo, phone, email, address, created_at, updated_at"
	companyFieldLogo = "logo"
)

// CreateCompany inserts a company and claims its logo.
func (s *Store) CreateCompany(ctx context.Context, company *models.Company) error {
	if company == nil {
		return fmt.Errorf("company is required")
	}
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if company.ID == "" {
			id, err := newID(ctx, tx, "companies", PrefixCompany)
			if err != nil {
				return err
			}
			company.ID = id
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO companies (`+companyColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, company.ID, company.Name, nullIfEmpty(company.Logo), nullIfEmpty(company.Phone), nullIfEmpty(company.Email),
			nullIfEmpty(company.Address), dbFormatTime(company.CreatedAt), dbFormatTime(company.UpdatedAt))
		if err != nil {
			return err
		}
		if company.Logo == "" {
			return nil
		}
		return claimMediaTx(ctx, tx, models.OwnerCompany, company.ID, companyFieldLogo, company.Logo)
	})
}

// GetCompany returns one company by id.
func (s *Store) GetCompany(ctx context.Context, id string) (*models.Company, error) {
	return scanCompany(s.db.QueryRowContext(ctx, "SELECT "+companyColumns+" FROM companies WHERE id = ?", id))
}

// ListCompanies returns all companies ordered by name.
func (s *Store) ListCompanies(ctx context.Context) ([]models.Company, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+companyColumns+" FROM companies ORDER BY name COLLATE NOCASE ASC, id ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	companies := []models.Company{}
	for rows.Next() {
		company, err := scanCompany(rows)
		if err != nil {
			return nil, err
		}
		if company != nil {
			companies = append(companies, *company)
		}
	}
	return companies, rows.Err()
}

// UpdateCompany writes the company fields and swaps the logo when it changed.
func (s *Store) UpdateCompany(ctx context.Context, company *models.Company) ([]string, error) {
	if company == nil {
		return nil, fmt.Errorf("company is required")
	}

	var released []string
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var oldLogo sql.NullString
		err := tx.QueryRowContext(ctx, "SELECT logo FROM companies WHERE id = ?", company.ID).Scan(&oldLogo)
		if err == sql.ErrNoRows {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE companies
			SET name = ?, logo = ?, phone = ?, email = ?, address = ?, updated_at = ?
			WHERE id = ?
		`, company.Name, nullIfEmpty(company.Logo), nullIfEmpty(company.Phone), nullIfEmpty(company.Email),
			nullIfEmpty(company.Address), dbFormatTime(company.UpdatedAt), company.ID)
		if err != nil {
			return err
		}

		keys, err := swapMediaTx(ctx, tx, models.OwnerCompany, company.ID, companyFieldLogo, oldLogo.String, company.Logo, company.UpdatedAt)
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

// DeleteCompany removes a company and releases its logo.
func (s *Store) DeleteCompany(ctx context.Context, id string, now time.Time) ([]string, error) {
	var released []string
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		keys, err := releaseOwnerMediaTx(ctx, tx, models.OwnerCompany, id, now)
		if err != nil {
			return err
		}
		result, err := tx.ExecContext(ctx, "DELETE FROM companies WHERE id = ?", id)
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
		released = keys
		return nil
	})
	if err != nil {
		return nil, err
	}
	return released, nil
}

func scanCompany(row scanner) (*models.Company, error) {
	company := models.Company{}
	var logo, phone, email, address sql.NullString
	var createdAt, updatedAt string
	err := row.Scan(&company.ID, &company.Name, &logo, &phone, &email, &address, &createdAt, &updatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	company.Logo = logo.String
	company.Phone = phone.String
	company.Email = email.String
	company.Address = address.String

	if company.CreatedAt, err = dbParseTime(createdAt); err != nil {
		return nil, err
	}
	if company.UpdatedAt, err = dbParseTime(updatedAt); err != nil {
		return nil, err
	}
	return &company, nil
}
