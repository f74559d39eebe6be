package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"quill/internal/models"
)

// auditedTable maps an audited entity to its table and file-owner type.
type auditedTable struct {
	table string
	owner models.OwnerType
}

var auditedTables = map[models.Entity]auditedTable{
	models.EntityCategory: {table: "categories"},
	models.EntityTag:      {table: "tags"},
	models.EntityArticle:  {table: "articles", owner: models.OwnerArticle},
	models.EntityComment:  {table: "comments"},
}

func tableFor(entity models.Entity) (auditedTable, error) {
	t, ok := auditedTables[entity]
	if !ok {
		return auditedTable{}, fmt.Errorf("unknown entity: %s", entity)
	}
	return t, nil
}

// AuditState returns the audit columns of one record regardless of deletion state.
func (s *Store) AuditState(ctx context.Context, entity models.Entity, id string) (*models.Audit, error) {
	t, err := tableFor(entity)
	if err != nil {
		return nil, err
	}
	var scan auditScan
	err = s.db.QueryRowContext(ctx, "SELECT "+auditColumns+" FROM "+t.table+" WHERE id = ?", id).Scan(scan.dest()...)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var audit models.Audit
	if err := scan.apply(&audit); err != nil {
		return nil, err
	}
	return &audit, nil
}

// SoftDelete flags live rows deleted in one transaction and returns how many
// changed. Rows already deleted keep their original provenance.
// An empty actor records a null deleted_by.
func (s *Store) SoftDelete(ctx context.Context, entity models.Entity, ids []string, actor string, now time.Time) (int, error) {
	t, err := tableFor(entity)
	if err != nil {
		return 0, err
	}
	ids = dedupeIDs(ids)
	if len(ids) == 0 {
		return 0, nil
	}

	count := 0
	err = s.withTx(ctx, func(tx *sql.Tx) error {
		var stamp models.Audit
		stamp.MarkDeleted(actor, now)
		set, args := deletionSet(stamp)
		query := fmt.Sprintf("UPDATE %s SET %s WHERE is_deleted = 0 AND id IN (%s)", t.table, set, placeholders(len(ids)))
		result, err := tx.ExecContext(ctx, query, append(args, stringArgs(ids)...)...)
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

// Restore clears the deletion fields of deleted rows in one transaction and
// returns how many changed. Live rows are left alone.
func (s *Store) Restore(ctx context.Context, entity models.Entity, ids []string) (int, error) {
	t, err := tableFor(entity)
	if err != nil {
		return 0, err
	}
	ids = dedupeIDs(ids)
	if len(ids) == 0 {
		return 0, nil
	}

	count := 0
	err = s.withTx(ctx, func(tx *sql.Tx) error {
		var stamp models.Audit
		stamp.Restore()
		set, args := deletionSet(stamp)
		query := fmt.Sprintf("UPDATE %s SET %s WHERE is_deleted = 1 AND id IN (%s)", t.table, set, placeholders(len(ids)))
		result, err := tx.ExecContext(ctx, query, append(args, stringArgs(ids)...)...)
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

// deletionSet renders the deletion columns of stamp as an UPDATE assignment.
func deletionSet(stamp models.Audit) (string, []any) {
	return "is_deleted = ?, deleted_at = ?, deleted_by = ?",
		[]any{boolToInt(stamp.IsDeleted), nullTime(stamp.DeletedAt), nullIfEmpty(stamp.DeletedBy)}
}

// HardDelete physically removes one row and its dependents. Files owned by the
// row are released and returned for purging after commit. ErrNotFound is
// returned when no row matches.
func (s *Store) HardDelete(ctx context.Context, entity models.Entity, id string, now time.Time) ([]string, error) {
	t, err := tableFor(entity)
	if err != nil {
		return nil, err
	}

	var released []string
	err = s.withTx(ctx, func(tx *sql.Tx) error {
		if t.owner != "" {
			keys, err := releaseOwnerMediaTx(ctx, tx, t.owner, id, now)
			if err != nil {
				return err
			}
			released = keys
		}

		result, err := tx.ExecContext(ctx, "DELETE FROM "+t.table+" WHERE id = ?", id)
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
	})
	if err != nil {
		return nil, err
	}
	return released, nil
}
