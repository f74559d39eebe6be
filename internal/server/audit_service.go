package server

import (
	"context"
	"fmt"
	"time"

	"quill/internal/models"
	"quill/internal/store"
)

// AuditService runs the soft-delete lifecycle for every audited entity.
type AuditService struct {
	store store.AuditStore
	media *MediaService
	now   func() time.Time
}

// BulkResult reports one lifecycle action.
type BulkResult struct {
	Entity  models.Entity
	Action  string
	Count   int
	Message string
}

// PurgeResult reports one hard delete.
type PurgeResult struct {
	Entity      models.Entity
	ID          string
	PurgedFiles []string
}

func NewAuditService(auditStore store.AuditStore, mediaService *MediaService) *AuditService {
	return &AuditService{store: auditStore, media: mediaService, now: func() time.Time { return time.Now().UTC() }}
}

// Delete soft-deletes the live rows among ids. Rows already deleted keep
// their provenance and are not counted.
func (a *AuditService) Delete(ctx context.Context, entity models.Entity, ids []string, actor string) (BulkResult, error) {
	count, err := a.store.SoftDelete(ctx, entity, ids, actor, a.now())
	if err != nil {
		return BulkResult{}, storeFailure(err)
	}
	return bulkResult(entity, "delete", count, "deleted"), nil
}

// DeleteOne soft-deletes one record. Unknown ids are not found; an already
// deleted record is a no-op.
func (a *AuditService) DeleteOne(ctx context.Context, entity models.Entity, id, actor string) (BulkResult, error) {
	if err := a.ensureExists(ctx, entity, id); err != nil {
		return BulkResult{}, err
	}
	return a.Delete(ctx, entity, []string{id}, actor)
}

// Restore clears the deletion fields of the deleted rows among ids. A restore
// that would collide with a live record's unique name or slug is a conflict.
func (a *AuditService) Restore(ctx context.Context, entity models.Entity, ids []string) (BulkResult, error) {
	count, err := a.store.Restore(ctx, entity, ids)
	if err != nil {
		if store.IsUniqueConstraint(err) {
			return BulkResult{}, conflictCode(fmt.Errorf("cannot restore: a live %s with the same name or slug exists", entity.Singular()), ErrCodeDuplicate)
		}
		return BulkResult{}, storeFailure(err)
	}
	return bulkResult(entity, "restore", count, "restored"), nil
}

func (a *AuditService) RestoreOne(ctx context.Context, entity models.Entity, id string) (BulkResult, error) {
	if err := a.ensureExists(ctx, entity, id); err != nil {
		return BulkResult{}, err
	}
	return a.Restore(ctx, entity, []string{id})
}

// Purge physically removes one record regardless of its deletion flag and
// deletes its files once the removal committed.
func (a *AuditService) Purge(ctx context.Context, entity models.Entity, id string) (PurgeResult, error) {
	released, err := a.store.HardDelete(ctx, entity, id, a.now())
	if err != nil {
		return PurgeResult{}, mapStoreError(err, recordNotFound(entity))
	}
	return PurgeResult{Entity: entity, ID: id, PurgedFiles: a.media.Purge(ctx, released)}, nil
}

func (a *AuditService) ensureExists(ctx context.Context, entity models.Entity, id string) error {
	state, err := a.store.AuditState(ctx, entity, id)
	if err != nil {
		return storeFailure(err)
	}
	if state == nil {
		return recordNotFound(entity)
	}
	return nil
}

func recordNotFound(entity models.Entity) error {
	code := ErrCodeRecordNotFound
	if entity == models.EntityArticle {
		code = ErrCodeArticleNotFound
	}
	return notFoundCode(fmt.Errorf("%s not found", entity.Singular()), code)
}

func bulkResult(entity models.Entity, action string, count int, verb string) BulkResult {
	return BulkResult{
		Entity:  entity,
		Action:  action,
		Count:   count,
		Message: fmt.Sprintf("%d item(s) %s successfully.", count, verb),
	}
}
