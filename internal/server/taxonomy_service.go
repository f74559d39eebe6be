package server

import (
	"context"
	"fmt"
	"strings"
	"time"

	"quill/internal/api"
	"quill/internal/models"
	"quill/internal/store"
)

// TaxonomyService manages categories and tags, which share one shape.
type TaxonomyService struct {
	store store.BlogStore
	now   func() time.Time
}

func NewTaxonomyService(blogStore store.BlogStore) *TaxonomyService {
	return &TaxonomyService{store: blogStore, now: func() time.Time { return time.Now().UTC() }}
}

func (t *TaxonomyService) Create(ctx context.Context, kind models.TermKind, req api.TermCreateRequest, actor string) (*models.Term, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	slug, err := slugOrDerived(req.Slug, name, models.TermNameMinLength)
	if err != nil {
		return nil, err
	}
	if err := t.ensureNameFree(ctx, kind, name, ""); err != nil {
		return nil, err
	}

	term := &models.Term{
		Kind:        kind,
		Name:        name,
		Slug:        slug,
		Description: strings.TrimSpace(req.Description),
		IsActive:    true,
		SEO:         models.SEO{MetaTitle: strings.TrimSpace(req.MetaTitle), MetaDescription: strings.TrimSpace(req.MetaDescription)},
	}
	if req.IsActive != nil {
		term.IsActive = *req.IsActive
	}
	term.StampCreate(actor, t.now())

	if err := t.store.CreateTerm(ctx, term); err != nil {
		return nil, t.writeError(kind, err)
	}
	return term, nil
}

func (t *TaxonomyService) Update(ctx context.Context, kind models.TermKind, id string, req api.TermUpdateRequest, actor string) (*models.Term, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	term, err := t.store.GetTerm(ctx, kind, id, models.ScopeAlive)
	if err != nil {
		return nil, storeFailure(err)
	}
	if term == nil {
		return nil, recordNotFound(kind.Entity())
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if !strings.EqualFold(name, term.Name) {
			if err := t.ensureNameFree(ctx, kind, name, term.ID); err != nil {
				return nil, err
			}
		}
		term.Name = name
	}
	if req.Slug != nil {
		slug, err := slugOrDerived(*req.Slug, term.Name, models.TermNameMinLength)
		if err != nil {
			return nil, err
		}
		term.Slug = slug
	}
	if req.Description != nil {
		term.Description = strings.TrimSpace(*req.Description)
	}
	if req.IsActive != nil {
		term.IsActive = *req.IsActive
	}
	if req.MetaTitle != nil {
		term.MetaTitle = strings.TrimSpace(*req.MetaTitle)
	}
	if req.MetaDescription != nil {
		term.MetaDescription = strings.TrimSpace(*req.MetaDescription)
	}
	term.StampUpdate(actor, t.now())

	if err := t.store.UpdateTerm(ctx, term); err != nil {
		return nil, t.writeError(kind, err)
	}
	return term, nil
}

func (t *TaxonomyService) Get(ctx context.Context, kind models.TermKind, id string, scope models.Scope) (*models.Term, error) {
	term, err := t.store.GetTerm(ctx, kind, id, scope)
	if err != nil {
		return nil, storeFailure(err)
	}
	if term == nil {
		return nil, recordNotFound(kind.Entity())
	}
	return term, nil
}

// List returns one admin page and the total across all pages.
func (t *TaxonomyService) List(ctx context.Context, kind models.TermKind, filter store.TermFilter) ([]models.Term, int, error) {
	all := filter
	all.Limit, all.Offset = 0, 0
	everything, err := t.store.ListTerms(ctx, kind, all)
	if err != nil {
		return nil, 0, storeFailure(err)
	}
	total := len(everything)
	start := min(filter.Offset, total)
	end := total
	if filter.Limit > 0 {
		end = min(start+filter.Limit, total)
	}
	return everything[start:end], total, nil
}

// Public returns the active live terms shown in navigation.
func (t *TaxonomyService) Public(ctx context.Context, kind models.TermKind) ([]models.Term, error) {
	terms, err := t.store.ListTerms(ctx, kind, store.TermFilter{Scope: models.ScopeAlive, ActiveOnly: true})
	if err != nil {
		return nil, storeFailure(err)
	}
	return terms, nil
}

func (t *TaxonomyService) ensureNameFree(ctx context.Context, kind models.TermKind, name, excludeID string) error {
	taken, err := t.store.TermNameTaken(ctx, kind, name, excludeID)
	if err != nil {
		return storeFailure(err)
	}
	if taken {
		return conflictCode(fmt.Errorf("%s with this name already exists", kind), ErrCodeDuplicate)
	}
	return nil
}

func (t *TaxonomyService) writeError(kind models.TermKind, err error) error {
	if store.IsUniqueConstraint(err) {
		return conflictCode(fmt.Errorf("an active %s with this name and slug already exists", kind), ErrCodeDuplicate)
	}
	return mapStoreError(err, recordNotFound(kind.Entity()))
}
