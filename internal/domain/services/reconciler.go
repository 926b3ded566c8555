// Package services implements the business logic that keeps text,
// slides, and collections consistent across edits.
package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/versely/versely/internal/domain/entities"
	"github.com/versely/versely/internal/domain/ports"
)

// ReconcilerService replaces a collection's slide batch with a freshly
// synthesized one: the previous batch is deleted wholesale and the new one
// persisted, never patched incrementally.
//
// Persistence failures along the way are logged and skipped; the in-memory
// state advances optimistically. This is a client-syncs-to-a-remote-store
// design, not a transactional database.
type ReconcilerService struct {
	slides      ports.SlideStore
	collections ports.CollectionStore
	clock       ports.Clock
	logger      *slog.Logger
}

// NewReconciler creates a ReconcilerService.
func NewReconciler(slides ports.SlideStore, collections ports.CollectionStore, clock ports.Clock, logger *slog.Logger) *ReconcilerService {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ReconcilerService{
		slides:      slides,
		collections: collections,
		clock:       clock,
		logger:      logger.With("service", "reconciler"),
	}
}

// Reconcile swaps the owner's slide set for newSlides. The owner's slide
// list is cleared and persisted first, so a reader mid-update sees "no
// slides" rather than a stale mix; the old batch is then deleted
// best-effort, and the new batch persisted last. A missing owner (raced
// with deletion) is a safe no-op.
//
// It returns the updated owner, the ids of the deleted slides, and an
// error only when the owner lookup itself failed.
func (r *ReconcilerService) Reconcile(ctx context.Context, ref entities.CollectionRef, newSlides []entities.Slide) (*entities.Collection, []string, error) {
	owner, err := r.collections.GetCollection(ctx, ref)
	if err != nil {
		if errors.Is(err, entities.ErrNotFound) {
			r.logger.Info("owner gone before reconcile, skipping", "ref", ref.String())
			return nil, nil, nil
		}
		return nil, nil, err
	}

	obsolete := owner.SlideIDs

	owner.SlideIDs = []string{}
	owner.UpdatedAt = r.clock.Now()
	if err := r.collections.UpdateCollection(ctx, owner); err != nil {
		r.logger.Warn("clearing slide list failed", "ref", ref.String(), "error", err)
	}

	for _, id := range obsolete {
		if err := r.slides.DeleteSlide(ctx, id); err != nil && !errors.Is(err, entities.ErrNotFound) {
			// One failed deletion must not abort the batch.
			r.logger.Warn("deleting obsolete slide failed", "slide", id, "error", err)
		}
	}

	if len(newSlides) == 0 {
		return owner, obsolete, nil
	}

	ids := make([]string, 0, len(newSlides))
	for i := range newSlides {
		if err := r.slides.UpsertSlide(ctx, &newSlides[i]); err != nil {
			r.logger.Warn("persisting slide failed", "slide", newSlides[i].ID, "error", err)
		}
		ids = append(ids, newSlides[i].ID)
	}

	owner.SlideIDs = ids
	owner.UpdatedAt = r.clock.Now()
	if err := r.collections.UpdateCollection(ctx, owner); err != nil {
		r.logger.Warn("updating slide list failed", "ref", ref.String(), "error", err)
	}

	return owner, obsolete, nil
}

// OwnerBackground returns the background URL carried by the owner's first
// slide, or "" when the owner, its slides, or the marker are absent.
// Background is an owner-level property: regeneration reads it from the
// first slide of the previous batch and re-applies it to every new slide.
func (r *ReconcilerService) OwnerBackground(ctx context.Context, ref entities.CollectionRef) string {
	owner, err := r.collections.GetCollection(ctx, ref)
	if err != nil || len(owner.SlideIDs) == 0 {
		return ""
	}

	first, err := r.slides.GetSlide(ctx, owner.SlideIDs[0])
	if err != nil {
		return ""
	}
	return first.Background()
}

var _ ports.Reconciler = (*ReconcilerService)(nil)
