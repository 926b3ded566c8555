package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/versely/versely/internal/domain/entities"
	"github.com/versely/versely/internal/domain/ports"
)

// SweeperService deletes slides referenced by no collection. It runs after
// every collection-list mutation and once at startup.
type SweeperService struct {
	slides      ports.SlideStore
	collections ports.CollectionStore
	logger      *slog.Logger
}

// NewSweeper creates a SweeperService.
func NewSweeper(slides ports.SlideStore, collections ports.CollectionStore, logger *slog.Logger) *SweeperService {
	if logger == nil {
		logger = slog.Default()
	}
	return &SweeperService{
		slides:      slides,
		collections: collections,
		logger:      logger.With("service", "sweeper"),
	}
}

// Sweep deletes every slide whose id appears in no collection's slide list
// and returns the deleted ids.
func (s *SweeperService) Sweep(ctx context.Context) ([]string, error) {
	referenced, _, err := s.referencedSlideIDs(ctx)
	if err != nil {
		return nil, err
	}
	return s.deleteUnreferenced(ctx, referenced)
}

// SweepStartup is the startup pass. When zero collections of any kind
// exist, every slide is a stale leftover from a prior session and the
// entire slide set is cleared; otherwise it behaves like Sweep.
func (s *SweeperService) SweepStartup(ctx context.Context) ([]string, error) {
	referenced, collectionCount, err := s.referencedSlideIDs(ctx)
	if err != nil {
		return nil, err
	}
	if collectionCount == 0 {
		return s.deleteUnreferenced(ctx, map[string]struct{}{})
	}
	return s.deleteUnreferenced(ctx, referenced)
}

// referencedSlideIDs computes the union of every collection's slide list
// across all three kinds.
func (s *SweeperService) referencedSlideIDs(ctx context.Context) (map[string]struct{}, int, error) {
	referenced := make(map[string]struct{})
	count := 0

	for _, kind := range entities.CollectionKinds {
		collections, err := s.collections.ListCollections(ctx, kind)
		if err != nil {
			return nil, 0, fmt.Errorf("listing %s collections: %w", kind, err)
		}
		count += len(collections)
		for _, c := range collections {
			for _, id := range c.SlideIDs {
				referenced[id] = struct{}{}
			}
		}
	}

	return referenced, count, nil
}

func (s *SweeperService) deleteUnreferenced(ctx context.Context, referenced map[string]struct{}) ([]string, error) {
	all, err := s.slides.ListSlides(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing slides: %w", err)
	}

	var deleted []string
	for _, slide := range all {
		if _, ok := referenced[slide.ID]; ok {
			continue
		}
		if err := s.slides.DeleteSlide(ctx, slide.ID); err != nil && !errors.Is(err, entities.ErrNotFound) {
			s.logger.Warn("deleting orphaned slide failed", "slide", slide.ID, "error", err)
			continue
		}
		deleted = append(deleted, slide.ID)
	}

	if len(deleted) > 0 {
		s.logger.Info("swept orphaned slides", "count", len(deleted))
	}
	return deleted, nil
}

var _ ports.Sweeper = (*SweeperService)(nil)
