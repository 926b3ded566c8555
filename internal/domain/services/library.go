package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/versely/versely/internal/domain/entities"
	"github.com/versely/versely/internal/domain/ports"
)

// LibraryService manages the collection library: creating and deleting
// songs, sermons, and asset decks, and the cascades a deletion triggers
// (owned text content, flow references, orphaned slides).
type LibraryService struct {
	collections ports.CollectionStore
	slides      ports.SlideStore
	content     ports.ContentStore
	flows       *FlowService
	sweeper     ports.Sweeper
	regenerator ports.Regenerator
	clock       ports.Clock
	logger      *slog.Logger
	titleCaser  cases.Caser
}

// NewLibrary creates a LibraryService.
func NewLibrary(
	collections ports.CollectionStore,
	slides ports.SlideStore,
	content ports.ContentStore,
	flows *FlowService,
	sweeper ports.Sweeper,
	regenerator ports.Regenerator,
	clock ports.Clock,
	logger *slog.Logger,
) *LibraryService {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &LibraryService{
		collections: collections,
		slides:      slides,
		content:     content,
		flows:       flows,
		sweeper:     sweeper,
		regenerator: regenerator,
		clock:       clock,
		logger:      logger.With("service", "library"),
		titleCaser:  cases.Title(language.English),
	}
}

// CreateCollection creates an empty collection of the given kind.
func (s *LibraryService) CreateCollection(ctx context.Context, kind entities.CollectionKind, title, description string) (*entities.Collection, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("unknown collection kind %q", kind)
	}
	if strings.TrimSpace(title) == "" {
		return nil, errors.New("collection title is required")
	}

	now := s.clock.Now()
	c := &entities.Collection{
		ID:          uuid.New().String(),
		Kind:        kind,
		Title:       strings.TrimSpace(title),
		Description: description,
		SlideIDs:    []string{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.collections.CreateCollection(ctx, c); err != nil {
		return nil, fmt.Errorf("creating %s: %w", kind, err)
	}

	s.sweepAfterMutation(ctx)
	return c, nil
}

// GetCollection returns a collection by reference.
func (s *LibraryService) GetCollection(ctx context.Context, ref entities.CollectionRef) (*entities.Collection, error) {
	return s.collections.GetCollection(ctx, ref)
}

// ListCollections returns every collection of a kind.
func (s *LibraryService) ListCollections(ctx context.Context, kind entities.CollectionKind) ([]entities.Collection, error) {
	return s.collections.ListCollections(ctx, kind)
}

// UpdateCollection persists metadata changes (title, description) and bumps
// the timestamp. The slide list stays reconciler-owned.
func (s *LibraryService) UpdateCollection(ctx context.Context, c *entities.Collection) error {
	if err := c.Validate(); err != nil {
		return err
	}
	c.UpdatedAt = s.clock.Now()
	return s.collections.UpdateCollection(ctx, c)
}

// DeleteCollection removes a collection together with its owned text
// content and any flow items referencing it, then sweeps the slides it
// owned.
func (s *LibraryService) DeleteCollection(ctx context.Context, ref entities.CollectionRef) error {
	c, err := s.collections.GetCollection(ctx, ref)
	if err != nil {
		if errors.Is(err, entities.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("loading %s: %w", ref, err)
	}

	if err := s.content.DeleteContent(ctx, c.ContentKey()); err != nil && !errors.Is(err, entities.ErrNotFound) {
		s.logger.Warn("deleting owned content failed", "key", c.ContentKey(), "error", err)
	}

	if err := s.collections.DeleteCollection(ctx, ref); err != nil {
		return fmt.Errorf("deleting %s: %w", ref, err)
	}

	if s.flows != nil {
		if err := s.flows.RemoveCollectionEverywhere(ctx, ref.ID); err != nil {
			s.logger.Warn("removing flow references failed", "collection", ref.ID, "error", err)
		}
	}

	s.sweepAfterMutation(ctx)
	return nil
}

// Text returns the collection's owning text field content, empty when
// never written.
func (s *LibraryService) Text(ctx context.Context, ref entities.CollectionRef) (string, error) {
	c, err := s.collections.GetCollection(ctx, ref)
	if err != nil {
		return "", err
	}
	return s.content.GetContent(ctx, c.ContentKey())
}

// ApplyBackground sets the background URL on every slide the collection
// owns. An empty URL clears backgrounds.
func (s *LibraryService) ApplyBackground(ctx context.Context, ref entities.CollectionRef, url string) error {
	c, err := s.collections.GetCollection(ctx, ref)
	if err != nil {
		return fmt.Errorf("loading %s: %w", ref, err)
	}

	for _, id := range c.SlideIDs {
		slide, err := s.slides.GetSlide(ctx, id)
		if err != nil {
			s.logger.Warn("loading slide for background failed", "slide", id, "error", err)
			continue
		}
		slide.SetBackground(url)
		slide.UpdatedAt = s.clock.Now()
		if err := s.slides.UpsertSlide(ctx, slide); err != nil {
			s.logger.Warn("persisting slide background failed", "slide", id, "error", err)
		}
	}

	c.UpdatedAt = s.clock.Now()
	if err := s.collections.UpdateCollection(ctx, c); err != nil {
		s.logger.Warn("bumping collection timestamp failed", "ref", ref.String(), "error", err)
	}
	return nil
}

// ImportSong creates a song from imported fields and generates its slides.
// A missing title is derived from the first lyric line, title-cased.
func (s *LibraryService) ImportSong(ctx context.Context, title, author, background, lyrics string) (*entities.Collection, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		title = s.deriveTitle(lyrics)
	}
	if title == "" {
		return nil, errors.New("song has no title and no lyrics to derive one from")
	}

	c, err := s.CreateCollection(ctx, entities.KindSong, title, author)
	if err != nil {
		return nil, err
	}

	if err := s.regenerator.RegenerateNow(ctx, c.Ref(), lyrics); err != nil {
		return nil, fmt.Errorf("generating slides for %s: %w", c.ID, err)
	}

	if background != "" {
		if err := s.ApplyBackground(ctx, c.Ref(), background); err != nil {
			s.logger.Warn("applying imported background failed", "collection", c.ID, "error", err)
		}
	}

	return s.collections.GetCollection(ctx, c.Ref())
}

func (s *LibraryService) deriveTitle(lyrics string) string {
	for _, line := range strings.Split(lyrics, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return s.titleCaser.String(strings.ToLower(trimmed))
		}
	}
	return ""
}

// sweepAfterMutation keeps storage consistent after any collection-list
// change. Failures are logged; the mutation itself already succeeded.
func (s *LibraryService) sweepAfterMutation(ctx context.Context) {
	if s.sweeper == nil {
		return
	}
	if _, err := s.sweeper.Sweep(ctx); err != nil {
		s.logger.Warn("post-mutation sweep failed", "error", err)
	}
}
