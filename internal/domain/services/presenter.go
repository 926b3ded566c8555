package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/versely/versely/internal/domain/entities"
	"github.com/versely/versely/internal/domain/ports"
)

// PresenterService drives the live display during a service: which
// collection is up, which slide is showing, whether the output is blanked,
// and the optional per-collection auto-cycle. Every change is broadcast to
// connected display clients.
type PresenterService struct {
	collections ports.CollectionStore
	slides      ports.SlideStore
	broadcaster ports.DisplayBroadcaster
	interval    time.Duration
	logger      *slog.Logger

	mu          sync.Mutex
	state       entities.DisplayState
	cycleCancel context.CancelFunc
}

// NewPresenter creates a PresenterService with the given auto-cycle
// interval.
func NewPresenter(collections ports.CollectionStore, slides ports.SlideStore, broadcaster ports.DisplayBroadcaster, interval time.Duration, logger *slog.Logger) *PresenterService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PresenterService{
		collections: collections,
		slides:      slides,
		broadcaster: broadcaster,
		interval:    interval,
		logger:      logger.With("service", "presenter"),
	}
}

// State returns a copy of the current display state.
func (s *PresenterService) State() entities.DisplayState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// ShowCollection puts a collection on the display starting at its first
// slide. Any running auto-cycle stops.
func (s *PresenterService) ShowCollection(ctx context.Context, ref entities.CollectionRef) error {
	c, err := s.collections.GetCollection(ctx, ref)
	if err != nil {
		return fmt.Errorf("loading %s: %w", ref, err)
	}

	s.StopCycle()

	s.mu.Lock()
	s.state = entities.DisplayState{
		CollectionID: c.ID,
		SlideIndex:   0,
		TotalSlides:  len(c.SlideIDs),
		UpdatedAt:    time.Now(),
	}
	state := s.state
	s.mu.Unlock()

	s.broadcast("display", state)
	return nil
}

// Navigate moves the display within the current collection. Supported
// actions: next, prev, first, last, goto (with a 0-based target).
func (s *PresenterService) Navigate(action string, target int) error {
	s.mu.Lock()
	if s.state.CollectionID == "" {
		s.mu.Unlock()
		return errors.New("nothing on display")
	}

	switch action {
	case "next":
		if s.state.SlideIndex < s.state.TotalSlides-1 {
			s.state.SlideIndex++
		}
	case "prev":
		if s.state.SlideIndex > 0 {
			s.state.SlideIndex--
		}
	case "first":
		s.state.SlideIndex = 0
	case "last":
		if s.state.TotalSlides > 0 {
			s.state.SlideIndex = s.state.TotalSlides - 1
		}
	case "goto":
		if target < 0 || target >= s.state.TotalSlides {
			s.mu.Unlock()
			return fmt.Errorf("slide %d out of range", target)
		}
		s.state.SlideIndex = target
	default:
		s.mu.Unlock()
		return fmt.Errorf("unknown navigation action %q", action)
	}

	s.state.UpdatedAt = time.Now()
	state := s.state
	s.mu.Unlock()

	s.broadcast("display", state)
	return nil
}

// Blank toggles the blanked flag without losing position.
func (s *PresenterService) Blank(on bool) {
	s.mu.Lock()
	s.state.Blanked = on
	s.state.UpdatedAt = time.Now()
	state := s.state
	s.mu.Unlock()

	s.broadcast("display", state)
}

// CurrentSlide resolves the slide currently on display.
func (s *PresenterService) CurrentSlide(ctx context.Context) (*entities.Slide, error) {
	s.mu.Lock()
	collectionID := s.state.CollectionID
	index := s.state.SlideIndex
	s.mu.Unlock()

	if collectionID == "" {
		return nil, entities.ErrNotFound
	}

	c, err := s.findCollection(ctx, collectionID)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(c.SlideIDs) {
		return nil, entities.ErrNotFound
	}
	return s.slides.GetSlide(ctx, c.SlideIDs[index])
}

// StartCycle auto-advances the display on the configured interval,
// wrapping at the end. It runs until StopCycle, a new ShowCollection, or
// ctx cancellation.
func (s *PresenterService) StartCycle(ctx context.Context) {
	s.StopCycle()

	cycleCtx, cancel := context.WithCancel(ctx)

	s.mu.Lock()
	s.cycleCancel = cancel
	s.state.Cycling = true
	state := s.state
	s.mu.Unlock()

	s.broadcast("display", state)

	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-cycleCtx.Done():
				return
			case <-ticker.C:
				s.advanceWrapping()
			}
		}
	}()
}

// StopCycle cancels a running auto-cycle. The ticker must be cleared
// explicitly or it keeps firing against stale state.
func (s *PresenterService) StopCycle() {
	s.mu.Lock()
	cancel := s.cycleCancel
	s.cycleCancel = nil
	wasCycling := s.state.Cycling
	s.state.Cycling = false
	state := s.state
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if wasCycling {
		s.broadcast("display", state)
	}
}

// Close stops any running cycle.
func (s *PresenterService) Close() {
	s.StopCycle()
}

func (s *PresenterService) advanceWrapping() {
	s.mu.Lock()
	if s.state.TotalSlides == 0 {
		s.mu.Unlock()
		return
	}
	s.state.SlideIndex = (s.state.SlideIndex + 1) % s.state.TotalSlides
	s.state.UpdatedAt = time.Now()
	state := s.state
	s.mu.Unlock()

	s.broadcast("display", state)
}

// findCollection resolves a bare collection id across all kinds.
func (s *PresenterService) findCollection(ctx context.Context, id string) (*entities.Collection, error) {
	for _, kind := range entities.CollectionKinds {
		c, err := s.collections.GetCollection(ctx, entities.CollectionRef{Kind: kind, ID: id})
		if err == nil {
			return c, nil
		}
		if !errors.Is(err, entities.ErrNotFound) {
			return nil, err
		}
	}
	return nil, entities.ErrNotFound
}

func (s *PresenterService) broadcast(eventType string, state entities.DisplayState) {
	if s.broadcaster == nil {
		return
	}
	s.broadcaster.BroadcastDisplay(entities.NewSyncEvent(eventType, map[string]interface{}{
		"collectionId": state.CollectionID,
		"slideIndex":   state.SlideIndex,
		"totalSlides":  state.TotalSlides,
		"blanked":      state.Blanked,
		"cycling":      state.Cycling,
	}))
}
