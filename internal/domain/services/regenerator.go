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

// RegenerationService is the per-owner editing state machine:
//
//	Idle -> Editing (on text change) -> Debounced -> Regenerating -> Idle
//
// Text changes are debounced on the trailing edge; edits arriving while a
// regeneration runs mark the owner dirty and queue exactly one fresh cycle,
// so no edit is ever dropped.
type RegenerationService struct {
	normalizer  ports.Normalizer
	segmenter   ports.Segmenter
	synthesizer ports.Synthesizer
	reconciler  ports.Reconciler
	sweeper     ports.Sweeper
	collections ports.CollectionStore
	content     ports.ContentStore
	clock       ports.Clock
	delay       time.Duration
	logger      *slog.Logger

	mu     sync.Mutex
	owners map[entities.CollectionRef]*ownerState
	closed bool
	wg     sync.WaitGroup
}

type ownerState struct {
	timer   *time.Timer
	text    string
	running bool
	dirty   bool
}

// NewRegenerator creates a RegenerationService with the given debounce
// delay.
func NewRegenerator(
	normalizer ports.Normalizer,
	segmenter ports.Segmenter,
	synthesizer ports.Synthesizer,
	reconciler ports.Reconciler,
	sweeper ports.Sweeper,
	collections ports.CollectionStore,
	content ports.ContentStore,
	clock ports.Clock,
	delay time.Duration,
	logger *slog.Logger,
) *RegenerationService {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RegenerationService{
		normalizer:  normalizer,
		segmenter:   segmenter,
		synthesizer: synthesizer,
		reconciler:  reconciler,
		sweeper:     sweeper,
		collections: collections,
		content:     content,
		clock:       clock,
		delay:       delay,
		logger:      logger.With("service", "regenerator"),
		owners:      make(map[entities.CollectionRef]*ownerState),
	}
}

// OnTextChanged records a text change for the owner. The raw text is
// persisted immediately (fire-and-forget); slide regeneration is scheduled
// after the debounce pause, and only for kinds that auto-segment. Sermons
// and asset decks keep their text without touching slides.
func (s *RegenerationService) OnTextChanged(ctx context.Context, ref entities.CollectionRef, text string) {
	s.saveContent(ctx, ref, text)

	if !ref.Kind.AutoSegments() {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	st := s.owners[ref]
	if st == nil {
		st = &ownerState{}
		s.owners[ref] = st
	}
	st.text = text

	if st.timer != nil {
		st.timer.Stop()
	}
	st.timer = time.AfterFunc(s.delay, func() {
		s.fire(ref)
	})
}

// RegenerateNow runs the full pipeline synchronously for the owner. This
// is the explicit manual path: sermons only get slides through it.
func (s *RegenerationService) RegenerateNow(ctx context.Context, ref entities.CollectionRef, text string) error {
	s.saveContent(ctx, ref, text)
	return s.regenerate(ctx, ref, text)
}

// Close stops pending debounce timers and waits for running cycles.
func (s *RegenerationService) Close() {
	s.mu.Lock()
	s.closed = true
	for _, st := range s.owners {
		if st.timer != nil {
			st.timer.Stop()
		}
	}
	s.mu.Unlock()

	s.wg.Wait()
}

// fire runs when an owner's debounce window elapses. If a regeneration for
// the owner is already in flight the owner is marked dirty instead, and
// the running cycle re-runs with the latest text before going idle.
func (s *RegenerationService) fire(ref entities.CollectionRef) {
	s.mu.Lock()
	st := s.owners[ref]
	if st == nil || s.closed {
		s.mu.Unlock()
		return
	}
	if st.running {
		st.dirty = true
		s.mu.Unlock()
		return
	}
	st.running = true
	text := st.text
	s.wg.Add(1)
	s.mu.Unlock()
	defer s.wg.Done()

	for {
		if err := s.regenerate(context.Background(), ref, text); err != nil {
			s.logger.Error("regeneration failed", "ref", ref.String(), "error", err)
		}

		s.mu.Lock()
		if st.dirty {
			st.dirty = false
			text = st.text
			s.mu.Unlock()
			continue
		}
		st.running = false
		s.mu.Unlock()
		return
	}
}

// regenerate runs normalize -> segment -> synthesize -> reconcile -> sweep
// for one owner text snapshot.
func (s *RegenerationService) regenerate(ctx context.Context, ref entities.CollectionRef, text string) error {
	owner, err := s.collections.GetCollection(ctx, ref)
	if err != nil {
		if errors.Is(err, entities.ErrNotFound) {
			s.logger.Info("owner gone before regeneration, skipping", "ref", ref.String())
			return nil
		}
		return fmt.Errorf("loading owner %s: %w", ref, err)
	}

	canonical := s.normalizer.Normalize(text)
	segments := s.segmenter.Segment(canonical)

	// The previous batch's background survives regeneration.
	background := s.reconciler.OwnerBackground(ctx, ref)
	slides := s.synthesizer.Synthesize(owner.ID, owner.Title, segments, background)

	if _, _, err := s.reconciler.Reconcile(ctx, ref, slides); err != nil {
		return fmt.Errorf("reconciling %s: %w", ref, err)
	}

	if _, err := s.sweeper.Sweep(ctx); err != nil {
		s.logger.Warn("post-reconcile sweep failed", "error", err)
	}

	s.logger.Debug("regenerated slides", "ref", ref.String(), "slides", len(slides))
	return nil
}

// saveContent persists the raw text keyed by the owner's text field.
// Failures are logged, never surfaced: the editing surface must not block
// on backend availability.
func (s *RegenerationService) saveContent(ctx context.Context, ref entities.CollectionRef, text string) {
	record := &entities.TextContent{
		Key:       entities.ContentKey(ref.Kind.String(), ref.Kind.TextField(), ref.ID),
		ItemID:    ref.ID,
		ItemType:  ref.Kind.String(),
		Content:   text,
		UpdatedAt: s.clock.Now(),
	}
	if err := s.content.PutContent(ctx, record); err != nil {
		s.logger.Warn("saving text content failed", "key", record.Key, "error", err)
	}
}

var _ ports.Regenerator = (*RegenerationService)(nil)
