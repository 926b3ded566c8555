package ports

import (
	"context"

	"github.com/versely/versely/internal/domain/entities"
)

// Normalizer converts arbitrary rich-text input into canonical plain text:
// lines separated by "\n", blank lines by "\n\n".
type Normalizer interface {
	Normalize(raw string) string
}

// Segmenter splits canonical plain text into slide-sized chunks on
// blank-line boundaries. Pure and idempotent; an empty result means the
// owner's slide set should be cleared.
type Segmenter interface {
	Segment(canonical string) []string
}

// Synthesizer turns text segments into slide records for an owner,
// optionally re-applying a background URL to every slide of the batch.
type Synthesizer interface {
	Synthesize(ownerID, ownerTitle string, segments []string, backgroundURL string) []entities.Slide
}

// Reconciler diffs a newly synthesized slide batch against a collection's
// existing slide list, replacing the old batch wholesale.
type Reconciler interface {
	// Reconcile replaces the owner's slides with newSlides. A missing
	// owner is a safe no-op returning a nil collection. Storage failures
	// are logged, not returned; in-memory state advances optimistically.
	Reconcile(ctx context.Context, ref entities.CollectionRef, newSlides []entities.Slide) (*entities.Collection, []string, error)

	// OwnerBackground returns the background URL carried by the owner's
	// first slide, or "" when there is none.
	OwnerBackground(ctx context.Context, ref entities.CollectionRef) string
}

// Sweeper removes slides referenced by no collection.
type Sweeper interface {
	// Sweep deletes every orphaned slide and returns the deleted ids.
	Sweep(ctx context.Context) ([]string, error)

	// SweepStartup runs the startup pass: when no collections of any kind
	// exist it clears all slides, otherwise it behaves like Sweep.
	SweepStartup(ctx context.Context) ([]string, error)
}

// Regenerator is the per-owner editing state machine. Text changes are
// debounced; edits arriving while a regeneration runs queue exactly one
// fresh cycle.
type Regenerator interface {
	// OnTextChanged records a keystroke-level text change for the owner
	// and schedules a debounced regeneration (songs only).
	OnTextChanged(ctx context.Context, ref entities.CollectionRef, text string)

	// RegenerateNow runs the full pipeline synchronously. This is the
	// explicit path used for sermons, which never auto-segment.
	RegenerateNow(ctx context.Context, ref entities.CollectionRef, text string) error

	// Close cancels pending timers and waits for running cycles.
	Close()
}

// DisplayBroadcaster pushes sync events to connected display clients.
type DisplayBroadcaster interface {
	BroadcastDisplay(event entities.SyncEvent)
}
