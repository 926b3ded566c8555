package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/versely/versely/internal/adapters/secondary/storage"
	"github.com/versely/versely/internal/adapters/secondary/textproc"
	"github.com/versely/versely/internal/domain/entities"
	"github.com/versely/versely/internal/test/builders"
)

func newTestRegenerator(t *testing.T, store *storage.MemoryStore, delay time.Duration) *RegenerationService {
	t.Helper()
	reg := NewRegenerator(
		textproc.NewNormalizer(),
		textproc.NewSegmenter(),
		textproc.NewSynthesizer(nil),
		NewReconciler(store, store, nil, nil),
		NewSweeper(store, store, nil),
		store,
		store,
		nil,
		delay,
		nil,
	)
	t.Cleanup(reg.Close)
	return reg
}

func TestSongEditRegeneratesAfterDebounce(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	reg := newTestRegenerator(t, store, 10*time.Millisecond)

	song := builders.NewCollectionBuilder().WithID("song1").WithTitle("Amazing Grace").Build()
	seedCollection(t, store, song)

	reg.OnTextChanged(ctx, song.Ref(), "Amazing grace how sweet the sound\n\nThat saved a wretch like me")

	require.Eventually(t, func() bool {
		c, err := store.GetCollection(ctx, song.Ref())
		return err == nil && len(c.SlideIDs) == 2
	}, 2*time.Second, 5*time.Millisecond)

	c, err := store.GetCollection(ctx, song.Ref())
	require.NoError(t, err)
	first, err := store.GetSlide(ctx, c.SlideIDs[0])
	require.NoError(t, err)
	assert.Equal(t, "Amazing Grace - Slide 1", first.Title)
	assert.Equal(t, 1, first.Order)
	assert.Contains(t, first.HTML, "Amazing grace how sweet the sound")

	// The raw text was persisted regardless of slide generation.
	text, err := store.GetContent(ctx, song.ContentKey())
	require.NoError(t, err)
	assert.Contains(t, text, "saved a wretch")
}

func TestSermonEditSavesTextWithoutSlides(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	reg := newTestRegenerator(t, store, 10*time.Millisecond)

	sermon := builders.NewCollectionBuilder().WithID("sermon1").WithKind(entities.KindSermon).WithTitle("On Grace").Build()
	seedCollection(t, store, sermon)

	reg.OnTextChanged(ctx, sermon.Ref(), "Point one\n\nPoint two")

	time.Sleep(50 * time.Millisecond)

	c, err := store.GetCollection(ctx, sermon.Ref())
	require.NoError(t, err)
	assert.Empty(t, c.SlideIDs)

	text, err := store.GetContent(ctx, sermon.ContentKey())
	require.NoError(t, err)
	assert.Equal(t, "Point one\n\nPoint two", text)
}

func TestRegenerateNowIsSynchronous(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	reg := newTestRegenerator(t, store, time.Hour)

	sermon := builders.NewCollectionBuilder().WithID("sermon1").WithKind(entities.KindSermon).WithTitle("On Grace").Build()
	seedCollection(t, store, sermon)

	require.NoError(t, reg.RegenerateNow(ctx, sermon.Ref(), "One\n\nTwo\n\nThree"))

	c, err := store.GetCollection(ctx, sermon.Ref())
	require.NoError(t, err)
	assert.Len(t, c.SlideIDs, 3)
}

func TestRegenerationReplacesInsteadOfAppending(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	reg := newTestRegenerator(t, store, time.Hour)

	song := builders.NewCollectionBuilder().WithID("song1").WithTitle("Amazing Grace").Build()
	seedCollection(t, store, song)

	require.NoError(t, reg.RegenerateNow(ctx, song.Ref(), "One\n\nTwo\n\nThree"))
	require.NoError(t, reg.RegenerateNow(ctx, song.Ref(), "Only verse"))

	c, err := store.GetCollection(ctx, song.Ref())
	require.NoError(t, err)
	require.Len(t, c.SlideIDs, 1)

	// No slides from the first batch survive anywhere.
	slides, err := store.ListSlides(ctx)
	require.NoError(t, err)
	assert.Len(t, slides, 1)
	assert.Contains(t, slides[0].HTML, "Only verse")
}

func TestRapidEditsLandOnFinalText(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	reg := newTestRegenerator(t, store, 10*time.Millisecond)

	song := builders.NewCollectionBuilder().WithID("song1").WithTitle("Amazing Grace").Build()
	seedCollection(t, store, song)

	// Simulated keystroke burst: only the last snapshot should produce
	// slides.
	reg.OnTextChanged(ctx, song.Ref(), "A")
	reg.OnTextChanged(ctx, song.Ref(), "A\n\nB")
	reg.OnTextChanged(ctx, song.Ref(), "A\n\nB\n\nC")

	require.Eventually(t, func() bool {
		c, err := store.GetCollection(ctx, song.Ref())
		return err == nil && len(c.SlideIDs) == 3
	}, 2*time.Second, 5*time.Millisecond)

	slides, err := store.ListSlides(ctx)
	require.NoError(t, err)
	assert.Len(t, slides, 3)
}

func TestRegenerationPreservesBackground(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	reg := newTestRegenerator(t, store, time.Hour)

	song := builders.NewCollectionBuilder().WithID("song1").WithTitle("Amazing Grace").Build()
	seedCollection(t, store, song)

	require.NoError(t, reg.RegenerateNow(ctx, song.Ref(), "Verse one\n\nVerse two"))

	c, err := store.GetCollection(ctx, song.Ref())
	require.NoError(t, err)
	for _, id := range c.SlideIDs {
		s, err := store.GetSlide(ctx, id)
		require.NoError(t, err)
		s.SetBackground("https://img.example/cross.jpg")
		require.NoError(t, store.UpsertSlide(ctx, s))
	}

	time.Sleep(2 * time.Millisecond) // new batch needs a distinct id stamp
	require.NoError(t, reg.RegenerateNow(ctx, song.Ref(), "New verse one\n\nNew verse two\n\nNew verse three"))

	c, err = store.GetCollection(ctx, song.Ref())
	require.NoError(t, err)
	require.Len(t, c.SlideIDs, 3)
	for _, id := range c.SlideIDs {
		s, err := store.GetSlide(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "https://img.example/cross.jpg", s.Background())
	}
}

func TestRegenerateNowMissingOwnerIsSafe(t *testing.T) {
	store := storage.NewMemoryStore()
	reg := newTestRegenerator(t, store, time.Hour)

	ref := entities.CollectionRef{Kind: entities.KindSong, ID: "gone"}
	require.NoError(t, reg.RegenerateNow(context.Background(), ref, "Some text"))

	// The text is still saved even though the owner is missing.
	text, err := store.GetContent(context.Background(), entities.ContentKey("song", "lyrics", "gone"))
	require.NoError(t, err)
	assert.Equal(t, "Some text", text)
}
