package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/versely/versely/internal/adapters/secondary/storage"
	"github.com/versely/versely/internal/domain/entities"
	"github.com/versely/versely/internal/test/builders"
)

// captureBroadcaster records every display event for assertions.
type captureBroadcaster struct {
	mu     sync.Mutex
	events []entities.SyncEvent
}

func (b *captureBroadcaster) BroadcastDisplay(event entities.SyncEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event)
}

func (b *captureBroadcaster) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.events)
}

func (b *captureBroadcaster) last() entities.SyncEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.events[len(b.events)-1]
}

func newTestPresenter(t *testing.T, store *storage.MemoryStore, interval time.Duration) (*PresenterService, *captureBroadcaster) {
	t.Helper()
	broadcaster := &captureBroadcaster{}
	p := NewPresenter(store, store, broadcaster, interval, nil)
	t.Cleanup(p.Close)
	return p, broadcaster
}

func seedShowable(t *testing.T, store *storage.MemoryStore, slideCount int) *entities.Collection {
	t.Helper()
	ids := make([]string, 0, slideCount)
	for i := 0; i < slideCount; i++ {
		s := builders.NewSlideBuilder().WithOwner("song1", "Amazing Grace", 100, i).Build()
		seedSlide(t, store, s)
		ids = append(ids, s.ID)
	}
	c := builders.NewCollectionBuilder().WithID("song1").WithTitle("Amazing Grace").WithSlideIDs(ids...).Build()
	seedCollection(t, store, c)
	return c
}

func TestShowCollection(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	p, broadcaster := newTestPresenter(t, store, time.Hour)
	c := seedShowable(t, store, 3)

	require.NoError(t, p.ShowCollection(ctx, c.Ref()))

	state := p.State()
	assert.Equal(t, "song1", state.CollectionID)
	assert.Equal(t, 0, state.SlideIndex)
	assert.Equal(t, 3, state.TotalSlides)
	assert.False(t, state.Blanked)

	require.Equal(t, 1, broadcaster.count())
	event := broadcaster.last()
	assert.Equal(t, "display", event.Type)
	assert.Equal(t, "song1", event.Data["collectionId"])

	err := p.ShowCollection(ctx, entities.CollectionRef{Kind: entities.KindSong, ID: "gone"})
	assert.ErrorIs(t, err, entities.ErrNotFound)
}

func TestNavigate(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	p, broadcaster := newTestPresenter(t, store, time.Hour)
	c := seedShowable(t, store, 3)

	require.Error(t, p.Navigate("next", 0), "navigation with nothing on display")

	require.NoError(t, p.ShowCollection(ctx, c.Ref()))

	require.NoError(t, p.Navigate("next", 0))
	assert.Equal(t, 1, p.State().SlideIndex)

	require.NoError(t, p.Navigate("last", 0))
	assert.Equal(t, 2, p.State().SlideIndex)

	// next at the end stays put.
	require.NoError(t, p.Navigate("next", 0))
	assert.Equal(t, 2, p.State().SlideIndex)

	require.NoError(t, p.Navigate("first", 0))
	assert.Equal(t, 0, p.State().SlideIndex)

	// prev at the start stays put.
	require.NoError(t, p.Navigate("prev", 0))
	assert.Equal(t, 0, p.State().SlideIndex)

	require.NoError(t, p.Navigate("goto", 2))
	assert.Equal(t, 2, p.State().SlideIndex)

	assert.Error(t, p.Navigate("goto", 3))
	assert.Error(t, p.Navigate("goto", -1))
	assert.Error(t, p.Navigate("sideways", 0))

	assert.Greater(t, broadcaster.count(), 1)
}

func TestBlank(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	p, broadcaster := newTestPresenter(t, store, time.Hour)
	c := seedShowable(t, store, 2)

	require.NoError(t, p.ShowCollection(ctx, c.Ref()))
	require.NoError(t, p.Navigate("next", 0))

	p.Blank(true)
	state := p.State()
	assert.True(t, state.Blanked)
	assert.Equal(t, 1, state.SlideIndex, "blanking keeps position")
	assert.Equal(t, true, broadcaster.last().Data["blanked"])

	p.Blank(false)
	assert.False(t, p.State().Blanked)
}

func TestCurrentSlide(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	p, _ := newTestPresenter(t, store, time.Hour)

	_, err := p.CurrentSlide(ctx)
	assert.ErrorIs(t, err, entities.ErrNotFound)

	c := seedShowable(t, store, 2)
	require.NoError(t, p.ShowCollection(ctx, c.Ref()))
	require.NoError(t, p.Navigate("next", 0))

	s, err := p.CurrentSlide(ctx)
	require.NoError(t, err)
	assert.Equal(t, c.SlideIDs[1], s.ID)
}

func TestCycleWrapsAround(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	p, _ := newTestPresenter(t, store, 10*time.Millisecond)
	c := seedShowable(t, store, 2)

	require.NoError(t, p.ShowCollection(ctx, c.Ref()))
	p.StartCycle(ctx)
	assert.True(t, p.State().Cycling)

	// Two slides plus wrapping means the index returns to 0 repeatedly.
	require.Eventually(t, func() bool {
		return p.State().SlideIndex == 1
	}, 2*time.Second, 2*time.Millisecond)
	require.Eventually(t, func() bool {
		return p.State().SlideIndex == 0
	}, 2*time.Second, 2*time.Millisecond)

	p.StopCycle()
	assert.False(t, p.State().Cycling)

	index := p.State().SlideIndex
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, index, p.State().SlideIndex, "cycle stopped advancing")
}

func TestShowCollectionStopsCycle(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	p, _ := newTestPresenter(t, store, time.Hour)
	c := seedShowable(t, store, 2)

	require.NoError(t, p.ShowCollection(ctx, c.Ref()))
	p.StartCycle(ctx)
	require.True(t, p.State().Cycling)

	require.NoError(t, p.ShowCollection(ctx, c.Ref()))
	assert.False(t, p.State().Cycling)
	assert.Equal(t, 0, p.State().SlideIndex)
}
