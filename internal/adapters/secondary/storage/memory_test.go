package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/versely/versely/internal/domain/entities"
)

func TestMemoryStoreSlides(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	t.Run("get missing slide", func(t *testing.T) {
		_, err := store.GetSlide(ctx, "nope")
		assert.ErrorIs(t, err, entities.ErrNotFound)
	})

	t.Run("upsert and get", func(t *testing.T) {
		slide := &entities.Slide{
			ID:    "slide-1",
			Title: "Amazing Grace - Slide 1",
			HTML:  "<div>Amazing grace</div>",
			Order: 1,
		}
		require.NoError(t, store.UpsertSlide(ctx, slide))

		got, err := store.GetSlide(ctx, "slide-1")
		require.NoError(t, err)
		assert.Equal(t, slide.Title, got.Title)
		assert.Equal(t, slide.HTML, got.HTML)
	})

	t.Run("upsert overwrites", func(t *testing.T) {
		require.NoError(t, store.UpsertSlide(ctx, &entities.Slide{
			ID: "slide-1", Title: "t", HTML: "<div>updated</div>", Order: 1,
		}))
		got, err := store.GetSlide(ctx, "slide-1")
		require.NoError(t, err)
		assert.Equal(t, "<div>updated</div>", got.HTML)
	})

	t.Run("list sorted by id", func(t *testing.T) {
		require.NoError(t, store.UpsertSlide(ctx, &entities.Slide{ID: "slide-0", Title: "t", HTML: "h", Order: 1}))
		slides, err := store.ListSlides(ctx)
		require.NoError(t, err)
		require.Len(t, slides, 2)
		assert.Equal(t, "slide-0", slides[0].ID)
		assert.Equal(t, "slide-1", slides[1].ID)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, store.DeleteSlide(ctx, "slide-0"))
		_, err := store.GetSlide(ctx, "slide-0")
		assert.ErrorIs(t, err, entities.ErrNotFound)

		assert.ErrorIs(t, store.DeleteSlide(ctx, "slide-0"), entities.ErrNotFound)
	})
}

func TestMemoryStoreCollections(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	song := &entities.Collection{
		ID:        "c1",
		Kind:      entities.KindSong,
		Title:     "Amazing Grace",
		SlideIDs:  []string{"s1", "s2"},
		CreatedAt: time.Now(),
	}
	require.NoError(t, store.CreateCollection(ctx, song))

	t.Run("duplicate create rejected", func(t *testing.T) {
		assert.Error(t, store.CreateCollection(ctx, song))
	})

	t.Run("get returns a copy", func(t *testing.T) {
		got, err := store.GetCollection(ctx, song.Ref())
		require.NoError(t, err)

		got.SlideIDs[0] = "mutated"
		again, err := store.GetCollection(ctx, song.Ref())
		require.NoError(t, err)
		assert.Equal(t, "s1", again.SlideIDs[0])
	})

	t.Run("kinds are separate namespaces", func(t *testing.T) {
		sermon := &entities.Collection{ID: "c1", Kind: entities.KindSermon, Title: "Grace"}
		require.NoError(t, store.CreateCollection(ctx, sermon))

		songs, err := store.ListCollections(ctx, entities.KindSong)
		require.NoError(t, err)
		assert.Len(t, songs, 1)

		sermons, err := store.ListCollections(ctx, entities.KindSermon)
		require.NoError(t, err)
		assert.Len(t, sermons, 1)
	})

	t.Run("update", func(t *testing.T) {
		song.Title = "Amazing Grace (hymn)"
		require.NoError(t, store.UpdateCollection(ctx, song))

		got, err := store.GetCollection(ctx, song.Ref())
		require.NoError(t, err)
		assert.Equal(t, "Amazing Grace (hymn)", got.Title)
	})

	t.Run("update missing", func(t *testing.T) {
		ghost := &entities.Collection{ID: "nope", Kind: entities.KindSong, Title: "x"}
		assert.ErrorIs(t, store.UpdateCollection(ctx, ghost), entities.ErrNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, store.DeleteCollection(ctx, song.Ref()))
		_, err := store.GetCollection(ctx, song.Ref())
		assert.ErrorIs(t, err, entities.ErrNotFound)
	})
}

func TestMemoryStoreFlows(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	flow := &entities.Flow{
		ID:    "f1",
		Title: "Sunday Morning",
		Items: []entities.FlowItem{
			{Type: entities.FlowItemCollection, ID: "c1", Title: "Opening Song", Order: 1},
		},
	}
	require.NoError(t, store.CreateFlow(ctx, flow))

	got, err := store.GetFlow(ctx, "f1")
	require.NoError(t, err)
	require.Len(t, got.Items, 1)

	got.Items[0].Title = "mutated"
	again, err := store.GetFlow(ctx, "f1")
	require.NoError(t, err)
	assert.Equal(t, "Opening Song", again.Items[0].Title)

	require.NoError(t, store.DeleteFlow(ctx, "f1"))
	_, err = store.GetFlow(ctx, "f1")
	assert.ErrorIs(t, err, entities.ErrNotFound)
}

func TestMemoryStoreContent(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	t.Run("missing key yields empty string", func(t *testing.T) {
		content, err := store.GetContent(ctx, "song-lyrics-1")
		require.NoError(t, err)
		assert.Equal(t, "", content)
	})

	t.Run("put and get", func(t *testing.T) {
		require.NoError(t, store.PutContent(ctx, &entities.TextContent{
			Key:      "song-lyrics-1",
			ItemID:   "1",
			ItemType: "song",
			Content:  "Amazing grace\n\nHow sweet the sound",
		}))

		content, err := store.GetContent(ctx, "song-lyrics-1")
		require.NoError(t, err)
		assert.Contains(t, content, "sweet the sound")
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		require.NoError(t, store.DeleteContent(ctx, "song-lyrics-1"))
		require.NoError(t, store.DeleteContent(ctx, "song-lyrics-1"))

		content, err := store.GetContent(ctx, "song-lyrics-1")
		require.NoError(t, err)
		assert.Equal(t, "", content)
	})
}
