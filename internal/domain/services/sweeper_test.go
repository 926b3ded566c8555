package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/versely/versely/internal/adapters/secondary/storage"
	"github.com/versely/versely/internal/domain/entities"
	"github.com/versely/versely/internal/test/builders"
)

func TestSweepDeletesOrphansOnly(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	sweeper := NewSweeper(store, store, nil)

	owned := builders.NewSlideBuilder().WithID("s-owned").Build()
	orphan1 := builders.NewSlideBuilder().WithID("s-orphan-1").Build()
	orphan2 := builders.NewSlideBuilder().WithID("s-orphan-2").Build()
	seedSlide(t, store, owned)
	seedSlide(t, store, orphan1)
	seedSlide(t, store, orphan2)

	seedCollection(t, store, builders.NewCollectionBuilder().WithID("c1").WithSlideIDs("s-owned").Build())

	deleted, err := sweeper.Sweep(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"s-orphan-1", "s-orphan-2"}, deleted)

	_, err = store.GetSlide(ctx, "s-owned")
	assert.NoError(t, err)
	_, err = store.GetSlide(ctx, "s-orphan-1")
	assert.ErrorIs(t, err, entities.ErrNotFound)
}

func TestSweepCountsReferencesAcrossKinds(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	sweeper := NewSweeper(store, store, nil)

	songSlide := builders.NewSlideBuilder().WithID("s-song").Build()
	sermonSlide := builders.NewSlideBuilder().WithID("s-sermon").Build()
	seedSlide(t, store, songSlide)
	seedSlide(t, store, sermonSlide)

	seedCollection(t, store, builders.NewCollectionBuilder().WithID("song1").WithKind(entities.KindSong).WithSlideIDs("s-song").Build())
	seedCollection(t, store, builders.NewCollectionBuilder().WithID("sermon1").WithKind(entities.KindSermon).WithSlideIDs("s-sermon").Build())

	deleted, err := sweeper.Sweep(ctx)
	require.NoError(t, err)
	assert.Empty(t, deleted)
}

func TestSweepStartupClearsAllWhenNoCollections(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	sweeper := NewSweeper(store, store, nil)

	seedSlide(t, store, builders.NewSlideBuilder().WithID("s-stale-1").Build())
	seedSlide(t, store, builders.NewSlideBuilder().WithID("s-stale-2").Build())

	deleted, err := sweeper.SweepStartup(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"s-stale-1", "s-stale-2"}, deleted)

	slides, err := store.ListSlides(ctx)
	require.NoError(t, err)
	assert.Empty(t, slides)
}

func TestSweepStartupWithCollectionsBehavesLikeSweep(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	sweeper := NewSweeper(store, store, nil)

	seedSlide(t, store, builders.NewSlideBuilder().WithID("s-owned").Build())
	seedSlide(t, store, builders.NewSlideBuilder().WithID("s-orphan").Build())
	seedCollection(t, store, builders.NewCollectionBuilder().WithID("c1").WithSlideIDs("s-owned").Build())

	deleted, err := sweeper.SweepStartup(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"s-orphan"}, deleted)

	_, err = store.GetSlide(ctx, "s-owned")
	assert.NoError(t, err)
}
