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

func TestCreateFlowRequiresTitle(t *testing.T) {
	store := storage.NewMemoryStore()
	svc := NewFlows(store, store, nil, nil)

	_, err := svc.CreateFlow(context.Background(), "   ")
	assert.Error(t, err)

	f, err := svc.CreateFlow(context.Background(), "  Sunday Morning  ")
	require.NoError(t, err)
	assert.Equal(t, "Sunday Morning", f.Title)
	assert.NotEmpty(t, f.ID)
	assert.Empty(t, f.Items)
}

func TestAddCollectionSnapshotsTitle(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	svc := NewFlows(store, store, nil, nil)

	song := builders.NewCollectionBuilder().WithID("song1").WithTitle("Amazing Grace").Build()
	seedCollection(t, store, song)

	f, err := svc.CreateFlow(ctx, "Sunday Morning")
	require.NoError(t, err)

	f, err = svc.AddCollection(ctx, f.ID, song.Ref())
	require.NoError(t, err)
	require.Len(t, f.Items, 1)
	assert.Equal(t, entities.FlowItemCollection, f.Items[0].Type)
	assert.Equal(t, "song1", f.Items[0].ID)
	assert.Equal(t, "Amazing Grace", f.Items[0].Title)
	assert.Equal(t, 1, f.Items[0].Order)
}

func TestAddCollectionMissingCollection(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	svc := NewFlows(store, store, nil, nil)

	f, err := svc.CreateFlow(ctx, "Sunday Morning")
	require.NoError(t, err)

	_, err = svc.AddCollection(ctx, f.ID, entities.CollectionRef{Kind: entities.KindSong, ID: "gone"})
	assert.ErrorIs(t, err, entities.ErrNotFound)
}

func TestAddNoteNumbersDensely(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	svc := NewFlows(store, store, nil, nil)

	f, err := svc.CreateFlow(ctx, "Sunday Morning")
	require.NoError(t, err)

	f, err = svc.AddNote(ctx, f.ID, "Welcome", "Greet visitors")
	require.NoError(t, err)
	f, err = svc.AddNote(ctx, f.ID, "Announcements", "")
	require.NoError(t, err)

	require.Len(t, f.Items, 2)
	assert.Equal(t, 1, f.Items[0].Order)
	assert.Equal(t, 2, f.Items[1].Order)
	assert.Equal(t, "Greet visitors", f.Items[0].Note)
	assert.NotEqual(t, f.Items[0].ID, f.Items[1].ID)
}

func TestReorderRenumbersContiguously(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	svc := NewFlows(store, store, nil, nil)

	seed := builders.NewFlowBuilder().
		WithID("f1").
		WithNoteItem("n1", "First", "").
		WithNoteItem("n2", "Second", "").
		WithNoteItem("n3", "Third", "").
		Build()
	require.NoError(t, store.CreateFlow(ctx, seed))

	f, err := svc.Reorder(ctx, "f1", "n3", 1)
	require.NoError(t, err)

	ids := make([]string, 0, len(f.Items))
	for i, item := range f.Items {
		ids = append(ids, item.ID)
		assert.Equal(t, i+1, item.Order)
	}
	assert.Equal(t, []string{"n3", "n1", "n2"}, ids)
}

func TestRemoveItemRenumbers(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	svc := NewFlows(store, store, nil, nil)

	seed := builders.NewFlowBuilder().
		WithID("f1").
		WithNoteItem("n1", "First", "").
		WithNoteItem("n2", "Second", "").
		WithNoteItem("n3", "Third", "").
		Build()
	require.NoError(t, store.CreateFlow(ctx, seed))

	f, err := svc.RemoveItem(ctx, "f1", "n2")
	require.NoError(t, err)
	require.Len(t, f.Items, 2)
	assert.Equal(t, "n1", f.Items[0].ID)
	assert.Equal(t, 1, f.Items[0].Order)
	assert.Equal(t, "n3", f.Items[1].ID)
	assert.Equal(t, 2, f.Items[1].Order)

	_, err = svc.RemoveItem(ctx, "f1", "n2")
	assert.ErrorIs(t, err, entities.ErrNotFound)
}

func TestRemoveCollectionEverywhere(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	svc := NewFlows(store, store, nil, nil)

	f1 := builders.NewFlowBuilder().
		WithID("f1").
		WithCollectionItem("song1", "Amazing Grace").
		WithNoteItem("n1", "Welcome", "").
		WithCollectionItem("song2", "How Great Thou Art").
		Build()
	f2 := builders.NewFlowBuilder().
		WithID("f2").
		WithCollectionItem("song2", "How Great Thou Art").
		Build()
	require.NoError(t, store.CreateFlow(ctx, f1))
	require.NoError(t, store.CreateFlow(ctx, f2))

	require.NoError(t, svc.RemoveCollectionEverywhere(ctx, "song1"))

	got1, err := store.GetFlow(ctx, "f1")
	require.NoError(t, err)
	require.Len(t, got1.Items, 2)
	assert.Equal(t, "n1", got1.Items[0].ID)
	assert.Equal(t, 1, got1.Items[0].Order)
	assert.Equal(t, "song2", got1.Items[1].ID)
	assert.Equal(t, 2, got1.Items[1].Order)

	got2, err := store.GetFlow(ctx, "f2")
	require.NoError(t, err)
	assert.Len(t, got2.Items, 1)
}
