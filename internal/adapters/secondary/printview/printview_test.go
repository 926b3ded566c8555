package printview

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/versely/versely/internal/domain/entities"
)

func TestRender(t *testing.T) {
	r := NewRenderer()

	flow := &entities.Flow{
		ID:    "f1",
		Title: "Sunday Morning",
		Items: []entities.FlowItem{
			{Type: entities.FlowItemCollection, ID: "c1", Title: "Amazing Grace", Order: 1},
			{Type: entities.FlowItemNote, ID: "n1", Title: "Announcements", Note: "Welcome **visitors**", Order: 2},
			{Type: entities.FlowItemCollection, ID: "c2", Title: "Sermon: Grace & Truth", Order: 3},
		},
	}

	out, err := r.Render(context.Background(), flow)
	require.NoError(t, err)
	doc := string(out)

	assert.Contains(t, doc, "<title>Sunday Morning</title>")
	assert.Contains(t, doc, "Amazing Grace")
	assert.Contains(t, doc, "<strong>visitors</strong>")
	assert.Contains(t, doc, "Sermon: Grace &amp; Truth")
}

func TestRenderEmptyFlow(t *testing.T) {
	r := NewRenderer()

	out, err := r.Render(context.Background(), &entities.Flow{ID: "f1", Title: "Empty"})
	require.NoError(t, err)
	assert.Contains(t, string(out), "<h1>Empty</h1>")
}

func TestRenderCancelled(t *testing.T) {
	r := NewRenderer()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Render(ctx, &entities.Flow{
		ID:    "f1",
		Title: "Cancelled",
		Items: []entities.FlowItem{{Type: entities.FlowItemCollection, ID: "c", Title: "x", Order: 1}},
	})
	assert.ErrorIs(t, err, context.Canceled)
}
