package builders

import (
	"fmt"
	"time"

	"github.com/versely/versely/internal/domain/entities"
)

// CollectionBuilder helps build Collection entities for testing
type CollectionBuilder struct {
	collection *entities.Collection
}

// NewCollectionBuilder creates a new collection builder with sensible defaults
func NewCollectionBuilder() *CollectionBuilder {
	now := time.Now()
	return &CollectionBuilder{
		collection: &entities.Collection{
			ID:        "c1",
			Kind:      entities.KindSong,
			Title:     "Test Song",
			SlideIDs:  []string{},
			CreatedAt: now,
			UpdatedAt: now,
		},
	}
}

// WithID sets the collection id
func (b *CollectionBuilder) WithID(id string) *CollectionBuilder {
	b.collection.ID = id
	return b
}

// WithKind sets the collection kind
func (b *CollectionBuilder) WithKind(kind entities.CollectionKind) *CollectionBuilder {
	b.collection.Kind = kind
	return b
}

// WithTitle sets the collection title
func (b *CollectionBuilder) WithTitle(title string) *CollectionBuilder {
	b.collection.Title = title
	return b
}

// WithSlideIDs sets the owned slide ids
func (b *CollectionBuilder) WithSlideIDs(ids ...string) *CollectionBuilder {
	b.collection.SlideIDs = ids
	return b
}

// Build creates the final Collection entity
func (b *CollectionBuilder) Build() *entities.Collection {
	return &entities.Collection{
		ID:          b.collection.ID,
		Kind:        b.collection.Kind,
		Title:       b.collection.Title,
		Description: b.collection.Description,
		SlideIDs:    append([]string{}, b.collection.SlideIDs...),
		CreatedAt:   b.collection.CreatedAt,
		UpdatedAt:   b.collection.UpdatedAt,
	}
}

// SlideBuilder helps build Slide entities for testing
type SlideBuilder struct {
	slide *entities.Slide
}

// NewSlideBuilder creates a new slide builder with sensible defaults
func NewSlideBuilder() *SlideBuilder {
	now := time.Now()
	return &SlideBuilder{
		slide: &entities.Slide{
			ID:        "slide-c1-1-0",
			Title:     "Test Song - Slide 1",
			HTML:      `<div class="slide-body">test line</div>`,
			Order:     1,
			CreatedAt: now,
			UpdatedAt: now,
		},
	}
}

// WithID sets the slide id
func (b *SlideBuilder) WithID(id string) *SlideBuilder {
	b.slide.ID = id
	return b
}

// WithOwner derives id, title, and order from an owner and batch index
func (b *SlideBuilder) WithOwner(ownerID, ownerTitle string, stamp int64, index int) *SlideBuilder {
	b.slide.ID = fmt.Sprintf("slide-%s-%d-%d", ownerID, stamp, index)
	b.slide.Title = fmt.Sprintf("%s - Slide %d", ownerTitle, index+1)
	b.slide.Order = index + 1
	return b
}

// WithHTML sets the slide HTML
func (b *SlideBuilder) WithHTML(html string) *SlideBuilder {
	b.slide.HTML = html
	return b
}

// WithBackground attaches a background marker
func (b *SlideBuilder) WithBackground(url string) *SlideBuilder {
	b.slide.SetBackground(url)
	return b
}

// Build creates the final Slide entity
func (b *SlideBuilder) Build() entities.Slide {
	return *b.slide
}

// FlowBuilder helps build Flow entities for testing
type FlowBuilder struct {
	flow *entities.Flow
}

// NewFlowBuilder creates a new flow builder with sensible defaults
func NewFlowBuilder() *FlowBuilder {
	now := time.Now()
	return &FlowBuilder{
		flow: &entities.Flow{
			ID:        "f1",
			Title:     "Test Flow",
			Items:     []entities.FlowItem{},
			CreatedAt: now,
			UpdatedAt: now,
		},
	}
}

// WithID sets the flow id
func (b *FlowBuilder) WithID(id string) *FlowBuilder {
	b.flow.ID = id
	return b
}

// WithTitle sets the flow title
func (b *FlowBuilder) WithTitle(title string) *FlowBuilder {
	b.flow.Title = title
	return b
}

// WithCollectionItem appends a collection item, numbering it densely
func (b *FlowBuilder) WithCollectionItem(collectionID, title string) *FlowBuilder {
	b.flow.Items = append(b.flow.Items, entities.FlowItem{
		Type:  entities.FlowItemCollection,
		ID:    collectionID,
		Title: title,
		Order: len(b.flow.Items) + 1,
	})
	return b
}

// WithNoteItem appends a note item, numbering it densely
func (b *FlowBuilder) WithNoteItem(id, title, note string) *FlowBuilder {
	b.flow.Items = append(b.flow.Items, entities.FlowItem{
		Type:  entities.FlowItemNote,
		ID:    id,
		Title: title,
		Note:  note,
		Order: len(b.flow.Items) + 1,
	})
	return b
}

// Build creates the final Flow entity
func (b *FlowBuilder) Build() *entities.Flow {
	return &entities.Flow{
		ID:        b.flow.ID,
		Title:     b.flow.Title,
		Items:     append([]entities.FlowItem{}, b.flow.Items...),
		CreatedAt: b.flow.CreatedAt,
		UpdatedAt: b.flow.UpdatedAt,
	}
}
