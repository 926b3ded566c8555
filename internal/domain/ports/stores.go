package ports

import (
	"context"

	"github.com/versely/versely/internal/domain/entities"
)

// SlideStore persists slides. Upsert overwrites by id.
type SlideStore interface {
	GetSlide(ctx context.Context, id string) (*entities.Slide, error)
	ListSlides(ctx context.Context) ([]entities.Slide, error)
	UpsertSlide(ctx context.Context, slide *entities.Slide) error
	DeleteSlide(ctx context.Context, id string) error
}

// CollectionStore persists songs, sermons, and asset decks behind a single
// interface keyed by tagged references.
type CollectionStore interface {
	GetCollection(ctx context.Context, ref entities.CollectionRef) (*entities.Collection, error)
	ListCollections(ctx context.Context, kind entities.CollectionKind) ([]entities.Collection, error)
	CreateCollection(ctx context.Context, c *entities.Collection) error
	UpdateCollection(ctx context.Context, c *entities.Collection) error
	DeleteCollection(ctx context.Context, ref entities.CollectionRef) error
}

// FlowStore persists service flows.
type FlowStore interface {
	GetFlow(ctx context.Context, id string) (*entities.Flow, error)
	ListFlows(ctx context.Context) ([]entities.Flow, error)
	CreateFlow(ctx context.Context, f *entities.Flow) error
	UpdateFlow(ctx context.Context, f *entities.Flow) error
	DeleteFlow(ctx context.Context, id string) error
}

// ContentStore persists free-form text content keyed by an opaque storage
// key. GetContent returns the empty string, not an error, when the key is
// absent.
type ContentStore interface {
	GetContent(ctx context.Context, key string) (string, error)
	PutContent(ctx context.Context, content *entities.TextContent) error
	DeleteContent(ctx context.Context, key string) error
}

// Store bundles every persistence port; storage adapters implement all of
// them over one backend.
type Store interface {
	SlideStore
	CollectionStore
	FlowStore
	ContentStore
}
