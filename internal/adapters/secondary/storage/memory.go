// Package storage provides the persistence adapters: an in-memory store
// used as the device-local cache and in tests, a sqlite-backed store for
// the storage server, and a REST client that syncs a local cache through a
// remote storage server with fire-and-forget writes.
package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/versely/versely/internal/domain/entities"
	"github.com/versely/versely/internal/domain/ports"
)

// MemoryStore is a thread-safe in-memory implementation of every store
// port.
type MemoryStore struct {
	mu          sync.RWMutex
	slides      map[string]entities.Slide
	collections map[entities.CollectionRef]entities.Collection
	flows       map[string]entities.Flow
	contents    map[string]entities.TextContent
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		slides:      make(map[string]entities.Slide),
		collections: make(map[entities.CollectionRef]entities.Collection),
		flows:       make(map[string]entities.Flow),
		contents:    make(map[string]entities.TextContent),
	}
}

// GetSlide returns a slide by id.
func (m *MemoryStore) GetSlide(ctx context.Context, id string) (*entities.Slide, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.slides[id]
	if !ok {
		return nil, fmt.Errorf("slide %s: %w", id, entities.ErrNotFound)
	}
	return &s, nil
}

// ListSlides returns every slide, ordered by id for determinism.
func (m *MemoryStore) ListSlides(ctx context.Context) ([]entities.Slide, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]entities.Slide, 0, len(m.slides))
	for _, s := range m.slides {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// UpsertSlide stores a slide, overwriting by id.
func (m *MemoryStore) UpsertSlide(ctx context.Context, slide *entities.Slide) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slides[slide.ID] = *slide
	return nil
}

// DeleteSlide removes a slide by id.
func (m *MemoryStore) DeleteSlide(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.slides[id]; !ok {
		return fmt.Errorf("slide %s: %w", id, entities.ErrNotFound)
	}
	delete(m.slides, id)
	return nil
}

// GetCollection returns a collection by reference.
func (m *MemoryStore) GetCollection(ctx context.Context, ref entities.CollectionRef) (*entities.Collection, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.collections[ref]
	if !ok {
		return nil, fmt.Errorf("collection %s: %w", ref, entities.ErrNotFound)
	}
	copied := c
	copied.SlideIDs = append([]string(nil), c.SlideIDs...)
	return &copied, nil
}

// ListCollections returns every collection of a kind ordered by creation
// time.
func (m *MemoryStore) ListCollections(ctx context.Context, kind entities.CollectionKind) ([]entities.Collection, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]entities.Collection, 0)
	for ref, c := range m.collections {
		if ref.Kind != kind {
			continue
		}
		copied := c
		copied.SlideIDs = append([]string(nil), c.SlideIDs...)
		out = append(out, copied)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// CreateCollection stores a new collection.
func (m *MemoryStore) CreateCollection(ctx context.Context, c *entities.Collection) error {
	if err := c.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	ref := c.Ref()
	if _, ok := m.collections[ref]; ok {
		return fmt.Errorf("collection %s already exists", ref)
	}
	stored := *c
	stored.SlideIDs = append([]string(nil), c.SlideIDs...)
	m.collections[ref] = stored
	return nil
}

// UpdateCollection overwrites an existing collection.
func (m *MemoryStore) UpdateCollection(ctx context.Context, c *entities.Collection) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	ref := c.Ref()
	if _, ok := m.collections[ref]; !ok {
		return fmt.Errorf("collection %s: %w", ref, entities.ErrNotFound)
	}
	stored := *c
	stored.SlideIDs = append([]string(nil), c.SlideIDs...)
	m.collections[ref] = stored
	return nil
}

// DeleteCollection removes a collection by reference.
func (m *MemoryStore) DeleteCollection(ctx context.Context, ref entities.CollectionRef) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.collections[ref]; !ok {
		return fmt.Errorf("collection %s: %w", ref, entities.ErrNotFound)
	}
	delete(m.collections, ref)
	return nil
}

// GetFlow returns a flow by id.
func (m *MemoryStore) GetFlow(ctx context.Context, id string) (*entities.Flow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	f, ok := m.flows[id]
	if !ok {
		return nil, fmt.Errorf("flow %s: %w", id, entities.ErrNotFound)
	}
	copied := f
	copied.Items = append([]entities.FlowItem(nil), f.Items...)
	return &copied, nil
}

// ListFlows returns every flow ordered by creation time.
func (m *MemoryStore) ListFlows(ctx context.Context) ([]entities.Flow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]entities.Flow, 0, len(m.flows))
	for _, f := range m.flows {
		copied := f
		copied.Items = append([]entities.FlowItem(nil), f.Items...)
		out = append(out, copied)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// CreateFlow stores a new flow.
func (m *MemoryStore) CreateFlow(ctx context.Context, f *entities.Flow) error {
	if err := f.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.flows[f.ID]; ok {
		return fmt.Errorf("flow %s already exists", f.ID)
	}
	stored := *f
	stored.Items = append([]entities.FlowItem(nil), f.Items...)
	m.flows[f.ID] = stored
	return nil
}

// UpdateFlow overwrites an existing flow.
func (m *MemoryStore) UpdateFlow(ctx context.Context, f *entities.Flow) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.flows[f.ID]; !ok {
		return fmt.Errorf("flow %s: %w", f.ID, entities.ErrNotFound)
	}
	stored := *f
	stored.Items = append([]entities.FlowItem(nil), f.Items...)
	m.flows[f.ID] = stored
	return nil
}

// DeleteFlow removes a flow by id.
func (m *MemoryStore) DeleteFlow(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.flows[id]; !ok {
		return fmt.Errorf("flow %s: %w", id, entities.ErrNotFound)
	}
	delete(m.flows, id)
	return nil
}

// GetContent returns stored text by key, empty string when absent.
func (m *MemoryStore) GetContent(ctx context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.contents[key].Content, nil
}

// PutContent upserts a text content record by key.
func (m *MemoryStore) PutContent(ctx context.Context, content *entities.TextContent) error {
	if err := content.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.contents[content.Key] = *content
	return nil
}

// DeleteContent removes stored text by key.
func (m *MemoryStore) DeleteContent(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.contents, key)
	return nil
}

var _ ports.Store = (*MemoryStore)(nil)
