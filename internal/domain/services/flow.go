package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/versely/versely/internal/domain/entities"
	"github.com/versely/versely/internal/domain/ports"
)

// FlowService manages service flows: ordered sequences of collections and
// freeform notes that script a full service.
type FlowService struct {
	flows       ports.FlowStore
	collections ports.CollectionStore
	clock       ports.Clock
	logger      *slog.Logger
}

// NewFlows creates a FlowService.
func NewFlows(flows ports.FlowStore, collections ports.CollectionStore, clock ports.Clock, logger *slog.Logger) *FlowService {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &FlowService{
		flows:       flows,
		collections: collections,
		clock:       clock,
		logger:      logger.With("service", "flows"),
	}
}

// CreateFlow creates an empty flow.
func (s *FlowService) CreateFlow(ctx context.Context, title string) (*entities.Flow, error) {
	if strings.TrimSpace(title) == "" {
		return nil, errors.New("flow title is required")
	}

	now := s.clock.Now()
	f := &entities.Flow{
		ID:        uuid.New().String(),
		Title:     strings.TrimSpace(title),
		Items:     []entities.FlowItem{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.flows.CreateFlow(ctx, f); err != nil {
		return nil, fmt.Errorf("creating flow: %w", err)
	}
	return f, nil
}

// GetFlow returns a flow by id.
func (s *FlowService) GetFlow(ctx context.Context, id string) (*entities.Flow, error) {
	return s.flows.GetFlow(ctx, id)
}

// ListFlows returns every flow.
func (s *FlowService) ListFlows(ctx context.Context) ([]entities.Flow, error) {
	return s.flows.ListFlows(ctx)
}

// DeleteFlow removes a flow.
func (s *FlowService) DeleteFlow(ctx context.Context, id string) error {
	return s.flows.DeleteFlow(ctx, id)
}

// AddCollection appends a collection reference to the flow. The item id is
// the collection id; the title is snapshotted from the collection.
func (s *FlowService) AddCollection(ctx context.Context, flowID string, ref entities.CollectionRef) (*entities.Flow, error) {
	c, err := s.collections.GetCollection(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", ref, err)
	}

	return s.mutate(ctx, flowID, func(f *entities.Flow) error {
		f.Items = append(f.Items, entities.FlowItem{
			Type:  entities.FlowItemCollection,
			ID:    c.ID,
			Title: c.Title,
			Order: len(f.Items) + 1,
		})
		return nil
	})
}

// AddNote appends a freeform note to the flow.
func (s *FlowService) AddNote(ctx context.Context, flowID, title, note string) (*entities.Flow, error) {
	return s.mutate(ctx, flowID, func(f *entities.Flow) error {
		f.Items = append(f.Items, entities.FlowItem{
			Type:  entities.FlowItemNote,
			ID:    uuid.New().String(),
			Title: title,
			Note:  note,
			Order: len(f.Items) + 1,
		})
		return nil
	})
}

// Reorder moves an item to the 1-based position and renumbers every item
// contiguously.
func (s *FlowService) Reorder(ctx context.Context, flowID, itemID string, position int) (*entities.Flow, error) {
	return s.mutate(ctx, flowID, func(f *entities.Flow) error {
		return f.Move(itemID, position)
	})
}

// RemoveItem deletes an item and renumbers the remainder.
func (s *FlowService) RemoveItem(ctx context.Context, flowID, itemID string) (*entities.Flow, error) {
	return s.mutate(ctx, flowID, func(f *entities.Flow) error {
		if !f.Remove(itemID) {
			return fmt.Errorf("flow item %s: %w", itemID, entities.ErrNotFound)
		}
		return nil
	})
}

// RemoveCollectionEverywhere strips references to a deleted collection
// from every flow.
func (s *FlowService) RemoveCollectionEverywhere(ctx context.Context, collectionID string) error {
	flows, err := s.flows.ListFlows(ctx)
	if err != nil {
		return fmt.Errorf("listing flows: %w", err)
	}

	for i := range flows {
		f := &flows[i]
		if f.RemoveCollection(collectionID) == 0 {
			continue
		}
		f.UpdatedAt = s.clock.Now()
		if err := s.flows.UpdateFlow(ctx, f); err != nil {
			s.logger.Warn("updating flow after collection removal failed", "flow", f.ID, "error", err)
		}
	}
	return nil
}

// mutate loads a flow, applies fn, bumps the timestamp, and persists.
func (s *FlowService) mutate(ctx context.Context, flowID string, fn func(*entities.Flow) error) (*entities.Flow, error) {
	f, err := s.flows.GetFlow(ctx, flowID)
	if err != nil {
		return nil, fmt.Errorf("loading flow %s: %w", flowID, err)
	}

	if err := fn(f); err != nil {
		return nil, err
	}

	f.UpdatedAt = s.clock.Now()
	if err := s.flows.UpdateFlow(ctx, f); err != nil {
		return nil, fmt.Errorf("updating flow %s: %w", flowID, err)
	}
	return f, nil
}
