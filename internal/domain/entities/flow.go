package entities

import (
	"errors"
	"fmt"
	"time"
)

// FlowItemType tags the two variants of a flow item.
type FlowItemType string

const (
	FlowItemCollection FlowItemType = "collection"
	FlowItemNote       FlowItemType = "note"
)

// FlowItem is one entry of a service flow: either a reference to a
// collection or a freeform note. Order is a dense 1-based integer defining
// display and print sequence.
type FlowItem struct {
	Type  FlowItemType `json:"type"`
	ID    string       `json:"id"`
	Title string       `json:"title"`
	Note  string       `json:"note,omitempty"`
	Order int          `json:"order"`
}

// Flow is an ordered sequence of collections and freeform notes used to
// script a full service.
type Flow struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Items     []FlowItem `json:"flowItems"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// Validate ensures the flow has valid required fields and dense ordering.
func (f *Flow) Validate() error {
	if f.ID == "" {
		return errors.New("flow id is required")
	}
	if f.Title == "" {
		return errors.New("flow title is required")
	}
	for i, item := range f.Items {
		if item.Type != FlowItemCollection && item.Type != FlowItemNote {
			return fmt.Errorf("item %d: unknown flow item type %q", i, item.Type)
		}
		if item.ID == "" {
			return fmt.Errorf("item %d: flow item id is required", i)
		}
		if item.Order != i+1 {
			return fmt.Errorf("item %d: order %d is not dense", i, item.Order)
		}
	}
	return nil
}

// Renumber rewrites every item's Order to match its slice position,
// keeping the sequence dense 1..n.
func (f *Flow) Renumber() {
	for i := range f.Items {
		f.Items[i].Order = i + 1
	}
}

// IndexOf returns the slice index of the item with the given id, or -1.
func (f *Flow) IndexOf(itemID string) int {
	for i, item := range f.Items {
		if item.ID == itemID {
			return i
		}
	}
	return -1
}

// Move repositions the item with the given id to the 1-based position and
// renumbers all items contiguously.
func (f *Flow) Move(itemID string, position int) error {
	idx := f.IndexOf(itemID)
	if idx < 0 {
		return fmt.Errorf("flow item %s: %w", itemID, ErrNotFound)
	}
	if position < 1 {
		position = 1
	}
	if position > len(f.Items) {
		position = len(f.Items)
	}

	item := f.Items[idx]
	f.Items = append(f.Items[:idx], f.Items[idx+1:]...)

	target := position - 1
	f.Items = append(f.Items, FlowItem{})
	copy(f.Items[target+1:], f.Items[target:])
	f.Items[target] = item

	f.Renumber()
	return nil
}

// Remove deletes the item with the given id and renumbers the remainder.
// It reports whether an item was removed.
func (f *Flow) Remove(itemID string) bool {
	idx := f.IndexOf(itemID)
	if idx < 0 {
		return false
	}
	f.Items = append(f.Items[:idx], f.Items[idx+1:]...)
	f.Renumber()
	return true
}

// RemoveCollection deletes every item referencing the given collection id
// and renumbers. It reports how many items were removed.
func (f *Flow) RemoveCollection(collectionID string) int {
	kept := f.Items[:0]
	removed := 0
	for _, item := range f.Items {
		if item.Type == FlowItemCollection && item.ID == collectionID {
			removed++
			continue
		}
		kept = append(kept, item)
	}
	f.Items = kept
	if removed > 0 {
		f.Renumber()
	}
	return removed
}
