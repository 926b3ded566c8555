package entities

import (
	"errors"
	"fmt"
	"time"
)

// CollectionKind identifies which shape of collection owns a slide set.
type CollectionKind string

const (
	KindSong      CollectionKind = "song"
	KindSermon    CollectionKind = "sermon"
	KindAssetDeck CollectionKind = "deck"
)

// CollectionKinds lists every kind in a stable order.
var CollectionKinds = []CollectionKind{KindSong, KindSermon, KindAssetDeck}

// Valid reports whether k is a known collection kind.
func (k CollectionKind) Valid() bool {
	switch k {
	case KindSong, KindSermon, KindAssetDeck:
		return true
	}
	return false
}

func (k CollectionKind) String() string {
	return string(k)
}

// AutoSegments reports whether edits to the kind's text field drive
// automatic slide regeneration. Songs always regenerate; sermons only
// through an explicit manual request; asset decks never.
func (k CollectionKind) AutoSegments() bool {
	return k == KindSong
}

// TextField names the text field that owns generated slides for the kind.
func (k CollectionKind) TextField() string {
	switch k {
	case KindSong:
		return "lyrics"
	case KindSermon:
		return "notes"
	default:
		return "description"
	}
}

// Collection is a named, ordered container of slides: a song, a sermon, or
// an asset deck. SlideIDs order defines presentation order, and every id
// must reference an existing slide; the reconciler is the sole writer of
// this list for text-derived collections.
type Collection struct {
	ID          string         `json:"id"`
	Kind        CollectionKind `json:"kind"`
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	SlideIDs    []string       `json:"slideIds"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

// Validate ensures the collection has valid required fields.
func (c *Collection) Validate() error {
	if c.ID == "" {
		return errors.New("collection id is required")
	}
	if !c.Kind.Valid() {
		return fmt.Errorf("unknown collection kind %q", c.Kind)
	}
	if c.Title == "" {
		return errors.New("collection title is required")
	}
	return nil
}

// Ref returns the collection's tagged reference.
func (c *Collection) Ref() CollectionRef {
	return CollectionRef{Kind: c.Kind, ID: c.ID}
}

// ContentKey returns the storage key of the collection's owning text field.
func (c *Collection) ContentKey() string {
	return ContentKey(c.Kind.String(), c.Kind.TextField(), c.ID)
}

// CollectionRef is a tagged reference to a collection of a specific kind.
// It replaces runtime type testing across the three near-identical shapes
// with a single lookup key.
type CollectionRef struct {
	Kind CollectionKind `json:"kind"`
	ID   string         `json:"id"`
}

// Validate ensures the reference is usable as a lookup key.
func (r CollectionRef) Validate() error {
	if !r.Kind.Valid() {
		return fmt.Errorf("unknown collection kind %q", r.Kind)
	}
	if r.ID == "" {
		return errors.New("collection id is required")
	}
	return nil
}

func (r CollectionRef) String() string {
	return fmt.Sprintf("%s/%s", r.Kind, r.ID)
}
