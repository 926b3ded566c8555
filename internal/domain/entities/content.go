package entities

import (
	"errors"
	"fmt"
	"time"
)

// TextContent is a free-form text payload owned by exactly one collection
// item. Its lifecycle is tied to that item: deleting the item deletes the
// content.
type TextContent struct {
	// Key is the opaque storage key, derived from the owning item.
	Key string `json:"key"`

	// ItemID and ItemType identify the owning collection item.
	ItemID   string `json:"itemId"`
	ItemType string `json:"itemType"`

	Content   string    `json:"content"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Validate ensures the content record can be persisted.
func (t *TextContent) Validate() error {
	if t.Key == "" {
		return errors.New("content key is required")
	}
	if t.ItemID == "" {
		return errors.New("content item id is required")
	}
	return nil
}

// ContentKey derives the storage key for a text field of an item, e.g.
// "song-lyrics-42" for song 42's lyrics.
func ContentKey(itemType, field, itemID string) string {
	return fmt.Sprintf("%s-%s-%s", itemType, field, itemID)
}
