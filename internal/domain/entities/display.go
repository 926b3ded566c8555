package entities

import "time"

// DisplayState is the live output state mirrored to every connected
// display window: which collection is up, which of its slides is showing,
// and whether the output is blanked.
type DisplayState struct {
	CollectionID string    `json:"collectionId"`
	SlideIndex   int       `json:"slideIndex"`
	TotalSlides  int       `json:"totalSlides"`
	Blanked      bool      `json:"blanked"`
	Cycling      bool      `json:"cycling"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// SyncEvent is a message broadcast to display clients.
type SyncEvent struct {
	Type      string                 `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Data      map[string]interface{} `json:"data,omitempty"`
}

// NewSyncEvent creates a sync event stamped with the current time.
func NewSyncEvent(eventType string, data map[string]interface{}) SyncEvent {
	return SyncEvent{
		Type:      eventType,
		Timestamp: time.Now(),
		Data:      data,
	}
}
