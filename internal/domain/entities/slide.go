package entities

import (
	"errors"
	"strings"
	"time"
)

// ErrNotFound is returned by stores when a record does not exist.
var ErrNotFound = errors.New("not found")

const (
	backgroundMarkerPrefix = "<!--BACKGROUND:"
	backgroundMarkerSuffix = "-->"
)

// Slide is the atomic unit of projected content. Slides are generated in
// batches from a collection's text and are owned by exactly one collection;
// a slide referenced by no collection is orphaned and eligible for deletion.
type Slide struct {
	// ID is unique and encodes the owning collection, a generation
	// timestamp, and the slide's position within the batch.
	ID string `json:"id"`

	// Title is derived from the owner title and the slide position.
	Title string `json:"title"`

	// HTML is the rendered slide body, optionally prefixed with a
	// background marker comment consumed by the display renderer.
	HTML string `json:"html"`

	// Order is the 1-based presentation position within the owner.
	Order int `json:"order"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Validate ensures the slide has valid required fields.
func (s *Slide) Validate() error {
	if s.ID == "" {
		return errors.New("slide id is required")
	}
	if strings.TrimSpace(s.HTML) == "" {
		return errors.New("slide html cannot be empty")
	}
	if s.Order < 1 {
		return errors.New("slide order must be positive")
	}
	return nil
}

// Background returns the URL carried by the slide's background marker
// comment, or the empty string when the slide has none.
func (s *Slide) Background() string {
	html := strings.TrimSpace(s.HTML)
	if !strings.HasPrefix(html, backgroundMarkerPrefix) {
		return ""
	}
	rest := html[len(backgroundMarkerPrefix):]
	end := strings.Index(rest, backgroundMarkerSuffix)
	if end < 0 {
		return ""
	}
	return rest[:end]
}

// SetBackground replaces or injects the slide's background marker. An empty
// URL removes the marker.
func (s *Slide) SetBackground(url string) {
	body := StripBackgroundMarker(s.HTML)
	if url == "" {
		s.HTML = body
		return
	}
	s.HTML = BackgroundMarker(url) + body
}

// BackgroundMarker formats a background URL as the marker comment the
// display renderer understands.
func BackgroundMarker(url string) string {
	return backgroundMarkerPrefix + url + backgroundMarkerSuffix
}

// StripBackgroundMarker removes a leading background marker from slide HTML.
func StripBackgroundMarker(html string) string {
	trimmed := strings.TrimSpace(html)
	if !strings.HasPrefix(trimmed, backgroundMarkerPrefix) {
		return html
	}
	end := strings.Index(trimmed, backgroundMarkerSuffix)
	if end < 0 {
		return html
	}
	return trimmed[end+len(backgroundMarkerSuffix):]
}
