package textproc

import (
	"fmt"
	"html"
	"strings"

	"github.com/versely/versely/internal/domain/entities"
	"github.com/versely/versely/internal/domain/ports"
)

// slideBodyFormat wraps slide text in the centered, high-contrast container
// the display renderer expects.
const slideBodyFormat = `<div class="slide-body" style="text-align:center;color:#ffffff;">%s</div>`

// SlideSynthesizer turns text segments into slide records.
type SlideSynthesizer struct {
	clock ports.Clock
}

// NewSynthesizer creates a SlideSynthesizer using the given clock for id
// generation.
func NewSynthesizer(clock ports.Clock) *SlideSynthesizer {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	return &SlideSynthesizer{clock: clock}
}

// Synthesize builds one slide per segment. Slide ids encode the owner, a
// shared generation timestamp, and the batch index, which keeps them unique
// and stably ordered within the batch. A non-empty backgroundURL is applied
// uniformly to every slide: background is an owner-level property.
func (s *SlideSynthesizer) Synthesize(ownerID, ownerTitle string, segments []string, backgroundURL string) []entities.Slide {
	now := s.clock.Now()
	stamp := now.UnixMilli()

	slides := make([]entities.Slide, 0, len(segments))
	for i, segment := range segments {
		body := fmt.Sprintf(slideBodyFormat, renderLines(segment))
		if backgroundURL != "" {
			body = entities.BackgroundMarker(backgroundURL) + body
		}

		slides = append(slides, entities.Slide{
			ID:        fmt.Sprintf("slide-%s-%d-%d", ownerID, stamp, i),
			Title:     fmt.Sprintf("%s - Slide %d", ownerTitle, i+1),
			HTML:      body,
			Order:     i + 1,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}
	return slides
}

// renderLines converts a segment's internal newlines to line-break markup,
// collapsing runs of whitespace within each line to single spaces.
func renderLines(segment string) string {
	lines := strings.Split(segment, "\n")
	rendered := make([]string, 0, len(lines))
	for _, line := range lines {
		collapsed := strings.Join(strings.Fields(line), " ")
		if collapsed == "" {
			continue
		}
		rendered = append(rendered, html.EscapeString(collapsed))
	}
	return strings.Join(rendered, "<br>")
}
