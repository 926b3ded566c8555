package textproc

import (
	"regexp"
	"strings"
)

// blankLineRE matches a blank-line boundary: two newlines, each possibly
// surrounded by horizontal whitespace, swallowing any longer run.
var blankLineRE = regexp.MustCompile(`\n\s*\n\s*`)

// BlankLineSegmenter splits canonical plain text into slide-sized chunks.
type BlankLineSegmenter struct{}

// NewSegmenter creates a BlankLineSegmenter.
func NewSegmenter() *BlankLineSegmenter {
	return &BlankLineSegmenter{}
}

// Segment splits canonical text on blank-line boundaries, trimming each
// chunk and discarding empty ones. It is pure and idempotent; an empty
// result signals "no slides" and the caller clears the owner's slide set.
func (s *BlankLineSegmenter) Segment(canonical string) []string {
	parts := blankLineRE.Split(canonical, -1)
	segments := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			segments = append(segments, trimmed)
		}
	}
	return segments
}
