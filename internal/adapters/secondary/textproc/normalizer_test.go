package textproc

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize_PlainTextPassthrough(t *testing.T) {
	n := NewNormalizer()

	tests := []struct {
		name  string
		input string
	}{
		{name: "single line", input: "Amazing grace"},
		{name: "multiple lines", input: "Amazing grace\nhow sweet the sound"},
		{name: "blank lines preserved", input: "Verse one.\n\nVerse two.\n\nVerse three."},
		{name: "excess blank lines preserved verbatim", input: "A\n\n\n\nB"},
		{name: "empty", input: ""},
		{name: "whitespace only", input: "   \n\t  "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.input, n.Normalize(tt.input))
		})
	}
}

func TestNormalize_HTMLInput(t *testing.T) {
	n := NewNormalizer()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "double break becomes blank line",
			input: "A<br><br>B",
			want:  "A\n\nB",
		},
		{
			name:  "self-closing double break",
			input: "A<br/><br/>B",
			want:  "A\n\nB",
		},
		{
			name:  "double break with interleaved whitespace",
			input: "A<br> <br>B",
			want:  "A\n\nB",
		},
		{
			name:  "single break becomes newline",
			input: "Line one<br>Line two",
			want:  "Line one\nLine two",
		},
		{
			name:  "triple break collapses to blank line",
			input: "A<br><br><br>B",
			want:  "A\n\nB",
		},
		{
			name:  "single div unwrapped",
			input: "<div>Amazing grace</div>",
			want:  "Amazing grace",
		},
		{
			name:  "breaks inside one div",
			input: "<div>Verse one<br><br>Verse two</div>",
			want:  "Verse one\n\nVerse two",
		},
		{
			name:  "non-breaking spaces become spaces",
			input: "Amazing&nbsp;grace<br>how&nbsp;sweet",
			want:  "Amazing grace\nhow sweet",
		},
		{
			name:  "inline markup stripped",
			input: "<b>Amazing</b> <i>grace</i><br>how sweet",
			want:  "Amazing grace\nhow sweet",
		},
		{
			name:  "paragraph tags",
			input: "<p>First</p>",
			want:  "First",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, n.Normalize(tt.input))
		})
	}
}

func TestNormalize_MultipleTopLevelBlocks(t *testing.T) {
	n := NewNormalizer()

	// Paste output from rich-text editors wraps each paragraph in its own
	// top-level block with no explicit <br> anywhere. Block boundaries
	// must still become blank lines.
	tests := []struct {
		name  string
		input string
	}{
		{name: "sibling divs", input: "<div>Verse one</div><div>Verse two</div>"},
		{name: "sibling paragraphs", input: "<p>Verse one</p><p>Verse two</p>"},
		{name: "divs with attributes", input: `<div class="para">Verse one</div><div class="para">Verse two</div>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := n.Normalize(tt.input)
			assert.Contains(t, got, "\n\n", "block boundary should produce a blank line")

			segs := NewSegmenter().Segment(got)
			assert.Equal(t, []string{"Verse one", "Verse two"}, segs)
		})
	}
}

func TestNormalize_Deterministic(t *testing.T) {
	n := NewNormalizer()
	input := "<div>A<br><br>B</div><div>C&nbsp;D</div>"

	first := n.Normalize(input)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, n.Normalize(input))
	}
}

func TestNormalize_ExcessNewlinesCollapsed(t *testing.T) {
	n := NewNormalizer()

	got := n.Normalize("A<br><br>B<br><br><br><br>C<span></span>")
	assert.False(t, strings.Contains(got, "\n\n\n"), "runs of 3+ newlines must collapse to 2, got %q", got)
}
