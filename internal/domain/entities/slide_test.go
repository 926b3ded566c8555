package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlide_Validate(t *testing.T) {
	tests := []struct {
		name    string
		slide   Slide
		wantErr bool
		errMsg  string
	}{
		{
			name:    "valid slide",
			slide:   Slide{ID: "slide-a-1-0", HTML: "<div>hi</div>", Order: 1},
			wantErr: false,
		},
		{
			name:    "missing id",
			slide:   Slide{HTML: "<div>hi</div>", Order: 1},
			wantErr: true,
			errMsg:  "slide id is required",
		},
		{
			name:    "empty html",
			slide:   Slide{ID: "x", HTML: "   ", Order: 1},
			wantErr: true,
			errMsg:  "slide html cannot be empty",
		},
		{
			name:    "zero order",
			slide:   Slide{ID: "x", HTML: "<div>hi</div>"},
			wantErr: true,
			errMsg:  "slide order must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.slide.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestSlide_Background(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{
			name: "marker present",
			html: "<!--BACKGROUND:https://x/bg.jpg--><div>body</div>",
			want: "https://x/bg.jpg",
		},
		{
			name: "no marker",
			html: "<div>body</div>",
			want: "",
		},
		{
			name: "marker not at start",
			html: "<div>body</div><!--BACKGROUND:https://x/bg.jpg-->",
			want: "",
		},
		{
			name: "unterminated marker",
			html: "<!--BACKGROUND:https://x/bg.jpg",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Slide{HTML: tt.html}
			assert.Equal(t, tt.want, s.Background())
		})
	}
}

func TestSlide_SetBackground(t *testing.T) {
	s := Slide{HTML: "<div>body</div>"}

	s.SetBackground("https://x/a.jpg")
	assert.Equal(t, "https://x/a.jpg", s.Background())
	assert.Contains(t, s.HTML, "<div>body</div>")

	// Replacing an existing marker must not stack markers.
	s.SetBackground("https://x/b.jpg")
	assert.Equal(t, "https://x/b.jpg", s.Background())
	assert.Equal(t, "<div>body</div>", StripBackgroundMarker(s.HTML))

	s.SetBackground("")
	assert.Empty(t, s.Background())
	assert.Equal(t, "<div>body</div>", s.HTML)
}
