package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollection_Validate(t *testing.T) {
	tests := []struct {
		name    string
		c       Collection
		wantErr string
	}{
		{
			name: "valid song",
			c:    Collection{ID: "s1", Kind: KindSong, Title: "Amazing Grace"},
		},
		{
			name:    "missing id",
			c:       Collection{Kind: KindSong, Title: "x"},
			wantErr: "collection id is required",
		},
		{
			name:    "unknown kind",
			c:       Collection{ID: "s1", Kind: "playlist", Title: "x"},
			wantErr: "unknown collection kind",
		},
		{
			name:    "missing title",
			c:       Collection{ID: "s1", Kind: KindSermon},
			wantErr: "collection title is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.c.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestCollectionKind_AutoSegments(t *testing.T) {
	assert.True(t, KindSong.AutoSegments())
	assert.False(t, KindSermon.AutoSegments())
	assert.False(t, KindAssetDeck.AutoSegments())
}

func TestCollection_ContentKey(t *testing.T) {
	song := Collection{ID: "42", Kind: KindSong, Title: "x"}
	assert.Equal(t, "song-lyrics-42", song.ContentKey())

	sermon := Collection{ID: "7", Kind: KindSermon, Title: "x"}
	assert.Equal(t, "sermon-notes-7", sermon.ContentKey())
}

func TestCollectionRef(t *testing.T) {
	ref := CollectionRef{Kind: KindSong, ID: "abc"}
	require.NoError(t, ref.Validate())
	assert.Equal(t, "song/abc", ref.String())

	assert.Error(t, CollectionRef{Kind: KindSong}.Validate())
	assert.Error(t, CollectionRef{Kind: "nope", ID: "abc"}.Validate())

	c := Collection{ID: "abc", Kind: KindSong, Title: "x"}
	assert.Equal(t, ref, c.Ref())
}
