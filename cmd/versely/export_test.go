package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSongFileName(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  string
	}{
		{"simple", "Amazing Grace", "amazing-grace.song"},
		{"punctuation stripped", "It Is Well (With My Soul)", "it-is-well-with-my-soul.song"},
		{"already slugged", "how-great_thou art", "how-great-thou-art.song"},
		{"nothing usable", "!!!", "untitled.song"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, songFileName(tt.title))
		})
	}
}
