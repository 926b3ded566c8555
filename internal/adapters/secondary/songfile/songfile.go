// Package songfile reads and writes .song files: plain-text lyrics with an
// optional YAML frontmatter block carrying song metadata.
package songfile

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// SongFile is the parsed form of a .song file.
type SongFile struct {
	Title      string `yaml:"title,omitempty"`
	Author     string `yaml:"author,omitempty"`
	Background string `yaml:"background,omitempty"`
	CCLI       string `yaml:"ccli,omitempty"`
	Lyrics     string `yaml:"-"`
}

// Parse reads a .song file. Files without frontmatter are pure lyrics.
func Parse(content []byte) (*SongFile, error) {
	meta, lyrics := extractFrontmatter(content)

	song := &SongFile{
		Lyrics: strings.TrimSpace(string(lyrics)),
	}

	if len(meta) > 0 {
		if err := yaml.Unmarshal(meta, song); err != nil {
			return nil, fmt.Errorf("parsing song metadata: %w", err)
		}
	}

	if song.Lyrics == "" {
		return nil, fmt.Errorf("song file has no lyrics")
	}

	return song, nil
}

// Marshal renders a song back to the .song format. The frontmatter block is
// omitted when no metadata is set.
func (s *SongFile) Marshal() ([]byte, error) {
	var buf bytes.Buffer

	if s.Title != "" || s.Author != "" || s.Background != "" || s.CCLI != "" {
		meta, err := yaml.Marshal(s)
		if err != nil {
			return nil, fmt.Errorf("encoding song metadata: %w", err)
		}
		buf.WriteString("---\n")
		buf.Write(meta)
		buf.WriteString("---\n\n")
	}

	buf.WriteString(s.Lyrics)
	buf.WriteString("\n")
	return buf.Bytes(), nil
}

// extractFrontmatter splits a leading YAML frontmatter block from the
// lyrics body. Returns nil metadata when there is no block.
func extractFrontmatter(content []byte) ([]byte, []byte) {
	if !bytes.HasPrefix(content, []byte("---\n")) && !bytes.HasPrefix(content, []byte("---\r\n")) {
		return nil, content
	}

	lines := bytes.Split(content, []byte("\n"))
	endIndex := -1

	for i := 1; i < len(lines); i++ {
		if bytes.Equal(bytes.TrimSpace(lines[i]), []byte("---")) {
			endIndex = i
			break
		}
	}

	if endIndex == -1 {
		return nil, content
	}

	meta := bytes.Join(lines[1:endIndex], []byte("\n"))
	body := bytes.Join(lines[endIndex+1:], []byte("\n"))
	return meta, body
}
