// Package printview renders a service flow to a self-contained printable
// HTML program.
package printview

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"

	"github.com/versely/versely/internal/domain/entities"
)

// Renderer renders flows to printable HTML. Note bodies are treated as
// markdown.
type Renderer struct {
	md goldmark.Markdown
}

// NewRenderer creates a print renderer.
func NewRenderer() *Renderer {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Typographer,
		),
		goldmark.WithRendererOptions(
			gmhtml.WithHardWraps(),
		),
	)
	return &Renderer{md: md}
}

// Render produces the full HTML document for a flow.
func (r *Renderer) Render(ctx context.Context, flow *entities.Flow) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString("<!DOCTYPE html>\n<html>\n<head>\n")
	buf.WriteString("<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&buf, "<title>%s</title>\n", html.EscapeString(flow.Title))
	buf.WriteString("<style>\n" + printStyles + "\n</style>\n")
	buf.WriteString("</head>\n<body>\n")
	fmt.Fprintf(&buf, "<h1>%s</h1>\n<ol class=\"program\">\n", html.EscapeString(flow.Title))

	for _, item := range flow.Items {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		switch item.Type {
		case entities.FlowItemNote:
			fmt.Fprintf(&buf, "<li class=\"note\"><strong>%s</strong>", html.EscapeString(item.Title))
			if body := strings.TrimSpace(item.Note); body != "" {
				var note bytes.Buffer
				if err := r.md.Convert([]byte(body), &note); err != nil {
					return nil, fmt.Errorf("rendering note %q: %w", item.Title, err)
				}
				buf.WriteString("<div class=\"note-body\">")
				buf.Write(note.Bytes())
				buf.WriteString("</div>")
			}
			buf.WriteString("</li>\n")
		default:
			fmt.Fprintf(&buf, "<li class=\"collection\">%s</li>\n", html.EscapeString(item.Title))
		}
	}

	buf.WriteString("</ol>\n</body>\n</html>\n")
	return buf.Bytes(), nil
}

const printStyles = `body { font-family: Georgia, serif; max-width: 40rem; margin: 2rem auto; }
h1 { border-bottom: 2px solid #333; padding-bottom: 0.5rem; }
ol.program { line-height: 1.8; }
li.note { list-style: none; margin-left: -1.2rem; color: #555; }
.note-body { font-size: 0.9em; margin: 0.2rem 0 0.6rem 1rem; }
@media print { body { margin: 0.5in; } }`
