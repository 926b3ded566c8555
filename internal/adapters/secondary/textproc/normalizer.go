// Package textproc implements the text-to-slide pipeline: normalizing
// pasted rich text into canonical plain text, segmenting it on blank-line
// boundaries, and synthesizing slide records from the segments.
package textproc

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	// Two-or-more consecutive breaks mark an empty line. This must run
	// before the single-break collapse or the double-break signal is lost.
	multiBreakRE  = regexp.MustCompile(`(?i)(?:<br(?:\s[^>]*)?/?>\s*){2,}`)
	singleBreakRE = regexp.MustCompile(`(?i)<br(?:\s[^>]*)?/?>`)

	blockCloseRE = regexp.MustCompile(`(?i)</(?:div|p)\s*>`)
	blockOpenRE  = regexp.MustCompile(`(?i)<(?:div|p)(?:\s[^>]*)?>`)

	excessNewlinesRE = regexp.MustCompile(`\n{3,}`)
	anyTagRE         = regexp.MustCompile(`<[^>]*>`)
)

// HTMLNormalizer converts heterogeneous rich-text input into canonical
// plain text: lines separated by "\n", blank lines by "\n\n".
type HTMLNormalizer struct{}

// NewNormalizer creates an HTMLNormalizer.
func NewNormalizer() *HTMLNormalizer {
	return &HTMLNormalizer{}
}

// Normalize converts raw editor content into canonical plain text. Content
// with no markup at all passes through unchanged, blank lines preserved
// verbatim.
func (n *HTMLNormalizer) Normalize(raw string) string {
	if !strings.ContainsAny(raw, "<>") {
		return raw
	}

	s := strings.ReplaceAll(raw, "\r\n", "\n")

	// Word processors and contenteditable editors paste paragraphs as
	// sibling top-level block elements with no <br> between them. Those
	// block boundaries must become blank lines or the segmenter sees one
	// giant slide.
	blockSep := "\n"
	if topLevelBlockCount(s) > 1 {
		blockSep = "\n\n"
	}

	s = multiBreakRE.ReplaceAllString(s, "\n\n")
	s = singleBreakRE.ReplaceAllString(s, "\n")
	s = blockCloseRE.ReplaceAllString(s, blockSep)
	s = blockOpenRE.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "&nbsp;", " ")
	s = strings.ReplaceAll(s, " ", " ")
	s = excessNewlinesRE.ReplaceAllString(s, "\n\n")
	s = visibleText(s)
	s = excessNewlinesRE.ReplaceAllString(s, "\n\n")

	return strings.TrimSpace(s)
}

// topLevelBlockCount counts block-level elements sitting directly under
// the document body of the pasted fragment.
func topLevelBlockCount(s string) int {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return 0
	}
	return doc.Find("body").ChildrenFiltered("div, p").Length()
}

// visibleText strips any remaining markup while preserving the newlines
// injected by the earlier passes.
func visibleText(s string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return anyTagRE.ReplaceAllString(s, "")
	}
	return doc.Text()
}
