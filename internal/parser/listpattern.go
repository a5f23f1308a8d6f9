package parser

import (
	"regexp"
	"strings"
)

// Text-pattern list detection shared by the parsers that see no real
// numbering metadata (plain text, PDF, DOCX style fallback). Items
// detected this way carry GroupID -1.

var (
	bulletPattern   = regexp.MustCompile(`^[-•*▪▫►▶]\s+(.+)$`)
	numberedPattern = regexp.MustCompile(`^(?:\(?\d{1,2}[.)]|[a-zA-Z]\.|[ivx]{1,4}\.)\s+(.+)$`)
)

// Spaces of leading indentation per nesting level in plain-text lists.
const indentSpacesPerLevel = 4

// detectListItem reports whether a line looks like a list item and, if
// so, its 0-based indent level and the marker-stripped content.
func detectListItem(line string) (indent int, content string, ok bool) {
	trimmed := strings.TrimLeft(line, " \t")
	leading := len(line) - len(trimmed)
	indent = leading / indentSpacesPerLevel

	if m := bulletPattern.FindStringSubmatch(trimmed); m != nil {
		return indent, strings.TrimSpace(m[1]), true
	}
	if m := numberedPattern.FindStringSubmatch(trimmed); m != nil {
		return indent, strings.TrimSpace(m[1]), true
	}
	return 0, "", false
}
