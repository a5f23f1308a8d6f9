// Package chunker consolidates a reconstructed document tree into
// bounded-size text chunks with heading context and element-level
// overlap across list and table boundaries.
package chunker

import (
	"fmt"
	"strings"

	"github.com/tmalloy/docchunk/internal/doctree"
)

// Config controls chunk assembly.
type Config struct {
	// ChunkSizeTokens is the soft token budget per chunk. A single list
	// item or table row larger than the budget still becomes one
	// (oversized) chunk; the splitter never fragments below element
	// granularity.
	ChunkSizeTokens int

	// OverlapElements repeats the trailing N elements of a flushed list or
	// table chunk at the start of the next one.
	OverlapElements int
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		ChunkSizeTokens: 1000,
		OverlapElements: 0,
	}
}

// Option customizes an Assembler.
type Option func(*Assembler)

// WithTokenCounter replaces the default token estimator.
func WithTokenCounter(count TokenCounter) Option {
	return func(a *Assembler) {
		if count != nil {
			a.count = count
		}
	}
}

// Assembler walks a node tree depth-first and emits chunks. It keeps no
// state across calls; concurrent Apply calls on independent trees are safe.
type Assembler struct {
	cfg   Config
	count TokenCounter
}

// New validates the configuration and builds an Assembler.
func New(cfg Config, opts ...Option) (*Assembler, error) {
	if cfg.ChunkSizeTokens <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", cfg.ChunkSizeTokens)
	}
	if cfg.OverlapElements < 0 {
		return nil, fmt.Errorf("overlap element count must not be negative, got %d", cfg.OverlapElements)
	}
	a := &Assembler{
		cfg:   cfg,
		count: EstimateTokens,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// assembly accumulates output for one Apply call.
type assembly struct {
	documentID   string
	sourceFormat string
	chunks       []doctree.Chunk
}

// Apply emits the ordered chunk sequence for a document tree.
func (a *Assembler) Apply(roots []*doctree.Node, documentID, sourceFormat string) []doctree.Chunk {
	st := &assembly{documentID: documentID, sourceFormat: sourceFormat}
	a.consolidate(roots, nil, st)
	return st.chunks
}

// consolidate walks nodes pre-order. The heading path is passed by value
// downward: each recursion works on a fresh copy, so no backtracking is
// needed when a subtree ends.
func (a *Assembler) consolidate(nodes []*doctree.Node, headings []string, st *assembly) {
	for _, node := range nodes {
		switch node.Kind {
		case doctree.KindHeading:
			newHeadings := append([]string(nil), headings...)
			for len(newHeadings) < node.Level {
				newHeadings = append(newHeadings, "")
			}
			newHeadings[node.Level-1] = node.Text
			newHeadings = newHeadings[:node.Level]

			if text := strings.TrimSpace(node.Text); text != "" {
				st.chunks = append(st.chunks, doctree.Chunk{
					Text: text,
					Metadata: doctree.Metadata{
						DocumentID:   st.documentID,
						SourceFormat: st.sourceFormat,
						NodeType:     "heading",
						Headings:     copyHeadings(newHeadings),
						NumTokens:    a.count(text),
					},
				})
			}
			a.consolidate(node.Children, newHeadings, st)

		case doctree.KindListContainer:
			a.processListContainer(node, headings, st)

		case doctree.KindTable:
			a.processTable(node, headings, st)

		case doctree.KindParagraph:
			content := stringifyNode(node, 0)
			if strings.TrimSpace(content) == "" {
				continue
			}
			text := a.chunkText(headings, content)
			st.chunks = append(st.chunks, doctree.Chunk{
				Text: text,
				Metadata: doctree.Metadata{
					DocumentID:   st.documentID,
					SourceFormat: st.sourceFormat,
					NodeType:     "paragraph",
					Headings:     copyHeadings(headings),
					NumTokens:    a.count(text),
				},
			})

		default:
			// Unrecognized kinds are ignored so that newer parsers can emit
			// kinds this assembler does not know yet.
		}
	}
}

// processListContainer splits a list into token-bounded chunks, carrying
// the configured trailing-item overlap between consecutive chunks.
func (a *Assembler) processListContainer(node *doctree.Node, headings []string, st *assembly) {
	if len(node.Children) == 0 {
		return
	}
	fragments := make([]string, 0, len(node.Children))
	for _, item := range node.Children {
		fragments = append(fragments, stringifyNode(item, 0))
	}
	a.splitRun(fragments, headings, "list_container", st)
}

// processTable renders each data row against the header and splits the
// rows like a list. A table with a header but no data rows still emits a
// single header-only chunk; a table with neither emits nothing.
func (a *Assembler) processTable(node *doctree.Node, headings []string, st *assembly) {
	if len(node.DataRows) == 0 {
		if len(node.Header) == 0 {
			return
		}
		headerText := "Table Header: " + strings.Join(node.Header, " | ")
		text := a.chunkText(headings, headerText)
		st.chunks = append(st.chunks, doctree.Chunk{
			Text: text,
			Metadata: doctree.Metadata{
				DocumentID:   st.documentID,
				SourceFormat: st.sourceFormat,
				NodeType:     "table_header_only",
				Headings:     copyHeadings(headings),
				NumTokens:    a.count(text),
			},
		})
		return
	}

	fragments := make([]string, 0, len(node.DataRows))
	for _, row := range node.DataRows {
		fragments = append(fragments, formatTableRow(node.Header, row))
	}
	a.splitRun(fragments, headings, "table_rows", st)
}

// splitRun is the greedy token-bounded splitter shared by lists and
// tables. Fragments are list items or formatted rows; each chunk is the
// newline join of a batch, heading-prefixed. A flush happens as soon as
// the next fragment would push the chunk over the budget, and the next
// batch is seeded with the trailing OverlapElements fragments of the
// flushed one. The first chunk of every run has no overlap.
func (a *Assembler) splitRun(fragments []string, headings []string, nodeType string, st *assembly) {
	prefixTokens := a.count(a.chunkText(headings, ""))
	sepTokens := a.count("\n")

	var batch []string
	contentTokens := 0
	first := true

	flush := func() {
		text := a.chunkText(headings, strings.Join(batch, "\n"))
		overlap := 0
		if !first {
			overlap = min(a.cfg.OverlapElements, len(batch))
		}
		st.chunks = append(st.chunks, doctree.Chunk{
			Text: text,
			Metadata: doctree.Metadata{
				DocumentID:      st.documentID,
				SourceFormat:    st.sourceFormat,
				NodeType:        nodeType,
				Headings:        copyHeadings(headings),
				NumTokens:       a.count(text),
				HasOverlap:      !first && a.cfg.OverlapElements > 0,
				OverlapElements: overlap,
			},
		})
		first = false

		var seed []string
		if a.cfg.OverlapElements > 0 && len(batch) >= a.cfg.OverlapElements {
			seed = append(seed, batch[len(batch)-a.cfg.OverlapElements:]...)
		}
		batch = seed
		contentTokens = a.count(strings.Join(batch, "\n"))
	}

	for _, frag := range fragments {
		fragTokens := a.count(frag)
		if len(batch) > 0 && prefixTokens+contentTokens+fragTokens+sepTokens > a.cfg.ChunkSizeTokens {
			flush()
		}
		batch = append(batch, frag)
		contentTokens += fragTokens
		if len(batch) > 1 {
			contentTokens += sepTokens
		}
	}
	if len(batch) > 0 {
		flush()
	}
}

// chunkText prepends the active heading context to content:
// "H1: ...\nH2: ...\n---\n" + content. Content passes through untouched
// when no non-empty heading is active.
func (a *Assembler) chunkText(headings []string, content string) string {
	var lines []string
	for i, h := range headings {
		if strings.TrimSpace(h) == "" {
			continue
		}
		lines = append(lines, fmt.Sprintf("H%d: %s", i+1, h))
	}
	if len(lines) == 0 {
		return content
	}
	return strings.Join(lines, "\n") + "\n---\n" + content
}

// formatTableRow zips a data row against the header. Header missing or
// width mismatch falls back to a plain cell join.
func formatTableRow(header []string, row []string) string {
	if len(header) == 0 || len(header) != len(row) {
		return strings.Join(row, " | ")
	}
	parts := make([]string, len(row))
	for i, cell := range row {
		parts[i] = fmt.Sprintf("%s: %s", header[i], cell)
	}
	return strings.Join(parts, " | ")
}

// stringifyNode renders a node and its children as indented plain text.
// List markers are a placeholder scheme, not real numbering restoration:
// bullets for fallback groups and even indents, "N." for odd indents.
func stringifyNode(node *doctree.Node, indentLevel int) string {
	indent := strings.Repeat("  ", indentLevel)
	var parts []string

	switch node.Kind {
	case doctree.KindParagraph:
		parts = append(parts, indent+node.Text)
	case doctree.KindListItem:
		marker := "- "
		if node.GroupID != -1 && node.Level%2 == 1 {
			marker = fmt.Sprintf("%d. ", node.Level+1)
		}
		parts = append(parts, indent+marker+node.Text)
	case doctree.KindHeading:
		parts = append(parts, indent+fmt.Sprintf("H%d: %s", node.Level, node.Text))
	case doctree.KindListContainer:
		// Content comes entirely from children.
	}

	childIndent := indentLevel
	if node.Kind == doctree.KindListItem || node.Kind == doctree.KindListContainer {
		childIndent++
	}
	for _, child := range node.Children {
		if s := stringifyNode(child, childIndent); s != "" {
			parts = append(parts, s)
		}
	}

	return strings.Join(parts, "\n")
}

func copyHeadings(headings []string) []string {
	out := make([]string, len(headings))
	copy(out, headings)
	return out
}
