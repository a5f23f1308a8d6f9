package parser

import (
	"bytes"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"

	"github.com/tmalloy/docchunk/internal/doctree"
)

// MarkdownParser handles Markdown files using goldmark, with the GFM
// table extension enabled so pipe tables come through as real tables.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(r io.Reader, filename string) ([]doctree.Element, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	md := goldmark.New(goldmark.WithExtensions(extension.Table))
	doc := md.Parser().Parse(text.NewReader(src))

	var elements []doctree.Element
	nextGroup := 1

	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.Heading:
			title := string(node.Text(src))
			if strings.TrimSpace(title) != "" {
				elements = append(elements, doctree.NewHeading(node.Level, title))
			}

		case *ast.List:
			// Each top-level list is its own numbering group; nested lists
			// share the group and deepen the indent, mirroring OOXML ilvl.
			collectListItems(node, 0, nextGroup, src, &elements)
			nextGroup++

		case *east.Table:
			elements = append(elements, tableElement(node, src))

		default:
			t := extractBlockText(n, src)
			if t != "" {
				elements = append(elements, doctree.NewParagraph(t))
			}
		}
	}

	return elements, nil
}

// collectListItems flattens a (possibly nested) markdown list into list
// item elements with indent levels.
func collectListItems(list *ast.List, depth, group int, src []byte, out *[]doctree.Element) {
	for item := list.FirstChild(); item != nil; item = item.NextSibling() {
		var itemText strings.Builder
		var nested []*ast.List

		for c := item.FirstChild(); c != nil; c = c.NextSibling() {
			if sub, ok := c.(*ast.List); ok {
				nested = append(nested, sub)
				continue
			}
			if t := extractBlockText(c, src); t != "" {
				if itemText.Len() > 0 {
					itemText.WriteString(" ")
				}
				itemText.WriteString(t)
			}
		}

		if s := strings.TrimSpace(itemText.String()); s != "" {
			*out = append(*out, doctree.NewListItem(depth, group, s))
		}
		for _, sub := range nested {
			collectListItems(sub, depth+1, group, src, out)
		}
	}
}

// tableElement converts a GFM table node: header row first, then data rows.
func tableElement(table *east.Table, src []byte) doctree.Element {
	var header []string
	var dataRows [][]string

	for row := table.FirstChild(); row != nil; row = row.NextSibling() {
		var cells []string
		for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
			cells = append(cells, strings.TrimSpace(string(cell.Text(src))))
		}
		if _, ok := row.(*east.TableHeader); ok {
			header = cells
			continue
		}
		if rowHasContent(cells) {
			dataRows = append(dataRows, cells)
		}
	}

	return doctree.NewTable(header, dataRows)
}

// extractBlockText gets the text content of a goldmark AST node.
func extractBlockText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	if n.Type() == ast.TypeBlock {
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			line := lines.At(i)
			buf.Write(line.Value(src))
		}
	}
	// Also handle inline children for blocks without their own lines.
	if buf.Len() == 0 {
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			if t, ok := c.(*ast.Text); ok {
				buf.Write(t.Value(src))
				if t.HardLineBreak() || t.SoftLineBreak() {
					buf.WriteByte('\n')
				}
			} else {
				buf.WriteString(extractBlockText(c, src))
			}
		}
	}
	return strings.TrimSpace(buf.String())
}
