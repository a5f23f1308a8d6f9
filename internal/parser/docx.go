package parser

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/fumiama/go-docx"

	"github.com/tmalloy/docchunk/internal/doctree"
)

// DOCXParser handles .docx files. Headings come from paragraph styles,
// list items from w:numPr numbering (ilvl + numId) with style and
// text-pattern fallbacks, tables from the document body with the first
// row as header.
type DOCXParser struct{}

func (p *DOCXParser) Parse(r io.Reader, filename string) ([]doctree.Element, error) {
	// go-docx needs a ReadSeeker+size, so write to a temp file.
	tmp, err := os.CreateTemp("", "docchunk-docx-*.docx")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	size, err := io.Copy(tmp, r)
	if err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("seek temp file: %w", err)
	}

	doc, err := docx.Parse(tmp, size)
	tmp.Close()
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}

	var elements []doctree.Element
	for _, item := range doc.Document.Body.Items {
		switch it := item.(type) {
		case *docx.Paragraph:
			if el, ok := classifyParagraph(it); ok {
				elements = append(elements, el)
			}
		case *docx.Table:
			if el, ok := docxTableElement(it); ok {
				elements = append(elements, el)
			}
		}
	}

	return elements, nil
}

// classifyParagraph turns one DOCX paragraph into an element. Detection
// order matches reliability: heading style, numbering properties, list
// styles, text patterns, plain paragraph.
func classifyParagraph(para *docx.Paragraph) (doctree.Element, bool) {
	text := docxParagraphText(para)
	if text == "" {
		return doctree.Element{}, false
	}

	if level := docxHeadingLevel(para); level > 0 {
		return doctree.NewHeading(level, text), true
	}

	if para.Properties != nil && para.Properties.NumProperties != nil {
		np := para.Properties.NumProperties
		// w:ilvl and w:numId are XML attribute strings; unparseable values
		// fall back to indent 0 and the ungrouped sentinel.
		ilvl, numID := 0, -1
		if np.Ilvl != nil {
			if n, err := strconv.Atoi(np.Ilvl.Val); err == nil {
				ilvl = n
			}
		}
		if np.NumID != nil {
			if n, err := strconv.Atoi(np.NumID.Val); err == nil {
				numID = n
			}
		}
		return doctree.NewListItem(ilvl, numID, text), true
	}

	// Style-based list fallback: no numbering definition to key on.
	if style := docxStyleName(para); style != "" {
		lower := strings.ToLower(style)
		if strings.Contains(lower, "list") || strings.Contains(lower, "bullet") || strings.Contains(lower, "number") {
			return doctree.NewListItem(0, -1, text), true
		}
	}

	// Text-pattern list fallback.
	if _, content, ok := detectListItem(text); ok {
		return doctree.NewListItem(0, -1, content), true
	}

	return doctree.NewParagraph(text), true
}

func docxStyleName(para *docx.Paragraph) string {
	if para.Properties == nil || para.Properties.Style == nil {
		return ""
	}
	return para.Properties.Style.Val
}

func docxHeadingLevel(para *docx.Paragraph) int {
	return headingLevelFromStyle(docxStyleName(para))
}

func headingLevelFromStyle(style string) int {
	if style == "" {
		return 0
	}
	normalized := strings.ReplaceAll(strings.ToLower(style), " ", "")
	if !strings.HasPrefix(normalized, "heading") {
		return 0
	}
	levelStr := strings.TrimPrefix(normalized, "heading")
	if levelStr == "" {
		return 1
	}
	level, err := strconv.Atoi(levelStr)
	if err != nil || level < 1 || level > 9 {
		return 0
	}
	return level
}

func docxParagraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				buf.WriteString(t.Text)
			}
		}
	}
	return strings.TrimSpace(buf.String())
}

// docxTableElement flattens a body table: first row is the header,
// later rows are data, blank rows dropped.
func docxTableElement(table *docx.Table) (doctree.Element, bool) {
	if len(table.TableRows) == 0 {
		return doctree.Element{}, false
	}

	rowCells := func(row *docx.WTableRow) []string {
		var cells []string
		for _, cell := range row.TableCells {
			var parts []string
			for _, para := range cell.Paragraphs {
				if t := docxParagraphText(para); t != "" {
					parts = append(parts, t)
				}
			}
			cells = append(cells, strings.Join(parts, " "))
		}
		return cells
	}

	header := rowCells(table.TableRows[0])
	var dataRows [][]string
	for _, row := range table.TableRows[1:] {
		cells := rowCells(row)
		if rowHasContent(cells) {
			dataRows = append(dataRows, cells)
		}
	}

	return doctree.NewTable(header, dataRows), true
}
