package parser

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"
	"strings"

	pdflib "github.com/ledongthuc/pdf"

	"github.com/tmalloy/docchunk/internal/doctree"
)

// PDFParser handles PDF files. It reads positioned text with font sizes
// through the Go library and infers headings from font-size ratios; when
// that fails it can fall back to pdftotext, losing heading detection.
type PDFParser struct {
	FallbackPdftotext bool
}

// Font-ratio thresholds for heading inference. These are tuning knobs,
// not contracts: PDF has no structural heading markup, so any mapping
// from size to level is an approximation.
const (
	headingFontGate = 1.2
	h1Ratio         = 2.0
	h2Ratio         = 1.6
	h3Ratio         = 1.4
	h4Ratio         = 1.2
)

func (p *PDFParser) Parse(r io.Reader, filename string) ([]doctree.Element, error) {
	// ledongthuc/pdf requires a ReadSeeker+size, so we write to a temp file.
	tmp, err := os.CreateTemp("", "docchunk-pdf-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	tmp.Close()

	elements, err := extractPDFElements(tmpPath)
	if err != nil && p.FallbackPdftotext {
		text, fallbackErr := extractPdftotext(tmpPath)
		if fallbackErr != nil {
			return nil, fmt.Errorf("extract pdf text: %w", err)
		}
		tp := &TextParser{}
		return tp.Parse(strings.NewReader(text), filename)
	}
	if err != nil {
		return nil, fmt.Errorf("extract pdf text: %w", err)
	}
	return elements, nil
}

// pdfLine is one assembled text row with its dominant font size.
type pdfLine struct {
	text     string
	fontSize float64
}

func extractPDFElements(path string) ([]doctree.Element, error) {
	f, reader, err := pdflib.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var pages [][]pdfLine
	var sizeSum float64
	var sizeCount int

	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		lines := assembleLines(page.Content().Text)
		for _, line := range lines {
			if line.fontSize > 0 {
				sizeSum += line.fontSize
				sizeCount++
			}
		}
		pages = append(pages, lines)
	}

	bodySize := 12.0
	if sizeCount > 0 {
		bodySize = sizeSum / float64(sizeCount)
	}

	var elements []doctree.Element
	for _, lines := range pages {
		elements = append(elements, classifyPDFLines(lines, bodySize)...)
	}
	if len(elements) == 0 {
		return nil, fmt.Errorf("no text content extracted")
	}
	return elements, nil
}

// assembleLines groups positioned glyph runs into visual rows: PDF
// coordinates grow upward, so rows are ordered by descending Y, and runs
// within a row by X.
func assembleLines(texts []pdflib.Text) []pdfLine {
	if len(texts) == 0 {
		return nil
	}

	sorted := make([]pdflib.Text, len(texts))
	copy(sorted, texts)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Y != sorted[j].Y {
			return sorted[i].Y > sorted[j].Y
		}
		return sorted[i].X < sorted[j].X
	})

	const rowTolerance = 2.0

	var lines []pdfLine
	var buf strings.Builder
	var maxSize float64
	currentY := sorted[0].Y

	flush := func() {
		text := strings.TrimSpace(buf.String())
		if text != "" {
			lines = append(lines, pdfLine{text: text, fontSize: maxSize})
		}
		buf.Reset()
		maxSize = 0
	}

	for _, t := range sorted {
		if currentY-t.Y > rowTolerance {
			flush()
			currentY = t.Y
		}
		buf.WriteString(t.S)
		if t.FontSize > maxSize {
			maxSize = t.FontSize
		}
	}
	flush()

	return lines
}

// classifyPDFLines maps rows to elements: oversized fonts become
// headings, marker patterns become fallback list items, and consecutive
// plain rows merge into one paragraph.
func classifyPDFLines(lines []pdfLine, bodySize float64) []doctree.Element {
	var elements []doctree.Element
	var para strings.Builder

	flushPara := func() {
		if para.Len() == 0 {
			return
		}
		elements = append(elements, doctree.NewParagraph(para.String()))
		para.Reset()
	}

	for _, line := range lines {
		if line.fontSize > 0 && bodySize > 0 && line.fontSize > bodySize*headingFontGate {
			flushPara()
			elements = append(elements, doctree.NewHeading(headingLevelForRatio(line.fontSize/bodySize), line.text))
			continue
		}
		if indent, content, ok := detectListItem(line.text); ok {
			flushPara()
			elements = append(elements, doctree.NewListItem(indent, -1, content))
			continue
		}
		if para.Len() > 0 {
			para.WriteString(" ")
		}
		para.WriteString(line.text)
	}
	flushPara()

	return elements
}

func headingLevelForRatio(ratio float64) int {
	switch {
	case ratio >= h1Ratio:
		return 1
	case ratio >= h2Ratio:
		return 2
	case ratio >= h3Ratio:
		return 3
	case ratio >= h4Ratio:
		return 4
	default:
		return 5
	}
}

func extractPdftotext(path string) (string, error) {
	cmd := exec.Command("pdftotext", "-layout", path, "-")
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("pdftotext: %w", err)
	}
	return string(out), nil
}
