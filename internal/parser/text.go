package parser

import (
	"bufio"
	"io"
	"strings"

	"github.com/tmalloy/docchunk/internal/doctree"
)

// TextParser handles plain text files. Blank-line separated runs become
// paragraphs; lines with list markers become fallback list items. Plain
// text carries no reliable heading signal, so nothing is promoted to a
// heading.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) ([]doctree.Element, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var elements []doctree.Element
	var current strings.Builder

	flush := func() {
		if current.Len() == 0 {
			return
		}
		elements = append(elements, doctree.NewParagraph(current.String()))
		current.Reset()
	}

	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		if indent, content, ok := detectListItem(line); ok {
			flush()
			elements = append(elements, doctree.NewListItem(indent, -1, content))
			continue
		}
		if current.Len() > 0 {
			current.WriteString("\n")
		}
		current.WriteString(line)
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return elements, nil
}
