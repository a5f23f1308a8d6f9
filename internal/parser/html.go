package parser

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"

	"github.com/tmalloy/docchunk/internal/doctree"
)

// HTMLParser handles HTML files.
type HTMLParser struct{}

func (p *HTMLParser) Parse(r io.Reader, filename string) ([]doctree.Element, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	w := &htmlWalker{nextGroup: 1}
	root := findBody(doc)
	if root == nil {
		root = doc
	}
	w.walk(root)

	return w.elements, nil
}

type htmlWalker struct {
	elements  []doctree.Element
	nextGroup int
}

func (w *htmlWalker) walk(n *html.Node) {
	if n.Type == html.ElementNode {
		if level := headingLevel(n.Data); level > 0 {
			if t := textContent(n); t != "" {
				w.elements = append(w.elements, doctree.NewHeading(level, t))
			}
			return
		}

		switch n.Data {
		case "script", "style", "nav", "footer", "header":
			return
		case "ul", "ol":
			group := w.nextGroup
			w.nextGroup++
			w.walkList(n, 0, group)
			return
		case "table":
			w.elements = append(w.elements, htmlTableElement(n))
			return
		case "p", "blockquote", "pre":
			if t := textContent(n); t != "" {
				w.elements = append(w.elements, doctree.NewParagraph(t))
			}
			return
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.walk(c)
	}
}

// walkList emits list items for an ul/ol subtree. Nested lists keep the
// outer list's group and raise the indent level.
func (w *htmlWalker) walkList(list *html.Node, depth, group int) {
	for li := list.FirstChild; li != nil; li = li.NextSibling {
		if li.Type != html.ElementNode || li.Data != "li" {
			continue
		}

		var nested []*html.Node
		var itemText strings.Builder
		var collect func(*html.Node)
		collect = func(n *html.Node) {
			if n.Type == html.ElementNode && (n.Data == "ul" || n.Data == "ol") {
				nested = append(nested, n)
				return
			}
			if n.Type == html.TextNode {
				itemText.WriteString(n.Data)
			}
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				collect(c)
			}
		}
		for c := li.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}

		if t := strings.Join(strings.Fields(itemText.String()), " "); t != "" {
			w.elements = append(w.elements, doctree.NewListItem(depth, group, t))
		}
		for _, sub := range nested {
			w.walkList(sub, depth+1, group)
		}
	}
}

// htmlTableElement extracts a table: a row of th cells (or the first
// row) is the header, remaining rows are data.
func htmlTableElement(table *html.Node) doctree.Element {
	var header []string
	var dataRows [][]string

	var rows []*html.Node
	var findRows func(*html.Node)
	findRows = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "tr" {
			rows = append(rows, n)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			findRows(c)
		}
	}
	findRows(table)

	for i, tr := range rows {
		var cells []string
		isHeader := false
		for c := tr.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			switch c.Data {
			case "th":
				isHeader = true
				cells = append(cells, textContent(c))
			case "td":
				cells = append(cells, textContent(c))
			}
		}
		if (isHeader || i == 0) && header == nil {
			header = cells
			continue
		}
		if rowHasContent(cells) {
			dataRows = append(dataRows, cells)
		}
	}

	return doctree.NewTable(header, dataRows)
}

func headingLevel(tag string) int {
	switch tag {
	case "h1":
		return 1
	case "h2":
		return 2
	case "h3":
		return 3
	case "h4":
		return 4
	case "h5":
		return 5
	case "h6":
		return 6
	}
	return 0
}

func textContent(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.Join(strings.Fields(buf.String()), " ")
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}
