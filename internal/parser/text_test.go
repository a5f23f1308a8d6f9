package parser

import (
	"strings"
	"testing"

	"github.com/tmalloy/docchunk/internal/doctree"
)

func TestTextParser_ParagraphsSplitOnBlankLines(t *testing.T) {
	input := `First paragraph line one.
First paragraph line two.

Second paragraph.
`
	p := &TextParser{}
	elements, err := p.Parse(strings.NewReader(input), "doc.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(elements) != 2 {
		t.Fatalf("expected 2 paragraphs, got %d", len(elements))
	}
	if elements[0].Kind != doctree.KindParagraph {
		t.Errorf("expected paragraph, got %s", elements[0].Kind)
	}
	want := "First paragraph line one.\nFirst paragraph line two."
	if elements[0].Text != want {
		t.Errorf("expected %q, got %q", want, elements[0].Text)
	}
	if elements[1].Text != "Second paragraph." {
		t.Errorf("expected %q, got %q", "Second paragraph.", elements[1].Text)
	}
}

func TestTextParser_BulletLinesBecomeListItems(t *testing.T) {
	input := `Intro paragraph.
- first point
- second point
    - nested point

After the list.
`
	p := &TextParser{}
	elements, err := p.Parse(strings.NewReader(input), "doc.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(elements) != 5 {
		t.Fatalf("expected 5 elements, got %d: %+v", len(elements), elements)
	}

	if elements[0].Kind != doctree.KindParagraph || elements[0].Text != "Intro paragraph." {
		t.Errorf("element 0: expected intro paragraph, got %+v", elements[0])
	}

	items := elements[1:4]
	wantItems := []struct {
		indent int
		text   string
	}{
		{0, "first point"},
		{0, "second point"},
		{1, "nested point"},
	}
	for i, w := range wantItems {
		el := items[i]
		if el.Kind != doctree.KindListItem {
			t.Errorf("element %d: expected list item, got %s", i+1, el.Kind)
			continue
		}
		if el.Level != w.indent || el.Text != w.text {
			t.Errorf("item %d: expected (%d, %q), got (%d, %q)", i, w.indent, w.text, el.Level, el.Text)
		}
		if el.GroupID != -1 {
			t.Errorf("item %d: pattern-detected items must carry group -1, got %d", i, el.GroupID)
		}
	}

	if elements[4].Kind != doctree.KindParagraph || elements[4].Text != "After the list." {
		t.Errorf("element 4: expected trailing paragraph, got %+v", elements[4])
	}
}

func TestTextParser_NumberedLinesBecomeListItems(t *testing.T) {
	input := `1. step one
2. step two
`
	p := &TextParser{}
	elements, err := p.Parse(strings.NewReader(input), "doc.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(elements) != 2 {
		t.Fatalf("expected 2 list items, got %d", len(elements))
	}
	for i, want := range []string{"step one", "step two"} {
		if elements[i].Kind != doctree.KindListItem || elements[i].Text != want {
			t.Errorf("element %d: expected list item %q, got %+v", i, want, elements[i])
		}
	}
}

func TestTextParser_EmptyInput(t *testing.T) {
	p := &TextParser{}
	elements, err := p.Parse(strings.NewReader(""), "doc.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(elements) != 0 {
		t.Errorf("expected no elements, got %d", len(elements))
	}
}

func TestDetectListItem(t *testing.T) {
	cases := []struct {
		line       string
		wantOK     bool
		wantIndent int
		wantText   string
	}{
		{"- bullet", true, 0, "bullet"},
		{"* star bullet", true, 0, "star bullet"},
		{"• unicode bullet", true, 0, "unicode bullet"},
		{"1. numbered", true, 0, "numbered"},
		{"12) parenthesized", true, 0, "parenthesized"},
		{"a. lettered", true, 0, "lettered"},
		{"iv. roman", true, 0, "roman"},
		{"    - indented bullet", true, 1, "indented bullet"},
		{"        - deep bullet", true, 2, "deep bullet"},
		{"plain text line", false, 0, ""},
		{"-no space after marker", false, 0, ""},
		{"100. too many digits", false, 0, ""},
	}
	for _, tc := range cases {
		indent, content, ok := detectListItem(tc.line)
		if ok != tc.wantOK {
			t.Errorf("%q: expected ok=%v, got %v", tc.line, tc.wantOK, ok)
			continue
		}
		if !ok {
			continue
		}
		if indent != tc.wantIndent || content != tc.wantText {
			t.Errorf("%q: expected (%d, %q), got (%d, %q)", tc.line, tc.wantIndent, tc.wantText, indent, content)
		}
	}
}
