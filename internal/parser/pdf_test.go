package parser

import (
	"testing"

	"github.com/tmalloy/docchunk/internal/doctree"
)

func TestHeadingLevelForRatio(t *testing.T) {
	cases := []struct {
		ratio float64
		want  int
	}{
		{2.5, 1},
		{2.0, 1},
		{1.7, 2},
		{1.5, 3},
		{1.25, 4},
		{1.1, 5},
	}
	for _, tc := range cases {
		if got := headingLevelForRatio(tc.ratio); got != tc.want {
			t.Errorf("ratio %.2f: expected level %d, got %d", tc.ratio, tc.want, got)
		}
	}
}

func TestClassifyPDFLines(t *testing.T) {
	lines := []pdfLine{
		{text: "Big Title", fontSize: 24},
		{text: "First sentence.", fontSize: 12},
		{text: "Second sentence.", fontSize: 12},
		{text: "- a bullet", fontSize: 12},
		{text: "Closing line.", fontSize: 12},
	}

	elements := classifyPDFLines(lines, 12.0)

	want := []struct {
		kind doctree.Kind
		text string
	}{
		{doctree.KindHeading, "Big Title"},
		{doctree.KindParagraph, "First sentence. Second sentence."},
		{doctree.KindListItem, "a bullet"},
		{doctree.KindParagraph, "Closing line."},
	}
	if len(elements) != len(want) {
		t.Fatalf("expected %d elements, got %d: %+v", len(want), len(elements), elements)
	}
	for i, w := range want {
		if elements[i].Kind != w.kind || elements[i].Text != w.text {
			t.Errorf("element %d: expected %s %q, got %s %q", i, w.kind, w.text, elements[i].Kind, elements[i].Text)
		}
	}
	if elements[0].Level != 1 {
		t.Errorf("24pt over a 12pt body must be a level-1 heading, got %d", elements[0].Level)
	}
}

func TestClassifyPDFLines_NoHeadingsAtBodySize(t *testing.T) {
	lines := []pdfLine{
		{text: "plain", fontSize: 12},
		{text: "rows", fontSize: 12.5},
	}
	elements := classifyPDFLines(lines, 12.0)
	if len(elements) != 1 || elements[0].Kind != doctree.KindParagraph {
		t.Errorf("near-body sizes must stay a paragraph, got %+v", elements)
	}
}
