package hierarchy

import (
	"testing"

	"github.com/tmalloy/docchunk/internal/doctree"
)

func TestBuild_HeadingsNestByLevel(t *testing.T) {
	elements := []doctree.Element{
		doctree.NewHeading(1, "Chapter"),
		doctree.NewParagraph("intro text"),
		doctree.NewHeading(2, "Section"),
		doctree.NewParagraph("section text"),
	}

	roots := NewBuilder(nil).Build(elements)

	if len(roots) != 1 {
		t.Fatalf("expected 1 root, got %d", len(roots))
	}
	chapter := roots[0]
	if chapter.Text != "Chapter" || len(chapter.Children) != 2 {
		t.Fatalf("expected Chapter with 2 children, got %q with %d", chapter.Text, len(chapter.Children))
	}
	if chapter.Children[0].Kind != doctree.KindParagraph {
		t.Errorf("expected first child paragraph, got %s", chapter.Children[0].Kind)
	}
	section := chapter.Children[1]
	if section.Kind != doctree.KindHeading || section.Text != "Section" {
		t.Fatalf("expected Section heading as second child, got %s %q", section.Kind, section.Text)
	}
	if len(section.Children) != 1 || section.Children[0].Text != "section text" {
		t.Errorf("expected section text under Section, got %+v", section.Children)
	}
}

func TestBuild_SiblingHeadingsStayIsolated(t *testing.T) {
	elements := []doctree.Element{
		doctree.NewHeading(1, "A"),
		doctree.NewParagraph("under a"),
		doctree.NewHeading(1, "B"),
		doctree.NewParagraph("under b"),
	}

	roots := NewBuilder(nil).Build(elements)

	if len(roots) != 2 {
		t.Fatalf("expected 2 roots, got %d", len(roots))
	}
	for i, want := range []string{"A", "B"} {
		if roots[i].Text != want {
			t.Errorf("root %d: expected %q, got %q", i, want, roots[i].Text)
		}
		if len(roots[i].Children) != 1 {
			t.Errorf("root %q: expected 1 child, got %d", want, len(roots[i].Children))
		}
	}
	if roots[1].Children[0].Text != "under b" {
		t.Errorf("B's child: expected %q, got %q", "under b", roots[1].Children[0].Text)
	}
}

func TestBuild_DeeperHeadingClosedByShallower(t *testing.T) {
	elements := []doctree.Element{
		doctree.NewHeading(1, "Top"),
		doctree.NewHeading(3, "Deep"),
		doctree.NewHeading(2, "Mid"),
	}

	roots := NewBuilder(nil).Build(elements)

	if len(roots) != 1 {
		t.Fatalf("expected 1 root, got %d", len(roots))
	}
	top := roots[0]
	if len(top.Children) != 2 {
		t.Fatalf("expected Deep and Mid under Top, got %d children", len(top.Children))
	}
	if top.Children[0].Text != "Deep" || top.Children[1].Text != "Mid" {
		t.Errorf("expected [Deep Mid] under Top, got [%q %q]", top.Children[0].Text, top.Children[1].Text)
	}
}

func TestBuild_ListItemsGroupUnderContainer(t *testing.T) {
	elements := []doctree.Element{
		doctree.NewHeading(1, "Shopping"),
		doctree.NewListItem(0, 7, "apples"),
		doctree.NewListItem(0, 7, "pears"),
	}

	roots := NewBuilder(nil).Build(elements)

	if len(roots) != 1 || len(roots[0].Children) != 1 {
		t.Fatalf("expected one container under the heading, got %+v", roots)
	}
	container := roots[0].Children[0]
	if container.Kind != doctree.KindListContainer {
		t.Fatalf("expected list container, got %s", container.Kind)
	}
	if container.Level != 0 || container.GroupID != 7 {
		t.Errorf("container (level, group): expected (0, 7), got (%d, %d)", container.Level, container.GroupID)
	}
	if len(container.Children) != 2 {
		t.Fatalf("expected 2 items in container, got %d", len(container.Children))
	}
	for _, item := range container.Children {
		if item.Level != container.Level || item.GroupID != container.GroupID {
			t.Errorf("item (level, group) = (%d, %d) differs from container (%d, %d)",
				item.Level, item.GroupID, container.Level, container.GroupID)
		}
	}
}

func TestBuild_NestedListIndentsUnderItem(t *testing.T) {
	elements := []doctree.Element{
		doctree.NewListItem(0, 3, "outer"),
		doctree.NewListItem(1, 3, "inner one"),
		doctree.NewListItem(1, 3, "inner two"),
		doctree.NewListItem(0, 3, "outer again"),
	}

	roots := NewBuilder(nil).Build(elements)

	if len(roots) != 1 {
		t.Fatalf("expected 1 root container, got %d", len(roots))
	}
	outer := roots[0]
	if outer.Kind != doctree.KindListContainer || len(outer.Children) != 2 {
		t.Fatalf("expected container with 2 top items, got %s with %d", outer.Kind, len(outer.Children))
	}
	first := outer.Children[0]
	if first.Text != "outer" || len(first.Children) != 1 {
		t.Fatalf("expected nested container under first item, got %+v", first)
	}
	nested := first.Children[0]
	if nested.Kind != doctree.KindListContainer || nested.Level != 1 {
		t.Fatalf("expected level-1 nested container, got %s level %d", nested.Kind, nested.Level)
	}
	if len(nested.Children) != 2 {
		t.Errorf("expected 2 nested items, got %d", len(nested.Children))
	}
	if outer.Children[1].Text != "outer again" {
		t.Errorf("expected dedent back to outer container, got %q", outer.Children[1].Text)
	}
}

func TestBuild_DifferentGroupsGetDifferentContainers(t *testing.T) {
	elements := []doctree.Element{
		doctree.NewListItem(0, 1, "first list"),
		doctree.NewListItem(0, 2, "second list"),
	}

	roots := NewBuilder(nil).Build(elements)

	if len(roots) != 2 {
		t.Fatalf("expected 2 root containers, got %d", len(roots))
	}
	if roots[0].GroupID != 1 || roots[1].GroupID != 2 {
		t.Errorf("expected groups [1 2], got [%d %d]", roots[0].GroupID, roots[1].GroupID)
	}
}

func TestBuild_FallbackItemsShareSentinelGroup(t *testing.T) {
	// Pattern-detected items all carry group -1, so consecutive runs merge
	// into one container unless a non-list block intervenes.
	elements := []doctree.Element{
		doctree.NewListItem(0, -1, "bullet one"),
		doctree.NewListItem(0, -1, "bullet two"),
		doctree.NewListItem(0, -1, "bullet three"),
	}

	roots := NewBuilder(nil).Build(elements)

	if len(roots) != 1 {
		t.Fatalf("expected 1 merged container, got %d roots", len(roots))
	}
	if got := len(roots[0].Children); got != 3 {
		t.Errorf("expected 3 items in container, got %d", got)
	}
}

func TestBuild_ParagraphClosesListScope(t *testing.T) {
	elements := []doctree.Element{
		doctree.NewHeading(1, "Notes"),
		doctree.NewListItem(0, 5, "point"),
		doctree.NewParagraph("closing remark"),
		doctree.NewListItem(0, 5, "later point"),
	}

	roots := NewBuilder(nil).Build(elements)

	heading := roots[0]
	if len(heading.Children) != 3 {
		t.Fatalf("expected [container paragraph container] under heading, got %d children", len(heading.Children))
	}
	if heading.Children[1].Kind != doctree.KindParagraph {
		t.Errorf("expected paragraph sibling of the list, got %s", heading.Children[1].Kind)
	}
	if heading.Children[2].Kind != doctree.KindListContainer {
		t.Errorf("expected a fresh container after the paragraph, got %s", heading.Children[2].Kind)
	}
	if len(heading.Children[0].Children) != 1 {
		t.Errorf("first container should hold only the first item, got %d", len(heading.Children[0].Children))
	}
}

func TestBuild_HeadingClosesListScope(t *testing.T) {
	elements := []doctree.Element{
		doctree.NewHeading(1, "First"),
		doctree.NewListItem(0, 5, "item"),
		doctree.NewListItem(1, 5, "nested item"),
		doctree.NewHeading(2, "Second"),
	}

	roots := NewBuilder(nil).Build(elements)

	first := roots[0]
	if len(first.Children) != 2 {
		t.Fatalf("expected container and Second under First, got %d children", len(first.Children))
	}
	second := first.Children[1]
	if second.Kind != doctree.KindHeading || second.Text != "Second" {
		t.Errorf("heading must escape the open list and attach under First, got %s %q", second.Kind, second.Text)
	}
}

func TestBuild_TableAttachesUnderHeading(t *testing.T) {
	elements := []doctree.Element{
		doctree.NewHeading(1, "Data"),
		doctree.NewListItem(0, 4, "see below"),
		doctree.NewTable([]string{"Name"}, [][]string{{"x"}}),
	}

	roots := NewBuilder(nil).Build(elements)

	heading := roots[0]
	if len(heading.Children) != 2 {
		t.Fatalf("expected container and table under heading, got %d children", len(heading.Children))
	}
	if heading.Children[1].Kind != doctree.KindTable {
		t.Errorf("table must close list scope and attach under the heading, got %s", heading.Children[1].Kind)
	}
}

func TestBuild_UnknownKindSkipped(t *testing.T) {
	elements := []doctree.Element{
		doctree.NewParagraph("kept"),
		{Kind: doctree.Kind("image"), Text: "dropped"},
		doctree.NewParagraph("also kept"),
	}

	roots := NewBuilder(nil).Build(elements)

	if len(roots) != 2 {
		t.Fatalf("expected unknown kind skipped, got %d roots", len(roots))
	}
	if roots[0].Text != "kept" || roots[1].Text != "also kept" {
		t.Errorf("expected surviving paragraphs, got %q and %q", roots[0].Text, roots[1].Text)
	}
}

func TestBuild_EmptyInput(t *testing.T) {
	if roots := NewBuilder(nil).Build(nil); len(roots) != 0 {
		t.Errorf("expected no roots for empty input, got %d", len(roots))
	}
}

// walkContainers checks the grouping invariant across a whole tree.
func walkContainers(t *testing.T, nodes []*doctree.Node) {
	t.Helper()
	for _, n := range nodes {
		if n.Kind == doctree.KindListContainer {
			for _, child := range n.Children {
				if child.Kind != doctree.KindListItem {
					t.Errorf("container child must be a list item, got %s", child.Kind)
				}
				if child.Level != n.Level || child.GroupID != n.GroupID {
					t.Errorf("container (%d, %d) holds mismatched item (%d, %d)",
						n.Level, n.GroupID, child.Level, child.GroupID)
				}
			}
		}
		walkContainers(t, n.Children)
	}
}

func TestBuild_ListGroupingInvariant(t *testing.T) {
	elements := []doctree.Element{
		doctree.NewHeading(1, "Mixed"),
		doctree.NewListItem(0, 1, "a"),
		doctree.NewListItem(1, 1, "a.1"),
		doctree.NewListItem(2, 1, "a.1.i"),
		doctree.NewListItem(0, 1, "b"),
		doctree.NewParagraph("break"),
		doctree.NewListItem(0, 2, "new list"),
		doctree.NewListItem(0, -1, "fallback"),
		doctree.NewHeading(2, "Sub"),
		doctree.NewListItem(1, 3, "deep start"),
	}

	roots := NewBuilder(nil).Build(elements)
	walkContainers(t, roots)
}
