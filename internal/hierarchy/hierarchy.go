// Package hierarchy reconstructs a nested document tree from the flat,
// ordered element stream emitted by the format parsers.
package hierarchy

import (
	"log/slog"

	"github.com/tmalloy/docchunk/internal/doctree"
)

// Builder turns flat element sequences into trees. It keeps no state
// across calls, so one Builder can serve concurrent documents.
type Builder struct {
	log *slog.Logger
}

func NewBuilder(log *slog.Logger) *Builder {
	if log == nil {
		log = slog.Default()
	}
	return &Builder{log: log}
}

// Build reconstructs the logical nesting of elements in a single
// left-to-right pass. It returns the root nodes; the full tree is
// reachable through Children. Elements of unknown kind are skipped.
//
// The parentStack holds the currently open ancestor chain, outer to
// inner. Every decision is a local comparison against the stack top:
// heading levels close deeper headings and any open list scope, list
// items resolve their container by (indent, group), and plain blocks
// close all list scope.
func (b *Builder) Build(elements []doctree.Element) []*doctree.Node {
	var roots []*doctree.Node
	var parentStack []*doctree.Node

	attach := func(n *doctree.Node) {
		if len(parentStack) == 0 {
			roots = append(roots, n)
			return
		}
		top := parentStack[len(parentStack)-1]
		top.Children = append(top.Children, n)
	}

	for _, el := range elements {
		switch el.Kind {
		case doctree.KindHeading:
			node := &doctree.Node{Element: el}
			// A heading closes every heading at its level or deeper, and
			// always closes open lists: a heading cannot live inside a list.
			for len(parentStack) > 0 {
				top := parentStack[len(parentStack)-1]
				if (top.Kind == doctree.KindHeading && top.Level >= el.Level) ||
					top.Kind == doctree.KindListItem || top.Kind == doctree.KindListContainer {
					parentStack = parentStack[:len(parentStack)-1]
					continue
				}
				break
			}
			attach(node)
			parentStack = append(parentStack, node)

		case doctree.KindListItem:
			parentStack = placeListItem(parentStack, el, &roots)

		case doctree.KindParagraph, doctree.KindTable:
			// Ordinary blocks never belong to a list scope.
			for len(parentStack) > 0 {
				top := parentStack[len(parentStack)-1]
				if top.Kind == doctree.KindListItem || top.Kind == doctree.KindListContainer {
					parentStack = parentStack[:len(parentStack)-1]
					continue
				}
				break
			}
			attach(&doctree.Node{Element: el})

		default:
			b.log.Warn("skipping element of unknown kind", "kind", string(el.Kind))
		}
	}

	return roots
}

// validListParent reports whether top may remain on the stack while
// attaching a list item with the given indent and group:
//   - a container of the same group at the item's indent (append target)
//     or at a strictly shallower indent (a nested container goes under it),
//   - a list item of the same group at a shallower indent (nesting),
//   - or a heading, which terminates the search.
func validListParent(top *doctree.Node, el doctree.Element) bool {
	switch top.Kind {
	case doctree.KindListContainer:
		return top.GroupID == el.GroupID && top.Level <= el.Level
	case doctree.KindListItem:
		return top.GroupID == el.GroupID && el.Level > top.Level
	case doctree.KindHeading:
		return true
	}
	return false
}

// placeListItem resolves the parent for a list item and attaches it,
// synthesizing a list container when no matching one is open.
func placeListItem(parentStack []*doctree.Node, el doctree.Element, roots *[]*doctree.Node) []*doctree.Node {
	node := &doctree.Node{Element: el}

	for len(parentStack) > 0 && !validListParent(parentStack[len(parentStack)-1], el) {
		parentStack = parentStack[:len(parentStack)-1]
	}

	if len(parentStack) > 0 {
		top := parentStack[len(parentStack)-1]
		if top.Kind == doctree.KindListContainer && top.GroupID == el.GroupID && top.Level == el.Level {
			// Exact container match: the item joins it directly. The item is
			// pushed too, since it may parent a nested container later.
			top.Children = append(top.Children, node)
			return append(parentStack, node)
		}
	}

	container := &doctree.Node{Element: doctree.Element{
		Kind:    doctree.KindListContainer,
		Level:   el.Level,
		GroupID: el.GroupID,
	}}
	container.Children = append(container.Children, node)

	if len(parentStack) == 0 {
		*roots = append(*roots, container)
	} else {
		top := parentStack[len(parentStack)-1]
		top.Children = append(top.Children, container)
	}
	parentStack = append(parentStack, container)
	return append(parentStack, node)
}
