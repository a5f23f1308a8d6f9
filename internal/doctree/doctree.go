package doctree

// Kind classifies a block-level element of a parsed document.
type Kind string

const (
	KindHeading   Kind = "heading"
	KindParagraph Kind = "paragraph"
	KindListItem  Kind = "list_item"
	KindTable     Kind = "table"

	// KindListContainer is synthetic: parsers never emit it. The hierarchy
	// builder creates one per run of list items sharing indent and group.
	KindListContainer Kind = "list_container"
)

// Element is one classified unit of source content, in reading order.
// Parsers emit a flat []Element; the hierarchy builder nests them.
type Element struct {
	Kind Kind

	// Level is the 1-based heading level for headings and the 0-based
	// indent level for list items and list containers.
	Level int

	// GroupID ties list items to a numbering definition. -1 means the
	// item was detected by style or text-pattern fallback.
	GroupID int

	Text string

	// Table payload. Header may be empty; DataRows excludes the header.
	Header   []string
	DataRows [][]string
}

// Node is an Element plus its structural children.
type Node struct {
	Element
	Children []*Node
}

// Chunk is a finalized, size-bounded unit of text with metadata.
type Chunk struct {
	Text     string   `json:"text"`
	Metadata Metadata `json:"metadata"`
}

// Metadata describes where a chunk came from and how it was assembled.
type Metadata struct {
	DocumentID   string `json:"document_id"`
	SourceFormat string `json:"source_format"`

	// NodeType is one of: heading, paragraph, list_container, table_rows,
	// table_header_only.
	NodeType string `json:"node_type"`

	// Headings is the active heading path at emission time, index i holding
	// the level i+1 heading text (gaps are empty strings).
	Headings []string `json:"headings"`

	NumTokens       int  `json:"num_tokens"`
	HasOverlap      bool `json:"has_overlap"`
	OverlapElements int  `json:"overlap_elements"`
}

// NewHeading builds a heading element.
func NewHeading(level int, text string) Element {
	return Element{Kind: KindHeading, Level: level, Text: text}
}

// NewParagraph builds a paragraph element.
func NewParagraph(text string) Element {
	return Element{Kind: KindParagraph, Text: text}
}

// NewListItem builds a list item element. groupID -1 marks fallback detection.
func NewListItem(indent, groupID int, text string) Element {
	return Element{Kind: KindListItem, Level: indent, GroupID: groupID, Text: text}
}

// NewTable builds a table element.
func NewTable(header []string, dataRows [][]string) Element {
	return Element{Kind: KindTable, Header: header, DataRows: dataRows}
}
