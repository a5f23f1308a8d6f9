package parser

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/tmalloy/docchunk/internal/doctree"
)

// CSVParser handles CSV files. The whole file becomes one table element
// with the first record as header; the chunk assembler takes care of
// splitting large tables by rows.
type CSVParser struct{}

func (p *CSVParser) Parse(r io.Reader, filename string) ([]doctree.Element, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	header := records[0]
	var dataRows [][]string
	for _, rec := range records[1:] {
		if rowHasContent(rec) {
			dataRows = append(dataRows, rec)
		}
	}

	return []doctree.Element{doctree.NewTable(header, dataRows)}, nil
}

func rowHasContent(row []string) bool {
	for _, cell := range row {
		if cell != "" {
			return true
		}
	}
	return false
}
