package output

import (
	"io"

	"github.com/olekukonko/tablewriter"

	"csvql/internal/types"
)

// TableFormatter renders rows as a bordered text table. Null cells render
// as NULL so they are distinguishable from empty text.
type TableFormatter struct {
	writer io.Writer
}

// NewTableFormatter creates a table formatter writing to w.
func NewTableFormatter(w io.Writer) *TableFormatter {
	return &TableFormatter{writer: w}
}

// Format drains rows into the table and renders it once at the end.
// tablewriter needs the full set of rows to size its columns, so table
// output is inherently materializing.
func (t *TableFormatter) Format(schema types.Schema, rows RowIterator) error {
	table := tablewriter.NewWriter(t.writer)
	table.SetHeader(schema.Names())
	table.SetAutoFormatHeaders(false)

	for {
		row, err := rows.Next()
		if err != nil {
			return err
		}
		if row == nil {
			break
		}
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = v.String()
		}
		table.Append(cells)
	}

	table.Render()
	return nil
}
