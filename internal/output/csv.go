package output

import (
	"encoding/csv"
	"fmt"
	"io"

	"csvql/internal/types"
)

// CSVFormatter writes rows as CSV with a header line. Null cells become
// empty fields, matching how the reader decodes them back, so a COPY TO
// output is itself a valid query source.
type CSVFormatter struct {
	writer io.Writer
}

// NewCSVFormatter creates a CSV formatter writing to w.
func NewCSVFormatter(w io.Writer) *CSVFormatter {
	return &CSVFormatter{writer: w}
}

// Format streams rows to the writer one record at a time.
func (c *CSVFormatter) Format(schema types.Schema, rows RowIterator) error {
	w := csv.NewWriter(c.writer)

	if err := w.Write(schema.Names()); err != nil {
		return err
	}

	for {
		row, err := rows.Next()
		if err != nil {
			return err
		}
		if row == nil {
			break
		}
		record := make([]string, len(row))
		for i, v := range row {
			if v.IsNull() {
				record[i] = ""
				continue
			}
			record[i] = v.String()
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV writer: %w", err)
	}
	return nil
}
