// Package output renders query results.
//
// Supported formats:
//   - table: human-readable table for interactive use
//   - csv: comma-separated values with header row, also used by COPY TO
//   - jsonl: one JSON object per line
//
// Formatters consume the row stream directly, so a limited query never
// materializes more rows than it prints.
package output

import (
	"csvql/internal/types"
)

// RowIterator is the stream a formatter drains: one row per call, nil at
// end-of-stream. Both physical operators and raw sources satisfy it.
type RowIterator interface {
	Next() (types.Row, error)
}

// Formatter renders a result set to its writer.
type Formatter interface {
	// Format drains rows and writes them under the schema's column names.
	Format(schema types.Schema, rows RowIterator) error
}
