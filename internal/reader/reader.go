// Package reader provides the file-backed relations queries scan over.
//
// A relation resolves its schema once when opened; every query run then
// opens a fresh row stream over the same file, since operator pipelines
// are forward-only.
package reader

import (
	"fmt"
	"path/filepath"
	"strings"

	"csvql/internal/physical"
)

// Open resolves a file path into a scannable relation. Parquet files are
// recognized by extension; everything else is treated as CSV.
func Open(path string) (physical.Relation, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".parquet":
		rel, err := OpenParquet(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open parquet file: %w", err)
		}
		return rel, nil
	default:
		rel, err := OpenCSV(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open csv file: %w", err)
		}
		return rel, nil
	}
}

// tableName derives the relation name queries refer to in FROM: the file
// base name without its extension.
func tableName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
