package reader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"csvql/internal/physical"
	"csvql/internal/types"
)

// CSVRelation is a CSV file with a header row. The header gives the
// column names; column types are inferred from the earliest non-empty
// cell of each column, defaulting to Text when a column is empty all the
// way down.
type CSVRelation struct {
	path   string
	name   string
	schema types.Schema
}

// OpenCSV resolves the schema of the CSV file at path. The file is read
// once here for inference and re-read by every query run.
func OpenCSV(path string) (*CSVRelation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	schema, err := inferSchema(csv.NewReader(f))
	if err != nil {
		return nil, err
	}
	return &CSVRelation{path: path, name: tableName(path), schema: schema}, nil
}

func (r *CSVRelation) Name() string         { return r.name }
func (r *CSVRelation) Schema() types.Schema { return r.schema }

// Open starts a fresh row stream, skipping the header row.
func (r *CSVRelation) Open() (physical.RowSource, error) {
	f, err := os.Open(r.path)
	if err != nil {
		return nil, err
	}
	cr := csv.NewReader(f)
	if _, err := cr.Read(); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	return &csvSource{file: f, reader: cr, schema: r.schema, line: 1}, nil
}

// inferSchema reads the header and then data records until every column
// has produced a non-empty sample cell, or the file ends.
func inferSchema(cr *csv.Reader) (types.Schema, error) {
	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return types.Schema{}, errors.New("missing header row")
		}
		return types.Schema{}, fmt.Errorf("failed to read header: %w", err)
	}

	seen := make(map[string]bool, len(header))
	for _, name := range header {
		if name == "" {
			return types.Schema{}, errors.New("empty column name in header")
		}
		if seen[name] {
			return types.Schema{}, fmt.Errorf("duplicate column %q in header", name)
		}
		seen[name] = true
	}

	cols := make([]types.Column, len(header))
	for i, name := range header {
		cols[i] = types.Column{Name: name, Type: types.Text}
	}

	typed := make([]bool, len(header))
	remaining := len(header)
	for remaining > 0 {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return types.Schema{}, fmt.Errorf("failed to read record: %w", err)
		}
		for i, cell := range record {
			if typed[i] || cell == "" {
				continue
			}
			cols[i].Type = types.Infer(cell)
			typed[i] = true
			remaining--
		}
	}
	return types.NewSchema(cols), nil
}

// csvSource streams one typed row per data record.
type csvSource struct {
	file   *os.File
	reader *csv.Reader
	schema types.Schema
	line   int
	done   bool
}

func (s *csvSource) Next() (types.Row, error) {
	if s.done {
		return nil, nil
	}

	record, err := s.reader.Read()
	if errors.Is(err, io.EOF) {
		s.done = true
		_ = s.file.Close()
		return nil, nil
	}
	if err != nil {
		s.done = true
		_ = s.file.Close()
		return nil, fmt.Errorf("failed to read record: %w", err)
	}
	s.line++

	row := make(types.Row, len(record))
	for i, cell := range record {
		v, err := types.Parse(cell, s.schema.Column(i).Type)
		if err != nil {
			s.done = true
			_ = s.file.Close()
			return nil, fmt.Errorf("line %d, column %q: %w", s.line, s.schema.Column(i).Name, err)
		}
		row[i] = v
	}
	return row, nil
}
