package reader

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/parquet-go/parquet-go"

	"csvql/internal/physical"
	"csvql/internal/types"
)

// ParquetRelation is a parquet file exposed through the engine's four
// column types. Integer physical types map to Integer, Float and Double
// to Float, Boolean to Boolean, and byte arrays to Text.
type ParquetRelation struct {
	path   string
	name   string
	schema types.Schema
}

// OpenParquet validates the file and resolves its schema.
func OpenParquet(path string) (*ParquetRelation, error) {
	f, pq, err := openParquetFile(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	fields := pq.Schema().Fields()
	cols := make([]types.Column, len(fields))
	for i, field := range fields {
		cols[i] = types.Column{Name: field.Name(), Type: parquetColumnType(field)}
	}
	return &ParquetRelation{path: path, name: tableName(path), schema: types.NewSchema(cols)}, nil
}

func (r *ParquetRelation) Name() string         { return r.name }
func (r *ParquetRelation) Schema() types.Schema { return r.schema }

// Open starts a fresh row stream over the file.
func (r *ParquetRelation) Open() (physical.RowSource, error) {
	f, pq, err := openParquetFile(r.path)
	if err != nil {
		return nil, err
	}
	return &parquetSource{
		file:   f,
		reader: parquet.NewReader(pq),
		schema: r.schema,
	}, nil
}

func openParquetFile(path string) (*os.File, *parquet.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	stat, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, nil, fmt.Errorf("failed to stat file: %w", err)
	}
	pq, err := parquet.OpenFile(f, stat.Size())
	if err != nil {
		_ = f.Close()
		return nil, nil, err
	}
	return f, pq, nil
}

func parquetColumnType(field parquet.Field) types.DataType {
	switch field.Type().Kind() {
	case parquet.Boolean:
		return types.Boolean
	case parquet.Int32, parquet.Int64:
		return types.Integer
	case parquet.Float, parquet.Double:
		return types.Float
	default:
		return types.Text
	}
}

type parquetSource struct {
	file   *os.File
	reader *parquet.Reader
	schema types.Schema
	done   bool
}

func (s *parquetSource) Next() (types.Row, error) {
	if s.done {
		return nil, nil
	}

	record := make(map[string]interface{})
	err := s.reader.Read(&record)
	if err != nil {
		s.done = true
		_ = s.reader.Close()
		_ = s.file.Close()
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read row: %w", err)
	}

	row := make(types.Row, s.schema.Len())
	for i := 0; i < s.schema.Len(); i++ {
		col := s.schema.Column(i)
		v, err := parquetValue(record[col.Name], col.Type)
		if err != nil {
			s.done = true
			_ = s.reader.Close()
			_ = s.file.Close()
			return nil, fmt.Errorf("column %q: %w", col.Name, err)
		}
		row[i] = v
	}
	return row, nil
}

// parquetValue converts one decoded field into the column's engine type.
// Missing or null fields decode to Null.
func parquetValue(raw interface{}, t types.DataType) (types.Value, error) {
	if raw == nil {
		return types.Null, nil
	}
	switch v := raw.(type) {
	case bool:
		return types.NewBool(v), nil
	case int32:
		return types.NewInt(int64(v)), nil
	case int64:
		return types.NewInt(v), nil
	case int:
		return types.NewInt(int64(v)), nil
	case float32:
		return types.NewFloat(float64(v)), nil
	case float64:
		return types.NewFloat(v), nil
	case string:
		return types.NewText(v), nil
	case []byte:
		return types.NewText(string(v)), nil
	default:
		return types.Null, fmt.Errorf("unsupported parquet value %T for %s", raw, t)
	}
}
