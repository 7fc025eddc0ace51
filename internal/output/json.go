package output

import (
	"encoding/json"
	"io"

	"csvql/internal/types"
)

// JSONFormatter writes rows as JSON Lines, one object per row keyed by
// column name. Null cells become JSON null.
type JSONFormatter struct {
	writer io.Writer
}

// NewJSONFormatter creates a JSON Lines formatter writing to w.
func NewJSONFormatter(w io.Writer) *JSONFormatter {
	return &JSONFormatter{writer: w}
}

// Format streams rows to the writer one object at a time.
func (j *JSONFormatter) Format(schema types.Schema, rows RowIterator) error {
	encoder := json.NewEncoder(j.writer)
	names := schema.Names()

	for {
		row, err := rows.Next()
		if err != nil {
			return err
		}
		if row == nil {
			return nil
		}
		obj := make(map[string]interface{}, len(row))
		for i, v := range row {
			obj[names[i]] = jsonValue(v)
		}
		if err := encoder.Encode(obj); err != nil {
			return err
		}
	}
}

func jsonValue(v types.Value) interface{} {
	switch v.Kind() {
	case types.KindInt:
		return v.Int()
	case types.KindFloat:
		return v.Float()
	case types.KindText:
		return v.Text()
	case types.KindBool:
		return v.Bool()
	default:
		return nil
	}
}
