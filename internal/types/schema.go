package types

import (
	"fmt"
	"strings"
)

// Column is one (name, declared type) pair of a schema.
type Column struct {
	Name string
	Type DataType
}

// Schema is an ordered sequence of columns describing the shape of the rows
// a plan node yields. Every plan node, logical or physical, owns a schema
// that is fully determined before execution begins.
type Schema struct {
	cols  []Column
	index map[string]int
}

// NewSchema builds a schema from an ordered column list. When two columns
// share a name, lookups by name resolve to the first occurrence.
func NewSchema(cols []Column) Schema {
	index := make(map[string]int, len(cols))
	for i, c := range cols {
		if _, ok := index[c.Name]; !ok {
			index[c.Name] = i
		}
	}
	return Schema{cols: cols, index: index}
}

// Len returns the number of columns.
func (s Schema) Len() int { return len(s.cols) }

// Column returns the column at position i.
func (s Schema) Column(i int) Column { return s.cols[i] }

// Columns returns the ordered column list. Callers must not mutate it.
func (s Schema) Columns() []Column { return s.cols }

// Index resolves a column name to its position.
func (s Schema) Index(name string) (int, bool) {
	i, ok := s.index[name]
	return i, ok
}

// Names returns the ordered column names, e.g. for a CSV header line.
func (s Schema) Names() []string {
	names := make([]string, len(s.cols))
	for i, c := range s.cols {
		names[i] = c.Name
	}
	return names
}

// String renders the schema as "name type, name type, ...".
func (s Schema) String() string {
	parts := make([]string, len(s.cols))
	for i, c := range s.cols {
		parts[i] = fmt.Sprintf("%s %s", c.Name, c.Type)
	}
	return strings.Join(parts, ", ")
}
