package physical

import (
	"fmt"
	"sort"
	"strings"

	"csvql/internal/types"
)

// SortKey is one ORDER BY key: a compiled expression and its direction.
type SortKey struct {
	Expr Expression
	Desc bool
}

// Sort materializes its entire input on the first Next call, sorts it, and
// then streams the buffer. The sort is stable: rows with equal keys keep
// their input order. Key comparison short-circuits on the first differing
// key; Null sorts greatest, so it comes last ascending and first
// descending.
type Sort struct {
	child Operator
	keys  []SortKey

	state  opState
	buffer []types.Row
	pos    int
}

// NewSort creates the sort operator.
func NewSort(child Operator, keys []SortKey) *Sort {
	return &Sort{child: child, keys: keys}
}

func (s *Sort) Schema() types.Schema { return s.child.Schema() }

func (s *Sort) Next() (types.Row, error) {
	switch s.state {
	case stateExhausted:
		return nil, nil
	case stateNotStarted:
		s.state = stateBuffering
		if err := s.build(); err != nil {
			s.state = stateExhausted
			return nil, err
		}
		s.state = stateStreaming
	}

	if s.pos >= len(s.buffer) {
		s.state = stateExhausted
		s.buffer = nil
		return nil, nil
	}
	row := s.buffer[s.pos]
	s.pos++
	return row, nil
}

func (s *Sort) build() error {
	for {
		row, err := s.child.Next()
		if err != nil {
			return err
		}
		if row == nil {
			break
		}
		s.buffer = append(s.buffer, row)
	}

	// Evaluate the key tuple once per row, then sort by it.
	keys := make([][]types.Value, len(s.buffer))
	for i, row := range s.buffer {
		tuple := make([]types.Value, len(s.keys))
		for k, key := range s.keys {
			v, err := key.Expr.Evaluate(row)
			if err != nil {
				return err
			}
			tuple[k] = v
		}
		keys[i] = tuple
	}

	order := make([]int, len(s.buffer))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		for k, key := range s.keys {
			c := types.Compare(keys[order[a]][k], keys[order[b]][k])
			if c == 0 {
				continue
			}
			if key.Desc {
				return c > 0
			}
			return c < 0
		}
		return false
	})

	sorted := make([]types.Row, len(s.buffer))
	for i, idx := range order {
		sorted[i] = s.buffer[idx]
	}
	s.buffer = sorted
	return nil
}

func (s *Sort) Children() []Operator { return []Operator{s.child} }

func (s *Sort) String() string {
	parts := make([]string, len(s.keys))
	for i, k := range s.keys {
		dir := "asc"
		if k.Desc {
			dir = "desc"
		}
		parts[i] = fmt.Sprintf("%s %s", k.Expr, dir)
	}
	return fmt.Sprintf("Sort: %s", strings.Join(parts, ", "))
}
