package physical

import (
	"fmt"

	"csvql/internal/types"
)

// Scan streams rows from an external relation. The source is opened lazily
// on the first Next call, so an EXPLAIN never touches the file's data.
type Scan struct {
	rel    Relation
	source RowSource
	state  opState
}

// NewScan creates a scan over the relation.
func NewScan(rel Relation) *Scan {
	return &Scan{rel: rel}
}

func (s *Scan) Schema() types.Schema { return s.rel.Schema() }

func (s *Scan) Next() (types.Row, error) {
	switch s.state {
	case stateExhausted:
		return nil, nil
	case stateNotStarted:
		source, err := s.rel.Open()
		if err != nil {
			s.state = stateExhausted
			return nil, fmt.Errorf("open %s: %w", s.rel.Name(), err)
		}
		s.source = source
		s.state = stateStreaming
	}

	row, err := s.source.Next()
	if err != nil {
		s.state = stateExhausted
		return nil, err
	}
	if row == nil {
		s.state = stateExhausted
		s.source = nil
		return nil, nil
	}
	return row, nil
}

func (s *Scan) Children() []Operator { return nil }

func (s *Scan) String() string {
	return fmt.Sprintf("Scan: %s (%s)", s.rel.Name(), s.rel.Schema())
}
