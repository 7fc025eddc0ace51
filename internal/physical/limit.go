package physical

import (
	"fmt"

	"csvql/internal/types"
)

// Limit yields at most Count rows from its child, then reports
// end-of-stream without pulling further. A Limit above a Scan therefore
// never reads more of the source than it needs.
type Limit struct {
	child Operator
	count int64
	seen  int64
	state opState
}

// NewLimit creates a limit operator. The planner guarantees count >= 0.
func NewLimit(child Operator, count int64) *Limit {
	return &Limit{child: child, count: count}
}

func (l *Limit) Schema() types.Schema { return l.child.Schema() }

func (l *Limit) Next() (types.Row, error) {
	if l.state == stateExhausted {
		return nil, nil
	}
	l.state = stateStreaming

	if l.seen >= l.count {
		l.state = stateExhausted
		return nil, nil
	}
	row, err := l.child.Next()
	if err != nil {
		l.state = stateExhausted
		return nil, err
	}
	if row == nil {
		l.state = stateExhausted
		return nil, nil
	}
	l.seen++
	return row, nil
}

func (l *Limit) Children() []Operator { return []Operator{l.child} }

func (l *Limit) String() string {
	return fmt.Sprintf("Limit: %d", l.count)
}
