package physical

import (
	"fmt"

	"csvql/internal/types"
)

// Filter passes through the rows of its child for which the predicate
// evaluates to true. Rows where the predicate is false or Null are
// discarded, preserving relative order. The same compiled predicate is
// reused for every row.
type Filter struct {
	child     Operator
	predicate Expression
	label     string
	state     opState
}

// NewFilter creates a filter over the child. The label distinguishes WHERE
// from HAVING in EXPLAIN output.
func NewFilter(child Operator, predicate Expression, label string) *Filter {
	return &Filter{child: child, predicate: predicate, label: label}
}

func (f *Filter) Schema() types.Schema { return f.child.Schema() }

func (f *Filter) Next() (types.Row, error) {
	if f.state == stateExhausted {
		return nil, nil
	}
	f.state = stateStreaming

	for {
		row, err := f.child.Next()
		if err != nil {
			f.state = stateExhausted
			return nil, err
		}
		if row == nil {
			f.state = stateExhausted
			return nil, nil
		}
		v, err := f.predicate.Evaluate(row)
		if err != nil {
			f.state = stateExhausted
			return nil, err
		}
		if v.IsNull() {
			continue
		}
		if v.Kind() != types.KindBool {
			f.state = stateExhausted
			return nil, &types.TypeError{Op: f.label, Left: v.Kind(), Right: types.KindNull}
		}
		if v.Bool() {
			return row, nil
		}
	}
}

func (f *Filter) Children() []Operator { return []Operator{f.child} }

func (f *Filter) String() string {
	return fmt.Sprintf("%s: %s", f.label, f.predicate)
}
