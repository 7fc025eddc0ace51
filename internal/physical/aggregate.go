package physical

import (
	"fmt"
	"strings"

	"csvql/internal/types"
)

// HashAggregate groups its input by the tuple of group-by expression
// results and folds each aggregate's argument into per-group accumulator
// state. The first Next call drains the child in one pass, holding only
// accumulator state per group (never the raw rows); subsequent calls yield
// one output row per group in first-seen order.
//
// With an empty group-by list the whole input is a single group, and the
// operator emits exactly one row even for empty input.
type HashAggregate struct {
	child      Operator
	groupBy    []Expression
	aggregates []*AggregateExpr
	schema     types.Schema

	state  opState
	order  []string
	groups map[string]*aggGroup
	pos    int
}

type aggGroup struct {
	key  types.Row
	accs []accumulator
}

// NewHashAggregate creates the aggregation operator. The schema lists the
// group-by columns first, then one column per aggregate.
func NewHashAggregate(child Operator, groupBy []Expression, aggregates []*AggregateExpr, schema types.Schema) *HashAggregate {
	return &HashAggregate{
		child:      child,
		groupBy:    groupBy,
		aggregates: aggregates,
		schema:     schema,
	}
}

func (h *HashAggregate) Schema() types.Schema { return h.schema }

func (h *HashAggregate) Next() (types.Row, error) {
	switch h.state {
	case stateExhausted:
		return nil, nil
	case stateNotStarted:
		h.state = stateBuffering
		if err := h.build(); err != nil {
			h.state = stateExhausted
			return nil, err
		}
		h.state = stateStreaming
	}

	if h.pos >= len(h.order) {
		h.state = stateExhausted
		h.groups = nil
		h.order = nil
		return nil, nil
	}

	g := h.groups[h.order[h.pos]]
	h.pos++

	out := make(types.Row, 0, len(h.groupBy)+len(h.aggregates))
	out = append(out, g.key...)
	for _, acc := range g.accs {
		out = append(out, acc.result())
	}
	return out, nil
}

// build drains the child, updating accumulators incrementally per row.
func (h *HashAggregate) build() error {
	h.groups = make(map[string]*aggGroup)

	// Single-group aggregation emits a row even when the input is empty.
	if len(h.groupBy) == 0 {
		h.addGroup("", nil)
	}

	for {
		row, err := h.child.Next()
		if err != nil {
			return err
		}
		if row == nil {
			return nil
		}

		keyVals := make(types.Row, len(h.groupBy))
		for i, e := range h.groupBy {
			v, err := e.Evaluate(row)
			if err != nil {
				return err
			}
			keyVals[i] = v
		}
		key := groupKey(keyVals)

		g, ok := h.groups[key]
		if !ok {
			g = h.addGroup(key, keyVals)
		}

		for i, agg := range h.aggregates {
			arg := types.NewBool(true) // COUNT(*) marker, counted per row
			if agg.Arg != nil {
				arg, err = agg.Arg.Evaluate(row)
				if err != nil {
					return err
				}
			}
			if err := g.accs[i].add(arg); err != nil {
				return err
			}
		}
	}
}

func (h *HashAggregate) addGroup(key string, keyVals types.Row) *aggGroup {
	g := &aggGroup{key: keyVals, accs: make([]accumulator, len(h.aggregates))}
	for i, agg := range h.aggregates {
		g.accs[i] = agg.newAccumulator()
	}
	h.groups[key] = g
	h.order = append(h.order, key)
	return g
}

// groupKey encodes a group-by tuple so equal tuples collide and unequal
// ones cannot.
func groupKey(vals types.Row) string {
	var sb strings.Builder
	for i, v := range vals {
		if i > 0 {
			sb.WriteString("\x00|\x00")
		}
		sb.WriteString(v.Key())
	}
	return sb.String()
}

func (h *HashAggregate) Children() []Operator { return []Operator{h.child} }

func (h *HashAggregate) String() string {
	groups := make([]string, len(h.groupBy))
	for i, e := range h.groupBy {
		groups[i] = e.String()
	}
	aggs := make([]string, len(h.aggregates))
	for i, a := range h.aggregates {
		aggs[i] = a.String()
	}
	if len(groups) == 0 {
		return fmt.Sprintf("HashAggregate: %s", strings.Join(aggs, ", "))
	}
	return fmt.Sprintf("HashAggregate: group by %s | %s",
		strings.Join(groups, ", "), strings.Join(aggs, ", "))
}
