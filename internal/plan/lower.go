package plan

import (
	"fmt"

	"csvql/internal/physical"
	"csvql/internal/sql"
)

// Lower turns a validated logical plan into the executable physical
// operator tree, compiling every expression against its input schema so
// column references become positions. Lowering is rule-based, total and
// deterministic: each logical node maps to exactly one physical operator.
func Lower(lp LogicalPlan, rel physical.Relation) (physical.Operator, error) {
	switch n := lp.(type) {
	case *Scan:
		return physical.NewScan(rel), nil

	case *Filter:
		child, err := Lower(n.Input, rel)
		if err != nil {
			return nil, err
		}
		predicate, err := physical.Compile(n.Predicate, child.Schema())
		if err != nil {
			return nil, err
		}
		return physical.NewFilter(child, predicate, "Filter"), nil

	case *Having:
		child, err := Lower(n.Input, rel)
		if err != nil {
			return nil, err
		}
		predicate, err := physical.Compile(n.Predicate, child.Schema())
		if err != nil {
			return nil, err
		}
		return physical.NewFilter(child, predicate, "Having"), nil

	case *Aggregate:
		child, err := Lower(n.Input, rel)
		if err != nil {
			return nil, err
		}
		in := child.Schema()

		groupBy := make([]physical.Expression, len(n.GroupBy))
		for i, e := range n.GroupBy {
			if groupBy[i], err = physical.Compile(e, in); err != nil {
				return nil, err
			}
		}

		aggregates := make([]*physical.AggregateExpr, len(n.Aggregates))
		for i, agg := range n.Aggregates {
			var arg physical.Expression
			if agg.Arg != nil {
				if arg, err = physical.Compile(agg.Arg, in); err != nil {
					return nil, err
				}
			}
			aggregates[i] = &physical.AggregateExpr{
				Func:     agg.Func,
				Arg:      arg,
				Distinct: agg.Distinct,
				Name:     agg.String(),
			}
		}
		return physical.NewHashAggregate(child, groupBy, aggregates, n.Schema()), nil

	case *Projection:
		child, err := Lower(n.Input, rel)
		if err != nil {
			return nil, err
		}
		exprs := make([]physical.Expression, len(n.Exprs))
		for i, e := range n.Exprs {
			if exprs[i], err = physical.Compile(e, child.Schema()); err != nil {
				return nil, err
			}
		}
		return physical.NewProject(child, exprs, n.Schema()), nil

	case *Sort:
		child, err := Lower(n.Input, rel)
		if err != nil {
			return nil, err
		}
		keys := make([]physical.SortKey, len(n.Keys))
		for i, k := range n.Keys {
			expr, err := physical.Compile(k.Expr, child.Schema())
			if err != nil {
				return nil, err
			}
			keys[i] = physical.SortKey{Expr: expr, Desc: k.Desc}
		}
		return physical.NewSort(child, keys), nil

	case *Limit:
		child, err := Lower(n.Input, rel)
		if err != nil {
			return nil, err
		}
		return physical.NewLimit(child, n.Count), nil

	default:
		return nil, fmt.Errorf("unsupported logical plan node %T", lp)
	}
}

// BuildAndLower is the common path from a parsed statement to a runnable
// operator tree over the relation.
func BuildAndLower(stmt *sql.SelectStatement, rel physical.Relation) (physical.Operator, error) {
	lp, err := Build(stmt, rel.Schema(), rel.Name())
	if err != nil {
		return nil, err
	}
	return Lower(lp, rel)
}
