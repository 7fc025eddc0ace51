package plan

import (
	"csvql/internal/sql"
	"csvql/internal/types"
)

// Build translates a parsed SELECT statement into a validated logical
// plan over the source schema. Construction follows SQL evaluation order
// regardless of clause order in the text:
//
//	Scan -> Filter (WHERE) -> Aggregate -> Having -> Projection -> Sort -> Limit
//
// so WHERE filters pre-aggregation rows, HAVING filters groups, and ORDER
// BY sees the projected output including its aliases. All column names are
// checked here; execution never fails on an unresolved name.
func Build(stmt *sql.SelectStatement, source types.Schema, table string) (LogicalPlan, error) {
	var cur LogicalPlan = &Scan{Table: table, Source: source}

	if stmt.Where != nil {
		if err := validate(stmt.Where, source, "WHERE"); err != nil {
			return nil, err
		}
		cur = &Filter{Input: cur, Predicate: stmt.Where}
	}

	aggregates := collectAggregates(stmt)
	grouped := len(stmt.GroupBy) > 0 || len(aggregates) > 0

	if stmt.Having != nil && !grouped {
		return nil, planErrf("HAVING requires GROUP BY or an aggregate function")
	}

	var groupNames map[string]bool
	if grouped {
		agg, names, err := buildAggregate(cur, stmt.GroupBy, aggregates)
		if err != nil {
			return nil, err
		}
		cur = agg
		groupNames = names

		if stmt.Having != nil {
			predicate, err := rewritePostAggregate(stmt.Having, cur.Schema(), groupNames, "HAVING")
			if err != nil {
				return nil, err
			}
			cur = &Having{Input: cur, Predicate: predicate}
		}
	}

	projection, err := buildProjection(cur, stmt.Items, grouped, groupNames)
	if err != nil {
		return nil, err
	}
	cur = projection

	if len(stmt.OrderBy) > 0 {
		keys, err := resolveOrderBy(stmt.OrderBy, projection)
		if err != nil {
			return nil, err
		}
		cur = &Sort{Input: cur, Keys: keys}
	}

	if stmt.Limit != nil {
		if *stmt.Limit < 0 {
			return nil, planErrf("LIMIT must not be negative, got %d", *stmt.Limit)
		}
		cur = &Limit{Input: cur, Count: *stmt.Limit}
	}

	return cur, nil
}

// validate checks that every column the expression references exists in
// the schema and that no aggregate call appears in a per-row clause.
func validate(e sql.Expr, schema types.Schema, clause string) error {
	var err error
	sql.Walk(e, func(n sql.Expr) {
		if err != nil {
			return
		}
		switch node := n.(type) {
		case *sql.ColumnExpr:
			if _, ok := schema.Index(node.Name); !ok {
				err = planErrf("unknown column %q in %s", node.Name, clause)
			}
		case *sql.AggregateExpr:
			err = planErrf("aggregate function %s is not allowed in %s", node, clause)
		}
	})
	return err
}

// collectAggregates gathers every aggregate call reachable from the select
// list and HAVING, deduplicated by canonical rendering so COUNT(*) in
// HAVING and in the select list share one accumulator column. ORDER BY is
// excluded: sort keys resolve against the projected output, so an
// aggregate there must already be a select item.
func collectAggregates(stmt *sql.SelectStatement) []*sql.AggregateExpr {
	var out []*sql.AggregateExpr
	seen := make(map[string]bool)

	add := func(e sql.Expr) {
		sql.Walk(e, func(n sql.Expr) {
			if agg, ok := n.(*sql.AggregateExpr); ok && !seen[agg.String()] {
				seen[agg.String()] = true
				out = append(out, agg)
			}
		})
	}

	for _, item := range stmt.Items {
		add(item.Expr)
	}
	add(stmt.Having)
	return out
}

// buildAggregate constructs the Aggregate node and returns the set of
// output names belonging to group-by expressions, which post-aggregate
// clauses may reference directly.
func buildAggregate(input LogicalPlan, groupBy []sql.Expr, aggregates []*sql.AggregateExpr) (*Aggregate, map[string]bool, error) {
	in := input.Schema()
	groupNames := make(map[string]bool, len(groupBy))
	cols := make([]types.Column, 0, len(groupBy)+len(aggregates))

	for _, e := range groupBy {
		if err := validate(e, in, "GROUP BY"); err != nil {
			return nil, nil, err
		}
		name := e.String()
		groupNames[name] = true
		cols = append(cols, types.Column{Name: name, Type: inferType(e, in)})
	}

	for _, agg := range aggregates {
		if agg.Arg != nil {
			if err := validate(agg.Arg, in, agg.Func.String()); err != nil {
				return nil, nil, err
			}
		}
		cols = append(cols, types.Column{Name: agg.String(), Type: aggregateType(agg, in)})
	}

	return &Aggregate{
		Input:      input,
		GroupBy:    groupBy,
		Aggregates: aggregates,
		schema:     types.NewSchema(cols),
	}, groupNames, nil
}

// rewritePostAggregate rebuilds an expression so it evaluates against the
// Aggregate output schema: grouping expressions and aggregate calls become
// references to their output columns, and anything else must decompose
// into those.
func rewritePostAggregate(e sql.Expr, aggSchema types.Schema, groupNames map[string]bool, clause string) (sql.Expr, error) {
	// A grouping expression of any shape has its own output column, so
	// GROUP BY age + 1 makes age + 1 referencable in SELECT and HAVING.
	if groupNames[e.String()] {
		return &sql.ColumnExpr{Name: e.String()}, nil
	}
	switch n := e.(type) {
	case *sql.AggregateExpr:
		return &sql.ColumnExpr{Name: n.String()}, nil
	case *sql.ColumnExpr:
		return nil, planErrf("column %q in %s must appear in GROUP BY or be used in an aggregate function", n.Name, clause)
	case *sql.LiteralExpr:
		return n, nil
	case *sql.UnaryExpr:
		operand, err := rewritePostAggregate(n.Operand, aggSchema, groupNames, clause)
		if err != nil {
			return nil, err
		}
		return &sql.UnaryExpr{Op: n.Op, Operand: operand}, nil
	case *sql.BinaryExpr:
		left, err := rewritePostAggregate(n.Left, aggSchema, groupNames, clause)
		if err != nil {
			return nil, err
		}
		right, err := rewritePostAggregate(n.Right, aggSchema, groupNames, clause)
		if err != nil {
			return nil, err
		}
		return &sql.BinaryExpr{Op: n.Op, Left: left, Right: right}, nil
	default:
		return nil, planErrf("unsupported expression in %s", clause)
	}
}

// buildProjection constructs the Projection node from the select list.
// Star items expand to every column of the input; in a grouped query that
// is the aggregate output (group columns plus aggregates).
func buildProjection(input LogicalPlan, items []sql.SelectItem, grouped bool, groupNames map[string]bool) (*Projection, error) {
	in := input.Schema()
	var exprs []sql.Expr
	var names []string
	var origins []string // pre-rewrite renderings, for ORDER BY resolution
	var cols []types.Column

	for _, item := range items {
		if item.Star {
			for _, c := range in.Columns() {
				exprs = append(exprs, &sql.ColumnExpr{Name: c.Name})
				names = append(names, c.Name)
				origins = append(origins, c.Name)
				cols = append(cols, c)
			}
			continue
		}

		expr := item.Expr
		origin := expr.String()
		if grouped {
			rewritten, err := rewritePostAggregate(expr, in, groupNames, "SELECT")
			if err != nil {
				return nil, err
			}
			expr = rewritten
		} else if err := validate(expr, in, "SELECT"); err != nil {
			return nil, err
		}

		name := item.Alias
		if name == "" {
			name = origin
		}
		exprs = append(exprs, expr)
		names = append(names, name)
		origins = append(origins, origin)
		cols = append(cols, types.Column{Name: name, Type: inferType(expr, in)})
	}

	return &Projection{
		Input:   input,
		Exprs:   exprs,
		Names:   names,
		schema:  types.NewSchema(cols),
		origins: origins,
	}, nil
}

// resolveOrderBy binds ORDER BY keys against the projection output. A key
// may name an output column (by alias, by the expression it was computed
// from, or by plain column name) or be any expression over output columns.
func resolveOrderBy(items []sql.OrderItem, projection *Projection) ([]SortKey, error) {
	out := projection.Schema()

	// Both the alias and the original rendering of each select item
	// resolve to its output column, so ORDER BY COUNT(*) works whether or
	// not the count was aliased.
	byOrigin := make(map[string]string, len(projection.origins))
	for i, origin := range projection.origins {
		if _, dup := byOrigin[origin]; !dup {
			byOrigin[origin] = projection.Names[i]
		}
	}

	keys := make([]SortKey, 0, len(items))
	for _, item := range items {
		rendered := item.Expr.String()

		var expr sql.Expr
		switch {
		case hasColumn(out, rendered):
			expr = &sql.ColumnExpr{Name: rendered}
		case byOrigin[rendered] != "":
			expr = &sql.ColumnExpr{Name: byOrigin[rendered]}
		default:
			if err := validate(item.Expr, out, "ORDER BY"); err != nil {
				return nil, planErrf("ORDER BY expression %q must appear in the select list", rendered)
			}
			expr = item.Expr
		}
		keys = append(keys, SortKey{Expr: expr, Desc: item.Desc})
	}
	return keys, nil
}

func hasColumn(s types.Schema, name string) bool {
	_, ok := s.Index(name)
	return ok
}

// inferType computes the static output type of an expression against a
// schema. Type conflicts that promotion cannot fix are runtime errors, so
// inference never fails; it only has to be deterministic.
func inferType(e sql.Expr, schema types.Schema) types.DataType {
	switch n := e.(type) {
	case *sql.ColumnExpr:
		if i, ok := schema.Index(n.Name); ok {
			return schema.Column(i).Type
		}
		return types.Text
	case *sql.LiteralExpr:
		switch n.Value.Kind() {
		case types.KindInt:
			return types.Integer
		case types.KindFloat:
			return types.Float
		case types.KindBool:
			return types.Boolean
		default:
			return types.Text
		}
	case *sql.UnaryExpr:
		if n.Op == sql.OpNot {
			return types.Boolean
		}
		return inferType(n.Operand, schema)
	case *sql.BinaryExpr:
		if n.Op.IsComparison() || n.Op.IsLogic() {
			return types.Boolean
		}
		if inferType(n.Left, schema) == types.Float || inferType(n.Right, schema) == types.Float {
			return types.Float
		}
		return types.Integer
	case *sql.AggregateExpr:
		return aggregateType(n, schema)
	default:
		return types.Text
	}
}

func aggregateType(agg *sql.AggregateExpr, schema types.Schema) types.DataType {
	switch agg.Func {
	case sql.AggCount:
		return types.Integer
	case sql.AggAvg:
		return types.Float
	default:
		return inferType(agg.Arg, schema)
	}
}
