// Package plan builds and lowers query plans. Build turns a parsed SELECT
// statement into a validated logical plan; Lower turns the logical plan
// into the executable physical operator tree.
//
// The logical operators form a closed set dispatched by type switch. Every
// node owns its child exclusively, so a plan is always a tree.
package plan

import (
	"fmt"

	"csvql/internal/sql"
	"csvql/internal/types"
)

// LogicalPlan is one node of the logical operator tree.
type LogicalPlan interface {
	// Schema describes the rows the node produces, fully determined by its
	// child's schema and its own parameters.
	Schema() types.Schema
}

// Scan reads the source relation.
type Scan struct {
	Table  string
	Source types.Schema
}

// Filter drops pre-aggregation rows failing the WHERE predicate.
type Filter struct {
	Input     LogicalPlan
	Predicate sql.Expr
}

// Aggregate groups rows by the group-by expressions and computes the
// collected aggregate calls. Its output schema lists the group-by columns
// first, then one column per aggregate.
type Aggregate struct {
	Input      LogicalPlan
	GroupBy    []sql.Expr
	Aggregates []*sql.AggregateExpr
	schema     types.Schema
}

// Having drops post-aggregation rows failing its predicate. The predicate
// has been rewritten to reference the Aggregate output columns.
type Having struct {
	Input     LogicalPlan
	Predicate sql.Expr
}

// Projection evaluates one output expression per column. Names align
// positionally with Exprs.
type Projection struct {
	Input  LogicalPlan
	Exprs  []sql.Expr
	Names  []string
	schema types.Schema

	// origins holds each item's pre-rewrite rendering, kept so ORDER BY
	// can refer to a computed column by the expression that produced it.
	origins []string
}

// SortKey is one ORDER BY key over the projection output.
type SortKey struct {
	Expr sql.Expr
	Desc bool
}

// Sort orders the projected rows.
type Sort struct {
	Input LogicalPlan
	Keys  []SortKey
}

// Limit caps the number of output rows.
type Limit struct {
	Input LogicalPlan
	Count int64
}

func (s *Scan) Schema() types.Schema       { return s.Source }
func (f *Filter) Schema() types.Schema     { return f.Input.Schema() }
func (a *Aggregate) Schema() types.Schema  { return a.schema }
func (h *Having) Schema() types.Schema     { return h.Input.Schema() }
func (p *Projection) Schema() types.Schema { return p.schema }
func (s *Sort) Schema() types.Schema       { return s.Input.Schema() }
func (l *Limit) Schema() types.Schema      { return l.Input.Schema() }

// PlanError reports an invalid query detected while planning, before any
// row has been read.
type PlanError struct {
	Msg string
}

func (e *PlanError) Error() string {
	return "plan error: " + e.Msg
}

func planErrf(format string, args ...any) error {
	return &PlanError{Msg: fmt.Sprintf(format, args...)}
}
