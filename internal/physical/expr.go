// Package physical contains the executable form of a query: compiled
// expressions that evaluate against positional rows, accumulators for
// aggregation, and the pull-based operator pipeline.
//
// Every operator exposes Next() returning one row at a time and nil at
// end-of-stream; parents exclusively own their children and are their sole
// callers, so execution is a single-threaded cooperative pull chain.
package physical

import (
	"fmt"

	"csvql/internal/sql"
	"csvql/internal/types"
)

// Expression is a compiled scalar expression. Column references have been
// resolved to positions at plan-build time; evaluation never looks up a
// column by name.
type Expression interface {
	fmt.Stringer
	Evaluate(row types.Row) (types.Value, error)
}

// Column reads the value at a fixed position of the input row.
type Column struct {
	Index int
	Name  string
}

// Literal yields a constant value for every row.
type Literal struct {
	Value types.Value
}

// Unary applies a unary operator to its compiled operand.
type Unary struct {
	Op      sql.UnaryOp
	Operand Expression
}

// Binary applies a binary operator to its compiled operands.
type Binary struct {
	Op    sql.BinaryOp
	Left  Expression
	Right Expression
}

func (e *Column) Evaluate(row types.Row) (types.Value, error) {
	return row[e.Index], nil
}

func (e *Literal) Evaluate(types.Row) (types.Value, error) {
	return e.Value, nil
}

func (e *Unary) Evaluate(row types.Row) (types.Value, error) {
	v, err := e.Operand.Evaluate(row)
	if err != nil {
		return types.Null, err
	}
	if e.Op == sql.OpNot {
		return types.Not(v)
	}
	return types.Neg(v)
}

func (e *Binary) Evaluate(row types.Row) (types.Value, error) {
	left, err := e.Left.Evaluate(row)
	if err != nil {
		return types.Null, err
	}
	right, err := e.Right.Evaluate(row)
	if err != nil {
		return types.Null, err
	}
	switch {
	case e.Op == sql.OpAnd:
		return types.And(left, right)
	case e.Op == sql.OpOr:
		return types.Or(left, right)
	case e.Op.IsComparison():
		return types.CompareOp(e.Op.String(), left, right)
	default:
		return types.Arith(e.Op.String(), left, right)
	}
}

func (e *Column) String() string { return fmt.Sprintf("#%d %s", e.Index, e.Name) }

func (e *Literal) String() string {
	if e.Value.Kind() == types.KindText {
		return "'" + e.Value.Text() + "'"
	}
	return e.Value.String()
}

func (e *Unary) String() string {
	if e.Op == sql.OpNot {
		return "NOT " + e.Operand.String()
	}
	return "-" + e.Operand.String()
}

func (e *Binary) String() string {
	return fmt.Sprintf("%s %s %s", e.Left, e.Op, e.Right)
}

// Compile resolves an expression AST against a schema, turning column names
// into positions. Aggregate calls must have been rewritten away by the
// planner; finding one here is a bug in the caller.
func Compile(e sql.Expr, schema types.Schema) (Expression, error) {
	switch n := e.(type) {
	case *sql.ColumnExpr:
		idx, ok := schema.Index(n.Name)
		if !ok {
			return nil, fmt.Errorf("unknown column %q", n.Name)
		}
		return &Column{Index: idx, Name: n.Name}, nil
	case *sql.LiteralExpr:
		return &Literal{Value: n.Value}, nil
	case *sql.UnaryExpr:
		operand, err := Compile(n.Operand, schema)
		if err != nil {
			return nil, err
		}
		return &Unary{Op: n.Op, Operand: operand}, nil
	case *sql.BinaryExpr:
		left, err := Compile(n.Left, schema)
		if err != nil {
			return nil, err
		}
		right, err := Compile(n.Right, schema)
		if err != nil {
			return nil, err
		}
		return &Binary{Op: n.Op, Left: left, Right: right}, nil
	case *sql.AggregateExpr:
		return nil, fmt.Errorf("aggregate %s cannot be evaluated per row", n)
	default:
		return nil, fmt.Errorf("unsupported expression %T", e)
	}
}
