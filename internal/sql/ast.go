package sql

import (
	"fmt"
	"strings"

	"csvql/internal/types"
)

// Statement is a parsed SQL statement.
type Statement interface {
	stmt()
}

// SelectStatement is a single-table SELECT query.
type SelectStatement struct {
	Items   []SelectItem
	From    string
	Where   Expr
	GroupBy []Expr
	Having  Expr
	OrderBy []OrderItem
	Limit   *int64
}

// ExplainStatement renders the physical plan of a query without running it.
type ExplainStatement struct {
	Body *SelectStatement
}

// CopyStatement writes a query's result to a CSV file.
type CopyStatement struct {
	Body *SelectStatement
	Path string
}

func (*SelectStatement) stmt()  {}
func (*ExplainStatement) stmt() {}
func (*CopyStatement) stmt()    {}

// SelectItem is one entry of the select list. Star stands for "*".
type SelectItem struct {
	Expr  Expr
	Alias string
	Star  bool
}

// OrderItem is one ORDER BY key.
type OrderItem struct {
	Expr Expr
	Desc bool
}

// Expr is a scalar expression tree. Column names are unresolved strings
// until the planner binds them.
type Expr interface {
	fmt.Stringer
	expr()
}

// ColumnExpr references a column by name.
type ColumnExpr struct {
	Name string
}

// LiteralExpr holds a literal value.
type LiteralExpr struct {
	Value types.Value
}

// UnaryExpr applies a unary operator.
type UnaryExpr struct {
	Op      UnaryOp
	Operand Expr
}

// BinaryExpr applies a binary operator.
type BinaryExpr struct {
	Op    BinaryOp
	Left  Expr
	Right Expr
}

// AggregateExpr is an aggregate function call. A nil Arg means COUNT(*).
type AggregateExpr struct {
	Func     AggregateFunc
	Arg      Expr
	Distinct bool
}

func (*ColumnExpr) expr()    {}
func (*LiteralExpr) expr()   {}
func (*UnaryExpr) expr()     {}
func (*BinaryExpr) expr()    {}
func (*AggregateExpr) expr() {}

// UnaryOp is a unary operator.
type UnaryOp int

const (
	OpNeg UnaryOp = iota // -expr
	OpNot                // NOT expr
)

func (op UnaryOp) String() string {
	if op == OpNot {
		return "NOT"
	}
	return "-"
}

// BinaryOp is a binary operator.
type BinaryOp int

const (
	OpAdd BinaryOp = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpEq
	OpNeq
	OpLt
	OpLte
	OpGt
	OpGte
	OpAnd
	OpOr
)

func (op BinaryOp) String() string {
	switch op {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	case OpMod:
		return "%"
	case OpEq:
		return "="
	case OpNeq:
		return "!="
	case OpLt:
		return "<"
	case OpLte:
		return "<="
	case OpGt:
		return ">"
	case OpGte:
		return ">="
	case OpAnd:
		return "AND"
	case OpOr:
		return "OR"
	default:
		return fmt.Sprintf("BinaryOp(%d)", int(op))
	}
}

// IsComparison reports whether the operator yields a Boolean from two
// comparable operands.
func (op BinaryOp) IsComparison() bool {
	switch op {
	case OpEq, OpNeq, OpLt, OpLte, OpGt, OpGte:
		return true
	}
	return false
}

// IsLogic reports whether the operator is AND or OR.
func (op BinaryOp) IsLogic() bool {
	return op == OpAnd || op == OpOr
}

// AggregateFunc identifies an aggregate function.
type AggregateFunc int

const (
	AggCount AggregateFunc = iota
	AggSum
	AggAvg
	AggMin
	AggMax
)

func (f AggregateFunc) String() string {
	switch f {
	case AggCount:
		return "COUNT"
	case AggSum:
		return "SUM"
	case AggAvg:
		return "AVG"
	case AggMin:
		return "MIN"
	case AggMax:
		return "MAX"
	default:
		return fmt.Sprintf("AggregateFunc(%d)", int(f))
	}
}

// String renders the expression in a canonical form. The rendering doubles
// as the generated column name for unaliased select items and as the
// matching key when HAVING and ORDER BY refer back to computed columns, so
// it must be deterministic for structurally equal expressions.
func (e *ColumnExpr) String() string { return e.Name }

func (e *LiteralExpr) String() string {
	if e.Value.Kind() == types.KindText {
		return "'" + e.Value.Text() + "'"
	}
	return e.Value.String()
}

func (e *UnaryExpr) String() string {
	if e.Op == OpNot {
		return "NOT " + e.Operand.String()
	}
	return "-" + e.Operand.String()
}

func (e *BinaryExpr) String() string {
	return fmt.Sprintf("%s %s %s", e.Left, e.Op, e.Right)
}

func (e *AggregateExpr) String() string {
	arg := "*"
	if e.Arg != nil {
		arg = e.Arg.String()
	}
	if e.Distinct {
		return fmt.Sprintf("%s(DISTINCT %s)", e.Func, arg)
	}
	return fmt.Sprintf("%s(%s)", e.Func, arg)
}

// Walk calls fn for every node of the expression tree in prefix order.
func Walk(e Expr, fn func(Expr)) {
	if e == nil {
		return
	}
	fn(e)
	switch n := e.(type) {
	case *UnaryExpr:
		Walk(n.Operand, fn)
	case *BinaryExpr:
		Walk(n.Left, fn)
		Walk(n.Right, fn)
	case *AggregateExpr:
		Walk(n.Arg, fn)
	}
}

// ContainsAggregate reports whether the expression contains an aggregate
// call anywhere in its tree.
func ContainsAggregate(e Expr) bool {
	found := false
	Walk(e, func(n Expr) {
		if _, ok := n.(*AggregateExpr); ok {
			found = true
		}
	})
	return found
}

// ParseError reports malformed SQL text.
type ParseError struct {
	Msg string
}

func (e *ParseError) Error() string {
	return "parse error: " + e.Msg
}

func parseErrf(format string, args ...any) error {
	return &ParseError{Msg: fmt.Sprintf(format, args...)}
}

func describeToken(t Token) string {
	if t.Type == TokenEOF {
		return "end of input"
	}
	return fmt.Sprintf("%q", strings.TrimSpace(t.Value))
}
