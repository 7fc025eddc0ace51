package types

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Value is the tagged runtime value used throughout the engine. The zero
// Value is Null.
type Value struct {
	kind Kind
	i    int64
	f    float64
	s    string
	b    bool
}

// Null is the SQL NULL value.
var Null = Value{kind: KindNull}

// NewInt returns an Integer value.
func NewInt(v int64) Value { return Value{kind: KindInt, i: v} }

// NewFloat returns a Float value.
func NewFloat(v float64) Value { return Value{kind: KindFloat, f: v} }

// NewText returns a Text value.
func NewText(v string) Value { return Value{kind: KindText, s: v} }

// NewBool returns a Boolean value.
func NewBool(v bool) Value { return Value{kind: KindBool, b: v} }

// Kind returns the runtime tag of the value.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether the value is Null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Int returns the Integer payload. Valid only when Kind() == KindInt.
func (v Value) Int() int64 { return v.i }

// Float returns the Float payload. Valid only when Kind() == KindFloat.
func (v Value) Float() float64 { return v.f }

// Text returns the Text payload. Valid only when Kind() == KindText.
func (v Value) Text() string { return v.s }

// Bool returns the Boolean payload. Valid only when Kind() == KindBool.
func (v Value) Bool() bool { return v.b }

func (v Value) isNumeric() bool { return v.kind == KindInt || v.kind == KindFloat }

// asFloat promotes a numeric value to float64.
func (v Value) asFloat() float64 {
	if v.kind == KindInt {
		return float64(v.i)
	}
	return v.f
}

// String renders the value the way it appears in query output. Null renders
// as "NULL"; CSV output replaces it with an empty cell separately.
func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return "NULL"
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindText:
		return v.s
	case KindBool:
		return strconv.FormatBool(v.b)
	default:
		return fmt.Sprintf("Value(%d)", int(v.kind))
	}
}

// Key returns a canonical encoding of the value used for hash-grouping and
// DISTINCT deduplication. Two values produce the same key exactly when they
// are equal by value (no cross-type numeric folding: 1 and 1.0 group apart,
// matching their distinct runtime kinds). The payload is length-prefixed,
// so concatenating keys into a tuple encoding stays unambiguous whatever
// bytes a Text payload contains.
func (v Value) Key() string {
	s := v.String()
	var sb strings.Builder
	sb.WriteByte(byte('0' + v.kind))
	sb.WriteByte(':')
	sb.WriteString(strconv.Itoa(len(s)))
	sb.WriteByte(':')
	sb.WriteString(s)
	return sb.String()
}

// Row is an ordered sequence of values aligned positionally with a schema.
// Rows are immutable once produced by an operator; ownership moves from
// producer to consumer.
type Row []Value

// Compare imposes a total order on values, used by ORDER BY:
//   - Null sorts greatest (last under ASC, first under DESC);
//   - numeric values compare numerically with Integer promoted to Float
//     when the kinds differ;
//   - Text compares lexicographically;
//   - Boolean: false < true.
//
// Operands of incomparable kinds order by kind tag; planned queries never
// produce such a pair because sort keys are typed by the plan schema.
func Compare(a, b Value) int {
	switch {
	case a.kind == KindNull && b.kind == KindNull:
		return 0
	case a.kind == KindNull:
		return 1
	case b.kind == KindNull:
		return -1
	}
	if a.isNumeric() && b.isNumeric() {
		if a.kind == KindInt && b.kind == KindInt {
			return cmpOrdered(a.i, b.i)
		}
		return cmpOrdered(a.asFloat(), b.asFloat())
	}
	if a.kind != b.kind {
		return cmpOrdered(a.kind, b.kind)
	}
	switch a.kind {
	case KindText:
		return strings.Compare(a.s, b.s)
	case KindBool:
		return cmpOrdered(boolToInt(a.b), boolToInt(b.b))
	default:
		return 0
	}
}

func cmpOrdered[T int64 | float64 | int | Kind](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Arith applies an arithmetic operator (one of "+", "-", "*", "/", "%").
// Any Null operand yields Null. Integer op Integer yields Integer; any Float
// operand promotes the result to Float. Division or modulo by zero yields
// Null rather than an error.
func Arith(op string, a, b Value) (Value, error) {
	if a.IsNull() || b.IsNull() {
		return Null, nil
	}
	if !a.isNumeric() || !b.isNumeric() {
		return Null, typeErr(op, a.kind, b.kind)
	}
	if a.kind == KindInt && b.kind == KindInt {
		return intArith(op, a.i, b.i)
	}
	return floatArith(op, a.asFloat(), b.asFloat())
}

func intArith(op string, a, b int64) (Value, error) {
	switch op {
	case "+":
		return NewInt(a + b), nil
	case "-":
		return NewInt(a - b), nil
	case "*":
		return NewInt(a * b), nil
	case "/":
		if b == 0 {
			return Null, nil
		}
		return NewInt(a / b), nil
	case "%":
		if b == 0 {
			return Null, nil
		}
		return NewInt(a % b), nil
	default:
		return Null, fmt.Errorf("unknown arithmetic operator %q", op)
	}
}

func floatArith(op string, a, b float64) (Value, error) {
	switch op {
	case "+":
		return NewFloat(a + b), nil
	case "-":
		return NewFloat(a - b), nil
	case "*":
		return NewFloat(a * b), nil
	case "/":
		if b == 0 {
			return Null, nil
		}
		return NewFloat(a / b), nil
	case "%":
		if b == 0 {
			return Null, nil
		}
		return NewFloat(math.Mod(a, b)), nil
	default:
		return Null, fmt.Errorf("unknown arithmetic operator %q", op)
	}
}

// CompareOp applies a comparison operator (one of "=", "!=", "<", "<=",
// ">", ">="). Any Null operand yields Null. Numeric operands compare with
// promotion; Text with Text and Boolean with Boolean compare directly;
// anything else is a TypeError.
func CompareOp(op string, a, b Value) (Value, error) {
	if a.IsNull() || b.IsNull() {
		return Null, nil
	}
	comparable := (a.isNumeric() && b.isNumeric()) || a.kind == b.kind
	if !comparable {
		return Null, typeErr(op, a.kind, b.kind)
	}
	c := Compare(a, b)
	switch op {
	case "=":
		return NewBool(c == 0), nil
	case "!=":
		return NewBool(c != 0), nil
	case "<":
		return NewBool(c < 0), nil
	case "<=":
		return NewBool(c <= 0), nil
	case ">":
		return NewBool(c > 0), nil
	case ">=":
		return NewBool(c >= 0), nil
	default:
		return Null, fmt.Errorf("unknown comparison operator %q", op)
	}
}

// And applies three-valued AND: false dominates Null.
func And(a, b Value) (Value, error) {
	av, err := truth("AND", a)
	if err != nil {
		return Null, err
	}
	bv, err := truth("AND", b)
	if err != nil {
		return Null, err
	}
	// false AND anything = false, even NULL
	if av == truthFalse || bv == truthFalse {
		return NewBool(false), nil
	}
	if av == truthNull || bv == truthNull {
		return Null, nil
	}
	return NewBool(true), nil
}

// Or applies three-valued OR: true dominates Null.
func Or(a, b Value) (Value, error) {
	av, err := truth("OR", a)
	if err != nil {
		return Null, err
	}
	bv, err := truth("OR", b)
	if err != nil {
		return Null, err
	}
	if av == truthTrue || bv == truthTrue {
		return NewBool(true), nil
	}
	if av == truthNull || bv == truthNull {
		return Null, nil
	}
	return NewBool(false), nil
}

// Not negates a boolean value; Null stays Null.
func Not(a Value) (Value, error) {
	t, err := truth("NOT", a)
	if err != nil {
		return Null, err
	}
	switch t {
	case truthNull:
		return Null, nil
	case truthTrue:
		return NewBool(false), nil
	default:
		return NewBool(true), nil
	}
}

// Neg negates a numeric value; Null stays Null.
func Neg(a Value) (Value, error) {
	switch a.kind {
	case KindNull:
		return Null, nil
	case KindInt:
		return NewInt(-a.i), nil
	case KindFloat:
		return NewFloat(-a.f), nil
	default:
		return Null, typeErr("-", a.kind, KindNull)
	}
}

type truthValue int

const (
	truthNull truthValue = iota
	truthFalse
	truthTrue
)

func truth(op string, v Value) (truthValue, error) {
	switch v.kind {
	case KindNull:
		return truthNull, nil
	case KindBool:
		if v.b {
			return truthTrue, nil
		}
		return truthFalse, nil
	default:
		return truthNull, typeErr(op, v.kind, KindNull)
	}
}

// Parse converts a raw text cell into a value of the declared column type.
// The empty string decodes to Null for every type.
func Parse(raw string, t DataType) (Value, error) {
	if raw == "" {
		return Null, nil
	}
	switch t {
	case Integer:
		i, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return Null, fmt.Errorf("cannot parse %q as %s", raw, t)
		}
		return NewInt(i), nil
	case Float:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return Null, fmt.Errorf("cannot parse %q as %s", raw, t)
		}
		return NewFloat(f), nil
	case Boolean:
		b, err := strconv.ParseBool(strings.ToLower(raw))
		if err != nil {
			return Null, fmt.Errorf("cannot parse %q as %s", raw, t)
		}
		return NewBool(b), nil
	default:
		return NewText(raw), nil
	}
}

// Infer guesses the narrowest data type able to represent a raw text cell,
// used when building a schema from a CSV header plus its first record.
// The empty string carries no information and infers Text.
func Infer(raw string) DataType {
	if raw == "" {
		return Text
	}
	if _, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return Integer
	}
	if _, err := strconv.ParseFloat(raw, 64); err == nil {
		return Float
	}
	if _, err := strconv.ParseBool(strings.ToLower(raw)); err == nil {
		return Boolean
	}
	return Text
}
