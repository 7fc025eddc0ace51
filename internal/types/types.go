// Package types defines the data model shared by every layer of the engine:
// column data types, the tagged runtime Value, schemas, and rows.
//
// A Value is one of Integer, Float, Text, Boolean, or Null. Null is a valid
// value for a column of any declared type. All SQL semantics that depend on
// values (numeric promotion, three-valued logic, ordering) live here so that
// the expression and operator layers stay mechanical.
package types

import "fmt"

// DataType is the declared type of a column.
type DataType int

const (
	Integer DataType = iota
	Float
	Text
	Boolean
)

// String returns the SQL-ish name of the type.
func (d DataType) String() string {
	switch d {
	case Integer:
		return "INTEGER"
	case Float:
		return "FLOAT"
	case Text:
		return "TEXT"
	case Boolean:
		return "BOOLEAN"
	default:
		return fmt.Sprintf("DataType(%d)", int(d))
	}
}

// Kind tags the runtime representation of a Value. Unlike DataType it
// includes Null, which carries no payload and belongs to no column type.
type Kind int

const (
	KindNull Kind = iota
	KindInt
	KindFloat
	KindText
	KindBool
)

// String returns the name of the kind, matching DataType names where the
// kinds overlap.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "NULL"
	case KindInt:
		return "INTEGER"
	case KindFloat:
		return "FLOAT"
	case KindText:
		return "TEXT"
	case KindBool:
		return "BOOLEAN"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// TypeError reports an operator applied to operand types it does not
// support and which numeric promotion cannot fix. It is raised during
// evaluation and may surface mid-query on a specific row.
type TypeError struct {
	Op    string
	Left  Kind
	Right Kind
}

func (e *TypeError) Error() string {
	if e.Right == KindNull && e.Left != KindNull {
		return fmt.Sprintf("type mismatch: cannot apply %s to %s", e.Op, e.Left)
	}
	return fmt.Sprintf("type mismatch: cannot apply %s to %s and %s", e.Op, e.Left, e.Right)
}

func typeErr(op string, left, right Kind) error {
	return &TypeError{Op: op, Left: left, Right: right}
}
