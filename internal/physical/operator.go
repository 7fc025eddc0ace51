package physical

import "csvql/internal/types"

// Operator is one node of the executable plan tree. Next returns the next
// output row, or nil once the operator is exhausted; after that every
// further call keeps returning nil. Operators are forward-only and not
// restartable; re-running a query rebuilds the plan.
type Operator interface {
	// Schema describes the rows this operator yields. It is fixed before
	// execution starts.
	Schema() types.Schema

	// Next pulls the next row. A nil row with a nil error signals
	// end-of-stream; the transition is terminal and idempotent.
	Next() (types.Row, error)

	// Children returns the operator's inputs, for plan rendering.
	Children() []Operator

	// String renders the node head for EXPLAIN, without its children.
	String() string
}

// operator lifecycle states. Materializing operators (HashAggregate, Sort)
// pass through stateBuffering on their first Next call; the others go
// straight from NotStarted to Streaming.
type opState int

const (
	stateNotStarted opState = iota
	stateBuffering
	stateStreaming
	stateExhausted
)

// RowSource is the stream contract the scan operator pulls from. A nil row
// with nil error is end-of-stream. Errors from the source are opaque I/O
// failures that abort the query.
type RowSource interface {
	Next() (types.Row, error)
}

// Relation is a named, schema-resolved data source a scan can open. The
// schema is resolved once when the relation is first opened by the CLI;
// Open starts a fresh row stream over the same data.
type Relation interface {
	Name() string
	Schema() types.Schema
	Open() (RowSource, error)
}
