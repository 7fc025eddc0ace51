package output

import (
	"fmt"
	"io"
	"strings"

	"csvql/internal/physical"
)

// Explain writes the operator tree as indented one-line node summaries,
// root first. It only renders; no operator is ever pulled.
func Explain(w io.Writer, op physical.Operator) error {
	return explainNode(w, op, 0)
}

func explainNode(w io.Writer, op physical.Operator, depth int) error {
	indent := strings.Repeat("  ", depth)
	if _, err := fmt.Fprintf(w, "%s%s\n", indent, op.String()); err != nil {
		return err
	}
	for _, child := range op.Children() {
		if err := explainNode(w, child, depth+1); err != nil {
			return err
		}
	}
	return nil
}
