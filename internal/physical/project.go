package physical

import (
	"fmt"
	"strings"

	"csvql/internal/types"
)

// Project evaluates one output expression per column against each input
// row, producing a fresh row in the projection's own schema.
type Project struct {
	child  Operator
	exprs  []Expression
	schema types.Schema
	state  opState
}

// NewProject creates a projection. The schema must align positionally with
// the expression list.
func NewProject(child Operator, exprs []Expression, schema types.Schema) *Project {
	return &Project{child: child, exprs: exprs, schema: schema}
}

func (p *Project) Schema() types.Schema { return p.schema }

func (p *Project) Next() (types.Row, error) {
	if p.state == stateExhausted {
		return nil, nil
	}
	p.state = stateStreaming

	row, err := p.child.Next()
	if err != nil {
		p.state = stateExhausted
		return nil, err
	}
	if row == nil {
		p.state = stateExhausted
		return nil, nil
	}

	out := make(types.Row, len(p.exprs))
	for i, e := range p.exprs {
		v, err := e.Evaluate(row)
		if err != nil {
			p.state = stateExhausted
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (p *Project) Children() []Operator { return []Operator{p.child} }

func (p *Project) String() string {
	parts := make([]string, len(p.exprs))
	for i, e := range p.exprs {
		parts[i] = e.String()
	}
	return fmt.Sprintf("Project: %s", strings.Join(parts, ", "))
}
