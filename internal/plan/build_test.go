package plan

import (
	"errors"
	"strings"
	"testing"

	"csvql/internal/sql"
	"csvql/internal/types"
)

func testSchema() types.Schema {
	return types.NewSchema([]types.Column{
		{Name: "id", Type: types.Integer},
		{Name: "city", Type: types.Text},
		{Name: "age", Type: types.Integer},
		{Name: "score", Type: types.Float},
	})
}

func mustSelect(t *testing.T, input string) *sql.SelectStatement {
	t.Helper()
	stmt, err := sql.ParseSelect(input)
	if err != nil {
		t.Fatalf("ParseSelect(%q) returned error: %v", input, err)
	}
	return stmt
}

func TestBuild_ClauseOrder(t *testing.T) {
	stmt := mustSelect(t, "SELECT city, COUNT(*) FROM people WHERE age > 18 GROUP BY city HAVING COUNT(*) > 1 ORDER BY city LIMIT 5")
	lp, err := Build(stmt, testSchema(), "people")
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}

	limit, ok := lp.(*Limit)
	if !ok {
		t.Fatalf("root = %T, want *Limit", lp)
	}
	sortNode, ok := limit.Input.(*Sort)
	if !ok {
		t.Fatalf("below limit = %T, want *Sort", limit.Input)
	}
	proj, ok := sortNode.Input.(*Projection)
	if !ok {
		t.Fatalf("below sort = %T, want *Projection", sortNode.Input)
	}
	having, ok := proj.Input.(*Having)
	if !ok {
		t.Fatalf("below projection = %T, want *Having", proj.Input)
	}
	agg, ok := having.Input.(*Aggregate)
	if !ok {
		t.Fatalf("below having = %T, want *Aggregate", having.Input)
	}
	filter, ok := agg.Input.(*Filter)
	if !ok {
		t.Fatalf("below aggregate = %T, want *Filter", agg.Input)
	}
	if _, ok := filter.Input.(*Scan); !ok {
		t.Fatalf("below filter = %T, want *Scan", filter.Input)
	}
}

func TestBuild_ProjectionSchema(t *testing.T) {
	stmt := mustSelect(t, "SELECT id, age + 1 AS next, score FROM people")
	lp, err := Build(stmt, testSchema(), "people")
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}

	schema := lp.Schema()
	wantNames := []string{"id", "next", "score"}
	wantTypes := []types.DataType{types.Integer, types.Integer, types.Float}
	if schema.Len() != len(wantNames) {
		t.Fatalf("schema has %d columns, want %d", schema.Len(), len(wantNames))
	}
	for i := range wantNames {
		col := schema.Column(i)
		if col.Name != wantNames[i] {
			t.Errorf("column %d name = %q, want %q", i, col.Name, wantNames[i])
		}
		if col.Type != wantTypes[i] {
			t.Errorf("column %d type = %s, want %s", i, col.Type, wantTypes[i])
		}
	}
}

func TestBuild_UnaliasedExpressionName(t *testing.T) {
	stmt := mustSelect(t, "SELECT age + 1 FROM people")
	lp, err := Build(stmt, testSchema(), "people")
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	if got := lp.Schema().Column(0).Name; got != "age + 1" {
		t.Errorf("generated name = %q, want %q", got, "age + 1")
	}
}

func TestBuild_ImplicitSingleGroup(t *testing.T) {
	stmt := mustSelect(t, "SELECT COUNT(*), AVG(score) FROM people")
	lp, err := Build(stmt, testSchema(), "people")
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}

	proj, ok := lp.(*Projection)
	if !ok {
		t.Fatalf("root = %T, want *Projection", lp)
	}
	agg, ok := proj.Input.(*Aggregate)
	if !ok {
		t.Fatalf("below projection = %T, want *Aggregate", proj.Input)
	}
	if len(agg.GroupBy) != 0 {
		t.Errorf("GroupBy = %+v, want empty", agg.GroupBy)
	}
	if len(agg.Aggregates) != 2 {
		t.Errorf("Aggregates = %d, want 2", len(agg.Aggregates))
	}
}

func TestBuild_SharedAggregateColumn(t *testing.T) {
	stmt := mustSelect(t, "SELECT city, COUNT(*) FROM people GROUP BY city HAVING COUNT(*) > 1")
	lp, err := Build(stmt, testSchema(), "people")
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}

	proj := lp.(*Projection)
	agg := proj.Input.(*Having).Input.(*Aggregate)
	if len(agg.Aggregates) != 1 {
		t.Errorf("COUNT(*) in select list and HAVING should share one accumulator, got %d", len(agg.Aggregates))
	}
}

func TestBuild_AggregateType(t *testing.T) {
	stmt := mustSelect(t, "SELECT COUNT(score), SUM(age), AVG(age), MIN(city) FROM people")
	lp, err := Build(stmt, testSchema(), "people")
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}

	schema := lp.Schema()
	wantTypes := []types.DataType{types.Integer, types.Integer, types.Float, types.Text}
	for i, want := range wantTypes {
		if got := schema.Column(i).Type; got != want {
			t.Errorf("column %d type = %s, want %s", i, got, want)
		}
	}
}

func TestBuild_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "unknown column in select", input: "SELECT nope FROM people"},
		{name: "unknown column in where", input: "SELECT id FROM people WHERE nope > 1"},
		{name: "aggregate in where", input: "SELECT id FROM people WHERE COUNT(*) > 1"},
		{name: "having without grouping", input: "SELECT id FROM people HAVING id > 1"},
		{name: "ungrouped column in select", input: "SELECT age FROM people GROUP BY city"},
		{name: "ungrouped column in having", input: "SELECT city FROM people GROUP BY city HAVING age > 1"},
		{name: "unknown column in group by", input: "SELECT nope FROM people GROUP BY nope"},
		{name: "unknown column in aggregate arg", input: "SELECT SUM(nope) FROM people"},
		{name: "negative limit", input: "SELECT id FROM people LIMIT -1"},
		{name: "order by not in select list", input: "SELECT city FROM people GROUP BY city ORDER BY nope"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmt := mustSelect(t, tt.input)
			_, err := Build(stmt, testSchema(), "people")
			if err == nil {
				t.Fatalf("Build(%q) succeeded, want error", tt.input)
			}
			var planErr *PlanError
			if !errors.As(err, &planErr) {
				t.Errorf("Build(%q) error = %T, want *PlanError", tt.input, err)
			}
		})
	}
}

func TestBuild_GroupingExpressionInSelectAndHaving(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "expression in select", input: "SELECT age + 1, COUNT(*) FROM people GROUP BY age + 1"},
		{name: "expression in having", input: "SELECT COUNT(*) FROM people GROUP BY age + 1 HAVING age + 1 > 2"},
		{name: "expression in both", input: "SELECT age % 2, COUNT(*) FROM people GROUP BY age % 2 HAVING age % 2 = 0"},
		{name: "negated column key", input: "SELECT -age, COUNT(*) FROM people GROUP BY -age"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmt := mustSelect(t, tt.input)
			if _, err := Build(stmt, testSchema(), "people"); err != nil {
				t.Errorf("Build(%q) returned error: %v", tt.input, err)
			}
		})
	}
}

func TestBuild_GroupingExpressionColumnName(t *testing.T) {
	stmt := mustSelect(t, "SELECT age + 1, COUNT(*) FROM people GROUP BY age + 1")
	lp, err := Build(stmt, testSchema(), "people")
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}

	schema := lp.Schema()
	if got := schema.Column(0).Name; got != "age + 1" {
		t.Errorf("column 0 name = %q, want %q", got, "age + 1")
	}
	if got := schema.Column(0).Type; got != types.Integer {
		t.Errorf("column 0 type = %s, want INTEGER", got)
	}
}

func TestBuild_OrderByOnlyAggregate(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "ungrouped", input: "SELECT id FROM people ORDER BY COUNT(*)"},
		{name: "grouped", input: "SELECT city FROM people GROUP BY city ORDER BY SUM(age)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmt := mustSelect(t, tt.input)
			_, err := Build(stmt, testSchema(), "people")
			if err == nil {
				t.Fatalf("Build(%q) succeeded, want error", tt.input)
			}
			var planErr *PlanError
			if !errors.As(err, &planErr) {
				t.Fatalf("Build(%q) error = %T, want *PlanError", tt.input, err)
			}
			if !strings.Contains(err.Error(), "select list") {
				t.Errorf("error %q should name the select-list rule", err)
			}
		})
	}
}

func TestBuild_OrderByResolution(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "by alias", input: "SELECT age AS years FROM people ORDER BY years"},
		{name: "by original expression", input: "SELECT city, COUNT(*) FROM people GROUP BY city ORDER BY COUNT(*) DESC"},
		{name: "by plain output column", input: "SELECT id, age FROM people ORDER BY age"},
		{name: "by expression over output", input: "SELECT id, age FROM people ORDER BY age % 2, id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmt := mustSelect(t, tt.input)
			if _, err := Build(stmt, testSchema(), "people"); err != nil {
				t.Errorf("Build(%q) returned error: %v", tt.input, err)
			}
		})
	}
}
