package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"csvql/internal/output"
	"csvql/internal/physical"
	"csvql/internal/plan"
	"csvql/internal/sql"
	"csvql/internal/types"
)

// session holds everything one invocation shares across statements: the
// open relation, the rendering options, and the diagnostics logger.
type session struct {
	rel    physical.Relation
	opts   *options
	logger *slog.Logger
	stdout io.Writer
}

// run parses and executes one statement, writing its result to stdout.
func (s *session) run(text string) error {
	start := time.Now()
	stmt, err := sql.Parse(text)
	if err != nil {
		return err
	}
	s.logger.Debug("parsed", "elapsed", time.Since(start))

	switch st := stmt.(type) {
	case *sql.SelectStatement:
		return s.runSelect(st)
	case *sql.ExplainStatement:
		return s.runExplain(st)
	case *sql.CopyStatement:
		return s.runCopy(st)
	default:
		return fmt.Errorf("unsupported statement %T", stmt)
	}
}

func (s *session) runSelect(stmt *sql.SelectStatement) error {
	op, err := s.lower(stmt)
	if err != nil {
		return err
	}

	start := time.Now()
	if err := s.formatter(s.stdout).Format(op.Schema(), op); err != nil {
		return err
	}
	s.logger.Debug("executed", "elapsed", time.Since(start))

	if s.opts.explain {
		return output.Explain(s.stdout, op)
	}
	return nil
}

func (s *session) runExplain(stmt *sql.ExplainStatement) error {
	op, err := s.lower(stmt.Body)
	if err != nil {
		return err
	}
	return output.Explain(s.stdout, op)
}

// runCopy executes the inner query and writes its result to the target
// path as CSV, then reports the row count.
func (s *session) runCopy(stmt *sql.CopyStatement) error {
	op, err := s.lower(stmt.Body)
	if err != nil {
		return err
	}

	f, err := os.Create(stmt.Path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", stmt.Path, err)
	}

	counted := &countingIterator{inner: op}
	formatErr := output.NewCSVFormatter(f).Format(op.Schema(), counted)
	closeErr := f.Close()
	if formatErr != nil {
		return formatErr
	}
	if closeErr != nil {
		return fmt.Errorf("failed to close %s: %w", stmt.Path, closeErr)
	}

	fmt.Fprintf(s.stdout, "COPY %d\n", counted.n)
	return nil
}

// lower builds and validates the plan for the open relation, checking
// the FROM clause names the loaded table. The file path and its base
// name both work, so FROM people and FROM data/people.csv hit the same
// relation.
func (s *session) lower(stmt *sql.SelectStatement) (physical.Operator, error) {
	if stmt.From == "" {
		return nil, fmt.Errorf("missing FROM clause (loaded table is %q)", s.rel.Name())
	}
	from := strings.TrimSuffix(filepath.Base(stmt.From), filepath.Ext(stmt.From))
	if from != s.rel.Name() {
		return nil, fmt.Errorf("unknown table %q (loaded table is %q)", stmt.From, s.rel.Name())
	}

	start := time.Now()
	op, err := plan.BuildAndLower(stmt, s.rel)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("planned", "elapsed", time.Since(start))
	return op, nil
}

func (s *session) formatter(w io.Writer) output.Formatter {
	switch s.opts.format {
	case "csv":
		return output.NewCSVFormatter(w)
	case "jsonl":
		return output.NewJSONFormatter(w)
	default:
		return output.NewTableFormatter(w)
	}
}

// countingIterator counts rows passing through, for the COPY report.
type countingIterator struct {
	inner output.RowIterator
	n     int64
}

func (c *countingIterator) Next() (types.Row, error) {
	row, err := c.inner.Next()
	if err == nil && row != nil {
		c.n++
	}
	return row, err
}
