// Package cli wires the command line onto the query engine: flag
// parsing, the one-shot and interactive modes, and result rendering.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"csvql/internal/reader"
)

type options struct {
	query   string
	format  string
	explain bool
	verbose bool
}

// NewRootCommand builds the csvql command. Queries run against the single
// positional file argument; without -q an interactive prompt starts.
func NewRootCommand() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "csvql [flags] <file>",
		Short: "Run SQL queries against CSV and Parquet files",
		Long: `csvql executes SELECT statements against a single CSV or Parquet file.

The file's base name is the table name:

  csvql -q "SELECT name, age FROM people WHERE age >= 18" people.csv
  csvql -q "EXPLAIN SELECT city, COUNT(*) FROM people GROUP BY city" people.csv
  csvql -q "COPY (SELECT * FROM people ORDER BY age) TO 'sorted.csv'" people.csv

Without -q an interactive prompt reads one statement per line.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validFormat(opts.format); err != nil {
				return err
			}

			logger := newLogger(cmd.ErrOrStderr(), opts.verbose)

			rel, err := reader.Open(args[0])
			if err != nil {
				return err
			}
			logger.Debug("relation resolved",
				"table", rel.Name(), "schema", rel.Schema().String())

			session := &session{
				rel:    rel,
				opts:   opts,
				logger: logger,
				stdout: cmd.OutOrStdout(),
			}

			if opts.query != "" {
				return session.run(opts.query)
			}
			return session.repl(cmd.InOrStdin(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringVarP(&opts.query, "query", "q", "", "SQL statement to run")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "table", "output format: table, csv, jsonl")
	cmd.Flags().BoolVarP(&opts.explain, "explain-plan", "e", false, "print the physical plan after the result")
	cmd.Flags().BoolVar(&opts.verbose, "verbose", false, "log planning and timing diagnostics to stderr")

	return cmd
}

// Execute runs the root command and maps its outcome to an exit code.
func Execute() int {
	cmd := NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}

func validFormat(format string) error {
	switch format {
	case "table", "csv", "jsonl":
		return nil
	default:
		return fmt.Errorf("unknown format %q (want table, csv or jsonl)", format)
	}
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
