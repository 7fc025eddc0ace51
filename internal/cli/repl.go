package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

const prompt = "csvql> "

// repl reads one statement per line until EOF, a blank line, or an exit
// command. Statement errors are reported and the loop continues, so one
// bad query never ends the session.
func (s *session) repl(in io.Reader, errOut io.Writer) error {
	fmt.Fprintf(s.stdout, "csvql: querying table %q\n", s.rel.Name())
	fmt.Fprintf(s.stdout, "%s\n", s.rel.Schema())

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(s.stdout, prompt)
		if !scanner.Scan() {
			fmt.Fprintln(s.stdout)
			break
		}

		line := strings.TrimSpace(scanner.Text())
		line = strings.TrimSuffix(line, ";")
		if line == "" || strings.EqualFold(line, "exit") || strings.EqualFold(line, "quit") {
			break
		}

		if err := s.run(line); err != nil {
			fmt.Fprintln(errOut, "Error:", err)
		}
	}
	return scanner.Err()
}
