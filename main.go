package main

import (
	"os"

	"csvql/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
