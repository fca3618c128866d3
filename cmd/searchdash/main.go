package main

import (
	"fmt"
	"os"

	"github.com/hyperifyio/searchdash/internal/cli"
)

// runMain executes the command line and returns the process exit code.
func runMain() int {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func main() {
	if code := runMain(); code != 0 {
		os.Exit(code)
	}
}
