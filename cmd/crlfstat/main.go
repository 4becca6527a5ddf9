// Command crlfstat reports line-ending and indentation consistency of a directory tree.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/idelchi/crlfstat/internal/cli"
	"github.com/idelchi/crlfstat/internal/crlfstat"
)

// version is set at build time via -ldflags.
var version = "unknown - unofficial & generated by unknown"

const (
	exitUsage   = 1
	exitRuntime = 3
	exitMixed   = 4
)

// exitCode maps a run error to the process exit code.
func exitCode(err error) int {
	switch {
	case errors.Is(err, cli.ErrMixedFound):
		return exitMixed
	case errors.Is(err, cli.ErrUsage),
		errors.Is(err, crlfstat.ErrInvalidPath),
		errors.Is(err, crlfstat.ErrInvalidPattern):
		return exitUsage
	default:
		return exitRuntime
	}
}

func main() {
	if err := cli.New(version).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error! %v\n", err)

		os.Exit(exitCode(err))
	}
}
