package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/adammpkins/hreq/internal/parser"
	"github.com/adammpkins/hreq/internal/runtime"
)

var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	err := NewCLI(os.Stdout, os.Stderr).ExecuteContext(context.Background())
	if err != nil {
		printError(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

// printError prints an error with helpful diagnostics.
func printError(w io.Writer, err error) {
	fmt.Fprintf(w, "Error: %v\n", err)

	var compErr *parser.ComponentError
	if errors.As(err, &compErr) {
		if hint := compErr.Hint(); hint != "" {
			fmt.Fprintf(w, "Hint: %s\n", hint)
		}
	}
}

// exitCode maps an error to the process exit status.
func exitCode(err error) int {
	var execErr *runtime.ExecutionError
	if errors.As(err, &execErr) {
		return execErr.Code
	}
	return runtime.ExitError
}
