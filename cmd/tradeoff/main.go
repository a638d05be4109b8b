package main

import (
	"errors"
	"fmt"
	"os"
)

// Exit codes for different failure modes
const (
	ExitSuccess     = 0
	ExitError       = 1 // configuration or runtime error
	ExitInvalidCase = 2 // the case document could not be loaded or built
)

// InvalidCaseError marks failures caused by the case document rather than the
// environment.
type InvalidCaseError struct {
	Path string
	Err  error
}

func (e *InvalidCaseError) Error() string {
	return fmt.Sprintf("invalid case %s: %v", e.Path, e.Err)
}

func (e *InvalidCaseError) Unwrap() error { return e.Err }

func exitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var caseErr *InvalidCaseError
	if errors.As(err, &caseErr) {
		return ExitInvalidCase
	}
	return ExitError
}

func main() {
	if err := execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}
