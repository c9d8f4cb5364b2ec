package cli

import (
	"context"
	"errors"
	"io"
	"log/slog"
)

const (
	// ExitFailure is the exit code of a failed run or an invalid project.
	ExitFailure = 1
	// ExitUsage is the exit code of invalid arguments or configuration.
	ExitUsage = 2
	// ExitInterrupted is the exit code after the run was cancelled by a signal.
	ExitInterrupted = 130
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

func usageError(err error) error {
	return &ExitError{Code: ExitUsage, Message: err.Error()}
}

// failure maps an execution error to its exit code.
func failure(err error) error {
	if errors.Is(err, context.Canceled) {
		return &ExitError{Code: ExitInterrupted, Message: "interrupted"}
	}
	return &ExitError{Code: ExitFailure, Message: err.Error()}
}

// Execute runs the command line in args. Every error it returns is an
// *ExitError; errors raised by argument parsing are usage errors.
func Execute(ctx context.Context, outW io.Writer, args []string) error {
	slog.Debug("CLI started.", "args", args)
	root := NewRootCommand(outW)
	root.SetArgs(args)
	root.SetOut(outW)
	root.SetErr(outW)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return nil
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr
	}
	return usageError(err)
}
