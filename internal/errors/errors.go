// Package errors defines typed errors with categories for user-friendly reporting.
// Every failure oratab surfaces to the status line carries a machine-readable
// Kind, so the UI and the CLI commands can decide how to present it without
// string matching on driver messages.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind is a machine-readable error category.
type Kind string

const (
	// Configuration indicates malformed or missing configuration, including
	// a required environment variable that is not set. Fatal at the point of
	// use, never fatal for the process.
	Configuration Kind = "configuration"
	// MissingFile indicates a tab's SQL file does not exist yet. Callers
	// recover by treating the query as empty.
	MissingFile Kind = "missing_file"
	// ExternalTool indicates the editor or spreadsheet exited non-zero or
	// failed to start. Recoverable; the user may retry.
	ExternalTool Kind = "external_tool"
	// Query indicates a driver-reported execution failure. The previous
	// result set is preserved and the connection handle is discarded.
	Query Kind = "query"
	// MissingResults indicates an export was requested before any execution
	// produced a results file for the tab.
	MissingResults Kind = "missing_results"
)

// E wraps an error with kind and human-friendly message.
type E struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *E) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *E) Unwrap() error { return e.Err }

func Wrap(kind Kind, msg string, err error) *E { return &E{Kind: kind, Message: msg, Err: err} }
func New(kind Kind, msg string) *E             { return &E{Kind: kind, Message: msg} }

// Newf creates an error with a formatted message.
func Newf(kind Kind, format string, args ...any) *E {
	return &E{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// IsKind reports whether err or any error it wraps carries the given kind.
func IsKind(err error, kind Kind) bool {
	var e *E
	if stderrors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
