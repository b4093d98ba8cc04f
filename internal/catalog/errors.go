package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Error kinds. Use errors.Is against these to classify a catalog failure.
var (
	ErrConnect  = errors.New("catalog: connection failed")
	ErrNotFound = errors.New("catalog: not found")
	ErrProtocol = errors.New("catalog: protocol error")
	ErrCanceled = errors.New("catalog: canceled")
)

// Error describes a failed catalog operation.
type Error struct {
	Op       string // operation, e.g. "list_tables"
	Resource string // uri, namespace or table the operation targeted
	Kind     error  // one of the Err* kinds
	Err      error  // underlying cause
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	if e.Resource != "" {
		b.WriteString(" ")
		b.WriteString(e.Resource)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	} else if e.Kind != nil {
		b.WriteString(": ")
		b.WriteString(e.Kind.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches the error kind as well as the wrapped cause.
func (e *Error) Is(target error) bool {
	return e.Kind != nil && target == e.Kind
}

// Wrap builds an *Error for op, classifying err. Context cancellation maps
// to ErrCanceled. A nil err returns nil.
func Wrap(op, resource string, kind error, err error) error {
	if err == nil {
		return nil
	}
	if ce, ok := err.(*Error); ok {
		return ce
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		kind = ErrCanceled
	}
	return &Error{Op: op, Resource: resource, Kind: kind, Err: err}
}

// IsCanceled reports whether err stems from a cancelled fetch.
func IsCanceled(err error) bool {
	return errors.Is(err, ErrCanceled) || errors.Is(err, context.Canceled)
}

// FormatCatalogError formats a catalog error with actionable guidance
func FormatCatalogError(err error) string {
	errMsg := err.Error()

	switch {
	case errors.Is(err, ErrNotFound):
		return fmt.Sprintf("Not found: the catalog no longer has this entry. It may have been dropped.\n\nOriginal error: %s", errMsg)
	case strings.Contains(errMsg, "connection refused"):
		return fmt.Sprintf(
			"Connection refused: the catalog is not accepting connections.\n\n"+
				"Troubleshooting steps:\n"+
				"  1. Verify the catalog service is running\n"+
				"  2. Check the host and port in the catalog uri\n"+
				"\nOriginal error: %s", errMsg)
	case strings.Contains(errMsg, "401") || strings.Contains(errMsg, "403") || strings.Contains(errMsg, "unauthorized"):
		return fmt.Sprintf(
			"Authentication failed: the catalog rejected the credentials.\n\n"+
				"Troubleshooting steps:\n"+
				"  1. Check catalog.token or catalog.credential in tanic.yaml\n"+
				"  2. Ensure TANIC_CATALOG_TOKEN is set if using env auth\n"+
				"\nOriginal error: %s", errMsg)
	case strings.Contains(errMsg, "timeout") || strings.Contains(errMsg, "deadline exceeded"):
		return fmt.Sprintf(
			"Timeout: the catalog did not respond in time.\n\n"+
				"Troubleshooting steps:\n"+
				"  1. Check network connectivity to the catalog\n"+
				"  2. Raise catalog.timeout in tanic.yaml\n"+
				"\nOriginal error: %s", errMsg)
	case errors.Is(err, ErrConnect):
		return fmt.Sprintf("Catalog connection error:\n\n%s\n\nRun with --debug for detailed logs.", errMsg)
	}
	return errMsg
}
