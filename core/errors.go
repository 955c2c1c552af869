package core

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrPrecondition is matched by every error produced before a statement
	// is sent.
	ErrPrecondition = errors.New("precondition failed")

	ErrEmptyStatement = fmt.Errorf("%w: statement is empty", ErrPrecondition)
	ErrMissingFormat  = fmt.Errorf("%w: statement must contain %q", ErrPrecondition, FormatMarker)
)

// ServerError is returned when the server keeps rejecting a statement after
// all retries are spent.
type ServerError struct {
	StatusCode int
	// Body is the diagnostic text of the final response.
	Body string
	// Statement is the rejected statement.
	Statement string
	Attempts  int
}

func (e *ServerError) Error() string {
	msg := fmt.Sprintf("server responded with %d after %d attempt(s): %s",
		e.StatusCode, e.Attempts, strings.TrimSpace(e.Body))
	if e.Statement != "" {
		msg += "\nquery: " + e.Statement
	}
	return msg
}

type DecodeErrorKind int

const (
	// DecodeMalformed means the document itself does not have the expected shape.
	DecodeMalformed DecodeErrorKind = iota
	// DecodeRowMismatch means a row could not be mapped onto the target type.
	DecodeRowMismatch
)

func (k DecodeErrorKind) String() string {
	switch k {
	case DecodeMalformed:
		return "malformed document"
	case DecodeRowMismatch:
		return "row mismatch"
	default:
		return "unknown"
	}
}

// DecodeError is returned when a successful response cannot be decoded.
type DecodeError struct {
	Kind DecodeErrorKind
	// Row is the index of the offending row; -1 for document errors.
	Row int
	Err error
}

func (e *DecodeError) Error() string {
	if e.Kind == DecodeRowMismatch {
		return fmt.Sprintf("decode: %s at row %d: %v", e.Kind, e.Row, e.Err)
	}
	return fmt.Sprintf("decode: %s: %v", e.Kind, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// IsMalformed reports whether err is a document level decode failure.
func IsMalformed(err error) bool {
	var decErr *DecodeError
	return errors.As(err, &decErr) && decErr.Kind == DecodeMalformed
}

// IsRowMismatch reports whether err is a row level decode failure.
func IsRowMismatch(err error) bool {
	var decErr *DecodeError
	return errors.As(err, &decErr) && decErr.Kind == DecodeRowMismatch
}
