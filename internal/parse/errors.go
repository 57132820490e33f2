package parse

import (
	"errors"
	"fmt"

	"github.com/roach88/ctlog/internal/event"
)

// ErrorCode categorizes why a line produced no event.
type ErrorCode string

const (
	// ErrCodeMalformedLine indicates a segment count that differs from the
	// kind's required arity.
	ErrCodeMalformedLine ErrorCode = "MALFORMED_LINE"

	// ErrCodeUnrecognizedPattern indicates a segment whose labeled
	// sub-pattern did not match.
	ErrCodeUnrecognizedPattern ErrorCode = "UNRECOGNIZED_PATTERN"

	// ErrCodeUnknownOperation indicates an engine line with an operation
	// keyword outside the catalog.
	ErrCodeUnknownOperation ErrorCode = "UNKNOWN_OPERATION"

	// ErrCodeTimestamp indicates a timestamp that could not be normalized.
	ErrCodeTimestamp ErrorCode = "TIMESTAMP_PARSE_FAILURE"
)

// Error describes a line that was rejected by a grammar.
type Error struct {
	Code ErrorCode

	// Kind is the event kind whose grammar rejected the line. Zero for
	// unknown operations.
	Kind event.Kind

	// Expected and Actual are segment counts (MALFORMED_LINE).
	Expected int
	Actual   int

	// Label names the sub-pattern that failed (UNRECOGNIZED_PATTERN,
	// TIMESTAMP_PARSE_FAILURE) and Segment holds the offending text.
	Label   string
	Segment string

	// Operation is the unrecognized keyword (UNKNOWN_OPERATION).
	Operation string

	Err error
}

func (e *Error) Error() string {
	switch e.Code {
	case ErrCodeMalformedLine:
		return fmt.Sprintf("%s: %s expects %d segments, got %d", e.Code, e.Kind, e.Expected, e.Actual)
	case ErrCodeUnknownOperation:
		return fmt.Sprintf("%s: unknown operation %q", e.Code, e.Operation)
	case ErrCodeTimestamp:
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Kind, e.Err)
	default:
		return fmt.Sprintf("%s: %s: failed to match %s in %q", e.Code, e.Kind, e.Label, e.Segment)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// CodeOf returns the error code of a parse error, or "" for other errors.
func CodeOf(err error) ErrorCode {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Code
	}
	return ""
}

// IsMalformedLine reports whether err is a segment-count mismatch.
func IsMalformedLine(err error) bool { return CodeOf(err) == ErrCodeMalformedLine }

// IsUnrecognizedPattern reports whether err is a label-pattern mismatch.
func IsUnrecognizedPattern(err error) bool { return CodeOf(err) == ErrCodeUnrecognizedPattern }

// IsUnknownOperation reports whether err is an unknown engine keyword.
func IsUnknownOperation(err error) bool { return CodeOf(err) == ErrCodeUnknownOperation }

// IsTimestampFailure reports whether err is a timestamp normalization
// failure.
func IsTimestampFailure(err error) bool { return CodeOf(err) == ErrCodeTimestamp }

func malformed(kind event.Kind, expected, actual int) *Error {
	return &Error{Code: ErrCodeMalformedLine, Kind: kind, Expected: expected, Actual: actual}
}

func unrecognized(kind event.Kind, label, segment string) *Error {
	return &Error{Code: ErrCodeUnrecognizedPattern, Kind: kind, Label: label, Segment: segment}
}

func badTimestamp(kind event.Kind, segment string, err error) *Error {
	return &Error{Code: ErrCodeTimestamp, Kind: kind, Label: "UTC", Segment: segment, Err: err}
}
