// Package timestamp normalizes the two timestamp encodings found in
// compiler-pipeline logs into a single canonical UTC instant.
//
// The compilation engine prints ISO-8601 with an explicit offset
// ("2024-01-01T10:00:00.123+00:00" or "...Z"). The code cache prints the
// same shape but with a colon-less offset ("2024-01-01T10:00:00.123+0000"),
// which time.Parse rejects, so the colon is inserted first. A value without
// any offset is read as UTC.
package timestamp

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var isoPattern = regexp.MustCompile(
	`^(\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(?:\.\d+)?)(Z|[+-]\d{2}:?\d{2})?$`,
)

// Error reports an input that is not a recognized timestamp encoding.
type Error struct {
	Input string
	Err   error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid timestamp %q: %v", e.Input, e.Err)
	}
	return fmt.Sprintf("invalid timestamp %q", e.Input)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Normalize parses raw and returns the instant in UTC.
func Normalize(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	m := isoPattern.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, &Error{Input: raw}
	}

	offset := m[2]
	switch {
	case offset == "":
		offset = "Z"
	case offset != "Z" && !strings.Contains(offset, ":"):
		// +hhmm -> +hh:mm
		offset = offset[:3] + ":" + offset[3:]
	}

	t, err := time.Parse(time.RFC3339Nano, m[1]+offset)
	if err != nil {
		return time.Time{}, &Error{Input: raw, Err: err}
	}
	return t.UTC(), nil
}

// MustNormalize is Normalize for literals known to be valid. It panics on
// error.
func MustNormalize(raw string) time.Time {
	t, err := Normalize(raw)
	if err != nil {
		panic(err)
	}
	return t
}
