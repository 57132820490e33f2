package correlate

import (
	"errors"
	"fmt"
)

// ErrCodeInternalConsistency marks a bucketing failure: an engine event
// whose target id has no call target although entity construction should
// have created one.
const ErrCodeInternalConsistency = "INTERNAL_CONSISTENCY"

// ConsistencyError aborts Build. It indicates a defect in the pipeline, not
// bad input.
type ConsistencyError struct {
	TargetID int64
	Line     string
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("%s: no call target for id %d (line %q)", ErrCodeInternalConsistency, e.TargetID, e.Line)
}

// IsConsistencyError reports whether err is or wraps a ConsistencyError.
func IsConsistencyError(err error) bool {
	var ce *ConsistencyError
	return errors.As(err, &ce)
}
