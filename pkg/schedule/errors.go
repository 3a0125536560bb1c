package schedule

import (
	"fmt"

	"github.com/limaJavier/timetabler/pkg/model"
)

// ExtractionError signals solver output breaking a schedule invariant. It is a modeling defect, never a
// normal failure.
type ExtractionError struct {
	Reason     string
	Assignment *model.Assignment // Offending assignment, nil for whole-result checks
}

func (err *ExtractionError) Error() string {
	if err.Assignment == nil {
		return fmt.Sprintf("invalid solver output: %v", err.Reason)
	}
	a := err.Assignment
	return fmt.Sprintf("invalid solver output: %v (course=%v class=%v teacher=%v room=%v period=%v)",
		err.Reason, a.Course, a.Class, a.Teacher, a.Room, a.Period)
}

func breach(assignment *model.Assignment, format string, args ...any) *ExtractionError {
	return &ExtractionError{Reason: fmt.Sprintf(format, args...), Assignment: assignment}
}
