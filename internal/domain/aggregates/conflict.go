package aggregates

import (
	"errors"
	"fmt"

	"github.com/yungbote/gymflow-backend/internal/domain/scheduling"
)

// SchedulingConflict lists the sessions that overlap a requested interval.
type SchedulingConflict struct {
	Sessions []*scheduling.TrainingSession
}

func (c *SchedulingConflict) Error() string {
	if c == nil {
		return "scheduling conflict"
	}
	return fmt.Sprintf("scheduling conflict with %d session(s)", len(c.Sessions))
}

// NewSchedulingConflict builds a CodeConflict error carrying the overlapping sessions.
func NewSchedulingConflict(op string, sessions []*scheduling.TrainingSession) error {
	return NewError(CodeConflict, op, "scheduling conflict", &SchedulingConflict{Sessions: sessions})
}

// ConflictsOf returns the overlapping sessions attached to err, if any.
func ConflictsOf(err error) []*scheduling.TrainingSession {
	var sc *SchedulingConflict
	if errors.As(err, &sc) && sc != nil {
		return sc.Sessions
	}
	return nil
}
