package aggregates

import (
	"context"
	"time"

	"github.com/yungbote/gymflow-backend/internal/domain/scheduling"
)

var SessionAggregatePolicy = Policy{
	Name:             "Scheduling.SessionAggregate",
	WriteTxOwnership: WriteTxOwnedByAggregate,
	ReadPolicy:       ReadPolicyInvariantScoped,
	Notes:            "Owns booking preconditions and trainer/client conflict scans for session writes.",
}

// SessionAggregate owns training-session booking invariants.
//
// Write method failures return *aggregates.Error with codes:
// CodeValidation, CodeNotFound, CodeConflict, CodeRetryable, CodeInternal.
// Scheduling conflicts carry the overlapping sessions, see ConflictsOf.
type SessionAggregate interface {
	Aggregate

	Create(ctx context.Context, in CreateSessionInput) (SessionWriteResult, error)
	Update(ctx context.Context, in UpdateSessionInput) (SessionWriteResult, error)
	Cancel(ctx context.Context, in CancelSessionInput) (SessionWriteResult, error)
}

type CreateSessionInput struct {
	TrainerUserID  uint
	ClientPersonID uint
	Title          string
	Description    string
	Notes          string
	Start          time.Time
	End            time.Time
}

// SessionPatch carries only the fields being changed.
type SessionPatch struct {
	TrainerUserID  *uint
	ClientPersonID *uint
	Title          *string
	Description    *string
	Notes          *string
	Start          *time.Time
	End            *time.Time
}

func (p SessionPatch) Empty() bool {
	return p.TrainerUserID == nil && p.ClientPersonID == nil && p.Title == nil &&
		p.Description == nil && p.Notes == nil && p.Start == nil && p.End == nil
}

type UpdateSessionInput struct {
	SessionID uint
	Patch     SessionPatch
}

type CancelSessionInput struct {
	SessionID uint
}

type SessionWriteResult struct {
	SessionID uint
	Status    scheduling.SessionStatus
	Changed   bool
	Session   *scheduling.TrainingSession
}
