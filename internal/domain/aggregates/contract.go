package aggregates

import (
	"context"
	"time"

	"github.com/yungbote/gymflow-backend/internal/domain/membership"
)

var ContractAggregatePolicy = Policy{
	Name:             "Membership.ContractAggregate",
	WriteTxOwnership: WriteTxOwnedByAggregate,
	ReadPolicy:       ReadPolicyInvariantScoped,
	Notes:            "Owns contract status transitions, date/price recomputation, code allocation and history append.",
}

// ContractAggregate owns contract lifecycle invariants.
//
// Write method failures return *aggregates.Error with codes:
// CodeValidation, CodeNotFound, CodeConflict, CodeRetryable, CodeInternal.
type ContractAggregate interface {
	Aggregate

	// Create inserts an active contract with a fresh code and its first history row.
	Create(ctx context.Context, in CreateContractInput) (ContractWriteResult, error)

	// Apply executes one resolved intent against an existing contract.
	Apply(ctx context.Context, in ApplyContractIntentInput) (ContractWriteResult, error)

	// SweepExpirations moves lapsed contracts to expired and nearly-lapsed ones to about_to_expire.
	SweepExpirations(ctx context.Context, in SweepExpirationsInput) (SweepExpirationsResult, error)
}

type CreateContractInput struct {
	PersonID         uint
	MembershipPlanID uint
	StartDate        time.Time
	ActorID          uint
}

type ApplyContractIntentInput struct {
	ContractID uint
	Intent     ContractIntent
	Reason     *string
	ActorID    uint
}

type ContractWriteResult struct {
	ContractID      uint
	Code            string
	PreviousStatus  membership.ContractStatus
	Status          membership.ContractStatus
	Changed         bool
	HistoryAppended bool
}

type SweepExpirationsInput struct {
	Today      time.Time
	WindowDays int
	ActorID    uint
}

type SweepExpirationsResult struct {
	Expired       []uint
	AboutToExpire []uint
}
