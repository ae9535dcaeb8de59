package aggregates

import (
	"strings"
	"time"

	"github.com/yungbote/gymflow-backend/internal/domain/membership"
)

// ContractIntent is one mutually exclusive change to a contract.
type ContractIntent interface {
	Kind() string
	contractIntent()
}

type FreezeIntent struct{}

type UnfreezeIntent struct{}

// RescheduleIntent changes the plan and/or start date; nil fields keep the current value.
type RescheduleIntent struct {
	MembershipPlanID *uint
	StartDate        *time.Time
}

type CancelIntent struct{}

// SetStatusIntent covers the remaining direct transitions (expired, about_to_expire, active).
type SetStatusIntent struct {
	Status membership.ContractStatus
}

// AnnotateIntent changes nothing but the reason.
type AnnotateIntent struct{}

func (FreezeIntent) Kind() string     { return "freeze" }
func (UnfreezeIntent) Kind() string   { return "unfreeze" }
func (RescheduleIntent) Kind() string { return "reschedule" }
func (CancelIntent) Kind() string     { return "cancel" }
func (SetStatusIntent) Kind() string  { return "set_status" }
func (AnnotateIntent) Kind() string   { return "annotate" }

func (FreezeIntent) contractIntent()     {}
func (UnfreezeIntent) contractIntent()   {}
func (RescheduleIntent) contractIntent() {}
func (CancelIntent) contractIntent()     {}
func (SetStatusIntent) contractIntent()  {}
func (AnnotateIntent) contractIntent()   {}

// ContractPatch is the partial update a caller submits.
type ContractPatch struct {
	MembershipPlanID *uint
	StartDate        *time.Time
	Status           *membership.ContractStatus
	Reason           *string
}

// ResolveContractPatch turns a patch into exactly one intent against the current row.
// A status change combined with a plan/start change is rejected rather than ordered.
func ResolveContractPatch(patch ContractPatch, current membership.Contract) (ContractIntent, error) {
	const op = "Membership.Contract.ResolvePatch"
	if patch.MembershipPlanID == nil && patch.StartDate == nil && patch.Status == nil && patch.Reason == nil {
		return nil, NewError(CodeValidation, op, "empty contract patch", nil)
	}

	oldStatus := membership.ContractStatus(strings.ToLower(strings.TrimSpace(current.Status)))
	var target membership.ContractStatus
	statusChange := false
	if patch.Status != nil {
		target = membership.ContractStatus(strings.ToLower(strings.TrimSpace(string(*patch.Status))))
		if !target.Valid() {
			return nil, NewError(CodeValidation, op, "invalid contract status", nil)
		}
		statusChange = target != oldStatus
	}

	var reschedule RescheduleIntent
	if patch.MembershipPlanID != nil && *patch.MembershipPlanID != current.MembershipPlanID {
		id := *patch.MembershipPlanID
		reschedule.MembershipPlanID = &id
	}
	// Start date compared by exact instant.
	if patch.StartDate != nil && !patch.StartDate.Equal(current.Start()) {
		sd := *patch.StartDate
		reschedule.StartDate = &sd
	}
	rescheduling := reschedule.MembershipPlanID != nil || reschedule.StartDate != nil

	switch {
	case statusChange && rescheduling:
		return nil, NewError(CodeValidation, op, "conflicting contract changes", nil)
	case rescheduling:
		return reschedule, nil
	case statusChange:
		switch {
		case target == membership.ContractFrozen:
			return FreezeIntent{}, nil
		case target == membership.ContractActive && oldStatus == membership.ContractFrozen:
			return UnfreezeIntent{}, nil
		case target == membership.ContractCancelled:
			return CancelIntent{}, nil
		default:
			return SetStatusIntent{Status: target}, nil
		}
	default:
		return AnnotateIntent{}, nil
	}
}
