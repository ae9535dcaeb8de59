package aggregates

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gorm.io/datatypes"

	"github.com/yungbote/gymflow-backend/internal/data/repos"
	types "github.com/yungbote/gymflow-backend/internal/domain"
	domainagg "github.com/yungbote/gymflow-backend/internal/domain/aggregates"
	"github.com/yungbote/gymflow-backend/internal/platform/datemath"
	"github.com/yungbote/gymflow-backend/internal/platform/dbctx"
)

const (
	defaultContractUpdateReason = "contract updated"
	defaultContractCancelReason = "contract cancellation"
	sweepExpiredReason          = "contract expired"
	sweepAboutToExpireReason    = "contract about to expire"
)

type ContractAggregateDeps struct {
	Base  BaseDeps
	Clock datemath.Clock

	People    repos.PersonRepo
	Plans     repos.MembershipPlanRepo
	Contracts repos.ContractRepo
	History   repos.ContractHistoryRepo
}

type contractAggregate struct {
	deps ContractAggregateDeps
}

func NewContractAggregate(deps ContractAggregateDeps) domainagg.ContractAggregate {
	deps.Base = deps.Base.withDefaults()
	deps.Clock = datemath.Or(deps.Clock)
	return &contractAggregate{deps: deps}
}

func (a *contractAggregate) Policy() domainagg.Policy {
	return domainagg.ContractAggregatePolicy
}

func (a *contractAggregate) configured() bool {
	return a.deps.People != nil && a.deps.Plans != nil && a.deps.Contracts != nil && a.deps.History != nil
}

func (a *contractAggregate) Create(ctx context.Context, in domainagg.CreateContractInput) (domainagg.ContractWriteResult, error) {
	const op = "Membership.Contract.Create"
	var out domainagg.ContractWriteResult

	if in.PersonID == 0 || in.MembershipPlanID == 0 {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "person_id and membership_id are required", nil)
	}
	if in.StartDate.IsZero() {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing start date", nil)
	}
	if !a.configured() {
		return out, domainagg.NewError(domainagg.CodeInternal, op, "contract aggregate repos not configured", nil)
	}
	startDate := datemath.DateOnly(in.StartDate)
	now := a.deps.Clock.Now().UTC()

	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		// The lock scopes the open-contract check below to this person.
		person, err := a.deps.People.LockByID(dbc, in.PersonID)
		if err != nil {
			return err
		}
		if person == nil {
			return domainagg.NewError(domainagg.CodeNotFound, op, "person", nil)
		}
		plan, err := a.deps.Plans.GetByID(dbc, in.MembershipPlanID)
		if err != nil {
			return err
		}
		if plan == nil {
			return domainagg.NewError(domainagg.CodeNotFound, op, "membership", nil)
		}
		open, err := a.deps.Contracts.FindOpenByPersonID(dbc, person.ID)
		if err != nil {
			return err
		}
		if open != nil {
			return domainagg.NewError(domainagg.CodeConflict, op, "duplicate active contract", nil)
		}
		if !datemath.IsTodayOrLater(startDate, a.deps.Clock) {
			return domainagg.NewError(domainagg.CodeValidation, op, "start date in past", nil)
		}

		actor := in.ActorID
		row := &types.Contract{
			PersonID:         person.ID,
			MembershipPlanID: plan.ID,
			StartDate:        datatypes.Date(startDate),
			EndDate:          datatypes.Date(datemath.AddDays(startDate, plan.ValidityDays)),
			SnapshottedPrice: plan.Price,
			Status:           string(types.ContractActive),
			CreatedBy:        actor,
			UpdatedBy:        &actor,
		}
		if err := a.insertWithCode(dbc, row); err != nil {
			return err
		}
		if err := a.appendHistory(dbc, row.ID, nil, types.ContractActive, actor, now, "contract created", nil); err != nil {
			return err
		}

		out = domainagg.ContractWriteResult{
			ContractID:      row.ID,
			Code:            row.Code,
			Status:          types.ContractActive,
			Changed:         true,
			HistoryAppended: true,
		}
		return nil
	})
	return out, err
}

// contractChange is the write plan computed for one intent.
type contractChange struct {
	updates       map[string]interface{}
	newStatus     types.ContractStatus
	defaultReason string
	metadata      map[string]any
}

func (a *contractAggregate) Apply(ctx context.Context, in domainagg.ApplyContractIntentInput) (domainagg.ContractWriteResult, error) {
	const op = "Membership.Contract.Apply"
	var out domainagg.ContractWriteResult

	if in.ContractID == 0 {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing contract_id", nil)
	}
	if in.Intent == nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing contract intent", nil)
	}
	if !a.configured() {
		return out, domainagg.NewError(domainagg.CodeInternal, op, "contract aggregate repos not configured", nil)
	}
	now := a.deps.Clock.Now().UTC()

	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		c, err := a.deps.Contracts.LockByID(dbc, in.ContractID)
		if err != nil {
			return err
		}
		if c == nil {
			return domainagg.NewError(domainagg.CodeNotFound, op, "contract", nil)
		}
		oldStatus := types.ContractStatus(normalizeStatus(c.Status))

		change, err := a.plan(dbc, c, oldStatus, in.Intent, now)
		if err != nil {
			return err
		}
		if in.Reason != nil {
			change.updates["reason"] = *in.Reason
		}
		out = domainagg.ContractWriteResult{
			ContractID:     c.ID,
			Code:           c.Code,
			PreviousStatus: oldStatus,
			Status:         oldStatus,
		}
		if len(change.updates) == 0 {
			return nil
		}

		change.updates["updated_by"] = in.ActorID
		change.updates["updated_at"] = now
		if change.newStatus != oldStatus {
			ok, err := a.deps.Base.CASGuard.UpdateByStatus(dbc, "contract", c.ID, []string{string(oldStatus)}, change.updates)
			if err != nil {
				return err
			}
			if err := RequireCASSuccess(ok, "contract status changed concurrently"); err != nil {
				return err
			}
			reason := change.defaultReason
			if in.Reason != nil && strings.TrimSpace(*in.Reason) != "" {
				reason = *in.Reason
			}
			if err := a.appendHistory(dbc, c.ID, &oldStatus, change.newStatus, in.ActorID, now, reason, change.metadata); err != nil {
				return err
			}
			out.HistoryAppended = true
		} else if err := a.deps.Contracts.UpdateFields(dbc, c.ID, change.updates); err != nil {
			return err
		}
		if change.metadata != nil && !out.HistoryAppended {
			a.deps.Base.Log.Info("contract rescheduled", "contract_id", c.ID, "details", change.metadata)
		}
		out.Status = change.newStatus
		out.Changed = true
		return nil
	})
	return out, err
}

// plan validates the intent against the locked row and returns the field changes.
// An empty updates map means the intent is a no-op for this row.
func (a *contractAggregate) plan(dbc dbctx.Context, c *types.Contract, old types.ContractStatus, intent domainagg.ContractIntent, now time.Time) (contractChange, error) {
	const op = "Membership.Contract.Apply"
	ch := contractChange{
		updates:       map[string]interface{}{},
		newStatus:     old,
		defaultReason: defaultContractUpdateReason,
	}

	intent = normalizeIntent(intent, old)
	if old == types.ContractCancelled {
		if _, ok := intent.(domainagg.CancelIntent); ok {
			a.deps.Base.Log.Warn("contract already cancelled, ignoring", "contract_id", c.ID)
			return ch, nil
		}
		if _, ok := intent.(domainagg.AnnotateIntent); !ok {
			return ch, domainagg.NewError(domainagg.CodeValidation, op, "contract is cancelled", nil)
		}
	}

	switch it := intent.(type) {
	case domainagg.FreezeIntent:
		if old == types.ContractFrozen {
			return ch, nil
		}
		if err := RequireStatusAllowed(string(old), string(types.ContractActive), string(types.ContractAboutToExpire)); err != nil {
			return ch, err
		}
		ch.newStatus = types.ContractFrozen
		ch.updates["status"] = string(types.ContractFrozen)
		ch.updates["frozen_at"] = now
		ch.metadata = map[string]any{"frozen_at": now}

	case domainagg.UnfreezeIntent:
		if err := RequireStatusAllowed(string(old), string(types.ContractFrozen)); err != nil {
			return ch, err
		}
		if c.FrozenAt == nil {
			return ch, InvariantError(fmt.Sprintf("frozen contract %d has no frozen_at", c.ID))
		}
		frozenFor := now.Sub(*c.FrozenAt)
		oldEnd := datemath.DateOnly(c.End())
		newEnd := datemath.ShiftByDuration(oldEnd, frozenFor)
		ch.newStatus = types.ContractActive
		ch.updates["status"] = string(types.ContractActive)
		ch.updates["frozen_at"] = nil
		ch.updates["end_date"] = datatypes.Date(newEnd)
		ch.metadata = map[string]any{
			"frozen_at":         c.FrozenAt.UTC(),
			"frozen_seconds":    int64(frozenFor / time.Second),
			"shift_days":        datemath.DaysBetween(oldEnd, newEnd),
			"previous_end_date": datemath.DateKey(oldEnd, time.UTC),
			"end_date":          datemath.DateKey(newEnd, time.UTC),
		}

	case domainagg.RescheduleIntent:
		planID := c.MembershipPlanID
		if it.MembershipPlanID != nil {
			planID = *it.MembershipPlanID
		}
		plan, err := a.deps.Plans.GetByID(dbc, planID)
		if err != nil {
			return ch, err
		}
		if plan == nil {
			return ch, domainagg.NewError(domainagg.CodeNotFound, op, "membership", nil)
		}
		start := datemath.DateOnly(c.Start())
		if it.StartDate != nil {
			start = datemath.DateOnly(*it.StartDate)
		}
		end := datemath.AddDays(start, plan.ValidityDays)
		ch.updates["membership_plan_id"] = plan.ID
		ch.updates["snapshotted_price"] = plan.Price
		ch.updates["start_date"] = datatypes.Date(start)
		ch.updates["end_date"] = datatypes.Date(end)
		ch.metadata = map[string]any{
			"previous_membership_id": c.MembershipPlanID,
			"membership_id":          plan.ID,
			"previous_start_date":    datemath.DateKey(c.Start(), time.UTC),
			"start_date":             datemath.DateKey(start, time.UTC),
			"previous_end_date":      datemath.DateKey(c.End(), time.UTC),
			"end_date":               datemath.DateKey(end, time.UTC),
		}

	case domainagg.CancelIntent:
		ch.newStatus = types.ContractCancelled
		ch.defaultReason = defaultContractCancelReason
		ch.updates["status"] = string(types.ContractCancelled)
		if c.FrozenAt != nil {
			ch.updates["frozen_at"] = nil
		}

	case domainagg.SetStatusIntent:
		target := types.ContractStatus(normalizeStatus(string(it.Status)))
		if !target.Valid() {
			return ch, domainagg.NewError(domainagg.CodeValidation, op, "invalid contract status", nil)
		}
		if target == old {
			return ch, nil
		}
		ch.newStatus = target
		ch.updates["status"] = string(target)
		if c.FrozenAt != nil {
			ch.updates["frozen_at"] = nil
		}

	case domainagg.AnnotateIntent:

	default:
		return ch, domainagg.NewError(domainagg.CodeValidation, op, fmt.Sprintf("unsupported contract intent %q", intent.Kind()), nil)
	}
	return ch, nil
}

// normalizeIntent maps direct status intents onto their dedicated transitions.
func normalizeIntent(intent domainagg.ContractIntent, old types.ContractStatus) domainagg.ContractIntent {
	set, ok := intent.(domainagg.SetStatusIntent)
	if !ok {
		return intent
	}
	switch types.ContractStatus(normalizeStatus(string(set.Status))) {
	case types.ContractFrozen:
		return domainagg.FreezeIntent{}
	case types.ContractCancelled:
		return domainagg.CancelIntent{}
	case types.ContractActive:
		if old == types.ContractFrozen {
			return domainagg.UnfreezeIntent{}
		}
	}
	return intent
}

func (a *contractAggregate) SweepExpirations(ctx context.Context, in domainagg.SweepExpirationsInput) (domainagg.SweepExpirationsResult, error) {
	const op = "Membership.Contract.SweepExpirations"
	var out domainagg.SweepExpirationsResult
	if !a.configured() {
		return out, domainagg.NewError(domainagg.CodeInternal, op, "contract aggregate repos not configured", nil)
	}
	if in.WindowDays < 0 {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "window must be >= 0", nil)
	}
	now := a.deps.Clock.Now().UTC()
	today := datemath.DateOnly(in.Today)
	if in.Today.IsZero() {
		today = datemath.Today(a.deps.Clock)
	}

	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		lapsed, err := a.deps.Contracts.ListEndingOnOrBefore(dbc,
			[]string{string(types.ContractActive), string(types.ContractAboutToExpire)},
			datemath.AddDays(today, -1))
		if err != nil {
			return err
		}
		for _, c := range lapsed {
			moved, err := a.sweepOne(dbc, c, types.ContractExpired, sweepExpiredReason, in.ActorID, now)
			if err != nil {
				return err
			}
			if moved {
				out.Expired = append(out.Expired, c.ID)
			}
		}

		nearing, err := a.deps.Contracts.ListEndingOnOrBefore(dbc,
			[]string{string(types.ContractActive)},
			datemath.AddDays(today, in.WindowDays))
		if err != nil {
			return err
		}
		for _, c := range nearing {
			if datemath.DateOnly(c.End()).Before(today) {
				continue
			}
			moved, err := a.sweepOne(dbc, c, types.ContractAboutToExpire, sweepAboutToExpireReason, in.ActorID, now)
			if err != nil {
				return err
			}
			if moved {
				out.AboutToExpire = append(out.AboutToExpire, c.ID)
			}
		}
		return nil
	})
	return out, err
}

func (a *contractAggregate) sweepOne(dbc dbctx.Context, c *types.Contract, to types.ContractStatus, reason string, actorID uint, now time.Time) (bool, error) {
	from := types.ContractStatus(normalizeStatus(c.Status))
	ok, err := a.deps.Base.CASGuard.UpdateByStatus(dbc, "contract", c.ID, []string{string(from)}, map[string]any{
		"status":     string(to),
		"updated_at": now,
	})
	if err != nil || !ok {
		return false, err
	}
	meta := map[string]any{"end_date": datemath.DateKey(c.End(), time.UTC)}
	if err := a.appendHistory(dbc, c.ID, &from, to, actorID, now, reason, meta); err != nil {
		return false, err
	}
	return true, nil
}

func (a *contractAggregate) appendHistory(dbc dbctx.Context, contractID uint, prev *types.ContractStatus, next types.ContractStatus, actorID uint, at time.Time, reason string, metadata map[string]any) error {
	row := &types.ContractHistory{
		ContractID: contractID,
		NewStatus:  string(next),
		ChangedAt:  at,
		ChangedBy:  actorID,
		Reason:     reason,
	}
	if prev != nil {
		p := string(*prev)
		row.PreviousStatus = &p
	}
	if len(metadata) > 0 {
		raw, err := json.Marshal(metadata)
		if err != nil {
			return InvariantError(fmt.Sprintf("encode history metadata: %v", err))
		}
		row.Metadata = datatypes.JSON(raw)
	}
	_, err := a.deps.History.Create(dbc, []*types.ContractHistory{row})
	return err
}

func normalizeStatus(status string) string {
	return strings.ToLower(strings.TrimSpace(status))
}
