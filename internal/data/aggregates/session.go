package aggregates

import (
	"context"
	"strings"
	"time"

	"github.com/yungbote/gymflow-backend/internal/data/repos"
	types "github.com/yungbote/gymflow-backend/internal/domain"
	domainagg "github.com/yungbote/gymflow-backend/internal/domain/aggregates"
	"github.com/yungbote/gymflow-backend/internal/platform/datemath"
	"github.com/yungbote/gymflow-backend/internal/platform/dbctx"
)

type SessionAggregateDeps struct {
	Base  BaseDeps
	Clock datemath.Clock

	Users     repos.UserRepo
	Trainers  repos.TrainerRepo
	People    repos.PersonRepo
	Contracts repos.ContractRepo
	Sessions  repos.TrainingSessionRepo
}

type sessionAggregate struct {
	deps SessionAggregateDeps
}

func NewSessionAggregate(deps SessionAggregateDeps) domainagg.SessionAggregate {
	deps.Base = deps.Base.withDefaults()
	deps.Clock = datemath.Or(deps.Clock)
	return &sessionAggregate{deps: deps}
}

func (a *sessionAggregate) Policy() domainagg.Policy {
	return domainagg.SessionAggregatePolicy
}

func (a *sessionAggregate) configured() bool {
	return a.deps.Users != nil && a.deps.Trainers != nil && a.deps.People != nil &&
		a.deps.Contracts != nil && a.deps.Sessions != nil
}

func (a *sessionAggregate) Create(ctx context.Context, in domainagg.CreateSessionInput) (domainagg.SessionWriteResult, error) {
	const op = "Scheduling.Session.Create"
	var out domainagg.SessionWriteResult

	title := strings.TrimSpace(in.Title)
	if title == "" {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing title", nil)
	}
	if in.TrainerUserID == 0 || in.ClientPersonID == 0 {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "trainer_id and client_id are required", nil)
	}
	if !a.configured() {
		return out, domainagg.NewError(domainagg.CodeInternal, op, "session aggregate repos not configured", nil)
	}
	start, end := in.Start.UTC(), in.End.UTC()
	now := a.deps.Clock.Now()

	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		if start.Before(now) {
			return domainagg.NewError(domainagg.CodeValidation, op, "start time in past", nil)
		}
		if !end.After(start) {
			return domainagg.NewError(domainagg.CodeValidation, op, "end time must be after start time", nil)
		}
		if err := a.requireBookableTrainer(dbc, op, in.TrainerUserID); err != nil {
			return err
		}
		if err := a.requireBookableClient(dbc, op, in.ClientPersonID); err != nil {
			return err
		}
		if err := a.requireNoConflicts(dbc, op, start, end, in.TrainerUserID, in.ClientPersonID, 0); err != nil {
			return err
		}

		row := &types.TrainingSession{
			Title:       title,
			Description: strings.TrimSpace(in.Description),
			Notes:       strings.TrimSpace(in.Notes),
			StartTime:   start,
			EndTime:     end,
			TrainerID:   in.TrainerUserID,
			ClientID:    in.ClientPersonID,
			Status:      string(types.SessionScheduled),
		}
		if err := a.deps.Sessions.Create(dbc, row); err != nil {
			return err
		}
		out = domainagg.SessionWriteResult{
			SessionID: row.ID,
			Status:    types.SessionScheduled,
			Changed:   true,
			Session:   row,
		}
		return nil
	})
	return out, err
}

func (a *sessionAggregate) Update(ctx context.Context, in domainagg.UpdateSessionInput) (domainagg.SessionWriteResult, error) {
	const op = "Scheduling.Session.Update"
	var out domainagg.SessionWriteResult

	if in.SessionID == 0 {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing session_id", nil)
	}
	if in.Patch.Empty() {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "empty session patch", nil)
	}
	if !a.configured() {
		return out, domainagg.NewError(domainagg.CodeInternal, op, "session aggregate repos not configured", nil)
	}
	p := in.Patch
	now := a.deps.Clock.Now()

	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		s, err := a.deps.Sessions.LockByID(dbc, in.SessionID)
		if err != nil {
			return err
		}
		if s == nil {
			return domainagg.NewError(domainagg.CodeNotFound, op, "session", nil)
		}
		current := types.DeriveSessionStatus(types.SessionStatus(s.Status), s.StartTime, s.EndTime, now)
		switch current {
		case types.SessionCancelled:
			return domainagg.NewError(domainagg.CodeValidation, op, "session is cancelled", nil)
		case types.SessionCompleted:
			return domainagg.NewError(domainagg.CodeValidation, op, "session is completed", nil)
		}
		if p.Start != nil && p.Start.Before(now) {
			return domainagg.NewError(domainagg.CodeValidation, op, "start time in past", nil)
		}

		start, end := s.StartTime.UTC(), s.EndTime.UTC()
		if p.Start != nil {
			start = p.Start.UTC()
		}
		if p.End != nil {
			end = p.End.UTC()
		}
		if !end.After(start) {
			return domainagg.NewError(domainagg.CodeValidation, op, "end time must be after start time", nil)
		}
		trainerID, clientID := s.TrainerID, s.ClientID
		if p.TrainerUserID != nil {
			trainerID = *p.TrainerUserID
		}
		if p.ClientPersonID != nil {
			clientID = *p.ClientPersonID
		}

		updates := map[string]interface{}{}
		if trainerID != s.TrainerID {
			if err := a.requireBookableTrainer(dbc, op, trainerID); err != nil {
				return err
			}
			updates["trainer_id"] = trainerID
		}
		if clientID != s.ClientID {
			if err := a.requireBookableClient(dbc, op, clientID); err != nil {
				return err
			}
			updates["client_id"] = clientID
		}
		timesChanged := !start.Equal(s.StartTime) || !end.Equal(s.EndTime)
		if timesChanged {
			updates["start_time"] = start
			updates["end_time"] = end
		}
		if timesChanged || len(updates) > 0 {
			if trainerID == s.TrainerID {
				if _, err := a.deps.Users.LockByID(dbc, trainerID); err != nil {
					return err
				}
			}
			if clientID == s.ClientID {
				if _, err := a.deps.People.LockByID(dbc, clientID); err != nil {
					return err
				}
			}
			if err := a.requireNoConflicts(dbc, op, start, end, trainerID, clientID, s.ID); err != nil {
				return err
			}
		}

		if p.Title != nil {
			title := strings.TrimSpace(*p.Title)
			if title == "" {
				return domainagg.NewError(domainagg.CodeValidation, op, "missing title", nil)
			}
			updates["title"] = title
		}
		if p.Description != nil {
			updates["description"] = strings.TrimSpace(*p.Description)
		}
		if p.Notes != nil {
			updates["notes"] = strings.TrimSpace(*p.Notes)
		}

		out = domainagg.SessionWriteResult{SessionID: s.ID, Status: types.SessionStatus(s.Status)}
		if len(updates) == 0 {
			return nil
		}
		updates["updated_at"] = now.UTC()
		if err := a.deps.Sessions.UpdateFields(dbc, s.ID, updates); err != nil {
			return err
		}
		out.Changed = true
		return nil
	})
	return out, err
}

func (a *sessionAggregate) Cancel(ctx context.Context, in domainagg.CancelSessionInput) (domainagg.SessionWriteResult, error) {
	const op = "Scheduling.Session.Cancel"
	var out domainagg.SessionWriteResult
	if in.SessionID == 0 {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing session_id", nil)
	}
	if a.deps.Sessions == nil {
		return out, domainagg.NewError(domainagg.CodeInternal, op, "session repo not configured", nil)
	}
	now := a.deps.Clock.Now().UTC()

	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		s, err := a.deps.Sessions.LockByID(dbc, in.SessionID)
		if err != nil {
			return err
		}
		if s == nil {
			return domainagg.NewError(domainagg.CodeNotFound, op, "session", nil)
		}
		out = domainagg.SessionWriteResult{SessionID: s.ID, Status: types.SessionCancelled}
		switch types.SessionStatus(s.Status) {
		case types.SessionCancelled:
			a.deps.Base.Log.Warn("session already cancelled, ignoring", "session_id", s.ID)
			return nil
		case types.SessionCompleted:
			return domainagg.NewError(domainagg.CodeValidation, op, "session is completed", nil)
		}
		ok, err := a.deps.Base.CASGuard.UpdateByStatus(dbc, "training_session", s.ID, []string{s.Status}, map[string]any{
			"status":     string(types.SessionCancelled),
			"updated_at": now,
		})
		if err != nil {
			return err
		}
		if err := RequireCASSuccess(ok, "session status changed concurrently"); err != nil {
			return err
		}
		out.Changed = true
		return nil
	})
	return out, err
}

// requireBookableTrainer locks the trainer's user row and checks both account and profile.
func (a *sessionAggregate) requireBookableTrainer(dbc dbctx.Context, op string, trainerUserID uint) error {
	u, err := a.deps.Users.LockByID(dbc, trainerUserID)
	if err != nil {
		return err
	}
	if u == nil {
		return domainagg.NewError(domainagg.CodeNotFound, op, "trainer user", nil)
	}
	if !u.Active {
		return domainagg.NewError(domainagg.CodeValidation, op, "trainer user is inactive", nil)
	}
	tr, err := a.deps.Trainers.GetByUserID(dbc, trainerUserID)
	if err != nil {
		return err
	}
	if tr == nil || !tr.Active {
		return domainagg.NewError(domainagg.CodeNotFound, op, "trainer", nil)
	}
	return nil
}

// requireBookableClient locks the client's person row and checks account and contract.
func (a *sessionAggregate) requireBookableClient(dbc dbctx.Context, op string, clientPersonID uint) error {
	person, err := a.deps.People.LockByID(dbc, clientPersonID)
	if err != nil {
		return err
	}
	if person == nil || person.UserID == nil {
		return domainagg.NewError(domainagg.CodeNotFound, op, "client", nil)
	}
	ok, err := a.deps.Contracts.HasBookableContract(dbc, person.ID)
	if err != nil {
		return err
	}
	if !ok {
		return domainagg.NewError(domainagg.CodeValidation, op, "no active contract", nil)
	}
	return nil
}

func (a *sessionAggregate) requireNoConflicts(dbc dbctx.Context, op string, start, end time.Time, trainerID, clientID, excludeID uint) error {
	hits, err := a.deps.Sessions.FindConflicts(dbc, repos.ConflictQuery{
		Start:     start,
		End:       end,
		TrainerID: &trainerID,
		ClientID:  &clientID,
		ExcludeID: excludeID,
	})
	if err != nil {
		return err
	}
	if len(hits) > 0 {
		return domainagg.NewSchedulingConflict(op, hits)
	}
	return nil
}
