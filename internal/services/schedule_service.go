package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"

	"github.com/yungbote/gymflow-backend/internal/data/repos"
	types "github.com/yungbote/gymflow-backend/internal/domain"
	domainagg "github.com/yungbote/gymflow-backend/internal/domain/aggregates"
	"github.com/yungbote/gymflow-backend/internal/domain/scheduling"
	"github.com/yungbote/gymflow-backend/internal/observability"
	"github.com/yungbote/gymflow-backend/internal/platform/datemath"
	"github.com/yungbote/gymflow-backend/internal/platform/dbctx"
	"github.com/yungbote/gymflow-backend/internal/platform/logger"
)

const defaultNotifyTimeout = 10 * time.Second

type CreateSessionRequest struct {
	TrainerUserID  uint
	ClientPersonID uint
	Title          string
	Description    string
	Notes          string
	Start          time.Time
	End            time.Time
}

type SessionListQuery struct {
	TrainerID        uint
	ClientID         uint
	From             *time.Time
	To               *time.Time
	Status           string
	IncludeCancelled bool
	Page             PageRequest
}

type AvailabilityQuery struct {
	Start     time.Time
	End       time.Time
	TrainerID *uint
}

type Availability struct {
	Available bool                     `json:"available"`
	Conflicts []*types.TrainingSession `json:"conflicts"`
}

// CalendarFilter narrows daily/weekly/monthly views to one trainer and/or client.
type CalendarFilter struct {
	TrainerID uint
	ClientID  uint
}

type ScheduleService interface {
	Create(dbc dbctx.Context, req CreateSessionRequest) (*types.TrainingSession, error)
	Update(dbc dbctx.Context, id uint, patch domainagg.SessionPatch) (*types.TrainingSession, error)
	Cancel(dbc dbctx.Context, id uint) (*types.TrainingSession, error)
	Get(dbc dbctx.Context, id uint) (*types.TrainingSession, error)
	List(dbc dbctx.Context, q SessionListQuery) ([]*types.TrainingSession, Pagination, error)

	CheckAvailability(dbc dbctx.Context, q AvailabilityQuery) (Availability, error)

	ClientSchedule(dbc dbctx.Context, clientID uint, from, to *time.Time) ([]*types.TrainingSession, error)
	TrainerSchedule(dbc dbctx.Context, trainerID uint, from, to *time.Time) ([]*types.TrainingSession, error)
	Daily(dbc dbctx.Context, date time.Time, f CalendarFilter) ([]*types.TrainingSession, error)
	Weekly(dbc dbctx.Context, date time.Time, f CalendarFilter) ([]*types.TrainingSession, error)
	Monthly(dbc dbctx.Context, date time.Time, f CalendarFilter) ([]*types.TrainingSession, error)

	// Drain waits for in-flight booking notifications or until ctx is done.
	Drain(ctx context.Context) error
}

type ScheduleServiceConfig struct {
	Location      *time.Location
	NotifyTimeout time.Duration
}

type scheduleService struct {
	db       *gorm.DB
	log      *logger.Logger
	agg      domainagg.SessionAggregate
	sessions repos.TrainingSessionRepo
	people   repos.PersonRepo
	users    repos.UserRepo
	notifier BookingNotifier
	clock    datemath.Clock
	metrics  *observability.Metrics
	cfg      ScheduleServiceConfig

	inflight sync.WaitGroup
}

func NewScheduleService(
	db *gorm.DB,
	baseLog *logger.Logger,
	agg domainagg.SessionAggregate,
	sessions repos.TrainingSessionRepo,
	people repos.PersonRepo,
	users repos.UserRepo,
	notifier BookingNotifier,
	clock datemath.Clock,
	metrics *observability.Metrics,
	cfg ScheduleServiceConfig,
) ScheduleService {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.NotifyTimeout <= 0 {
		cfg.NotifyTimeout = defaultNotifyTimeout
	}
	if notifier == nil {
		notifier = NewNoopBookingNotifier()
	}
	return &scheduleService{
		db:       db,
		log:      baseLog.With("service", "ScheduleService"),
		agg:      agg,
		sessions: sessions,
		people:   people,
		users:    users,
		notifier: notifier,
		clock:    datemath.Or(clock),
		metrics:  metrics,
		cfg:      cfg,
	}
}

func (s *scheduleService) Create(dbc dbctx.Context, req CreateSessionRequest) (out *types.TrainingSession, err error) {
	ctx, span := startSpan(dbc.Ctx, "ScheduleService.Create",
		attribute.Int64("trainer_id", int64(req.TrainerUserID)),
		attribute.Int64("client_id", int64(req.ClientPersonID)),
	)
	defer func() { endSpan(span, err) }()

	res, err := s.agg.Create(ctx, domainagg.CreateSessionInput{
		TrainerUserID:  req.TrainerUserID,
		ClientPersonID: req.ClientPersonID,
		Title:          req.Title,
		Description:    req.Description,
		Notes:          req.Notes,
		Start:          req.Start,
		End:            req.End,
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("session booked",
		"session_id", res.SessionID,
		"trainer_id", req.TrainerUserID,
		"client_id", req.ClientPersonID,
		"start", req.Start.UTC(),
	)

	out, err = s.reload(ctx, res.SessionID)
	if err != nil {
		return nil, err
	}
	s.notifyBooked(ctx, out)
	return out, nil
}

func (s *scheduleService) Update(dbc dbctx.Context, id uint, patch domainagg.SessionPatch) (out *types.TrainingSession, err error) {
	ctx, span := startSpan(dbc.Ctx, "ScheduleService.Update", attribute.Int64("session_id", int64(id)))
	defer func() { endSpan(span, err) }()

	res, err := s.agg.Update(ctx, domainagg.UpdateSessionInput{SessionID: id, Patch: patch})
	if err != nil {
		return nil, err
	}
	s.log.Info("session updated", "session_id", id, "changed", res.Changed)
	return s.reload(ctx, id)
}

func (s *scheduleService) Cancel(dbc dbctx.Context, id uint) (out *types.TrainingSession, err error) {
	ctx, span := startSpan(dbc.Ctx, "ScheduleService.Cancel", attribute.Int64("session_id", int64(id)))
	defer func() { endSpan(span, err) }()

	res, err := s.agg.Cancel(ctx, domainagg.CancelSessionInput{SessionID: id})
	if err != nil {
		return nil, err
	}
	if res.Changed {
		s.log.Info("session cancelled", "session_id", id)
	}
	return s.reload(ctx, id)
}

func (s *scheduleService) Get(dbc dbctx.Context, id uint) (*types.TrainingSession, error) {
	return s.reload(dbc.Ctx, id)
}

func (s *scheduleService) List(dbc dbctx.Context, q SessionListQuery) ([]*types.TrainingSession, Pagination, error) {
	const op = "Scheduling.Session.List"
	status := strings.ToLower(strings.TrimSpace(q.Status))
	if status != "" && !validSessionStatus(types.SessionStatus(status)) {
		return nil, Pagination{}, domainagg.NewError(domainagg.CodeValidation, op, "invalid session status", nil)
	}
	if q.From != nil && q.To != nil && !q.To.After(*q.From) {
		return nil, Pagination{}, domainagg.NewError(domainagg.CodeValidation, op, "to must be after from", nil)
	}
	now := s.clock.Now()
	f := repos.SessionFilter{
		TrainerID:        q.TrainerID,
		ClientID:         q.ClientID,
		From:             q.From,
		To:               q.To,
		Status:           status,
		Now:              now,
		IncludeCancelled: q.IncludeCancelled,
	}
	rows, page, err := loadPage(dbc.Ctx, q.Page,
		func(ctx context.Context, limit, offset int) ([]*types.TrainingSession, error) {
			return s.sessions.List(dbctx.Context{Ctx: ctx}, f, limit, offset)
		},
		func(ctx context.Context) (int64, error) {
			return s.sessions.Count(dbctx.Context{Ctx: ctx}, f)
		},
	)
	if err != nil {
		return nil, Pagination{}, domainagg.Wrap(domainagg.CodeInternal, op, err)
	}
	return scheduling.ProjectAll(rows, now), page, nil
}

func (s *scheduleService) CheckAvailability(dbc dbctx.Context, q AvailabilityQuery) (Availability, error) {
	const op = "Scheduling.Session.CheckAvailability"
	if q.Start.IsZero() || q.End.IsZero() {
		return Availability{}, domainagg.NewError(domainagg.CodeValidation, op, "start and end are required", nil)
	}
	if !q.End.After(q.Start) {
		return Availability{}, domainagg.NewError(domainagg.CodeValidation, op, "end must be after start", nil)
	}
	hits, err := s.sessions.FindConflicts(dbctx.Context{Ctx: dbc.Ctx}, repos.ConflictQuery{
		Start:     q.Start,
		End:       q.End,
		TrainerID: q.TrainerID,
	})
	if err != nil {
		return Availability{}, domainagg.Wrap(domainagg.CodeInternal, op, err)
	}
	conflicts := scheduling.ProjectAll(hits, s.clock.Now())
	return Availability{Available: len(conflicts) == 0, Conflicts: conflicts}, nil
}

func (s *scheduleService) ClientSchedule(dbc dbctx.Context, clientID uint, from, to *time.Time) ([]*types.TrainingSession, error) {
	const op = "Scheduling.Session.ClientSchedule"
	p, err := s.people.GetByID(dbctx.Context{Ctx: dbc.Ctx}, clientID)
	if err != nil {
		return nil, domainagg.Wrap(domainagg.CodeInternal, op, err)
	}
	if p == nil {
		return nil, domainagg.NewError(domainagg.CodeNotFound, op, "client not found", nil)
	}
	return s.calendar(dbc.Ctx, op, repos.SessionFilter{ClientID: clientID, From: from, To: to})
}

func (s *scheduleService) TrainerSchedule(dbc dbctx.Context, trainerID uint, from, to *time.Time) ([]*types.TrainingSession, error) {
	const op = "Scheduling.Session.TrainerSchedule"
	u, err := s.users.GetByID(dbctx.Context{Ctx: dbc.Ctx}, trainerID)
	if err != nil {
		return nil, domainagg.Wrap(domainagg.CodeInternal, op, err)
	}
	if u == nil {
		return nil, domainagg.NewError(domainagg.CodeNotFound, op, "trainer not found", nil)
	}
	return s.calendar(dbc.Ctx, op, repos.SessionFilter{TrainerID: trainerID, From: from, To: to})
}

func (s *scheduleService) Daily(dbc dbctx.Context, date time.Time, f CalendarFilter) ([]*types.TrainingSession, error) {
	from, to := datemath.DayBounds(date, s.cfg.Location)
	return s.calendar(dbc.Ctx, "Scheduling.Session.Daily", s.rangeFilter(f, from, to))
}

func (s *scheduleService) Weekly(dbc dbctx.Context, date time.Time, f CalendarFilter) ([]*types.TrainingSession, error) {
	from, to := datemath.WeekBounds(date, s.cfg.Location)
	return s.calendar(dbc.Ctx, "Scheduling.Session.Weekly", s.rangeFilter(f, from, to))
}

func (s *scheduleService) Monthly(dbc dbctx.Context, date time.Time, f CalendarFilter) ([]*types.TrainingSession, error) {
	from, to := datemath.MonthBounds(date, s.cfg.Location)
	return s.calendar(dbc.Ctx, "Scheduling.Session.Monthly", s.rangeFilter(f, from, to))
}

func (s *scheduleService) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *scheduleService) rangeFilter(f CalendarFilter, from, to time.Time) repos.SessionFilter {
	return repos.SessionFilter{TrainerID: f.TrainerID, ClientID: f.ClientID, From: &from, To: &to}
}

// calendar lists every non-cancelled row in range, start ascending, with derived statuses.
func (s *scheduleService) calendar(ctx context.Context, op string, f repos.SessionFilter) ([]*types.TrainingSession, error) {
	if f.From != nil && f.To != nil && !f.To.After(*f.From) {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "to must be after from", nil)
	}
	f.IncludeCancelled = false
	rows, err := s.sessions.List(dbctx.Context{Ctx: ctx}, f, 0, 0)
	if err != nil {
		return nil, domainagg.Wrap(domainagg.CodeInternal, op, err)
	}
	return scheduling.ProjectAll(rows, s.clock.Now()), nil
}

func (s *scheduleService) reload(ctx context.Context, id uint) (*types.TrainingSession, error) {
	const op = "Scheduling.Session.Get"
	row, err := s.sessions.GetJoinedByID(dbctx.Context{Ctx: ctx}, id)
	if err != nil {
		return nil, domainagg.Wrap(domainagg.CodeInternal, op, err)
	}
	if row == nil {
		return nil, domainagg.NewError(domainagg.CodeNotFound, op, "session not found", nil)
	}
	p := row.Projected(s.clock.Now())
	return &p, nil
}

// notifyBooked dispatches the confirmation on a detached context. The booking is
// already committed; failures are logged and counted only.
func (s *scheduleService) notifyBooked(parent context.Context, session *types.TrainingSession) {
	if session == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), s.cfg.NotifyTimeout)
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		defer cancel()
		start := time.Now()
		defer func() {
			if r := recover(); r != nil {
				s.metrics.ObserveNotification(s.notifier.Channel(), "panic", time.Since(start))
				s.log.Error("booking notification panicked", "session_id", session.ID, "panic", r)
			}
		}()

		conf, err := s.confirmationFor(ctx, session)
		if err != nil {
			s.log.Warn("booking notification skipped", "session_id", session.ID, "error", err)
			return
		}
		if err := s.notifier.SendBookingConfirmation(ctx, conf); err != nil {
			s.log.Warn("booking notification failed", "session_id", session.ID, "channel", s.notifier.Channel(), "error", err)
			return
		}
		s.log.Debug("booking notification sent", "session_id", session.ID, "channel", s.notifier.Channel())
	}()
}

func (s *scheduleService) confirmationFor(ctx context.Context, session *types.TrainingSession) (BookingConfirmation, error) {
	client, err := s.people.GetWithUserByID(dbctx.Context{Ctx: ctx}, session.ClientID)
	if err != nil {
		return BookingConfirmation{}, err
	}
	conf := BookingConfirmation{
		SessionID:      session.ID,
		Title:          session.Title,
		Start:          session.StartTime,
		End:            session.EndTime,
		ClientPersonID: session.ClientID,
		TrainerUserID:  session.TrainerID,
	}
	if client != nil {
		conf.ClientName = client.FullName()
		conf.ClientPhone = client.Phone
		conf.ClientEmail = client.Email
		if conf.ClientEmail == "" && client.User != nil {
			conf.ClientEmail = client.User.Email
		}
	}
	if session.Trainer != nil {
		conf.TrainerName = session.Trainer.FullName()
	}
	return conf, nil
}

func validSessionStatus(s types.SessionStatus) bool {
	switch s {
	case types.SessionScheduled, types.SessionInProgress, types.SessionCompleted, types.SessionCancelled:
		return true
	default:
		return false
	}
}
