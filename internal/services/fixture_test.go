package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"gorm.io/gorm"

	dataagg "github.com/yungbote/gymflow-backend/internal/data/aggregates"
	"github.com/yungbote/gymflow-backend/internal/data/repos"
	repotest "github.com/yungbote/gymflow-backend/internal/data/repos/testutil"
	types "github.com/yungbote/gymflow-backend/internal/domain"
	domainagg "github.com/yungbote/gymflow-backend/internal/domain/aggregates"
	"github.com/yungbote/gymflow-backend/internal/platform/ctxutil"
	"github.com/yungbote/gymflow-backend/internal/platform/datemath"
	"github.com/yungbote/gymflow-backend/internal/platform/dbctx"
)

type serviceFixture struct {
	ctx      context.Context
	db       *gorm.DB
	clock    *datemath.FixedClock
	actor    *types.User
	notifier *recordingNotifier

	contracts ContractService
	schedule  ScheduleService
}

func newServiceFixture(t *testing.T, now time.Time) *serviceFixture {
	t.Helper()
	db := repotest.DB(t)
	log := repotest.Logger(t)
	clock := datemath.NewFixedClock(now)
	actor := repotest.SeedUser(t, context.Background(), db, true)

	userRepo := repos.NewUserRepo(db, log)
	personRepo := repos.NewPersonRepo(db, log)
	contractRepo := repos.NewContractRepo(db, log)
	historyRepo := repos.NewContractHistoryRepo(db, log)
	sessionRepo := repos.NewTrainingSessionRepo(db, log)

	base := dataagg.BaseDeps{DB: db, Log: log, Runner: dataagg.NewGormTxRunner(db), CASGuard: dataagg.NewCASGuard(db)}
	contractAgg := dataagg.NewContractAggregate(dataagg.ContractAggregateDeps{
		Base:      base,
		Clock:     clock,
		People:    personRepo,
		Plans:     repos.NewMembershipPlanRepo(db, log),
		Contracts: contractRepo,
		History:   historyRepo,
	})
	sessionAgg := dataagg.NewSessionAggregate(dataagg.SessionAggregateDeps{
		Base:      base,
		Clock:     clock,
		Users:     userRepo,
		Trainers:  repos.NewTrainerRepo(db, log),
		People:    personRepo,
		Contracts: contractRepo,
		Sessions:  sessionRepo,
	})

	notifier := &recordingNotifier{}
	f := &serviceFixture{
		ctx:      ctxutil.WithRequestData(context.Background(), &ctxutil.RequestData{UserID: actor.ID}),
		db:       db,
		clock:    clock,
		actor:    actor,
		notifier: notifier,
	}
	f.contracts = NewContractService(db, log, contractAgg, contractRepo, historyRepo, clock, nil, ContractServiceConfig{ExpiryWindowDays: 7})
	f.schedule = NewScheduleService(db, log, sessionAgg, sessionRepo, personRepo, userRepo, notifier, clock, nil, ScheduleServiceConfig{
		Location:      time.UTC,
		NotifyTimeout: time.Second,
	})
	return f
}

func (f *serviceFixture) dbc() dbctx.Context { return dbctx.Context{Ctx: f.ctx} }

func (f *serviceFixture) drain(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := f.schedule.Drain(ctx); err != nil {
		t.Fatalf("Drain: %v", err)
	}
}

// bookableClient seeds a client with an account and an active contract.
func (f *serviceFixture) bookableClient(t *testing.T, code string) *types.Person {
	t.Helper()
	plan := repotest.SeedPlan(t, f.ctx, f.db, 50, 30)
	client := repotest.SeedPerson(t, f.ctx, f.db, true)
	today := datemath.Today(f.clock)
	repotest.SeedContract(t, f.ctx, f.db, client.ID, plan.ID, f.actor.ID, code, types.ContractActive, today, datemath.AddDays(today, 30))
	return client
}

func codeOf(t *testing.T, err error) domainagg.ErrorCode {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error, got nil")
	}
	var aggErr *domainagg.Error
	if !errors.As(err, &aggErr) {
		t.Fatalf("expected *aggregates.Error, got %T: %v", err, err)
	}
	return aggErr.Code
}

type recordingNotifier struct {
	mu    sync.Mutex
	sent  []BookingConfirmation
	err   error
	panic bool
}

func (n *recordingNotifier) Channel() string { return "test" }

func (n *recordingNotifier) SendBookingConfirmation(_ context.Context, c BookingConfirmation) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, c)
	if n.panic {
		panic("notifier exploded")
	}
	return n.err
}

func (n *recordingNotifier) calls() []BookingConfirmation {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]BookingConfirmation(nil), n.sent...)
}
