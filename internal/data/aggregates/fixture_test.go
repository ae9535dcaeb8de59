package aggregates

import (
	"context"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/gymflow-backend/internal/data/repos"
	repotest "github.com/yungbote/gymflow-backend/internal/data/repos/testutil"
	domainagg "github.com/yungbote/gymflow-backend/internal/domain/aggregates"
	"github.com/yungbote/gymflow-backend/internal/platform/datemath"
)

type fixture struct {
	ctx   context.Context
	db    *gorm.DB
	clock *datemath.FixedClock
	hooks *spyHooks

	plans     repos.MembershipPlanRepo
	contracts repos.ContractRepo
	history   repos.ContractHistoryRepo
	sessions  repos.TrainingSessionRepo

	contractAgg domainagg.ContractAggregate
	sessionAgg  domainagg.SessionAggregate
}

func newFixture(t *testing.T, now time.Time) *fixture {
	t.Helper()
	db := repotest.DB(t)
	log := repotest.Logger(t)
	f := &fixture{
		ctx:       context.Background(),
		db:        db,
		clock:     datemath.NewFixedClock(now),
		hooks:     &spyHooks{},
		plans:     repos.NewMembershipPlanRepo(db, log),
		contracts: repos.NewContractRepo(db, log),
		history:   repos.NewContractHistoryRepo(db, log),
		sessions:  repos.NewTrainingSessionRepo(db, log),
	}
	base := BaseDeps{DB: db, Log: log, Runner: NewGormTxRunner(db), Hooks: f.hooks, CASGuard: NewCASGuard(db)}
	people := repos.NewPersonRepo(db, log)
	f.contractAgg = NewContractAggregate(ContractAggregateDeps{
		Base:      base,
		Clock:     f.clock,
		People:    people,
		Plans:     f.plans,
		Contracts: f.contracts,
		History:   f.history,
	})
	f.sessionAgg = NewSessionAggregate(SessionAggregateDeps{
		Base:      base,
		Clock:     f.clock,
		Users:     repos.NewUserRepo(db, log),
		Trainers:  repos.NewTrainerRepo(db, log),
		People:    people,
		Contracts: f.contracts,
		Sessions:  f.sessions,
	})
	return f
}

func at(h int) time.Time { return time.Date(2025, 3, 3, h, 0, 0, 0, time.UTC) }

func date(t *testing.T, raw string) time.Time {
	t.Helper()
	d, err := datemath.ParseDate(raw)
	if err != nil {
		t.Fatalf("ParseDate: %v", err)
	}
	return d
}

func count(t *testing.T, db *gorm.DB, model interface{}) int64 {
	t.Helper()
	var n int64
	if err := db.Model(model).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}
