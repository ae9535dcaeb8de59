package aggregates_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/yungbote/gymflow-backend/internal/data/aggregates"
	aggtest "github.com/yungbote/gymflow-backend/internal/data/aggregates/testutil"
	"github.com/yungbote/gymflow-backend/internal/data/repos"
	repotest "github.com/yungbote/gymflow-backend/internal/data/repos/testutil"
	types "github.com/yungbote/gymflow-backend/internal/domain"
	domainagg "github.com/yungbote/gymflow-backend/internal/domain/aggregates"
	"github.com/yungbote/gymflow-backend/internal/platform/datemath"
)

func TestContractCreateRollsBackOnCommitFailure(t *testing.T) {
	ctx := context.Background()
	db := repotest.DB(t)
	log := repotest.Logger(t)
	actor := repotest.SeedUser(t, ctx, db, true)
	person := repotest.SeedPerson(t, ctx, db, false)
	plan := repotest.SeedPlan(t, ctx, db, 30, 30)

	runner := &aggtest.InjectedTxRunner{DB: db, FailCommit: errors.New("commit lost")}
	agg := aggregates.NewContractAggregate(aggregates.ContractAggregateDeps{
		Base:      aggregates.BaseDeps{DB: db, Log: log, Runner: runner},
		Clock:     datemath.NewFixedClock(time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC)),
		People:    repos.NewPersonRepo(db, log),
		Plans:     repos.NewMembershipPlanRepo(db, log),
		Contracts: repos.NewContractRepo(db, log),
		History:   repos.NewContractHistoryRepo(db, log),
	})

	_, err := agg.Create(ctx, domainagg.CreateContractInput{
		PersonID:         person.ID,
		MembershipPlanID: plan.ID,
		StartDate:        time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		ActorID:          actor.ID,
	})
	if err == nil {
		t.Fatalf("expected commit failure")
	}
	if runner.RollbackCalls != 1 || runner.CommitCalls != 0 {
		t.Fatalf("runner calls: commits=%d rollbacks=%d", runner.CommitCalls, runner.RollbackCalls)
	}

	var contracts, history int64
	if err := db.Model(&types.Contract{}).Count(&contracts).Error; err != nil {
		t.Fatalf("count contracts: %v", err)
	}
	if err := db.Model(&types.ContractHistory{}).Count(&history).Error; err != nil {
		t.Fatalf("count history: %v", err)
	}
	if contracts != 0 || history != 0 {
		t.Fatalf("rolled back create left rows: contracts=%d history=%d", contracts, history)
	}
}
