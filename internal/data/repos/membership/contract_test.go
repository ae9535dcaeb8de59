package membership

import (
	"context"
	"testing"
	"time"

	repotest "github.com/yungbote/gymflow-backend/internal/data/repos/testutil"
	types "github.com/yungbote/gymflow-backend/internal/domain"
	"github.com/yungbote/gymflow-backend/internal/platform/dbctx"
)

func day(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

func TestContractRepoLastCodeOrdersByLengthThenValue(t *testing.T) {
	db := repotest.DB(t)
	ctx := context.Background()
	log := repotest.Logger(t)
	repo := NewContractRepo(db, log)

	actor := repotest.SeedUser(t, ctx, db, true)
	plan := repotest.SeedPlan(t, ctx, db, 50, 30)
	for i, code := range []string{"C9999", "C10000", "C0002"} {
		p := repotest.SeedPerson(t, ctx, db, false)
		repotest.SeedContract(t, ctx, db, p.ID, plan.ID, actor.ID, code, types.ContractExpired, day(2024, 1, 1+i), day(2024, 2, 1))
	}

	got, err := repo.LastCode(dbctx.Context{Ctx: ctx})
	if err != nil {
		t.Fatalf("LastCode: %v", err)
	}
	if got != "C10000" {
		t.Fatalf("LastCode: want=C10000 got=%s", got)
	}
	maxID, err := repo.MaxID(dbctx.Context{Ctx: ctx})
	if err != nil {
		t.Fatalf("MaxID: %v", err)
	}
	if maxID != 3 {
		t.Fatalf("MaxID: want=3 got=%d", maxID)
	}
}

func TestContractRepoLastCodeEmptyTable(t *testing.T) {
	db := repotest.DB(t)
	repo := NewContractRepo(db, repotest.Logger(t))
	got, err := repo.LastCode(dbctx.Context{Ctx: context.Background()})
	if err != nil || got != "" {
		t.Fatalf("LastCode on empty table: got=%q err=%v", got, err)
	}
}

func TestOpenContractUniqueIndex(t *testing.T) {
	db := repotest.DB(t)
	ctx := context.Background()
	repo := NewContractRepo(db, repotest.Logger(t))

	actor := repotest.SeedUser(t, ctx, db, true)
	plan := repotest.SeedPlan(t, ctx, db, 50, 30)
	person := repotest.SeedPerson(t, ctx, db, false)
	repotest.SeedContract(t, ctx, db, person.ID, plan.ID, actor.ID, "C0001", types.ContractFrozen, day(2025, 1, 1), day(2025, 1, 31))
	repotest.SeedContract(t, ctx, db, person.ID, plan.ID, actor.ID, "C0002", types.ContractCancelled, day(2025, 1, 1), day(2025, 1, 31))

	second := &types.Contract{
		Code:             "C0003",
		PersonID:         person.ID,
		MembershipPlanID: plan.ID,
		Status:           string(types.ContractActive),
		CreatedBy:        actor.ID,
	}
	if err := repo.Create(dbctx.Context{Ctx: ctx}, second); err == nil {
		t.Fatalf("expected unique violation for a second open contract")
	}

	open, err := repo.FindOpenByPersonID(dbctx.Context{Ctx: ctx}, person.ID)
	if err != nil {
		t.Fatalf("FindOpenByPersonID: %v", err)
	}
	if open == nil || open.Code != "C0001" {
		t.Fatalf("open contract: want=C0001 got=%v", open)
	}
	bookable, err := repo.HasBookableContract(dbctx.Context{Ctx: ctx}, person.ID)
	if err != nil {
		t.Fatalf("HasBookableContract: %v", err)
	}
	if bookable {
		t.Fatalf("frozen contracts are not bookable")
	}
}

func TestContractRepoListEndingOnOrBefore(t *testing.T) {
	db := repotest.DB(t)
	ctx := context.Background()
	repo := NewContractRepo(db, repotest.Logger(t))

	actor := repotest.SeedUser(t, ctx, db, true)
	plan := repotest.SeedPlan(t, ctx, db, 50, 30)
	mk := func(code string, status types.ContractStatus, end time.Time) *types.Contract {
		p := repotest.SeedPerson(t, ctx, db, false)
		return repotest.SeedContract(t, ctx, db, p.ID, plan.ID, actor.ID, code, status, end.AddDate(0, 0, -30), end)
	}
	early := mk("C0001", types.ContractActive, day(2025, 3, 1))
	onDay := mk("C0002", types.ContractActive, day(2025, 3, 10))
	mk("C0003", types.ContractActive, day(2025, 3, 11))
	mk("C0004", types.ContractCancelled, day(2025, 3, 1))

	rows, err := repo.ListEndingOnOrBefore(dbctx.Context{Ctx: ctx}, []string{string(types.ContractActive)}, day(2025, 3, 10))
	if err != nil {
		t.Fatalf("ListEndingOnOrBefore: %v", err)
	}
	if len(rows) != 2 || rows[0].ID != early.ID || rows[1].ID != onDay.ID {
		t.Fatalf("unexpected rows: %+v", rows)
	}
}

func TestContractRepoJoinedHistoryNewestFirst(t *testing.T) {
	db := repotest.DB(t)
	ctx := context.Background()
	log := repotest.Logger(t)
	repo := NewContractRepo(db, log)
	history := NewContractHistoryRepo(db, log)

	actor := repotest.SeedUser(t, ctx, db, true)
	plan := repotest.SeedPlan(t, ctx, db, 50, 30)
	person := repotest.SeedPerson(t, ctx, db, false)
	c := repotest.SeedContract(t, ctx, db, person.ID, plan.ID, actor.ID, "C0001", types.ContractFrozen, day(2025, 1, 1), day(2025, 1, 31))

	active := string(types.ContractActive)
	base := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	if _, err := history.Create(dbctx.Context{Ctx: ctx}, []*types.ContractHistory{
		{ContractID: c.ID, NewStatus: active, ChangedAt: base, ChangedBy: actor.ID},
		{ContractID: c.ID, PreviousStatus: &active, NewStatus: string(types.ContractFrozen), ChangedAt: base.Add(time.Hour), ChangedBy: actor.ID},
	}); err != nil {
		t.Fatalf("history create: %v", err)
	}

	joined, err := repo.GetJoinedByID(dbctx.Context{Ctx: ctx}, c.ID)
	if err != nil {
		t.Fatalf("GetJoinedByID: %v", err)
	}
	if joined.Person == nil || joined.Plan == nil || joined.Creator == nil {
		t.Fatalf("associations not loaded: %+v", joined)
	}
	if len(joined.History) != 2 || joined.History[0].NewStatus != string(types.ContractFrozen) {
		t.Fatalf("history order: %+v", joined.History)
	}
	if joined.History[0].ActorName != actor.FullName() {
		t.Fatalf("actor name: want=%q got=%q", actor.FullName(), joined.History[0].ActorName)
	}

	n, err := history.CountByContractID(dbctx.Context{Ctx: ctx}, c.ID)
	if err != nil || n != 2 {
		t.Fatalf("CountByContractID: want=2 got=%d err=%v", n, err)
	}
}

func TestContractRepoMissingRowsReturnNil(t *testing.T) {
	db := repotest.DB(t)
	repo := NewContractRepo(db, repotest.Logger(t))
	row, err := repo.GetByID(dbctx.Context{Ctx: context.Background()}, 404)
	if err != nil || row != nil {
		t.Fatalf("GetByID missing: row=%v err=%v", row, err)
	}
}
