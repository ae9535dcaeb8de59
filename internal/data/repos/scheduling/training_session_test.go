package scheduling

import (
	"context"
	"testing"
	"time"

	repotest "github.com/yungbote/gymflow-backend/internal/data/repos/testutil"
	types "github.com/yungbote/gymflow-backend/internal/domain"
	"github.com/yungbote/gymflow-backend/internal/platform/dbctx"
)

func TestFindConflictsPerResource(t *testing.T) {
	db := repotest.DB(t)
	ctx := context.Background()
	repo := NewTrainingSessionRepo(db, repotest.Logger(t))

	trainer := repotest.SeedTrainer(t, ctx, db, true, true)
	otherTrainer := repotest.SeedTrainer(t, ctx, db, true, true)
	client := repotest.SeedPerson(t, ctx, db, true)
	otherClient := repotest.SeedPerson(t, ctx, db, true)

	at := func(h, m int) time.Time { return time.Date(2025, 3, 3, h, m, 0, 0, time.UTC) }
	booked := repotest.SeedSession(t, ctx, db, trainer.ID, client.ID, at(10, 0), at(11, 0), types.SessionScheduled)
	repotest.SeedSession(t, ctx, db, trainer.ID, otherClient.ID, at(10, 0), at(11, 0), types.SessionCancelled)

	dbc := dbctx.Context{Ctx: ctx}
	cases := []struct {
		name      string
		q         ConflictQuery
		wantCount int
	}{
		{"same trainer overlap", ConflictQuery{Start: at(10, 30), End: at(11, 30), TrainerID: &trainer.ID, ClientID: &otherClient.ID}, 1},
		{"same client overlap", ConflictQuery{Start: at(10, 30), End: at(11, 30), TrainerID: &otherTrainer.ID, ClientID: &client.ID}, 1},
		{"touching boundary", ConflictQuery{Start: at(11, 0), End: at(12, 0), TrainerID: &trainer.ID, ClientID: &client.ID}, 0},
		{"other resources", ConflictQuery{Start: at(10, 0), End: at(11, 0), TrainerID: &otherTrainer.ID, ClientID: &otherClient.ID}, 0},
		{"exclude self", ConflictQuery{Start: at(10, 0), End: at(11, 0), TrainerID: &trainer.ID, ClientID: &client.ID, ExcludeID: booked.ID}, 0},
		{"time only", ConflictQuery{Start: at(9, 0), End: at(10, 1)}, 1},
	}
	for _, tc := range cases {
		rows, err := repo.FindConflicts(dbc, tc.q)
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if len(rows) != tc.wantCount {
			t.Fatalf("%s: want=%d got=%d", tc.name, tc.wantCount, len(rows))
		}
		if tc.wantCount == 1 && rows[0].ID != booked.ID {
			t.Fatalf("%s: want session %d got %d", tc.name, booked.ID, rows[0].ID)
		}
	}
}

func TestListFiltersAndOrdersByStart(t *testing.T) {
	db := repotest.DB(t)
	ctx := context.Background()
	repo := NewTrainingSessionRepo(db, repotest.Logger(t))

	trainer := repotest.SeedTrainer(t, ctx, db, true, true)
	client := repotest.SeedPerson(t, ctx, db, true)
	at := func(d, h int) time.Time { return time.Date(2025, 3, d, h, 0, 0, 0, time.UTC) }
	late := repotest.SeedSession(t, ctx, db, trainer.ID, client.ID, at(4, 15), at(4, 16), types.SessionScheduled)
	early := repotest.SeedSession(t, ctx, db, trainer.ID, client.ID, at(4, 8), at(4, 9), types.SessionScheduled)
	repotest.SeedSession(t, ctx, db, trainer.ID, client.ID, at(4, 10), at(4, 11), types.SessionCancelled)
	repotest.SeedSession(t, ctx, db, trainer.ID, client.ID, at(5, 10), at(5, 11), types.SessionScheduled)

	from, to := at(4, 0), at(5, 0)
	f := SessionFilter{TrainerID: trainer.ID, From: &from, To: &to}
	rows, err := repo.List(dbctx.Context{Ctx: ctx}, f, 0, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(rows) != 2 || rows[0].ID != early.ID || rows[1].ID != late.ID {
		t.Fatalf("unexpected rows: %+v", rows)
	}
	if rows[0].Trainer == nil || rows[0].Client == nil {
		t.Fatalf("associations not loaded")
	}
	n, err := repo.Count(dbctx.Context{Ctx: ctx}, f)
	if err != nil || n != 2 {
		t.Fatalf("Count: want=2 got=%d err=%v", n, err)
	}
	f.IncludeCancelled = true
	if n, _ := repo.Count(dbctx.Context{Ctx: ctx}, f); n != 3 {
		t.Fatalf("Count with cancelled: want=3 got=%d", n)
	}
}

func TestListFiltersByDerivedStatus(t *testing.T) {
	db := repotest.DB(t)
	ctx := context.Background()
	repo := NewTrainingSessionRepo(db, repotest.Logger(t))

	trainer := repotest.SeedTrainer(t, ctx, db, true, true)
	client := repotest.SeedPerson(t, ctx, db, true)
	at := func(h int) time.Time { return time.Date(2025, 3, 4, h, 0, 0, 0, time.UTC) }
	now := at(12)
	past := repotest.SeedSession(t, ctx, db, trainer.ID, client.ID, at(8), at(9), types.SessionScheduled)
	done := repotest.SeedSession(t, ctx, db, trainer.ID, client.ID, at(14), at(15), types.SessionCompleted)
	live := repotest.SeedSession(t, ctx, db, trainer.ID, client.ID, at(11), at(13), types.SessionScheduled)
	next := repotest.SeedSession(t, ctx, db, trainer.ID, client.ID, at(16), at(17), types.SessionScheduled)
	repotest.SeedSession(t, ctx, db, trainer.ID, client.ID, at(18), at(19), types.SessionCancelled)

	cases := []struct {
		status types.SessionStatus
		want   []uint
	}{
		{types.SessionCompleted, []uint{past.ID, done.ID}},
		{types.SessionInProgress, []uint{live.ID}},
		{types.SessionScheduled, []uint{next.ID}},
	}
	for _, tc := range cases {
		rows, err := repo.List(dbctx.Context{Ctx: ctx}, SessionFilter{Status: string(tc.status), Now: now}, 0, 0)
		if err != nil {
			t.Fatalf("List %s: %v", tc.status, err)
		}
		if len(rows) != len(tc.want) {
			t.Fatalf("%s: want=%v got=%d rows", tc.status, tc.want, len(rows))
		}
		for i := range tc.want {
			if rows[i].ID != tc.want[i] {
				t.Fatalf("%s: want=%v got id %d at %d", tc.status, tc.want, rows[i].ID, i)
			}
		}
	}
}
