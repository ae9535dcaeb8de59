package services

import (
	"errors"
	"testing"
	"time"

	repotest "github.com/yungbote/gymflow-backend/internal/data/repos/testutil"
	types "github.com/yungbote/gymflow-backend/internal/domain"
	domainagg "github.com/yungbote/gymflow-backend/internal/domain/aggregates"
	"github.com/yungbote/gymflow-backend/internal/platform/pointers"
)

func hour(day, h int) time.Time { return time.Date(2025, 3, day, h, 0, 0, 0, time.UTC) }

func TestScheduleServiceCreateSendsConfirmation(t *testing.T) {
	f := newServiceFixture(t, hour(1, 8))
	trainer := repotest.SeedTrainer(t, f.ctx, f.db, true, true)
	client := f.bookableClient(t, "C0001")

	s, err := f.schedule.Create(f.dbc(), CreateSessionRequest{
		TrainerUserID:  trainer.ID,
		ClientPersonID: client.ID,
		Title:          "Leg day",
		Start:          hour(3, 10),
		End:            hour(3, 11),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if s.Status != string(types.SessionScheduled) || s.Trainer == nil || s.Client == nil {
		t.Fatalf("created: status=%s trainer=%v client=%v", s.Status, s.Trainer, s.Client)
	}
	f.drain(t)

	sent := f.notifier.calls()
	if len(sent) != 1 {
		t.Fatalf("confirmations: want=1 got=%d", len(sent))
	}
	c := sent[0]
	if c.SessionID != s.ID || c.Title != "Leg day" || c.ClientEmail != client.Email || c.TrainerName != trainer.FullName() {
		t.Fatalf("confirmation: got %+v", c)
	}
	if !c.Start.Equal(hour(3, 10)) || !c.End.Equal(hour(3, 11)) {
		t.Fatalf("confirmation window: got %s..%s", c.Start, c.End)
	}
}

func TestScheduleServiceNotificationFailureKeepsBooking(t *testing.T) {
	for _, tc := range []struct {
		name  string
		err   error
		panic bool
	}{
		{name: "error", err: errors.New("smtp down")},
		{name: "panic", panic: true},
	} {
		t.Run(tc.name, func(t *testing.T) {
			f := newServiceFixture(t, hour(1, 8))
			f.notifier.err = tc.err
			f.notifier.panic = tc.panic
			trainer := repotest.SeedTrainer(t, f.ctx, f.db, true, true)
			client := f.bookableClient(t, "C0001")

			s, err := f.schedule.Create(f.dbc(), CreateSessionRequest{
				TrainerUserID: trainer.ID, ClientPersonID: client.ID, Title: "Cardio",
				Start: hour(4, 9), End: hour(4, 10),
			})
			if err != nil {
				t.Fatalf("Create: %v", err)
			}
			f.drain(t)
			if len(f.notifier.calls()) != 1 {
				t.Fatalf("notifier should have been called once")
			}
			if _, err := f.schedule.Get(f.dbc(), s.ID); err != nil {
				t.Fatalf("booking should survive notifier failure: %v", err)
			}
		})
	}
}

func TestScheduleServiceConflictCarriesSessions(t *testing.T) {
	f := newServiceFixture(t, hour(1, 8))
	trainer := repotest.SeedTrainer(t, f.ctx, f.db, true, true)
	a := f.bookableClient(t, "C0001")
	b := f.bookableClient(t, "C0002")

	first, err := f.schedule.Create(f.dbc(), CreateSessionRequest{TrainerUserID: trainer.ID, ClientPersonID: a.ID, Title: "A", Start: hour(3, 10), End: hour(3, 11)})
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	_, err = f.schedule.Create(f.dbc(), CreateSessionRequest{TrainerUserID: trainer.ID, ClientPersonID: b.ID, Title: "B", Start: hour(3, 10).Add(30 * time.Minute), End: hour(3, 11).Add(30 * time.Minute)})
	if codeOf(t, err) != domainagg.CodeConflict {
		t.Fatalf("overlap: want conflict got %v", err)
	}
	hits := domainagg.ConflictsOf(err)
	if len(hits) != 1 || hits[0].ID != first.ID {
		t.Fatalf("conflicts: want [%d] got %d rows", first.ID, len(hits))
	}
	if _, err := f.schedule.Create(f.dbc(), CreateSessionRequest{TrainerUserID: trainer.ID, ClientPersonID: b.ID, Title: "B", Start: hour(3, 11), End: hour(3, 12)}); err != nil {
		t.Fatalf("touching interval should book: %v", err)
	}
	f.drain(t)
}

func TestScheduleServiceUpdateAndCancel(t *testing.T) {
	f := newServiceFixture(t, hour(1, 8))
	trainer := repotest.SeedTrainer(t, f.ctx, f.db, true, true)
	client := f.bookableClient(t, "C0001")
	s, err := f.schedule.Create(f.dbc(), CreateSessionRequest{TrainerUserID: trainer.ID, ClientPersonID: client.ID, Title: "Mobility", Start: hour(5, 7), End: hour(5, 8)})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	s, err = f.schedule.Update(f.dbc(), s.ID, domainagg.SessionPatch{
		Title: pointers.String("Mobility II"),
		End:   pointers.Time(hour(5, 9)),
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if s.Title != "Mobility II" || !s.EndTime.Equal(hour(5, 9)) {
		t.Fatalf("updated: title=%q end=%s", s.Title, s.EndTime)
	}

	s, err = f.schedule.Cancel(f.dbc(), s.ID)
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if s.Status != string(types.SessionCancelled) {
		t.Fatalf("status: want=cancelled got=%s", s.Status)
	}
	if _, err := f.schedule.Update(f.dbc(), s.ID, domainagg.SessionPatch{Title: pointers.String("x")}); codeOf(t, err) != domainagg.CodeValidation {
		t.Fatalf("update cancelled: want validation got %v", err)
	}
	if _, err := f.schedule.Cancel(f.dbc(), s.ID+50); codeOf(t, err) != domainagg.CodeNotFound {
		t.Fatalf("cancel missing: want not_found got %v", err)
	}
	f.drain(t)
}

func TestScheduleServiceCheckAvailability(t *testing.T) {
	f := newServiceFixture(t, hour(1, 8))
	busy := repotest.SeedTrainer(t, f.ctx, f.db, true, true)
	free := repotest.SeedTrainer(t, f.ctx, f.db, true, true)
	client := repotest.SeedPerson(t, f.ctx, f.db, true)
	booked := repotest.SeedSession(t, f.ctx, f.db, busy.ID, client.ID, hour(3, 10), hour(3, 11), types.SessionScheduled)
	repotest.SeedSession(t, f.ctx, f.db, busy.ID, client.ID, hour(3, 10), hour(3, 11), types.SessionCancelled)

	got, err := f.schedule.CheckAvailability(f.dbc(), AvailabilityQuery{Start: hour(3, 10).Add(30 * time.Minute), End: hour(3, 12)})
	if err != nil {
		t.Fatalf("CheckAvailability: %v", err)
	}
	if got.Available || len(got.Conflicts) != 1 || got.Conflicts[0].ID != booked.ID {
		t.Fatalf("coarse scan: got available=%v conflicts=%d", got.Available, len(got.Conflicts))
	}

	got, err = f.schedule.CheckAvailability(f.dbc(), AvailabilityQuery{Start: hour(3, 10), End: hour(3, 11), TrainerID: &free.ID})
	if err != nil {
		t.Fatalf("CheckAvailability trainer: %v", err)
	}
	if !got.Available || len(got.Conflicts) != 0 {
		t.Fatalf("free trainer: got available=%v conflicts=%d", got.Available, len(got.Conflicts))
	}

	got, err = f.schedule.CheckAvailability(f.dbc(), AvailabilityQuery{Start: hour(3, 11), End: hour(3, 12), TrainerID: &busy.ID})
	if err != nil || !got.Available {
		t.Fatalf("touching interval: available=%v err=%v", got.Available, err)
	}

	if _, err := f.schedule.CheckAvailability(f.dbc(), AvailabilityQuery{Start: hour(3, 11), End: hour(3, 11)}); codeOf(t, err) != domainagg.CodeValidation {
		t.Fatalf("empty interval: want validation got %v", err)
	}
}

func TestScheduleServiceCalendarsProjectStatus(t *testing.T) {
	// Wednesday 10:30: Monday's session is over, Wednesday's is running.
	f := newServiceFixture(t, hour(5, 8))
	trainer := repotest.SeedTrainer(t, f.ctx, f.db, true, true)
	other := repotest.SeedTrainer(t, f.ctx, f.db, true, true)
	client := repotest.SeedPerson(t, f.ctx, f.db, true)

	monday := repotest.SeedSession(t, f.ctx, f.db, trainer.ID, client.ID, hour(3, 9), hour(3, 10), types.SessionScheduled)
	repotest.SeedSession(t, f.ctx, f.db, trainer.ID, client.ID, hour(3, 12), hour(3, 13), types.SessionCancelled)
	wednesday := repotest.SeedSession(t, f.ctx, f.db, trainer.ID, client.ID, hour(5, 10), hour(5, 11), types.SessionScheduled)
	nextMonday := repotest.SeedSession(t, f.ctx, f.db, trainer.ID, client.ID, hour(10, 9), hour(10, 10), types.SessionScheduled)
	repotest.SeedSession(t, f.ctx, f.db, other.ID, client.ID, hour(5, 15), hour(5, 16), types.SessionScheduled)
	f.clock.Set(hour(5, 10).Add(30 * time.Minute))

	day, err := f.schedule.Daily(f.dbc(), mustDate(t, "2025-03-03"), CalendarFilter{})
	if err != nil {
		t.Fatalf("Daily: %v", err)
	}
	if len(day) != 1 || day[0].ID != monday.ID || day[0].Status != string(types.SessionCompleted) {
		t.Fatalf("daily: got %d rows", len(day))
	}

	week, err := f.schedule.Weekly(f.dbc(), mustDate(t, "2025-03-06"), CalendarFilter{TrainerID: trainer.ID})
	if err != nil {
		t.Fatalf("Weekly: %v", err)
	}
	if len(week) != 2 || week[0].ID != monday.ID || week[1].ID != wednesday.ID {
		t.Fatalf("weekly: got %d rows", len(week))
	}
	if week[1].Status != string(types.SessionInProgress) {
		t.Fatalf("wednesday status: want=in_progress got=%s", week[1].Status)
	}

	month, err := f.schedule.Monthly(f.dbc(), mustDate(t, "2025-03-20"), CalendarFilter{TrainerID: trainer.ID})
	if err != nil {
		t.Fatalf("Monthly: %v", err)
	}
	if len(month) != 3 || month[2].ID != nextMonday.ID || month[2].Status != string(types.SessionScheduled) {
		t.Fatalf("monthly: got %d rows", len(month))
	}

	var stored types.TrainingSession
	if err := f.db.First(&stored, monday.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if stored.Status != string(types.SessionScheduled) {
		t.Fatalf("projection must not persist: stored=%s", stored.Status)
	}

	mine, err := f.schedule.TrainerSchedule(f.dbc(), other.ID, nil, nil)
	if err != nil || len(mine) != 1 {
		t.Fatalf("trainer schedule: rows=%d err=%v", len(mine), err)
	}
	theirs, err := f.schedule.ClientSchedule(f.dbc(), client.ID, pointers.Time(hour(5, 0)), pointers.Time(hour(6, 0)))
	if err != nil || len(theirs) != 2 {
		t.Fatalf("client schedule: rows=%d err=%v", len(theirs), err)
	}
	if _, err := f.schedule.ClientSchedule(f.dbc(), client.ID+99, nil, nil); codeOf(t, err) != domainagg.CodeNotFound {
		t.Fatalf("unknown client: want not_found got %v", err)
	}
	if _, err := f.schedule.TrainerSchedule(f.dbc(), other.ID+99, nil, nil); codeOf(t, err) != domainagg.CodeNotFound {
		t.Fatalf("unknown trainer: want not_found got %v", err)
	}
}

func TestScheduleServiceListByDerivedStatus(t *testing.T) {
	f := newServiceFixture(t, hour(5, 12))
	trainer := repotest.SeedTrainer(t, f.ctx, f.db, true, true)
	client := repotest.SeedPerson(t, f.ctx, f.db, true)
	for d := 1; d <= 4; d++ {
		repotest.SeedSession(t, f.ctx, f.db, trainer.ID, client.ID, hour(d, 9), hour(d, 10), types.SessionScheduled)
	}
	repotest.SeedSession(t, f.ctx, f.db, trainer.ID, client.ID, hour(9, 9), hour(9, 10), types.SessionScheduled)

	rows, page, err := f.schedule.List(f.dbc(), SessionListQuery{Status: "completed", Page: PageRequest{Page: 1, Limit: 3}})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(rows) != 3 || page.Total != 4 || page.TotalPages != 2 {
		t.Fatalf("completed page: rows=%d page=%+v", len(rows), page)
	}
	for _, r := range rows {
		if r.Status != string(types.SessionCompleted) {
			t.Fatalf("row %d: want completed got %s", r.ID, r.Status)
		}
	}

	rows, page, err = f.schedule.List(f.dbc(), SessionListQuery{Status: "scheduled"})
	if err != nil || len(rows) != 1 || page.Total != 1 {
		t.Fatalf("scheduled: rows=%d total=%d err=%v", len(rows), page.Total, err)
	}

	if _, _, err := f.schedule.List(f.dbc(), SessionListQuery{Status: "done"}); codeOf(t, err) != domainagg.CodeValidation {
		t.Fatalf("bad status: want validation got %v", err)
	}
}
