package services

import (
	"context"
	"errors"
	"testing"
	"time"

	domainagg "github.com/yungbote/gymflow-backend/internal/domain/aggregates"
)

type countingSweeps struct {
	ContractService
	calls int
	err   error
	panic bool
}

func (c *countingSweeps) SweepExpirations(context.Context) (domainagg.SweepExpirationsResult, error) {
	c.calls++
	if c.panic {
		panic("sweep exploded")
	}
	return domainagg.SweepExpirationsResult{Expired: []uint{1}}, c.err
}

func TestNewContractSweeperSchedules(t *testing.T) {
	svc := &countingSweeps{}
	if _, err := NewContractSweeper(testLogger(t), svc, "not a cron line", time.UTC); err == nil {
		t.Fatalf("bad schedule should be rejected")
	}
	if _, err := NewContractSweeper(testLogger(t), nil, "", time.UTC); err == nil {
		t.Fatalf("nil service should be rejected")
	}
	s, err := NewContractSweeper(testLogger(t), svc, "  ", nil)
	if err != nil {
		t.Fatalf("default schedule: %v", err)
	}
	if s.schedule != defaultSweepSchedule || s.loc != time.UTC {
		t.Fatalf("defaults: schedule=%q loc=%v", s.schedule, s.loc)
	}

	s.Start()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)
}

func TestContractSweeperRunOnceSwallowsFailures(t *testing.T) {
	svc := &countingSweeps{}
	s, err := NewContractSweeper(testLogger(t), svc, "@hourly", time.UTC)
	if err != nil {
		t.Fatalf("NewContractSweeper: %v", err)
	}

	s.runOnce()
	svc.err = errors.New("db down")
	s.runOnce()
	svc.err = nil
	svc.panic = true
	s.runOnce()

	if svc.calls != 3 {
		t.Fatalf("calls: want=3 got=%d", svc.calls)
	}
}
