package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/yungbote/gymflow-backend/internal/platform/logger"
)

const (
	defaultSweepSchedule = "@daily"
	sweepRunTimeout      = 4 * time.Minute
)

// ContractSweeper runs the expiration sweep on a cron schedule.
type ContractSweeper struct {
	log      *logger.Logger
	svc      ContractService
	cron     *cron.Cron
	schedule string
	loc      *time.Location
}

func NewContractSweeper(baseLog *logger.Logger, svc ContractService, schedule string, loc *time.Location) (*ContractSweeper, error) {
	if svc == nil {
		return nil, fmt.Errorf("contract sweeper: service required")
	}
	schedule = strings.TrimSpace(schedule)
	if schedule == "" {
		schedule = defaultSweepSchedule
	}
	if loc == nil {
		loc = time.UTC
	}
	c := cron.New(
		cron.WithLocation(loc),
		cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)),
	)
	s := &ContractSweeper{
		log:      baseLog.With("component", "ContractSweeper"),
		svc:      svc,
		cron:     c,
		schedule: schedule,
		loc:      loc,
	}
	if _, err := c.AddFunc(schedule, s.runOnce); err != nil {
		return nil, fmt.Errorf("contract sweeper: bad schedule %q: %w", schedule, err)
	}
	return s, nil
}

func (s *ContractSweeper) Start() {
	s.cron.Start()
	s.log.Info("contract sweeper started", "schedule", s.schedule, "location", s.loc.String())
}

// Stop waits for a running sweep to finish or ctx to expire.
func (s *ContractSweeper) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.log.Warn("contract sweeper stop timed out")
	}
}

func (s *ContractSweeper) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepRunTimeout)
	defer cancel()
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("contract sweep panicked", "panic", r)
		}
	}()
	res, err := s.svc.SweepExpirations(ctx)
	if err != nil {
		s.log.Warn("contract sweep run failed", "error", err)
		return
	}
	s.log.Info("contract sweep finished", "expired", len(res.Expired), "about_to_expire", len(res.AboutToExpire))
}
