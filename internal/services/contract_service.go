package services

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"

	"github.com/yungbote/gymflow-backend/internal/data/repos"
	types "github.com/yungbote/gymflow-backend/internal/domain"
	domainagg "github.com/yungbote/gymflow-backend/internal/domain/aggregates"
	"github.com/yungbote/gymflow-backend/internal/observability"
	"github.com/yungbote/gymflow-backend/internal/platform/ctxutil"
	"github.com/yungbote/gymflow-backend/internal/platform/datemath"
	"github.com/yungbote/gymflow-backend/internal/platform/dbctx"
	"github.com/yungbote/gymflow-backend/internal/platform/logger"
)

const defaultExpiryWindowDays = 7

type CreateContractRequest struct {
	PersonID         uint
	MembershipPlanID uint
	StartDate        time.Time
}

type ContractListQuery struct {
	PersonID uint
	Status   string
	Page     PageRequest
}

type ContractService interface {
	Create(dbc dbctx.Context, req CreateContractRequest) (*types.Contract, error)
	Update(dbc dbctx.Context, id uint, patch domainagg.ContractPatch) (*types.Contract, error)
	Cancel(dbc dbctx.Context, id uint, reason *string) (*types.Contract, error)
	Get(dbc dbctx.Context, id uint) (*types.Contract, error)
	List(dbc dbctx.Context, q ContractListQuery) ([]*types.Contract, Pagination, error)
	History(dbc dbctx.Context, id uint) ([]*types.ContractHistory, error)
	SweepExpirations(ctx context.Context) (domainagg.SweepExpirationsResult, error)
}

type ContractServiceConfig struct {
	ExpiryWindowDays int
}

type contractService struct {
	db        *gorm.DB
	log       *logger.Logger
	agg       domainagg.ContractAggregate
	contracts repos.ContractRepo
	history   repos.ContractHistoryRepo
	clock     datemath.Clock
	metrics   *observability.Metrics
	cfg       ContractServiceConfig
}

func NewContractService(
	db *gorm.DB,
	baseLog *logger.Logger,
	agg domainagg.ContractAggregate,
	contracts repos.ContractRepo,
	history repos.ContractHistoryRepo,
	clock datemath.Clock,
	metrics *observability.Metrics,
	cfg ContractServiceConfig,
) ContractService {
	if cfg.ExpiryWindowDays <= 0 {
		cfg.ExpiryWindowDays = defaultExpiryWindowDays
	}
	return &contractService{
		db:        db,
		log:       baseLog.With("service", "ContractService"),
		agg:       agg,
		contracts: contracts,
		history:   history,
		clock:     datemath.Or(clock),
		metrics:   metrics,
		cfg:       cfg,
	}
}

func (s *contractService) Create(dbc dbctx.Context, req CreateContractRequest) (out *types.Contract, err error) {
	ctx, span := startSpan(dbc.Ctx, "ContractService.Create",
		attribute.Int64("person_id", int64(req.PersonID)),
		attribute.Int64("membership_id", int64(req.MembershipPlanID)),
	)
	defer func() { endSpan(span, err) }()

	res, err := s.agg.Create(ctx, domainagg.CreateContractInput{
		PersonID:         req.PersonID,
		MembershipPlanID: req.MembershipPlanID,
		StartDate:        req.StartDate,
		ActorID:          ctxutil.ActorID(ctx),
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("contract created", "contract_id", res.ContractID, "code", res.Code, "person_id", req.PersonID)
	return s.reload(ctx, res.ContractID)
}

func (s *contractService) Update(dbc dbctx.Context, id uint, patch domainagg.ContractPatch) (out *types.Contract, err error) {
	const op = "Membership.Contract.Update"
	ctx, span := startSpan(dbc.Ctx, "ContractService.Update", attribute.Int64("contract_id", int64(id)))
	defer func() { endSpan(span, err) }()

	current, err := s.contracts.GetByID(dbctx.Context{Ctx: ctx}, id)
	if err != nil {
		return nil, domainagg.Wrap(domainagg.CodeInternal, op, err)
	}
	if current == nil {
		return nil, domainagg.NewError(domainagg.CodeNotFound, op, "contract not found", nil)
	}
	intent, err := domainagg.ResolveContractPatch(patch, *current)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("intent", intent.Kind()))

	res, err := s.agg.Apply(ctx, domainagg.ApplyContractIntentInput{
		ContractID: id,
		Intent:     intent,
		Reason:     patch.Reason,
		ActorID:    ctxutil.ActorID(ctx),
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("contract updated",
		"contract_id", id,
		"intent", intent.Kind(),
		"from", res.PreviousStatus,
		"to", res.Status,
		"changed", res.Changed,
	)
	return s.reload(ctx, id)
}

func (s *contractService) Cancel(dbc dbctx.Context, id uint, reason *string) (out *types.Contract, err error) {
	ctx, span := startSpan(dbc.Ctx, "ContractService.Cancel", attribute.Int64("contract_id", int64(id)))
	defer func() { endSpan(span, err) }()

	if reason != nil {
		r := strings.TrimSpace(*reason)
		if r == "" {
			reason = nil
		} else {
			reason = &r
		}
	}
	res, err := s.agg.Apply(ctx, domainagg.ApplyContractIntentInput{
		ContractID: id,
		Intent:     domainagg.CancelIntent{},
		Reason:     reason,
		ActorID:    ctxutil.ActorID(ctx),
	})
	if err != nil {
		return nil, err
	}
	if res.Changed {
		s.log.Info("contract cancelled", "contract_id", id, "code", res.Code)
	}
	return s.reload(ctx, id)
}

func (s *contractService) Get(dbc dbctx.Context, id uint) (*types.Contract, error) {
	return s.reload(dbc.Ctx, id)
}

func (s *contractService) List(dbc dbctx.Context, q ContractListQuery) ([]*types.Contract, Pagination, error) {
	const op = "Membership.Contract.List"
	f := repos.ContractFilter{PersonID: q.PersonID}
	if st := strings.ToLower(strings.TrimSpace(q.Status)); st != "" {
		if !types.ContractStatus(st).Valid() {
			return nil, Pagination{}, domainagg.NewError(domainagg.CodeValidation, op, "invalid contract status", nil)
		}
		f.Statuses = []string{st}
	}
	rows, page, err := loadPage(dbc.Ctx, q.Page,
		func(ctx context.Context, limit, offset int) ([]*types.Contract, error) {
			return s.contracts.List(dbctx.Context{Ctx: ctx}, f, limit, offset)
		},
		func(ctx context.Context) (int64, error) {
			return s.contracts.Count(dbctx.Context{Ctx: ctx}, f)
		},
	)
	if err != nil {
		return nil, Pagination{}, domainagg.Wrap(domainagg.CodeInternal, op, err)
	}
	return rows, page, nil
}

func (s *contractService) History(dbc dbctx.Context, id uint) ([]*types.ContractHistory, error) {
	const op = "Membership.Contract.History"
	rdbc := dbctx.Context{Ctx: dbc.Ctx}
	c, err := s.contracts.GetByID(rdbc, id)
	if err != nil {
		return nil, domainagg.Wrap(domainagg.CodeInternal, op, err)
	}
	if c == nil {
		return nil, domainagg.NewError(domainagg.CodeNotFound, op, "contract not found", nil)
	}
	rows, err := s.history.ListByContractIDDesc(rdbc, id)
	if err != nil {
		return nil, domainagg.Wrap(domainagg.CodeInternal, op, err)
	}
	return rows, nil
}

func (s *contractService) SweepExpirations(ctx context.Context) (res domainagg.SweepExpirationsResult, err error) {
	ctx, span := startSpan(ctx, "ContractService.SweepExpirations")
	defer func() { endSpan(span, err) }()

	res, err = s.agg.SweepExpirations(ctx, domainagg.SweepExpirationsInput{
		Today:      datemath.Today(s.clock),
		WindowDays: s.cfg.ExpiryWindowDays,
	})
	if err != nil {
		s.log.Error("contract sweep failed", "error", err)
		return res, err
	}
	s.metrics.AddSweepTransitions(string(types.ContractExpired), len(res.Expired))
	s.metrics.AddSweepTransitions(string(types.ContractAboutToExpire), len(res.AboutToExpire))
	s.log.Info("contract sweep finished",
		"expired", len(res.Expired),
		"about_to_expire", len(res.AboutToExpire),
		"window_days", s.cfg.ExpiryWindowDays,
	)
	return res, nil
}

func (s *contractService) reload(ctx context.Context, id uint) (*types.Contract, error) {
	const op = "Membership.Contract.Get"
	row, err := s.contracts.GetJoinedByID(dbctx.Context{Ctx: ctx}, id)
	if err != nil {
		return nil, domainagg.Wrap(domainagg.CodeInternal, op, err)
	}
	if row == nil {
		return nil, domainagg.NewError(domainagg.CodeNotFound, op, "contract not found", nil)
	}
	return row, nil
}
