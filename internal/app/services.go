package app

import (
	"fmt"

	"gorm.io/gorm"

	dataagg "github.com/yungbote/gymflow-backend/internal/data/aggregates"
	domainagg "github.com/yungbote/gymflow-backend/internal/domain/aggregates"
	"github.com/yungbote/gymflow-backend/internal/observability"
	"github.com/yungbote/gymflow-backend/internal/platform/datemath"
	"github.com/yungbote/gymflow-backend/internal/platform/logger"
	"github.com/yungbote/gymflow-backend/internal/services"
)

type Aggregates struct {
	Contract domainagg.ContractAggregate
	Session  domainagg.SessionAggregate
}

type Services struct {
	Auth     services.AuthService
	Contract services.ContractService
	Schedule services.ScheduleService
	Sweeper  *services.ContractSweeper
}

func wireAggregates(db *gorm.DB, log *logger.Logger, metrics *observability.Metrics, clock datemath.Clock, r Repos) Aggregates {
	log.Info("Wiring aggregates...")
	base := dataagg.BaseDeps{
		DB:       db,
		Log:      log,
		Runner:   dataagg.NewGormTxRunner(db),
		Hooks:    dataagg.NewObservabilityHooks(metrics),
		CASGuard: dataagg.NewCASGuard(db),
	}
	return Aggregates{
		Contract: dataagg.NewContractAggregate(dataagg.ContractAggregateDeps{
			Base:      base,
			Clock:     clock,
			People:    r.Person,
			Plans:     r.Plan,
			Contracts: r.Contract,
			History:   r.History,
		}),
		Session: dataagg.NewSessionAggregate(dataagg.SessionAggregateDeps{
			Base:      base,
			Clock:     clock,
			Users:     r.User,
			Trainers:  r.Trainer,
			People:    r.Person,
			Contracts: r.Contract,
			Sessions:  r.Session,
		}),
	}
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, metrics *observability.Metrics, clock datemath.Clock, r Repos, aggs Aggregates, clients Clients) (Services, error) {
	log.Info("Wiring services...")

	auth, err := services.NewAuthService(log, r.User, cfg.JWTSecretKey, cfg.AccessTokenTTL)
	if err != nil {
		return Services{}, fmt.Errorf("init auth service: %w", err)
	}

	notifier, err := wireBookingNotifier(log, cfg, metrics, clients)
	if err != nil {
		return Services{}, err
	}

	contracts := services.NewContractService(db, log, aggs.Contract, r.Contract, r.History, clock, metrics, services.ContractServiceConfig{
		ExpiryWindowDays: cfg.ExpiryWindowDays,
	})
	schedule := services.NewScheduleService(db, log, aggs.Session, r.Session, r.Person, r.User, notifier, clock, metrics, services.ScheduleServiceConfig{
		Location:      cfg.Location,
		NotifyTimeout: cfg.NotifyTimeout,
	})

	sweeper, err := services.NewContractSweeper(log, contracts, cfg.SweepCron, cfg.Location)
	if err != nil {
		return Services{}, fmt.Errorf("init contract sweeper: %w", err)
	}

	return Services{
		Auth:     auth,
		Contract: contracts,
		Schedule: schedule,
		Sweeper:  sweeper,
	}, nil
}

// wireBookingNotifier fans out to every configured channel; with none configured
// bookings are confirmed silently.
func wireBookingNotifier(log *logger.Logger, cfg Config, metrics *observability.Metrics, clients Clients) (services.BookingNotifier, error) {
	var targets []services.BookingNotifier

	if clients.Email != nil || clients.SMS != nil {
		tpl, err := services.LoadBookingTemplate(cfg.BookingTemplatePath)
		if err != nil {
			return nil, fmt.Errorf("load booking template: %w", err)
		}
		if clients.Email != nil {
			n, err := services.NewEmailBookingNotifier(log, clients.Email, tpl, cfg.Location)
			if err != nil {
				return nil, fmt.Errorf("init email notifier: %w", err)
			}
			targets = append(targets, n)
		}
		if clients.SMS != nil {
			n, err := services.NewSMSBookingNotifier(log, clients.SMS, tpl, cfg.Location)
			if err != nil {
				return nil, fmt.Errorf("init sms notifier: %w", err)
			}
			targets = append(targets, n)
		}
	}
	if clients.Bookings != nil {
		n, err := services.NewRedisBookingNotifier(clients.Bookings)
		if err != nil {
			return nil, fmt.Errorf("init redis notifier: %w", err)
		}
		targets = append(targets, n)
	}

	if len(targets) == 0 {
		log.Info("No booking notification channel configured")
		return services.NewNoopBookingNotifier(), nil
	}
	return services.NewFanoutBookingNotifier(metrics, targets...), nil
}
