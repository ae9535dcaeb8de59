package app

import (
	"gorm.io/gorm"

	httpH "github.com/yungbote/gymflow-backend/internal/http/handlers"
	"github.com/yungbote/gymflow-backend/internal/platform/logger"
)

type Handlers struct {
	Health   *httpH.HealthHandler
	Contract *httpH.ContractHandler
	Session  *httpH.SessionHandler
}

func wireHandlers(log *logger.Logger, db *gorm.DB, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:   httpH.NewHealthHandler(db),
		Contract: httpH.NewContractHandler(services.Contract),
		Session:  httpH.NewSessionHandler(services.Schedule),
	}
}
