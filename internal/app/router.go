package app

import (
	"github.com/yungbote/gymflow-backend/internal/http"
	"github.com/yungbote/gymflow-backend/internal/observability"
	"github.com/yungbote/gymflow-backend/internal/platform/logger"
)

func wireServer(log *logger.Logger, cfg Config, metrics *observability.Metrics, handlers Handlers, middleware Middleware) *http.Server {
	log.Info("Wiring router...")
	return http.NewServer(http.RouterConfig{
		Log:             log,
		Metrics:         metrics,
		ServiceName:     cfg.ServiceName,
		AllowedOrigins:  cfg.AllowedOrigins,
		AuthMiddleware:  middleware.Auth,
		ContractHandler: handlers.Contract,
		SessionHandler:  handlers.Session,
		HealthHandler:   handlers.Health,
	})
}
