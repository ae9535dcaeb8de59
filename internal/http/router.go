package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/gymflow-backend/internal/http/handlers"
	httpMW "github.com/yungbote/gymflow-backend/internal/http/middleware"
	"github.com/yungbote/gymflow-backend/internal/observability"
	"github.com/yungbote/gymflow-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	Metrics        *observability.Metrics
	ServiceName    string
	AllowedOrigins []string

	AuthMiddleware  *httpMW.AuthMiddleware
	ContractHandler *httpH.ContractHandler
	SessionHandler  *httpH.SessionHandler
	HealthHandler   *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.AllowedOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	api := r.Group("/api")
	if cfg.AuthMiddleware != nil {
		api.Use(cfg.AuthMiddleware.RequireAuth())
	}
	{
		// Contracts
		if cfg.ContractHandler != nil {
			api.POST("/contracts", cfg.ContractHandler.Create)
			api.GET("/contracts", cfg.ContractHandler.List)
			api.GET("/contracts/:id", cfg.ContractHandler.Get)
			api.PATCH("/contracts/:id", cfg.ContractHandler.Update)
			api.DELETE("/contracts/:id", cfg.ContractHandler.Cancel)
			api.GET("/contracts/:id/history", cfg.ContractHandler.History)
		}

		// Sessions
		if cfg.SessionHandler != nil {
			api.POST("/sessions", cfg.SessionHandler.Create)
			api.GET("/sessions", cfg.SessionHandler.List)
			api.GET("/sessions/availability", cfg.SessionHandler.Availability)
			api.GET("/sessions/:id", cfg.SessionHandler.Get)
			api.PATCH("/sessions/:id", cfg.SessionHandler.Update)
			api.DELETE("/sessions/:id", cfg.SessionHandler.Cancel)

			api.GET("/clients/:id/sessions", cfg.SessionHandler.ClientSchedule)
			api.GET("/trainers/:id/sessions", cfg.SessionHandler.TrainerSchedule)

			api.GET("/schedule/daily", cfg.SessionHandler.Daily)
			api.GET("/schedule/weekly", cfg.SessionHandler.Weekly)
			api.GET("/schedule/monthly", cfg.SessionHandler.Monthly)
		}
	}

	return r
}
