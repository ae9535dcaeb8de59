package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	types "github.com/yungbote/gymflow-backend/internal/domain"
	httpH "github.com/yungbote/gymflow-backend/internal/http/handlers"
	httpMW "github.com/yungbote/gymflow-backend/internal/http/middleware"
	"github.com/yungbote/gymflow-backend/internal/platform/ctxutil"
	"github.com/yungbote/gymflow-backend/internal/platform/dbctx"
	"github.com/yungbote/gymflow-backend/internal/platform/logger"
	"github.com/yungbote/gymflow-backend/internal/services"
)

type actorEchoContracts struct {
	services.ContractService
	actor uint
}

func (f *actorEchoContracts) Get(dbc dbctx.Context, id uint) (*types.Contract, error) {
	f.actor = ctxutil.ActorID(dbc.Ctx)
	return &types.Contract{ID: id}, nil
}

func TestRouterRequiresBearerToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	log := logger.NewNop()
	auth, err := services.NewAuthService(log, nil, "router-secret", time.Minute)
	if err != nil {
		t.Fatalf("NewAuthService: %v", err)
	}
	contracts := &actorEchoContracts{}
	r := NewRouter(RouterConfig{
		Log:             log,
		AuthMiddleware:  httpMW.NewAuthMiddleware(log, auth),
		ContractHandler: httpH.NewContractHandler(contracts),
	})
	token, _ := auth.IssueToken(42)

	cases := []struct {
		name   string
		header string
		want   int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + token, http.StatusUnauthorized},
		{"tampered", "Bearer " + token + "x", http.StatusUnauthorized},
		{"valid", "Bearer " + token, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/contracts/3", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			if rec.Code != tc.want {
				t.Fatalf("status: want=%d got=%d body=%s", tc.want, rec.Code, rec.Body.String())
			}
		})
	}
	if contracts.actor != 42 {
		t.Fatalf("actor: want=42 got=%d", contracts.actor)
	}
}

func TestRouterUnknownRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := NewRouter(RouterConfig{Log: logger.NewNop()})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/nothing", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status: want=%d got=%d", http.StatusNotFound, rec.Code)
	}
}

func TestHealthcheckIsPublic(t *testing.T) {
	gin.SetMode(gin.TestMode)
	log := logger.NewNop()
	auth, _ := services.NewAuthService(log, nil, "router-secret", time.Minute)
	r := NewRouter(RouterConfig{
		Log:            log,
		AuthMiddleware: httpMW.NewAuthMiddleware(log, auth),
		HealthHandler:  httpH.NewHealthHandler(nil),
	})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthcheck", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("healthcheck: got %d %q", rec.Code, rec.Body.String())
	}
}
