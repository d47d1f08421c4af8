package web

import (
	"net/http"
	"time"

	"github.com/DioGolang/lifthub/internal/application/usecase/student"
	"github.com/DioGolang/lifthub/internal/infra/web/handler"
	mw "github.com/DioGolang/lifthub/internal/infra/web/middleware"
	"github.com/DioGolang/lifthub/internal/infra/web/ui"
	"github.com/DioGolang/lifthub/pkg/logger"
	"github.com/DioGolang/lifthub/pkg/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/riandyrn/otelchi"
)

type RouterConfig struct {
	ServiceName    string
	UseCases       student.UseCases
	Logger         logger.Logger
	Metrics        metrics.Metrics
	MetricsHandler http.Handler
	HealthHandler  http.Handler
	RateLimiter    *mw.IPLimiter
	AllowedOrigins []string
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(otelchi.Middleware(cfg.ServiceName, otelchi.WithChiRoutes(r)))
	r.Use(mw.RequestLogger(cfg.Logger))
	r.Use(mw.Metrics(cfg.Metrics))
	r.Use(middleware.Timeout(15 * time.Second))

	if cfg.HealthHandler != nil {
		r.Method(http.MethodGet, "/health", cfg.HealthHandler)
	}
	if cfg.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", cfg.MetricsHandler)
	}

	r.Group(func(r chi.Router) {
		if cfg.RateLimiter != nil {
			r.Use(cfg.RateLimiter.Handler(cfg.Logger, cfg.Metrics))
		}

		r.Route("/api/v1/students", func(r chi.Router) {
			r.Use(cors.Handler(cors.Options{
				AllowedOrigins: cfg.AllowedOrigins,
				AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
				AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
				MaxAge:         300,
			}))
			handler.NewStudentHandler(cfg.UseCases, cfg.Logger, cfg.Metrics).Routes(r)
		})

		ui.NewHandler(cfg.UseCases, cfg.Logger).Routes(r)
	})

	return r
}
