package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Piyushkr001/revix/pkg/health"
	"github.com/Piyushkr001/revix/pkg/middleware"
)

// DefaultRequestTimeout bounds every request handled by the router.
const DefaultRequestTimeout = 30 * time.Second

// RouterConfig holds the transport settings of the router.
type RouterConfig struct {
	CORS              middleware.CORSConfig
	PprofAllowedCIDRs []string
	RequestTimeout    time.Duration
}

// Services bundles the application services behind the API.
type Services struct {
	Analyses AnalysisService
	Insights InsightsService
	Reports  ReportService
	Users    UserService
	Settings SettingsService
	Support  SupportService
}

// Deps holds the cross-cutting collaborators of the router.
type Deps struct {
	Verifier        middleware.TokenVerifier
	AnalysisLimiter middleware.Limiter
	Health          *health.Handler
	Registry        *prometheus.Registry
	Logger          *slog.Logger
}

// NewRouter creates a chi router with all revix routes registered.
func NewRouter(cfg RouterConfig, svc Services, deps Deps) http.Handler {
	logger := deps.Logger
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	r := chi.NewRouter()

	// Global middleware stack (applied in order).
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(timeout))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.NewHTTPMetrics(deps.Registry).Handler)
	r.Use(middleware.Tracing())

	// Health check endpoints
	r.Get("/health/live", deps.Health.LivenessHandler())
	r.Get("/health/ready", deps.Health.ReadinessHandler())

	r.Handle("/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{Registry: deps.Registry}))
	middleware.RegisterPprof(r, cfg.PprofAllowedCIDRs, logger)

	analysisHandler := NewAnalysisHandler(svc.Analyses, svc.Insights, svc.Users, deps.AnalysisLimiter, logger)
	reportHandler := NewReportHandler(svc.Reports, logger)
	userHandler := NewUserHandler(svc.Users, svc.Settings, logger)
	supportHandler := NewSupportHandler(svc.Support, logger)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Authenticate(deps.Verifier))
		r.Use(middleware.RequestLogger(logger))
		r.Use(middleware.NoStore)

		// Writes that reference the users row need the mirror to exist.
		synced := RequireSynced(svc.Users, logger)

		r.Route("/analysis", func(r chi.Router) {
			r.Get("/", analysisHandler.ListRecent)
			r.Post("/", analysisHandler.Submit)
		})

		r.Get("/dashboard/summary", analysisHandler.Dashboard)
		r.Get("/insights", analysisHandler.Insights)

		r.Route("/history", func(r chi.Router) {
			r.Get("/", analysisHandler.History)
			r.Get("/{id}", analysisHandler.Detail)
		})

		r.Route("/reports", func(r chi.Router) {
			r.Get("/", reportHandler.List)
			r.With(synced).Post("/generate", reportHandler.Generate)
			r.Get("/{id}", reportHandler.Get)
			r.Get("/{id}/export", reportHandler.Export)
		})

		r.Route("/users/me", func(r chi.Router) {
			r.Get("/", userHandler.Me)
			r.Patch("/", userHandler.UpdateMe)
		})

		r.Route("/settings", func(r chi.Router) {
			r.Get("/", userHandler.GetSettings)
			r.With(synced).Put("/", userHandler.SaveSettings)
			r.Post("/delete-account", userHandler.DeleteAccount)
		})

		r.Route("/support", func(r chi.Router) {
			r.Get("/", supportHandler.List)
			r.Post("/", supportHandler.Create)
		})
	})

	return r
}
