package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kjramos5310/FarmaciasMicroservicios3P/pkg/health"
	"github.com/kjramos5310/FarmaciasMicroservicios3P/pkg/middleware"
	"github.com/kjramos5310/FarmaciasMicroservicios3P/services/pos/internal/repository"
)

// RouterConfig holds the edge settings of the HTTP API.
type RouterConfig struct {
	CORS           middleware.CORSConfig
	RateLimitRPS   float64
	RateLimitBurst int
	RequireAuth    bool
	// DashboardMaxAge lets browsers reuse a dashboard response for this many seconds.
	DashboardMaxAge int
}

// NewRouter creates a chi router with all POS service routes registered.
func NewRouter(
	sessions repository.SessionRepository,
	sessionHandler *SessionHandler,
	customerHandler *CustomerHandler,
	catalogHandler *CatalogHandler,
	reportHandler *ReportHandler,
	healthHandler *health.Handler,
	logger *slog.Logger,
	cfg RouterConfig,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(60 * time.Second))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics("pos"))
	r.Use(middleware.Tracing("pos"))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	r.Route("/api/v1", func(r chi.Router) {
		if cfg.RateLimitRPS > 0 {
			r.Use(middleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst, logger))
		}
		r.Use(middleware.TokenRelay(cfg.RequireAuth))
		r.Use(middleware.RequestLogger(logger))
		r.Use(ContentTypeJSON)

		r.Route("/sessions", func(r chi.Router) {
			r.Use(middleware.NoStore)

			r.Post("/", sessionHandler.CreateSession)

			r.Route("/{id}", func(r chi.Router) {
				r.Use(LoadSession(sessions, logger))

				r.Get("/", sessionHandler.GetSession)
				r.Delete("/", sessionHandler.AbandonSession)

				r.Put("/branch", sessionHandler.SelectBranch)
				r.Put("/customer", sessionHandler.SelectCustomer)
				r.Delete("/customer", sessionHandler.ClearCustomer)
				r.Put("/discount", sessionHandler.SetDiscount)
				r.Put("/payment-method", sessionHandler.SetPaymentMethod)
				r.Put("/notes", sessionHandler.SetNotes)

				r.Post("/items", sessionHandler.AddItem)
				r.Put("/items/{productId}", sessionHandler.UpdateItemQuantity)
				r.Delete("/items/{productId}", sessionHandler.RemoveItem)
				r.Put("/items/{productId}/prescription", sessionHandler.AttachPrescription)

				r.Get("/prescriptions", sessionHandler.ListPrescriptions)
				r.Post("/prescriptions", sessionHandler.CreatePrescription)

				r.Post("/checkout", sessionHandler.Checkout)
				r.Post("/checkout/ack", sessionHandler.Acknowledge)
			})
		})

		r.Get("/products", catalogHandler.SearchProducts)
		r.Get("/branches", catalogHandler.ListBranches)

		r.Post("/customers", customerHandler.CreateCustomer)
		r.Get("/customers/search", customerHandler.SearchCustomer)

		r.With(middleware.CacheControl(cfg.DashboardMaxAge)).Get("/dashboard", reportHandler.Dashboard)
		r.Get("/sales", reportHandler.ListSales)
	})

	return r
}
