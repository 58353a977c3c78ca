package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ndewijer/ETF-Dashboard-Backend/internal/api/handlers"
	custommiddleware "github.com/ndewijer/ETF-Dashboard-Backend/internal/api/middleware"
	"github.com/ndewijer/ETF-Dashboard-Backend/internal/config"
	"github.com/ndewijer/ETF-Dashboard-Backend/internal/service"
)

// Services bundles the services the router exposes.
type Services struct {
	System      *service.SystemService
	Dataset     *service.DatasetService
	ETF         *service.ETFService
	Performance *service.PerformanceService
}

// NewRouter creates and configures the HTTP router
func NewRouter(services Services, cfg *config.Config, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.Logger(logger))
	r.Use(middleware.Recoverer)

	corsMiddleware := custommiddleware.NewCORS(cfg.CORS.AllowedOrigins)
	r.Use(corsMiddleware.Handler)

	r.Route("/api", func(r chi.Router) {
		r.Route("/system", func(r chi.Router) {
			systemHandler := handlers.NewSystemHandler(services.System)
			r.Get("/health", systemHandler.Health)
			r.Get("/version", systemHandler.Version)
			r.Get("/refreshes", systemHandler.RefreshRuns)
		})

		r.Route("/dataset", func(r chi.Router) {
			datasetHandler := handlers.NewDatasetHandler(services.Dataset)
			r.Get("/", datasetHandler.Dataset)
			r.Post("/refresh", datasetHandler.Refresh)
		})

		r.Route("/etf", func(r chi.Router) {
			etfHandler := handlers.NewETFHandler(services.ETF)
			r.Get("/", etfHandler.ETFs)
			r.With(custommiddleware.ValidateSymbolMiddleware).Get("/{symbol}", etfHandler.ETF)
		})

		r.Route("/performance", func(r chi.Router) {
			performanceHandler := handlers.NewPerformanceHandler(services.Performance)
			r.Get("/", performanceHandler.Performance)
			r.Get("/order", performanceHandler.Order)
			r.Put("/order", performanceHandler.UpdateOrder)
		})
	})

	return r
}
