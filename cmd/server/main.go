package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ndewijer/ETF-Dashboard-Backend/internal/api"
	"github.com/ndewijer/ETF-Dashboard-Backend/internal/cache"
	"github.com/ndewijer/ETF-Dashboard-Backend/internal/config"
	"github.com/ndewijer/ETF-Dashboard-Backend/internal/database"
	"github.com/ndewijer/ETF-Dashboard-Backend/internal/dataset"
	"github.com/ndewijer/ETF-Dashboard-Backend/internal/logging"
	"github.com/ndewijer/ETF-Dashboard-Backend/internal/repository"
	"github.com/ndewijer/ETF-Dashboard-Backend/internal/scheduler"
	"github.com/ndewijer/ETF-Dashboard-Backend/internal/service"
	"github.com/ndewijer/ETF-Dashboard-Backend/internal/version"
	"github.com/ndewijer/ETF-Dashboard-Backend/internal/yahoo"
)

// refreshTimeout bounds one full load or scheduled refresh.
const refreshTimeout = 5 * time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Logging.Level)
	logging.SetDefault(logger)
	logger.Info("starting etf dashboard", "version", version.Version)

	etfs, err := config.LoadETFs(cfg.Data.ETFConfigPath)
	if err != nil {
		logger.Error("failed to load ETF configuration", "path", cfg.Data.ETFConfigPath, "error", err)
		os.Exit(1)
	}

	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	applied, err := database.Migrate(ctx, db)
	if err != nil {
		logger.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}
	logger.Info("connected to database", "path", cfg.Database.Path, "migrationsApplied", applied)

	// Create repositories
	cacheRepo := repository.NewCacheRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	refreshRunRepo := repository.NewRefreshRunRepository(db)

	var store cache.Store = cacheRepo
	if cfg.Cache.Backend == config.CacheBackendRedis {
		redisStore, err := cache.NewRedisStore(ctx, cache.RedisOptions{
			Addr:     cfg.Cache.RedisAddr,
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
		})
		if err != nil {
			logger.Error("failed to connect to cache", "backend", cfg.Cache.Backend, "error", err)
			os.Exit(1)
		}
		defer redisStore.Close()
		store = redisStore
	}
	snapshotCache := dataset.NewCacheStore(store)

	yahooClient := yahoo.NewFinanceClient(
		yahoo.WithChartEndpoint(cfg.Yahoo.ChartEndpoint),
		yahoo.WithRelay(cfg.Yahoo.RelayURL),
		yahoo.WithTimeout(cfg.Yahoo.Timeout),
		yahoo.WithLogger(logger),
	)

	// Create services
	state := service.NewDashboardState()
	seriesService := service.NewSeriesService(yahooClient, service.SeriesOptions{
		SplitThreshold: cfg.Pipeline.SplitThreshold,
		Logger:         logger,
	})
	datasetService := service.NewDatasetService(config.Symbols(etfs), seriesService, state, service.DatasetOptions{
		Fallback: dataset.NewChain(logger,
			dataset.Source{Name: "cache", Loader: snapshotCache},
			dataset.Source{Name: "file", Loader: dataset.FileFallback{Path: cfg.Data.DatasetPath}},
		),
		Saver:       snapshotCache,
		Recorder:    refreshRunRepo,
		Concurrency: cfg.Pipeline.Concurrency,
		Logger:      logger,
	})
	etfService := service.NewETFService(etfs, state)
	performanceService := service.NewPerformanceService(etfs, state, cache.NewPerformanceCache(store), orderRepo, logger)
	systemService := service.NewSystemService(db, refreshRunRepo, service.Features{
		RedisCache:       cfg.Cache.Backend == config.CacheBackendRedis,
		ScheduledRefresh: cfg.Scheduler.RefreshSchedule != "",
		Relay:            cfg.Yahoo.RelayURL != "",
	})

	sched := scheduler.New(ctx, datasetService, refreshTimeout, logger)
	if cfg.Scheduler.RefreshSchedule != "" {
		if err := sched.Register(cfg.Scheduler.RefreshSchedule); err != nil {
			logger.Error("failed to register refresh schedule", "error", err)
			os.Exit(1)
		}
		sched.Start()
		defer sched.Stop()
	}
	if cfg.Scheduler.RefreshOnStart {
		go sched.RunNow()
	}

	router := api.NewRouter(api.Services{
		System:      systemService,
		Dataset:     datasetService,
		ETF:         etfService,
		Performance: performanceService,
	}, cfg, logger)

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: refreshTimeout,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("starting server", "addr", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down server")
	case err := <-serverErr:
		logger.Error("server failed", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	logger.Info("server exited")
}
