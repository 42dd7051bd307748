// File: app/app.go
package app

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"oauth2-token-store/config"
	"oauth2-token-store/db"
	"oauth2-token-store/handler"
	"oauth2-token-store/logger"
	"oauth2-token-store/metrics"
	"oauth2-token-store/repository"
	"oauth2-token-store/router"
	"oauth2-token-store/service"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

// App holds the wired layers of the service.
type App struct {
	DB      *sql.DB
	Router  http.Handler
	Service *service.TokenService
	Sweeper *service.Sweeper
}

// New wires repositories, services and handlers around an open pool.
// redisClient may be nil, in which case sweeps run without a lease.
func New(cfg config.Config, database *sql.DB, redisClient *redis.Client, reg *prometheus.Registry) *App {
	tokenRepo := repository.NewTokenRepository(database,
		repository.WithCleanupBatchSize(cfg.Cleanup.BatchSize))
	tokenService := service.NewTokenService(tokenRepo, metrics.New(reg))
	tokenHandler := handler.NewTokenHandler(tokenService)

	var lease service.Lease
	if redisClient != nil {
		lease = service.NewRedisLease(redisClient, cfg.Cleanup.LeaseKey, cfg.Cleanup.LeaseTTL)
	}

	var metricsHandler http.Handler
	if reg != nil {
		metricsHandler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
	}

	return &App{
		DB:      database,
		Router:  router.NewRouter(tokenHandler, metricsHandler),
		Service: tokenService,
		Sweeper: service.NewSweeper(tokenService, lease, cfg.Cleanup.Interval),
	}
}

func Run() {
	logger.Init()
	if err := config.LoadConfig("."); err != nil {
		logger.Log.Fatalf("Error loading configuration: %v", err)
	}
	cfg := config.AppConfig
	logger.Configure(cfg.Log.Level, cfg.Log.Format)
	logger.Log.Info("Configuration loaded successfully")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := db.Connect(ctx, cfg)
	if err != nil {
		logger.Log.Fatalf("Error connecting to the database: %v", err)
	}
	defer database.Close()

	if cfg.Database.AutoMigrate {
		if err := db.Migrate(database); err != nil {
			logger.Log.Fatalf("Error running migrations: %v", err)
		}
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = db.ConnectRedis(ctx, cfg)
		if err != nil {
			logger.Log.Fatalf("Error connecting to Redis: %v", err)
		}
		defer redisClient.Close()
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	application := New(cfg, database, redisClient, reg)

	if cfg.Cleanup.Enabled {
		go application.Sweeper.Start(ctx)
	}

	port := cfg.Server.Port
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: application.Router,
	}

	go func() {
		logger.Log.Infof("Server starting on port :%s", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Log.Warn("Shutdown signal received. Starting graceful shutdown...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Fatalf("Server forced to shutdown: %v", err)
	}

	logger.Log.Info("Server exited properly")
}
