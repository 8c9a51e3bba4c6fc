package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"

	"github.com/godilite/kpi-server/internal/config"
	handler "github.com/godilite/kpi-server/internal/grpc"
	"github.com/godilite/kpi-server/internal/repository"
	"github.com/godilite/kpi-server/internal/service"
	"github.com/godilite/kpi-server/pkg/cache"
	dbbuilder "github.com/godilite/kpi-server/pkg/database"
	grpcsrv "github.com/godilite/kpi-server/pkg/grpc/server"
)

const (
	shutdownTimeout     = 10 * time.Second
	healthProbeInterval = 30 * time.Second
	healthProbeTimeout  = 2 * time.Second
)

type App struct {
	logger     *zap.Logger
	dbPool     *sql.DB
	cache      *cache.Cache
	grpcServer *grpcsrv.Server
}

// NewApp wires storage, cache, service and transport. Redis is optional: when
// it cannot be reached the dashboard serves every request from SQLite.
func NewApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	if err := cfg.EnsureDataDir(); err != nil {
		return nil, err
	}

	dbPool, err := dbbuilder.New(
		dbbuilder.WithDriver(cfg.DBDriver),
		dbbuilder.WithDataSource(cfg.DBPath),
		dbbuilder.WithInitStatements(repository.Schema),
	)
	if err != nil {
		return nil, fmt.Errorf("database init failed: %w", err)
	}
	logger.Info("Database pool initialized", zap.String("path", cfg.DBPath))

	var cacher handler.Cacher
	cacheClient, err := cache.New(ctx,
		cache.WithAddress(cfg.RedisAddr),
		cache.WithPassword(cfg.RedisPassword),
		cache.WithDB(cfg.RedisDB),
		cache.WithKeyPrefix(cfg.RedisKeyPrefix),
	)
	if err != nil {
		logger.Warn("cache unavailable, serving without cache",
			zap.String("addr", cfg.RedisAddr),
			zap.Error(err))
	} else {
		cacher = cacheClient
		logger.Info("Cache client initialized", zap.String("addr", cfg.RedisAddr))
	}

	kpiRepo := repository.NewKPIRepository(dbPool)

	kpiService := service.NewKPIService(kpiRepo, logger,
		service.WithWeights(cfg.ScoreWeights),
		service.WithTopN(cfg.TopN),
	)

	grpcHandlers := handler.NewGRPCHandlers(kpiService, cacher, logger, cfg.CacheTTL)

	grpcServer, err := grpcsrv.New(
		grpcsrv.WithPort(cfg.GRPCPort),
		grpcsrv.WithLogger(logger),
		grpcsrv.WithReflection(cfg.GRPCReflectionEnabled),
		grpcsrv.WithLogging(cfg.GRPCLoggingEnabled),
		grpcsrv.WithRecovery(true),
		grpcsrv.WithMaxConnectionIdle(cfg.GRPCMaxConnectionIdle),
	)
	if err != nil {
		_ = dbPool.Close()
		if cacheClient != nil {
			_ = cacheClient.Close()
		}
		return nil, fmt.Errorf("failed to create gRPC server: %w", err)
	}

	grpcServer.RegisterServiceWithHealth(handler.KPIDashboardServiceName, func(s grpc.ServiceRegistrar) {
		handler.RegisterKPIDashboardServer(s, grpcHandlers)
	})

	return &App{
		logger:     logger,
		dbPool:     dbPool,
		cache:      cacheClient,
		grpcServer: grpcServer,
	}, nil
}

// watchDatabase flips the dashboard health status when SQLite stops answering.
func (a *App) watchDatabase(ctx context.Context) {
	ticker := time.NewTicker(healthProbeInterval)
	defer ticker.Stop()

	healthy := true
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		pingCtx, cancel := context.WithTimeout(ctx, healthProbeTimeout)
		err := a.dbPool.PingContext(pingCtx)
		cancel()

		switch {
		case err != nil && healthy:
			a.logger.Error("database health probe failed", zap.Error(err))
			a.grpcServer.SetServing(false)
			healthy = false
		case err == nil && !healthy:
			a.logger.Info("database health probe recovered")
			a.grpcServer.SetServing(true)
			healthy = true
		}
	}
}

// Run starts the application and blocks until a shutdown signal is received.
func (a *App) Run() error {
	a.logger.Info("application starting")

	a.grpcServer.Start()

	probeCtx, stopProbe := context.WithCancel(context.Background())
	go a.watchDatabase(probeCtx)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	a.logger.Info("application shutting down")
	stopProbe()

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var shutdownErr error
	if err := a.grpcServer.Shutdown(ctx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		shutdownErr = fmt.Errorf("grpc shutdown: %w", err)
	}

	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Error("cache shutdown error", zap.Error(err))
		}
	}
	if err := a.dbPool.Close(); err != nil {
		a.logger.Error("database shutdown error", zap.Error(err))
	}

	if ctx.Err() == context.DeadlineExceeded {
		a.logger.Warn("shutdown completed but deadline exceeded")
	} else {
		a.logger.Info("graceful shutdown completed successfully")
	}

	_ = a.logger.Sync()
	return shutdownErr
}
