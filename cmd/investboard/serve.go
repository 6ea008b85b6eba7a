package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Aidin1998/investboard/api"
	"github.com/Aidin1998/investboard/internal/advisory"
	"github.com/Aidin1998/investboard/internal/catalog"
	"github.com/Aidin1998/investboard/internal/database"
	"github.com/Aidin1998/investboard/internal/events"
	"github.com/Aidin1998/investboard/internal/investments"
	"github.com/Aidin1998/investboard/internal/observability"
	"github.com/Aidin1998/investboard/internal/profiles"
	"github.com/Aidin1998/investboard/internal/simulations"
	"github.com/Aidin1998/investboard/internal/telemetry"
	"github.com/Aidin1998/investboard/pkg/validation"
)

const poolStatsSchedule = "*/30 * * * * *"

// service is the lifecycle every domain service shares
type service interface {
	Start() error
	Stop() error
}

func (a *app) serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve(cmd.Context())
		},
	}
}

func (a *app) serve(ctx context.Context) error {
	cfg := a.cfg
	lg := a.logger

	shutdownTracing, err := observability.Setup(ctx, cfg.Tracing, nil)
	if err != nil {
		return fmt.Errorf("failed to set up tracing: %w", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			lg.Warn("Tracing shutdown failed", zap.Error(err))
		}
	}()

	db, err := database.Open(cfg.Database, lg)
	if err != nil {
		return err
	}
	defer closeDB(db, lg)

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(ctx, db); err != nil {
			return err
		}
	}
	v := validation.NewValidator(lg)
	if cfg.Database.Seed {
		catalogData, err := database.DefaultCatalog()
		if err != nil {
			return err
		}
		if _, err := database.Seed(ctx, db, catalogData, v, lg); err != nil {
			return err
		}
	}

	cache, closeCache := a.catalogCache(ctx)
	defer closeCache()

	publisher := a.publisher()
	defer func() {
		if err := publisher.Close(); err != nil {
			lg.Warn("Failed to close event publisher", zap.Error(err))
		}
	}()

	rounding, err := cfg.Engine.RoundingMode()
	if err != nil {
		return err
	}

	profileSvc, err := profiles.NewService(lg, db, v, publisher)
	if err != nil {
		return fmt.Errorf("failed to create profile service: %w", err)
	}
	catalogSvc, err := catalog.NewService(lg, db, cache, cfg.Redis.TTL)
	if err != nil {
		return fmt.Errorf("failed to create catalog service: %w", err)
	}
	investmentSvc, err := investments.NewService(lg, db, v, publisher)
	if err != nil {
		return fmt.Errorf("failed to create investment service: %w", err)
	}
	simulationSvc, err := simulations.NewService(lg, db, catalogSvc, v, publisher, advisory.Simulator{Rounding: rounding})
	if err != nil {
		return fmt.Errorf("failed to create simulation service: %w", err)
	}

	services := []service{profileSvc, catalogSvc, investmentSvc, simulationSvc}
	for _, s := range services {
		if err := s.Start(); err != nil {
			return err
		}
	}
	defer func() {
		for i := len(services) - 1; i >= 0; i-- {
			if err := services[i].Stop(); err != nil {
				lg.Error("Failed to stop service", zap.Error(err))
			}
		}
	}()

	recorder := telemetry.NewRecorder(lg, db, cfg.Telemetry.Enabled)
	scheduler, err := a.scheduler(db, recorder)
	if err != nil {
		return err
	}
	scheduler.Start()
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		scheduler.Stop(stopCtx)
	}()

	server := api.NewServer(lg, cfg, api.Services{
		Profiles:    profileSvc,
		Catalog:     catalogSvc,
		Investments: investmentSvc,
		Simulations: simulationSvc,
		Telemetry:   recorder,
		Health:      func(ctx context.Context) error { return database.Ping(ctx, db) },
	})
	httpServer := server.HTTPServer()

	errCh := make(chan error, 1)
	go func() {
		lg.Info("Starting API server", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			lg.Error("API server failed", zap.Error(err))
			return err
		}
	case <-ctx.Done():
		lg.Info("Shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		lg.Error("Graceful shutdown failed", zap.Error(err))
		return err
	}
	lg.Info("Server exited properly")
	return nil
}

// catalogCache connects Redis when enabled. A Redis outage at startup falls
// back to serving the catalog uncached.
func (a *app) catalogCache(ctx context.Context) (catalog.Cache, func()) {
	if !a.cfg.Redis.Enabled {
		return nil, func() {}
	}
	client, err := database.NewRedisClient(ctx, a.cfg.Redis)
	if err != nil {
		a.logger.Warn("Redis unavailable, catalog cache disabled", zap.Error(err))
		return nil, func() {}
	}
	a.logger.Info("Catalog cache enabled", zap.String("redis", a.cfg.Redis.Address))
	return catalog.NewRedisCache(client, "investboard:"), func() { closeRedis(client, a.logger) }
}

func closeRedis(client *redis.Client, logger *zap.Logger) {
	if err := client.Close(); err != nil {
		logger.Warn("Failed to close Redis client", zap.Error(err))
	}
}

func (a *app) publisher() events.Publisher {
	if !a.cfg.Kafka.Enabled {
		return events.NoopPublisher{}
	}
	a.logger.Info("Publishing domain events to Kafka",
		zap.Strings("brokers", a.cfg.Kafka.Brokers),
		zap.String("topic", a.cfg.Kafka.Topic))
	return events.NewKafkaPublisher(a.cfg.Kafka, a.logger)
}

func (a *app) scheduler(db *gorm.DB, recorder *telemetry.Recorder) (*telemetry.Scheduler, error) {
	s := telemetry.NewScheduler(a.logger, time.Minute)

	if a.cfg.Telemetry.Enabled {
		retention := time.Duration(a.cfg.Telemetry.RetentionDays) * 24 * time.Hour
		if err := s.Register(a.cfg.Telemetry.PurgeSchedule, "telemetry-purge", telemetry.PurgeJob(recorder, retention)); err != nil {
			return nil, err
		}
	}

	driver := a.cfg.Database.Driver
	if err := s.Register(poolStatsSchedule, "db-pool-stats", func(context.Context) error {
		return database.ReportPoolStats(db, driver)
	}); err != nil {
		return nil, err
	}
	return s, nil
}
