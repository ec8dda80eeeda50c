package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pratik-mahalle/smmpanel/internal/api/handlers"
	"github.com/pratik-mahalle/smmpanel/internal/api/router"
	"github.com/pratik-mahalle/smmpanel/internal/config"
	"github.com/pratik-mahalle/smmpanel/internal/pkg/logger"
	"github.com/pratik-mahalle/smmpanel/internal/pkg/runlock"
	"github.com/pratik-mahalle/smmpanel/internal/pkg/validator"
	"github.com/pratik-mahalle/smmpanel/internal/realtime"
	"github.com/pratik-mahalle/smmpanel/internal/repository/postgres"
	"github.com/pratik-mahalle/smmpanel/internal/services"
	"github.com/pratik-mahalle/smmpanel/internal/worker"
	"github.com/pratik-mahalle/smmpanel/migrations"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "smmpanel: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logger.Init(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Database
	db, err := postgres.New(cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	dialect := postgres.DialectFor(cfg.Database.Driver)
	migrationsFS, err := migrations.GetFS(cfg.Database.Driver)
	if err != nil {
		return err
	}
	applied, err := postgres.RunMigrations(ctx, db, dialect, migrationsFS)
	if err != nil {
		return err
	}
	log.With("applied", len(applied)).With("driver", cfg.Database.Driver).Info("Database ready")

	// Repositories
	orderRepo := postgres.NewOrderRepository(db, dialect)
	providerRepo := postgres.NewProviderRepository(db, dialect)
	syncLogRepo := postgres.NewSyncLogRepository(db, dialect)

	bus := realtime.NewBus(log)

	syncOpts := []services.SyncOption{services.WithPublisher(bus)}
	var lockPinger handlers.Pinger
	if cfg.Redis.Enabled {
		locker, err := runlock.NewRedisLocker(ctx, runlock.RedisConfig{
			Addr:     cfg.Redis.RedisAddr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return err
		}
		defer locker.Close()

		syncOpts = append(syncOpts, services.WithLocker(locker))
		lockPinger = locker
		log.With("addr", cfg.Redis.RedisAddr()).Info("Using Redis for order sync locks")
	}

	// Services
	syncService := services.NewSyncService(orderRepo, providerRepo, syncLogRepo, cfg.Sync, log, syncOpts...)
	syncLogService := services.NewSyncLogService(syncLogRepo, log)

	scheduler, err := worker.NewOrderSyncScheduler(syncService, cfg.Sync.Schedule, log)
	if err != nil {
		return err
	}
	if cfg.Sync.CronEnabled {
		if err := scheduler.Start(); err != nil {
			return err
		}
	} else {
		log.Info("Scheduled order sync disabled")
	}

	// HTTP
	val := validator.New()
	streams := handlers.NewStreamHandler(bus, log)
	h := &router.Handlers{
		Health:   handlers.NewHealthHandler(db, lockPinger, log),
		Sync:     handlers.NewSyncHandler(syncService, scheduler, log, val),
		SyncLog:  handlers.NewSyncLogHandler(syncLogService, log),
		Provider: handlers.NewProviderHandler(providerRepo, log),
		Stream:   streams,
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router.New(cfg, log, h),
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		IdleTimeout:       2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		log.With("addr", srv.Addr).Info("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		log.Info("Shutting down")
	case err := <-errCh:
		if err != nil {
			scheduler.Stop()
			bus.Shutdown()
			return err
		}
	}

	scheduler.Stop()
	streams.Close()
	bus.Shutdown()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
