// Package server owns process boot and graceful shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shashiranjanraj/enventory/app/jobs"
	"github.com/shashiranjanraj/enventory/app/models"
	"github.com/shashiranjanraj/enventory/app/services"
	"github.com/shashiranjanraj/enventory/config"
	"github.com/shashiranjanraj/enventory/database/indexes"
	"github.com/shashiranjanraj/enventory/internal/kernel"
	"github.com/shashiranjanraj/enventory/pkg/cache"
	"github.com/shashiranjanraj/enventory/pkg/event"
	"github.com/shashiranjanraj/enventory/pkg/logger"
	"github.com/shashiranjanraj/enventory/pkg/mongodb"
	"github.com/shashiranjanraj/enventory/pkg/queue"
	"github.com/shashiranjanraj/enventory/pkg/storage"
	"github.com/shashiranjanraj/enventory/pkg/ws"
)

const shutdownTimeout = 15 * time.Second

// Run boots every subsystem in order and serves HTTP until SIGINT/SIGTERM.
func Run() error {
	if err := config.Load(); err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Mongo is required; startup retries with backoff.
	if err := mongodb.Connect(ctx); err != nil {
		return err
	}
	defer mongodb.Disconnect(context.Background()) //nolint:errcheck

	// Optional Mongo log shipping alongside stdout.
	var mongoLog *logger.MongoHandler
	if coll := config.MongoLogCollection(); coll != "" {
		mongoLog = logger.NewMongoHandler(mongodb.Collection(coll), slog.LevelInfo)
		logger.SetHandler(logger.NewMultiHandler(logger.L.Handler(), mongoLog))
		defer mongoLog.Close()
	}

	// Redis is optional: sessions, cache and the shared queue degrade
	// without it.
	if err := cache.Connect(ctx); err != nil {
		logger.Warn("redis unavailable, sessions and cache degraded", "error", err.Error())
	} else {
		defer cache.Close() //nolint:errcheck
	}

	if err := storage.Connect(ctx); err != nil {
		return err
	}

	if err := indexes.Ensure(ctx); err != nil {
		return err
	}

	svcs := kernel.BuildServices()

	hub := ws.NewHub()
	go hub.Run()
	defer hub.Stop()

	// Live feed: domain events fan out to connected dashboards.
	for _, name := range []string{
		services.EventOrderPlaced,
		services.EventOrderUpdated,
		services.EventOrderDeleted,
	} {
		eventName := name
		event.Listen(eventName, func(_ context.Context, payload interface{}) {
			hub.Broadcast(eventName, payload)
		})
	}
	defer event.Flush()

	// Queue: shared Redis list when available, in-process otherwise.
	if cache.RDB != nil {
		driver, err := queue.NewRedisDriver(cache.RDB, "enventory:queue")
		if err != nil {
			return err
		}
		queue.SetDriver(driver)
	} else {
		queue.SetDriver(queue.NewMemoryDriver(256))
	}
	queue.Register(&jobs.LowStockAlert{Products: svcs.Products, Hub: hub})
	queue.OnFailure = persistFailedJob
	waitWorkers := queue.StartWorkers(ctx, 2)
	defer waitWorkers()

	r := kernel.BuildRouter(svcs, hub)

	srv := &http.Server{
		Addr:              ":" + config.AppPort(),
		Handler:           r.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", srv.Addr, "env", config.AppEnv())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		// Cancel the worker context so the deferred queue wait returns.
		stop()
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}

// persistFailedJob records permanently failed jobs in Mongo so they can be
// inspected and replayed by hand.
func persistFailedJob(ctx context.Context, env queue.Envelope, err error) {
	logger.Error("job failed permanently", "job", env.Name, "error", err.Error())

	doc := map[string]interface{}{
		"name":       env.Name,
		"payload":    string(env.Payload),
		"attempts":   env.Attempts,
		"enqueuedAt": env.EnqueuedAt,
		"error":      err.Error(),
		"failedAt":   time.Now().UTC(),
	}

	insertCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if _, ierr := mongodb.Collection(models.CollFailed).InsertOne(insertCtx, doc); ierr != nil {
		logger.Error("failed job not persisted", "job", env.Name, "error", ierr.Error())
	}
}
