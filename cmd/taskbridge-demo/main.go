// Command taskbridge-demo runs one shop application either as an HTTP server
// or as a task worker that reuses the application's lifecycle.
//
// TASKBRIDGE_WORKER_PROCESS=true selects worker mode; configuration is read
// from config.yml and TASKBRIDGE_* environment variables.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kbukum/taskbridge"
	"github.com/kbukum/taskbridge/config"
	"github.com/kbukum/taskbridge/logger"
	"github.com/kbukum/taskbridge/observability"
	"github.com/kbukum/taskbridge/webapp"
	"github.com/kbukum/taskbridge/worker"
)

const (
	serviceName = "taskbridge-demo"
	appPath     = "github.com/kbukum/taskbridge/cmd/taskbridge-demo.NewShopApp"
)

func main() {
	if err := run(); err != nil {
		logger.Error("Demo failed", logger.Fields(logger.FieldError, err.Error()))
		os.Exit(1)
	}
}

func run() error {
	var cfg config.ServiceConfig
	if err := config.LoadConfig(serviceName, &cfg); err != nil {
		return err
	}
	if cfg.Name == "" {
		cfg.Name = serviceName
	}
	if cfg.Worker.AppPath == "" {
		cfg.Worker.AppPath = appPath
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}
	logger.Init(&cfg.Logging)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics, shutdownTelemetry, err := initTelemetry(ctx, &cfg)
	defer shutdownTelemetry()
	if err != nil {
		return err
	}

	taskbridge.MustProvide(appPath, func() (*webapp.App, error) { return newShopApp(&cfg) })

	if !cfg.Worker.Process {
		app, err := newShopApp(&cfg)
		if err != nil {
			return err
		}
		return app.Serve(ctx)
	}
	return runWorker(ctx, &cfg, metrics)
}

func runWorker(ctx context.Context, cfg *config.ServiceConfig, metrics *observability.LifecycleMetrics) error {
	broker := worker.NewInMemoryBroker(
		worker.WithWorkerProcess(true),
		worker.WithMetrics(metrics),
	)

	ref, opts, err := taskbridge.ConfigRef(cfg.Worker)
	if err != nil {
		return err
	}
	taskbridge.Init(broker, ref, append(opts, taskbridge.WithMetrics(metrics))...)

	broker.Register("count_orders", func(ctx context.Context, tc *worker.TaskContext, args ...any) (any, error) {
		req, err := worker.Depends[*webapp.Request](tc, webapp.CapabilityRequest)
		if err != nil {
			return nil, err
		}
		store, ok := req.State()[stateKeyOrders].(*orderStore)
		if !ok {
			return nil, fmt.Errorf("order store missing from lifespan state")
		}
		return store.Count(), nil
	})

	if err := broker.Startup(ctx); err != nil {
		return fmt.Errorf("worker startup: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := broker.Shutdown(shutdownCtx); err != nil {
			logger.Error("Worker shutdown failed", logger.Fields(logger.FieldError, err.Error()))
		}
	}()

	count, err := broker.Run(ctx, "count_orders")
	if err != nil {
		return err
	}
	logger.Info("Task finished", logger.Fields(logger.FieldTaskName, "count_orders", "result", count))
	return nil
}

// initTelemetry installs OTLP exporters when tracing is enabled. Otherwise
// lifecycle metrics are recorded on the global no-op meter.
func initTelemetry(ctx context.Context, cfg *config.ServiceConfig) (*observability.LifecycleMetrics, func(), error) {
	noop := func() {}
	if !cfg.Tracing.Enabled {
		m, err := observability.NewLifecycleMetrics(observability.Meter(cfg.Name))
		return m, noop, err
	}

	tp, err := observability.InitTracer(ctx, observability.TracerConfigFrom(cfg))
	if err != nil {
		return nil, noop, err
	}
	meterCfg := observability.DefaultMeterConfig(cfg.Name)
	meterCfg.ServiceVersion = cfg.Version
	meterCfg.Environment = cfg.Environment
	meterCfg.Endpoint = cfg.Tracing.Endpoint
	meterCfg.Insecure = cfg.Tracing.Insecure
	shutdown := func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = tp.Shutdown(sctx)
	}

	mp, err := observability.InitMeter(ctx, meterCfg)
	if err != nil {
		return nil, shutdown, err
	}
	shutdown = func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = tp.Shutdown(sctx)
		_ = mp.Shutdown(sctx)
	}

	m, err := observability.NewLifecycleMetrics(observability.Meter(cfg.Name))
	return m, shutdown, err
}
