package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.opentelemetry.io/otel/metric/noop"

	"github.com/kbukum/taskbridge"
	"github.com/kbukum/taskbridge/component"
	"github.com/kbukum/taskbridge/config"
	"github.com/kbukum/taskbridge/logger"
	"github.com/kbukum/taskbridge/observability"
	"github.com/kbukum/taskbridge/webapp"
)

func testConfig(worker bool) *config.ServiceConfig {
	cfg := &config.ServiceConfig{
		Name:    serviceName,
		Logging: logger.Config{Level: "error", Format: logger.FormatJSON, Output: "discard"},
		Worker:  config.WorkerConfig{Process: worker, AppPath: appPath},
	}
	cfg.ApplyDefaults()
	return cfg
}

func TestOrderStoreLifecycle(t *testing.T) {
	s := &orderStore{}
	ctx := context.Background()
	if h := s.Health(ctx); h.Status != component.StatusUnhealthy {
		t.Errorf("expected unhealthy before start, got %s", h.Status)
	}
	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if s.Count() != 3 {
		t.Errorf("expected 3 orders, got %d", s.Count())
	}
	if s.State()[stateKeyOrders] != s {
		t.Error("expected store exposed in state")
	}
	s.Stop(ctx)
	if h := s.Health(ctx); h.Status != component.StatusUnhealthy {
		t.Errorf("expected unhealthy after stop, got %s", h.Status)
	}
}

func TestCountRouteWithoutLifespanState(t *testing.T) {
	app, err := newShopApp(testConfig(false))
	if err != nil {
		t.Fatalf("newShopApp failed: %v", err)
	}
	w := httptest.NewRecorder()
	app.Engine().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/orders/count", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503 before the lifespan is acquired, got %d", w.Code)
	}
}

func TestRunWorker(t *testing.T) {
	cfg := testConfig(true)
	taskbridge.MustProvide(appPath, func() (*webapp.App, error) { return newShopApp(cfg) })

	metrics, err := observability.NewLifecycleMetrics(noop.NewMeterProvider().Meter("test"))
	if err != nil {
		t.Fatalf("NewLifecycleMetrics failed: %v", err)
	}
	if err := runWorker(context.Background(), cfg, metrics); err != nil {
		t.Fatalf("runWorker failed: %v", err)
	}
}
