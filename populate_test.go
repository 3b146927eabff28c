package taskbridge

import (
	"context"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/taskbridge/component"
	"github.com/kbukum/taskbridge/config"
	"github.com/kbukum/taskbridge/di"
	"github.com/kbukum/taskbridge/logger"
	"github.com/kbukum/taskbridge/webapp"
	"github.com/kbukum/taskbridge/worker"
)

func TestPopulateFreshValuePerLookup(t *testing.T) {
	broker := newBroker(false)
	app := &fakeApp{}
	PopulateDependencyContext(broker, app, map[string]any{"k": "v"})

	first, _ := di.Resolve[*webapp.Request](broker.Dependencies(), webapp.CapabilityRequest)
	second, _ := di.Resolve[*webapp.Request](broker.Dependencies(), webapp.CapabilityRequest)
	if first == second || first.RequestID() == second.RequestID() {
		t.Error("expected a fresh request per lookup")
	}
	if first.App() != app || first.State()["k"] != "v" {
		t.Errorf("unexpected request scope: %+v", first.Scope())
	}
	if scope, ok := webapp.FromContext(first.HTTP().Context()); !ok || scope.App != app {
		t.Error("expected scope on the synthetic http request")
	}
}

func TestPopulateOverwrites(t *testing.T) {
	broker := newBroker(false)
	a, b := &fakeApp{name: "a"}, &fakeApp{name: "b"}
	PopulateDependencyContext(broker, a, nil)
	PopulateDependencyContext(broker, b, nil)

	if n := broker.Dependencies().Len(); n != 2 {
		t.Errorf("expected 2 registrations after repeated calls, got %d", n)
	}
	conn, err := di.Resolve[*webapp.Connection](broker.Dependencies(), webapp.CapabilityConnection)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if conn.App() != b {
		t.Error("expected the latest application")
	}
	if conn.State() == nil {
		t.Error("expected empty state map for nil state")
	}
}

func TestPopulateRegistersProviders(t *testing.T) {
	broker := newBroker(false)
	PopulateDependencyContext(broker, &fakeApp{}, nil)
	for _, info := range broker.Dependencies().Registrations() {
		if info.Mode != di.ModeProvider {
			t.Errorf("expected provider registration for %s, got %s", info.Capability, info.Mode)
		}
	}
}

// pool is a component exposing a handle through the lifespan state.
type pool struct {
	started, stopped int
}

func (p *pool) Name() string                    { return "db" }
func (p *pool) Start(ctx context.Context) error { p.started++; return nil }
func (p *pool) Stop(ctx context.Context) error  { p.stopped++; return nil }
func (p *pool) Health(ctx context.Context) component.Health {
	return component.Health{Name: "db", Status: component.StatusHealthy}
}
func (p *pool) State() map[string]any { return map[string]any{"db": p} }

func TestBridgeDrivesWebApp(t *testing.T) {
	gin.SetMode(gin.TestMode)
	app, err := webapp.NewApp(&config.ServiceConfig{Name: "shop"}, webapp.WithLogger(logger.Nop()), webapp.WithEngine(gin.New()))
	if err != nil {
		t.Fatalf("NewApp failed: %v", err)
	}
	db := &pool{}
	app.RegisterComponent(db)
	var hooks []string
	app.OnStartup(func(ctx context.Context) error { hooks = append(hooks, "startup"); return nil })
	app.OnShutdown(func(ctx context.Context) error { hooks = append(hooks, "shutdown"); return nil })

	reg := NewRegistry()
	reg.Provide("example.com/shop/web.App", app)

	broker := newBroker(true)
	Init(broker, Path("example.com/shop/web.App"), WithRegistry(reg), quiet())
	broker.Register("count_orders", func(ctx context.Context, tc *worker.TaskContext, args ...any) (any, error) {
		req, err := worker.Depends[*webapp.Request](tc, webapp.CapabilityRequest)
		if err != nil {
			return nil, err
		}
		v, _ := req.StateValue("db")
		return v, nil
	})

	if err := broker.Startup(context.Background()); err != nil {
		t.Fatalf("Startup failed: %v", err)
	}
	if db.started != 1 {
		t.Errorf("expected pool started once, got %d", db.started)
	}
	got, err := broker.Run(context.Background(), "count_orders")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if got != db {
		t.Errorf("expected task to see the pool, got %v", got)
	}

	if err := broker.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}
	if db.stopped != 1 {
		t.Errorf("expected pool stopped once, got %d", db.stopped)
	}
	if len(hooks) != 2 || hooks[0] != "startup" || hooks[1] != "shutdown" {
		t.Errorf("unexpected hooks: %v", hooks)
	}
}
