package webapp

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/taskbridge/component"
	"github.com/kbukum/taskbridge/config"
	"github.com/kbukum/taskbridge/errors"
	"github.com/kbukum/taskbridge/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakePool implements component.Component and component.StateProvider.
type fakePool struct {
	name     string
	startErr error
	status   component.HealthStatus
	events   *[]string
}

func (p *fakePool) Name() string { return p.name }
func (p *fakePool) Start(ctx context.Context) error {
	if p.startErr != nil {
		return p.startErr
	}
	*p.events = append(*p.events, "start:"+p.name)
	return nil
}
func (p *fakePool) Stop(ctx context.Context) error {
	*p.events = append(*p.events, "stop:"+p.name)
	return nil
}
func (p *fakePool) Health(ctx context.Context) component.Health {
	status := p.status
	if status == "" {
		status = component.StatusHealthy
	}
	return component.Health{Name: p.name, Status: status}
}
func (p *fakePool) State() map[string]any { return map[string]any{p.name: "pool:" + p.name} }

func newTestApp(t *testing.T) *App {
	t.Helper()
	app, err := NewApp(&config.ServiceConfig{Name: "orders"}, WithLogger(logger.Nop()), WithEngine(gin.New()))
	if err != nil {
		t.Fatalf("NewApp failed: %v", err)
	}
	return app
}

func TestNewAppInvalidConfig(t *testing.T) {
	if _, err := NewApp(&config.ServiceConfig{}, WithLogger(logger.Nop())); err == nil {
		t.Fatal("expected validation error for missing name")
	}
}

func TestNewAppFromConfig(t *testing.T) {
	app := newTestApp(t)
	if app.Name != "orders" {
		t.Errorf("expected name orders, got %s", app.Name)
	}
	if app.cfg.Port != 8080 {
		t.Errorf("expected default port, got %d", app.cfg.Port)
	}
	if app.Engine() == nil {
		t.Error("expected engine")
	}
}

func TestStartupRunsInOrderAndStopsOnError(t *testing.T) {
	app := newTestApp(t)
	boom := fmt.Errorf("boom")
	var calls []int
	app.OnStartup(
		func(ctx context.Context) error { calls = append(calls, 1); return nil },
		func(ctx context.Context) error { calls = append(calls, 2); return boom },
		func(ctx context.Context) error { calls = append(calls, 3); return nil },
	)

	err := app.Startup(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if len(calls) != 2 {
		t.Errorf("expected hooks 1 and 2 to run, got %v", calls)
	}
}

func TestShutdownRunsAllHooks(t *testing.T) {
	app := newTestApp(t)
	first, second := fmt.Errorf("first"), fmt.Errorf("second")
	ran := 0
	app.OnShutdown(
		func(ctx context.Context) error { ran++; return first },
		func(ctx context.Context) error { ran++; return second },
		func(ctx context.Context) error { ran++; return nil },
	)

	err := app.Shutdown(context.Background())
	if ran != 3 {
		t.Errorf("expected all 3 hooks to run, got %d", ran)
	}
	if !errors.Is(err, first) || errors.Is(err, second) {
		t.Errorf("expected only the first error, got %v", err)
	}
}

func TestLifespanAcquireRelease(t *testing.T) {
	app := newTestApp(t)
	var events []string
	app.RegisterComponent(&fakePool{name: "db", events: &events})
	app.RegisterComponent(&fakePool{name: "cache", events: &events})
	app.OnLifespan(func(ctx context.Context) (map[string]any, error) {
		return map[string]any{"settings": "loaded"}, nil
	})

	lifespan := app.Lifespan()
	state, err := lifespan.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	if state["db"] != "pool:db" || state["cache"] != "pool:cache" || state["settings"] != "loaded" {
		t.Errorf("unexpected state: %v", state)
	}
	if _, err := lifespan.Acquire(context.Background()); err == nil {
		t.Error("expected error on second acquire")
	}

	if err := lifespan.Release(context.Background()); err != nil {
		t.Fatalf("Release failed: %v", err)
	}
	want := []string{"start:db", "start:cache", "stop:cache", "stop:db"}
	if fmt.Sprint(events) != fmt.Sprint(want) {
		t.Errorf("expected %v, got %v", want, events)
	}

	if err := lifespan.Release(context.Background()); err != nil {
		t.Errorf("second release must be a no-op, got %v", err)
	}
	if len(events) != 4 {
		t.Errorf("components stopped twice: %v", events)
	}
}

func TestLifespanAcquireFailureStopsStarted(t *testing.T) {
	app := newTestApp(t)
	var events []string
	app.RegisterComponent(&fakePool{name: "db", events: &events})
	app.RegisterComponent(&fakePool{name: "cache", events: &events, startErr: fmt.Errorf("refused")})

	if _, err := app.Lifespan().Acquire(context.Background()); err == nil {
		t.Fatal("expected acquire error")
	}
	want := []string{"start:db", "stop:db"}
	if fmt.Sprint(events) != fmt.Sprint(want) {
		t.Errorf("expected %v, got %v", want, events)
	}
}

func TestLifespanFuncFailure(t *testing.T) {
	app := newTestApp(t)
	var events []string
	app.RegisterComponent(&fakePool{name: "db", events: &events})
	app.OnLifespan(func(ctx context.Context) (map[string]any, error) {
		return nil, fmt.Errorf("settings unavailable")
	})
	if _, err := app.Lifespan().Acquire(context.Background()); err == nil {
		t.Fatal("expected acquire error")
	}
	if len(events) != 2 || events[1] != "stop:db" {
		t.Errorf("expected db stopped after failure, got %v", events)
	}
}

func TestSyntheticRequest(t *testing.T) {
	app := newTestApp(t)
	state := map[string]any{"db": "pool"}
	req := NewRequest(SyntheticScope(app, state))

	if !req.Synthetic() || req.RequestID() == "" {
		t.Errorf("expected synthetic request with id, got %+v", req.Scope())
	}
	if req.Scope().Type != ScopeTypeHTTP {
		t.Errorf("expected http scope, got %s", req.Scope().Type)
	}
	if v, ok := req.StateValue("db"); !ok || v != "pool" {
		t.Errorf("expected state value, got %v", v)
	}
	if got, ok := AppAs[*App](req.Connection); !ok || got != app {
		t.Error("expected request bound to app")
	}

	hr := req.HTTP()
	if hr.Method != http.MethodGet || hr.URL.Path != "/" {
		t.Errorf("unexpected synthetic request: %s %s", hr.Method, hr.URL.Path)
	}
	scope, ok := FromContext(hr.Context())
	if !ok || scope.RequestID != req.RequestID() {
		t.Error("expected scope in request context")
	}
}

func TestSyntheticScopeFreshIDs(t *testing.T) {
	a := SyntheticScope(nil, nil)
	b := SyntheticScope(nil, nil)
	if a.RequestID == b.RequestID {
		t.Error("expected distinct request ids")
	}
	if a.State == nil {
		t.Error("expected non-nil state")
	}
}

func TestFromContextMissing(t *testing.T) {
	if _, ok := FromContext(context.Background()); ok {
		t.Error("expected no scope")
	}
}

func TestRequestScopeMiddleware(t *testing.T) {
	app := newTestApp(t)
	app.setState(map[string]any{"db": "pool"})

	var seen *Request
	app.Engine().GET("/orders", func(c *gin.Context) {
		seen, _ = RequestFrom(c)
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/orders", nil)
	r.Header.Set(HeaderRequestID, "req-42")
	app.Engine().ServeHTTP(w, r)

	if w.Header().Get(HeaderRequestID) != "req-42" {
		t.Errorf("expected request id echoed, got %q", w.Header().Get(HeaderRequestID))
	}
	if seen == nil {
		t.Fatal("expected request in gin context")
	}
	if seen.Synthetic() || seen.RequestID() != "req-42" || seen.Scope().Path != "/orders" {
		t.Errorf("unexpected scope: %+v", seen.Scope())
	}
	if seen.State()["db"] != "pool" {
		t.Errorf("expected lifespan state, got %v", seen.State())
	}
	if scope, ok := FromContext(seen.HTTP().Context()); !ok || scope.RequestID != "req-42" {
		t.Error("expected scope on the real request context")
	}
}

func TestRequestScopeGeneratesID(t *testing.T) {
	app := newTestApp(t)
	app.Engine().GET("/x", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	app.Engine().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	if w.Header().Get(HeaderRequestID) == "" {
		t.Error("expected generated request id")
	}
}

func TestRecovery(t *testing.T) {
	app := newTestApp(t)
	app.Engine().GET("/panic", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	app.Engine().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))
	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", w.Code)
	}
	var body errors.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid body: %v", err)
	}
	if body.Error.Code != errors.ErrCodeInternal || strings.Contains(body.Error.Message, "boom") {
		t.Errorf("expected internal error without panic detail, got %+v", body.Error)
	}
}

func TestHealthEndpoint(t *testing.T) {
	app := newTestApp(t)
	var events []string
	app.RegisterComponent(&fakePool{name: "db", events: &events, status: component.StatusUnhealthy})

	w := httptest.NewRecorder()
	app.Engine().ServeHTTP(w, httptest.NewRequest(http.MethodGet, healthPath, nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
	var body errors.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid body: %v", err)
	}
	if body.Error.Code != errors.ErrCodeServiceUnavailable || !body.Error.Retryable {
		t.Errorf("unexpected health error: %+v", body.Error)
	}
	if comps, ok := body.Error.Details["components"].([]any); !ok || len(comps) != 1 {
		t.Errorf("expected component health in details, got %v", body.Error.Details)
	}
	if err := app.ReadyCheck(context.Background()); err == nil {
		t.Error("expected ready check failure")
	}
}

func TestServeListenerLifecycle(t *testing.T) {
	app := newTestApp(t)
	var events []string
	app.RegisterComponent(&fakePool{name: "db", events: &events})
	started, stopped := make(chan struct{}), false
	app.OnStartup(func(ctx context.Context) error { close(started); return nil })
	app.OnShutdown(func(ctx context.Context) error { stopped = true; return nil })
	app.Engine().GET("/db", func(c *gin.Context) {
		req, _ := RequestFrom(c)
		c.String(http.StatusOK, fmt.Sprint(req.State()["db"]))
	})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen failed: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.ServeListener(ctx, ln) }()

	<-started
	var body string
	for i := 0; i < 50; i++ {
		resp, err := http.Get("http://" + ln.Addr().String() + "/db")
		if err == nil {
			buf := make([]byte, 64)
			n, _ := resp.Body.Read(buf)
			resp.Body.Close()
			body = string(buf[:n])
			if body != "<nil>" {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
	}
	if body != "pool:db" {
		t.Errorf("expected handler to see lifespan state, got %q", body)
	}

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("ServeListener returned %v", err)
	}
	if !stopped {
		t.Error("expected shutdown hook to run")
	}
	if len(events) != 2 || events[1] != "stop:db" {
		t.Errorf("expected lifespan released, got %v", events)
	}
	if len(app.State()) != 0 {
		t.Error("expected state cleared after serving")
	}
}
