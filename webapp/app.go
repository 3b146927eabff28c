package webapp

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/kbukum/taskbridge/component"
	"github.com/kbukum/taskbridge/config"
	"github.com/kbukum/taskbridge/logger"
)

// App is a gin-based web application with startup and shutdown hooks and a
// lifespan over its registered components. The same App is served over HTTP
// by the web process and driven by a worker bridge in task workers.
//
// Example:
//
//	app, err := webapp.NewApp(&cfg)
//	app.RegisterComponent(db)
//	app.OnStartup(func(ctx context.Context) error { return warmCache(ctx) })
//	app.Engine().GET("/orders", listOrders)
//	app.Serve(ctx)
type App struct {
	Name       string
	Version    string
	Components *component.Registry
	Logger     *logger.Logger

	cfg             config.HTTPConfig
	engine          *gin.Engine
	gracefulTimeout time.Duration

	onStartup  []Hook
	onShutdown []Hook
	onLifespan []LifespanFunc

	mu    sync.RWMutex
	state map[string]any
}

// NewApp creates an application from the service configuration.
// It applies defaults, validates the config, and initializes the logger.
func NewApp(cfg *config.ServiceConfig, opts ...Option) (*App, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	o := resolveOptions(opts)

	app := &App{
		Name:            cfg.Name,
		Version:         cfg.Version,
		Components:      component.NewRegistry(),
		cfg:             cfg.HTTP,
		gracefulTimeout: 15 * time.Second,
		state:           map[string]any{},
	}
	if o.gracefulTimeout != nil {
		app.gracefulTimeout = *o.gracefulTimeout
	}

	if o.logger != nil {
		app.Logger = o.logger.WithComponent("webapp")
	} else {
		logger.Init(&cfg.Logging)
		app.Logger = logger.Get("webapp")
	}

	if o.engine != nil {
		app.engine = o.engine
	} else {
		app.engine = newEngine()
	}
	app.engine.Use(Recovery(app.Logger), app.RequestScope(), RequestLogger(app.Logger))
	app.engine.GET(healthPath, app.healthHandler)

	return app, nil
}

// newEngine creates a bare gin engine whose mode follows the zerolog level.
func newEngine() *gin.Engine {
	if zerolog.GlobalLevel() <= zerolog.DebugLevel {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	return gin.New()
}

// Engine returns the gin engine for route registration.
func (a *App) Engine() *gin.Engine {
	return a.engine
}

// RegisterComponent adds a component to the application's lifespan.
func (a *App) RegisterComponent(c component.Component) error {
	return a.Components.Register(c)
}

// Startup runs the startup hooks in registration order and stops at the
// first failure.
func (a *App) Startup(ctx context.Context) error {
	a.Logger.Info("Running startup hooks", logger.Fields(logger.FieldCount, len(a.onStartup)))
	if err := runHooks(ctx, a.onStartup); err != nil {
		return err
	}
	a.Logger.Debug("Startup hooks complete")
	return nil
}

// Shutdown runs every shutdown hook in registration order. Failures are
// logged and the first one is returned after the remaining hooks ran.
func (a *App) Shutdown(ctx context.Context) error {
	a.Logger.Info("Running shutdown hooks", logger.Fields(logger.FieldCount, len(a.onShutdown)))
	var first error
	for i, h := range a.onShutdown {
		if err := h(ctx); err != nil {
			a.Logger.Error("Shutdown hook failed", logger.Fields("hook", i, logger.FieldError, err.Error()))
			if first == nil {
				first = fmt.Errorf("shutdown hook %d failed: %w", i, err)
			}
		}
	}
	return first
}

// State returns a copy of the lifespan state published while serving.
func (a *App) State() map[string]any {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make(map[string]any, len(a.state))
	for k, v := range a.state {
		out[k] = v
	}
	return out
}

func (a *App) setState(state map[string]any) {
	a.mu.Lock()
	a.state = state
	a.mu.Unlock()
}

// ReadyCheck verifies that all registered components are healthy.
func (a *App) ReadyCheck(ctx context.Context) error {
	var unhealthy []string
	for _, h := range a.Components.HealthAll(ctx) {
		if h.Status != component.StatusHealthy {
			detail := h.Name + "=" + string(h.Status)
			if h.Message != "" {
				detail += "(" + h.Message + ")"
			}
			unhealthy = append(unhealthy, detail)
		}
	}
	if len(unhealthy) > 0 {
		return fmt.Errorf("unhealthy components: %v", unhealthy)
	}
	return nil
}
