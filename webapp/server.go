package webapp

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/kbukum/taskbridge/component"
	"github.com/kbukum/taskbridge/errors"
	"github.com/kbukum/taskbridge/logger"
)

const healthPath = "/health"

// Serve binds the configured address and serves until ctx is canceled.
func (a *App) Serve(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", a.cfg.Host, a.cfg.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("server failed to bind %s: %w", addr, err)
	}
	return a.ServeListener(ctx, ln)
}

// ServeListener runs the full server lifecycle on ln: startup hooks, lifespan
// acquire, serving until ctx is canceled, then graceful HTTP shutdown,
// shutdown hooks and lifespan release.
func (a *App) ServeListener(ctx context.Context, ln net.Listener) error {
	if err := a.Startup(ctx); err != nil {
		ln.Close()
		return err
	}
	lifespan := a.Lifespan()
	state, err := lifespan.Acquire(ctx)
	if err != nil {
		ln.Close()
		return err
	}
	a.setState(state)
	if err := a.ReadyCheck(ctx); err != nil {
		a.Logger.Warn("Ready check reported issues", logger.Fields(logger.FieldError, err.Error()))
	}

	srv := a.httpServer(ln.Addr().String())

	serveErr := make(chan error, 1)
	go func() {
		a.Logger.Info("HTTP server started", logger.Fields("addr", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			serveErr <- err
		}
		close(serveErr)
	}()

	var runErr error
	select {
	case <-ctx.Done():
	case err := <-serveErr:
		runErr = err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.gracefulTimeout)
	defer cancel()

	a.Logger.Info("Shutting down HTTP server")
	errs := []error{runErr}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("server shutdown error: %w", err))
	}
	errs = append(errs, a.Shutdown(shutdownCtx), lifespan.Release(shutdownCtx))
	a.setState(map[string]any{})
	return errors.Join(errs...)
}

func (a *App) httpServer(addr string) *http.Server {
	// h2c serves HTTP/2 over cleartext alongside HTTP/1.1.
	h2s := &http2.Server{
		MaxConcurrentStreams: 250,
		IdleTimeout:          120 * time.Second,
	}
	return &http.Server{
		Addr:         addr,
		Handler:      h2c.NewHandler(a.engine, h2s),
		ReadTimeout:  time.Duration(a.cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(a.cfg.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(a.cfg.IdleTimeout) * time.Second,
	}
}

type healthResponse struct {
	Service    string                 `json:"service"`
	Status     component.HealthStatus `json:"status"`
	Version    string                 `json:"version,omitempty"`
	Components []component.Health     `json:"components,omitempty"`
}

func (a *App) healthHandler(c *gin.Context) {
	resp := healthResponse{
		Service:    a.Name,
		Status:     component.StatusHealthy,
		Version:    a.Version,
		Components: a.Components.HealthAll(c.Request.Context()),
	}
	for _, h := range resp.Components {
		switch h.Status {
		case component.StatusUnhealthy:
			resp.Status = component.StatusUnhealthy
		case component.StatusDegraded:
			if resp.Status != component.StatusUnhealthy {
				resp.Status = component.StatusDegraded
			}
		}
	}
	if resp.Status == component.StatusUnhealthy {
		appErr := errors.ServiceUnavailable(a.Name).WithDetail("components", resp.Components)
		c.JSON(appErr.HTTPStatus, appErr.ToResponse())
		return
	}
	c.JSON(http.StatusOK, resp)
}
