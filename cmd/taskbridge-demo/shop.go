package main

import (
	"context"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/taskbridge/component"
	"github.com/kbukum/taskbridge/config"
	"github.com/kbukum/taskbridge/errors"
	"github.com/kbukum/taskbridge/logger"
	"github.com/kbukum/taskbridge/webapp"
)

const stateKeyOrders = "orders"

// orderStore stands in for a database pool: opened on start, closed on stop.
type orderStore struct {
	mu     sync.RWMutex
	open   bool
	orders []string
}

func (s *orderStore) Name() string { return "order-store" }

func (s *orderStore) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.open = true
	s.orders = []string{"A-100", "A-101", "A-102"}
	return nil
}

func (s *orderStore) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.open = false
	return nil
}

func (s *orderStore) Health(ctx context.Context) component.Health {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.open {
		return component.Health{Name: s.Name(), Status: component.StatusUnhealthy, Message: "closed"}
	}
	return component.Health{Name: s.Name(), Status: component.StatusHealthy}
}

func (s *orderStore) State() map[string]any {
	return map[string]any{stateKeyOrders: s}
}

func (s *orderStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.orders)
}

// newShopApp builds the web application shared by the server and the worker.
func newShopApp(cfg *config.ServiceConfig) (*webapp.App, error) {
	app, err := webapp.NewApp(cfg)
	if err != nil {
		return nil, err
	}
	if err := app.RegisterComponent(&orderStore{}); err != nil {
		return nil, err
	}
	app.OnStartup(func(ctx context.Context) error {
		app.Logger.Info("Shop starting", logger.Fields("version", app.Version))
		return nil
	})
	app.OnShutdown(func(ctx context.Context) error {
		app.Logger.Info("Shop stopping")
		return nil
	})

	app.Engine().GET("/orders/count", func(c *gin.Context) {
		req, ok := webapp.RequestFrom(c)
		if !ok {
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		store, ok := req.State()[stateKeyOrders].(*orderStore)
		if !ok {
			appErr := errors.ServiceUnavailable("order store")
			c.AbortWithStatusJSON(appErr.HTTPStatus, appErr.ToResponse())
			return
		}
		c.JSON(http.StatusOK, gin.H{"count": store.Count(), "request_id": req.RequestID()})
	})
	return app, nil
}
