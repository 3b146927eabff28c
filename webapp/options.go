package webapp

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/taskbridge/logger"
)

// Option configures the App during creation.
type Option func(*appOptions)

type appOptions struct {
	logger          *logger.Logger
	engine          *gin.Engine
	gracefulTimeout *time.Duration
}

func resolveOptions(opts []Option) *appOptions {
	o := &appOptions{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithLogger sets a custom logger for the application.
// If not set, the logger is initialized from the config's Logging field.
func WithLogger(l *logger.Logger) Option {
	return func(o *appOptions) {
		o.logger = l
	}
}

// WithEngine uses an existing gin engine instead of creating one.
func WithEngine(e *gin.Engine) Option {
	return func(o *appOptions) {
		o.engine = e
	}
}

// WithGracefulTimeout sets the maximum duration for graceful shutdown when serving.
func WithGracefulTimeout(d time.Duration) Option {
	return func(o *appOptions) {
		o.gracefulTimeout = &d
	}
}
