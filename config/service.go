package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/kbukum/taskbridge/logger"
	"github.com/kbukum/taskbridge/validation"
)

// WorkerProcessEnv overrides worker.process when set to a boolean value.
// Worker launchers export it so the same binary can act as producer or worker.
const WorkerProcessEnv = "TASKBRIDGE_WORKER_PROCESS"

// ServiceConfig is the configuration shared by the web server and the worker
// processes of one application.
//
// Example:
//
//	type MyConfig struct {
//	    config.ServiceConfig `yaml:",inline" mapstructure:",squash"`
//	    Billing BillingConfig `yaml:"billing" mapstructure:"billing"`
//	}
type ServiceConfig struct {
	Name        string        `yaml:"name" mapstructure:"name" validate:"required"`
	Environment string        `yaml:"environment" mapstructure:"environment" validate:"oneof=development staging production"`
	Version     string        `yaml:"version" mapstructure:"version"`
	Debug       bool          `yaml:"debug" mapstructure:"debug"`
	Logging     logger.Config `yaml:"logging" mapstructure:"logging"`
	Worker      WorkerConfig  `yaml:"worker" mapstructure:"worker"`
	HTTP        HTTPConfig    `yaml:"http" mapstructure:"http"`
	Tracing     TracingConfig `yaml:"tracing" mapstructure:"tracing"`
}

// WorkerConfig controls how a worker process reuses the web application.
type WorkerConfig struct {
	// Process marks this process as a task-executing worker. Producer
	// processes leave it false so no application resources are acquired.
	Process bool `yaml:"process" mapstructure:"process"`
	// AppPath names the registered application, e.g. "example.com/shop/web.App".
	AppPath string `yaml:"app_path" mapstructure:"app_path" validate:"omitempty,apppath"`
	// Factory forces the object registered under AppPath to be called.
	Factory bool `yaml:"factory" mapstructure:"factory"`
	// DisableLifespan skips acquiring the application lifespan.
	DisableLifespan bool `yaml:"disable_lifespan" mapstructure:"disable_lifespan"`
}

// HTTPConfig holds HTTP server configuration for server mode.
type HTTPConfig struct {
	Host         string `yaml:"host" mapstructure:"host"`
	Port         int    `yaml:"port" mapstructure:"port" validate:"min=0,max=65535"`
	ReadTimeout  int    `yaml:"read_timeout" mapstructure:"read_timeout" validate:"min=0"`   // seconds
	WriteTimeout int    `yaml:"write_timeout" mapstructure:"write_timeout" validate:"min=0"` // seconds
	IdleTimeout  int    `yaml:"idle_timeout" mapstructure:"idle_timeout" validate:"min=0"`   // seconds
}

// TracingConfig configures OTLP trace and metric export.
type TracingConfig struct {
	Enabled    bool    `yaml:"enabled" mapstructure:"enabled"`
	Endpoint   string  `yaml:"endpoint" mapstructure:"endpoint" validate:"omitempty,hostname_port"`
	Insecure   bool    `yaml:"insecure" mapstructure:"insecure"`
	SampleRate float64 `yaml:"sample_rate" mapstructure:"sample_rate" validate:"min=0,max=1"`
}

// GetServiceConfig returns the base ServiceConfig. When embedded, the method
// is promoted so the embedding struct exposes the shared fields.
func (c *ServiceConfig) GetServiceConfig() *ServiceConfig {
	return c
}

// ApplyDefaults applies default values to the configuration.
// Override this in embedding structs and call c.ServiceConfig.ApplyDefaults() first.
func (c *ServiceConfig) ApplyDefaults() {
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Environment == "development" {
		c.Debug = true
	}
	if c.Logging.ServiceName == "" && c.Name != "" {
		c.Logging.ServiceName = c.Name
	}
	c.Logging.ApplyDefaults()

	if c.HTTP.Port == 0 {
		c.HTTP.Port = 8080
	}
	if c.HTTP.ReadTimeout == 0 {
		c.HTTP.ReadTimeout = 15
	}
	if c.HTTP.WriteTimeout == 0 {
		c.HTTP.WriteTimeout = 15
	}
	if c.HTTP.IdleTimeout == 0 {
		c.HTTP.IdleTimeout = 60
	}

	if c.Tracing.Endpoint == "" && c.Tracing.Enabled {
		c.Tracing.Endpoint = "localhost:4318"
	}
	if c.Tracing.SampleRate == 0 {
		c.Tracing.SampleRate = 1.0
	}

	if v, ok := os.LookupEnv(WorkerProcessEnv); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Worker.Process = b
		}
	}
}

// Validate validates the configuration.
// Override this in embedding structs and call c.ServiceConfig.Validate() first.
func (c *ServiceConfig) Validate() error {
	if err := validation.Validate(c); err != nil {
		return err
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("config.logging: %w", err)
	}
	return nil
}
