// Package di wires the components the CLI needs
package di

import (
	"github.com/ssargent/gridstore/pkg/api"
	"github.com/ssargent/gridstore/pkg/config"
	"github.com/ssargent/gridstore/pkg/iric"
	"github.com/ssargent/gridstore/pkg/metrics"
)

// Container holds all the dependencies for the application
type Container struct {
	config        *config.Config
	metrics       *metrics.Metrics
	serverFactory api.ServerFactory
	registry      *iric.Registry
}

// NewContainer creates a container for cfg. Nil means the default config.
func NewContainer(cfg *config.Config) *Container {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &Container{
		config:        cfg,
		metrics:       metrics.NewMetrics(),
		serverFactory: api.NewServerFactory(),
	}
}

// Config returns the configuration the container was built with
func (c *Container) Config() *config.Config {
	return c.config
}

// Metrics returns the process metrics
func (c *Container) Metrics() *metrics.Metrics {
	return c.metrics
}

// Registry returns the file registry, creating it on first use with the
// configured storage options
func (c *Container) Registry() *iric.Registry {
	if c.registry == nil {
		c.registry = iric.NewRegistry(
			iric.WithStoreOptions(c.config.StoreOptions()),
			iric.WithMetrics(c.metrics),
		)
	}
	return c.registry
}

// ServerConfig translates the server section of the config
func (c *Container) ServerConfig() api.ServerConfig {
	return api.ServerConfig{
		Port:   c.config.Server.Port,
		Bind:   c.config.Server.Bind,
		APIKey: c.config.Server.APIKey,
	}
}

// GetServerFactory returns the server factory
func (c *Container) GetServerFactory() api.ServerFactory {
	return c.serverFactory
}

// SetServerFactory allows overriding the server factory (for testing)
func (c *Container) SetServerFactory(factory api.ServerFactory) {
	c.serverFactory = factory
}
