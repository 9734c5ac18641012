package api

import (
	"github.com/ssargent/gridstore/pkg/iric"
	"github.com/ssargent/gridstore/pkg/metrics"
)

// DefaultServerFactory is the default implementation of ServerFactory
type DefaultServerFactory struct{}

// NewServerFactory creates a new server factory
func NewServerFactory() ServerFactory {
	return &DefaultServerFactory{}
}

// CreateServerStarter returns a *Server
func (f *DefaultServerFactory) CreateServerStarter(reg *iric.Registry, fid iric.FileID,
	config ServerConfig, m *metrics.Metrics) ServerStarter {
	return NewServer(reg, fid, config, m)
}
