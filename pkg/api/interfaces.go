package api

import (
	"context"

	"github.com/ssargent/gridstore/pkg/iric"
	"github.com/ssargent/gridstore/pkg/metrics"
)

// ServerStarter runs a viewer until its context ends
type ServerStarter interface {
	StartServer(ctx context.Context) error
}

// ServerFactory creates server instances
type ServerFactory interface {
	// CreateServerStarter creates a viewer over one open file
	CreateServerStarter(reg *iric.Registry, fid iric.FileID, config ServerConfig, m *metrics.Metrics) ServerStarter
}
