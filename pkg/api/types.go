package api

import "github.com/ssargent/gridstore/pkg/iric"

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// ServerConfig holds configuration for the viewer server
type ServerConfig struct {
	Port int
	Bind string
	// APIKey, when set, is required in the X-API-Key header of /api/v1 routes
	APIKey string
}

// HealthResponse is returned by /health
type HealthResponse struct {
	Status string `json:"status"`
	Zones  int    `json:"zones"`
	Steps  int    `json:"steps"`
}

// SolutionStep is one entry of /solutions
type SolutionStep struct {
	Step int     `json:"step"`
	Time float64 `json:"time"`
}

// FieldResponse carries the values of one attribute field. Exactly one of
// Real and Integer is set.
type FieldResponse struct {
	Name    string    `json:"name"`
	Domain  string    `json:"domain"`
	Real    []float64 `json:"real,omitempty"`
	Integer []int32   `json:"integer,omitempty"`
}

// CoordinatesResponse carries one coordinate axis
type CoordinatesResponse struct {
	Axis   string    `json:"axis"`
	Values []float64 `json:"values"`
}

// ParticleGroupResponse carries one particle group of one step
type ParticleGroupResponse struct {
	Group string `json:"group"`
	Step  int    `json:"step"`
	iric.ParticleGroup
}
