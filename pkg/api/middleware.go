package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ssargent/gridstore/pkg/logger"
	"github.com/ssargent/gridstore/pkg/mesh"
)

// apiKeyMiddleware validates the X-API-Key header. An empty expected key
// lets every request through.
func apiKeyMiddleware(expectedKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if expectedKey == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			apiKey := r.Header.Get("X-API-Key")
			if apiKey == "" {
				sendError(w, "Missing X-API-Key header", http.StatusUnauthorized)
				return
			}
			if apiKey != expectedKey {
				sendError(w, "Invalid API key", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// sendSuccess sends a successful JSON response
func sendSuccess(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	response := APIResponse{
		Success: true,
		Data:    data,
	}
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(response)
}

// sendError sends an error JSON response
func sendError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	response := APIResponse{
		Success: false,
		Error:   message,
	}
	_ = json.NewEncoder(w).Encode(response)
}

// statusFor maps a mesh error kind to an HTTP status
func statusFor(err error) int {
	var merr *mesh.Error
	if !errors.As(err, &merr) {
		return http.StatusInternalServerError
	}
	switch merr.Code {
	case mesh.NotFound, mesh.InvalidZone, mesh.StepOutOfRange:
		return http.StatusNotFound
	case mesh.InvalidGridType, mesh.InvalidDimension:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// sendMeshError sends err with the status of its kind
func sendMeshError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Error("viewer request failed", "error", err)
	}
	sendError(w, err.Error(), status)
}
