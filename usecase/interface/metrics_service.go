package usecase

import (
	"context"

	"github.com/ca-srg/tokenmon/domain/entity"
)

// MetricsService publishes snapshot-derived gauges
type MetricsService interface {
	// SendSnapshot pushes the gauges for snapshot; it is a no-op when metrics are disabled
	SendSnapshot(ctx context.Context, snapshot *entity.StatusSnapshot) error

	// Enabled reports whether a remote endpoint is configured
	Enabled() bool

	// Close releases the underlying client
	Close() error
}

// MetricsServiceError represents an error from metrics service operations
type MetricsServiceError struct {
	Code    string
	Message string
	Details map[string]interface{}
}

func (e *MetricsServiceError) Error() string {
	return e.Message
}

// NewMetricsServiceError creates a new metrics service error
func NewMetricsServiceError(code, message string) *MetricsServiceError {
	return &MetricsServiceError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// WithDetail adds a detail to the error
func (e *MetricsServiceError) WithDetail(key string, value interface{}) *MetricsServiceError {
	e.Details[key] = value
	return e
}
