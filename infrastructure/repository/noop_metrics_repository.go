package repository

import (
	"context"

	"github.com/ca-srg/tokenmon/domain/entity"
	"github.com/ca-srg/tokenmon/domain/repository"
)

// NoOpMetricsRepository is a no-op implementation of MetricsRepository
// Used when Prometheus is not configured
type NoOpMetricsRepository struct{}

// NewNoOpMetricsRepository creates a new no-op metrics repository
func NewNoOpMetricsRepository() repository.MetricsRepository {
	return &NoOpMetricsRepository{}
}

// SendStatusMetrics does nothing
func (r *NoOpMetricsRepository) SendStatusMetrics(ctx context.Context, point *entity.StatusMetricPoint) error {
	return nil
}

// Close does nothing
func (r *NoOpMetricsRepository) Close() error {
	return nil
}
