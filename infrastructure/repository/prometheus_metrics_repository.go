package repository

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/ca-srg/tokenmon/domain/entity"
	"github.com/ca-srg/tokenmon/domain/repository"
	"github.com/ca-srg/tokenmon/infrastructure/config"
)

const (
	// UsagePercentMetric is the current session usage gauge
	UsagePercentMetric = "tokenmon_session_usage_percent"

	// ResetRemainingMetric is the seconds left until the session resets
	ResetRemainingMetric = "tokenmon_session_reset_remaining_seconds"
)

// PrometheusMetricsRepository implements MetricsRepository using Prometheus Remote Write
type PrometheusMetricsRepository struct {
	config    *config.PrometheusConfig
	rwClient  *RemoteWriteClient
	hostLabel string
}

// NewPrometheusMetricsRepository creates a new Prometheus metrics repository
func NewPrometheusMetricsRepository(cfg *config.PrometheusConfig) (repository.MetricsRepository, error) {
	if cfg == nil {
		return nil, repository.NewMetricsRepositoryError("initialize", fmt.Errorf("prometheus config is nil"))
	}
	if cfg.RemoteWriteURL == "" {
		return nil, repository.NewMetricsRepositoryError("initialize", fmt.Errorf("remote write url is empty"))
	}

	var authConfig *AuthConfig
	if cfg.RemoteWriteUsername != "" && cfg.RemoteWritePassword != "" {
		authConfig = &AuthConfig{
			Username: cfg.RemoteWriteUsername,
			Password: cfg.RemoteWritePassword,
		}
	}

	rwClient, err := NewRemoteWriteClient(cfg.RemoteWriteURL, time.Duration(cfg.TimeoutSec)*time.Second, authConfig)
	if err != nil {
		return nil, repository.NewMetricsRepositoryError("initialize", err)
	}

	return &PrometheusMetricsRepository{
		config:    cfg,
		rwClient:  rwClient,
		hostLabel: resolveHostLabel(cfg.HostLabel),
	}, nil
}

// resolveHostLabel falls back to the hostname, then "unknown"
func resolveHostLabel(configured string) string {
	if configured != "" {
		return configured
	}
	hostname, err := os.Hostname()
	if err != nil || hostname == "" {
		return "unknown"
	}
	return hostname
}

// SendStatusMetrics pushes every gauge present on the point in one request
func (r *PrometheusMetricsRepository) SendStatusMetrics(ctx context.Context, point *entity.StatusMetricPoint) error {
	if point == nil || !point.HasValues() {
		return nil
	}

	if r.config.TimeoutSec > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(r.config.TimeoutSec)*time.Second)
		defer cancel()
	}

	labels := map[string]string{
		"host": r.hostLabel,
	}
	if point.Host != "" {
		labels["host"] = point.Host
	}
	if point.Timezone != "" {
		labels["timezone"] = point.Timezone
	}
	if point.TimezoneOffset != "" {
		labels["timezone_offset"] = point.TimezoneOffset
	}

	timestamp := point.Timestamp
	if timestamp.IsZero() {
		timestamp = time.Now()
	}

	var series []TimeSeries
	if point.UsagePercent != nil {
		series = append(series, TimeSeries{
			Name:        UsagePercentMetric,
			Labels:      labels,
			Value:       *point.UsagePercent,
			TimestampMs: timestamp.UnixMilli(),
		})
	}
	if point.ResetRemainingSeconds != nil {
		series = append(series, TimeSeries{
			Name:        ResetRemainingMetric,
			Labels:      labels,
			Value:       *point.ResetRemainingSeconds,
			TimestampMs: timestamp.UnixMilli(),
		})
	}

	if err := r.rwClient.Send(ctx, series); err != nil {
		if ctx.Err() != nil {
			return repository.NewMetricsRepositoryError("send", fmt.Errorf("timeout: %w", err))
		}
		return repository.NewMetricsRepositoryError("send", err)
	}
	return nil
}

// HostLabel returns the host label attached to every series
func (r *PrometheusMetricsRepository) HostLabel() string {
	return r.hostLabel
}

// Close cleans up resources
func (r *PrometheusMetricsRepository) Close() error {
	// Remote Write client doesn't require explicit cleanup
	return nil
}
