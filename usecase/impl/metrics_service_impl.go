package impl

import (
	"context"
	"sync"
	"time"

	"github.com/ca-srg/tokenmon/domain"
	"github.com/ca-srg/tokenmon/domain/entity"
	"github.com/ca-srg/tokenmon/domain/repository"
	usecase "github.com/ca-srg/tokenmon/usecase/interface"
)

// MetricsServiceImpl implements the MetricsService interface
type MetricsServiceImpl struct {
	metricsRepo   repository.MetricsRepository
	countdown     usecase.CountdownService
	timezones     repository.TimezoneService
	configService usecase.ConfigService
	enabled       bool
	logger        domain.Logger
	now           func() time.Time

	mu     sync.Mutex
	closed bool
}

// NewMetricsServiceImpl creates a new metrics service implementation.
// enabled is false when no remote write endpoint is configured.
func NewMetricsServiceImpl(
	metricsRepo repository.MetricsRepository,
	countdown usecase.CountdownService,
	timezones repository.TimezoneService,
	configService usecase.ConfigService,
	enabled bool,
	logger domain.Logger,
) usecase.MetricsService {
	return &MetricsServiceImpl{
		metricsRepo:   metricsRepo,
		countdown:     countdown,
		timezones:     timezones,
		configService: configService,
		enabled:       enabled,
		logger:        logger,
		now:           time.Now,
	}
}

// Enabled reports whether a remote endpoint is configured
func (s *MetricsServiceImpl) Enabled() bool {
	return s.enabled
}

// SendSnapshot converts snapshot into gauges and pushes them
func (s *MetricsServiceImpl) SendSnapshot(ctx context.Context, snapshot *entity.StatusSnapshot) error {
	if !s.enabled || snapshot == nil {
		return nil
	}

	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return usecase.NewMetricsServiceError("closed", "metrics service is closed")
	}

	now := s.now()
	point := entity.NewStatusMetricPoint(snapshot, now, "")

	// the gauge follows the projected countdown, not the raw instant
	cycle := time.Duration(0)
	if cfg := s.configService.GetConfig(); cfg != nil && cfg.Reset != nil {
		cycle = cfg.Reset.Cycle()
	}
	if remaining, ok := s.countdown.Remaining(snapshot, now, cycle); ok {
		seconds := remaining.Seconds()
		point.ResetRemainingSeconds = &seconds
	}

	loc := snapshot.ResetLocation()
	if loc == nil {
		loc = s.timezones.DefaultLocation()
	}
	info := s.timezones.GetTimezoneInfo(loc, now)
	point.WithTimezone(info.Name, info.Offset)

	if !point.HasValues() {
		s.logger.Debug(ctx, "Snapshot has no values, skipping metrics")
		return nil
	}

	if err := s.metricsRepo.SendStatusMetrics(ctx, point); err != nil {
		return domain.ErrMetrics("send", err)
	}

	fields := []domain.Field{domain.NewField("timezone", info.Name)}
	if point.UsagePercent != nil {
		fields = append(fields, domain.NewField("usage_percent", *point.UsagePercent))
	}
	if point.ResetRemainingSeconds != nil {
		fields = append(fields, domain.NewField("reset_remaining_seconds", *point.ResetRemainingSeconds))
	}
	s.logger.Info(ctx, "Sent status metrics", fields...)
	return nil
}

// Close releases the underlying client
func (s *MetricsServiceImpl) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.metricsRepo.Close()
}
