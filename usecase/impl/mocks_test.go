package impl

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/ca-srg/tokenmon/domain"
	"github.com/ca-srg/tokenmon/domain/entity"
	"github.com/ca-srg/tokenmon/domain/repository"
	"github.com/ca-srg/tokenmon/infrastructure/config"
)

// mockConfigService serves a fixed configuration
type mockConfigService struct {
	mu        sync.RWMutex
	cfg       *config.AppConfig
	configDir string
	reloads   int32
}

func newMockConfigService(cfg *config.AppConfig) *mockConfigService {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &mockConfigService{cfg: cfg}
}

func (m *mockConfigService) GetConfig() *config.AppConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cfg
}

func (m *mockConfigService) SetConfig(cfg *config.AppConfig) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cfg = cfg
}

func (m *mockConfigService) UpdateConfig(newConfig *config.AppConfig) error {
	m.SetConfig(newConfig)
	return nil
}

func (m *mockConfigService) GetConfigWithSources() (*config.AppConfig, config.ConfigSourceMap) {
	cfg := m.GetConfig()
	return cfg, cfg.ConfigSources
}

func (m *mockConfigService) SaveConfig() error { return nil }

func (m *mockConfigService) ReloadConfig() error {
	atomic.AddInt32(&m.reloads, 1)
	return nil
}

func (m *mockConfigService) GetConfigPath() string { return "" }

func (m *mockConfigService) GetConfigDir() string { return m.configDir }

func (m *mockConfigService) CreateDefaultConfig() error { return nil }

func (m *mockConfigService) RestoreDefaultConfig() error { return nil }

func (m *mockConfigService) ExportConfig() map[string]interface{} { return nil }

func (m *mockConfigService) EnsureConfigExists() error { return nil }

// captureStep is one scripted response of the fake runner
type captureStep struct {
	stdout string
	exit   int
	err    error
}

// fakeCaptureRepository replays steps; the last step repeats
type fakeCaptureRepository struct {
	mu       sync.Mutex
	steps    []captureStep
	requests []repository.CaptureRequest
	launches int32

	// started receives one value per launch when set
	started chan struct{}
	// release gates every launch when set
	release chan struct{}
}

func (f *fakeCaptureRepository) Run(ctx context.Context, req repository.CaptureRequest) (*repository.CaptureResult, error) {
	n := atomic.AddInt32(&f.launches, 1)

	f.mu.Lock()
	f.requests = append(f.requests, req)
	step := captureStep{}
	if len(f.steps) > 0 {
		idx := int(n) - 1
		if idx >= len(f.steps) {
			idx = len(f.steps) - 1
		}
		step = f.steps[idx]
	}
	f.mu.Unlock()

	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.release != nil {
		<-f.release
	}

	if step.err != nil {
		return nil, step.err
	}
	return &repository.CaptureResult{Stdout: []byte(step.stdout), ExitCode: step.exit}, nil
}

func (f *fakeCaptureRepository) Launches() int {
	return int(atomic.LoadInt32(&f.launches))
}

func (f *fakeCaptureRepository) LastRequest() repository.CaptureRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

// mockMetricsRepository records every point it receives
type mockMetricsRepository struct {
	mu     sync.Mutex
	points []*entity.StatusMetricPoint
	err    error
	closed bool
}

func (m *mockMetricsRepository) SendStatusMetrics(ctx context.Context, point *entity.StatusMetricPoint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.points = append(m.points, point)
	return m.err
}

func (m *mockMetricsRepository) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *mockMetricsRepository) Points() []*entity.StatusMetricPoint {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*entity.StatusMetricPoint(nil), m.points...)
}

// recordingLogger keeps every message; WithFields shares the record
type recordingLogger struct {
	mu       sync.Mutex
	messages []string
}

func (l *recordingLogger) record(level, msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, level+": "+msg)
}

func (l *recordingLogger) Debug(ctx context.Context, msg string, fields ...domain.Field) {
	l.record("DEBUG", msg)
}

func (l *recordingLogger) Info(ctx context.Context, msg string, fields ...domain.Field) {
	l.record("INFO", msg)
}

func (l *recordingLogger) Warn(ctx context.Context, msg string, fields ...domain.Field) {
	l.record("WARN", msg)
}

func (l *recordingLogger) Error(ctx context.Context, msg string, fields ...domain.Field) {
	l.record("ERROR", msg)
}

func (l *recordingLogger) WithFields(fields ...domain.Field) domain.Logger {
	return l
}

func (l *recordingLogger) Messages() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.messages...)
}
