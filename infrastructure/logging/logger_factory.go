package logging

import (
	"context"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/ca-srg/tokenmon/domain"
	"github.com/ca-srg/tokenmon/infrastructure/config"
)

type LoggerFactoryImpl struct {
	config  *config.LoggingConfig
	console io.Writer

	mu        sync.Mutex
	promtails []*PromtailLogger
}

func NewLoggerFactory(config *config.LoggingConfig) *LoggerFactoryImpl {
	return &LoggerFactoryImpl{
		config:  config,
		console: os.Stderr,
	}
}

// WithConsole redirects debug console output
func (f *LoggerFactoryImpl) WithConsole(w io.Writer) *LoggerFactoryImpl {
	f.console = w
	return f
}

func (f *LoggerFactoryImpl) CreateLogger(component string) domain.Logger {
	var logger domain.Logger = &NoOpLogger{}

	if f.config != nil && f.config.Promtail != nil && f.config.Promtail.URL != "" {
		promtailLogger, err := NewPromtailLogger(PromtailOptions{
			URL:          f.config.Promtail.URL,
			Username:     f.config.Promtail.Username,
			Password:     f.config.Promtail.Password,
			Component:    component,
			BatchSize:    f.config.Promtail.BatchCapacity,
			BatchTimeout: time.Duration(f.config.Promtail.BatchWaitSeconds) * time.Second,
		})
		if err == nil {
			f.mu.Lock()
			f.promtails = append(f.promtails, promtailLogger)
			f.mu.Unlock()
			logger = promtailLogger
		}
		// Fallback to the no-op logger if promtail is not available
	}

	level := domain.LogLevelInfo
	debug := false
	if f.config != nil {
		level = f.parseLogLevel(f.config.Level)
		debug = f.config.Debug
	}

	// Wrap with debug logger if debug mode is enabled
	if debug {
		logger = NewDebugLogger(logger, component).WithWriter(f.console)
	}

	return NewLevelFilterLogger(logger, level)
}

// Shutdown flushes every promtail client created by the factory
func (f *LoggerFactoryImpl) Shutdown() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, p := range f.promtails {
		_ = p.Shutdown()
	}
	f.promtails = nil
	return nil
}

func (f *LoggerFactoryImpl) parseLogLevel(level string) domain.LogLevel {
	switch strings.ToLower(level) {
	case "debug":
		return domain.LogLevelDebug
	case "info":
		return domain.LogLevelInfo
	case "warn":
		return domain.LogLevelWarn
	case "error":
		return domain.LogLevelError
	default:
		return domain.LogLevelInfo
	}
}

// LevelFilterLogger filters log messages based on minimum level
type LevelFilterLogger struct {
	wrapped  domain.Logger
	minLevel domain.LogLevel
}

func NewLevelFilterLogger(wrapped domain.Logger, minLevel domain.LogLevel) *LevelFilterLogger {
	return &LevelFilterLogger{
		wrapped:  wrapped,
		minLevel: minLevel,
	}
}

func (l *LevelFilterLogger) Debug(ctx context.Context, msg string, fields ...domain.Field) {
	if domain.LogLevelDebug >= l.minLevel {
		l.wrapped.Debug(ctx, msg, fields...)
	}
}

func (l *LevelFilterLogger) Info(ctx context.Context, msg string, fields ...domain.Field) {
	if domain.LogLevelInfo >= l.minLevel {
		l.wrapped.Info(ctx, msg, fields...)
	}
}

func (l *LevelFilterLogger) Warn(ctx context.Context, msg string, fields ...domain.Field) {
	if domain.LogLevelWarn >= l.minLevel {
		l.wrapped.Warn(ctx, msg, fields...)
	}
}

func (l *LevelFilterLogger) Error(ctx context.Context, msg string, fields ...domain.Field) {
	if domain.LogLevelError >= l.minLevel {
		l.wrapped.Error(ctx, msg, fields...)
	}
}

func (l *LevelFilterLogger) WithFields(fields ...domain.Field) domain.Logger {
	return &LevelFilterLogger{
		wrapped:  l.wrapped.WithFields(fields...),
		minLevel: l.minLevel,
	}
}

// NoOpLogger is a logger that does nothing
type NoOpLogger struct{}

func (n *NoOpLogger) Debug(ctx context.Context, msg string, fields ...domain.Field) {}
func (n *NoOpLogger) Info(ctx context.Context, msg string, fields ...domain.Field)  {}
func (n *NoOpLogger) Warn(ctx context.Context, msg string, fields ...domain.Field)  {}
func (n *NoOpLogger) Error(ctx context.Context, msg string, fields ...domain.Field) {}
func (n *NoOpLogger) WithFields(fields ...domain.Field) domain.Logger {
	return n
}
