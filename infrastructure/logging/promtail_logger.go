package logging

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ca-srg/tokenmon/domain"
	"github.com/ic2hrmk/promtail"
)

// PromtailOptions configures the Loki push client
type PromtailOptions struct {
	URL          string
	Username     string
	Password     string
	Component    string
	BatchSize    int
	BatchTimeout time.Duration
}

type PromtailLogger struct {
	client    promtail.Client
	component string
	fields    []domain.Field
	mu        sync.RWMutex
}

func NewPromtailLogger(opts PromtailOptions) (*PromtailLogger, error) {
	// Default labels for all logs
	defaultLabels := map[string]string{
		"app":       "tokenmon",
		"component": opts.Component,
	}

	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = 100
	}
	batchTimeout := opts.BatchTimeout
	if batchTimeout <= 0 {
		batchTimeout = 1 * time.Second
	}

	client, err := promtail.NewJSONv1Client(
		opts.URL,
		defaultLabels,
		promtail.WithSendBatchSize(uint(batchSize)),
		promtail.WithSendBatchTimeout(batchTimeout),
		promtail.WithBasicAuth(opts.Username, opts.Password),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create promtail client: %w", err)
	}

	return &PromtailLogger{
		client:    client,
		component: opts.Component,
		fields:    []domain.Field{},
	}, nil
}

func (p *PromtailLogger) Debug(ctx context.Context, msg string, fields ...domain.Field) {
	p.log(ctx, domain.LogLevelDebug, msg, fields...)
}

func (p *PromtailLogger) Info(ctx context.Context, msg string, fields ...domain.Field) {
	p.log(ctx, domain.LogLevelInfo, msg, fields...)
}

func (p *PromtailLogger) Warn(ctx context.Context, msg string, fields ...domain.Field) {
	p.log(ctx, domain.LogLevelWarn, msg, fields...)
}

func (p *PromtailLogger) Error(ctx context.Context, msg string, fields ...domain.Field) {
	p.log(ctx, domain.LogLevelError, msg, fields...)
}

func (p *PromtailLogger) WithFields(fields ...domain.Field) domain.Logger {
	p.mu.RLock()
	defer p.mu.RUnlock()

	newFields := make([]domain.Field, len(p.fields)+len(fields))
	copy(newFields, p.fields)
	copy(newFields[len(p.fields):], fields)

	return &PromtailLogger{
		client:    p.client,
		component: p.component,
		fields:    newFields,
	}
}

func (p *PromtailLogger) log(ctx context.Context, level domain.LogLevel, msg string, fields ...domain.Field) {
	if p.client == nil {
		return
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	labels := map[string]string{
		"level": levelToString(level),
	}
	for _, field := range p.fields {
		labels[field.Key] = fmt.Sprintf("%v", field.Value)
	}
	for _, field := range fields {
		labels[field.Key] = fmt.Sprintf("%v", field.Value)
	}

	p.client.LogfWithLabels(toPromtailLevel(level), labels, "%s", msg)
}

func toPromtailLevel(level domain.LogLevel) promtail.Level {
	switch level {
	case domain.LogLevelDebug:
		return promtail.Debug
	case domain.LogLevelInfo:
		return promtail.Info
	case domain.LogLevelWarn:
		return promtail.Warn
	case domain.LogLevelError:
		return promtail.Error
	default:
		return promtail.Info
	}
}

func (p *PromtailLogger) Shutdown() error {
	if p.client != nil {
		p.client.Close()
	}
	return nil
}
