package entity

import (
	"time"
)

// StatusMetricPoint represents the gauges derived from one status snapshot
type StatusMetricPoint struct {
	Timestamp time.Time
	Host      string

	// UsagePercent is nil when the snapshot carried no percentage
	UsagePercent *float64

	// ResetRemainingSeconds is nil when the reset instant is unknown
	ResetRemainingSeconds *float64

	Timezone       string
	TimezoneOffset string
}

// NewStatusMetricPoint builds a metric point from a snapshot evaluated at now.
// Remaining time is clamped at zero once the reset instant has passed.
func NewStatusMetricPoint(snapshot *StatusSnapshot, now time.Time, host string) *StatusMetricPoint {
	m := &StatusMetricPoint{
		Timestamp: now,
		Host:      host,
	}
	if snapshot == nil {
		return m
	}
	if percent, ok := snapshot.Percent(); ok {
		v := float64(percent)
		m.UsagePercent = &v
	}
	if at, ok := snapshot.ResetAt(); ok {
		remaining := at.Sub(now).Seconds()
		if remaining < 0 {
			remaining = 0
		}
		m.ResetRemainingSeconds = &remaining
	}
	return m
}

// WithTimezone sets timezone information
func (m *StatusMetricPoint) WithTimezone(timezone, offset string) *StatusMetricPoint {
	m.Timezone = timezone
	m.TimezoneOffset = offset
	return m
}

// HasValues reports whether at least one gauge can be sent
func (m *StatusMetricPoint) HasValues() bool {
	return m.UsagePercent != nil || m.ResetRemainingSeconds != nil
}
