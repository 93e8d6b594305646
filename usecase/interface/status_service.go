package usecase

import (
	"time"
)

// StatusInfo represents the runtime state of the monitor
type StatusInfo struct {
	// IsRunning indicates whether the monitor schedule is active
	IsRunning bool

	// StartedAt is the timestamp when the monitor was started
	StartedAt *time.Time

	// LastFetchAt is the timestamp of the last completed fetch cycle
	LastFetchAt *time.Time

	// NextFetchAt is the timestamp when the next scheduled fetch runs
	NextFetchAt *time.Time

	// LastMetricsSentAt is the timestamp of the last successful metrics send
	LastMetricsSentAt *time.Time

	// FetchCount is the number of completed fetch cycles
	FetchCount int64

	// LastError is the last error that occurred (if any)
	LastError error

	// LastErrorAt is the timestamp of the last error
	LastErrorAt *time.Time
}

// StatusService provides status information about the monitor
type StatusService interface {
	// GetStatus returns the current status information
	GetStatus() (*StatusInfo, error)

	// RecordFetch records a completed fetch cycle
	RecordFetch(fetchedAt time.Time) error

	// UpdateNextFetch updates the next scheduled fetch timestamp
	UpdateNextFetch(nextAt time.Time) error

	// UpdateLastMetricsSent updates the last metrics sent timestamp
	UpdateLastMetricsSent(sentAt time.Time) error

	// RecordError records an error that occurred
	RecordError(err error) error

	// ClearError clears the last error
	ClearError() error

	// SetStarted sets the monitor started timestamp
	SetStarted(startedAt time.Time) error

	// SetStopped clears the monitor runtime information
	SetStopped() error
}
