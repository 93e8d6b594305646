package usecase

import (
	"context"

	"github.com/ca-srg/tokenmon/domain/entity"
)

// MonitorUpdate is published after each fetch and countdown tick
type MonitorUpdate struct {
	Snapshot  *entity.StatusSnapshot
	Title     string
	Countdown string

	// Fetched is true when the update follows a fetch rather than a countdown tick
	Fetched bool
}

// MonitorService keeps the latest snapshot fresh on a schedule
type MonitorService interface {
	// Start schedules periodic fetches and countdown ticks and runs an initial fetch
	Start(ctx context.Context) error

	// Stop cancels the schedule and waits for running jobs
	Stop() error

	// RefreshNow triggers an immediate fetch; it returns false when throttled
	RefreshNow(ctx context.Context) bool

	// Reschedule applies the current refresh configuration
	Reschedule() error

	// Latest returns the most recent snapshot, nil before the first fetch completes
	Latest() *entity.StatusSnapshot

	// Updates returns the channel on which updates are published
	Updates() <-chan MonitorUpdate
}
