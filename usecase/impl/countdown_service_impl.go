package impl

import (
	"fmt"
	"time"

	"github.com/ca-srg/tokenmon/domain/entity"
	usecase "github.com/ca-srg/tokenmon/usecase/interface"
)

// PendingTitle is shown until the first fetch completes
const PendingTitle = "CC ..."

// CountdownServiceImpl implements CountdownService
type CountdownServiceImpl struct{}

// NewCountdownService creates a new countdown service
func NewCountdownService() usecase.CountdownService {
	return &CountdownServiceImpl{}
}

// Remaining advances a past reset instant by whole cycles until it is strictly after now
func (s *CountdownServiceImpl) Remaining(snapshot *entity.StatusSnapshot, now time.Time, cycle time.Duration) (time.Duration, bool) {
	if snapshot == nil {
		return 0, false
	}
	target, ok := snapshot.ResetAt()
	if !ok {
		return 0, false
	}

	if cycle > 0 && !target.After(now) {
		periods := now.Sub(target)/cycle + 1
		target = target.Add(periods * cycle)
	}

	remaining := target.Sub(now)
	if remaining < 0 {
		remaining = 0
	}
	return remaining, true
}

// Project renders the remaining whole hours and minutes as HH:MM
func (s *CountdownServiceImpl) Project(snapshot *entity.StatusSnapshot, now time.Time, cycle time.Duration) string {
	remaining, ok := s.Remaining(snapshot, now, cycle)
	if !ok {
		return usecase.CountdownPlaceholder
	}
	hours := int(remaining / time.Hour)
	minutes := int((remaining % time.Hour) / time.Minute)
	return fmt.Sprintf("%02d:%02d", hours, minutes)
}

// Title renders "NN%|HH:MM", the countdown alone without a percentage, or PendingTitle before the first snapshot
func (s *CountdownServiceImpl) Title(snapshot *entity.StatusSnapshot, now time.Time, cycle time.Duration) string {
	if snapshot == nil {
		return PendingTitle
	}
	countdown := s.Project(snapshot, now, cycle)
	if percent, ok := snapshot.Percent(); ok {
		return fmt.Sprintf("%d%%|%s", percent, countdown)
	}
	return countdown
}
