package usecase

import (
	"time"

	"github.com/ca-srg/tokenmon/domain/entity"
)

// CountdownPlaceholder is shown when no reset instant is known
const CountdownPlaceholder = "--:--"

// CountdownService projects the time left until the next reset
type CountdownService interface {
	// Project renders the remaining time as HH:MM, or CountdownPlaceholder
	Project(snapshot *entity.StatusSnapshot, now time.Time, cycle time.Duration) string

	// Remaining returns the time left until the projected reset
	Remaining(snapshot *entity.StatusSnapshot, now time.Time, cycle time.Duration) (time.Duration, bool)

	// Title renders the one-line status label
	Title(snapshot *entity.StatusSnapshot, now time.Time, cycle time.Duration) string
}
