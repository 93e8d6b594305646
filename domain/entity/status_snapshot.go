package entity

import (
	"fmt"
	"time"
)

// StatusSnapshot is the immutable result of one fetch cycle.
// Every field is optional; the all-absent snapshot stands for a failed cycle.
type StatusSnapshot struct {
	percent       *int
	resetAt       *time.Time
	resetLocation *time.Location
	resetText     *string

	weekAllResetText    *string
	weekSonnetResetText *string
	capturedAt          *time.Time
	fetchedAt           time.Time
}

// StatusSnapshotParams carries the optional values of a snapshot under construction
type StatusSnapshotParams struct {
	Percent       *int
	ResetAt       *time.Time
	ResetLocation *time.Location
	ResetText     *string

	WeekAllResetText    *string
	WeekSonnetResetText *string
	CapturedAt          *time.Time
	FetchedAt           time.Time
}

// NewStatusSnapshot creates a snapshot, copying every optional value
func NewStatusSnapshot(p StatusSnapshotParams) (*StatusSnapshot, error) {
	if p.ResetAt != nil && p.ResetLocation == nil {
		return nil, fmt.Errorf("reset instant requires a reset location")
	}

	s := &StatusSnapshot{
		percent:             copyInt(p.Percent),
		resetLocation:       p.ResetLocation,
		resetText:           copyString(p.ResetText),
		weekAllResetText:    copyString(p.WeekAllResetText),
		weekSonnetResetText: copyString(p.WeekSonnetResetText),
		capturedAt:          copyTime(p.CapturedAt),
		fetchedAt:           p.FetchedAt,
	}
	if p.ResetAt != nil {
		at := p.ResetAt.In(p.ResetLocation)
		s.resetAt = &at
	}
	return s, nil
}

// EmptyStatusSnapshot returns the all-absent snapshot delivered when a cycle fails
func EmptyStatusSnapshot(fetchedAt time.Time) *StatusSnapshot {
	return &StatusSnapshot{fetchedAt: fetchedAt}
}

// Percent returns the usage percentage
func (s *StatusSnapshot) Percent() (int, bool) {
	if s.percent == nil {
		return 0, false
	}
	return *s.percent, true
}

// ResetAt returns the resolved reset instant in the reset location
func (s *StatusSnapshot) ResetAt() (time.Time, bool) {
	if s.resetAt == nil {
		return time.Time{}, false
	}
	return *s.resetAt, true
}

// ResetLocation returns the zone used to resolve the reset instant, or nil
func (s *StatusSnapshot) ResetLocation() *time.Location {
	return s.resetLocation
}

// ResetText returns the raw reset phrase as received
func (s *StatusSnapshot) ResetText() (string, bool) {
	if s.resetText == nil {
		return "", false
	}
	return *s.resetText, true
}

// WeekAllResetText returns the raw weekly (all models) reset phrase
func (s *StatusSnapshot) WeekAllResetText() (string, bool) {
	if s.weekAllResetText == nil {
		return "", false
	}
	return *s.weekAllResetText, true
}

// WeekSonnetResetText returns the raw weekly (Sonnet only) reset phrase
func (s *StatusSnapshot) WeekSonnetResetText() (string, bool) {
	if s.weekSonnetResetText == nil {
		return "", false
	}
	return *s.weekSonnetResetText, true
}

// CapturedAt returns the capture time reported by the capture process
func (s *StatusSnapshot) CapturedAt() (time.Time, bool) {
	if s.capturedAt == nil {
		return time.Time{}, false
	}
	return *s.capturedAt, true
}

// FetchedAt returns the local moment the snapshot was produced
func (s *StatusSnapshot) FetchedAt() time.Time {
	return s.fetchedAt
}

// HasUnresolvedReset reports a reset phrase that could not be turned into an instant
func (s *StatusSnapshot) HasUnresolvedReset() bool {
	return s.resetText != nil && s.resetAt == nil
}

// IsEmpty reports whether no status field is present
func (s *StatusSnapshot) IsEmpty() bool {
	return s.percent == nil && s.resetAt == nil && s.resetText == nil
}

func copyInt(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func copyString(v *string) *string {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func copyTime(v *time.Time) *time.Time {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
