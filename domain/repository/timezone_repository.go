package repository

import (
	"time"
)

// TimezoneService defines the interface for timezone-related operations
type TimezoneService interface {
	// DefaultLocation returns the configured zone used when a phrase names none
	DefaultLocation() *time.Location

	// LocationFor resolves an identifier, falling back to DefaultLocation
	LocationFor(name string) *time.Location

	// ResolveIdentifier looks up an IANA zone identifier such as "Asia/Seoul"
	ResolveIdentifier(name string) (*time.Location, bool)

	// ResolveAbbreviation looks up a zone abbreviation such as "KST", "PDT" or "GMT+9"
	ResolveAbbreviation(abbr string) (*time.Location, bool)

	// GetTimezoneInfo returns timezone information for logging/metrics
	GetTimezoneInfo(loc *time.Location, at time.Time) TimezoneInfo
}

// TimezoneInfo contains timezone information for logging and metrics
type TimezoneInfo struct {
	// Name is the timezone name (e.g., "America/New_York", "Asia/Seoul")
	Name string

	// Offset is the UTC offset in the format "+09:00" or "-05:00"
	Offset string

	// OffsetSeconds is the offset from UTC in seconds
	OffsetSeconds int

	// IsDST indicates whether daylight saving time is active at the given instant
	IsDST bool
}
