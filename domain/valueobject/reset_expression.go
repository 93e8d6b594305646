package valueobject

import (
	"fmt"
	"math"
	"time"
)

// ResetExpressionKind names the variant of a ResetExpression
type ResetExpressionKind string

const (
	ResetKindRelative   ResetExpressionKind = "relative"
	ResetKindTimeOfDay  ResetExpressionKind = "time_of_day"
	ResetKindCalendar   ResetExpressionKind = "calendar"
	ResetKindUnresolved ResetExpressionKind = "unresolved"
)

// ResetExpression is the decoded meaning of a reset phrase.
// It is exactly one of RelativeOffset, TimeOfDay, CalendarDateTime or Unresolved.
type ResetExpression interface {
	// Resolve returns the instant the expression denotes, evaluated at now in loc.
	Resolve(now time.Time, loc *time.Location) (time.Time, bool)

	// Kind returns the variant name
	Kind() ResetExpressionKind

	String() string

	isResetExpression()
}

// RelativeOffset is "in N hours" / "in N minutes"
type RelativeOffset struct {
	Seconds int64
}

func (r RelativeOffset) Resolve(now time.Time, loc *time.Location) (time.Time, bool) {
	if r.Seconds > math.MaxInt64/int64(time.Second) || r.Seconds < math.MinInt64/int64(time.Second) {
		return time.Time{}, false
	}
	return now.Add(time.Duration(r.Seconds) * time.Second).In(loc), true
}

func (r RelativeOffset) Kind() ResetExpressionKind { return ResetKindRelative }

func (r RelativeOffset) String() string { return fmt.Sprintf("in %ds", r.Seconds) }

func (RelativeOffset) isResetExpression() {}

// TimeOfDay is a bare clock time such as "7pm" or "18:30".
// It denotes the next occurrence of that time strictly after now.
type TimeOfDay struct {
	Hour   int
	Minute int
}

func (t TimeOfDay) Resolve(now time.Time, loc *time.Location) (time.Time, bool) {
	if !validClock(t.Hour, t.Minute) {
		return time.Time{}, false
	}
	year, month, day := now.In(loc).Date()
	candidate := time.Date(year, month, day, t.Hour, t.Minute, 0, 0, loc)
	if !candidate.After(now) {
		candidate = candidate.AddDate(0, 0, 1)
	}
	return candidate, true
}

func (t TimeOfDay) Kind() ResetExpressionKind { return ResetKindTimeOfDay }

func (t TimeOfDay) String() string { return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute) }

func (TimeOfDay) isResetExpression() {}

// CalendarDateTime is a month-day plus clock time such as "Feb 3 at 9am".
// The year is the current year in the working zone and no rollover is applied.
type CalendarDateTime struct {
	Month  time.Month
	Day    int
	Hour   int
	Minute int
}

func (c CalendarDateTime) Resolve(now time.Time, loc *time.Location) (time.Time, bool) {
	if c.Month < time.January || c.Month > time.December || c.Day < 1 || c.Day > 31 || !validClock(c.Hour, c.Minute) {
		return time.Time{}, false
	}
	year := now.In(loc).Year()
	at := time.Date(year, c.Month, c.Day, c.Hour, c.Minute, 0, 0, loc)
	// time.Date normalises Feb 30 into March; such dates do not exist.
	if at.Month() != c.Month || at.Day() != c.Day {
		return time.Time{}, false
	}
	return at, true
}

func (c CalendarDateTime) Kind() ResetExpressionKind { return ResetKindCalendar }

func (c CalendarDateTime) String() string {
	return fmt.Sprintf("%s %d %02d:%02d", c.Month.String()[:3], c.Day, c.Hour, c.Minute)
}

func (CalendarDateTime) isResetExpression() {}

// Unresolved is a phrase that matched no known pattern
type Unresolved struct{}

func (Unresolved) Resolve(time.Time, *time.Location) (time.Time, bool) { return time.Time{}, false }

func (Unresolved) Kind() ResetExpressionKind { return ResetKindUnresolved }

func (Unresolved) String() string { return "unresolved" }

func (Unresolved) isResetExpression() {}

func validClock(hour, minute int) bool {
	return hour >= 0 && hour <= 23 && minute >= 0 && minute <= 59
}

// ZoneSource records where the working zone of a phrase came from
type ZoneSource string

const (
	ZoneSourceDefault       ZoneSource = "default"
	ZoneSourceParenthesized ZoneSource = "parenthesized"
	ZoneSourceTrailingToken ZoneSource = "trailing_token"
)

// ParsedResetPhrase is the intermediate state of reset phrase parsing
type ParsedResetPhrase struct {
	// Raw is the phrase as received
	Raw string

	// Cleaned is the text left after prefix and zone removal, before format matching
	Cleaned string

	// Location is the working zone; the default zone when none was found in the text
	Location *time.Location

	// ZoneSource tells whether Location came from the text or the default
	ZoneSource ZoneSource

	// Expression is the decoded meaning
	Expression ResetExpression
}

// Resolve evaluates the expression at now in the phrase's working zone
func (p ParsedResetPhrase) Resolve(now time.Time) (time.Time, bool) {
	if p.Expression == nil || p.Location == nil {
		return time.Time{}, false
	}
	return p.Expression.Resolve(now, p.Location)
}
