package impl

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/ca-srg/tokenmon/domain/repository"
	"github.com/ca-srg/tokenmon/domain/valueobject"
	usecase "github.com/ca-srg/tokenmon/usecase/interface"
)

const resetMarker = "Resets"

var (
	parenthesizedZone = regexp.MustCompile(`\(([^)]+)\)`)
	relativeHours     = regexp.MustCompile(`in\s+(\d+)\s+hours?`)
	relativeMinutes   = regexp.MustCompile(`in\s+(\d+)\s+minutes?`)
	dayPrefix         = regexp.MustCompile(`(?i)\b(?:today|tomorrow)\s+at\s+`)
	weekdayPrefix     = regexp.MustCompile(`(?i)\b(?:mon|tue|wed|thu|fri|sat|sun)\w*\s+at\s+`)
	amPmSpacing       = regexp.MustCompile(`(?i)(\d)(am|pm)\b`)
)

// clockPattern is one accepted layout. Submatch indexes are 0 when the layout lacks the part.
type clockPattern struct {
	re       *regexp.Regexp
	month    int
	day      int
	hour     int
	minute   int
	meridiem int
}

// Accepted layouts in priority order; the first full match wins.
var clockPatterns = []clockPattern{
	// h a
	{re: regexp.MustCompile(`(?i)^(\d{1,2}) (am|pm)$`), hour: 1, meridiem: 2},
	// h:mm a
	{re: regexp.MustCompile(`(?i)^(\d{1,2}):(\d{2}) (am|pm)$`), hour: 1, minute: 2, meridiem: 3},
	// H:mm
	{re: regexp.MustCompile(`^(\d{1,2}):(\d{2})$`), hour: 1, minute: 2},
	// MMM d at h a
	{re: regexp.MustCompile(`(?i)^([a-z]+) (\d{1,2}) at (\d{1,2}) (am|pm)$`), month: 1, day: 2, hour: 3, meridiem: 4},
	// MMM d at h:mm a
	{re: regexp.MustCompile(`(?i)^([a-z]+) (\d{1,2}) at (\d{1,2}):(\d{2}) (am|pm)$`), month: 1, day: 2, hour: 3, minute: 4, meridiem: 5},
	// MMM d, h a
	{re: regexp.MustCompile(`(?i)^([a-z]+) (\d{1,2}), (\d{1,2}) (am|pm)$`), month: 1, day: 2, hour: 3, meridiem: 4},
	// MMM d, h:mm a
	{re: regexp.MustCompile(`(?i)^([a-z]+) (\d{1,2}), (\d{1,2}):(\d{2}) (am|pm)$`), month: 1, day: 2, hour: 3, minute: 4, meridiem: 5},
	// MMM d h a
	{re: regexp.MustCompile(`(?i)^([a-z]+) (\d{1,2}) (\d{1,2}) (am|pm)$`), month: 1, day: 2, hour: 3, meridiem: 4},
	// MMM d h:mm a
	{re: regexp.MustCompile(`(?i)^([a-z]+) (\d{1,2}) (\d{1,2}):(\d{2}) (am|pm)$`), month: 1, day: 2, hour: 3, minute: 4, meridiem: 5},
}

var monthNames = map[string]time.Month{
	"jan": time.January, "january": time.January,
	"feb": time.February, "february": time.February,
	"mar": time.March, "march": time.March,
	"apr": time.April, "april": time.April,
	"may": time.May,
	"jun": time.June, "june": time.June,
	"jul": time.July, "july": time.July,
	"aug": time.August, "august": time.August,
	"sep": time.September, "sept": time.September, "september": time.September,
	"oct": time.October, "october": time.October,
	"nov": time.November, "november": time.November,
	"dec": time.December, "december": time.December,
}

// ResetTimeParserImpl implements the ResetTimeParser interface
type ResetTimeParserImpl struct {
	timezones repository.TimezoneService
}

// NewResetTimeParser creates a new reset time parser
func NewResetTimeParser(timezones repository.TimezoneService) usecase.ResetTimeParser {
	return &ResetTimeParserImpl{
		timezones: timezones,
	}
}

// Parse interprets phrase at now
func (p *ResetTimeParserImpl) Parse(phrase string, now time.Time, defaultZone *time.Location) usecase.ResetTime {
	parsed := p.Decompose(phrase, defaultZone)

	result := usecase.ResetTime{
		Location: parsed.Location,
		Phrase:   parsed,
	}
	if at, ok := parsed.Resolve(now); ok {
		result.At = &at
	}
	return result
}

// Decompose strips the marker, extracts the zone and recognises the expression
func (p *ResetTimeParserImpl) Decompose(phrase string, defaultZone *time.Location) valueobject.ParsedResetPhrase {
	if defaultZone == nil {
		defaultZone = p.timezones.DefaultLocation()
	}

	parsed := valueobject.ParsedResetPhrase{
		Raw:        phrase,
		Location:   defaultZone,
		ZoneSource: valueobject.ZoneSourceDefault,
		Expression: valueobject.Unresolved{},
	}

	cleaned := strings.TrimSpace(phrase)
	cleaned = strings.TrimSpace(strings.TrimPrefix(cleaned, resetMarker))

	// The parenthesized segment is always removed, whether or not it names a zone.
	if m := parenthesizedZone.FindStringSubmatch(cleaned); m != nil {
		if loc, ok := p.timezones.ResolveIdentifier(strings.TrimSpace(m[1])); ok {
			parsed.Location = loc
			parsed.ZoneSource = valueobject.ZoneSourceParenthesized
		}
		cleaned = strings.TrimSpace(strings.ReplaceAll(cleaned, m[0], ""))
	}

	if parsed.ZoneSource == valueobject.ZoneSourceDefault {
		if rest, loc, ok := p.trailingZone(cleaned); ok {
			parsed.Location = loc
			parsed.ZoneSource = valueobject.ZoneSourceTrailingToken
			cleaned = rest
		}
	}

	parsed.Cleaned = cleaned

	if expr, ok := relativeOffset(strings.ToLower(cleaned)); ok {
		parsed.Expression = expr
		return parsed
	}

	if expr, ok := matchClock(normalizeClockText(cleaned)); ok {
		parsed.Expression = expr
	}
	return parsed
}

// trailingZone tries the last whitespace-delimited token as an identifier, then as an abbreviation
func (p *ResetTimeParserImpl) trailingZone(text string) (string, *time.Location, bool) {
	tokens := strings.Fields(text)
	if len(tokens) == 0 {
		return text, nil, false
	}
	last := tokens[len(tokens)-1]

	loc, ok := p.timezones.ResolveIdentifier(last)
	if !ok {
		loc, ok = p.timezones.ResolveAbbreviation(last)
	}
	if !ok {
		return text, nil, false
	}
	return strings.Join(tokens[:len(tokens)-1], " "), loc, true
}

// maxOffsetSeconds is the longest offset a time.Duration can hold
const maxOffsetSeconds = math.MaxInt64 / int64(time.Second)

// relativeOffset recognises "in N hours" before "in N minutes".
// A matched offset too large for a time.Duration is Unresolved.
func relativeOffset(lowered string) (valueobject.ResetExpression, bool) {
	if m := relativeHours.FindStringSubmatch(lowered); m != nil {
		return offsetExpression(m[1], 3600), true
	}
	if m := relativeMinutes.FindStringSubmatch(lowered); m != nil {
		return offsetExpression(m[1], 60), true
	}
	return nil, false
}

func offsetExpression(digits string, unit int64) valueobject.ResetExpression {
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil || n > maxOffsetSeconds/unit {
		return valueobject.Unresolved{}
	}
	return valueobject.RelativeOffset{Seconds: n * unit}
}

func normalizeClockText(text string) string {
	text = dayPrefix.ReplaceAllString(text, "")
	text = weekdayPrefix.ReplaceAllString(text, "")
	text = amPmSpacing.ReplaceAllString(text, "$1 $2")
	return strings.Join(strings.Fields(text), " ")
}

func matchClock(text string) (valueobject.ResetExpression, bool) {
	for _, pattern := range clockPatterns {
		m := pattern.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if expr, ok := pattern.build(m); ok {
			return expr, true
		}
	}
	return nil, false
}

func (c clockPattern) build(m []string) (valueobject.ResetExpression, bool) {
	hour, _ := strconv.Atoi(m[c.hour])
	minute := 0
	if c.minute > 0 {
		minute, _ = strconv.Atoi(m[c.minute])
	}
	if minute > 59 {
		return nil, false
	}

	if c.meridiem > 0 {
		if hour < 1 || hour > 12 {
			return nil, false
		}
		hour %= 12
		if strings.EqualFold(m[c.meridiem], "pm") {
			hour += 12
		}
	} else if hour > 23 {
		return nil, false
	}

	if c.month == 0 {
		return valueobject.TimeOfDay{Hour: hour, Minute: minute}, true
	}

	month, ok := monthNames[strings.ToLower(m[c.month])]
	if !ok {
		return nil, false
	}
	day, _ := strconv.Atoi(m[c.day])
	if day < 1 || day > 31 {
		return nil, false
	}
	return valueobject.CalendarDateTime{Month: month, Day: day, Hour: hour, Minute: minute}, true
}
