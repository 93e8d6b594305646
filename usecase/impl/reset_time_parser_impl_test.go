package impl

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ca-srg/tokenmon/domain/valueobject"
	"github.com/ca-srg/tokenmon/infrastructure/logging"
	"github.com/ca-srg/tokenmon/infrastructure/service"
	usecase "github.com/ca-srg/tokenmon/usecase/interface"
)

func newTestResetParser(t *testing.T) (usecase.ResetTimeParser, *time.Location) {
	t.Helper()
	tz := service.NewTimezoneServiceImpl("Asia/Seoul", &logging.NoOpLogger{})
	return NewResetTimeParser(tz), tz.DefaultLocation()
}

func mustLocation(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	require.NoError(t, err)
	return loc
}

func TestResetTimeParser_Relative(t *testing.T) {
	parser, seoul := newTestResetParser(t)
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		phrase   string
		expected time.Duration
	}{
		{"Resets in 2 hours", 2 * time.Hour},
		{"Resets in 1 hour", time.Hour},
		{"Resets in 45 minutes", 45 * time.Minute},
		{"Resets in 1 minute", time.Minute},
		{"resets IN 3 HOURS", 3 * time.Hour},
		{"Resets in 2 hours 30 minutes", 2 * time.Hour},
	}

	for _, tt := range tests {
		t.Run(tt.phrase, func(t *testing.T) {
			result := parser.Parse(tt.phrase, now, seoul)

			require.NotNil(t, result.At)
			assert.True(t, now.Add(tt.expected).Equal(*result.At), "got %s", result.At)
			assert.Equal(t, valueobject.ResetKindRelative, result.Phrase.Expression.Kind())
			assert.Equal(t, seoul, result.Location)
		})
	}
}

func TestResetTimeParser_TimeOfDay(t *testing.T) {
	parser, seoul := newTestResetParser(t)

	tests := []struct {
		name     string
		phrase   string
		now      time.Time
		expected time.Time
	}{
		{
			name:     "parenthesized zone, later today",
			phrase:   "Resets 6pm (Asia/Seoul)",
			now:      time.Date(2025, 3, 10, 15, 0, 0, 0, seoul),
			expected: time.Date(2025, 3, 10, 18, 0, 0, 0, seoul),
		},
		{
			name:     "parenthesized zone, already passed",
			phrase:   "Resets 6pm (Asia/Seoul)",
			now:      time.Date(2025, 3, 10, 19, 0, 0, 0, seoul),
			expected: time.Date(2025, 3, 11, 18, 0, 0, 0, seoul),
		},
		{
			name:     "minutes with meridiem",
			phrase:   "Resets 7:30pm",
			now:      time.Date(2025, 3, 10, 9, 0, 0, 0, seoul),
			expected: time.Date(2025, 3, 10, 19, 30, 0, 0, seoul),
		},
		{
			name:     "24 hour clock",
			phrase:   "Resets 18:45",
			now:      time.Date(2025, 3, 10, 9, 0, 0, 0, seoul),
			expected: time.Date(2025, 3, 10, 18, 45, 0, 0, seoul),
		},
		{
			name:     "midnight",
			phrase:   "Resets 12am",
			now:      time.Date(2025, 3, 10, 9, 0, 0, 0, seoul),
			expected: time.Date(2025, 3, 11, 0, 0, 0, 0, seoul),
		},
		{
			name:     "noon",
			phrase:   "Resets 12 PM",
			now:      time.Date(2025, 3, 10, 9, 0, 0, 0, seoul),
			expected: time.Date(2025, 3, 10, 12, 0, 0, 0, seoul),
		},
		{
			name:     "today at",
			phrase:   "Resets today at 11pm",
			now:      time.Date(2025, 3, 10, 9, 0, 0, 0, seoul),
			expected: time.Date(2025, 3, 10, 23, 0, 0, 0, seoul),
		},
		{
			name:     "tomorrow at is treated as the next occurrence",
			phrase:   "Resets Tomorrow at 1am",
			now:      time.Date(2025, 3, 10, 9, 0, 0, 0, seoul),
			expected: time.Date(2025, 3, 11, 1, 0, 0, 0, seoul),
		},
		{
			name:     "weekday prefix",
			phrase:   "Resets Friday at 5pm",
			now:      time.Date(2025, 3, 10, 9, 0, 0, 0, seoul),
			expected: time.Date(2025, 3, 10, 17, 0, 0, 0, seoul),
		},
		{
			name:     "extra whitespace",
			phrase:   "  Resets   9   am  ",
			now:      time.Date(2025, 3, 10, 7, 0, 0, 0, seoul),
			expected: time.Date(2025, 3, 10, 9, 0, 0, 0, seoul),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := parser.Parse(tt.phrase, tt.now, seoul)

			require.NotNil(t, result.At, "phrase %q", tt.phrase)
			assert.True(t, tt.expected.Equal(*result.At), "expected %s, got %s", tt.expected, result.At)
			assert.True(t, result.At.After(tt.now))
			assert.Equal(t, valueobject.ResetKindTimeOfDay, result.Phrase.Expression.Kind())
		})
	}
}

func TestResetTimeParser_MarkerSpacingEquivalence(t *testing.T) {
	parser, seoul := newTestResetParser(t)
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, seoul)

	joined := parser.Parse("Resets7pm", now, seoul)
	spaced := parser.Parse("Resets 7pm", now, seoul)

	require.NotNil(t, joined.At)
	require.NotNil(t, spaced.At)
	assert.True(t, joined.At.Equal(*spaced.At))
	assert.Equal(t, 19, joined.At.Hour())
}

func TestResetTimeParser_ZoneSelection(t *testing.T) {
	parser, seoul := newTestResetParser(t)
	now := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name         string
		phrase       string
		expectedZone string
		source       valueobject.ZoneSource
		cleaned      string
	}{
		{
			name:         "parenthesized identifier",
			phrase:       "Resets 7pm (America/New_York)",
			expectedZone: "America/New_York",
			source:       valueobject.ZoneSourceParenthesized,
			cleaned:      "7pm",
		},
		{
			name:         "unknown parenthesized content is still removed",
			phrase:       "Resets 7pm (soon)",
			expectedZone: "Asia/Seoul",
			source:       valueobject.ZoneSourceDefault,
			cleaned:      "7pm",
		},
		{
			name:         "trailing identifier",
			phrase:       "Resets 7pm Europe/London",
			expectedZone: "Europe/London",
			source:       valueobject.ZoneSourceTrailingToken,
			cleaned:      "7pm",
		},
		{
			name:         "trailing abbreviation",
			phrase:       "Resets 7pm PDT",
			expectedZone: "America/Los_Angeles",
			source:       valueobject.ZoneSourceTrailingToken,
			cleaned:      "7pm",
		},
		{
			name:         "trailing token ignored after a parenthesized zone",
			phrase:       "Resets 7pm KST (Europe/Paris)",
			expectedZone: "Europe/Paris",
			source:       valueobject.ZoneSourceParenthesized,
			cleaned:      "7pm KST",
		},
		{
			name:         "no zone",
			phrase:       "Resets 7pm",
			expectedZone: "Asia/Seoul",
			source:       valueobject.ZoneSourceDefault,
			cleaned:      "7pm",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := parser.Parse(tt.phrase, now, seoul)

			assert.Equal(t, tt.expectedZone, result.Location.String())
			assert.Equal(t, tt.source, result.Phrase.ZoneSource)
			assert.Equal(t, tt.cleaned, result.Phrase.Cleaned)
		})
	}
}

func TestResetTimeParser_ParenthesizedZoneChangesInstant(t *testing.T) {
	parser, seoul := newTestResetParser(t)
	ny := mustLocation(t, "America/New_York")
	now := time.Date(2025, 7, 1, 12, 0, 0, 0, ny)

	result := parser.Parse("Resets 7pm (America/New_York)", now, seoul)

	require.NotNil(t, result.At)
	assert.True(t, time.Date(2025, 7, 1, 19, 0, 0, 0, ny).Equal(*result.At))
	assert.Equal(t, "America/New_York", result.At.Location().String())
}

func TestResetTimeParser_Calendar(t *testing.T) {
	parser, seoul := newTestResetParser(t)
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, seoul)

	tests := []struct {
		phrase   string
		expected time.Time
	}{
		{"Resets Jun 3 at 9am", time.Date(2025, 6, 3, 9, 0, 0, 0, seoul)},
		{"Resets Jun 3 at 9:30pm", time.Date(2025, 6, 3, 21, 30, 0, 0, seoul)},
		{"Resets Jun 3, 9am", time.Date(2025, 6, 3, 9, 0, 0, 0, seoul)},
		{"Resets Jun 3, 10:15 am", time.Date(2025, 6, 3, 10, 15, 0, 0, seoul)},
		{"Resets Jun 3 9pm", time.Date(2025, 6, 3, 21, 0, 0, 0, seoul)},
		{"Resets Jun 3 9:05pm", time.Date(2025, 6, 3, 21, 5, 0, 0, seoul)},
		{"Resets September 12 at 1am", time.Date(2025, 9, 12, 1, 0, 0, 0, seoul)},
		{"Resets jan 2 at 8am", time.Date(2025, 1, 2, 8, 0, 0, 0, seoul)},
	}

	for _, tt := range tests {
		t.Run(tt.phrase, func(t *testing.T) {
			result := parser.Parse(tt.phrase, now, seoul)

			require.NotNil(t, result.At)
			assert.True(t, tt.expected.Equal(*result.At), "expected %s, got %s", tt.expected, result.At)
			assert.Equal(t, valueobject.ResetKindCalendar, result.Phrase.Expression.Kind())
		})
	}
}

func TestResetTimeParser_Unresolved(t *testing.T) {
	parser, seoul := newTestResetParser(t)
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, seoul)

	phrases := []string{
		"",
		"Resets",
		"Resets soon",
		"Resets 13pm",
		"Resets 25:00",
		"Resets 7:75",
		"Resets Foo 3 at 9am",
		"Resets Feb 30 at 9am",
		"Resets KST",
		"Resets in 9999999999 hours",
		"Resets in 999999999999 minutes",
		"Resets in 99999999999999999999 hours",
	}

	for _, phrase := range phrases {
		t.Run(phrase, func(t *testing.T) {
			result := parser.Parse(phrase, now, seoul)

			assert.Nil(t, result.At)
			assert.False(t, result.Resolved())
			assert.NotNil(t, result.Location)
			assert.Equal(t, phrase, result.Phrase.Raw)
		})
	}
}

func TestResetTimeParser_LargestRelativeOffset(t *testing.T) {
	parser, _ := newTestResetParser(t)
	now := time.Date(2025, 1, 2, 10, 0, 0, 0, time.UTC)

	// 2562047 hours is the last whole hour a time.Duration can hold
	result := parser.Parse("Resets in 2562047 hours", now, time.UTC)
	require.True(t, result.Resolved())
	assert.True(t, result.At.After(now))

	result = parser.Parse("Resets in 2562048 hours", now, time.UTC)
	assert.False(t, result.Resolved())
	assert.Equal(t, valueobject.ResetKindUnresolved, result.Phrase.Expression.Kind())
}

func TestResetTimeParser_DefaultZoneFromService(t *testing.T) {
	parser, _ := newTestResetParser(t)

	parsed := parser.Decompose("Resets 7pm", nil)

	assert.Equal(t, "Asia/Seoul", parsed.Location.String())
	assert.Equal(t, valueobject.TimeOfDay{Hour: 19}, parsed.Expression)
}
