package usecase

import (
	"time"

	"github.com/ca-srg/tokenmon/domain/valueobject"
)

// ResetTime is the outcome of interpreting a reset phrase
type ResetTime struct {
	// At is the resolved instant, nil when the phrase was not understood
	At *time.Time

	// Location is the working zone; never nil
	Location *time.Location

	// Phrase holds the intermediate decomposition
	Phrase valueobject.ParsedResetPhrase
}

// Resolved reports whether an instant was determined
func (r ResetTime) Resolved() bool {
	return r.At != nil
}

// ResetTimeParser turns free-form reset phrases into instants
type ResetTimeParser interface {
	// Parse interprets phrase at now. It never fails; At is nil when unresolved.
	Parse(phrase string, now time.Time, defaultZone *time.Location) ResetTime

	// Decompose runs prefix, zone and format recognition without evaluating against a clock
	Decompose(phrase string, defaultZone *time.Location) valueobject.ParsedResetPhrase
}
