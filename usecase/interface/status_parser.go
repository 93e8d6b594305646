package usecase

import (
	"time"

	"github.com/ca-srg/tokenmon/domain/entity"
)

// StatusParser decodes the capture script's JSON document
type StatusParser interface {
	// Parse decodes body using the current time and the configured default zone
	Parse(body []byte) (*entity.StatusSnapshot, error)

	// ParseAt decodes body as if parsed at now
	ParseAt(body []byte, now time.Time, defaultZone *time.Location) (*entity.StatusSnapshot, error)
}
