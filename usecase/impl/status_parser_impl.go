package impl

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"
	"time"

	"github.com/ca-srg/tokenmon/domain"
	"github.com/ca-srg/tokenmon/domain/entity"
	"github.com/ca-srg/tokenmon/domain/repository"
	usecase "github.com/ca-srg/tokenmon/usecase/interface"
)

// Keys of the JSON object printed by the capture script
const (
	keySessionPercent  = "current_session_percent"
	keySessionReset    = "current_session_reset"
	keyWeekAllReset    = "current_week_all_reset"
	keyWeekSonnetReset = "current_week_sonnet_reset"
	keyCapturedAt      = "captured_at"
	keyScriptError     = "error"
	keyRawTail         = "raw_tail"
)

// StatusParserImpl implements the StatusParser interface
type StatusParserImpl struct {
	resetParser usecase.ResetTimeParser
	timezones   repository.TimezoneService
	now         func() time.Time
}

// NewStatusParser creates a new status parser
func NewStatusParser(resetParser usecase.ResetTimeParser, timezones repository.TimezoneService) usecase.StatusParser {
	return &StatusParserImpl{
		resetParser: resetParser,
		timezones:   timezones,
		now:         time.Now,
	}
}

// Parse decodes body at the current time in the default zone
func (p *StatusParserImpl) Parse(body []byte) (*entity.StatusSnapshot, error) {
	return p.ParseAt(body, p.now(), p.timezones.DefaultLocation())
}

// ParseAt decodes body as if parsed at now
func (p *StatusParserImpl) ParseAt(body []byte, now time.Time, defaultZone *time.Location) (*entity.StatusSnapshot, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, domain.ErrCaptureParse("empty output")
	}
	if trimmed[0] != '{' {
		return nil, domain.ErrCaptureParse("output is not a JSON object")
	}

	// fields are typed one by one; a value of the wrong type counts as absent
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return nil, domain.ErrCaptureParseWithCause("invalid JSON", err)
	}

	percent, hasPercent := decodePercent(doc[keySessionPercent])
	resetText := decodeString(doc[keySessionReset])
	if !hasPercent && resetText == nil {
		err := domain.ErrCaptureParse("no session fields in output")
		if scriptErr := decodeString(doc[keyScriptError]); scriptErr != nil {
			err = err.WithDetails("scriptError", *scriptErr)
		}
		if rawTail := decodeStrings(doc[keyRawTail]); len(rawTail) > 0 {
			err = err.WithDetails("rawTail", strings.Join(rawTail, " | "))
		}
		return nil, err
	}

	params := entity.StatusSnapshotParams{
		ResetText:           resetText,
		WeekAllResetText:    decodeString(doc[keyWeekAllReset]),
		WeekSonnetResetText: decodeString(doc[keyWeekSonnetReset]),
		FetchedAt:           now,
	}
	if hasPercent {
		params.Percent = &percent
	}
	if capturedText := decodeString(doc[keyCapturedAt]); capturedText != nil {
		if capturedAt, err := time.Parse(time.RFC3339, *capturedText); err == nil {
			params.CapturedAt = &capturedAt
		}
	}
	if resetText != nil {
		reset := p.resetParser.Parse(*resetText, now, defaultZone)
		params.ResetAt = reset.At
		params.ResetLocation = reset.Location
	}

	snapshot, err := entity.NewStatusSnapshot(params)
	if err != nil {
		return nil, domain.ErrCaptureParseWithCause("invalid snapshot", err)
	}
	return snapshot, nil
}

// decodePercent accepts integral JSON numbers within the int32 range
func decodePercent(raw json.RawMessage) (int, bool) {
	// strings, booleans and null are not percentages
	if len(raw) == 0 || (raw[0] != '-' && (raw[0] < '0' || raw[0] > '9')) {
		return 0, false
	}
	var number json.Number
	if err := json.Unmarshal(raw, &number); err != nil {
		return 0, false
	}
	if v, err := number.Int64(); err == nil {
		if v < math.MinInt32 || v > math.MaxInt32 {
			return 0, false
		}
		return int(v), true
	}
	f, err := number.Float64()
	if err != nil || f != math.Trunc(f) || f < math.MinInt32 || f > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}

// decodeString returns nil unless raw is a JSON string
func decodeString(raw json.RawMessage) *string {
	if len(raw) == 0 || raw[0] != '"' {
		return nil
	}
	var v string
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil
	}
	return &v
}

// decodeStrings keeps the string elements of a JSON array
func decodeStrings(raw json.RawMessage) []string {
	var items []json.RawMessage
	if len(raw) == 0 || raw[0] != '[' || json.Unmarshal(raw, &items) != nil {
		return nil
	}
	var out []string
	for _, item := range items {
		if v := decodeString(item); v != nil {
			out = append(out, *v)
		}
	}
	return out
}
