package presenter

import (
	"encoding/json"
	"io"
	"os"
	"time"
)

// JSONPresenterImpl implements JSONPresenter for JSON output
type JSONPresenterImpl struct {
	writer  io.Writer
	encoder *json.Encoder
}

// NewJSONPresenter creates a new JSON presenter
func NewJSONPresenter() *JSONPresenterImpl {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")

	return &JSONPresenterImpl{
		writer:  os.Stdout,
		encoder: encoder,
	}
}

// PrintStatus prints a snapshot as JSON; absent fields are null
func (p *JSONPresenterImpl) PrintStatus(view *StatusView) error {
	data := map[string]interface{}{
		"title":     view.Title,
		"countdown": view.Countdown,
	}

	snapshot := view.Snapshot
	if snapshot == nil {
		data["fetched"] = false
		return p.encoder.Encode(data)
	}

	data["fetched"] = true
	data["fetchedAt"] = snapshot.FetchedAt().Format(time.RFC3339)
	data["sessionPercent"] = nil
	if v, ok := snapshot.Percent(); ok {
		data["sessionPercent"] = v
	}

	reset := map[string]interface{}{
		"text":             nil,
		"at":               nil,
		"timezone":         nil,
		"remainingSeconds": nil,
	}
	if text, ok := snapshot.ResetText(); ok {
		reset["text"] = text
	}
	if at, ok := snapshot.ResetAt(); ok {
		reset["at"] = at.Format(time.RFC3339)
	}
	if loc := snapshot.ResetLocation(); loc != nil {
		reset["timezone"] = loc.String()
	}
	if view.HasRemaining {
		reset["remainingSeconds"] = int64(view.Remaining / time.Second)
	}
	data["sessionReset"] = reset

	week := map[string]interface{}{}
	if text, ok := snapshot.WeekAllResetText(); ok {
		week["all"] = text
	}
	if text, ok := snapshot.WeekSonnetResetText(); ok {
		week["sonnet"] = text
	}
	if len(week) > 0 {
		data["weekReset"] = week
	}
	if capturedAt, ok := snapshot.CapturedAt(); ok {
		data["capturedAt"] = capturedAt.Format(time.RFC3339)
	}

	return p.encoder.Encode(data)
}

// PrintResetPhrase prints a reset phrase decomposition as JSON
func (p *JSONPresenterImpl) PrintResetPhrase(view *ResetPhraseView) error {
	phrase := view.Result.Phrase
	data := map[string]interface{}{
		"phrase":     phrase.Raw,
		"cleaned":    phrase.Cleaned,
		"timezone":   view.Result.Location.String(),
		"zoneSource": string(phrase.ZoneSource),
		"expression": map[string]interface{}{
			"kind":  string(phrase.Expression.Kind()),
			"value": phrase.Expression.String(),
		},
		"now":      view.Now.Format(time.RFC3339),
		"resolved": view.Result.At != nil,
	}
	if view.Result.At != nil {
		data["at"] = view.Result.At.Format(time.RFC3339)
		data["inSeconds"] = int64(view.Result.At.Sub(view.Now) / time.Second)
	}
	return p.encoder.Encode(data)
}

// PrintConfig prints an exported configuration as JSON
func (p *JSONPresenterImpl) PrintConfig(exported map[string]interface{}) error {
	return p.encoder.Encode(exported)
}

// PrintError prints an error as JSON
func (p *JSONPresenterImpl) PrintError(err error) error {
	data := map[string]interface{}{
		"error": map[string]string{
			"message": err.Error(),
		},
	}

	// Use stderr for errors
	encoder := json.NewEncoder(os.Stderr)
	encoder.SetIndent("", "  ")

	return encoder.Encode(data)
}

// SetWriter sets the output writer (mainly for testing)
func (p *JSONPresenterImpl) SetWriter(w io.Writer) {
	p.writer = w
	p.encoder = json.NewEncoder(w)
	p.encoder.SetIndent("", "  ")
}
