package presenter

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"

	usecase "github.com/ca-srg/tokenmon/usecase/interface"
)

// Version is overridden at build time
var Version = "dev"

const (
	timestampLayout = "2006-01-02 15:04:05 MST"
	notAvailable    = "-"
)

// ConsolePresenterImpl implements ConsolePresenter for terminal output
type ConsolePresenterImpl struct {
	writer    io.Writer
	errWriter io.Writer
}

// NewConsolePresenter creates a new console presenter
func NewConsolePresenter() *ConsolePresenterImpl {
	return &ConsolePresenterImpl{
		writer:    os.Stdout,
		errWriter: os.Stderr,
	}
}

// SetWriter sets the output writer (mainly for testing)
func (p *ConsolePresenterImpl) SetWriter(w io.Writer) {
	p.writer = w
}

// SetErrWriter sets the diagnostics writer (mainly for testing)
func (p *ConsolePresenterImpl) SetErrWriter(w io.Writer) {
	p.errWriter = w
}

// PrintVersion prints version information
func (p *ConsolePresenterImpl) PrintVersion() {
	_, _ = fmt.Fprintf(p.writer, "tokenmon version %s\n", Version)
}

// PrintError prints an error message
func (p *ConsolePresenterImpl) PrintError(err error) {
	_, _ = fmt.Fprintf(p.errWriter, "Error: %v\n", err)
}

// PrintStringList prints a list of strings with a title
func (p *ConsolePresenterImpl) PrintStringList(title string, items []string) error {
	_, _ = fmt.Fprintf(p.writer, "%s:\n", title)
	for _, item := range items {
		_, _ = fmt.Fprintf(p.writer, "  - %s\n", item)
	}
	return nil
}

// PrintTitle prints the one-line status label
func (p *ConsolePresenterImpl) PrintTitle(title string) error {
	_, err := fmt.Fprintln(p.writer, title)
	return err
}

// PrintStatusTable prints every snapshot field as a two-column table
func (p *ConsolePresenterImpl) PrintStatusTable(view *StatusView) error {
	rows := [][]string{
		{"Title", view.Title},
		{"Countdown", view.Countdown},
	}

	snapshot := view.Snapshot
	if snapshot == nil {
		rows = append(rows, []string{"Status", "not fetched"})
		return p.renderTable([]string{"FIELD", "VALUE"}, rows)
	}

	percent := notAvailable
	if v, ok := snapshot.Percent(); ok {
		percent = strconv.Itoa(v) + "%"
	}
	rows = append(rows, []string{"Session Usage", percent})

	resetText, _ := snapshot.ResetText()
	rows = append(rows, []string{"Reset Phrase", orNotAvailable(resetText)})

	resetAt := notAvailable
	if at, ok := snapshot.ResetAt(); ok {
		resetAt = at.Format(timestampLayout)
	}
	rows = append(rows, []string{"Reset At", resetAt})

	if loc := snapshot.ResetLocation(); loc != nil {
		rows = append(rows, []string{"Reset Zone", loc.String()})
	}
	if view.HasRemaining {
		rows = append(rows, []string{"Remaining", view.Remaining.Truncate(time.Second).String()})
	}

	weekAll, _ := snapshot.WeekAllResetText()
	rows = append(rows, []string{"Week Reset (all)", orNotAvailable(weekAll)})
	weekSonnet, _ := snapshot.WeekSonnetResetText()
	rows = append(rows, []string{"Week Reset (sonnet)", orNotAvailable(weekSonnet)})

	if capturedAt, ok := snapshot.CapturedAt(); ok {
		rows = append(rows, []string{"Captured At", capturedAt.Local().Format(timestampLayout)})
	}
	rows = append(rows, []string{"Fetched At", snapshot.FetchedAt().Format(timestampLayout)})

	return p.renderTable([]string{"FIELD", "VALUE"}, rows)
}

// PrintResetPhrase prints how a phrase was decomposed and resolved
func (p *ConsolePresenterImpl) PrintResetPhrase(view *ResetPhraseView) error {
	phrase := view.Result.Phrase
	resolved := "unresolved"
	if view.Result.At != nil {
		resolved = view.Result.At.Format(timestampLayout)
	}

	rows := [][]string{
		{"Phrase", phrase.Raw},
		{"Cleaned", phrase.Cleaned},
		{"Zone", view.Result.Location.String()},
		{"Zone Source", string(phrase.ZoneSource)},
		{"Expression", string(phrase.Expression.Kind()) + " " + phrase.Expression.String()},
		{"Now", view.Now.In(view.Result.Location).Format(timestampLayout)},
		{"Resolved", resolved},
	}
	if view.Result.At != nil {
		rows = append(rows, []string{"In", view.Result.At.Sub(view.Now).Truncate(time.Second).String()})
	}
	return p.renderTable([]string{"FIELD", "VALUE"}, rows)
}

// PrintMonitorStatus writes one line describing the watch loop state.
// It goes to the diagnostics writer so the title stream stays clean.
func (p *ConsolePresenterImpl) PrintMonitorStatus(info *usecase.StatusInfo) error {
	if info == nil {
		return nil
	}
	lastError := "none"
	if info.LastError != nil {
		lastError = info.LastError.Error()
		if info.LastErrorAt != nil {
			lastError += " (at " + info.LastErrorAt.Format(timestampLayout) + ")"
		}
	}
	_, err := fmt.Fprintf(p.errWriter, "monitor: running=%t fetches=%d last_fetch=%s next_fetch=%s metrics_sent=%s last_error=%s\n",
		info.IsRunning,
		info.FetchCount,
		formatOptionalTime(info.LastFetchAt),
		formatOptionalTime(info.NextFetchAt),
		formatOptionalTime(info.LastMetricsSentAt),
		lastError,
	)
	return err
}

func formatOptionalTime(t *time.Time) string {
	if t == nil {
		return notAvailable
	}
	return t.Format(timestampLayout)
}

func (p *ConsolePresenterImpl) renderTable(header []string, rows [][]string) error {
	tw := tablewriter.NewWriter(p.writer)
	tw.SetHeader(header)
	tw.SetBorder(true)
	tw.SetRowLine(false)
	tw.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	tw.SetAlignment(tablewriter.ALIGN_LEFT)
	tw.SetAutoWrapText(false)
	tw.AppendBulk(rows)
	tw.Render()
	return nil
}

func orNotAvailable(s string) string {
	if s == "" {
		return notAvailable
	}
	return s
}
