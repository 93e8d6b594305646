package presenter

import (
	"time"

	"github.com/ca-srg/tokenmon/domain/entity"
	usecase "github.com/ca-srg/tokenmon/usecase/interface"
)

// StatusView is one snapshot together with its rendered countdown
type StatusView struct {
	Snapshot  *entity.StatusSnapshot
	Title     string
	Countdown string

	// Remaining is only meaningful when HasRemaining is true
	Remaining    time.Duration
	HasRemaining bool

	RenderedAt time.Time
}

// ResetPhraseView is the decomposition of one reset phrase
type ResetPhraseView struct {
	Result usecase.ResetTime
	Now    time.Time
}

// ConsolePresenter handles console output formatting
type ConsolePresenter interface {
	// Version and basic output
	PrintVersion()
	PrintError(err error)
	PrintStringList(title string, items []string) error

	// Status output
	PrintTitle(title string) error
	PrintStatusTable(view *StatusView) error

	// Reset phrase output
	PrintResetPhrase(view *ResetPhraseView) error

	// Watch loop diagnostics
	PrintMonitorStatus(info *usecase.StatusInfo) error
}

// JSONPresenter handles JSON output formatting
type JSONPresenter interface {
	PrintStatus(view *StatusView) error
	PrintResetPhrase(view *ResetPhraseView) error
	PrintConfig(exported map[string]interface{}) error
	PrintError(err error) error
}
