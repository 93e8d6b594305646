package cli

import (
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/ca-srg/tokenmon/domain/entity"
	"github.com/ca-srg/tokenmon/interface/presenter"
)

// ErrStatusUnavailable is returned when a fetch cycle produced no status fields
var ErrStatusUnavailable = errors.New("status unavailable: the capture produced no session fields")

func (c *CLIController) newStatusCommand() *cobra.Command {
	var (
		asJSON  bool
		asTable bool
	)

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Fetch the status once and print it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := c.dependencies()
			if err != nil {
				return err
			}

			snapshot, err := deps.Capture.Fetch(cmd.Context())
			if err != nil {
				return err
			}

			view := buildStatusView(deps, snapshot, time.Now())
			switch {
			case asJSON:
				err = deps.JSON.PrintStatus(view)
			case asTable:
				err = deps.Console.PrintStatusTable(view)
			default:
				err = deps.Console.PrintTitle(view.Title)
			}
			if err != nil {
				return err
			}

			if snapshot.IsEmpty() {
				return ErrStatusUnavailable
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the snapshot as JSON")
	cmd.Flags().BoolVar(&asTable, "table", false, "Print the snapshot as a table")
	cmd.MarkFlagsMutuallyExclusive("json", "table")
	return cmd
}

// buildStatusView renders snapshot against the configured reset cycle
func buildStatusView(deps *Dependencies, snapshot *entity.StatusSnapshot, now time.Time) *presenter.StatusView {
	var cycle time.Duration
	if cfg := deps.ConfigService.GetConfig(); cfg != nil && cfg.Reset != nil {
		cycle = cfg.Reset.Cycle()
	}

	view := &presenter.StatusView{
		Snapshot:   snapshot,
		Title:      deps.Countdown.Title(snapshot, now, cycle),
		Countdown:  deps.Countdown.Project(snapshot, now, cycle),
		RenderedAt: now,
	}
	view.Remaining, view.HasRemaining = deps.Countdown.Remaining(snapshot, now, cycle)
	return view
}
