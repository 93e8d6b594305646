package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ca-srg/tokenmon/domain"
	"github.com/ca-srg/tokenmon/interface/presenter"
)

func (c *CLIController) newParseResetCommand() *cobra.Command {
	var (
		zone   string
		at     string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "parse-reset <phrase>",
		Short: "Interpret a reset phrase such as \"Resets 7pm (Asia/Seoul)\"",
		Example: `  tokenmon parse-reset "Resets 7pm (Asia/Seoul)"
  tokenmon parse-reset --tz America/New_York --at 2025-03-10T12:00:00Z Resets in 45 minutes`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := c.dependencies()
			if err != nil {
				return err
			}

			defaultZone := deps.Timezones.DefaultLocation()
			if cfg := deps.ConfigService.GetConfig(); cfg != nil && cfg.Reset != nil {
				defaultZone = deps.Timezones.LocationFor(cfg.Reset.Timezone)
			}
			if zone != "" {
				loc, ok := deps.Timezones.ResolveIdentifier(zone)
				if !ok {
					loc, ok = deps.Timezones.ResolveAbbreviation(zone)
				}
				if !ok {
					return domain.ErrInvalidInput("tz", fmt.Sprintf("unknown timezone %q", zone))
				}
				defaultZone = loc
			}

			now := time.Now()
			if at != "" {
				now, err = time.Parse(time.RFC3339, at)
				if err != nil {
					return domain.ErrInvalidInput("at", "must be an RFC3339 timestamp")
				}
			}

			phrase := strings.Join(args, " ")
			view := &presenter.ResetPhraseView{
				Result: deps.ResetParser.Parse(phrase, now, defaultZone),
				Now:    now,
			}

			if asJSON {
				err = deps.JSON.PrintResetPhrase(view)
			} else {
				err = deps.Console.PrintResetPhrase(view)
			}
			if err != nil {
				return err
			}

			if !view.Result.Resolved() {
				return domain.ErrResetUnresolved(phrase)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&zone, "tz", "", "Zone used when the phrase names none (default: reset.timezone)")
	cmd.Flags().StringVar(&at, "at", "", "Evaluate as if now were this RFC3339 timestamp")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the decomposition as JSON")
	return cmd
}
