package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ca-srg/tokenmon/domain"
	"github.com/ca-srg/tokenmon/infrastructure/config"
)

func (c *CLIController) newWatchCommand() *cobra.Command {
	var noConfigWatch bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Refresh the status on a schedule and print the title on every change",
		Long: `watch fetches the status every refresh.interval_seconds and re-renders the
countdown every refresh.countdown_seconds. SIGUSR1 requests an immediate
refresh, limited to one per refresh.manual_min_interval_seconds, and prints
the monitor state (fetch count, last and next fetch, last error) to stderr.
The same line is printed on exit. Edits to the configuration file are
applied without a restart.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := c.dependencies()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			refreshCh := make(chan os.Signal, 1)
			if sigs := refreshSignals(); len(sigs) > 0 {
				signal.Notify(refreshCh, sigs...)
				defer signal.Stop(refreshCh)
			}

			if !noConfigWatch {
				c.watchConfig(ctx, deps)
			}

			if err := deps.Monitor.Start(ctx); err != nil {
				return err
			}
			defer func() { _ = deps.Monitor.Stop() }()

			updates := deps.Monitor.Updates()
			last := ""
			for {
				select {
				case <-ctx.Done():
					c.reportMonitorStatus(ctx, deps)
					return nil
				case <-refreshCh:
					if !deps.Monitor.RefreshNow(ctx) {
						deps.Logger.Info(ctx, "Manual refresh ignored: requested too soon after the previous one")
					}
					c.reportMonitorStatus(ctx, deps)
				case update := <-updates:
					if update.Title == last && !update.Fetched {
						continue
					}
					last = update.Title
					if err := deps.Console.PrintTitle(update.Title); err != nil {
						return err
					}
				}
			}
		},
	}

	cmd.Flags().BoolVar(&noConfigWatch, "no-config-watch", false, "Do not reload the configuration file when it changes")
	return cmd
}

// reportMonitorStatus logs the monitor state and prints it to stderr
func (c *CLIController) reportMonitorStatus(ctx context.Context, deps *Dependencies) {
	if deps.Status == nil {
		return
	}
	info, err := deps.Status.GetStatus()
	if err != nil {
		deps.Logger.Warn(ctx, "Failed to read monitor status", domain.ErrorField(err))
		return
	}

	fields := []domain.Field{
		domain.NewField("running", info.IsRunning),
		domain.NewField("fetch_count", info.FetchCount),
	}
	if info.LastFetchAt != nil {
		fields = append(fields, domain.NewField("last_fetch_at", info.LastFetchAt.Format(time.RFC3339)))
	}
	if info.NextFetchAt != nil {
		fields = append(fields, domain.NewField("next_fetch_at", info.NextFetchAt.Format(time.RFC3339)))
	}
	if info.LastError != nil {
		fields = append(fields, domain.ErrorField(info.LastError))
	}
	deps.Logger.Info(ctx, "Monitor status", fields...)

	if err := deps.Console.PrintMonitorStatus(info); err != nil {
		deps.Logger.Warn(ctx, "Failed to print monitor status", domain.ErrorField(err))
	}
}

// watchConfig reloads the configuration on change and reschedules the monitor
func (c *CLIController) watchConfig(ctx context.Context, deps *Dependencies) {
	path := deps.ConfigService.GetConfigPath()
	if path == "" {
		return
	}

	remoteWriteURL := func() string {
		cfg := deps.ConfigService.GetConfig()
		if cfg == nil || cfg.Prometheus == nil {
			return ""
		}
		return cfg.Prometheus.RemoteWriteURL
	}
	startURL := remoteWriteURL()

	onChange := func() {
		if err := deps.ConfigService.ReloadConfig(); err != nil {
			deps.Logger.Warn(ctx, "Failed to reload configuration", domain.ErrorField(err))
			return
		}
		if err := deps.Monitor.Reschedule(); err != nil {
			deps.Logger.Warn(ctx, "Failed to apply refresh settings", domain.ErrorField(err))
			return
		}
		if remoteWriteURL() != startURL {
			deps.Logger.Warn(ctx, "prometheus.remote_write_url changed; restart watch to apply it")
		}
		deps.Logger.Info(ctx, "Configuration reloaded", domain.NewField("path", path))
	}

	watcher := config.NewWatcher(path, onChange, deps.Logger)
	go func() {
		if err := watcher.Run(ctx); err != nil {
			deps.Logger.Warn(ctx, "Configuration watch stopped", domain.ErrorField(err))
		}
	}()
}
