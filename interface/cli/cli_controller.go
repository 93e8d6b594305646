package cli

import (
	"context"
	"fmt"
	"sync"

	"github.com/spf13/cobra"

	"github.com/ca-srg/tokenmon/domain"
	"github.com/ca-srg/tokenmon/domain/repository"
	"github.com/ca-srg/tokenmon/interface/presenter"
	usecase "github.com/ca-srg/tokenmon/usecase/interface"
)

// Dependencies are the services the commands run on
type Dependencies struct {
	ConfigService usecase.ConfigService
	Timezones     repository.TimezoneService
	ResetParser   usecase.ResetTimeParser
	Capture       usecase.CaptureService
	Countdown     usecase.CountdownService
	Monitor       usecase.MonitorService
	Status        usecase.StatusService
	Console       presenter.ConsolePresenter
	JSON          presenter.JSONPresenter
	Logger        domain.Logger

	// Shutdown releases clients; may be nil
	Shutdown func() error
}

// Options are the persistent flags that shape dependency construction
type Options struct {
	Debug bool
}

// DependencyFactory builds the dependencies once the flags are parsed
type DependencyFactory func(opts Options) (*Dependencies, error)

// CLIController handles command-line interface operations
type CLIController struct {
	factory DependencyFactory
	opts    Options
	root    *cobra.Command

	once    sync.Once
	deps    *Dependencies
	depsErr error
}

// NewCLIController creates a new CLI controller
func NewCLIController(factory DependencyFactory) *CLIController {
	c := &CLIController{factory: factory}
	c.root = c.newRootCommand()
	return c
}

// Command returns the root command
func (c *CLIController) Command() *cobra.Command {
	return c.root
}

// Execute runs the command named by args
func (c *CLIController) Execute(ctx context.Context, args []string) error {
	c.root.SetArgs(args)
	defer c.shutdown()
	return c.root.ExecuteContext(ctx)
}

func (c *CLIController) newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "tokenmon",
		Short: "tokenmon shows the current session usage and the time left until it resets",
		Long: `tokenmon runs the status-capture script, reads the current-session usage
percentage and reset phrase, and renders a countdown such as "42%|03:15".

Quick start:
  tokenmon config init         # write ~/.config/tokenmon/config.json
  tokenmon status              # fetch once and print the title
  tokenmon watch               # refresh on a schedule, SIGUSR1 refreshes now`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().BoolVar(&c.opts.Debug, "debug", false, "Enable debug logging to stderr")

	root.AddCommand(
		c.newStatusCommand(),
		c.newWatchCommand(),
		c.newParseResetCommand(),
		c.newConfigCommand(),
		c.newVersionCommand(),
	)
	return root
}

// dependencies builds the dependencies on first use
func (c *CLIController) dependencies() (*Dependencies, error) {
	c.once.Do(func() {
		c.deps, c.depsErr = c.factory(c.opts)
		if c.depsErr != nil {
			c.depsErr = fmt.Errorf("failed to initialize application: %w", c.depsErr)
		}
	})
	return c.deps, c.depsErr
}

func (c *CLIController) shutdown() {
	if c.deps != nil && c.deps.Shutdown != nil {
		_ = c.deps.Shutdown()
	}
}

func (c *CLIController) newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := c.dependencies()
			if err != nil {
				return err
			}
			deps.Console.PrintVersion()
			return nil
		},
	}
}
