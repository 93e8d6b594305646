package di

import (
	"github.com/ca-srg/tokenmon/interface/cli"
)

// CLIDependencies exposes the services the command tree runs on
func (c *Container) CLIDependencies() *cli.Dependencies {
	return &cli.Dependencies{
		ConfigService: c.configService,
		Timezones:     c.timezoneService,
		ResetParser:   c.resetParser,
		Capture:       c.captureService,
		Countdown:     c.countdownService,
		Monitor:       c.monitorService,
		Status:        c.statusService,
		Console:       c.consolePresenter,
		JSON:          c.jsonPresenter,
		Logger:        c.CreateLogger("cli"),
		Shutdown:      c.Shutdown,
	}
}

// NewCLIController creates the command tree backed by a container built with opts
func NewCLIController(opts ...ContainerOption) *cli.CLIController {
	return cli.NewCLIController(func(cliOpts cli.Options) (*cli.Dependencies, error) {
		all := append([]ContainerOption{WithDebugMode(cliOpts.Debug)}, opts...)
		container, err := NewContainer(all...)
		if err != nil {
			return nil, err
		}
		return container.CLIDependencies(), nil
	})
}
