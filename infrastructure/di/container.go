package di

import (
	"fmt"
	"os"

	"github.com/ca-srg/tokenmon/domain"
	"github.com/ca-srg/tokenmon/domain/repository"
	"github.com/ca-srg/tokenmon/infrastructure/config"
	"github.com/ca-srg/tokenmon/infrastructure/logging"
	infraRepo "github.com/ca-srg/tokenmon/infrastructure/repository"
	"github.com/ca-srg/tokenmon/infrastructure/service"
	"github.com/ca-srg/tokenmon/interface/presenter"
	"github.com/ca-srg/tokenmon/usecase/impl"
	usecase "github.com/ca-srg/tokenmon/usecase/interface"
)

// Container is the dependency injection container
type Container struct {
	// Configuration
	config        *config.AppConfig
	configRepo    repository.ConfigRepository
	configService usecase.ConfigService

	// Repositories
	captureRepo repository.CaptureRepository
	metricsRepo repository.MetricsRepository

	// Services
	timezoneService repository.TimezoneService

	// Use Cases
	resetParser      usecase.ResetTimeParser
	statusParser     usecase.StatusParser
	captureService   usecase.CaptureService
	countdownService usecase.CountdownService
	metricsService   usecase.MetricsService
	statusService    usecase.StatusService
	monitorService   usecase.MonitorService

	// Presenters
	consolePresenter presenter.ConsolePresenter
	jsonPresenter    presenter.JSONPresenter

	// Logging
	loggerFactory *logging.LoggerFactoryImpl
	logger        domain.Logger

	// Options
	debugMode bool
}

// ContainerOption is a function that configures the container
type ContainerOption func(*Container)

// WithDebugMode sets the debug mode
func WithDebugMode(debug bool) ContainerOption {
	return func(c *Container) {
		c.debugMode = debug
	}
}

// NewContainer creates a new DI container
func NewContainer(opts ...ContainerOption) (*Container, error) {
	return NewContainerBuilder().WithOptions(opts...).Build()
}

// initConfig initializes configuration
func (c *Container) initConfig() error {
	// Create config repository
	if c.configRepo == nil {
		c.configRepo = infraRepo.NewJSONConfigRepository(&logging.NoOpLogger{})
	}

	// Create temporary NoOpLogger for initial configuration loading
	tempLogger := &logging.NoOpLogger{}

	// Create config service with temporary logger
	configService, err := impl.NewConfigService(c.configRepo, tempLogger)
	if err != nil {
		// ConfigServiceがないとシステムが動作しないので、エラーを返す
		return fmt.Errorf("failed to create config service: %w", err)
	}
	c.configService = configService

	// Ensure config file exists (create template if needed)
	if err := configService.EnsureConfigExists(); err != nil {
		// エラーメッセージを標準エラー出力に表示
		fmt.Fprintf(os.Stderr, "Warning: Failed to create config file: %v\n", err)
		// デフォルト設定で継続
	}

	// Get configuration from service (with fallback to defaults)
	cfg := configService.GetConfig()

	// Override debug mode if set via command line
	if c.debugMode {
		if cfg.Logging == nil {
			cfg.Logging = &config.LoggingConfig{Level: "debug"}
		}
		cfg.Logging.Debug = true
		cfg.Logging.Level = "debug"
	}

	c.config = cfg
	return nil
}

// initLogging initializes logging components
func (c *Container) initLogging() error {
	// Ensure logging configuration exists
	if c.config.Logging == nil {
		c.config.Logging = &config.LoggingConfig{Level: "info"}
	}

	// Create logger factory
	c.loggerFactory = logging.NewLoggerFactory(c.config.Logging)

	// Create main logger for the container
	c.logger = c.loggerFactory.CreateLogger("tokenmon")

	return nil
}

// initRepositories initializes repository implementations
func (c *Container) initRepositories() error {
	if c.captureRepo == nil {
		c.captureRepo = infraRepo.NewProcessCaptureRepository(c.CreateLogger("capture"))
	}

	if c.metricsRepo != nil {
		return nil
	}

	// Remote write is only enabled when a URL is configured
	if c.config.Prometheus == nil || c.config.Prometheus.RemoteWriteURL == "" {
		c.metricsRepo = infraRepo.NewNoOpMetricsRepository()
		return nil
	}

	metricsRepo, err := infraRepo.NewPrometheusMetricsRepository(c.config.Prometheus)
	if err != nil {
		return fmt.Errorf("failed to create metrics repository: %w", err)
	}
	c.metricsRepo = metricsRepo
	return nil
}

// initDomainServices initializes domain services
func (c *Container) initDomainServices() error {
	c.timezoneService = service.NewTimezoneServiceImpl(c.config.Reset.Timezone, c.CreateLogger("timezone"))
	return nil
}

// initUseCases initializes use case implementations
func (c *Container) initUseCases() error {
	c.resetParser = impl.NewResetTimeParser(c.timezoneService)
	c.statusParser = impl.NewStatusParser(c.resetParser, c.timezoneService)
	c.countdownService = impl.NewCountdownService()
	c.statusService = impl.NewStatusService()

	c.captureService = impl.NewCaptureService(
		c.captureRepo,
		c.statusParser,
		c.configService,
		c.timezoneService,
		c.CreateLogger("capture"),
	)

	_, noop := c.metricsRepo.(*infraRepo.NoOpMetricsRepository)
	c.metricsService = impl.NewMetricsServiceImpl(
		c.metricsRepo,
		c.countdownService,
		c.timezoneService,
		c.configService,
		!noop,
		c.CreateLogger("metrics"),
	)

	c.monitorService = impl.NewMonitorService(
		c.captureService,
		c.countdownService,
		c.metricsService,
		c.statusService,
		c.configService,
		c.CreateLogger("monitor"),
	)

	return nil
}

// initPresenters initializes presenter implementations
func (c *Container) initPresenters() error {
	if c.consolePresenter == nil {
		c.consolePresenter = presenter.NewConsolePresenter()
	}
	if c.jsonPresenter == nil {
		c.jsonPresenter = presenter.NewJSONPresenter()
	}
	return nil
}

// Shutdown releases the metrics client and flushes pending log batches
func (c *Container) Shutdown() error {
	var firstErr error
	if c.metricsService != nil {
		if err := c.metricsService.Close(); err != nil {
			firstErr = err
		}
	}
	if c.loggerFactory != nil {
		if err := c.loggerFactory.Shutdown(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// GetConfig returns the application configuration
func (c *Container) GetConfig() *config.AppConfig {
	return c.config
}

// GetConfigRepository returns the config repository
func (c *Container) GetConfigRepository() repository.ConfigRepository {
	return c.configRepo
}

// GetConfigService returns the config service
func (c *Container) GetConfigService() usecase.ConfigService {
	return c.configService
}

// GetCaptureRepository returns the capture repository
func (c *Container) GetCaptureRepository() repository.CaptureRepository {
	return c.captureRepo
}

// GetMetricsRepository returns the metrics repository
func (c *Container) GetMetricsRepository() repository.MetricsRepository {
	return c.metricsRepo
}

// GetTimezoneService returns the timezone service
func (c *Container) GetTimezoneService() repository.TimezoneService {
	return c.timezoneService
}

// GetResetTimeParser returns the reset time parser
func (c *Container) GetResetTimeParser() usecase.ResetTimeParser {
	return c.resetParser
}

// GetCaptureService returns the capture service
func (c *Container) GetCaptureService() usecase.CaptureService {
	return c.captureService
}

// GetCountdownService returns the countdown service
func (c *Container) GetCountdownService() usecase.CountdownService {
	return c.countdownService
}

// GetMetricsService returns the metrics service
func (c *Container) GetMetricsService() usecase.MetricsService {
	return c.metricsService
}

// GetStatusService returns the status service
func (c *Container) GetStatusService() usecase.StatusService {
	return c.statusService
}

// GetMonitorService returns the monitor service
func (c *Container) GetMonitorService() usecase.MonitorService {
	return c.monitorService
}

// GetConsolePresenter returns the console presenter
func (c *Container) GetConsolePresenter() presenter.ConsolePresenter {
	return c.consolePresenter
}

// GetJSONPresenter returns the JSON presenter
func (c *Container) GetJSONPresenter() presenter.JSONPresenter {
	return c.jsonPresenter
}

// GetLogger returns the main logger
func (c *Container) GetLogger() domain.Logger {
	return c.logger
}

// CreateLogger creates a new logger for a specific component
func (c *Container) CreateLogger(component string) domain.Logger {
	if c.loggerFactory == nil {
		return &logging.NoOpLogger{}
	}
	return c.loggerFactory.CreateLogger(component)
}

// Builder pattern for custom container configuration

// ContainerBuilder builds a custom container
type ContainerBuilder struct {
	opts             []ContainerOption
	configRepo       repository.ConfigRepository
	captureRepo      repository.CaptureRepository
	metricsRepo      repository.MetricsRepository
	consolePresenter presenter.ConsolePresenter
	jsonPresenter    presenter.JSONPresenter
}

// NewContainerBuilder creates a new container builder
func NewContainerBuilder() *ContainerBuilder {
	return &ContainerBuilder{}
}

// WithOptions appends container options
func (b *ContainerBuilder) WithOptions(opts ...ContainerOption) *ContainerBuilder {
	b.opts = append(b.opts, opts...)
	return b
}

// WithConfigRepository sets a custom config repository
func (b *ContainerBuilder) WithConfigRepository(repo repository.ConfigRepository) *ContainerBuilder {
	b.configRepo = repo
	return b
}

// WithCaptureRepository sets a custom capture repository
func (b *ContainerBuilder) WithCaptureRepository(repo repository.CaptureRepository) *ContainerBuilder {
	b.captureRepo = repo
	return b
}

// WithMetricsRepository sets a custom metrics repository
func (b *ContainerBuilder) WithMetricsRepository(repo repository.MetricsRepository) *ContainerBuilder {
	b.metricsRepo = repo
	return b
}

// WithPresenters sets custom presenters
func (b *ContainerBuilder) WithPresenters(console presenter.ConsolePresenter, json presenter.JSONPresenter) *ContainerBuilder {
	b.consolePresenter = console
	b.jsonPresenter = json
	return b
}

// Build builds the container with custom components
func (b *ContainerBuilder) Build() (*Container, error) {
	container := &Container{
		configRepo:       b.configRepo,
		captureRepo:      b.captureRepo,
		metricsRepo:      b.metricsRepo,
		consolePresenter: b.consolePresenter,
		jsonPresenter:    b.jsonPresenter,
	}

	// Apply options
	for _, opt := range b.opts {
		opt(container)
	}

	// Load configuration
	if err := container.initConfig(); err != nil {
		return nil, fmt.Errorf("failed to initialize config: %w", err)
	}

	// Initialize logging
	if err := container.initLogging(); err != nil {
		return nil, fmt.Errorf("failed to initialize logging: %w", err)
	}

	// Initialize repositories
	if err := container.initRepositories(); err != nil {
		return nil, fmt.Errorf("failed to initialize repositories: %w", err)
	}

	// Initialize domain services
	if err := container.initDomainServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize domain services: %w", err)
	}

	// Initialize use cases
	if err := container.initUseCases(); err != nil {
		return nil, fmt.Errorf("failed to initialize use cases: %w", err)
	}

	// Initialize presenters
	if err := container.initPresenters(); err != nil {
		return nil, fmt.Errorf("failed to initialize presenters: %w", err)
	}

	return container, nil
}
