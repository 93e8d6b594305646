package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Netflix/go-env"
)

const (
	// DefaultTimezone is the zone used for reset phrases that name none
	DefaultTimezone = "Asia/Seoul"

	// DefaultSearchPath is the PATH handed to the capture process
	DefaultSearchPath = "/opt/homebrew/bin:/usr/local/bin:/usr/bin:/bin:/usr/sbin:/sbin"

	// DefaultInterpreter runs the capture script
	DefaultInterpreter = "/usr/bin/python3"

	// DefaultScriptName is the capture script looked up when no path is configured
	DefaultScriptName = "capture-status.py"
)

// CaptureConfig holds status-capture process configuration
type CaptureConfig struct {
	// ScriptPath is the path of the capture script; empty means discover it
	ScriptPath string `json:"script_path,omitempty" env:"TOKENMON_CAPTURE_PATH"`

	// Interpreter runs the capture script
	Interpreter string `json:"interpreter,omitempty" env:"TOKENMON_CAPTURE_INTERPRETER"`

	// RawOutputPath asks the script to store its raw terminal capture there
	RawOutputPath string `json:"raw_output_path,omitempty" env:"TOKENMON_CAPTURE_RAW"`

	// WorkDir is the working directory of the process (default: home directory)
	WorkDir string `json:"work_dir,omitempty" env:"TOKENMON_CAPTURE_WORK_DIR"`

	// ClaudeCWD is exported to the process as CLAUDE_CWD (default: temp directory)
	ClaudeCWD string `json:"claude_cwd,omitempty" env:"TOKENMON_CAPTURE_CLAUDE_CWD"`

	// SearchPath is exported to the process as PATH
	SearchPath string `json:"search_path,omitempty" env:"TOKENMON_CAPTURE_SEARCH_PATH"`

	// MaxAttempts is the number of launches per fetch cycle
	MaxAttempts int `json:"max_attempts,omitempty" env:"TOKENMON_CAPTURE_MAX_ATTEMPTS"`

	// RetryDelaySec is the wait between attempts
	RetryDelaySec int `json:"retry_delay_seconds,omitempty" env:"TOKENMON_CAPTURE_RETRY_DELAY_SECONDS"`

	// TimeoutSec bounds one process run; 0 disables the timeout
	TimeoutSec int `json:"timeout_seconds,omitempty" env:"TOKENMON_CAPTURE_TIMEOUT_SECONDS"`
}

// ResetConfig holds reset-time interpretation configuration
type ResetConfig struct {
	// Timezone is the IANA zone used when a phrase names none
	Timezone string `json:"timezone,omitempty" env:"TOKENMON_RESET_TIMEZONE"`

	// CycleSec is the length of one usage window
	CycleSec int `json:"cycle_seconds,omitempty" env:"TOKENMON_RESET_CYCLE_SECONDS"`
}

// RefreshConfig holds monitor scheduling configuration
type RefreshConfig struct {
	// IntervalSec is the period between status fetches
	IntervalSec int `json:"interval_seconds,omitempty" env:"TOKENMON_REFRESH_INTERVAL_SECONDS"`

	// CountdownSec is the period between countdown re-renders
	CountdownSec int `json:"countdown_seconds,omitempty" env:"TOKENMON_REFRESH_COUNTDOWN_SECONDS"`

	// ManualMinIntervalSec throttles manual refresh requests
	ManualMinIntervalSec int `json:"manual_min_interval_seconds,omitempty" env:"TOKENMON_REFRESH_MANUAL_MIN_INTERVAL_SECONDS"`
}

// PrometheusConfig holds Prometheus integration configuration
type PrometheusConfig struct {
	// RemoteWriteURL is the Prometheus Remote Write endpoint URL
	RemoteWriteURL string `json:"remote_write_url" env:"TOKENMON_PROMETHEUS_REMOTE_WRITE_URL"`

	// RemoteWriteUsername is the username for Remote Write authentication
	RemoteWriteUsername string `json:"remote_write_username" env:"TOKENMON_PROMETHEUS_REMOTE_WRITE_USERNAME"`

	// RemoteWritePassword is the password for Remote Write authentication
	RemoteWritePassword string `json:"remote_write_password" env:"TOKENMON_PROMETHEUS_REMOTE_WRITE_PASSWORD"`

	// HostLabel is the host label value for metrics
	HostLabel string `json:"host_label,omitempty" env:"TOKENMON_PROMETHEUS_HOST_LABEL"`

	// TimeoutSec is the timeout in seconds for metric pushes
	TimeoutSec int `json:"timeout_seconds,omitempty" env:"TOKENMON_PROMETHEUS_TIMEOUT_SECONDS"`
}

// PromtailConfig holds Promtail logging configuration
type PromtailConfig struct {
	// URL is the Promtail push endpoint URL
	URL string `json:"url" env:"TOKENMON_LOKI_URL"`

	// Username is the username for basic authentication
	Username string `json:"username" env:"TOKENMON_LOKI_USERNAME"`

	// Password is the password for basic authentication
	Password string `json:"password" env:"TOKENMON_LOKI_PASSWORD"`

	// BatchWaitSeconds is the time to wait before sending a batch
	BatchWaitSeconds int `json:"batch_wait_seconds,omitempty" env:"TOKENMON_LOKI_BATCH_WAIT_SECONDS"`

	// BatchCapacity is the maximum number of log entries in a batch
	BatchCapacity int `json:"batch_capacity,omitempty" env:"TOKENMON_LOKI_BATCH_CAPACITY"`

	// TimeoutSeconds is the timeout for sending logs
	TimeoutSeconds int `json:"timeout_seconds,omitempty" env:"TOKENMON_LOKI_TIMEOUT_SECONDS"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	// Level is the minimum log level (debug, info, warn, error)
	Level string `json:"level,omitempty" env:"TOKENMON_LOG_LEVEL"`

	// Debug enables console logging on stderr
	Debug bool `json:"debug,omitempty" env:"TOKENMON_LOG_DEBUG"`

	// Promtail holds Promtail configuration
	Promtail *PromtailConfig `json:"promtail,omitempty"`
}

// ConfigSource represents the source of a configuration value
type ConfigSource string

const (
	SourceDefault     ConfigSource = "default"
	SourceJSONFile    ConfigSource = "json"
	SourceEnvironment ConfigSource = "env"
)

// ConfigSourceMap tracks the source of each configuration field
type ConfigSourceMap map[string]ConfigSource

// AppConfig holds application configuration
type AppConfig struct {
	// Version is the configuration schema version
	Version int `json:"version,omitempty"`

	// Capture holds status-capture process configuration
	Capture *CaptureConfig `json:"capture,omitempty"`

	// Reset holds reset-time interpretation configuration
	Reset *ResetConfig `json:"reset,omitempty"`

	// Refresh holds monitor scheduling configuration
	Refresh *RefreshConfig `json:"refresh,omitempty"`

	// Prometheus holds Prometheus integration configuration
	Prometheus *PrometheusConfig `json:"prometheus,omitempty"`

	// Logging holds logging configuration
	Logging *LoggingConfig `json:"logging,omitempty"`

	// ConfigSources tracks the source of each configuration field
	ConfigSources ConfigSourceMap `json:"-"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Version: 1,
		Capture: &CaptureConfig{
			Interpreter:   DefaultInterpreter,
			SearchPath:    DefaultSearchPath,
			MaxAttempts:   2,
			RetryDelaySec: 2,
			TimeoutSec:    120,
		},
		Reset: &ResetConfig{
			Timezone: DefaultTimezone,
			CycleSec: 5 * 60 * 60,
		},
		Refresh: &RefreshConfig{
			IntervalSec:          600, // 10 minutes
			CountdownSec:         60,
			ManualMinIntervalSec: 5,
		},
		Prometheus: &PrometheusConfig{
			RemoteWriteURL: "", // Empty by default, must be set via environment variable or config.json
			TimeoutSec:     30,
		},
		Logging: &LoggingConfig{
			Level: "info",
			Debug: false,
			Promtail: &PromtailConfig{
				URL:              "",
				BatchWaitSeconds: 1,
				BatchCapacity:    100,
				TimeoutSeconds:   5,
			},
		},
		ConfigSources: make(ConfigSourceMap),
	}
}

// MinimalDefaultConfig returns the minimal configuration template for initial setup
func MinimalDefaultConfig() *AppConfig {
	return &AppConfig{
		Version: 1,
		Capture: &CaptureConfig{
			ScriptPath:  "",
			Interpreter: DefaultInterpreter,
		},
		Reset: &ResetConfig{
			Timezone: DefaultTimezone,
		},
		Refresh: &RefreshConfig{
			IntervalSec: 600,
		},
		Prometheus: &PrometheusConfig{
			RemoteWriteURL:      "",
			RemoteWriteUsername: "",
			RemoteWritePassword: "",
			HostLabel:           "",
			TimeoutSec:          30,
		},
		Logging: &LoggingConfig{
			Level: "info",
			Promtail: &PromtailConfig{
				URL:      "",
				Username: "",
				Password: "",
			},
		},
		ConfigSources: make(ConfigSourceMap),
	}
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*AppConfig, error) {
	config := DefaultConfig()

	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// envField ties a tracked field name to its variable and a change check
type envField struct {
	key     string
	envVar  string
	changed func() bool
}

// LoadFromEnv loads configuration from environment variables using Netflix/go-env
func (c *AppConfig) LoadFromEnv() error {
	if c.ConfigSources == nil {
		c.ConfigSources = make(ConfigSourceMap)
	}

	if c.Capture != nil {
		original := *c.Capture
		if _, err := env.UnmarshalFromEnviron(c.Capture); err != nil {
			return fmt.Errorf("failed to unmarshal Capture environment variables: %w", err)
		}
		c.trackEnvOverrides([]envField{
			{"Capture.ScriptPath", "TOKENMON_CAPTURE_PATH", func() bool { return c.Capture.ScriptPath != original.ScriptPath }},
			{"Capture.Interpreter", "TOKENMON_CAPTURE_INTERPRETER", func() bool { return c.Capture.Interpreter != original.Interpreter }},
			{"Capture.RawOutputPath", "TOKENMON_CAPTURE_RAW", func() bool { return c.Capture.RawOutputPath != original.RawOutputPath }},
			{"Capture.WorkDir", "TOKENMON_CAPTURE_WORK_DIR", func() bool { return c.Capture.WorkDir != original.WorkDir }},
			{"Capture.ClaudeCWD", "TOKENMON_CAPTURE_CLAUDE_CWD", func() bool { return c.Capture.ClaudeCWD != original.ClaudeCWD }},
			{"Capture.SearchPath", "TOKENMON_CAPTURE_SEARCH_PATH", func() bool { return c.Capture.SearchPath != original.SearchPath }},
			{"Capture.MaxAttempts", "TOKENMON_CAPTURE_MAX_ATTEMPTS", func() bool { return c.Capture.MaxAttempts != original.MaxAttempts }},
			{"Capture.RetryDelaySec", "TOKENMON_CAPTURE_RETRY_DELAY_SECONDS", func() bool { return c.Capture.RetryDelaySec != original.RetryDelaySec }},
			{"Capture.TimeoutSec", "TOKENMON_CAPTURE_TIMEOUT_SECONDS", func() bool { return c.Capture.TimeoutSec != original.TimeoutSec }},
		})
	}

	if c.Reset != nil {
		original := *c.Reset
		if _, err := env.UnmarshalFromEnviron(c.Reset); err != nil {
			return fmt.Errorf("failed to unmarshal Reset environment variables: %w", err)
		}
		c.trackEnvOverrides([]envField{
			{"Reset.Timezone", "TOKENMON_RESET_TIMEZONE", func() bool { return c.Reset.Timezone != original.Timezone }},
			{"Reset.CycleSec", "TOKENMON_RESET_CYCLE_SECONDS", func() bool { return c.Reset.CycleSec != original.CycleSec }},
		})
	}

	if c.Refresh != nil {
		original := *c.Refresh
		if _, err := env.UnmarshalFromEnviron(c.Refresh); err != nil {
			return fmt.Errorf("failed to unmarshal Refresh environment variables: %w", err)
		}
		c.trackEnvOverrides([]envField{
			{"Refresh.IntervalSec", "TOKENMON_REFRESH_INTERVAL_SECONDS", func() bool { return c.Refresh.IntervalSec != original.IntervalSec }},
			{"Refresh.CountdownSec", "TOKENMON_REFRESH_COUNTDOWN_SECONDS", func() bool { return c.Refresh.CountdownSec != original.CountdownSec }},
			{"Refresh.ManualMinIntervalSec", "TOKENMON_REFRESH_MANUAL_MIN_INTERVAL_SECONDS", func() bool {
				return c.Refresh.ManualMinIntervalSec != original.ManualMinIntervalSec
			}},
		})
	}

	if c.Prometheus != nil {
		original := *c.Prometheus
		if _, err := env.UnmarshalFromEnviron(c.Prometheus); err != nil {
			return fmt.Errorf("failed to unmarshal Prometheus environment variables: %w", err)
		}
		c.trackEnvOverrides([]envField{
			{"Prometheus.RemoteWriteURL", "TOKENMON_PROMETHEUS_REMOTE_WRITE_URL", func() bool { return c.Prometheus.RemoteWriteURL != original.RemoteWriteURL }},
			{"Prometheus.RemoteWriteUsername", "TOKENMON_PROMETHEUS_REMOTE_WRITE_USERNAME", func() bool {
				return c.Prometheus.RemoteWriteUsername != original.RemoteWriteUsername
			}},
			{"Prometheus.RemoteWritePassword", "TOKENMON_PROMETHEUS_REMOTE_WRITE_PASSWORD", func() bool {
				return c.Prometheus.RemoteWritePassword != original.RemoteWritePassword
			}},
			{"Prometheus.HostLabel", "TOKENMON_PROMETHEUS_HOST_LABEL", func() bool { return c.Prometheus.HostLabel != original.HostLabel }},
			{"Prometheus.TimeoutSec", "TOKENMON_PROMETHEUS_TIMEOUT_SECONDS", func() bool { return c.Prometheus.TimeoutSec != original.TimeoutSec }},
		})
	}

	if c.Logging != nil {
		original := *c.Logging
		if _, err := env.UnmarshalFromEnviron(c.Logging); err != nil {
			return fmt.Errorf("failed to unmarshal Logging environment variables: %w", err)
		}
		c.trackEnvOverrides([]envField{
			{"Logging.Level", "TOKENMON_LOG_LEVEL", func() bool { return c.Logging.Level != original.Level }},
			{"Logging.Debug", "TOKENMON_LOG_DEBUG", func() bool { return c.Logging.Debug != original.Debug }},
		})

		if c.Logging.Promtail != nil {
			originalPromtail := *c.Logging.Promtail
			if _, err := env.UnmarshalFromEnviron(c.Logging.Promtail); err != nil {
				return fmt.Errorf("failed to unmarshal Promtail environment variables: %w", err)
			}
			p := c.Logging.Promtail
			c.trackEnvOverrides([]envField{
				{"Promtail.URL", "TOKENMON_LOKI_URL", func() bool { return p.URL != originalPromtail.URL }},
				{"Promtail.Username", "TOKENMON_LOKI_USERNAME", func() bool { return p.Username != originalPromtail.Username }},
				{"Promtail.Password", "TOKENMON_LOKI_PASSWORD", func() bool { return p.Password != originalPromtail.Password }},
				{"Promtail.BatchWaitSeconds", "TOKENMON_LOKI_BATCH_WAIT_SECONDS", func() bool { return p.BatchWaitSeconds != originalPromtail.BatchWaitSeconds }},
				{"Promtail.BatchCapacity", "TOKENMON_LOKI_BATCH_CAPACITY", func() bool { return p.BatchCapacity != originalPromtail.BatchCapacity }},
				{"Promtail.TimeoutSeconds", "TOKENMON_LOKI_TIMEOUT_SECONDS", func() bool { return p.TimeoutSeconds != originalPromtail.TimeoutSeconds }},
			})
		}
	}

	return nil
}

// trackEnvOverrides marks fields whose value was changed by a set environment variable
func (c *AppConfig) trackEnvOverrides(fields []envField) {
	for _, f := range fields {
		if os.Getenv(f.envVar) != "" && f.changed() {
			c.ConfigSources[f.key] = SourceEnvironment
		}
	}
}

// Validate validates the configuration
func (c *AppConfig) Validate() error {
	if c.Capture != nil {
		if err := c.validateCapture(); err != nil {
			return err
		}
	}

	if c.Reset != nil {
		if err := c.validateReset(); err != nil {
			return err
		}
	}

	if c.Refresh != nil {
		if err := c.validateRefresh(); err != nil {
			return err
		}
	}

	if c.Prometheus != nil {
		if err := c.validatePrometheus(); err != nil {
			return err
		}
	}

	if c.Logging != nil {
		if err := c.validateLogging(); err != nil {
			return err
		}
	}

	return nil
}

// validateCapture validates Capture configuration
func (c *AppConfig) validateCapture() error {
	if c.Capture.MaxAttempts < 0 {
		return fmt.Errorf("capture max attempts cannot be negative")
	}
	if c.Capture.RetryDelaySec < 0 {
		return fmt.Errorf("capture retry delay cannot be negative")
	}
	if c.Capture.TimeoutSec < 0 {
		return fmt.Errorf("capture timeout cannot be negative")
	}
	return nil
}

// validateReset validates Reset configuration
func (c *AppConfig) validateReset() error {
	if c.Reset.Timezone != "" {
		if _, err := time.LoadLocation(c.Reset.Timezone); err != nil {
			return fmt.Errorf("reset timezone is invalid: %w", err)
		}
	}
	if c.Reset.CycleSec < 0 {
		return fmt.Errorf("reset cycle cannot be negative")
	}
	return nil
}

// validateRefresh validates Refresh configuration
func (c *AppConfig) validateRefresh() error {
	if c.Refresh.IntervalSec != 0 && c.Refresh.IntervalSec < 60 {
		return fmt.Errorf("refresh interval must be at least 60 seconds")
	}
	if c.Refresh.CountdownSec < 0 {
		return fmt.Errorf("countdown interval cannot be negative")
	}
	if c.Refresh.ManualMinIntervalSec < 0 {
		return fmt.Errorf("manual refresh interval cannot be negative")
	}
	return nil
}

// validatePrometheus validates Prometheus configuration
func (c *AppConfig) validatePrometheus() error {
	// Skip validation if RemoteWriteURL is empty (initial configuration)
	if c.Prometheus.RemoteWriteURL == "" {
		return nil
	}

	if !strings.HasPrefix(c.Prometheus.RemoteWriteURL, "http://") && !strings.HasPrefix(c.Prometheus.RemoteWriteURL, "https://") {
		return fmt.Errorf("prometheus remote write url must start with http:// or https://")
	}

	if c.Prometheus.TimeoutSec < 0 {
		return fmt.Errorf("prometheus timeout cannot be negative")
	}

	return nil
}

// validateLogging validates Logging configuration
func (c *AppConfig) validateLogging() error {
	if c.Logging.Level != "" {
		validLevels := map[string]bool{
			"debug": true,
			"info":  true,
			"warn":  true,
			"error": true,
		}
		if !validLevels[c.Logging.Level] {
			return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logging.Level)
		}
	}

	if c.Logging.Promtail != nil {
		// Skip validation if Promtail URL is empty (initial configuration)
		if c.Logging.Promtail.URL == "" {
			return nil
		}

		if c.Logging.Promtail.BatchWaitSeconds < 1 {
			return fmt.Errorf("promtail batch wait must be at least 1 second")
		}

		if c.Logging.Promtail.BatchCapacity < 1 {
			return fmt.Errorf("promtail batch capacity must be at least 1")
		}

		if c.Logging.Promtail.TimeoutSeconds < 1 {
			return fmt.Errorf("promtail timeout must be at least 1 second")
		}
	}

	return nil
}

// trackedFields lists every field recorded in ConfigSources
var trackedFields = []string{
	"Version",
	"Capture.ScriptPath",
	"Capture.Interpreter",
	"Capture.RawOutputPath",
	"Capture.WorkDir",
	"Capture.ClaudeCWD",
	"Capture.SearchPath",
	"Capture.MaxAttempts",
	"Capture.RetryDelaySec",
	"Capture.TimeoutSec",
	"Reset.Timezone",
	"Reset.CycleSec",
	"Refresh.IntervalSec",
	"Refresh.CountdownSec",
	"Refresh.ManualMinIntervalSec",
	"Prometheus.RemoteWriteURL",
	"Prometheus.RemoteWriteUsername",
	"Prometheus.RemoteWritePassword",
	"Prometheus.HostLabel",
	"Prometheus.TimeoutSec",
	"Logging.Level",
	"Logging.Debug",
	"Promtail.URL",
	"Promtail.Username",
	"Promtail.Password",
	"Promtail.BatchWaitSeconds",
	"Promtail.BatchCapacity",
	"Promtail.TimeoutSeconds",
}

// MarkDefaults marks all configuration fields as coming from defaults
func (c *AppConfig) MarkDefaults() {
	if c.ConfigSources == nil {
		c.ConfigSources = make(ConfigSourceMap)
	}
	for _, key := range trackedFields {
		c.ConfigSources[key] = SourceDefault
	}
}

// MergeJSONConfig merges JSON configuration into the current configuration
func (c *AppConfig) MergeJSONConfig(jsonConfig *AppConfig) {
	if c.ConfigSources == nil {
		c.ConfigSources = make(ConfigSourceMap)
	}

	// Always merge version from JSON, even if it's 0 (legacy config)
	c.Version = jsonConfig.Version
	c.ConfigSources["Version"] = SourceJSONFile

	if jsonConfig.Capture != nil {
		if c.Capture == nil {
			c.Capture = &CaptureConfig{}
		}
		c.mergeCaptureConfig(jsonConfig.Capture)
	}

	if jsonConfig.Reset != nil {
		if c.Reset == nil {
			c.Reset = &ResetConfig{}
		}
		c.mergeResetConfig(jsonConfig.Reset)
	}

	if jsonConfig.Refresh != nil {
		if c.Refresh == nil {
			c.Refresh = &RefreshConfig{}
		}
		c.mergeRefreshConfig(jsonConfig.Refresh)
	}

	if jsonConfig.Prometheus != nil {
		if c.Prometheus == nil {
			c.Prometheus = &PrometheusConfig{}
		}
		c.mergePrometheusConfig(jsonConfig.Prometheus)
	}

	if jsonConfig.Logging != nil {
		if c.Logging == nil {
			c.Logging = &LoggingConfig{}
		}
		c.mergeLoggingConfig(jsonConfig.Logging)
	}
}

func (c *AppConfig) mergeString(key string, dst *string, src string) {
	if src != "" {
		*dst = src
		c.ConfigSources[key] = SourceJSONFile
	}
}

func (c *AppConfig) mergeInt(key string, dst *int, src int) {
	if src != 0 {
		*dst = src
		c.ConfigSources[key] = SourceJSONFile
	}
}

// mergeCaptureConfig merges Capture configuration from JSON
func (c *AppConfig) mergeCaptureConfig(jsonConfig *CaptureConfig) {
	c.mergeString("Capture.ScriptPath", &c.Capture.ScriptPath, jsonConfig.ScriptPath)
	c.mergeString("Capture.Interpreter", &c.Capture.Interpreter, jsonConfig.Interpreter)
	c.mergeString("Capture.RawOutputPath", &c.Capture.RawOutputPath, jsonConfig.RawOutputPath)
	c.mergeString("Capture.WorkDir", &c.Capture.WorkDir, jsonConfig.WorkDir)
	c.mergeString("Capture.ClaudeCWD", &c.Capture.ClaudeCWD, jsonConfig.ClaudeCWD)
	c.mergeString("Capture.SearchPath", &c.Capture.SearchPath, jsonConfig.SearchPath)
	c.mergeInt("Capture.MaxAttempts", &c.Capture.MaxAttempts, jsonConfig.MaxAttempts)
	c.mergeInt("Capture.RetryDelaySec", &c.Capture.RetryDelaySec, jsonConfig.RetryDelaySec)
	c.mergeInt("Capture.TimeoutSec", &c.Capture.TimeoutSec, jsonConfig.TimeoutSec)
}

// mergeResetConfig merges Reset configuration from JSON
func (c *AppConfig) mergeResetConfig(jsonConfig *ResetConfig) {
	c.mergeString("Reset.Timezone", &c.Reset.Timezone, jsonConfig.Timezone)
	c.mergeInt("Reset.CycleSec", &c.Reset.CycleSec, jsonConfig.CycleSec)
}

// mergeRefreshConfig merges Refresh configuration from JSON
func (c *AppConfig) mergeRefreshConfig(jsonConfig *RefreshConfig) {
	c.mergeInt("Refresh.IntervalSec", &c.Refresh.IntervalSec, jsonConfig.IntervalSec)
	c.mergeInt("Refresh.CountdownSec", &c.Refresh.CountdownSec, jsonConfig.CountdownSec)
	c.mergeInt("Refresh.ManualMinIntervalSec", &c.Refresh.ManualMinIntervalSec, jsonConfig.ManualMinIntervalSec)
}

// mergePrometheusConfig merges Prometheus configuration from JSON
func (c *AppConfig) mergePrometheusConfig(jsonConfig *PrometheusConfig) {
	c.mergeString("Prometheus.RemoteWriteURL", &c.Prometheus.RemoteWriteURL, jsonConfig.RemoteWriteURL)
	c.mergeString("Prometheus.RemoteWriteUsername", &c.Prometheus.RemoteWriteUsername, jsonConfig.RemoteWriteUsername)
	c.mergeString("Prometheus.RemoteWritePassword", &c.Prometheus.RemoteWritePassword, jsonConfig.RemoteWritePassword)
	c.mergeString("Prometheus.HostLabel", &c.Prometheus.HostLabel, jsonConfig.HostLabel)
	c.mergeInt("Prometheus.TimeoutSec", &c.Prometheus.TimeoutSec, jsonConfig.TimeoutSec)
}

// mergeLoggingConfig merges Logging configuration from JSON
func (c *AppConfig) mergeLoggingConfig(jsonConfig *LoggingConfig) {
	c.mergeString("Logging.Level", &c.Logging.Level, jsonConfig.Level)

	// Note: bool field
	c.Logging.Debug = jsonConfig.Debug
	c.ConfigSources["Logging.Debug"] = SourceJSONFile

	if jsonConfig.Promtail != nil {
		if c.Logging.Promtail == nil {
			c.Logging.Promtail = &PromtailConfig{}
		}
		p := c.Logging.Promtail
		c.mergeString("Promtail.URL", &p.URL, jsonConfig.Promtail.URL)
		c.mergeString("Promtail.Username", &p.Username, jsonConfig.Promtail.Username)
		c.mergeString("Promtail.Password", &p.Password, jsonConfig.Promtail.Password)
		c.mergeInt("Promtail.BatchWaitSeconds", &p.BatchWaitSeconds, jsonConfig.Promtail.BatchWaitSeconds)
		c.mergeInt("Promtail.BatchCapacity", &p.BatchCapacity, jsonConfig.Promtail.BatchCapacity)
		c.mergeInt("Promtail.TimeoutSeconds", &p.TimeoutSeconds, jsonConfig.Promtail.TimeoutSeconds)
	}
}

// RetryDelay returns the wait between capture attempts
func (c *CaptureConfig) RetryDelay() time.Duration {
	return time.Duration(c.RetryDelaySec) * time.Second
}

// Timeout returns the per-process timeout; zero means unbounded
func (c *CaptureConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSec) * time.Second
}

// Cycle returns the usage window length
func (c *ResetConfig) Cycle() time.Duration {
	return time.Duration(c.CycleSec) * time.Second
}

// Interval returns the fetch period
func (c *RefreshConfig) Interval() time.Duration {
	return time.Duration(c.IntervalSec) * time.Second
}
