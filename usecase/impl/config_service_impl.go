package impl

import (
	"context"
	"fmt"
	"sync"

	"github.com/ca-srg/tokenmon/domain"
	"github.com/ca-srg/tokenmon/domain/repository"
	"github.com/ca-srg/tokenmon/infrastructure/config"
	usecase "github.com/ca-srg/tokenmon/usecase/interface"
)

const maskedSecret = "****"

// ConfigServiceImpl は ConfigService の実装
type ConfigServiceImpl struct {
	configRepo repository.ConfigRepository
	config     *config.AppConfig
	logger     domain.Logger
	mu         sync.RWMutex
}

// NewConfigService は新しい ConfigService を作成する
func NewConfigService(configRepo repository.ConfigRepository, logger domain.Logger) (usecase.ConfigService, error) {
	cfg, err := loadConfigWithFallback(configRepo, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return &ConfigServiceImpl{
		configRepo: configRepo,
		config:     cfg,
		logger:     logger,
	}, nil
}

// loadConfigWithFallback はデフォルト → JSON → 環境変数の順に重ね、検証に失敗した場合はデフォルトに戻す
func loadConfigWithFallback(configRepo repository.ConfigRepository, logger domain.Logger) (*config.AppConfig, error) {
	ctx := context.Background()

	cfg := config.DefaultConfig()
	cfg.MarkDefaults()
	logger.Debug(ctx, "Loading configuration", domain.NewField("config_path", configRepo.GetConfigPath()))

	jsonConfig, err := configRepo.Load()
	if err != nil {
		// JSON読み込みエラーは無視してデフォルト設定で継続
		logger.Warn(ctx, "Failed to load JSON configuration, using defaults",
			domain.ErrorField(err),
			domain.NewField("config_path", configRepo.GetConfigPath()))
	} else if jsonConfig != nil {
		cfg.MergeJSONConfig(jsonConfig)
		logger.Debug(ctx, "Loaded JSON configuration",
			domain.NewField("config_path", configRepo.GetConfigPath()))
	}

	// 環境変数は JSON の値を上書きする
	if err := cfg.LoadFromEnv(); err != nil {
		logger.Warn(ctx, "Failed to load environment variables, using fallback values",
			domain.ErrorField(err))
	}

	if err := cfg.Validate(); err != nil {
		// 検証エラー時は環境変数のみを適用したデフォルト設定に戻す
		logger.Warn(ctx, "Configuration validation failed, using default values",
			domain.ErrorField(err))

		fallback := config.DefaultConfig()
		fallback.MarkDefaults()
		if envErr := fallback.LoadFromEnv(); envErr != nil || fallback.Validate() != nil {
			fallback = config.DefaultConfig()
			fallback.MarkDefaults()
		}
		return fallback, nil
	}

	return cfg, nil
}

// GetConfig は現在の設定を取得する
func (s *ConfigServiceImpl) GetConfig() *config.AppConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.config
}

// UpdateConfig は設定を更新する
func (s *ConfigServiceImpl) UpdateConfig(newConfig *config.AppConfig) error {
	if newConfig == nil {
		return domain.ErrConfig("config", "config is nil")
	}
	if err := newConfig.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.configRepo.Save(newConfig); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	s.config = newConfig
	return nil
}

// GetConfigWithSources は設定とそのソース情報を取得する
func (s *ConfigServiceImpl) GetConfigWithSources() (*config.AppConfig, config.ConfigSourceMap) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.config, s.config.ConfigSources
}

// SaveConfig は現在の設定をファイルに保存する
func (s *ConfigServiceImpl) SaveConfig() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.configRepo.Save(s.config)
}

// ReloadConfig は設定を再読み込みする
func (s *ConfigServiceImpl) ReloadConfig() error {
	newConfig, err := loadConfigWithFallback(s.configRepo, s.logger)
	if err != nil {
		return fmt.Errorf("failed to reload config: %w", err)
	}

	s.mu.Lock()
	s.config = newConfig
	s.mu.Unlock()

	s.logger.Info(context.Background(), "Configuration reloaded",
		domain.NewField("config_path", s.configRepo.GetConfigPath()))
	return nil
}

// GetConfigPath は設定ファイルのパスを返す
func (s *ConfigServiceImpl) GetConfigPath() string {
	return s.configRepo.GetConfigPath()
}

// GetConfigDir は設定ディレクトリのパスを返す
func (s *ConfigServiceImpl) GetConfigDir() string {
	return s.configRepo.GetConfigDir()
}

// CreateDefaultConfig はデフォルト設定ファイルを作成する
func (s *ConfigServiceImpl) CreateDefaultConfig() error {
	exists, err := s.configRepo.Exists()
	if err != nil {
		return fmt.Errorf("failed to check config existence: %w", err)
	}
	if exists {
		return domain.ErrConfig("file", fmt.Sprintf("config file already exists at %s", s.configRepo.GetConfigPath()))
	}

	return s.writeTemplate()
}

// RestoreDefaultConfig は既存の設定をバックアップしてテンプレートで置き換える
func (s *ConfigServiceImpl) RestoreDefaultConfig() error {
	return s.writeTemplate()
}

// EnsureConfigExists は設定ファイルが存在することを確認し、存在しない場合はテンプレートを作成する
func (s *ConfigServiceImpl) EnsureConfigExists() error {
	exists, err := s.configRepo.Exists()
	if err != nil {
		return fmt.Errorf("failed to check config existence: %w", err)
	}
	if exists {
		return nil
	}

	s.logger.Info(context.Background(), "Configuration file not found, creating template",
		domain.NewField("config_path", s.configRepo.GetConfigPath()))
	return s.writeTemplate()
}

// writeTemplate はテンプレートを保存し、メモリ内の設定を読み直す
func (s *ConfigServiceImpl) writeTemplate() error {
	if err := s.configRepo.Save(config.MinimalDefaultConfig()); err != nil {
		return fmt.Errorf("failed to save default config: %w", err)
	}
	return s.ReloadConfig()
}

// ExportConfig は現在の設定をエクスポート用に整形する（パスワードなどをマスク）
func (s *ConfigServiceImpl) ExportConfig() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	exportMap := map[string]interface{}{
		"version": s.config.Version,
	}

	if c := s.config.Capture; c != nil {
		exportMap["capture"] = map[string]interface{}{
			"script_path":         c.ScriptPath,
			"interpreter":         c.Interpreter,
			"raw_output_path":     c.RawOutputPath,
			"work_dir":            c.WorkDir,
			"claude_cwd":          c.ClaudeCWD,
			"search_path":         c.SearchPath,
			"max_attempts":        c.MaxAttempts,
			"retry_delay_seconds": c.RetryDelaySec,
			"timeout_seconds":     c.TimeoutSec,
		}
	}

	if r := s.config.Reset; r != nil {
		exportMap["reset"] = map[string]interface{}{
			"timezone":      r.Timezone,
			"cycle_seconds": r.CycleSec,
		}
	}

	if r := s.config.Refresh; r != nil {
		exportMap["refresh"] = map[string]interface{}{
			"interval_seconds":            r.IntervalSec,
			"countdown_seconds":           r.CountdownSec,
			"manual_min_interval_seconds": r.ManualMinIntervalSec,
		}
	}

	if p := s.config.Prometheus; p != nil {
		prometheusMap := map[string]interface{}{
			"remote_write_url":      p.RemoteWriteURL,
			"remote_write_username": p.RemoteWriteUsername,
			"host_label":            p.HostLabel,
			"timeout_seconds":       p.TimeoutSec,
		}
		// パスワードはマスク
		if p.RemoteWritePassword != "" {
			prometheusMap["remote_write_password"] = maskedSecret
		}
		exportMap["prometheus"] = prometheusMap
	}

	if l := s.config.Logging; l != nil {
		loggingMap := map[string]interface{}{
			"level": l.Level,
			"debug": l.Debug,
		}
		if pt := l.Promtail; pt != nil {
			promtailMap := map[string]interface{}{
				"url":                pt.URL,
				"username":           pt.Username,
				"batch_wait_seconds": pt.BatchWaitSeconds,
				"batch_capacity":     pt.BatchCapacity,
				"timeout_seconds":    pt.TimeoutSeconds,
			}
			if pt.Password != "" {
				promtailMap["password"] = maskedSecret
			}
			loggingMap["promtail"] = promtailMap
		}
		exportMap["logging"] = loggingMap
	}

	// ソース情報を追加
	sourcesMap := make(map[string]string, len(s.config.ConfigSources))
	for key, source := range s.config.ConfigSources {
		sourcesMap[key] = string(source)
	}
	exportMap["_sources"] = sourcesMap

	return exportMap
}
