package impl

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ca-srg/tokenmon/domain"
	"github.com/ca-srg/tokenmon/infrastructure/config"
	"github.com/ca-srg/tokenmon/infrastructure/repository"
	usecase "github.com/ca-srg/tokenmon/usecase/interface"
)

// MockLogger is a test mock for domain.Logger
type MockLogger struct{}

func (m *MockLogger) Debug(ctx context.Context, msg string, fields ...domain.Field) {}
func (m *MockLogger) Info(ctx context.Context, msg string, fields ...domain.Field)  {}
func (m *MockLogger) Warn(ctx context.Context, msg string, fields ...domain.Field)  {}
func (m *MockLogger) Error(ctx context.Context, msg string, fields ...domain.Field) {}
func (m *MockLogger) WithFields(fields ...domain.Field) domain.Logger {
	return m
}

func newTestConfigService(t *testing.T) (usecase.ConfigService, *repository.JSONConfigRepository) {
	t.Helper()
	// テスト用の一時ディレクトリを使用
	configRepo := repository.NewJSONConfigRepositoryAt(filepath.Join(t.TempDir(), "tokenmon"), &MockLogger{})
	service, err := NewConfigService(configRepo, &MockLogger{})
	require.NoError(t, err)
	return service, configRepo
}

func TestConfigServiceImpl_GetConfig(t *testing.T) {
	service, _ := newTestConfigService(t)

	cfg := service.GetConfig()

	require.NotNil(t, cfg)
	assert.Equal(t, config.DefaultTimezone, cfg.Reset.Timezone)
	assert.Equal(t, 2, cfg.Capture.MaxAttempts)
	assert.Equal(t, config.SourceDefault, cfg.ConfigSources["Reset.Timezone"])
}

func TestConfigServiceImpl_LoadsJSONFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "tokenmon")
	require.NoError(t, os.MkdirAll(dir, 0700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"),
		[]byte(`{"reset": {"timezone": "Europe/Berlin"}, "capture": {"max_attempts": 3}}`), 0600))

	service, err := NewConfigService(repository.NewJSONConfigRepositoryAt(dir, &MockLogger{}), &MockLogger{})
	require.NoError(t, err)

	cfg, sources := service.GetConfigWithSources()
	assert.Equal(t, "Europe/Berlin", cfg.Reset.Timezone)
	assert.Equal(t, 3, cfg.Capture.MaxAttempts)
	assert.Equal(t, config.SourceJSONFile, sources["Reset.Timezone"])
}

func TestConfigServiceImpl_EnvironmentOverridesJSON(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "tokenmon")
	require.NoError(t, os.MkdirAll(dir, 0700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"),
		[]byte(`{"reset": {"timezone": "Europe/Berlin"}}`), 0600))
	t.Setenv("TOKENMON_RESET_TIMEZONE", "America/Chicago")

	service, err := NewConfigService(repository.NewJSONConfigRepositoryAt(dir, &MockLogger{}), &MockLogger{})
	require.NoError(t, err)

	cfg, sources := service.GetConfigWithSources()
	assert.Equal(t, "America/Chicago", cfg.Reset.Timezone)
	assert.Equal(t, config.SourceEnvironment, sources["Reset.Timezone"])
}

func TestConfigServiceImpl_InvalidFileFallsBackToDefaults(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "tokenmon")
	require.NoError(t, os.MkdirAll(dir, 0700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"),
		[]byte(`{"reset": {"timezone": "Nowhere/Special"}}`), 0600))

	service, err := NewConfigService(repository.NewJSONConfigRepositoryAt(dir, &MockLogger{}), &MockLogger{})
	require.NoError(t, err)

	assert.Equal(t, config.DefaultTimezone, service.GetConfig().Reset.Timezone)
}

func TestConfigServiceImpl_UpdateConfig(t *testing.T) {
	service, configRepo := newTestConfigService(t)

	newConfig := config.DefaultConfig()
	newConfig.Capture.ScriptPath = "/new/capture-status.py"
	newConfig.Prometheus.RemoteWriteUsername = "testuser"
	newConfig.Prometheus.RemoteWritePassword = "testpass"

	require.NoError(t, service.UpdateConfig(newConfig))
	assert.Equal(t, "/new/capture-status.py", service.GetConfig().Capture.ScriptPath)

	// ファイルに保存されたことを確認
	saved, err := configRepo.Load()
	require.NoError(t, err)
	assert.Equal(t, "/new/capture-status.py", saved.Capture.ScriptPath)
}

func TestConfigServiceImpl_UpdateConfigRejectsInvalid(t *testing.T) {
	service, configRepo := newTestConfigService(t)

	bad := config.DefaultConfig()
	bad.Refresh.IntervalSec = 5

	assert.Error(t, service.UpdateConfig(bad))
	assert.Error(t, service.UpdateConfig(nil))
	exists, _ := configRepo.Exists()
	assert.False(t, exists)
}

func TestConfigServiceImpl_ReloadConfig(t *testing.T) {
	service, configRepo := newTestConfigService(t)
	require.NoError(t, configRepo.EnsureConfigDir())
	require.NoError(t, os.WriteFile(configRepo.GetConfigPath(), []byte(`{"refresh": {"interval_seconds": 1800}}`), 0600))

	require.NoError(t, service.ReloadConfig())

	assert.Equal(t, 1800, service.GetConfig().Refresh.IntervalSec)
}

func TestConfigServiceImpl_CreateDefaultConfig(t *testing.T) {
	service, configRepo := newTestConfigService(t)

	// 設定ファイルがまだ存在しないので成功するはず
	require.NoError(t, service.CreateDefaultConfig())
	exists, err := configRepo.Exists()
	require.NoError(t, err)
	assert.True(t, exists)

	// 2回目の呼び出しは失敗するはず（既に存在するため）
	err = service.CreateDefaultConfig()
	require.Error(t, err)
	assert.True(t, domain.IsErrorCode(err, domain.ErrCodeConfig))

	// テンプレートにない値はデフォルトのまま
	assert.Equal(t, 2, service.GetConfig().Capture.MaxAttempts)
}

func TestConfigServiceImpl_EnsureConfigExists(t *testing.T) {
	service, configRepo := newTestConfigService(t)

	require.NoError(t, service.EnsureConfigExists())
	require.NoError(t, service.EnsureConfigExists())

	exists, err := configRepo.Exists()
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, configRepo.GetConfigDir(), service.GetConfigDir())
}

func TestConfigServiceImpl_ExportConfig(t *testing.T) {
	service, _ := newTestConfigService(t)

	cfg := config.DefaultConfig()
	cfg.Prometheus.RemoteWriteURL = "https://prom.example.com/api/v1/write"
	cfg.Prometheus.RemoteWriteUsername = "user"
	cfg.Prometheus.RemoteWritePassword = "secret-password"
	cfg.Logging.Promtail.Password = "loki-secret"
	require.NoError(t, service.UpdateConfig(cfg))

	exported := service.ExportConfig()

	prometheus := exported["prometheus"].(map[string]interface{})
	assert.Equal(t, "user", prometheus["remote_write_username"])
	assert.Equal(t, maskedSecret, prometheus["remote_write_password"])

	logging := exported["logging"].(map[string]interface{})
	promtail := logging["promtail"].(map[string]interface{})
	assert.Equal(t, maskedSecret, promtail["password"])

	capture := exported["capture"].(map[string]interface{})
	assert.Equal(t, config.DefaultInterpreter, capture["interpreter"])

	_, ok := exported["_sources"].(map[string]string)
	assert.True(t, ok)
}
