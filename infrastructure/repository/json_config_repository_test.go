package repository

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ca-srg/tokenmon/infrastructure/config"
	"github.com/ca-srg/tokenmon/infrastructure/logging"
)

func newTestConfigRepository(t *testing.T) *JSONConfigRepository {
	t.Helper()
	return NewJSONConfigRepositoryAt(filepath.Join(t.TempDir(), "tokenmon"), &logging.NoOpLogger{})
}

func TestJSONConfigRepository_SaveAndLoad(t *testing.T) {
	repo := newTestConfigRepository(t)

	// テスト用の設定
	testConfig := &config.AppConfig{
		Version: 1,
		Capture: &config.CaptureConfig{ScriptPath: "/test/capture-status.py", MaxAttempts: 2},
		Reset:   &config.ResetConfig{Timezone: "Asia/Tokyo"},
		Prometheus: &config.PrometheusConfig{
			RemoteWriteURL:      "http://test-prometheus:9090/api/v1/write",
			TimeoutSec:          10,
			RemoteWriteUsername: "testuser",
			RemoteWritePassword: "testpass",
		},
		Logging: &config.LoggingConfig{Level: "info"},
	}

	exists, err := repo.Exists()
	require.NoError(t, err)
	assert.False(t, exists, "config file should not exist initially")

	require.NoError(t, repo.Save(testConfig))

	exists, err = repo.Exists()
	require.NoError(t, err)
	assert.True(t, exists)

	loaded, err := repo.Load()
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "/test/capture-status.py", loaded.Capture.ScriptPath)
	assert.Equal(t, "Asia/Tokyo", loaded.Reset.Timezone)
	assert.Equal(t, testConfig.Prometheus.RemoteWriteURL, loaded.Prometheus.RemoteWriteURL)
	assert.Empty(t, loaded.ConfigSources)
}

func TestJSONConfigRepository_LoadMissingFile(t *testing.T) {
	repo := newTestConfigRepository(t)

	loaded, err := repo.Load()

	assert.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestJSONConfigRepository_LoadInvalidJSON(t *testing.T) {
	repo := newTestConfigRepository(t)
	require.NoError(t, repo.EnsureConfigDir())
	require.NoError(t, os.WriteFile(repo.GetConfigPath(), []byte("{not json"), 0600))

	_, err := repo.Load()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not valid JSON")
}

func TestJSONConfigRepository_SaveRejectsInvalidConfig(t *testing.T) {
	repo := newTestConfigRepository(t)

	err := repo.Save(&config.AppConfig{Reset: &config.ResetConfig{Timezone: "Not/AZone"}})

	require.Error(t, err)
	exists, _ := repo.Exists()
	assert.False(t, exists)
}

func TestJSONConfigRepository_Permissions(t *testing.T) {
	repo := newTestConfigRepository(t)
	require.NoError(t, repo.Save(config.MinimalDefaultConfig()))

	dirInfo, err := os.Stat(repo.GetConfigDir())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0700), dirInfo.Mode().Perm())

	fileInfo, err := os.Stat(repo.GetConfigPath())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), fileInfo.Mode().Perm())

	// 緩いパーミッションは読み込み時に修正される
	require.NoError(t, os.Chmod(repo.GetConfigPath(), 0644))
	_, err = repo.Load()
	require.NoError(t, err)
	fileInfo, err = os.Stat(repo.GetConfigPath())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), fileInfo.Mode().Perm())
}

func TestJSONConfigRepository_BackupRotation(t *testing.T) {
	repo := newTestConfigRepository(t)
	cfg := config.MinimalDefaultConfig()

	for i := 0; i < maxConfigBackups+3; i++ {
		require.NoError(t, repo.Save(cfg))
		time.Sleep(2 * time.Millisecond)
	}

	backups, err := filepath.Glob(repo.GetConfigPath() + ".backup.*")
	require.NoError(t, err)
	assert.Len(t, backups, maxConfigBackups)

	_, err = os.Stat(repo.GetConfigPath() + ".tmp")
	assert.True(t, os.IsNotExist(err), "temporary file must not remain")
}
