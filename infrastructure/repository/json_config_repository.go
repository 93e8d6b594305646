package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"syscall"
	"time"

	"github.com/ca-srg/tokenmon/domain"
	"github.com/ca-srg/tokenmon/domain/repository"
	"github.com/ca-srg/tokenmon/infrastructure/config"
)

// 保持するバックアップの数
const maxConfigBackups = 5

// JSONConfigRepository は JSON形式で設定を管理するリポジトリ実装
type JSONConfigRepository struct {
	configDir  string
	configFile string
	logger     domain.Logger
}

// NewJSONConfigRepository は ~/.config/tokenmon/config.json を扱うリポジトリを作成する
func NewJSONConfigRepository(logger domain.Logger) repository.ConfigRepository {
	homeDir, _ := os.UserHomeDir()
	return NewJSONConfigRepositoryAt(filepath.Join(homeDir, ".config", "tokenmon"), logger)
}

// NewJSONConfigRepositoryAt は指定ディレクトリの config.json を扱うリポジトリを作成する
func NewJSONConfigRepositoryAt(configDir string, logger domain.Logger) *JSONConfigRepository {
	return &JSONConfigRepository{
		configDir:  configDir,
		configFile: filepath.Join(configDir, "config.json"),
		logger:     logger,
	}
}

// Exists は設定ファイルが存在するかどうかを確認する
func (r *JSONConfigRepository) Exists() (bool, error) {
	_, err := os.Stat(r.configFile)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, domain.ErrFileOperationWithCause("stat", r.configFile, err)
}

// Load は設定ファイルから設定を読み込む
func (r *JSONConfigRepository) Load() (*config.AppConfig, error) {
	exists, err := r.Exists()
	if err != nil {
		return nil, err
	}
	if !exists {
		// ファイルが存在しない場合はnilを返す（エラーではない）
		return nil, nil
	}

	// ファイルのセキュリティチェック
	if err := r.ensureSecurePermissions(r.configFile, false); err != nil {
		return nil, fmt.Errorf("config file security check failed: %w", err)
	}

	data, err := os.ReadFile(r.configFile)
	if err != nil {
		return nil, domain.ErrFileOperationWithCause("read", r.configFile, err)
	}

	var cfg config.AppConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, domain.ErrConfig("file", fmt.Sprintf("%s is not valid JSON: %v", r.configFile, err))
	}

	return &cfg, nil
}

// Save は設定をファイルに保存する
func (r *JSONConfigRepository) Save(cfg *config.AppConfig) error {
	if cfg == nil {
		return domain.ErrConfig("file", "config is nil")
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	if err := r.EnsureConfigDir(); err != nil {
		return err
	}

	// 既存ファイルがある場合はバックアップを作成
	exists, err := r.Exists()
	if err != nil {
		return err
	}
	if exists {
		if err := r.Backup(); err != nil {
			// バックアップ失敗は警告のみ、保存は続行
			r.logger.Warn(context.Background(), "Failed to create config backup", domain.ErrorField(err))
		}
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// 一時ファイルに書き込んでからアトミックに置き換え
	tmpFile := r.configFile + ".tmp"
	if err := os.WriteFile(tmpFile, data, 0600); err != nil {
		return domain.ErrFileOperationWithCause("write", tmpFile, err)
	}
	if err := os.Rename(tmpFile, r.configFile); err != nil {
		_ = os.Remove(tmpFile)
		return domain.ErrFileOperationWithCause("rename", r.configFile, err)
	}

	return r.ensureSecurePermissions(r.configFile, false)
}

// GetConfigPath は設定ファイルのパスを返す
func (r *JSONConfigRepository) GetConfigPath() string {
	return r.configFile
}

// GetConfigDir は設定ディレクトリのパスを返す
func (r *JSONConfigRepository) GetConfigDir() string {
	return r.configDir
}

// EnsureConfigDir は設定ディレクトリが存在することを保証する
func (r *JSONConfigRepository) EnsureConfigDir() error {
	if err := os.MkdirAll(r.configDir, 0700); err != nil {
		return domain.ErrFileOperationWithCause("mkdir", r.configDir, err)
	}
	return r.ensureSecurePermissions(r.configDir, true)
}

// Backup は現在の設定ファイルのバックアップを作成する
func (r *JSONConfigRepository) Backup() error {
	data, err := os.ReadFile(r.configFile)
	if os.IsNotExist(err) {
		return nil // バックアップするものがない
	}
	if err != nil {
		return domain.ErrFileOperationWithCause("read", r.configFile, err)
	}

	backupFile := fmt.Sprintf("%s.backup.%s", r.configFile, time.Now().Format("20060102-150405.000"))
	if err := os.WriteFile(backupFile, data, 0600); err != nil {
		return domain.ErrFileOperationWithCause("backup", backupFile, err)
	}

	r.cleanupOldBackups()
	return nil
}

// cleanupOldBackups は最新 maxConfigBackups 個を残して古いバックアップを削除する
func (r *JSONConfigRepository) cleanupOldBackups() {
	matches, err := filepath.Glob(r.configFile + ".backup.*")
	if err != nil || len(matches) <= maxConfigBackups {
		return
	}

	// タイムスタンプ形式なので名前順 = 古い順
	sort.Strings(matches)
	for _, old := range matches[:len(matches)-maxConfigBackups] {
		if err := os.Remove(old); err != nil {
			r.logger.Warn(context.Background(), "Failed to remove old config backup",
				domain.NewField("path", old), domain.ErrorField(err))
		}
	}
}

// ensureSecurePermissions はファイルまたはディレクトリの権限を確保する
func (r *JSONConfigRepository) ensureSecurePermissions(path string, isDir bool) error {
	info, err := os.Stat(path)
	if err != nil {
		return domain.ErrFileOperationWithCause("stat", path, err)
	}

	expectedMode := os.FileMode(0600) // rw-------
	if isDir {
		expectedMode = 0700 // rwx------
	}

	if info.Mode().Perm() != expectedMode {
		if err := os.Chmod(path, expectedMode); err != nil {
			return domain.ErrFileOperationWithCause("chmod", path, err)
		}
	}

	// 所有者の確認（Unix系OSのみ）
	if stat, ok := info.Sys().(*syscall.Stat_t); ok {
		if currentUID := uint32(os.Getuid()); stat.Uid != currentUID {
			return domain.ErrFileOperation("ownership", path,
				fmt.Sprintf("file is not owned by current user (uid: %d, expected: %d)", stat.Uid, currentUID))
		}
	}

	return nil
}
