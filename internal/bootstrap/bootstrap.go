// Package bootstrap собирает хранилище, синхронизаторы таблиц и журнал из конфигурации.
package bootstrap

import (
	"context"
	"fmt"

	"PartsKeeper/internal/blob"
	"PartsKeeper/internal/blob/github"
	"PartsKeeper/internal/blob/s3"
	"PartsKeeper/internal/codec"
	"PartsKeeper/internal/config"
	"PartsKeeper/internal/model"
	"PartsKeeper/internal/repo"

	"go.uber.org/zap"
)

// OpenStore открывает blob.Store по cfg.StoreDriver.
func OpenStore(ctx context.Context, cfg *config.Config) (blob.Store, error) {
	switch blob.Driver(cfg.StoreDriver) {
	case blob.DriverGitHub:
		return github.New(ctx, github.Config{
			APIURL: cfg.GitHubAPIURL,
			Owner:  cfg.GitHubOwner,
			Repo:   cfg.GitHubRepo,
			Branch: cfg.GitHubBranch,
			Token:  cfg.GitHubToken,
		})
	case blob.DriverS3:
		return s3.New(ctx, s3.Config{
			Region:          cfg.S3Region,
			Bucket:          cfg.S3Bucket,
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
			PathStyle:       cfg.S3PathStyle,
		})
	case blob.DriverFilesystem:
		return blob.NewFilesystem(cfg.FSRoot)
	case blob.DriverMemory:
		return blob.NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}

// Tables — синхронизаторы таблицы запчастей и журнала.
type Tables struct {
	Parts *repo.Synchronizer[model.Part]
	Logs  *repo.Synchronizer[model.AuditEntry]
}

// NewTables создаёт синхронизаторы поверх store. С MASTER_PASSWORD таблица
// хранится зашифрованной, журнал остаётся открытым CSV.
func NewTables(store blob.Store, cfg *config.Config, logger *zap.SugaredLogger) Tables {
	opts := repo.DefaultSyncOptions()
	opts.CacheTTL = cfg.CacheTTL
	if cfg.StoreRetries > 0 {
		opts.MaxRetries = cfg.StoreRetries
	}

	var parts codec.Codec[model.Part] = codec.PartsXLSX{}
	if cfg.MasterPassword != "" {
		parts = codec.Sealed[model.Part]{Inner: parts, Password: cfg.MasterPassword}
	}

	t := Tables{Parts: repo.NewSynchronizer(store, cfg.TablePath, parts, logger, opts)}
	if cfg.LogsPath != "" {
		// журнал не кэшируем: каждая запись читает свежую версию
		logOpts := opts
		logOpts.CacheTTL = 0
		t.Logs = repo.NewSynchronizer[model.AuditEntry](store, cfg.LogsPath, codec.AuditCSV{}, logger, logOpts)
	}
	return t
}
