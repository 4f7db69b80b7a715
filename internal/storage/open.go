package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/terra-clan/explorers-hub/internal/config"
)

// Open creates the Store selected by cfg.Storage.Backend
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.Storage.Backend {
	case config.BackendMemory:
		slog.Warn("using in-memory storage, completion state will not survive restarts")
		return NewMemoryStore(), nil

	case config.BackendBolt:
		slog.Info("opening bolt storage", "path", cfg.Storage.BoltPath)
		store, err := OpenBolt(cfg.Storage.BoltPath)
		if err != nil {
			return nil, err
		}
		return store, nil

	case config.BackendSQLite:
		slog.Info("opening sqlite storage", "path", cfg.Storage.SQLitePath)
		store, err := OpenSQLite(cfg.Storage.SQLitePath)
		if err != nil {
			return nil, err
		}
		return store, nil

	case config.BackendRedis:
		slog.Info("connecting to redis storage", "address", cfg.Redis.Address, "db", cfg.Redis.DB)
		store, err := NewRedisStore(ctx, RedisConfig{
			Address:  cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, err
		}
		return store, nil

	case config.BackendPostgres:
		slog.Info("connecting to postgres storage")
		store, err := NewPostgresStore(ctx, PostgresConfig{
			DSN:          cfg.Database.DSN,
			MaxOpenConns: int32(cfg.Database.MaxOpenConns),
			MaxIdleConns: int32(cfg.Database.MaxIdleConns),
		})
		if err != nil {
			return nil, err
		}
		return store, nil
	}

	return nil, fmt.Errorf("unknown storage backend: %q", cfg.Storage.Backend)
}
