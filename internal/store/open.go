package store

import (
	"context"
	"fmt"

	"github.com/1broseidon/screenwall/internal/config"
)

// Open returns the KV selected by cfg.Backend.
func Open(ctx context.Context, cfg config.Storage) (KV, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return NewMemory(), nil
	case config.BackendFile, "":
		return NewFile(cfg.Path)
	case config.BackendSQLite:
		return OpenSQLite(ctx, cfg.Path)
	case config.BackendRedis:
		kv, err := OpenRedis(ctx, RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   cfg.RedisPrefix,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.RedisAddr, err)
		}
		return kv, nil
	case config.BackendMongo:
		kv, err := OpenMongo(ctx, MongoConfig{
			URI:        cfg.MongoURI,
			Database:   cfg.MongoDatabase,
			Collection: cfg.MongoCollection,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to mongo: %w", err)
		}
		return kv, nil
	default:
		return nil, fmt.Errorf("unsupported storage backend: %q", cfg.Backend)
	}
}
