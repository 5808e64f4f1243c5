package session

import (
	"context"
	"fmt"

	"github.com/noah-isme/attendance-client/pkg/config"
)

// OpenStore builds the Store selected by cfg.Session.Backend. The returned
// close function releases connections and is never nil. The "none" backend
// yields a nil Store, which makes sessions memory-only.
func OpenStore(ctx context.Context, cfg *config.Config) (Store, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Session.Backend {
	case config.SessionBackendNone:
		return nil, noop, nil
	case config.SessionBackendMemory:
		return NewMemoryStore(), noop, nil
	case config.SessionBackendFile, "":
		store, err := NewFileStore(cfg.Session.FilePath, cfg.Session.EncryptionKey)
		if err != nil {
			return nil, noop, err
		}
		return store, noop, nil
	case config.SessionBackendRedis:
		client, err := NewRedisClient(cfg.Redis)
		if err != nil {
			return nil, noop, fmt.Errorf("connect redis: %w", err)
		}
		return NewRedisStore(client, cfg.Session.KeyPrefix), client.Close, nil
	case config.SessionBackendPostgres:
		db, err := NewPostgres(cfg.Database)
		if err != nil {
			return nil, noop, fmt.Errorf("connect postgres: %w", err)
		}
		store := NewSQLStore(db)
		if err := store.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, noop, err
		}
		return store, db.Close, nil
	default:
		return nil, noop, fmt.Errorf("unknown session backend %q", cfg.Session.Backend)
	}
}
