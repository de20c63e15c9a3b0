package main

import (
	"fmt"
	"path/filepath"

	"github.com/aretw0/surveylogic/internal/config"
	"github.com/aretw0/surveylogic/pkg/adapters/file"
	"github.com/aretw0/surveylogic/pkg/adapters/memory"
	redisstore "github.com/aretw0/surveylogic/pkg/adapters/redis"
	"github.com/aretw0/surveylogic/pkg/adapters/sqlite"
	"github.com/aretw0/surveylogic/pkg/persistence/middleware"
	"github.com/aretw0/surveylogic/pkg/ports"
	"github.com/aretw0/surveylogic/pkg/session"
	backend "github.com/redis/go-redis/v9"
)

// openSessions builds the session manager for the configured store backend.
// The returned close func releases the backend connection.
func openSessions(c config.Config) (*session.Manager, func() error, error) {
	store, locker, closeFn, err := openStore(c)
	if err != nil {
		return nil, nil, err
	}
	mws, err := storeMiddleware(c)
	if err != nil {
		_ = closeFn()
		return nil, nil, err
	}

	opts := []session.Option{session.WithLogger(logger)}
	if locker != nil {
		opts = append(opts, session.WithLocker(locker))
	}
	return session.NewManager(middleware.Chain(store, mws...), opts...), closeFn, nil
}

func openStore(c config.Config) (ports.ProgressStore, ports.DistributedLocker, func() error, error) {
	noop := func() error { return nil }

	switch c.Store {
	case config.StoreMemory:
		return memory.NewStore(memory.WithTTL(c.ProgressTTL)), nil, noop, nil

	case config.StoreFile:
		return file.New(filepath.Join(c.DataDir, "progress"), file.WithTTL(c.ProgressTTL)), nil, noop, nil

	case config.StoreSQLite:
		store, err := sqlite.Open(filepath.Join(c.DataDir, "progress.db"), sqlite.WithTTL(c.ProgressTTL))
		if err != nil {
			return nil, nil, nil, err
		}
		return store, nil, store.Close, nil

	case config.StoreRedis:
		client := backend.NewClient(&backend.Options{
			Addr:     c.RedisAddr,
			Password: c.RedisPassword,
			DB:       c.RedisDB,
		})
		store := redisstore.NewFromClient(client, redisstore.WithTTL(c.ProgressTTL))
		return store, redisstore.NewLocker(client, "surveylogic:"), client.Close, nil
	}
	return nil, nil, nil, fmt.Errorf("unknown store %q", c.Store)
}

// storeMiddleware seals either the whole progress or, when redact-answers is set,
// only the matching answers so the rest of the stored progress stays readable.
func storeMiddleware(c config.Config) ([]middleware.Middleware, error) {
	key, err := c.EncryptionKeyBytes()
	if err != nil {
		return nil, err
	}
	if key == nil {
		if len(c.RedactAnswers) > 0 {
			return nil, fmt.Errorf("redact-answers requires encryption-key")
		}
		return nil, nil
	}
	keys := middleware.EncryptionConfig{ActiveKey: key}
	if len(c.RedactAnswers) == 0 {
		return []middleware.Middleware{middleware.NewEncryptionMiddleware(keys)}, nil
	}
	redact, err := middleware.NewPIIMiddleware(c.RedactAnswers, keys)
	if err != nil {
		return nil, fmt.Errorf("invalid redact-answers pattern: %w", err)
	}
	return []middleware.Middleware{redact}, nil
}
