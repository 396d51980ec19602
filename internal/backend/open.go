// Package backend selects and constructs the configured persistence backend.
package backend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"tasklist/internal/backend/googletasks"
	"tasklist/internal/backend/local"
	"tasklist/internal/backend/remote"
	"tasklist/internal/config"
	"tasklist/internal/kvstore"
	"tasklist/internal/service"
)

var (
	// ErrNoOAuthClient is returned for the google backend when
	// oauth_client.json is missing from the config directory.
	ErrNoOAuthClient = errors.New("oauth_client.json not found")

	// ErrNotLoggedIn is returned for the google backend when no token is stored.
	ErrNotLoggedIn = errors.New("not logged in (run: tasklist login)")
)

// Open returns the backend named by cfg.Backend. Backends holding
// resources implement io.Closer.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (service.Backend, error) {
	switch cfg.Backend {
	case config.BackendLocal:
		store, err := OpenStore(cfg)
		if err != nil {
			return nil, err
		}
		logger.Debug("local backend", "driver", cfg.Local.Driver, "path", cfg.Local.Path, "key", cfg.Local.Key)
		return local.New(store, cfg.Local.Key, local.WithLogger(logger)), nil

	case config.BackendRemote:
		logger.Debug("remote backend", "base_url", cfg.Remote.BaseURL)
		client, err := remote.New(ctx, cfg.Remote.BaseURL, remote.Options{
			Token:   cfg.Remote.Token,
			Timeout: cfg.Remote.Timeout,
			Logger:  logger,
		})
		if err != nil {
			return nil, err
		}
		return client, nil

	case config.BackendGoogle:
		if !cfg.HasOAuthClient() {
			return nil, fmt.Errorf("%w in %s", ErrNoOAuthClient, cfg.Dir)
		}
		if !cfg.HasToken() {
			return nil, ErrNotLoggedIn
		}
		logger.Debug("google backend", "list", cfg.Google.List)
		client, err := googletasks.New(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return client, nil
	}
	return nil, fmt.Errorf("unknown backend: %s", cfg.Backend)
}

// OpenStore opens the key-value store used by the local backend.
func OpenStore(cfg *config.Config) (kvstore.Store, error) {
	var (
		store kvstore.Store
		err   error
	)
	switch cfg.Local.Driver {
	case config.DriverFile:
		store, err = kvstore.NewFileStore(cfg.Local.Path)
	case config.DriverSQLite:
		store, err = kvstore.NewSQLiteStore(cfg.SQLitePath())
	default:
		return nil, fmt.Errorf("unknown local driver: %s", cfg.Local.Driver)
	}
	if err != nil {
		return nil, err
	}
	return store, nil
}
