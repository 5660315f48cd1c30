package cmd

import (
	"context"
	"fmt"

	"github.com/FranksOps/serpkeep/internal/config"
	"github.com/FranksOps/serpkeep/internal/storage"
	"github.com/FranksOps/serpkeep/internal/storage/csvbackend"
	"github.com/FranksOps/serpkeep/internal/storage/jsonbackend"
	"github.com/FranksOps/serpkeep/internal/storage/postgres"
	"github.com/FranksOps/serpkeep/internal/storage/sqlite"
)

func openBackend(ctx context.Context, cfg config.StorageConfig) (storage.Backend, error) {
	var (
		backend storage.Backend
		err     error
	)
	switch cfg.Backend {
	case "sqlite":
		backend, err = sqlite.New(cfg.DSN)
	case "postgres":
		backend, err = postgres.New(ctx, cfg.DSN)
	case "json":
		backend, err = jsonbackend.New(cfg.DSN)
	case "csv":
		backend, err = csvbackend.New(cfg.DSN)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s backend: %w", cfg.Backend, err)
	}
	return backend, nil
}
