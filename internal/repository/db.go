package repository

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/joseph-ayodele/contract-extractor/internal/common"
)

// Open connects to the configured database and creates the schema if needed. It returns a
// nil Store when no driver is configured.
func Open(ctx context.Context, cfg common.DatabaseConfig, logger *slog.Logger) (Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	switch cfg.Driver {
	case "":
		logger.Info("run store disabled")
		return nil, nil
	case "postgres":
		s, err := OpenPostgres(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "sqlite":
		s, err := OpenSQLite(ctx, cfg.DSN, logger)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}

// Close closes store if it is non-nil.
func Close(store Store, logger *slog.Logger) {
	if store == nil {
		return
	}
	logger.Info("closing database connections")
	store.Close()
	logger.Info("database connections closed")
}
