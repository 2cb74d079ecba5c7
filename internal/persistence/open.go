package persistence

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/ticketdesk/internal/config"
)

// Open builds the Store selected by cfg.Store.Driver, applying the
// configured key prefix.
func Open(ctx context.Context, cfg config.Config, logger *zap.Logger) (Store, error) {
	var (
		store Store
		err   error
	)

	switch cfg.Store.Driver {
	case config.StoreDriverMemory:
		logger.Warn("using in-memory store; state is lost on exit")
		store = NewMemory()
	case config.StoreDriverFile:
		store, err = NewFile(cfg.Store.FilePath, logger)
	case config.StoreDriverSQLite:
		store, err = NewSQLite(cfg.Store.SQLitePath, logger)
	case config.StoreDriverRedis:
		store = NewRedis(cfg.Redis, logger)
	case config.StoreDriverPostgres:
		store, err = openPostgres(ctx, cfg.Postgres, logger)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
	if err != nil {
		return nil, err
	}

	logger.Info("store ready",
		zap.String("driver", cfg.Store.Driver),
		zap.String("prefix", cfg.Store.KeyPrefix))
	return WithPrefix(store, cfg.Store.KeyPrefix), nil
}

func openPostgres(ctx context.Context, cfg config.PostgresConfig, logger *zap.Logger) (*Postgres, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("STORE_DRIVER=postgres requires POSTGRES_DSN")
	}
	pg, err := NewPostgres(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if cfg.RunMigrations {
		if err := RunMigrations(ctx, pg.PoolHandle(), cfg.MigrationsDir, logger); err != nil {
			pg.Close()
			return nil, err
		}
	}
	return pg, nil
}
