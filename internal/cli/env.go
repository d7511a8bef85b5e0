// Package cli implements helpdeskctl, the operator command line.
package cli

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/observability"
	"github.com/spec-kit/helpdesk-service/internal/persistence"
	"github.com/spec-kit/helpdesk-service/internal/repository"
)

// env is what every command needs: config, a logger and a Postgres-backed store.
type env struct {
	cfg    *config.Config
	logger *zap.Logger
	pg     *persistence.Postgres
	store  repository.Store
}

func openEnv(ctx context.Context) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if cfg.Store.Driver != config.StoreDriverPostgres {
		return nil, errors.New("helpdeskctl operates on postgres: unset STORE_DRIVER or set it to postgres")
	}
	if cfg.Postgres.DSN == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return &env{
		cfg:    cfg,
		logger: logger,
		pg:     pg,
		store:  repository.NewPostgresStore(pg.PoolHandle()),
	}, nil
}

func (e *env) Close() {
	e.pg.Close()
	_ = e.logger.Sync()
}
