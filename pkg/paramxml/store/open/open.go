// Package open selects a store backend from configuration.
package open

import (
	"context"
	"fmt"

	"github.com/cognicore/paramxml/pkg/paramxml/config"
	"github.com/cognicore/paramxml/pkg/paramxml/store"
	"github.com/cognicore/paramxml/pkg/paramxml/store/memstore"
	"github.com/cognicore/paramxml/pkg/paramxml/store/postgres"
	"github.com/cognicore/paramxml/pkg/paramxml/store/sqlite"
)

// Open returns the store for cfg.Driver. The caller closes it.
func Open(ctx context.Context, cfg config.Database) (store.Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.Driver {
	case config.DriverSQLite:
		return sqlite.Open(ctx, cfg.Path)
	case config.DriverPostgres:
		return postgres.Open(ctx, cfg.DSN())
	case config.DriverMemory:
		return memstore.New(), nil
	}
	return nil, fmt.Errorf("%w: unknown database driver %q", store.ErrInvalidConfig, cfg.Driver)
}

// Describe names the backend for log output without exposing credentials.
func Describe(cfg config.Database) string {
	switch cfg.Driver {
	case config.DriverSQLite:
		return "sqlite " + cfg.Path
	case config.DriverPostgres:
		return "postgres " + postgres.Redact(cfg.DSN())
	}
	return cfg.Driver
}
