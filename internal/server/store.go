// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package server

import (
	"context"
	"fmt"
	"log/slog"

	"codeberg.org/oliverandrich/truefeedback/internal/config"
	"codeberg.org/oliverandrich/truefeedback/internal/database"
	"codeberg.org/oliverandrich/truefeedback/internal/docstore"
	"codeberg.org/oliverandrich/truefeedback/internal/repository"
	authsvc "codeberg.org/oliverandrich/truefeedback/internal/services/auth"
	"codeberg.org/oliverandrich/truefeedback/internal/services/inbox"
	"codeberg.org/oliverandrich/truefeedback/internal/services/verification"
)

// Store is the full account store contract. Both backends satisfy it.
type Store interface {
	authsvc.Store
	verification.Store
	inbox.IntakeStore
	inbox.MailboxStore
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

var (
	_ Store = (*repository.Repository)(nil)
	_ Store = (*docstore.Store)(nil)
)

// openStore opens the configured backend. The caller owns the returned
// store and must close it.
func openStore(ctx context.Context, cfg *config.DatabaseConfig) (Store, error) {
	switch cfg.Driver {
	case config.DriverMongo:
		store, err := docstore.Open(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, err
		}
		slog.Info("store_opened", "driver", cfg.Driver, "database", cfg.MongoDatabase)
		return store, nil
	case config.DriverSQLite, "":
		db, err := database.Open(cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		slog.Info("store_opened", "driver", config.DriverSQLite, "dsn", cfg.DSN)
		return repository.New(db), nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}
