// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"codeberg.org/oliverandrich/truefeedback/internal/config"
	"codeberg.org/oliverandrich/truefeedback/internal/database"
	"github.com/urfave/cli/v3"
)

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Manage SQLite schema migrations",
		Commands: []*cli.Command{
			{
				Name:   "up",
				Usage:  "Apply all pending migrations",
				Action: migrateAction("up", nil),
			},
			{
				Name:   "down",
				Usage:  "Roll back the last migration",
				Action: migrateAction("down", database.MigrateDown),
			},
			{
				Name:   "reset",
				Usage:  "Roll back all migrations",
				Action: migrateAction("reset", database.MigrateReset),
			},
		},
	}
}

// migrateAction opens the SQLite database, which applies pending migrations,
// then runs step. A nil step stops after the implicit upgrade.
func migrateAction(name string, step func(*sql.DB) error) cli.ActionFunc {
	return func(_ context.Context, cmd *cli.Command) error {
		cfg := config.NewFromCLI(cmd)
		if cfg.Database.Driver != config.DriverSQLite {
			return fmt.Errorf("migrations only apply to the %s driver", config.DriverSQLite)
		}

		db, err := database.Open(cfg.Database.DSN)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer func() { _ = db.Close() }()

		if step != nil {
			if err := step(db.DB); err != nil {
				return fmt.Errorf("migrate %s failed: %w", name, err)
			}
		}

		version, err := database.Version(db.DB)
		if err != nil {
			return err
		}
		slog.Info("migrations applied", "command", name, "version", version)
		return nil
	}
}
