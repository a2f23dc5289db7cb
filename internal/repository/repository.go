// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"codeberg.org/oliverandrich/truefeedback/internal/apperr"
	"github.com/vinovest/sqlx"
)

// ErrNotFound is returned when a record is not found.
var ErrNotFound = apperr.ErrNotFound

// Repository is the SQLite account store.
type Repository struct {
	db *sqlx.DB
}

// New creates a new Repository instance.
func New(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// Ping checks that the database is reachable.
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Close closes the connection pool.
func (r *Repository) Close(_ context.Context) error {
	return r.db.Close()
}

// wrapError converts driver errors to store errors.
func wrapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound.Wrap(err)
	}
	msg := err.Error()
	if strings.Contains(msg, "UNIQUE constraint failed") {
		switch {
		case strings.Contains(msg, "accounts.email"):
			return apperr.ErrDuplicateEmail.Wrap(err)
		case strings.Contains(msg, "accounts.username"):
			return apperr.ErrDuplicateUsername.Wrap(err)
		}
	}
	return err
}

// expectAffected returns ErrNotFound when an update touched no rows.
func expectAffected(res sql.Result, notFound *apperr.Error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}
