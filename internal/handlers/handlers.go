// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package handlers implements the JSON API.
package handlers

import (
	"context"
	"log/slog"
	"net/http"

	authsvc "codeberg.org/oliverandrich/truefeedback/internal/services/auth"
	"codeberg.org/oliverandrich/truefeedback/internal/services/inbox"
	"codeberg.org/oliverandrich/truefeedback/internal/services/session"
	"codeberg.org/oliverandrich/truefeedback/internal/services/suggest"
	"codeberg.org/oliverandrich/truefeedback/internal/services/token"
	"codeberg.org/oliverandrich/truefeedback/internal/services/verification"
	"github.com/labstack/echo/v4"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Services bundles the collaborators the handlers call into.
type Services struct {
	Store       Pinger
	Auth        *authsvc.Service
	Verifier    *verification.Engine
	Gate        *inbox.Gate
	Mailbox     *inbox.Mailbox
	Preferences *inbox.Preferences
	Sessions    *session.Manager
	Tokens      *token.Service
	Suggest     *suggest.Service
}

// Handlers contains all HTTP handlers.
type Handlers struct {
	store       Pinger
	auth        *authsvc.Service
	verifier    *verification.Engine
	gate        *inbox.Gate
	mailbox     *inbox.Mailbox
	preferences *inbox.Preferences
	sessions    *session.Manager
	tokens      *token.Service
	suggest     *suggest.Service
}

// New creates a new Handlers instance.
func New(s Services) *Handlers {
	return &Handlers{
		store:       s.Store,
		auth:        s.Auth,
		verifier:    s.Verifier,
		gate:        s.Gate,
		mailbox:     s.Mailbox,
		preferences: s.Preferences,
		sessions:    s.Sessions,
		tokens:      s.Tokens,
		suggest:     s.Suggest,
	}
}

// Health returns the health status.
func (h *Handlers) Health(c echo.Context) error {
	if h.store != nil {
		if err := h.store.Ping(c.Request().Context()); err != nil {
			slog.Error("health_check_failed", "error", err)
			return c.JSON(http.StatusServiceUnavailable, map[string]string{
				"status": "unavailable",
			})
		}
	}
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}
