// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"log/slog"
	"net/http"

	"codeberg.org/oliverandrich/truefeedback/internal/auth"
	"codeberg.org/oliverandrich/truefeedback/internal/models"
	authsvc "codeberg.org/oliverandrich/truefeedback/internal/services/auth"
	"github.com/labstack/echo/v4"
)

type credentialsRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

func (h *Handlers) authorize(c echo.Context) (*models.Identity, error) {
	var req credentialsRequest
	if err := bind(c, &req); err != nil {
		return nil, err
	}
	return h.auth.Authorize(c.Request().Context(), authsvc.Credentials{
		Identifier: req.Identifier,
		Password:   req.Password,
	})
}

// SignIn checks credentials and starts a cookie session.
func (h *Handlers) SignIn(c echo.Context) error {
	identity, err := h.authorize(c)
	if err != nil {
		return RespondError(c, err)
	}

	cookie, err := h.sessions.Create(*identity)
	if err != nil {
		return RespondError(c, err)
	}
	c.SetCookie(cookie)

	slog.Info("session_created", "account_id", identity.AccountID)
	return Respond(c, http.StatusOK, "signin_success", echo.Map{
		"user": identity,
	})
}

// SignOut clears the session cookie.
func (h *Handlers) SignOut(c echo.Context) error {
	c.SetCookie(h.sessions.Clear())
	return Respond(c, http.StatusOK, "signout_success", nil)
}

// Token checks credentials and issues a bearer token.
func (h *Handlers) Token(c echo.Context) error {
	if !h.tokens.Enabled() {
		return respondFailure(c, http.StatusNotFound, "tokens_disabled")
	}

	identity, err := h.authorize(c)
	if err != nil {
		return RespondError(c, err)
	}

	signed, expiresAt, err := h.tokens.Issue(*identity)
	if err != nil {
		return RespondError(c, err)
	}

	return Respond(c, http.StatusOK, "token_issued", echo.Map{
		"token":     signed,
		"expiresAt": expiresAt,
	})
}

// Session returns the identity of the current session.
func (h *Handlers) Session(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return RespondError(c, err)
	}
	return Respond(c, http.StatusOK, "session_active", echo.Map{
		"user":   id,
		"source": auth.GetSource(c.Request().Context()),
	})
}
