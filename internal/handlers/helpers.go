// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"encoding/json"
	"errors"
	"io"

	"codeberg.org/oliverandrich/truefeedback/internal/apperr"
	"codeberg.org/oliverandrich/truefeedback/internal/auth"
	"codeberg.org/oliverandrich/truefeedback/internal/i18n"
	"codeberg.org/oliverandrich/truefeedback/internal/models"
	"github.com/labstack/echo/v4"
)

// Respond writes a success envelope with the translated message and payload
// merged in at the top level.
func Respond(c echo.Context, status int, messageID string, payload echo.Map) error {
	body := echo.Map{
		"success": true,
		"message": i18n.T(c.Request().Context(), messageID),
	}
	for k, v := range payload {
		body[k] = v
	}
	return c.JSON(status, body)
}

// bind decodes the JSON request body into dst, rejecting unknown fields,
// trailing data and empty bodies.
func bind(c echo.Context, dst any) error {
	dec := json.NewDecoder(c.Request().Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return apperr.ErrInvalidInput.Wrap(err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return apperr.ErrInvalidInput
	}
	return nil
}

// identity returns the request identity or ErrUnauthenticated.
func identity(c echo.Context) (models.Identity, error) {
	id := auth.GetIdentity(c.Request().Context())
	if id == nil {
		return models.Identity{}, apperr.ErrUnauthenticated
	}
	return *id, nil
}
