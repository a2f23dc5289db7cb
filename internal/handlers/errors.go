// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"log/slog"

	"codeberg.org/oliverandrich/truefeedback/internal/apperr"
	"codeberg.org/oliverandrich/truefeedback/internal/i18n"
	"github.com/labstack/echo/v4"
)

// RespondError writes a failure envelope for err. The status follows the
// error kind. Unclassified and internal errors are logged and reported with
// a generic message.
func RespondError(c echo.Context, err error) error {
	ctx := c.Request().Context()
	kind := apperr.KindOf(err)

	if kind == apperr.KindInternal {
		slog.ErrorContext(ctx, "request_failed",
			"method", c.Request().Method,
			"path", c.Path(),
			"error", err,
		)
	}

	return c.JSON(kind.Status(), echo.Map{
		"success": false,
		"message": i18n.TError(ctx, err),
	})
}

// respondFailure writes a failure envelope with an explicit status and message.
func respondFailure(c echo.Context, status int, messageID string) error {
	return c.JSON(status, echo.Map{
		"success": false,
		"message": i18n.T(c.Request().Context(), messageID),
	})
}

// Unauthorized writes the 401 envelope.
func Unauthorized(c echo.Context) error {
	return RespondError(c, apperr.ErrUnauthenticated)
}
