// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"codeberg.org/oliverandrich/truefeedback/internal/apperr"
	"codeberg.org/oliverandrich/truefeedback/internal/auth"
	"codeberg.org/oliverandrich/truefeedback/internal/config"
	"codeberg.org/oliverandrich/truefeedback/internal/handlers"
	"codeberg.org/oliverandrich/truefeedback/internal/i18n"
	"codeberg.org/oliverandrich/truefeedback/internal/models"
	"codeberg.org/oliverandrich/truefeedback/internal/services/session"
	"codeberg.org/oliverandrich/truefeedback/internal/services/token"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// AccountLoader loads the account behind a presented identity.
type AccountLoader interface {
	GetAccountByID(ctx context.Context, id string) (*models.Account, error)
}

func setupMiddleware(e *echo.Echo, cfg *config.Config) {
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(requestLogger())
	e.Use(middleware.Secure())
	e.Use(middleware.Gzip())
	e.Use(middleware.BodyLimit(fmt.Sprintf("%dM", cfg.Server.MaxBodySize)))
	e.Use(i18nMiddleware())
}

// requestLogger returns middleware that logs requests using slog.
func requestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogError:     true,
		LogRequestID: true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []slog.Attr{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
				slog.String("request_id", v.RequestID),
			}

			if v.Error != nil {
				attrs = append(attrs, slog.String("error", v.Error.Error()))
				slog.LogAttrs(c.Request().Context(), slog.LevelError, "request", attrs...)
			} else {
				slog.LogAttrs(c.Request().Context(), slog.LevelInfo, "request", attrs...)
			}

			return nil
		},
	})
}

// i18nMiddleware sets the locale based on Accept-Language header.
func i18nMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			acceptLang := c.Request().Header.Get("Accept-Language")
			lang := i18n.MatchLanguage(acceptLang)
			ctx := i18n.WithLocale(c.Request().Context(), lang)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

// IdentityMiddleware loads the identity from a bearer token or the session
// cookie. The presented identity only names the account; its fields are
// refreshed from the store so a stale acceptance flag is never trusted.
func IdentityMiddleware(sessions *session.Manager, tokens *token.Service, store AccountLoader) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			presented, source := presentedIdentity(req, sessions, tokens)
			if presented == nil {
				return next(c)
			}

			account, err := store.GetAccountByID(req.Context(), presented.AccountID)
			if err != nil {
				if !errors.Is(err, apperr.ErrNotFound) {
					slog.Error("identity_load_failed", "account_id", presented.AccountID, "error", err)
				}
				return next(c)
			}

			identity := account.Identity()
			ctx := auth.WithIdentity(req.Context(), &identity, source)
			c.SetRequest(req.WithContext(ctx))
			return next(c)
		}
	}
}

// presentedIdentity prefers an Authorization header over the cookie. An
// invalid bearer token does not fall back to the cookie.
func presentedIdentity(r *http.Request, sessions *session.Manager, tokens *token.Service) (*models.Identity, auth.Source) {
	if header := r.Header.Get(echo.HeaderAuthorization); header != "" {
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || tokens == nil {
			return nil, ""
		}
		identity, err := tokens.Parse(strings.TrimSpace(raw))
		if err != nil {
			slog.Debug("bearer_rejected", "error", err)
			return nil, ""
		}
		return identity, auth.SourceBearer
	}

	data, err := sessions.Parse(r)
	if err != nil || data == nil {
		return nil, ""
	}
	return &data.Identity, auth.SourceCookie
}

// RequireAuth rejects requests without an identity with a 401 envelope.
func RequireAuth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !auth.IsAuthenticated(c.Request().Context()) {
				return handlers.Unauthorized(c)
			}
			return next(c)
		}
	}
}
