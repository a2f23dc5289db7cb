// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"codeberg.org/oliverandrich/truefeedback/internal/config"
	"codeberg.org/oliverandrich/truefeedback/internal/handlers"
	"codeberg.org/oliverandrich/truefeedback/internal/i18n"
	authsvc "codeberg.org/oliverandrich/truefeedback/internal/services/auth"
	"codeberg.org/oliverandrich/truefeedback/internal/services/email"
	"codeberg.org/oliverandrich/truefeedback/internal/services/inbox"
	"codeberg.org/oliverandrich/truefeedback/internal/services/session"
	"codeberg.org/oliverandrich/truefeedback/internal/services/suggest"
	"codeberg.org/oliverandrich/truefeedback/internal/services/token"
	"codeberg.org/oliverandrich/truefeedback/internal/services/verification"
	"github.com/labstack/echo/v4"
	"github.com/urfave/cli/v3"
)

const shutdownTimeout = 10 * time.Second

// Run starts the server with the given CLI command.
func Run(ctx context.Context, cmd *cli.Command) error {
	cfg := config.NewFromCLI(cmd)
	setupLogger(cfg.Log.Level, cfg.Log.Format)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	slog.Info("starting server",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"base_url", cfg.Server.BaseURL,
		"driver", cfg.Database.Driver,
	)

	// i18n
	if initErr := i18n.Init(); initErr != nil {
		return fmt.Errorf("failed to init i18n: %w", initErr)
	}

	// Store
	store, err := openStore(ctx, &cfg.Database)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if closeErr := store.Close(closeCtx); closeErr != nil {
			slog.Error("failed to close store", "error", closeErr)
		}
	}()

	services, err := buildServices(ctx, cfg, store)
	if err != nil {
		return err
	}

	// Echo
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Middleware
	setupMiddleware(e, cfg)

	// Routes
	setupRoutes(e, services, store)

	// Start server
	return startWithGracefulShutdown(e, cfg)
}

// buildServices wires the service graph on top of store.
func buildServices(ctx context.Context, cfg *config.Config, store Store) (handlers.Services, error) {
	var mailer authsvc.Mailer = email.LogSender{}
	if cfg.SMTP.Enabled() {
		smtp, err := email.NewService(&cfg.SMTP)
		if err != nil {
			return handlers.Services{}, fmt.Errorf("failed to create email service: %w", err)
		}
		mailer = smtp
	} else {
		slog.Warn("smtp not configured, verification codes are only logged")
	}

	sessions, err := session.NewManager(&cfg.Session, cfg.Session.Secure)
	if err != nil {
		return handlers.Services{}, fmt.Errorf("failed to create session manager: %w", err)
	}

	tokens := token.NewService(&cfg.Token)
	if !tokens.Enabled() {
		slog.Info("bearer tokens disabled, no token secret configured")
	}

	var generator suggest.Generator
	if cfg.GenAI.APIKey != "" {
		gemini, err := suggest.NewGeminiGenerator(ctx, &cfg.GenAI)
		if err != nil {
			return handlers.Services{}, err
		}
		generator = gemini
	} else {
		slog.Info("genai not configured, serving default suggestions")
	}

	engine := verification.NewEngine(store)

	return handlers.Services{
		Store:       store,
		Auth:        authsvc.NewService(store, engine, mailer),
		Verifier:    engine,
		Gate:        inbox.NewGate(store),
		Mailbox:     inbox.NewMailbox(store),
		Preferences: inbox.NewPreferences(store),
		Sessions:    sessions,
		Tokens:      tokens,
		Suggest:     suggest.NewService(generator),
	}, nil
}

func setupRoutes(e *echo.Echo, services handlers.Services, store AccountLoader) {
	h := handlers.New(services)

	e.GET("/health", h.Health)

	api := e.Group("/api", IdentityMiddleware(services.Sessions, services.Tokens, store))

	// Public
	api.GET("/check-username-unique", h.CheckUsernameUnique)
	api.POST("/sign-up", h.SignUp)
	api.POST("/verify-code", h.VerifyCode)
	api.POST("/resend-code", h.ResendCode)
	api.POST("/sign-in", h.SignIn)
	api.POST("/sign-out", h.SignOut)
	api.POST("/token", h.Token)
	api.POST("/send-message", h.SendMessage)
	api.POST("/suggest-messages", h.SuggestMessages)

	// Owner only
	owner := api.Group("", RequireAuth())
	owner.GET("/session", h.Session)
	owner.GET("/accept-messages", h.GetAcceptMessages)
	owner.POST("/accept-messages", h.SetAcceptMessages)
	owner.GET("/get-messages", h.GetMessages)
	owner.DELETE("/delete-message/:id", h.DeleteMessage)
}

func startWithGracefulShutdown(e *echo.Echo, cfg *config.Config) error {
	// Channel for server errors
	errChan := make(chan error, 1)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	go func() {
		slog.Info("Server running", "url", cfg.Server.BaseURL)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	// Wait for interrupt signal or error
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		slog.Info("shutting down server")
	case err := <-errChan:
		slog.Error("server error", "error", err)
		return err
	}

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		slog.Error("failed to shutdown server", "error", err)
	}

	slog.Info("server stopped")
	return nil
}
