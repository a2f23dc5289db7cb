// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package verification issues and checks the one-time codes that prove
// email ownership.
package verification

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"net/url"
	"time"

	"codeberg.org/oliverandrich/truefeedback/internal/apperr"
	"codeberg.org/oliverandrich/truefeedback/internal/models"
)

const (
	// CodeExpiry is how long a verification code stays valid.
	CodeExpiry = time.Hour
	codeMin    = 100000
	codeSpan   = 900000
)

// Store is the subset of the account store the engine needs.
type Store interface {
	GetAccountByUsername(ctx context.Context, username string) (*models.Account, error)
	SetVerificationChallenge(ctx context.Context, id, code string, expiry time.Time) error
	MarkVerified(ctx context.Context, id string) error
}

// Engine issues and validates verification challenges.
type Engine struct {
	store   Store
	now     func() time.Time
	newCode func() (string, error)
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithCodeGenerator replaces the random code generator.
func WithCodeGenerator(gen func() (string, error)) Option {
	return func(e *Engine) { e.newCode = gen }
}

// NewEngine creates a verification engine.
func NewEngine(store Store, opts ...Option) *Engine {
	e := &Engine{
		store:   store,
		now:     time.Now,
		newCode: GenerateCode,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// GenerateCode returns a uniformly random code in [100000, 999999].
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeSpan))
	if err != nil {
		return "", fmt.Errorf("failed to generate code: %w", err)
	}
	return fmt.Sprintf("%d", codeMin+n.Int64()), nil
}

// NewChallenge returns a fresh code and its expiry without persisting it.
func (e *Engine) NewChallenge() (string, time.Time, error) {
	code, err := e.newCode()
	if err != nil {
		return "", time.Time{}, err
	}
	return code, e.now().Add(CodeExpiry), nil
}

// IssueChallenge generates a new code for the account and persists it.
func (e *Engine) IssueChallenge(ctx context.Context, account *models.Account) error {
	code, expiry, err := e.NewChallenge()
	if err != nil {
		return apperr.ErrInternal.Wrap(err)
	}

	if err := e.store.SetVerificationChallenge(ctx, account.ID, code, expiry); err != nil {
		return fmt.Errorf("failed to store challenge: %w", err)
	}

	account.VerifyCode = code
	account.VerifyCodeExpiry = expiry
	slog.Debug("challenge_issued", "account_id", account.ID, "expires_at", expiry)
	return nil
}

// Verify checks code against the challenge stored for username.
// The username may arrive URL-encoded from a path segment.
func (e *Engine) Verify(ctx context.Context, username, code string) error {
	decoded, err := url.PathUnescape(username)
	if err != nil {
		return apperr.ErrInvalidUsername.Wrap(err)
	}

	account, err := e.store.GetAccountByUsername(ctx, decoded)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return apperr.ErrNotFound
		}
		return fmt.Errorf("failed to get account: %w", err)
	}

	// A verified account only confirms its own code. A second unverified
	// holder of the username resolves here too and must not succeed.
	if account.IsVerified {
		if account.VerifyCode == code {
			return nil
		}
		slog.Warn("verify_failed", "username", account.Username, "reason", "incorrect")
		return apperr.ErrCodeIncorrect
	}

	now := e.now()
	expired := account.ChallengeExpired(now)
	matches := account.VerifyCode == code

	switch {
	case matches && !expired:
		if err := e.store.MarkVerified(ctx, account.ID); err != nil {
			return fmt.Errorf("failed to mark verified: %w", err)
		}
		slog.Info("verify_success", "account_id", account.ID, "username", account.Username)
		return nil
	case expired:
		slog.Warn("verify_failed", "username", account.Username, "reason", "expired")
		return apperr.ErrCodeExpired
	default:
		slog.Warn("verify_failed", "username", account.Username, "reason", "incorrect")
		return apperr.ErrCodeIncorrect
	}
}
