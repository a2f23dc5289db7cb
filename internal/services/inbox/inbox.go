// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package inbox holds the anonymous message intake gate and the owner-side
// mailbox and preference operations.
package inbox

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"codeberg.org/oliverandrich/truefeedback/internal/apperr"
	"codeberg.org/oliverandrich/truefeedback/internal/models"
	"github.com/google/uuid"
)

// IntakeStore is what the gate needs from the account store.
type IntakeStore interface {
	GetAccountByUsername(ctx context.Context, username string) (*models.Account, error)
	AppendMessage(ctx context.Context, accountID string, msg *models.Message) error
}

// Gate decides whether an anonymous message is delivered.
type Gate struct {
	store IntakeStore
	now   func() time.Time
}

// GateOption configures a Gate.
type GateOption func(*Gate)

// WithClock replaces time.Now for message timestamps.
func WithClock(now func() time.Time) GateOption {
	return func(g *Gate) { g.now = now }
}

// NewGate creates a message intake gate.
func NewGate(store IntakeStore, opts ...GateOption) *Gate {
	g := &Gate{store: store, now: time.Now}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// ValidateContent checks message content before any lookup happens.
// Only the length is limited; empty content is a valid message.
func ValidateContent(content string) error {
	if utf8.RuneCountInString(content) > models.MaxMessageLength {
		return apperr.ErrContentTooLong
	}
	return nil
}

// Submit delivers content to the mailbox of username.
// It never records anything about the sender.
func (g *Gate) Submit(ctx context.Context, username, content string) (*models.Message, error) {
	if err := ValidateContent(content); err != nil {
		return nil, err
	}

	account, err := g.store.GetAccountByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			slog.Info("message_rejected", "username", username, "reason", "not_found")
			return nil, apperr.ErrRecipientNotFound
		}
		return nil, fmt.Errorf("failed to get recipient: %w", err)
	}

	if !account.IsAcceptingMessages {
		slog.Info("message_rejected", "username", username, "reason", "not_accepting")
		return nil, apperr.ErrRecipientNotAccepting
	}

	msg := &models.Message{
		ID:        uuid.NewString(),
		Content:   content,
		CreatedAt: g.now().UTC(),
	}
	if err := g.store.AppendMessage(ctx, account.ID, msg); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.ErrRecipientNotFound
		}
		return nil, fmt.Errorf("failed to append message: %w", err)
	}

	slog.Info("message_accepted", "account_id", account.ID)
	return msg, nil
}
