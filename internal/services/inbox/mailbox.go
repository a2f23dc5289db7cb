// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package inbox

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"codeberg.org/oliverandrich/truefeedback/internal/apperr"
	"codeberg.org/oliverandrich/truefeedback/internal/models"
)

// MailboxStore is what the owner-side operations need from the account store.
type MailboxStore interface {
	GetAccountByID(ctx context.Context, id string) (*models.Account, error)
	ListMessages(ctx context.Context, accountID string) ([]models.Message, error)
	DeleteMessage(ctx context.Context, accountID, messageID string) error
	SetAcceptingMessages(ctx context.Context, id string, accepting bool) error
}

// Mailbox lets an owner read and prune their own messages.
// Every operation is scoped to the identity's account.
type Mailbox struct {
	store MailboxStore
}

func NewMailbox(store MailboxStore) *Mailbox {
	return &Mailbox{store: store}
}

// List returns the identity's messages in receipt order.
func (m *Mailbox) List(ctx context.Context, id models.Identity) ([]models.Message, error) {
	if id.AccountID == "" {
		return nil, apperr.ErrUnauthenticated
	}
	messages, err := m.store.ListMessages(ctx, id.AccountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	return messages, nil
}

// Delete removes one of the identity's messages.
func (m *Mailbox) Delete(ctx context.Context, id models.Identity, messageID string) error {
	if id.AccountID == "" {
		return apperr.ErrUnauthenticated
	}
	if messageID == "" {
		return apperr.ErrMessageNotFound
	}
	if err := m.store.DeleteMessage(ctx, id.AccountID, messageID); err != nil {
		if errors.Is(err, apperr.ErrMessageNotFound) {
			return apperr.ErrMessageNotFound
		}
		return fmt.Errorf("failed to delete message: %w", err)
	}
	slog.Info("message_deleted", "account_id", id.AccountID)
	return nil
}

// Preferences reads and writes the acceptance flag of the identity's own
// account. There is no way to address another account.
type Preferences struct {
	store MailboxStore
}

func NewPreferences(store MailboxStore) *Preferences {
	return &Preferences{store: store}
}

// GetAcceptance returns the stored acceptance flag.
func (p *Preferences) GetAcceptance(ctx context.Context, id models.Identity) (bool, error) {
	if id.AccountID == "" {
		return false, apperr.ErrUnauthenticated
	}
	account, err := p.store.GetAccountByID(ctx, id.AccountID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return false, apperr.ErrNotFound
		}
		return false, fmt.Errorf("failed to get account: %w", err)
	}
	return account.IsAcceptingMessages, nil
}

// SetAcceptance stores desired and returns the new value.
func (p *Preferences) SetAcceptance(ctx context.Context, id models.Identity, desired bool) (bool, error) {
	if id.AccountID == "" {
		return false, apperr.ErrUnauthenticated
	}
	if err := p.store.SetAcceptingMessages(ctx, id.AccountID, desired); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return false, apperr.ErrNotFound
		}
		return false, fmt.Errorf("failed to update acceptance: %w", err)
	}
	slog.Info("acceptance_updated", "account_id", id.AccountID, "accepting", desired)
	return desired, nil
}
