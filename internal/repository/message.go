// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"

	"codeberg.org/oliverandrich/truefeedback/internal/apperr"
	"codeberg.org/oliverandrich/truefeedback/internal/models"
)

// AppendMessage appends a message to the account's mailbox in a single
// INSERT, so concurrent appends never overwrite each other.
func (r *Repository) AppendMessage(ctx context.Context, accountID string, msg *models.Message) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO messages (id, account_id, content, created_at)
		 SELECT ?, id, ?, ? FROM accounts WHERE id = ?`,
		msg.ID, msg.Content, msg.CreatedAt.UTC(), accountID)
	if err != nil {
		return wrapError(err)
	}
	return expectAffected(res, ErrNotFound)
}

// ListMessages returns the mailbox in receipt order. An unknown account
// yields ErrNotFound rather than an empty mailbox.
func (r *Repository) ListMessages(ctx context.Context, accountID string) ([]models.Message, error) {
	messages := []models.Message{}
	err := r.db.SelectContext(ctx, &messages,
		`SELECT id, content, created_at FROM messages WHERE account_id = ? ORDER BY seq`, accountID)
	if err != nil {
		return nil, err
	}
	if len(messages) > 0 {
		return messages, nil
	}

	var exists bool
	if err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM accounts WHERE id = ?)`, accountID); err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrNotFound
	}
	return messages, nil
}

// DeleteMessage removes one message from the account's mailbox.
func (r *Repository) DeleteMessage(ctx context.Context, accountID, messageID string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM messages WHERE id = ? AND account_id = ?`, messageID, accountID)
	if err != nil {
		return err
	}
	return expectAffected(res, apperr.ErrMessageNotFound)
}
