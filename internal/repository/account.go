// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"time"

	"codeberg.org/oliverandrich/truefeedback/internal/models"
)

const accountColumns = `id, username, email, password_hash, is_verified, verify_code,
	verify_code_expiry, is_accepting_messages, created_at, updated_at`

// CreateAccount inserts a new account. CreatedAt and UpdatedAt are set here.
func (r *Repository) CreateAccount(ctx context.Context, account *models.Account) error {
	now := time.Now().UTC()
	account.CreatedAt = now
	account.UpdatedAt = now

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO accounts (`+accountColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		account.ID, account.Username, account.Email, account.PasswordHash, account.IsVerified,
		account.VerifyCode, account.VerifyCodeExpiry.UTC(), account.IsAcceptingMessages,
		account.CreatedAt, account.UpdatedAt)
	return wrapError(err)
}

// GetAccountByID retrieves an account by ID.
func (r *Repository) GetAccountByID(ctx context.Context, id string) (*models.Account, error) {
	var account models.Account
	err := r.db.GetContext(ctx, &account, `SELECT `+accountColumns+` FROM accounts WHERE id = ?`, id)
	if err != nil {
		return nil, wrapError(err)
	}
	return &account, nil
}

// GetAccountByUsername retrieves the verified holder of a username, or the
// most recent unverified one when nobody has verified it yet.
func (r *Repository) GetAccountByUsername(ctx context.Context, username string) (*models.Account, error) {
	var account models.Account
	err := r.db.GetContext(ctx, &account,
		`SELECT `+accountColumns+` FROM accounts WHERE username = ?
		 ORDER BY is_verified DESC, created_at DESC, rowid DESC LIMIT 1`, username)
	if err != nil {
		return nil, wrapError(err)
	}
	return &account, nil
}

// GetAccountByEmail retrieves an account by email address.
func (r *Repository) GetAccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	var account models.Account
	err := r.db.GetContext(ctx, &account, `SELECT `+accountColumns+` FROM accounts WHERE email = ?`, email)
	if err != nil {
		return nil, wrapError(err)
	}
	return &account, nil
}

// UsernameTaken reports whether a verified account holds the username.
func (r *Repository) UsernameTaken(ctx context.Context, username string) (bool, error) {
	var count int64
	err := r.db.GetContext(ctx, &count,
		`SELECT count(*) FROM accounts WHERE username = ? AND is_verified = 1`, username)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ReclaimAccount overwrites an unverified account for a repeated sign-up.
func (r *Repository) ReclaimAccount(ctx context.Context, id, username, passwordHash, code string, expiry time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE accounts SET username = ?, password_hash = ?, verify_code = ?, verify_code_expiry = ?, updated_at = ?
		 WHERE id = ? AND is_verified = 0`,
		username, passwordHash, code, expiry.UTC(), time.Now().UTC(), id)
	if err != nil {
		return wrapError(err)
	}
	return expectAffected(res, ErrNotFound)
}

// SetVerificationChallenge stores a new verification code and expiry.
func (r *Repository) SetVerificationChallenge(ctx context.Context, id, code string, expiry time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE accounts SET verify_code = ?, verify_code_expiry = ?, updated_at = ? WHERE id = ?`,
		code, expiry.UTC(), time.Now().UTC(), id)
	if err != nil {
		return wrapError(err)
	}
	return expectAffected(res, ErrNotFound)
}

// MarkVerified flips the account to verified.
func (r *Repository) MarkVerified(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE accounts SET is_verified = 1, updated_at = ? WHERE id = ?`, time.Now().UTC(), id)
	if err != nil {
		return wrapError(err)
	}
	return expectAffected(res, ErrNotFound)
}

// SetAcceptingMessages sets the message-acceptance flag.
func (r *Repository) SetAcceptingMessages(ctx context.Context, id string, accepting bool) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE accounts SET is_accepting_messages = ?, updated_at = ? WHERE id = ?`,
		accepting, time.Now().UTC(), id)
	if err != nil {
		return wrapError(err)
	}
	return expectAffected(res, ErrNotFound)
}
