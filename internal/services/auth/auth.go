// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package auth implements sign-up, username availability and the
// credentials check that produces a session identity.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"regexp"
	"strings"
	"time"

	"codeberg.org/oliverandrich/truefeedback/internal/apperr"
	"codeberg.org/oliverandrich/truefeedback/internal/models"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]{2,20}$`)

// dummyHash is used for constant-time login to prevent timing attacks
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("dummy-password-for-timing"), HashCost)

// Store is what the auth service needs from the account store.
type Store interface {
	CreateAccount(ctx context.Context, account *models.Account) error
	GetAccountByUsername(ctx context.Context, username string) (*models.Account, error)
	GetAccountByEmail(ctx context.Context, email string) (*models.Account, error)
	UsernameTaken(ctx context.Context, username string) (bool, error)
	ReclaimAccount(ctx context.Context, id, username, passwordHash, code string, expiry time.Time) error
}

// Challenger creates verification challenges.
type Challenger interface {
	NewChallenge() (string, time.Time, error)
	IssueChallenge(ctx context.Context, account *models.Account) error
}

// Mailer delivers verification codes.
type Mailer interface {
	SendVerification(ctx context.Context, toEmail, username, code string) error
}

type Service struct {
	store             Store
	challenger        Challenger
	mailer            Mailer
	passwordValidator *PasswordValidator
}

func NewService(store Store, challenger Challenger, mailer Mailer) *Service {
	return &Service{
		store:             store,
		challenger:        challenger,
		mailer:            mailer,
		passwordValidator: DefaultPasswordValidator(),
	}
}

// SignUpParams holds the parameters for sign-up
type SignUpParams struct {
	Username string
	Email    string
	Password string
}

// Credentials is what a client presents to sign in. Identifier is an email
// address.
type Credentials struct {
	Identifier string
	Password   string
}

// Validate trims the identifier and checks both fields are present.
func (c *Credentials) Validate() error {
	c.Identifier = normalizeEmail(c.Identifier)
	if c.Identifier == "" || c.Password == "" {
		return apperr.ErrInvalidInput
	}
	return nil
}

// ValidateUsername checks the username shape.
func ValidateUsername(username string) error {
	if !usernamePattern.MatchString(username) {
		return apperr.ErrInvalidUsername
	}
	return nil
}

// ValidateEmail accepts a bare address only, no display name.
func ValidateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return apperr.ErrInvalidEmail
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CheckUsername reports whether username is well formed and not held by a
// verified account.
func (s *Service) CheckUsername(ctx context.Context, username string) error {
	if err := ValidateUsername(username); err != nil {
		return err
	}
	taken, err := s.store.UsernameTaken(ctx, username)
	if err != nil {
		return fmt.Errorf("failed to check username: %w", err)
	}
	if taken {
		return apperr.ErrDuplicateUsername
	}
	return nil
}

// SignUp creates an unverified account, or reclaims the unverified account
// already holding the email, and emails a fresh verification code.
// On delivery failure the account is returned together with ErrEmailDelivery.
func (s *Service) SignUp(ctx context.Context, params SignUpParams) (*models.Account, error) {
	params.Email = normalizeEmail(params.Email)

	if err := ValidateUsername(params.Username); err != nil {
		return nil, err
	}
	if err := ValidateEmail(params.Email); err != nil {
		return nil, err
	}
	if err := s.passwordValidator.Validate(params.Password); err != nil {
		return nil, err
	}

	taken, err := s.store.UsernameTaken(ctx, params.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if taken {
		return nil, apperr.ErrDuplicateUsername
	}

	existing, err := s.store.GetAccountByEmail(ctx, params.Email)
	if err != nil && !errors.Is(err, apperr.ErrNotFound) {
		return nil, fmt.Errorf("failed to check existing account: %w", err)
	}
	if existing != nil && existing.IsVerified {
		return nil, apperr.ErrDuplicateEmail
	}

	passwordHash, err := HashPassword(params.Password)
	if err != nil {
		return nil, err
	}

	code, expiry, err := s.challenger.NewChallenge()
	if err != nil {
		return nil, apperr.ErrInternal.Wrap(err)
	}

	var account *models.Account
	if existing != nil {
		if err := s.store.ReclaimAccount(ctx, existing.ID, params.Username, passwordHash, code, expiry); err != nil {
			return nil, fmt.Errorf("failed to reclaim account: %w", err)
		}
		account = existing
		account.Username = params.Username
		account.PasswordHash = passwordHash
		account.VerifyCode = code
		account.VerifyCodeExpiry = expiry
		slog.Info("signup_reclaimed", "account_id", account.ID, "username", account.Username)
	} else {
		account = &models.Account{
			ID:                  uuid.NewString(),
			Username:            params.Username,
			Email:               params.Email,
			PasswordHash:        passwordHash,
			VerifyCode:          code,
			VerifyCodeExpiry:    expiry,
			IsAcceptingMessages: true,
		}
		if err := s.store.CreateAccount(ctx, account); err != nil {
			return nil, fmt.Errorf("failed to create account: %w", err)
		}
		slog.Info("signup_success", "account_id", account.ID, "username", account.Username)
	}

	if err := s.mailer.SendVerification(ctx, account.Email, account.Username, code); err != nil {
		slog.Error("verification_email_failed", "account_id", account.ID, "error", err)
		return account, apperr.ErrEmailDelivery.Wrap(err)
	}

	return account, nil
}

// ResendCode issues and emails a new code for an unverified username.
// Verified accounts are left alone.
func (s *Service) ResendCode(ctx context.Context, username string) error {
	account, err := s.store.GetAccountByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return apperr.ErrNotFound
		}
		return fmt.Errorf("failed to get account: %w", err)
	}
	if account.IsVerified {
		return nil
	}

	if err := s.challenger.IssueChallenge(ctx, account); err != nil {
		return err
	}
	if err := s.mailer.SendVerification(ctx, account.Email, account.Username, account.VerifyCode); err != nil {
		slog.Error("verification_email_failed", "account_id", account.ID, "error", err)
		return apperr.ErrEmailDelivery.Wrap(err)
	}
	return nil
}

// Authorize checks credentials and returns the identity of the account.
// The account is looked up by email only.
func (s *Service) Authorize(ctx context.Context, creds Credentials) (*models.Identity, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}

	account, err := s.store.GetAccountByEmail(ctx, creds.Identifier)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			// Constant-time: always perform bcrypt comparison to prevent timing attacks
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(creds.Password))
			slog.Warn("login_failed", "email", creds.Identifier, "reason", "account_not_found")
			return nil, apperr.ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	if !account.IsVerified {
		slog.Warn("login_failed", "account_id", account.ID, "reason", "not_verified")
		return nil, apperr.ErrAccountNotVerified
	}

	if !CheckPassword(account.PasswordHash, creds.Password) {
		slog.Warn("login_failed", "account_id", account.ID, "reason", "invalid_password")
		return nil, apperr.ErrInvalidCredentials
	}

	slog.Info("login_success", "account_id", account.ID)
	identity := account.Identity()
	return &identity, nil
}
