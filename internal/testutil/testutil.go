// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package testutil provides test helpers and fixtures.
package testutil

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"codeberg.org/oliverandrich/truefeedback/internal/database"
	"codeberg.org/oliverandrich/truefeedback/internal/models"
	"codeberg.org/oliverandrich/truefeedback/internal/repository"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"github.com/vinovest/sqlx"
	"golang.org/x/crypto/bcrypt"
)

// TestPassword is the plaintext password of accounts created by NewTestAccount.
const TestPassword = "password123"

// NewTestDB creates an in-memory SQLite database for tests.
// Returns both the database connection and the repository for convenience.
func NewTestDB(t *testing.T) (*sqlx.DB, *repository.Repository) {
	t.Helper()
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})
	repo := repository.New(db)
	return db, repo
}

// AccountOption customizes a test account before it is stored.
type AccountOption func(*models.Account)

// Verified marks the test account as verified.
func Verified() AccountOption {
	return func(a *models.Account) { a.IsVerified = true }
}

// NotAccepting turns the acceptance flag off.
func NotAccepting() AccountOption {
	return func(a *models.Account) { a.IsAcceptingMessages = false }
}

// WithChallenge sets the verification code and expiry.
func WithChallenge(code string, expiry time.Time) AccountOption {
	return func(a *models.Account) {
		a.VerifyCode = code
		a.VerifyCodeExpiry = expiry
	}
}

// NewTestAccount creates an unverified, accepting account with TestPassword.
func NewTestAccount(t *testing.T, repo *repository.Repository, username, email string, opts ...AccountOption) *models.Account {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	require.NoError(t, err)

	account := &models.Account{
		ID:                  uuid.NewString(),
		Username:            username,
		Email:               email,
		PasswordHash:        string(hash),
		VerifyCode:          "123456",
		VerifyCodeExpiry:    time.Now().Add(time.Hour),
		IsAcceptingMessages: true,
	}
	for _, opt := range opts {
		opt(account)
	}

	require.NoError(t, repo.CreateAccount(context.Background(), account))
	return account
}

// CountMessages returns the number of messages stored for an account.
func CountMessages(t *testing.T, db *sqlx.DB, accountID string) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Get(&count, "SELECT count(*) FROM messages WHERE account_id = ?", accountID))
	return count
}

// DeleteAccount removes an account row; its messages go with it.
func DeleteAccount(t *testing.T, db *sqlx.DB, accountID string) {
	t.Helper()
	_, err := db.Exec("DELETE FROM accounts WHERE id = ?", accountID)
	require.NoError(t, err)
}

// Clock is a settable clock for expiry tests.
type Clock struct {
	now time.Time
	mu  sync.Mutex
}

// NewClock returns a clock fixed at now.
func NewClock(now time.Time) *Clock {
	return &Clock{now: now}
}

// Now returns the current fake time.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// SentVerification records one verification email.
type SentVerification struct {
	To       string
	Username string
	Code     string
}

// Mailer records verification emails instead of sending them.
type Mailer struct {
	Err  error
	Sent []SentVerification
	mu   sync.Mutex
}

// SendVerification records the email, or returns Err when set.
func (m *Mailer) SendVerification(_ context.Context, toEmail, username, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Sent = append(m.Sent, SentVerification{To: toEmail, Username: username, Code: code})
	return nil
}

// Last returns the most recent email, or the zero value.
func (m *Mailer) Last() SentVerification {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Sent) == 0 {
		return SentVerification{}
	}
	return m.Sent[len(m.Sent)-1]
}

// NewEchoContext creates an Echo context for handler tests.
func NewEchoContext(e *echo.Echo, method, path string, body io.Reader) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, path, body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return c, rec
}

// NewRequest creates an HTTP request for testing.
func NewRequest(method, path string, body io.Reader) *http.Request {
	req := httptest.NewRequest(method, path, body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}
