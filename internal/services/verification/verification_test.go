// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package verification_test

import (
	"context"
	"strconv"
	"testing"
	"time"

	"codeberg.org/oliverandrich/truefeedback/internal/apperr"
	"codeberg.org/oliverandrich/truefeedback/internal/repository"
	"codeberg.org/oliverandrich/truefeedback/internal/services/verification"
	"codeberg.org/oliverandrich/truefeedback/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newEngine(t *testing.T) (*verification.Engine, *repository.Repository, *testutil.Clock) {
	t.Helper()
	_, repo := testutil.NewTestDB(t)
	clock := testutil.NewClock(epoch)
	return verification.NewEngine(repo, verification.WithClock(clock.Now)), repo, clock
}

func TestGenerateCode_Range(t *testing.T) {
	for range 500 {
		code, err := verification.GenerateCode()
		require.NoError(t, err)
		require.Len(t, code, 6)

		n, err := strconv.Atoi(code)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, 100000)
		assert.LessOrEqual(t, n, 999999)
	}
}

func TestIssueChallenge(t *testing.T) {
	engine, repo, _ := newEngine(t)
	ctx := context.Background()
	account := testutil.NewTestAccount(t, repo, "alice", "alice@x.com")

	err := engine.IssueChallenge(ctx, account)

	require.NoError(t, err)
	assert.Len(t, account.VerifyCode, 6)
	assert.Equal(t, epoch.Add(verification.CodeExpiry), account.VerifyCodeExpiry)

	stored, err := repo.GetAccountByID(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, account.VerifyCode, stored.VerifyCode)
	assert.WithinDuration(t, account.VerifyCodeExpiry, stored.VerifyCodeExpiry, time.Second)
}

func TestIssueChallenge_RegeneratesCode(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	codes := []string{"111111", "222222"}
	engine := verification.NewEngine(repo, verification.WithCodeGenerator(func() (string, error) {
		code := codes[0]
		codes = codes[1:]
		return code, nil
	}))
	account := testutil.NewTestAccount(t, repo, "alice", "alice@x.com")

	require.NoError(t, engine.IssueChallenge(context.Background(), account))
	assert.Equal(t, "111111", account.VerifyCode)

	require.NoError(t, engine.IssueChallenge(context.Background(), account))
	assert.Equal(t, "222222", account.VerifyCode)
}

func TestVerify_CorrectCodeBeforeExpiry(t *testing.T) {
	engine, repo, _ := newEngine(t)
	ctx := context.Background()
	account := testutil.NewTestAccount(t, repo, "alice", "alice@x.com",
		testutil.WithChallenge("482913", epoch.Add(time.Hour)))

	err := engine.Verify(ctx, "alice", "482913")

	require.NoError(t, err)
	stored, err := repo.GetAccountByID(ctx, account.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsVerified)
}

func TestVerify_Idempotent(t *testing.T) {
	engine, repo, clock := newEngine(t)
	ctx := context.Background()
	account := testutil.NewTestAccount(t, repo, "alice", "alice@x.com",
		testutil.WithChallenge("482913", epoch.Add(time.Hour)))

	require.NoError(t, engine.Verify(ctx, "alice", "482913"))

	// Neither a wrong code nor a later expiry may regress the verified state.
	clock.Advance(2 * time.Hour)
	require.NoError(t, engine.Verify(ctx, "alice", "482913"))
	assert.ErrorIs(t, engine.Verify(ctx, "alice", "000000"), apperr.ErrCodeIncorrect)

	stored, err := repo.GetAccountByID(ctx, account.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsVerified)
}

func TestVerify_SecondHolderAfterFirstVerified(t *testing.T) {
	engine, repo, _ := newEngine(t)
	ctx := context.Background()
	first := testutil.NewTestAccount(t, repo, "alice", "a@x.com",
		testutil.WithChallenge("111111", epoch.Add(time.Hour)))
	second := testutil.NewTestAccount(t, repo, "alice", "b@x.com",
		testutil.WithChallenge("222222", epoch.Add(time.Hour)))

	require.NoError(t, repo.MarkVerified(ctx, first.ID))

	// The lookup now resolves to the verified holder.
	for _, code := range []string{"999999", "222222"} {
		err := engine.Verify(ctx, "alice", code)
		require.ErrorIs(t, err, apperr.ErrCodeIncorrect, "code %s", code)
	}

	stored, err := repo.GetAccountByID(ctx, second.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsVerified)
}

// Expired means the stored expiry lies before now. This pins the comparison
// direction; flipping it makes every fresh code look expired.
func TestVerify_ExpiryDirection(t *testing.T) {
	tests := []struct {
		name     string
		advance  time.Duration
		code     string
		expected error
	}{
		{"fresh and correct", 59 * time.Minute, "482913", nil},
		{"fresh and wrong", 59 * time.Minute, "000000", apperr.ErrCodeIncorrect},
		{"expired and correct", 61 * time.Minute, "482913", apperr.ErrCodeExpired},
		{"expired and wrong", 61 * time.Minute, "000000", apperr.ErrCodeExpired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine, repo, clock := newEngine(t)
			ctx := context.Background()
			account := testutil.NewTestAccount(t, repo, "alice", "alice@x.com",
				testutil.WithChallenge("482913", epoch.Add(verification.CodeExpiry)))
			clock.Advance(tt.advance)

			err := engine.Verify(ctx, "alice", tt.code)

			stored, getErr := repo.GetAccountByID(ctx, account.ID)
			require.NoError(t, getErr)
			if tt.expected == nil {
				require.NoError(t, err)
				assert.True(t, stored.IsVerified)
			} else {
				require.ErrorIs(t, err, tt.expected)
				assert.False(t, stored.IsVerified)
			}
		})
	}
}

func TestVerify_CodeIsExactMatch(t *testing.T) {
	engine, repo, _ := newEngine(t)
	testutil.NewTestAccount(t, repo, "alice", "alice@x.com",
		testutil.WithChallenge("482913", epoch.Add(time.Hour)))

	for _, code := range []string{" 482913", "482913 ", "0482913", ""} {
		err := engine.Verify(context.Background(), "alice", code)
		assert.ErrorIs(t, err, apperr.ErrCodeIncorrect, code)
	}
}

func TestVerify_UnknownUsername(t *testing.T) {
	engine, _, _ := newEngine(t)

	err := engine.Verify(context.Background(), "nobody", "123456")

	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestVerify_DecodesUsername(t *testing.T) {
	engine, repo, _ := newEngine(t)
	ctx := context.Background()
	account := testutil.NewTestAccount(t, repo, "a_b", "ab@x.com",
		testutil.WithChallenge("482913", epoch.Add(time.Hour)))

	require.NoError(t, engine.Verify(ctx, "a%5Fb", "482913"))

	stored, err := repo.GetAccountByID(ctx, account.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsVerified)
}

func TestVerify_MalformedEncoding(t *testing.T) {
	engine, _, _ := newEngine(t)

	err := engine.Verify(context.Background(), "bad%zz", "123456")

	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}
