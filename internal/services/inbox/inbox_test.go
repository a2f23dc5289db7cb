// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package inbox_test

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"codeberg.org/oliverandrich/truefeedback/internal/apperr"
	"codeberg.org/oliverandrich/truefeedback/internal/models"
	"codeberg.org/oliverandrich/truefeedback/internal/services/inbox"
	"codeberg.org/oliverandrich/truefeedback/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateContent(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected error
	}{
		{"simple", "You are great", nil},
		{"exactly max ascii", strings.Repeat("a", models.MaxMessageLength), nil},
		{"exactly max multibyte", strings.Repeat("ü", models.MaxMessageLength), nil},
		{"one over max", strings.Repeat("a", models.MaxMessageLength+1), apperr.ErrContentTooLong},
		{"one over max multibyte", strings.Repeat("日", models.MaxMessageLength+1), apperr.ErrContentTooLong},
		{"empty", "", nil},
		{"whitespace only", "  \n\t ", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := inbox.ValidateContent(tt.content)
			if tt.expected == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.expected)
			}
		})
	}
}

func TestSubmit_Accepting(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	gate := inbox.NewGate(repo, inbox.WithClock(func() time.Time { return now }))
	account := testutil.NewTestAccount(t, repo, "bob", "bob@x.com", testutil.Verified())

	msg, err := gate.Submit(ctx, "bob", "You are great")

	require.NoError(t, err)
	assert.NotEmpty(t, msg.ID)
	assert.Equal(t, now, msg.CreatedAt)

	messages, err := repo.ListMessages(ctx, account.ID)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, "You are great", messages[0].Content)
	assert.Equal(t, msg.ID, messages[0].ID)
}

func TestSubmit_NotAccepting(t *testing.T) {
	db, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	gate := inbox.NewGate(repo)
	account := testutil.NewTestAccount(t, repo, "bob", "bob@x.com", testutil.Verified(), testutil.NotAccepting())

	_, err := gate.Submit(ctx, "bob", "hi")

	require.ErrorIs(t, err, apperr.ErrRecipientNotAccepting)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	assert.Zero(t, testutil.CountMessages(t, db, account.ID))
}

func TestSubmit_UnknownRecipient(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	gate := inbox.NewGate(repo)

	_, err := gate.Submit(context.Background(), "ghost", "hi")

	require.ErrorIs(t, err, apperr.ErrRecipientNotFound)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestSubmit_TooLongChecksBeforeLookup(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	gate := inbox.NewGate(repo)

	_, err := gate.Submit(context.Background(), "ghost", strings.Repeat("x", 451))

	require.ErrorIs(t, err, apperr.ErrContentTooLong)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestSubmit_ConcurrentAppendsAllLand(t *testing.T) {
	db, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	gate := inbox.NewGate(repo)
	account := testutil.NewTestAccount(t, repo, "bob", "bob@x.com", testutil.Verified())

	const n = 25
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := gate.Submit(ctx, "bob", fmt.Sprintf("message %d", i))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(n), testutil.CountMessages(t, db, account.ID))
}

func TestSubmit_FlagReadPerRequest(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	gate := inbox.NewGate(repo)
	account := testutil.NewTestAccount(t, repo, "bob", "bob@x.com", testutil.Verified())

	_, err := gate.Submit(ctx, "bob", "first")
	require.NoError(t, err)

	require.NoError(t, repo.SetAcceptingMessages(ctx, account.ID, false))

	_, err = gate.Submit(ctx, "bob", "second")
	require.ErrorIs(t, err, apperr.ErrRecipientNotAccepting)
}

func TestSubmit_BlankContentIsAppended(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	gate := inbox.NewGate(repo)
	account := testutil.NewTestAccount(t, repo, "alice", "alice@x.com", testutil.Verified())

	for _, content := range []string{"", "   "} {
		_, err := gate.Submit(ctx, "alice", content)
		require.NoError(t, err, "content %q", content)
	}

	messages, err := repo.ListMessages(ctx, account.ID)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Empty(t, messages[0].Content)
	assert.Equal(t, "   ", messages[1].Content)
}
