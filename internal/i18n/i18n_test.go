// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package i18n_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"codeberg.org/oliverandrich/truefeedback/internal/apperr"
	"codeberg.org/oliverandrich/truefeedback/internal/i18n"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func TestInit(t *testing.T) {
	err := i18n.Init()
	require.NoError(t, err)
}

func TestT(t *testing.T) {
	require.NoError(t, i18n.Init())

	ctx := i18n.WithLocale(context.Background(), language.English)

	assert.Equal(t, "True Feedback", i18n.T(ctx, "app_name"))
	assert.Equal(t, "User is not accepting messages.", i18n.T(ctx, "recipient_not_accepting"))
}

func TestT_German(t *testing.T) {
	require.NoError(t, i18n.Init())

	ctx := i18n.WithLocale(context.Background(), language.German)

	assert.Equal(t, "Falscher Bestätigungscode.", i18n.T(ctx, "code_incorrect"))
}

func TestT_UnknownKey(t *testing.T) {
	require.NoError(t, i18n.Init())

	ctx := i18n.WithLocale(context.Background(), language.English)

	// Should return the key itself for unknown messages
	result := i18n.T(ctx, "unknown_key_that_does_not_exist")
	assert.Equal(t, "unknown_key_that_does_not_exist", result)
}

func TestT_NoLocaleContext(t *testing.T) {
	require.NoError(t, i18n.Init())

	// Without WithLocale, should fallback to English
	result := i18n.T(context.Background(), "message_sent")
	assert.Equal(t, "Message sent successfully.", result)
}

func TestTData(t *testing.T) {
	require.NoError(t, i18n.Init())

	ctx := i18n.WithLocale(context.Background(), language.English)

	result := i18n.TData(ctx, "email_verification_greeting", map[string]any{"Username": "alice"})
	assert.Equal(t, "Hello alice,", result)
}

func TestTError(t *testing.T) {
	require.NoError(t, i18n.Init())

	ctx := i18n.WithLocale(context.Background(), language.English)

	assert.Equal(t, "Verification code has expired. Please sign up again to get a new code.",
		i18n.TError(ctx, fmt.Errorf("verify: %w", apperr.ErrCodeExpired)))
	assert.Equal(t, "Something went wrong. Please try again later.",
		i18n.TError(ctx, errors.New("disk on fire")))
}

func TestEveryErrorCodeIsTranslated(t *testing.T) {
	require.NoError(t, i18n.Init())

	sentinels := []*apperr.Error{
		apperr.ErrInternal, apperr.ErrInvalidInput, apperr.ErrInvalidUsername,
		apperr.ErrInvalidEmail, apperr.ErrWeakPassword, apperr.ErrContentTooLong,
		apperr.ErrNotFound, apperr.ErrDuplicateUsername,
		apperr.ErrDuplicateEmail, apperr.ErrCodeExpired, apperr.ErrCodeIncorrect,
		apperr.ErrRecipientNotFound, apperr.ErrRecipientNotAccepting, apperr.ErrMessageNotFound,
		apperr.ErrAccountNotFound, apperr.ErrAccountNotVerified, apperr.ErrInvalidCredentials,
		apperr.ErrUnauthenticated, apperr.ErrEmailDelivery,
	}

	for _, lang := range i18n.Languages {
		ctx := i18n.WithLocale(context.Background(), lang)
		for _, sentinel := range sentinels {
			assert.NotEqual(t, sentinel.Code, i18n.T(ctx, sentinel.Code), "%s missing in %s", sentinel.Code, lang)
		}
	}
}

func TestMatchLanguage(t *testing.T) {
	tests := []struct {
		expected       language.Tag
		acceptLanguage string
	}{
		{language.English, "en"},
		{language.English, "en-US"},
		{language.German, "de"},
		{language.German, "de-DE"},
		{language.German, "de-AT"},
		{language.English, "fr"}, // fallback to English
		{language.English, ""},   // empty defaults to English
		{language.German, "de, en;q=0.9"},
		{language.English, "en, de;q=0.9"},
	}

	for _, tt := range tests {
		t.Run(tt.acceptLanguage, func(t *testing.T) {
			assert.Equal(t, tt.expected, i18n.MatchLanguage(tt.acceptLanguage))
		})
	}
}

func TestWithLocale(t *testing.T) {
	require.NoError(t, i18n.Init())

	ctx := i18n.WithLocale(context.Background(), language.German)

	locale := i18n.GetLocale(ctx)
	assert.Equal(t, "de", locale)
}

func TestGetLocale_Default(t *testing.T) {
	ctx := context.Background()

	// Without WithLocale, should return "en"
	assert.Equal(t, "en", i18n.GetLocale(ctx))
}
