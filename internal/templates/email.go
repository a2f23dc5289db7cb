// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package templates renders the HTML parts of outgoing mail.
package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// VerificationEmail renders the HTML body of the verification code email.
func VerificationEmail(username, code string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		parts := []string{
			`<!DOCTYPE html><html lang="`, templ.EscapeString(Locale(ctx)), `">`,
			`<head><meta charset="utf-8"><title>`, templ.EscapeString(T(ctx, "email_verification_subject")), `</title></head>`,
			`<body style="font-family: Roboto, Verdana, sans-serif;">`,
			`<h2>`, templ.EscapeString(TData(ctx, "email_verification_greeting", map[string]any{"Username": username})), `</h2>`,
			`<p>`, templ.EscapeString(T(ctx, "email_verification_intro")), `</p>`,
			`<p style="font-size: 24px; font-weight: bold; letter-spacing: 4px;">`, templ.EscapeString(code), `</p>`,
			`<p>`, templ.EscapeString(T(ctx, "email_verification_expiry")), `</p>`,
			`<p>`, templ.EscapeString(T(ctx, "email_verification_ignore")), `</p>`,
			`</body></html>`,
		}
		for _, part := range parts {
			if _, err := io.WriteString(w, part); err != nil {
				return err
			}
		}
		return nil
	})
}
