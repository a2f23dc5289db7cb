// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package auth provides authentication context helpers.
package auth

import (
	"context"

	"codeberg.org/oliverandrich/truefeedback/internal/ctxkeys"
	"codeberg.org/oliverandrich/truefeedback/internal/models"
)

// Source tells how a request presented its identity.
type Source string

const (
	SourceCookie Source = "cookie"
	SourceBearer Source = "bearer"
)

// WithIdentity returns a copy of ctx carrying identity.
func WithIdentity(ctx context.Context, identity *models.Identity, source Source) context.Context {
	ctx = context.WithValue(ctx, ctxkeys.Identity{}, identity)
	return context.WithValue(ctx, ctxkeys.AuthSource{}, source)
}

// GetIdentity returns the authenticated identity from the context, or nil if not authenticated.
func GetIdentity(ctx context.Context) *models.Identity {
	if identity, ok := ctx.Value(ctxkeys.Identity{}).(*models.Identity); ok {
		return identity
	}
	return nil
}

// GetSource returns how the identity was presented, or "" when unauthenticated.
func GetSource(ctx context.Context) Source {
	if source, ok := ctx.Value(ctxkeys.AuthSource{}).(Source); ok {
		return source
	}
	return ""
}

// IsAuthenticated returns true if the context has an authenticated identity.
func IsAuthenticated(ctx context.Context) bool {
	return GetIdentity(ctx) != nil
}
