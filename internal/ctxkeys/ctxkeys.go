// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package ctxkeys defines typed context keys used across packages.
package ctxkeys

// Identity is the context key for the authenticated identity.
type Identity struct{}

// AuthSource is the context key for how the identity was presented.
type AuthSource struct{}
