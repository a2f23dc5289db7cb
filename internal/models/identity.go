// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package models

// Identity is the authenticated session's reference to exactly one account.
type Identity struct {
	AccountID           string `json:"_id"`
	Username            string `json:"username"`
	IsVerified          bool   `json:"isVerified"`
	IsAcceptingMessages bool   `json:"isAcceptingMessages"`
}
