// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package models

import (
	"time"
)

// Account is a registered user who receives anonymous messages.
type Account struct { //nolint:govet // fieldalignment: readability over optimization
	ID                  string    `db:"id" bson:"_id" json:"id"`
	Username            string    `db:"username" bson:"username" json:"username"`
	Email               string    `db:"email" bson:"email" json:"email"`
	PasswordHash        string    `db:"password_hash" bson:"passwordHash" json:"-"`
	IsVerified          bool      `db:"is_verified" bson:"isVerified" json:"isVerified"`
	VerifyCode          string    `db:"verify_code" bson:"verifyCode" json:"-"`
	VerifyCodeExpiry    time.Time `db:"verify_code_expiry" bson:"verifyCodeExpiry" json:"-"`
	IsAcceptingMessages bool      `db:"is_accepting_messages" bson:"isAcceptingMessages" json:"isAcceptingMessages"`
	Messages            []Message `db:"-" bson:"messages" json:"-"`
	CreatedAt           time.Time `db:"created_at" bson:"createdAt" json:"createdAt"`
	UpdatedAt           time.Time `db:"updated_at" bson:"updatedAt" json:"updatedAt"`
}

// Identity returns the session identity for the account.
func (a *Account) Identity() Identity {
	return Identity{
		AccountID:           a.ID,
		Username:            a.Username,
		IsVerified:          a.IsVerified,
		IsAcceptingMessages: a.IsAcceptingMessages,
	}
}

// ChallengeExpired reports whether the verification code expired before now.
func (a *Account) ChallengeExpired(now time.Time) bool {
	return a.VerifyCodeExpiry.Before(now)
}
