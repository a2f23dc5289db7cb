// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package models

import "time"

// MaxMessageLength is the maximum message length in characters.
const MaxMessageLength = 450

// Message is an anonymous message in an account's mailbox.
// There is deliberately no sender field.
type Message struct {
	CreatedAt time.Time `db:"created_at" bson:"createdAt" json:"createdAt"`
	ID        string    `db:"id" bson:"_id" json:"_id"`
	Content   string    `db:"content" bson:"content" json:"content"`
}
