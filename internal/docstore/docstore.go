// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package docstore is the MongoDB account store. Each account is one
// document with its mailbox embedded, so every mutation is a single
// document update.
package docstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"codeberg.org/oliverandrich/truefeedback/internal/apperr"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

const (
	// DefaultDatabase is used when no database name is configured.
	DefaultDatabase    = "truefeedback"
	accountsCollection = "accounts"

	emailIndex    = "email_unique"
	usernameIndex = "username_verified_unique"
)

// Store is the MongoDB account store.
type Store struct {
	client   *mongo.Client
	accounts *mongo.Collection
}

// Open connects to uri, verifies the connection and ensures indexes.
func Open(ctx context.Context, uri, database string) (*Store, error) {
	if database == "" {
		database = DefaultDatabase
	}

	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	s := &Store{
		client:   client,
		accounts: client.Database(database).Collection(accountsCollection),
	}
	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	_, err := s.accounts.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName(emailIndex).SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "username", Value: 1}},
			Options: options.Index().
				SetName(usernameIndex).
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"isVerified": true}),
		},
		{
			Keys: bson.D{{Key: "username", Value: 1}, {Key: "isVerified", Value: -1}, {Key: "createdAt", Value: -1}},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

// Ping checks that the server is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

// Close disconnects the client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// wrapError converts driver errors to store errors.
func wrapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return apperr.ErrNotFound.Wrap(err)
	}
	if mongo.IsDuplicateKeyError(err) {
		msg := err.Error()
		switch {
		case strings.Contains(msg, emailIndex):
			return apperr.ErrDuplicateEmail.Wrap(err)
		case strings.Contains(msg, usernameIndex):
			return apperr.ErrDuplicateUsername.Wrap(err)
		}
	}
	return err
}

func expectMatched(res *mongo.UpdateResult, notFound *apperr.Error) error {
	if res.MatchedCount == 0 {
		return notFound
	}
	return nil
}
