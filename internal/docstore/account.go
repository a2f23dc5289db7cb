// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package docstore

import (
	"context"
	"time"

	"codeberg.org/oliverandrich/truefeedback/internal/apperr"
	"codeberg.org/oliverandrich/truefeedback/internal/models"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// accountProjection leaves the embedded mailbox out of account reads.
var accountProjection = bson.M{"messages": 0}

// CreateAccount inserts a new account document with an empty mailbox.
func (s *Store) CreateAccount(ctx context.Context, account *models.Account) error {
	now := time.Now().UTC()
	account.CreatedAt = now
	account.UpdatedAt = now

	doc := *account
	doc.VerifyCodeExpiry = doc.VerifyCodeExpiry.UTC()
	if doc.Messages == nil {
		doc.Messages = []models.Message{}
	}

	_, err := s.accounts.InsertOne(ctx, doc)
	return wrapError(err)
}

func (s *Store) findAccount(ctx context.Context, filter bson.M, opts *options.FindOneOptionsBuilder) (*models.Account, error) {
	opts = opts.SetProjection(accountProjection)
	var account models.Account
	if err := s.accounts.FindOne(ctx, filter, opts).Decode(&account); err != nil {
		return nil, wrapError(err)
	}
	return &account, nil
}

// GetAccountByID retrieves an account by ID.
func (s *Store) GetAccountByID(ctx context.Context, id string) (*models.Account, error) {
	return s.findAccount(ctx, bson.M{"_id": id}, options.FindOne())
}

// GetAccountByUsername retrieves the verified holder of a username, or the
// most recent unverified one when nobody has verified it yet.
func (s *Store) GetAccountByUsername(ctx context.Context, username string) (*models.Account, error) {
	return s.findAccount(ctx, bson.M{"username": username},
		options.FindOne().SetSort(bson.D{{Key: "isVerified", Value: -1}, {Key: "createdAt", Value: -1}}))
}

// GetAccountByEmail retrieves an account by email address.
func (s *Store) GetAccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	return s.findAccount(ctx, bson.M{"email": email}, options.FindOne())
}

// UsernameTaken reports whether a verified account holds the username.
func (s *Store) UsernameTaken(ctx context.Context, username string) (bool, error) {
	count, err := s.accounts.CountDocuments(ctx,
		bson.M{"username": username, "isVerified": true},
		options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Store) update(ctx context.Context, filter bson.M, set bson.M) error {
	set["updatedAt"] = time.Now().UTC()
	res, err := s.accounts.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return wrapError(err)
	}
	return expectMatched(res, apperr.ErrNotFound)
}

// ReclaimAccount overwrites an unverified account for a repeated sign-up.
func (s *Store) ReclaimAccount(ctx context.Context, id, username, passwordHash, code string, expiry time.Time) error {
	return s.update(ctx, bson.M{"_id": id, "isVerified": false}, bson.M{
		"username":         username,
		"passwordHash":     passwordHash,
		"verifyCode":       code,
		"verifyCodeExpiry": expiry.UTC(),
	})
}

// SetVerificationChallenge stores a new verification code and expiry.
func (s *Store) SetVerificationChallenge(ctx context.Context, id, code string, expiry time.Time) error {
	return s.update(ctx, bson.M{"_id": id}, bson.M{
		"verifyCode":       code,
		"verifyCodeExpiry": expiry.UTC(),
	})
}

// MarkVerified flips the account to verified.
func (s *Store) MarkVerified(ctx context.Context, id string) error {
	return s.update(ctx, bson.M{"_id": id}, bson.M{"isVerified": true})
}

// SetAcceptingMessages sets the message-acceptance flag.
func (s *Store) SetAcceptingMessages(ctx context.Context, id string, accepting bool) error {
	return s.update(ctx, bson.M{"_id": id}, bson.M{"isAcceptingMessages": accepting})
}
