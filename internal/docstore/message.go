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

// AppendMessage pushes a message onto the account's embedded mailbox.
func (s *Store) AppendMessage(ctx context.Context, accountID string, msg *models.Message) error {
	stored := *msg
	stored.CreatedAt = stored.CreatedAt.UTC()

	res, err := s.accounts.UpdateOne(ctx, bson.M{"_id": accountID}, bson.M{
		"$push": bson.M{"messages": stored},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	})
	if err != nil {
		return wrapError(err)
	}
	return expectMatched(res, apperr.ErrNotFound)
}

// ListMessages returns the mailbox in receipt order.
func (s *Store) ListMessages(ctx context.Context, accountID string) ([]models.Message, error) {
	var doc struct {
		Messages []models.Message `bson:"messages"`
	}
	err := s.accounts.FindOne(ctx, bson.M{"_id": accountID},
		options.FindOne().SetProjection(bson.M{"messages": 1})).Decode(&doc)
	if err != nil {
		return nil, wrapError(err)
	}
	if doc.Messages == nil {
		return []models.Message{}, nil
	}
	return doc.Messages, nil
}

// DeleteMessage pulls one message from the account's mailbox.
func (s *Store) DeleteMessage(ctx context.Context, accountID, messageID string) error {
	res, err := s.accounts.UpdateOne(ctx,
		bson.M{"_id": accountID, "messages._id": messageID},
		bson.M{
			"$pull": bson.M{"messages": bson.M{"_id": messageID}},
			"$set":  bson.M{"updatedAt": time.Now().UTC()},
		})
	if err != nil {
		return err
	}
	return expectMatched(res, apperr.ErrMessageNotFound)
}
