package repositories

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/HSouheill/taxdesk_backend/apperrors"
	"github.com/HSouheill/taxdesk_backend/config"
	"github.com/HSouheill/taxdesk_backend/models"
)

// MongoOTPStore keeps one code per (identifier, purpose). Expired documents
// are removed by the TTL index on expiresAt.
type MongoOTPStore struct {
	coll *mongo.Collection
}

func NewMongoOTPStore(db *mongo.Database) *MongoOTPStore {
	return &MongoOTPStore{coll: db.Collection(config.OTPsCollection)}
}

func otpKey(identifier, purpose string) bson.M {
	return bson.M{"identifier": identifier, "purpose": purpose}
}

// Save replaces any previous code for the same identifier and purpose.
func (s *MongoOTPStore) Save(ctx context.Context, rec *models.OTPRecord) error {
	_, err := s.coll.ReplaceOne(ctx, otpKey(rec.Identifier, rec.Purpose), rec, options.Replace().SetUpsert(true))
	if err != nil {
		return apperrors.Internal(err)
	}
	return nil
}

// Get returns nil without error when no code exists.
func (s *MongoOTPStore) Get(ctx context.Context, identifier, purpose string) (*models.OTPRecord, error) {
	var rec models.OTPRecord
	err := s.coll.FindOne(ctx, otpKey(identifier, purpose)).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return &rec, nil
}

func (s *MongoOTPStore) IncrementAttempts(ctx context.Context, identifier, purpose string) (int, error) {
	var rec models.OTPRecord
	err := s.coll.FindOneAndUpdate(ctx,
		otpKey(identifier, purpose),
		bson.M{"$inc": bson.M{"attempts": 1}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, nil
	}
	if err != nil {
		return 0, apperrors.Internal(err)
	}
	return rec.Attempts, nil
}

// MarkUsed flips isUsed and reports whether this call was the one that did
// it, so two concurrent verifications cannot both succeed.
func (s *MongoOTPStore) MarkUsed(ctx context.Context, identifier, purpose string) (bool, error) {
	filter := otpKey(identifier, purpose)
	filter["isUsed"] = false
	res, err := s.coll.UpdateOne(ctx, filter, bson.M{"$set": bson.M{"isUsed": true}})
	if err != nil {
		return false, apperrors.Internal(err)
	}
	return res.ModifiedCount == 1, nil
}
