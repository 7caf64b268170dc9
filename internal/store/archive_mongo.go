package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/clubhub-app/backend/internal/domain"
)

// ArchiveStore retains copies of deleted identities in `deleted_users`,
// keyed by email. Re-deleting an account with the same email overwrites the
// prior entry rather than producing duplicates.
type ArchiveStore struct {
	coll *mongo.Collection
}

func NewArchiveStore(db *mongo.Database) *ArchiveStore {
	return &ArchiveStore{coll: db.Collection("deleted_users")}
}

func (s *ArchiveStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMongoUnavailable, err)
	}
	return nil
}

func (s *ArchiveStore) Upsert(ctx context.Context, archived domain.ArchivedUser) error {
	_, err := s.coll.UpdateOne(ctx,
		bson.M{"email": archived.Email},
		bson.M{"$set": bson.M{
			"username":   archived.Username,
			"email":      archived.Email,
			"password":   archived.PasswordHash,
			"deleted_at": archived.DeletedAt,
		}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMongoUnavailable, err)
	}
	return nil
}
