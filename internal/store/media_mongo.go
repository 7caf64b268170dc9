package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/clubhub-app/backend/internal/domain"
)

// MediaStore records blob-store uploads in the `media` collection.
type MediaStore struct {
	coll *mongo.Collection
}

func NewMediaStore(db *mongo.Database) *MediaStore {
	return &MediaStore{coll: db.Collection("media")}
}

func (s *MediaStore) Insert(ctx context.Context, media *domain.Media) error {
	if media.ID.IsZero() {
		media.ID = primitive.NewObjectID()
	}
	if media.UploadedAt.IsZero() {
		media.UploadedAt = time.Now()
	}
	if _, err := s.coll.InsertOne(ctx, media); err != nil {
		return fmt.Errorf("%w: %v", ErrMongoUnavailable, err)
	}
	return nil
}

func (s *MediaStore) List(ctx context.Context) ([]domain.Media, error) {
	opts := options.Find().SetSort(bson.D{{Key: "uploaded_at", Value: -1}})
	cur, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMongoUnavailable, err)
	}
	defer cur.Close(ctx)

	var media []domain.Media
	if err := cur.All(ctx, &media); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMongoUnavailable, err)
	}
	return media, nil
}
