package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/clubhub-app/backend/internal/domain"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrDuplicateEmail    = errors.New("email already registered")
	ErrMongoUnavailable  = errors.New("mongo unavailable")
	ErrNoOutstandingCode = errors.New("no outstanding code")
)

// UserStore persists live identities in the `users` collection. Email carries
// a unique index; the reset OTP lives inline on the user document.
type UserStore struct {
	coll *mongo.Collection
}

func NewUserStore(db *mongo.Database) *UserStore {
	return &UserStore{coll: db.Collection("users")}
}

// EnsureIndexes creates the unique email index. Call once at startup.
func (s *UserStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMongoUnavailable, err)
	}
	return nil
}

// Create inserts a new identity. A unique-index violation on email is
// reported as ErrDuplicateEmail; the check happens at write time, not before.
func (s *UserStore) Create(ctx context.Context, user *domain.User) error {
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}

	if _, err := s.coll.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("%w: %v", ErrMongoUnavailable, err)
	}
	return nil
}

func (s *UserStore) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.findOne(ctx, bson.M{"email": email})
}

// FindByUsernameOrEmail resolves a login identifier; first match wins.
func (s *UserStore) FindByUsernameOrEmail(ctx context.Context, identifier string) (*domain.User, error) {
	return s.findOne(ctx, bson.M{"$or": bson.A{
		bson.M{"username": identifier},
		bson.M{"email": identifier},
	}})
}

func (s *UserStore) FindByID(ctx context.Context, id string) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrUserNotFound
	}
	return s.findOne(ctx, bson.M{"_id": oid})
}

func (s *UserStore) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	var user domain.User
	if err := s.coll.FindOne(ctx, filter).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrMongoUnavailable, err)
	}
	return &user, nil
}

// Upsert implements the otp.Ledger contract on the inline reset-OTP fields.
// A fresh code overwrites any outstanding one for the same email.
func (s *UserStore) Upsert(ctx context.Context, email, code string, ttl time.Duration) error {
	expires := time.Now().Add(ttl)
	res, err := s.coll.UpdateOne(ctx,
		bson.M{"email": email},
		bson.M{"$set": bson.M{"otp": code, "otp_expires_at": expires}},
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMongoUnavailable, err)
	}
	if res.MatchedCount == 0 {
		return ErrUserNotFound
	}
	return nil
}

// ConsumeResetOTP clears the inline OTP fields iff the stored code still
// equals code. The conditional filter makes consumption a single atomic
// compare-and-clear: of two concurrent verifies, exactly one matches.
func (s *UserStore) ConsumeResetOTP(ctx context.Context, email, code string) error {
	res, err := s.coll.UpdateOne(ctx,
		bson.M{"email": email, "otp": code},
		bson.M{"$set": bson.M{"otp": nil, "otp_expires_at": nil}},
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMongoUnavailable, err)
	}
	if res.MatchedCount == 0 {
		return ErrNoOutstandingCode
	}
	return nil
}

// UpdatePassword replaces the stored credential for email.
func (s *UserStore) UpdatePassword(ctx context.Context, email, passwordHash string) error {
	res, err := s.coll.UpdateOne(ctx,
		bson.M{"email": email},
		bson.M{"$set": bson.M{"password": passwordHash}},
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMongoUnavailable, err)
	}
	if res.MatchedCount == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (s *UserStore) List(ctx context.Context) ([]domain.User, error) {
	cur, err := s.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMongoUnavailable, err)
	}
	defer cur.Close(ctx)

	var users []domain.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMongoUnavailable, err)
	}
	return users, nil
}

// Delete removes the live identity by id. Returns ErrUserNotFound when no
// document matched.
func (s *UserStore) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrUserNotFound
	}
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMongoUnavailable, err)
	}
	if res.DeletedCount == 0 {
		return ErrUserNotFound
	}
	return nil
}
