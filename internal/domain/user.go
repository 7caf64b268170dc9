package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is a registered identity. Email is globally unique across live users;
// username is not. OTP and OTPExpiresAt hold the outstanding password-reset
// code, if any: a non-nil OTP implies a non-nil expiry.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username     string             `bson:"username" json:"username"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"password" json:"-"`
	OTP          *string            `bson:"otp,omitempty" json:"-"`
	OTPExpiresAt *time.Time         `bson:"otp_expires_at,omitempty" json:"-"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
}

// ArchivedUser is the retained copy of a deleted User, keyed by email with
// overwrite-on-conflict semantics. Never mutated after the upsert, never
// expires.
type ArchivedUser struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username     string             `bson:"username" json:"username"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"password" json:"-"`
	DeletedAt    time.Time          `bson:"deleted_at" json:"deleted_at"`
}

// Media records a blob-store upload.
type Media struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	URL        string             `bson:"url" json:"url"`
	Filename   string             `bson:"filename" json:"filename"`
	UploadedAt time.Time          `bson:"uploaded_at" json:"uploaded_at"`
}
