package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// PasswordResetToken records one issued reset link. The link's JWT carries JTI; this record makes it
// single use and lets a newer request void older links.
type PasswordResetToken struct {
	ID        bson.ObjectID `bson:"_id,omitempty"`
	UserID    bson.ObjectID `bson:"user_id"`
	JTI       string        `bson:"jti"`
	Email     string        `bson:"email"`
	Used      bool          `bson:"used"`
	UsedAt    *time.Time    `bson:"used_at,omitempty"`
	ExpiresAt time.Time     `bson:"expires_at"`
	CreatedAt time.Time     `bson:"created_at"`
}
