package repository

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/vasapolrittideah/showcase-api/services/account-service/internal/model"
)

var (
	ErrTokenNotFound = errors.New("password reset token not found")
	ErrTokenUsed     = errors.New("password reset token already used")
)

// PasswordResetTokenRepository defines the interface for password reset token operations.
type PasswordResetTokenRepository interface {
	// CreateToken stores a newly issued token.
	CreateToken(ctx context.Context, token *model.PasswordResetToken) (*model.PasswordResetToken, error)

	// GetTokenByJTI retrieves a token by its JTI.
	GetTokenByJTI(ctx context.Context, jti string) (*model.PasswordResetToken, error)

	// MarkTokenAsUsed flips an unused token to used. It fails with ErrTokenUsed if another
	// request got there first, so a link can be redeemed once.
	MarkTokenAsUsed(ctx context.Context, jti string) error

	// InvalidateUserTokens marks every unused token of the user as used.
	InvalidateUserTokens(ctx context.Context, userID bson.ObjectID) error
}

const passwordResetTokenCollection = "password_reset_tokens"

type passwordResetTokenMongoRepository struct {
	db *mongo.Database
}

// NewPasswordResetTokenMongoRepository creates a new MongoDB repository for password reset tokens.
// Expired tokens are removed by a TTL index.
func NewPasswordResetTokenMongoRepository(
	ctx context.Context,
	logger *zerolog.Logger,
	db *mongo.Database,
) PasswordResetTokenRepository {
	collection := db.Collection(passwordResetTokenCollection)

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "jti", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "used", Value: 1}},
		},
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create password reset token indexes")
	}

	return &passwordResetTokenMongoRepository{
		db: db,
	}
}

func (r *passwordResetTokenMongoRepository) CreateToken(
	ctx context.Context,
	token *model.PasswordResetToken,
) (*model.PasswordResetToken, error) {
	token.CreatedAt = time.Now().UTC()
	token.Used = false

	result, err := r.db.Collection(passwordResetTokenCollection).InsertOne(ctx, token)
	if err != nil {
		return nil, err
	}

	if objectID, ok := result.InsertedID.(bson.ObjectID); ok {
		token.ID = objectID
	}

	return token, nil
}

func (r *passwordResetTokenMongoRepository) GetTokenByJTI(
	ctx context.Context,
	jti string,
) (*model.PasswordResetToken, error) {
	var token model.PasswordResetToken
	err := r.db.Collection(passwordResetTokenCollection).FindOne(ctx, bson.M{"jti": jti}).Decode(&token)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrTokenNotFound
		}
		return nil, err
	}

	return &token, nil
}

func (r *passwordResetTokenMongoRepository) MarkTokenAsUsed(ctx context.Context, jti string) error {
	now := time.Now().UTC()

	result, err := r.db.Collection(passwordResetTokenCollection).UpdateOne(
		ctx,
		bson.M{"jti": jti, "used": false},
		bson.M{"$set": bson.M{"used": true, "used_at": now}},
	)
	if err != nil {
		return err
	}

	if result.MatchedCount == 0 {
		return ErrTokenUsed
	}

	return nil
}

func (r *passwordResetTokenMongoRepository) InvalidateUserTokens(ctx context.Context, userID bson.ObjectID) error {
	_, err := r.db.Collection(passwordResetTokenCollection).UpdateMany(
		ctx,
		bson.M{"user_id": userID, "used": false},
		bson.M{"$set": bson.M{"used": true, "used_at": time.Now().UTC()}},
	)
	return err
}
