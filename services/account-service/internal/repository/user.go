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
	ErrUserNotFound    = errors.New("user not found")
	ErrEmailTaken      = errors.New("email already registered")
	ErrNothingToUpdate = errors.New("no user fields to update")
	ErrUnknownDocument = errors.New("unknown document type")
)

// UserRepository defines the interface for user-related database operations.
//
// Every read except GetUserByEmail omits the password hash.
type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) (*model.User, error)
	GetUser(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	UpdateUser(ctx context.Context, id string, params UpdateUserParams) (*model.User, error)
	SetVerificationDocument(ctx context.Context, id string, docType model.DocumentType, documentURL string) (*model.User, error)
	RecordProfessionalTest(ctx context.Context, id string, score float64) (*model.User, error)
	UpdateLastLogin(ctx context.Context, id string) error
	Ping(ctx context.Context) error
}

// UpdateUserParams defines the optional parameters for updating a user.
// Only the fields that are not nil will be updated.
type UpdateUserParams struct {
	Name             *string
	Bio              *string
	ProfilePicture   *string
	PasswordHash     *string
	Activities       *[]string
	Education        *[]model.Education
	WorkExperience   *[]model.WorkExperience
	Age              *int
	Achievements     *[]string
	FutureGoals      *string
	IsShowcasingWork *bool
	LookingForHelp   *bool
	LookingToHire    *bool
	Skills           *[]model.Skill
	TeachingProfile  *model.TeachingProfile
}

// set returns the $set document for the non-nil fields.
func (p UpdateUserParams) set() bson.M {
	m := bson.M{}
	put := func(key string, present bool, v any) {
		if present {
			m[key] = v
		}
	}

	put("name", p.Name != nil, deref(p.Name))
	put("bio", p.Bio != nil, deref(p.Bio))
	put("profile_picture", p.ProfilePicture != nil, deref(p.ProfilePicture))
	put("password_hash", p.PasswordHash != nil, deref(p.PasswordHash))
	put("activities", p.Activities != nil, deref(p.Activities))
	put("education", p.Education != nil, deref(p.Education))
	put("work_experience", p.WorkExperience != nil, deref(p.WorkExperience))
	put("age", p.Age != nil, deref(p.Age))
	put("achievements", p.Achievements != nil, deref(p.Achievements))
	put("future_goals", p.FutureGoals != nil, deref(p.FutureGoals))
	put("is_showcasing_work", p.IsShowcasingWork != nil, deref(p.IsShowcasingWork))
	put("looking_for_help", p.LookingForHelp != nil, deref(p.LookingForHelp))
	put("looking_to_hire", p.LookingToHire != nil, deref(p.LookingToHire))
	put("skills", p.Skills != nil, deref(p.Skills))
	put("teaching_profile", p.TeachingProfile != nil, deref(p.TeachingProfile))

	return m
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

const userCollection = "users"

var withoutPassword = bson.M{"password_hash": 0}

type userMongoRepository struct {
	db *mongo.Database
}

// NewUserMongoRepository ensures the unique email index and returns the repository.
func NewUserMongoRepository(ctx context.Context, logger *zerolog.Logger, db *mongo.Database) UserRepository {
	collection := db.Collection(userCollection)

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create user indexes")
	}

	return &userMongoRepository{db: db}
}

func (r *userMongoRepository) CreateUser(ctx context.Context, user *model.User) (*model.User, error) {
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	result, err := r.db.Collection(userCollection).InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	objectID, ok := result.InsertedID.(bson.ObjectID)
	if !ok {
		return nil, errors.New("failed to convert inserted ID to ObjectID")
	}

	created := *user
	created.ID = objectID
	created.PasswordHash = ""

	return &created, nil
}

func (r *userMongoRepository) GetUser(ctx context.Context, id string) (*model.User, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrUserNotFound
	}

	result := r.db.Collection(userCollection).FindOne(
		ctx,
		bson.M{"_id": objectID},
		options.FindOne().SetProjection(withoutPassword),
	)

	return decodeUser(result)
}

func (r *userMongoRepository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return decodeUser(r.db.Collection(userCollection).FindOne(ctx, bson.M{"email": email}))
}

func (r *userMongoRepository) UpdateUser(
	ctx context.Context,
	id string,
	params UpdateUserParams,
) (*model.User, error) {
	updateMap := params.set()
	if len(updateMap) == 0 {
		return nil, ErrNothingToUpdate
	}

	updateMap["updated_at"] = time.Now().UTC()

	return r.findOneAndSet(ctx, id, updateMap)
}

// SetVerificationDocument replaces the document sub-record, so a resubmission is always unverified.
func (r *userMongoRepository) SetVerificationDocument(
	ctx context.Context,
	id string,
	docType model.DocumentType,
	documentURL string,
) (*model.User, error) {
	if !docType.Valid() {
		return nil, ErrUnknownDocument
	}

	now := time.Now().UTC()

	return r.findOneAndSet(ctx, id, bson.M{
		"verification_status." + docType.Field(): model.DocumentVerification{
			DocumentURL: documentURL,
			Verified:    false,
			SubmittedAt: &now,
		},
		"updated_at": now,
	})
}

func (r *userMongoRepository) RecordProfessionalTest(ctx context.Context, id string, score float64) (*model.User, error) {
	now := time.Now().UTC()

	return r.findOneAndSet(ctx, id, bson.M{
		"verification_status.professional_test": model.ProfessionalTest{
			Completed:   true,
			Score:       &score,
			CompletedAt: &now,
		},
		"updated_at": now,
	})
}

func (r *userMongoRepository) UpdateLastLogin(ctx context.Context, id string) error {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return ErrUserNotFound
	}

	result, err := r.db.Collection(userCollection).UpdateOne(
		ctx,
		bson.M{"_id": objectID},
		bson.M{"$set": bson.M{"last_login_at": time.Now().UTC()}},
	)
	if err != nil {
		return err
	}

	if result.MatchedCount == 0 {
		return ErrUserNotFound
	}

	return nil
}

func (r *userMongoRepository) Ping(ctx context.Context) error {
	return r.db.Client().Ping(ctx, nil)
}

func (r *userMongoRepository) findOneAndSet(ctx context.Context, id string, set bson.M) (*model.User, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrUserNotFound
	}

	result := r.db.Collection(userCollection).FindOneAndUpdate(
		ctx,
		bson.M{"_id": objectID},
		bson.M{"$set": set},
		options.FindOneAndUpdate().
			SetReturnDocument(options.After).
			SetProjection(withoutPassword),
	)

	return decodeUser(result)
}

func decodeUser(result *mongo.SingleResult) (*model.User, error) {
	if err := result.Err(); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	var user model.User
	if err := result.Decode(&user); err != nil {
		return nil, err
	}

	return &user, nil
}
