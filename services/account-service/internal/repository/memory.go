package repository

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/vasapolrittideah/showcase-api/services/account-service/internal/model"
)

// MemoryStore keeps users and password reset tokens in process. It backs development runs without
// MongoDB and the use case tests, and behaves like the Mongo repositories: reads omit the password
// hash, emails are unique and callers never share memory with the store.
type MemoryStore struct {
	mu      sync.RWMutex
	users   map[bson.ObjectID]*model.User
	byEmail map[string]bson.ObjectID
	tokens  map[string]*model.PasswordResetToken
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:   make(map[bson.ObjectID]*model.User),
		byEmail: make(map[string]bson.ObjectID),
		tokens:  make(map[string]*model.PasswordResetToken),
	}
}

// Users returns the store as a UserRepository.
func (s *MemoryStore) Users() UserRepository {
	return (*memoryUsers)(s)
}

// PasswordResetTokens returns the store as a PasswordResetTokenRepository.
func (s *MemoryStore) PasswordResetTokens() PasswordResetTokenRepository {
	return (*memoryTokens)(s)
}

type memoryUsers MemoryStore

func (r *memoryUsers) CreateUser(_ context.Context, user *model.User) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byEmail[user.Email]; ok {
		return nil, ErrEmailTaken
	}

	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	stored, err := cloneUser(user)
	if err != nil {
		return nil, err
	}
	stored.ID = bson.NewObjectID()

	r.users[stored.ID] = stored
	r.byEmail[stored.Email] = stored.ID

	return r.public(stored)
}

func (r *memoryUsers) GetUser(_ context.Context, id string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, err := r.find(id)
	if err != nil {
		return nil, err
	}

	return r.public(user)
}

func (r *memoryUsers) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return nil, ErrUserNotFound
	}

	return cloneUser(r.users[id])
}

func (r *memoryUsers) UpdateUser(_ context.Context, id string, params UpdateUserParams) (*model.User, error) {
	if len(params.set()) == 0 {
		return nil, ErrNothingToUpdate
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	user, err := r.find(id)
	if err != nil {
		return nil, err
	}

	// Round-tripping the values through bson keeps stored state detached from the caller's slices.
	patch, err := bson.Marshal(params.set())
	if err != nil {
		return nil, err
	}
	if err := bson.Unmarshal(patch, user); err != nil {
		return nil, err
	}
	user.UpdatedAt = time.Now().UTC()

	return r.public(user)
}

func (r *memoryUsers) SetVerificationDocument(
	_ context.Context,
	id string,
	docType model.DocumentType,
	documentURL string,
) (*model.User, error) {
	if !docType.Valid() {
		return nil, ErrUnknownDocument
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	user, err := r.find(id)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	*user.VerificationStatus.Document(docType) = model.DocumentVerification{
		DocumentURL: documentURL,
		SubmittedAt: &now,
	}
	user.UpdatedAt = now

	return r.public(user)
}

func (r *memoryUsers) RecordProfessionalTest(_ context.Context, id string, score float64) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, err := r.find(id)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user.VerificationStatus.ProfessionalTest = model.ProfessionalTest{
		Completed:   true,
		Score:       &score,
		CompletedAt: &now,
	}
	user.UpdatedAt = now

	return r.public(user)
}

func (r *memoryUsers) UpdateLastLogin(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, err := r.find(id)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	user.LastLoginAt = &now

	return nil
}

func (r *memoryUsers) Ping(context.Context) error {
	return nil
}

// find must be called with the lock held.
func (r *memoryUsers) find(id string) (*model.User, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrUserNotFound
	}

	user, ok := r.users[objectID]
	if !ok {
		return nil, ErrUserNotFound
	}

	return user, nil
}

func (r *memoryUsers) public(user *model.User) (*model.User, error) {
	out, err := cloneUser(user)
	if err != nil {
		return nil, err
	}
	out.PasswordHash = ""

	return out, nil
}

func cloneUser(user *model.User) (*model.User, error) {
	raw, err := bson.Marshal(user)
	if err != nil {
		return nil, err
	}

	var out model.User
	if err := bson.Unmarshal(raw, &out); err != nil {
		return nil, err
	}

	return &out, nil
}

type memoryTokens MemoryStore

func (r *memoryTokens) CreateToken(
	_ context.Context,
	token *model.PasswordResetToken,
) (*model.PasswordResetToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	token.ID = bson.NewObjectID()
	token.Used = false
	token.CreatedAt = time.Now().UTC()

	stored := *token
	r.tokens[token.JTI] = &stored

	return token, nil
}

func (r *memoryTokens) GetTokenByJTI(_ context.Context, jti string) (*model.PasswordResetToken, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	token, ok := r.tokens[jti]
	if !ok {
		return nil, ErrTokenNotFound
	}

	out := *token
	return &out, nil
}

func (r *memoryTokens) MarkTokenAsUsed(_ context.Context, jti string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	token, ok := r.tokens[jti]
	if !ok || token.Used {
		return ErrTokenUsed
	}

	now := time.Now().UTC()
	token.Used = true
	token.UsedAt = &now

	return nil
}

func (r *memoryTokens) InvalidateUserTokens(_ context.Context, userID bson.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	for _, token := range r.tokens {
		if token.UserID == userID && !token.Used {
			token.Used = true
			token.UsedAt = &now
		}
	}

	return nil
}
