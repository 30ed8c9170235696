package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/vasapolrittideah/showcase-api/services/account-service/internal/model"
	"github.com/vasapolrittideah/showcase-api/services/account-service/internal/notifier"
	"github.com/vasapolrittideah/showcase-api/services/account-service/internal/repository"
	"github.com/vasapolrittideah/showcase-api/services/account-service/internal/session"
	"github.com/vasapolrittideah/showcase-api/shared/security"
)

// AuthUsecase defines the interface for authentication-related use cases.
type AuthUsecase interface {
	Signup(ctx context.Context, params SignupParams) (*model.User, error)
	Login(ctx context.Context, params LoginParams) (*LoginResult, error)
	VerifyToken(ctx context.Context, token string) (*session.Claims, error)
	ChangePassword(ctx context.Context, userID string, params ChangePasswordParams) error
}

// SignupParams defines the parameters for user registration.
type SignupParams struct {
	Name     string
	Email    string
	Password string
}

// LoginParams defines the parameters for user login.
type LoginParams struct {
	Email    string
	Password string
}

// LoginResult is the authenticated user and the session token issued for them.
type LoginResult struct {
	User  *model.User
	Token string
}

// ChangePasswordParams defines the parameters for a password change by a signed-in user.
type ChangePasswordParams struct {
	CurrentPassword string
	NewPassword     string
}

type authUsecase struct {
	userRepo repository.UserRepository
	sessions *session.Manager
	notifier notifier.Notifier
	logger   *zerolog.Logger
}

func NewAuthUsecase(
	userRepo repository.UserRepository,
	sessions *session.Manager,
	notifier notifier.Notifier,
	logger *zerolog.Logger,
) AuthUsecase {
	return &authUsecase{
		userRepo: userRepo,
		sessions: sessions,
		notifier: notifier,
		logger:   logger,
	}
}

// NormalizeEmail is the stored form of an address: trimmed and lower-cased.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (u *authUsecase) Signup(ctx context.Context, params SignupParams) (*model.User, error) {
	passwordHash, err := security.HashPassword(params.Password)
	if err != nil {
		return nil, err
	}

	user, err := u.userRepo.CreateUser(ctx, model.NewUser(
		strings.TrimSpace(params.Name),
		NormalizeEmail(params.Email),
		passwordHash,
	))
	if err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return nil, ErrUserAlreadyExists
		}

		return nil, err
	}

	if err := u.notifier.Welcome(ctx, user); err != nil {
		u.logger.Warn().Err(err).Str("user_id", user.ID.Hex()).Msg("failed to send welcome email")
	}

	return user, nil
}

func (u *authUsecase) Login(ctx context.Context, params LoginParams) (*LoginResult, error) {
	user, err := u.userRepo.GetUserByEmail(ctx, NormalizeEmail(params.Email))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}

		return nil, err
	}

	if ok, err := security.VerifyPassword(params.Password, user.PasswordHash); err != nil {
		return nil, err
	} else if !ok {
		return nil, ErrInvalidCredentials
	}

	if err := u.userRepo.UpdateLastLogin(ctx, user.ID.Hex()); err != nil {
		return nil, err
	}

	token, err := u.sessions.Issue(user.ID.Hex())
	if err != nil {
		return nil, err
	}

	user.PasswordHash = ""

	return &LoginResult{
		User:  user,
		Token: token,
	}, nil
}

func (u *authUsecase) VerifyToken(_ context.Context, token string) (*session.Claims, error) {
	return u.sessions.Verify(token)
}

func (u *authUsecase) ChangePassword(ctx context.Context, userID string, params ChangePasswordParams) error {
	profile, err := u.userRepo.GetUser(ctx, userID)
	if err != nil {
		return mapUserError(err)
	}

	user, err := u.userRepo.GetUserByEmail(ctx, profile.Email)
	if err != nil {
		return mapUserError(err)
	}

	if ok, err := security.VerifyPassword(params.CurrentPassword, user.PasswordHash); err != nil {
		return err
	} else if !ok {
		return ErrPasswordMismatch
	}

	passwordHash, err := security.HashPassword(params.NewPassword)
	if err != nil {
		return err
	}

	_, err = u.userRepo.UpdateUser(ctx, userID, repository.UpdateUserParams{PasswordHash: &passwordHash})
	return mapUserError(err)
}

func mapUserError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrUserNotFound):
		return ErrUserNotFound
	case errors.Is(err, repository.ErrNothingToUpdate):
		return ErrNothingToUpdate
	case errors.Is(err, repository.ErrUnknownDocument):
		return ErrUnknownDocument
	default:
		return err
	}
}
