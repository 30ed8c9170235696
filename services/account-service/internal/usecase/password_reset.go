package usecase

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/vasapolrittideah/showcase-api/services/account-service/internal/config"
	"github.com/vasapolrittideah/showcase-api/services/account-service/internal/model"
	"github.com/vasapolrittideah/showcase-api/services/account-service/internal/notifier"
	"github.com/vasapolrittideah/showcase-api/services/account-service/internal/repository"
	"github.com/vasapolrittideah/showcase-api/shared/auth"
	"github.com/vasapolrittideah/showcase-api/shared/security"
)

// PasswordResetUsecase defines the business logic for password reset token operations.
type PasswordResetUsecase interface {
	// RequestPasswordReset mails a reset link when email belongs to a user. It reports success either way.
	RequestPasswordReset(ctx context.Context, email string) error

	// ResetPassword sets a new password using the token from a reset link.
	ResetPassword(ctx context.Context, token, newPassword string) error

	// ValidatePasswordResetToken checks that the token from a reset link can still be redeemed.
	ValidatePasswordResetToken(ctx context.Context, token string) error
}

var (
	ErrTokenNotFound    = errors.New("password reset token not found")
	ErrTokenAlreadyUsed = errors.New("password reset token has already been used")
	ErrTokenExpired     = errors.New("password reset token has expired")
	ErrInvalidToken     = errors.New("invalid password reset token")
)

// PasswordResetClaims is the payload of a reset link token. RegisteredClaims.ID carries the JTI.
type PasswordResetClaims struct {
	UserID string `json:"uid"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

type passwordResetUsecase struct {
	userRepo  repository.UserRepository
	tokenRepo repository.PasswordResetTokenRepository
	jwtAuth   auth.JWTAuthenticator
	notifier  notifier.Notifier
	secret    string
	ttl       time.Duration
	resetURL  string
	logger    *zerolog.Logger
}

// NewPasswordResetUsecase creates a new instance of PasswordResetUsecase.
func NewPasswordResetUsecase(
	userRepo repository.UserRepository,
	tokenRepo repository.PasswordResetTokenRepository,
	notifier notifier.Notifier,
	cfg *config.AccountServiceConfig,
	logger *zerolog.Logger,
) PasswordResetUsecase {
	return &passwordResetUsecase{
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
		jwtAuth:   auth.NewJWTAuthenticator(cfg.Token.Issuer+"/password-reset", cfg.Token.Issuer),
		notifier:  notifier,
		secret:    cfg.Token.PasswordResetTokenSecret,
		ttl:       cfg.Token.PasswordResetTokenExpiresIn,
		resetURL:  cfg.AppPasswordResetURL,
		logger:    logger,
	}
}

func (u *passwordResetUsecase) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := u.userRepo.GetUserByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil
		}
		return err
	}

	if err := u.tokenRepo.InvalidateUserTokens(ctx, user.ID); err != nil {
		return err
	}

	tokenStr, jti, err := u.generatePasswordResetToken(user)
	if err != nil {
		return err
	}

	if _, err := u.tokenRepo.CreateToken(ctx, &model.PasswordResetToken{
		JTI:       jti,
		UserID:    user.ID,
		Email:     user.Email,
		ExpiresAt: time.Now().Add(u.ttl).UTC(),
	}); err != nil {
		return err
	}

	link, err := u.resetLink(tokenStr)
	if err != nil {
		return err
	}

	// A delivery failure is not reported to the caller, so the response stays the same for unknown emails.
	if err := u.notifier.PasswordReset(ctx, user.Email, link, u.ttl); err != nil {
		u.logger.Error().Err(err).Str("user_id", user.ID.Hex()).Msg("failed to send password reset email")
	}

	return nil
}

func (u *passwordResetUsecase) ResetPassword(ctx context.Context, token, newPassword string) error {
	resetToken, err := u.redeemable(ctx, token)
	if err != nil {
		return err
	}

	passwordHash, err := security.HashPassword(newPassword)
	if err != nil {
		return err
	}

	// Claim the token first so two concurrent confirmations cannot both succeed.
	if err := u.tokenRepo.MarkTokenAsUsed(ctx, resetToken.JTI); err != nil {
		if errors.Is(err, repository.ErrTokenUsed) {
			return ErrTokenAlreadyUsed
		}
		return err
	}

	if _, err := u.userRepo.UpdateUser(ctx, resetToken.UserID.Hex(), repository.UpdateUserParams{
		PasswordHash: &passwordHash,
	}); err != nil {
		return mapUserError(err)
	}

	return nil
}

func (u *passwordResetUsecase) ValidatePasswordResetToken(ctx context.Context, token string) error {
	_, err := u.redeemable(ctx, token)
	return err
}

// redeemable verifies the link token and returns its unused, unexpired record.
func (u *passwordResetUsecase) redeemable(ctx context.Context, token string) (*model.PasswordResetToken, error) {
	var claims PasswordResetClaims
	if err := u.jwtAuth.ValidateTokenWithClaims(token, u.secret, &claims); err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}
	if claims.ID == "" {
		return nil, ErrInvalidToken
	}

	resetToken, err := u.tokenRepo.GetTokenByJTI(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, repository.ErrTokenNotFound) {
			return nil, ErrTokenNotFound
		}
		return nil, err
	}

	if resetToken.UserID.Hex() != claims.UserID {
		return nil, ErrInvalidToken
	}

	if resetToken.Used {
		return nil, ErrTokenAlreadyUsed
	}

	if time.Now().After(resetToken.ExpiresAt) {
		return nil, ErrTokenExpired
	}

	return resetToken, nil
}

// generatePasswordResetToken creates a password reset JWT token with a unique JTI.
func (u *passwordResetUsecase) generatePasswordResetToken(user *model.User) (string, string, error) {
	jti, err := generateJTI()
	if err != nil {
		return "", "", err
	}

	claims := PasswordResetClaims{
		UserID:           user.ID.Hex(),
		Email:            user.Email,
		RegisteredClaims: u.jwtAuth.RegisteredClaims(user.ID.Hex(), u.ttl),
	}
	claims.ID = jti

	tokenStr, err := u.jwtAuth.GenerateToken(claims, u.secret)
	if err != nil {
		return "", "", err
	}

	return tokenStr, jti, nil
}

func (u *passwordResetUsecase) resetLink(token string) (string, error) {
	link, err := url.Parse(u.resetURL)
	if err != nil {
		return "", fmt.Errorf("parse APP_PASSWORD_RESET_URL: %w", err)
	}

	q := link.Query()
	q.Set("token", token)
	link.RawQuery = q.Encode()

	return link.String(), nil
}

// generateJTI generates a unique JTI.
func generateJTI() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
