package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/vasapolrittideah/showcase-api/services/account-service/internal/session"
	"github.com/vasapolrittideah/showcase-api/services/account-service/internal/usecase"
	"github.com/vasapolrittideah/showcase-api/shared/middleware"
	"github.com/vasapolrittideah/showcase-api/shared/response"
	"github.com/vasapolrittideah/showcase-api/shared/validation"
)

const maxJSONBodyBytes = 1 << 20

var (
	errInvalidBody = errors.New("invalid request body")
	errNoUser      = errors.New("no user in request context")
)

// Handler serves the account HTTP API.
type Handler struct {
	authUsecase          usecase.AuthUsecase
	profileUsecase       usecase.ProfileUsecase
	quizUsecase          usecase.QuizUsecase
	passwordResetUsecase usecase.PasswordResetUsecase
	sessions             *session.Manager
	validator            *validation.Validator
	maxUploadBytes       int64
	logger               *zerolog.Logger
}

// Usecases groups the business logic the handler delegates to.
type Usecases struct {
	Auth          usecase.AuthUsecase
	Profile       usecase.ProfileUsecase
	Quiz          usecase.QuizUsecase
	PasswordReset usecase.PasswordResetUsecase
}

func NewHandler(
	usecases Usecases,
	sessions *session.Manager,
	validator *validation.Validator,
	maxUploadBytes int64,
	logger *zerolog.Logger,
) *Handler {
	return &Handler{
		authUsecase:          usecases.Auth,
		profileUsecase:       usecases.Profile,
		quizUsecase:          usecases.Quiz,
		passwordResetUsecase: usecases.PasswordReset,
		sessions:             sessions,
		validator:            validator,
		maxUploadBytes:       maxUploadBytes,
		logger:               logger,
	}
}

// decode reads a JSON body into v and validates it.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) error {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: empty body", errInvalidBody)
		}
		return fmt.Errorf("%w: %w", errInvalidBody, err)
	}

	return h.validator.Struct(v)
}

func userID(r *http.Request) (string, error) {
	id, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		return "", errNoUser
	}
	return id, nil
}

// writeError maps err to a status and message. Unexpected errors are logged and hidden from the client.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error, action string) {
	status, msg := errorStatus(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error().
			Err(err).
			Str("request_id", middleware.RequestIDFromContext(r.Context())).
			Msg("failed to " + action)
	}

	response.Message(w, status, msg)
}

func errorStatus(err error) (int, string) {
	var validationErrs validation.Errors
	var maxBytesErr *http.MaxBytesError

	switch {
	case errors.As(err, &validationErrs):
		return http.StatusBadRequest, validationErrs.Error()
	case errors.As(err, &maxBytesErr):
		return http.StatusRequestEntityTooLarge, "Request body is too large"
	case errors.Is(err, errInvalidBody):
		return http.StatusBadRequest, "Invalid request body"
	case errors.Is(err, errNoUser), errors.Is(err, usecase.ErrUnauthenticated):
		return http.StatusUnauthorized, "Not authenticated"
	case errors.Is(err, usecase.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid credentials"
	case errors.Is(err, usecase.ErrUserAlreadyExists):
		return http.StatusBadRequest, "User already exists"
	case errors.Is(err, usecase.ErrUserNotFound):
		return http.StatusNotFound, "User not found"
	case errors.Is(err, usecase.ErrPasswordMismatch):
		return http.StatusUnauthorized, "Current password is incorrect"
	case errors.Is(err, usecase.ErrNothingToUpdate):
		return http.StatusBadRequest, "No profile fields to update"
	case errors.Is(err, usecase.ErrUnknownDocument):
		return http.StatusBadRequest, "Unknown document type"
	case errors.Is(err, usecase.ErrNoDocument):
		return http.StatusNotFound, "No document submitted"
	case errors.Is(err, usecase.ErrStorageUnavailable):
		return http.StatusServiceUnavailable, "File storage is not configured"
	case errors.Is(err, usecase.ErrUnsupportedFile):
		return http.StatusBadRequest, "Unsupported file type"
	case errors.Is(err, usecase.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge, "File is too large"
	case errors.Is(err, usecase.ErrAnswerCount):
		return http.StatusBadRequest, "Answer every question exactly once"
	case errors.Is(err, usecase.ErrTokenNotFound):
		return http.StatusNotFound, "Password reset token not found"
	case errors.Is(err, usecase.ErrTokenAlreadyUsed):
		return http.StatusConflict, "Password reset token has already been used"
	case errors.Is(err, usecase.ErrTokenExpired):
		return http.StatusUnauthorized, "Password reset token has expired"
	case errors.Is(err, usecase.ErrInvalidToken):
		return http.StatusUnauthorized, "Invalid password reset token"
	default:
		return http.StatusInternalServerError, "something went wrong"
	}
}
