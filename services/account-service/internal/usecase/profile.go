package usecase

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/vasapolrittideah/showcase-api/services/account-service/internal/model"
	"github.com/vasapolrittideah/showcase-api/services/account-service/internal/notifier"
	"github.com/vasapolrittideah/showcase-api/services/account-service/internal/repository"
)

// AvatarWidth is the width profile pictures are scaled down to.
const AvatarWidth = 512

var (
	documentTypes = []string{"image/jpeg", "image/png", "application/pdf"}
	imageTypes    = []string{"image/jpeg", "image/png"}
)

// ObjectStore keeps uploaded files. *storage.S3Store implements it.
type ObjectStore interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader) (string, error)
	PresignURL(ctx context.Context, ref string, ttl time.Duration) (string, error)
}

// ProfileUsecase defines the profile operations of a signed-in user.
type ProfileUsecase interface {
	GetProfile(ctx context.Context, userID string) (*model.User, error)
	UpdateProfile(ctx context.Context, userID string, params UpdateProfileParams) (*model.User, error)
	SubmitVerificationDocument(
		ctx context.Context,
		userID string,
		docType model.DocumentType,
		documentURL string,
	) (*model.VerificationStatus, error)
	UploadVerificationDocument(
		ctx context.Context,
		userID string,
		docType model.DocumentType,
		file Upload,
	) (*model.VerificationStatus, error)
	DocumentURL(ctx context.Context, userID string, docType model.DocumentType) (*PresignedURL, error)
	UploadProfilePicture(ctx context.Context, userID string, file Upload) (*model.User, error)
}

// UpdateProfileParams holds the profile fields a user may change. Nil fields are left untouched.
type UpdateProfileParams struct {
	Name             *string
	Bio              *string
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

// Upload is a file received from a client.
type Upload struct {
	Filename string
	Body     io.Reader
}

// PresignedURL is a temporary read link to a stored document.
type PresignedURL struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type profileUsecase struct {
	userRepo       repository.UserRepository
	store          ObjectStore
	notifier       notifier.Notifier
	maxUploadBytes int64
	presignTTL     time.Duration
	logger         *zerolog.Logger
}

// NewProfileUsecase creates a ProfileUsecase. A nil store disables uploads and document links.
func NewProfileUsecase(
	userRepo repository.UserRepository,
	store ObjectStore,
	notifier notifier.Notifier,
	maxUploadBytes int64,
	presignTTL time.Duration,
	logger *zerolog.Logger,
) ProfileUsecase {
	return &profileUsecase{
		userRepo:       userRepo,
		store:          store,
		notifier:       notifier,
		maxUploadBytes: maxUploadBytes,
		presignTTL:     presignTTL,
		logger:         logger,
	}
}

func (u *profileUsecase) GetProfile(ctx context.Context, userID string) (*model.User, error) {
	user, err := u.userRepo.GetUser(ctx, userID)
	if err != nil {
		return nil, mapUserError(err)
	}

	return user, nil
}

func (u *profileUsecase) UpdateProfile(
	ctx context.Context,
	userID string,
	params UpdateProfileParams,
) (*model.User, error) {
	if params.Skills != nil {
		// Skill verification is granted by the verification flow, never by the profile owner.
		skills := make([]model.Skill, len(*params.Skills))
		for i, s := range *params.Skills {
			skills[i] = model.Skill{Name: s.Name, Level: s.Level}
		}
		params.Skills = &skills
	}

	user, err := u.userRepo.UpdateUser(ctx, userID, repository.UpdateUserParams{
		Name:             params.Name,
		Bio:              params.Bio,
		Activities:       params.Activities,
		Education:        params.Education,
		WorkExperience:   params.WorkExperience,
		Age:              params.Age,
		Achievements:     params.Achievements,
		FutureGoals:      params.FutureGoals,
		IsShowcasingWork: params.IsShowcasingWork,
		LookingForHelp:   params.LookingForHelp,
		LookingToHire:    params.LookingToHire,
		Skills:           params.Skills,
		TeachingProfile:  params.TeachingProfile,
	})
	if err != nil {
		return nil, mapUserError(err)
	}

	return user, nil
}

func (u *profileUsecase) SubmitVerificationDocument(
	ctx context.Context,
	userID string,
	docType model.DocumentType,
	documentURL string,
) (*model.VerificationStatus, error) {
	if !docType.Valid() {
		return nil, ErrUnknownDocument
	}

	user, err := u.userRepo.SetVerificationDocument(ctx, userID, docType, documentURL)
	if err != nil {
		return nil, mapUserError(err)
	}

	if err := u.notifier.DocumentReceived(ctx, user, docType); err != nil {
		u.logger.Warn().Err(err).Str("user_id", userID).Msg("failed to send document received email")
	}

	return &user.VerificationStatus, nil
}

func (u *profileUsecase) UploadVerificationDocument(
	ctx context.Context,
	userID string,
	docType model.DocumentType,
	file Upload,
) (*model.VerificationStatus, error) {
	if !docType.Valid() {
		return nil, ErrUnknownDocument
	}
	if u.store == nil {
		return nil, ErrStorageUnavailable
	}

	data, mime, err := u.readUpload(file, documentTypes)
	if err != nil {
		return nil, err
	}

	// Reject stale sessions before writing anything to the bucket.
	if _, err := u.userRepo.GetUser(ctx, userID); err != nil {
		return nil, mapUserError(err)
	}

	key := fmt.Sprintf("verification/%s/%s/%s%s", userID, docType, uuid.NewString(), mime.Extension())

	ref, err := u.store.Upload(ctx, key, mime.String(), bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	return u.SubmitVerificationDocument(ctx, userID, docType, ref)
}

func (u *profileUsecase) DocumentURL(
	ctx context.Context,
	userID string,
	docType model.DocumentType,
) (*PresignedURL, error) {
	if !docType.Valid() {
		return nil, ErrUnknownDocument
	}
	if u.store == nil {
		return nil, ErrStorageUnavailable
	}

	user, err := u.userRepo.GetUser(ctx, userID)
	if err != nil {
		return nil, mapUserError(err)
	}

	ref := user.VerificationStatus.Document(docType).DocumentURL
	if ref == "" {
		return nil, ErrNoDocument
	}

	url, err := u.store.PresignURL(ctx, ref, u.presignTTL)
	if err != nil {
		return nil, err
	}

	return &PresignedURL{
		URL:       url,
		ExpiresAt: time.Now().Add(u.presignTTL).UTC(),
	}, nil
}

func (u *profileUsecase) UploadProfilePicture(ctx context.Context, userID string, file Upload) (*model.User, error) {
	if u.store == nil {
		return nil, ErrStorageUnavailable
	}

	data, _, err := u.readUpload(file, imageTypes)
	if err != nil {
		return nil, err
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, ErrUnsupportedFile
	}

	if img.Bounds().Dx() > AvatarWidth {
		img = imaging.Resize(img, AvatarWidth, 0, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return nil, err
	}

	if _, err := u.userRepo.GetUser(ctx, userID); err != nil {
		return nil, mapUserError(err)
	}

	ref, err := u.store.Upload(ctx, fmt.Sprintf("avatars/%s/%s.jpg", userID, uuid.NewString()), "image/jpeg", &buf)
	if err != nil {
		return nil, err
	}

	user, err := u.userRepo.UpdateUser(ctx, userID, repository.UpdateUserParams{ProfilePicture: &ref})
	if err != nil {
		return nil, mapUserError(err)
	}

	return user, nil
}

// readUpload buffers the file, enforcing the size limit, and sniffs its type from the content.
func (u *profileUsecase) readUpload(file Upload, allowed []string) ([]byte, *mimetype.MIME, error) {
	data, err := io.ReadAll(io.LimitReader(file.Body, u.maxUploadBytes+1))
	if err != nil {
		return nil, nil, err
	}
	if int64(len(data)) > u.maxUploadBytes {
		return nil, nil, ErrFileTooLarge
	}

	mime := mimetype.Detect(data)
	if !mimetype.EqualsAny(mime.String(), allowed...) {
		return nil, nil, fmt.Errorf("%w: %s", ErrUnsupportedFile, mime.String())
	}

	return data, mime, nil
}
