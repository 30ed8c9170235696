package usecase

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrUnauthenticated    = errors.New("not authenticated")
	ErrUserNotFound       = errors.New("user not found")
	ErrPasswordMismatch   = errors.New("current password is incorrect")
	ErrNothingToUpdate    = errors.New("no profile fields to update")
	ErrUnknownDocument    = errors.New("unknown document type")
)

var (
	ErrStorageUnavailable = errors.New("file storage is not configured")
	ErrUnsupportedFile    = errors.New("unsupported file type")
	ErrFileTooLarge       = errors.New("file is too large")
	ErrNoDocument         = errors.New("no document submitted")
)

var ErrAnswerCount = errors.New("answer count does not match question count")
