package handler

import (
	"errors"
	"net/http"

	"github.com/vasapolrittideah/showcase-api/services/account-service/internal/payload"
	"github.com/vasapolrittideah/showcase-api/services/account-service/internal/usecase"
	"github.com/vasapolrittideah/showcase-api/shared/response"
)

// multipartMemory is how much of a multipart form is held in memory before spilling to disk.
const multipartMemory = 4 << 20

func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		h.writeError(w, r, err, "get profile")
		return
	}

	user, err := h.profileUsecase.GetProfile(r.Context(), uid)
	if err != nil {
		h.writeError(w, r, err, "get profile")
		return
	}

	response.JSON(w, http.StatusOK, user)
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		h.writeError(w, r, err, "update profile")
		return
	}

	var req payload.UpdateProfileRequest
	if err := h.decode(w, r, &req); err != nil {
		h.writeError(w, r, err, "decode profile update")
		return
	}

	user, err := h.profileUsecase.UpdateProfile(r.Context(), uid, req.Params())
	if err != nil {
		h.writeError(w, r, err, "update profile")
		return
	}

	response.JSON(w, http.StatusOK, user)
}

func (h *Handler) UploadProfilePicture(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		h.writeError(w, r, err, "upload profile picture")
		return
	}

	file, cleanup, err := h.formFile(w, r)
	if err != nil {
		h.writeError(w, r, err, "read profile picture")
		return
	}
	defer cleanup()

	user, err := h.profileUsecase.UploadProfilePicture(r.Context(), uid, file)
	if err != nil {
		h.writeError(w, r, err, "upload profile picture")
		return
	}

	response.JSON(w, http.StatusOK, user)
}

// formFile returns the "file" part of a multipart request. The body is capped a little above the
// upload limit so oversized files fail before they are fully read.
func (h *Handler) formFile(w http.ResponseWriter, r *http.Request) (usecase.Upload, func(), error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+multipartMemory)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return usecase.Upload{}, nil, usecase.ErrFileTooLarge
		}
		return usecase.Upload{}, nil, errInvalidBody
	}

	cleanup := func() {
		_ = r.MultipartForm.RemoveAll()
	}

	f, header, err := r.FormFile("file")
	if err != nil {
		cleanup()
		return usecase.Upload{}, nil, errInvalidBody
	}

	return usecase.Upload{Filename: header.Filename, Body: f}, func() {
		_ = f.Close()
		cleanup()
	}, nil
}
