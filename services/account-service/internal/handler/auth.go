package handler

import (
	"net/http"

	"github.com/vasapolrittideah/showcase-api/services/account-service/internal/payload"
	"github.com/vasapolrittideah/showcase-api/services/account-service/internal/usecase"
	"github.com/vasapolrittideah/showcase-api/shared/response"
)

func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req payload.SignupRequest
	if err := h.decode(w, r, &req); err != nil {
		h.writeError(w, r, err, "decode signup request")
		return
	}

	user, err := h.authUsecase.Signup(r.Context(), usecase.SignupParams{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.writeError(w, r, err, "sign up")
		return
	}

	response.JSON(w, http.StatusCreated, payload.NewUserResponse(user))
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req payload.LoginRequest
	if err := h.decode(w, r, &req); err != nil {
		h.writeError(w, r, err, "decode login request")
		return
	}

	result, err := h.authUsecase.Login(r.Context(), usecase.LoginParams{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.writeError(w, r, err, "log in")
		return
	}

	http.SetCookie(w, h.sessions.Cookie(result.Token))
	response.JSON(w, http.StatusOK, payload.NewUserResponse(result.User))
}

func (h *Handler) Logout(w http.ResponseWriter, _ *http.Request) {
	http.SetCookie(w, h.sessions.ExpiredCookie())
	response.Message(w, http.StatusOK, "Logout successful")
}

func (h *Handler) VerifyToken(w http.ResponseWriter, r *http.Request) {
	var req payload.VerifyTokenRequest
	if err := h.decode(w, r, &req); err != nil {
		response.JSON(w, http.StatusBadRequest, payload.VerifyTokenResponse{Message: "Invalid request body"})
		return
	}

	if req.Token == "" {
		response.JSON(w, http.StatusBadRequest, payload.VerifyTokenResponse{Message: "No token provided"})
		return
	}

	claims, err := h.authUsecase.VerifyToken(r.Context(), req.Token)
	if err != nil {
		response.JSON(w, http.StatusUnauthorized, payload.VerifyTokenResponse{Message: "Invalid token"})
		return
	}

	response.JSON(w, http.StatusOK, payload.VerifyTokenResponse{IsValid: true, User: claims})
}

func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		h.writeError(w, r, err, "change password")
		return
	}

	var req payload.ChangePasswordRequest
	if err := h.decode(w, r, &req); err != nil {
		h.writeError(w, r, err, "decode change password request")
		return
	}

	if err := h.authUsecase.ChangePassword(r.Context(), uid, usecase.ChangePasswordParams{
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	}); err != nil {
		h.writeError(w, r, err, "change password")
		return
	}

	response.Message(w, http.StatusOK, "Password updated")
}
