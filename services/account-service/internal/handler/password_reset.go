package handler

import (
	"net/http"

	"github.com/vasapolrittideah/showcase-api/services/account-service/internal/payload"
	"github.com/vasapolrittideah/showcase-api/shared/response"
)

func (h *Handler) RequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req payload.PasswordResetRequest
	if err := h.decode(w, r, &req); err != nil {
		h.writeError(w, r, err, "decode password reset request")
		return
	}

	if err := h.passwordResetUsecase.RequestPasswordReset(r.Context(), req.Email); err != nil {
		h.writeError(w, r, err, "request password reset")
		return
	}

	response.Message(w, http.StatusOK, "If that email is registered, a reset link is on its way")
}

func (h *Handler) ValidatePasswordResetToken(w http.ResponseWriter, r *http.Request) {
	var req payload.PasswordResetTokenRequest
	if err := h.decode(w, r, &req); err != nil {
		h.writeError(w, r, err, "decode password reset token")
		return
	}

	if err := h.passwordResetUsecase.ValidatePasswordResetToken(r.Context(), req.Token); err != nil {
		h.writeError(w, r, err, "validate password reset token")
		return
	}

	response.Message(w, http.StatusOK, "Password reset token is valid")
}

func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req payload.PasswordResetConfirmRequest
	if err := h.decode(w, r, &req); err != nil {
		h.writeError(w, r, err, "decode password reset confirmation")
		return
	}

	if err := h.passwordResetUsecase.ResetPassword(r.Context(), req.Token, req.NewPassword); err != nil {
		h.writeError(w, r, err, "reset password")
		return
	}

	response.Message(w, http.StatusOK, "Password has been reset")
}
