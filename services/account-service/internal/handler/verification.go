package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vasapolrittideah/showcase-api/services/account-service/internal/model"
	"github.com/vasapolrittideah/showcase-api/services/account-service/internal/payload"
	"github.com/vasapolrittideah/showcase-api/services/account-service/internal/usecase"
	"github.com/vasapolrittideah/showcase-api/shared/response"
)

const documentSubmitted = "Document submitted for verification"

func (h *Handler) SubmitVerificationDocument(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		h.writeError(w, r, err, "submit verification document")
		return
	}

	var req payload.VerifyDocumentRequest
	if err := h.decode(w, r, &req); err != nil {
		h.writeError(w, r, err, "decode verification document")
		return
	}

	status, err := h.profileUsecase.SubmitVerificationDocument(
		r.Context(),
		uid,
		model.DocumentType(req.DocumentType),
		req.DocumentURL,
	)
	if err != nil {
		h.writeError(w, r, err, "submit verification document")
		return
	}

	response.JSON(w, http.StatusOK, payload.VerifyDocumentResponse{
		Message:            documentSubmitted,
		VerificationStatus: status,
	})
}

func (h *Handler) UploadVerificationDocument(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		h.writeError(w, r, err, "upload verification document")
		return
	}

	file, cleanup, err := h.formFile(w, r)
	if err != nil {
		h.writeError(w, r, err, "read verification document")
		return
	}
	defer cleanup()

	docType := model.DocumentType(r.FormValue("documentType"))
	if !docType.Valid() {
		h.writeError(w, r, usecase.ErrUnknownDocument, "upload verification document")
		return
	}

	status, err := h.profileUsecase.UploadVerificationDocument(r.Context(), uid, docType, file)
	if err != nil {
		h.writeError(w, r, err, "upload verification document")
		return
	}

	response.JSON(w, http.StatusOK, payload.VerifyDocumentResponse{
		Message:            documentSubmitted,
		VerificationStatus: status,
	})
}

func (h *Handler) VerificationDocumentURL(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		h.writeError(w, r, err, "get verification document")
		return
	}

	link, err := h.profileUsecase.DocumentURL(r.Context(), uid, model.DocumentType(chi.URLParam(r, "documentType")))
	if err != nil {
		h.writeError(w, r, err, "get verification document")
		return
	}

	response.JSON(w, http.StatusOK, link)
}
