package handler

import (
	"net/http"

	"github.com/vasapolrittideah/showcase-api/services/account-service/internal/payload"
	"github.com/vasapolrittideah/showcase-api/shared/response"
)

func (h *Handler) QuizQuestions(w http.ResponseWriter, _ *http.Request) {
	response.JSON(w, http.StatusOK, payload.QuizQuestionsResponse{Questions: h.quizUsecase.Questions()})
}

func (h *Handler) SubmitProfessionalTest(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		h.writeError(w, r, err, "submit professional test")
		return
	}

	var req payload.QuizSubmissionRequest
	if err := h.decode(w, r, &req); err != nil {
		h.writeError(w, r, err, "decode professional test")
		return
	}

	result, err := h.quizUsecase.Submit(r.Context(), uid, req.Answers)
	if err != nil {
		h.writeError(w, r, err, "submit professional test")
		return
	}

	response.JSON(w, http.StatusOK, payload.QuizSubmissionResponse{
		Message:    "Professional test submitted",
		QuizResult: result,
	})
}
