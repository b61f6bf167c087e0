package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"vocab-backend/internal/middleware"
	"vocab-backend/internal/models"
)

type userProgressService interface {
	GetOrCreate(ctx context.Context, userID uuid.UUID) (*models.UserProgress, error)
	IncrementLearnedWords(ctx context.Context, userID uuid.UUID) (*models.UserProgress, error)
	AddStudyTime(ctx context.Context, userID uuid.UUID, minutes int) (*models.UserProgress, error)
	RecordQuizResult(ctx context.Context, userID uuid.UUID, correct, total int) (*models.UserProgress, error)
}

type ProgressHandler struct {
	progress userProgressService
}

func NewProgressHandler(progress userProgressService) *ProgressHandler {
	return &ProgressHandler{progress: progress}
}

func (h *ProgressHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.progress.GetOrCreate(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *ProgressHandler) IncrementLearned(w http.ResponseWriter, r *http.Request) {
	p, err := h.progress.IncrementLearnedWords(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *ProgressHandler) AddStudyTime(w http.ResponseWriter, r *http.Request) {
	var req models.StudyTimeRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	p, err := h.progress.AddStudyTime(r.Context(), middleware.GetUserID(r.Context()), *req.Minutes)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *ProgressHandler) RecordQuizResult(w http.ResponseWriter, r *http.Request) {
	var req models.QuizResultRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	p, err := h.progress.RecordQuizResult(r.Context(), middleware.GetUserID(r.Context()), *req.Correct, *req.Total)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}
