package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"vocab-backend/internal/middleware"
	"vocab-backend/internal/models"
)

type collectionAccess interface {
	CollectionForUser(ctx context.Context, collectionID, userID uuid.UUID) (*models.Collection, error)
}

type learningService interface {
	collectionAccess
	NextQuestion(ctx context.Context, collectionID uuid.UUID) (*models.Question, error)
	SubmitAnswer(ctx context.Context, vocabularyID, collectionID uuid.UUID, answer, stage string) (*models.GradeResult, error)
	CollectionStats(ctx context.Context, collectionID uuid.UUID) (*models.CollectionStats, error)
	ListWithProgress(ctx context.Context, collectionID uuid.UUID) ([]models.VocabularyWithProgress, error)
	MarkLearned(ctx context.Context, vocabularyID, collectionID uuid.UUID, learned bool) (*models.ItemProgress, error)
	ToggleLearned(ctx context.Context, vocabularyID, collectionID uuid.UUID) (*models.ItemProgress, error)
}

type LearningHandler struct {
	learning learningService
}

func NewLearningHandler(learning learningService) *LearningHandler {
	return &LearningHandler{learning: learning}
}

// authorize resolves the collection for the caller and writes the error response
// when it is missing or not accessible.
func (h *LearningHandler) authorize(w http.ResponseWriter, r *http.Request, collectionID uuid.UUID) bool {
	userID := middleware.GetUserID(r.Context())
	if _, err := h.learning.CollectionForUser(r.Context(), collectionID, userID); err != nil {
		handleServiceError(w, r, err)
		return false
	}
	return true
}

func (h *LearningHandler) Next(w http.ResponseWriter, r *http.Request) {
	collectionID, ok := parseUUIDParam(w, r, "collectionId", "collection ID")
	if !ok || !h.authorize(w, r, collectionID) {
		return
	}

	question, err := h.learning.NextQuestion(r.Context(), collectionID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	if question == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	writeJSON(w, http.StatusOK, question)
}

func (h *LearningHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req models.SubmitAnswerRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	if !h.authorize(w, r, req.CollectionID) {
		return
	}

	result, err := h.learning.SubmitAnswer(r.Context(), req.VocabularyID, req.CollectionID, req.Answer, req.Stage)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *LearningHandler) Stats(w http.ResponseWriter, r *http.Request) {
	collectionID, ok := parseUUIDParam(w, r, "collectionId", "collection ID")
	if !ok || !h.authorize(w, r, collectionID) {
		return
	}

	stats, err := h.learning.CollectionStats(r.Context(), collectionID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

func (h *LearningHandler) ListVocabulary(w http.ResponseWriter, r *http.Request) {
	collectionID, ok := parseUUIDParam(w, r, "id", "collection ID")
	if !ok || !h.authorize(w, r, collectionID) {
		return
	}

	items, err := h.learning.ListWithProgress(r.Context(), collectionID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"items": items,
		"total": len(items),
	})
}

func (h *LearningHandler) MarkLearned(w http.ResponseWriter, r *http.Request) {
	collectionID, ok := parseUUIDParam(w, r, "id", "collection ID")
	if !ok {
		return
	}
	vocabularyID, ok := parseUUIDParam(w, r, "vocabularyId", "vocabulary ID")
	if !ok {
		return
	}

	var req models.MarkLearnedRequest
	if !decodeAndValidate(w, r, &req) || !h.authorize(w, r, collectionID) {
		return
	}

	progress, err := h.learning.MarkLearned(r.Context(), vocabularyID, collectionID, *req.Learned)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, progress)
}

func (h *LearningHandler) ToggleLearned(w http.ResponseWriter, r *http.Request) {
	collectionID, ok := parseUUIDParam(w, r, "id", "collection ID")
	if !ok {
		return
	}
	vocabularyID, ok := parseUUIDParam(w, r, "vocabularyId", "vocabulary ID")
	if !ok || !h.authorize(w, r, collectionID) {
		return
	}

	progress, err := h.learning.ToggleLearned(r.Context(), vocabularyID, collectionID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, progress)
}
