package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"vocab-backend/internal/middleware"
	"vocab-backend/internal/models"
)

type studySessionService interface {
	Start(ctx context.Context, userID, collectionID uuid.UUID, clientMeta json.RawMessage) (*models.StudySession, error)
	Heartbeat(ctx context.Context, sessionID, userID uuid.UUID) error
	Stop(ctx context.Context, sessionID, userID uuid.UUID) (int, error)
}

type StudySessionHandler struct {
	sessions    studySessionService
	collections collectionAccess
}

func NewStudySessionHandler(sessions studySessionService, collections collectionAccess) *StudySessionHandler {
	return &StudySessionHandler{sessions: sessions, collections: collections}
}

func (h *StudySessionHandler) Start(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req models.StartStudySessionRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if _, err := h.collections.CollectionForUser(r.Context(), req.CollectionID, userID); err != nil {
		handleServiceError(w, r, err)
		return
	}

	session, err := h.sessions.Start(r.Context(), userID, req.CollectionID, req.ClientMeta)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"session": session,
	})
}

func (h *StudySessionHandler) Heartbeat(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := parseUUIDParam(w, r, "id", "session ID")
	if !ok {
		return
	}

	if err := h.sessions.Heartbeat(r.Context(), sessionID, middleware.GetUserID(r.Context())); err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Heartbeat recorded"})
}

func (h *StudySessionHandler) Stop(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := parseUUIDParam(w, r, "id", "session ID")
	if !ok {
		return
	}

	minutes, err := h.sessions.Stop(r.Context(), sessionID, middleware.GetUserID(r.Context()))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":          "Study session stopped",
		"credited_minutes": minutes,
	})
}
