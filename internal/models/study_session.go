package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type StudySession struct {
	ID              uuid.UUID       `json:"id"`
	UserID          uuid.UUID       `json:"user_id"`
	CollectionID    uuid.UUID       `json:"collection_id"`
	StartedAt       time.Time       `json:"started_at"`
	LastHeartbeatAt time.Time       `json:"last_heartbeat_at"`
	EndedAt         *time.Time      `json:"ended_at,omitempty"`
	DurationSeconds int             `json:"duration_seconds"`
	ClientMetaJSON  json.RawMessage `json:"client_meta"`
	CreatedAt       time.Time       `json:"created_at"`
}

type StartStudySessionRequest struct {
	CollectionID uuid.UUID       `json:"collection_id" validate:"required"`
	ClientMeta   json.RawMessage `json:"client_meta"`
}
