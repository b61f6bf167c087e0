package models

import (
	"github.com/google/uuid"
)

// WebSocket message types
const (
	EventItemProgress = "item_progress"
	EventUserProgress = "user_progress"
)

type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

type ItemProgressEvent struct {
	VocabularyID   uuid.UUID      `json:"vocabulary_id"`
	CollectionID   uuid.UUID      `json:"collection_id"`
	LearningStatus LearningStatus `json:"learning_status"`
	Learned        bool           `json:"learned"`
	ReviewCount    int            `json:"review_count"`
}

// API Error response
type APIError struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"request_id"`
}

type ErrorResponse struct {
	Error APIError `json:"error"`
}
