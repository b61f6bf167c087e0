package models

import (
	"time"

	"github.com/google/uuid"
)

// VocabularyItem is owned by the vocabulary service; the learning engine only reads it.
type VocabularyItem struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Word      string    `json:"word"`
	Meaning   string    `json:"meaning"`
	Phonetic  *string   `json:"phonetic"`
	WordType  *string   `json:"word_type"`
	Example   *string   `json:"example"`
	CreatedAt time.Time `json:"created_at"`
}

type Collection struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Name      string    `json:"name"`
	IsPublic  bool      `json:"is_public"`
	CreatedAt time.Time `json:"created_at"`
}

// VocabularyWithProgress is a collection member joined with its per-collection progress.
// Items without a progress row report NOT_STARTED.
type VocabularyWithProgress struct {
	VocabularyItem
	LearningStatus LearningStatus `json:"learning_status"`
	Learned        bool           `json:"learned"`
	ReviewCount    int            `json:"review_count"`
	LastReviewedAt *time.Time     `json:"last_reviewed_at"`
}
