package models

import (
	"time"

	"github.com/google/uuid"
)

type LearningStatus string

const (
	StatusNotStarted LearningStatus = "NOT_STARTED"
	StatusLearning   LearningStatus = "LEARNING"
	StatusMastered   LearningStatus = "MASTERED"
)

// Stage identifies which graded test a submission belongs to.
type Stage string

const (
	StageFirst  Stage = "first"  // multiple choice, meaning recognition
	StageSecond Stage = "second" // typing recall
)

func ParseStage(s string) (Stage, bool) {
	switch Stage(s) {
	case StageFirst, StageSecond:
		return Stage(s), true
	}
	return "", false
}

// ItemProgress tracks one (vocabulary, collection) pair.
type ItemProgress struct {
	ID                   uuid.UUID      `json:"id"`
	VocabularyID         uuid.UUID      `json:"vocabulary_id"`
	CollectionID         uuid.UUID      `json:"collection_id"`
	LearningStatus       LearningStatus `json:"learning_status"`
	Learned              bool           `json:"learned"`
	FirstAttemptCorrect  bool           `json:"first_attempt_correct"`
	SecondAttemptCorrect bool           `json:"second_attempt_correct"`
	ReviewCount          int            `json:"review_count"`
	LastReviewedAt       *time.Time     `json:"last_reviewed_at"`
	CreatedAt            time.Time      `json:"created_at"`
	UpdatedAt            time.Time      `json:"updated_at"`
}

type CollectionStats struct {
	NotStarted int `json:"notStarted"`
	Learning   int `json:"learning"`
	Mastered   int `json:"mastered"`
	Total      int `json:"total"`
}

type MarkLearnedRequest struct {
	Learned *bool `json:"learned" validate:"required"`
}
