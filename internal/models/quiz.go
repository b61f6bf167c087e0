package models

import (
	"github.com/google/uuid"
)

const (
	QuestionMultipleChoice = "multiple_choice"
	QuestionTyping         = "typing"
)

// Question is served by the learning engine. For multiple choice the prompt is the
// headword; for typing it is the meaning.
type Question struct {
	VocabularyID  uuid.UUID `json:"vocabulary_id"`
	CollectionID  uuid.UUID `json:"collection_id"`
	Word          string    `json:"word"`
	Phonetic      *string   `json:"phonetic"`
	Type          string    `json:"type"`
	Stage         Stage     `json:"stage"`
	Options       []string  `json:"options,omitempty"`
	CorrectAnswer string    `json:"correct_answer"`
}

type SubmitAnswerRequest struct {
	VocabularyID uuid.UUID `json:"vocabulary_id" validate:"required"`
	CollectionID uuid.UUID `json:"collection_id" validate:"required"`
	Answer       string    `json:"answer"`
	Stage        string    `json:"stage" validate:"required,oneof=first second"`
}

type GradeResult struct {
	Correct        bool           `json:"correct"`
	CorrectAnswer  string         `json:"correct_answer"`
	LearningStatus LearningStatus `json:"learning_status"`
	Message        string         `json:"message"`
}
