package models

import (
	"time"

	"github.com/google/uuid"
)

// UserProgress is the per-user aggregate. StudyTimeToday and WordsLearnedToday
// are only meaningful while LastStudyDate is today.
type UserProgress struct {
	UserID            uuid.UUID  `json:"user_id"`
	TotalWords        int        `json:"total_words"`
	LearnedWords      int        `json:"learned_words"`
	StreakDays        int        `json:"streak_days"`
	StudyTimeMinutes  int        `json:"study_time_minutes"`
	StudyTimeToday    int        `json:"study_time_today"`
	WordsLearnedToday int        `json:"words_learned_today"`
	QuizzesTaken      int        `json:"quizzes_taken"`
	CorrectAnswers    int        `json:"correct_answers"`
	TotalAnswers      int        `json:"total_answers"`
	LastStudyDate     *time.Time `json:"last_study_date"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

type StudyTimeRequest struct {
	Minutes *int `json:"minutes" validate:"required,gte=0"`
}

type QuizResultRequest struct {
	Correct *int `json:"correct" validate:"required,gte=0"`
	Total   *int `json:"total" validate:"required,gte=0"`
}
