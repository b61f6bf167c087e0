package services

import (
	"strings"
	"time"

	"vocab-backend/internal/models"
)

const (
	msgFirstCorrect  = "Correct! Now let's practice typing this word."
	msgFirstWrong    = "Incorrect. Try again!"
	msgSecondCorrect = "Excellent! You've mastered this word!"
	msgSecondWrong   = "Not quite right. Keep practicing!"
)

// answersMatch compares ignoring surrounding whitespace and case.
func answersMatch(submitted, expected string) bool {
	return strings.EqualFold(strings.TrimSpace(submitted), strings.TrimSpace(expected))
}

// expectedAnswer is the meaning for the recognition stage and the headword for recall.
func expectedAnswer(item *models.VocabularyItem, stage models.Stage) string {
	if stage == models.StageFirst {
		return item.Meaning
	}
	return item.Word
}

// applyGrade advances p according to the submitted stage alone; the row's current
// status is not consulted. It returns the learner-facing message.
func applyGrade(p *models.ItemProgress, stage models.Stage, correct bool, now time.Time) string {
	var message string

	switch stage {
	case models.StageFirst:
		p.FirstAttemptCorrect = correct
		if correct {
			p.LearningStatus = models.StatusLearning
			message = msgFirstCorrect
		} else {
			p.LearningStatus = models.StatusNotStarted
			message = msgFirstWrong
		}
	case models.StageSecond:
		p.SecondAttemptCorrect = correct
		if correct {
			p.LearningStatus = models.StatusMastered
			message = msgSecondCorrect
		} else {
			p.LearningStatus = models.StatusLearning
			message = msgSecondWrong
		}
	}

	p.Learned = p.LearningStatus == models.StatusMastered
	p.ReviewCount++
	reviewedAt := now
	p.LastReviewedAt = &reviewedAt

	return message
}
