package services

import (
	"time"

	"vocab-backend/internal/models"
)

// ReconcileDay applies the day-rollover rules to p for the calendar day of today.
// It is idempotent for repeated calls on the same day. Any gap other than exactly
// one day, including a negative gap caused by clock skew, restarts the streak.
func ReconcileDay(p *models.UserProgress, today time.Time) {
	day := civilDate(today)

	if p.LastStudyDate != nil {
		last := civilDate(*p.LastStudyDate)
		if last.Equal(day) {
			return
		}
		if daysBetween(last, day) == 1 {
			p.StreakDays++
		} else {
			p.StreakDays = 1
		}
	} else {
		p.StreakDays = 1
	}

	p.LastStudyDate = &day
	p.StudyTimeToday = 0
	p.WordsLearnedToday = 0
}

// civilDate drops the clock and zone of t, keeping its calendar date as UTC midnight.
func civilDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}
