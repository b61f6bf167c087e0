package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"vocab-backend/internal/models"
)

type userProgressStore interface {
	Mutate(ctx context.Context, userID uuid.UUID, fn func(p *models.UserProgress) error) (*models.UserProgress, error)
}

type wordCounter interface {
	CountByUser(ctx context.Context, userID uuid.UUID) (int, error)
	CountLearnedByUser(ctx context.Context, userID uuid.UUID) (int, error)
}

type updatePublisher interface {
	PublishUpdate(ctx context.Context, userID uuid.UUID, msg models.WSMessage)
}

// UserProgressService maintains the per-user aggregate. Every operation resyncs the
// word totals, applies the day rollover and then its own delta under one row lock.
type UserProgressService struct {
	store    userProgressStore
	words    wordCounter
	events   updatePublisher
	location *time.Location
	now      func() time.Time
}

func NewUserProgressService(store userProgressStore, words wordCounter, events updatePublisher, location *time.Location) *UserProgressService {
	if events == nil {
		events = noopEvents{}
	}
	if location == nil {
		location = time.UTC
	}
	return &UserProgressService{
		store:    store,
		words:    words,
		events:   events,
		location: location,
		now:      time.Now,
	}
}

func (s *UserProgressService) GetOrCreate(ctx context.Context, userID uuid.UUID) (*models.UserProgress, error) {
	return s.mutate(ctx, userID, nil)
}

func (s *UserProgressService) IncrementLearnedWords(ctx context.Context, userID uuid.UUID) (*models.UserProgress, error) {
	return s.mutate(ctx, userID, func(p *models.UserProgress) {
		p.LearnedWords++
	})
}

// AddStudyTime credits minutes to both the lifetime and today's total.
func (s *UserProgressService) AddStudyTime(ctx context.Context, userID uuid.UUID, minutes int) (*models.UserProgress, error) {
	if minutes < 0 {
		return nil, invalidField("minutes", "must be greater than or equal to 0")
	}
	return s.mutate(ctx, userID, func(p *models.UserProgress) {
		p.StudyTimeMinutes += minutes
		p.StudyTimeToday += minutes
	})
}

func (s *UserProgressService) RecordQuizResult(ctx context.Context, userID uuid.UUID, correct, total int) (*models.UserProgress, error) {
	fields := map[string]string{}
	if correct < 0 {
		fields["correct"] = "must be greater than or equal to 0"
	}
	if total < 0 {
		fields["total"] = "must be greater than or equal to 0"
	}
	if correct > total && total >= 0 {
		fields["correct"] = "must not exceed total"
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	return s.mutate(ctx, userID, func(p *models.UserProgress) {
		p.QuizzesTaken++
		p.CorrectAnswers += correct
		p.TotalAnswers += total
	})
}

func (s *UserProgressService) IncrementWordsLearnedToday(ctx context.Context, userID uuid.UUID) (*models.UserProgress, error) {
	return s.mutate(ctx, userID, func(p *models.UserProgress) {
		p.WordsLearnedToday++
	})
}

func (s *UserProgressService) mutate(ctx context.Context, userID uuid.UUID, delta func(p *models.UserProgress)) (*models.UserProgress, error) {
	total, err := s.words.CountByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("count words: %w", err)
	}
	learned, err := s.words.CountLearnedByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("count learned words: %w", err)
	}

	today := s.now().In(s.location)
	p, err := s.store.Mutate(ctx, userID, func(p *models.UserProgress) error {
		p.TotalWords = total
		p.LearnedWords = learned
		ReconcileDay(p, today)
		if delta != nil {
			delta(p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("save user progress: %w", err)
	}

	if delta != nil {
		s.events.PublishUpdate(ctx, userID, models.WSMessage{
			Type:    models.EventUserProgress,
			Payload: p,
		})
	}
	return p, nil
}
