package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"vocab-backend/internal/models"
)

type studySessionStore interface {
	Start(ctx context.Context, s *models.StudySession) (int, error)
	Heartbeat(ctx context.Context, sessionID, userID uuid.UUID) (bool, error)
	Stop(ctx context.Context, sessionID, userID uuid.UUID) (int, error)
	CloseStale(ctx context.Context, idle time.Duration) ([]models.StudySession, error)
}

type studyTimeRecorder interface {
	AddStudyTime(ctx context.Context, userID uuid.UUID, minutes int) (*models.UserProgress, error)
}

// StudySessionService times study sessions and credits finished ones to the
// user's study time, rounded up to whole minutes.
type StudySessionService struct {
	store    studySessionStore
	progress studyTimeRecorder
}

func NewStudySessionService(store studySessionStore, progress studyTimeRecorder) *StudySessionService {
	return &StudySessionService{store: store, progress: progress}
}

func (s *StudySessionService) Start(ctx context.Context, userID, collectionID uuid.UUID, clientMeta json.RawMessage) (*models.StudySession, error) {
	session := &models.StudySession{
		UserID:         userID,
		CollectionID:   collectionID,
		ClientMetaJSON: clientMeta,
	}

	closedSeconds, err := s.store.Start(ctx, session)
	if err != nil {
		return nil, fmt.Errorf("start study session: %w", err)
	}
	s.credit(ctx, userID, closedSeconds)

	return session, nil
}

func (s *StudySessionService) Heartbeat(ctx context.Context, sessionID, userID uuid.UUID) error {
	ok, err := s.store.Heartbeat(ctx, sessionID, userID)
	if err != nil {
		return fmt.Errorf("study session heartbeat: %w", err)
	}
	if !ok {
		return &NotFoundError{Message: "Active study session not found"}
	}
	return nil
}

// Stop ends the session and returns the credited minutes. Stopping an ended
// session credits nothing.
func (s *StudySessionService) Stop(ctx context.Context, sessionID, userID uuid.UUID) (int, error) {
	seconds, err := s.store.Stop(ctx, sessionID, userID)
	if err != nil {
		return 0, fmt.Errorf("stop study session: %w", err)
	}
	return s.credit(ctx, userID, seconds), nil
}

// CloseStale ends sessions idle for longer than idle and credits them.
func (s *StudySessionService) CloseStale(ctx context.Context, idle time.Duration) (int, error) {
	sessions, err := s.store.CloseStale(ctx, idle)
	if err != nil {
		return 0, fmt.Errorf("close stale sessions: %w", err)
	}
	for _, session := range sessions {
		s.credit(ctx, session.UserID, session.DurationSeconds)
	}
	return len(sessions), nil
}

func (s *StudySessionService) credit(ctx context.Context, userID uuid.UUID, seconds int) int {
	minutes := minutesForSeconds(seconds)
	if minutes == 0 {
		return 0
	}
	if _, err := s.progress.AddStudyTime(ctx, userID, minutes); err != nil {
		log.Printf("study session: failed to credit %d minutes to user %s: %v", minutes, userID, err)
		return 0
	}
	return minutes
}

func minutesForSeconds(seconds int) int {
	if seconds <= 0 {
		return 0
	}
	return (seconds + 59) / 60
}
