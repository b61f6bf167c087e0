package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"vocab-backend/internal/database"
	"vocab-backend/internal/models"
)

type StudySessionRepo struct {
	pool *pgxpool.Pool
}

func NewStudySessionRepo(pool *pgxpool.Pool) *StudySessionRepo {
	return &StudySessionRepo{pool: pool}
}

// Start opens a new session and closes any session still active for the same
// user and collection. It returns the total seconds of the sessions it closed.
func (r *StudySessionRepo) Start(ctx context.Context, s *models.StudySession) (int, error) {
	if len(s.ClientMetaJSON) == 0 {
		s.ClientMetaJSON = json.RawMessage("{}")
	}

	var closedSeconds int
	err := database.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			WITH closed AS (
				UPDATE study_sessions
				SET ended_at = NOW(),
					duration_seconds = GREATEST(0, LEAST(43200, EXTRACT(EPOCH FROM (last_heartbeat_at - started_at))::INT)),
					last_heartbeat_at = NOW()
				WHERE user_id = $1
				  AND collection_id = $2
				  AND ended_at IS NULL
				RETURNING duration_seconds
			)
			SELECT COALESCE(SUM(duration_seconds), 0)::INT FROM closed
		`, s.UserID, s.CollectionID).Scan(&closedSeconds)
		if err != nil {
			return fmt.Errorf("close previous session: %w", err)
		}

		return tx.QueryRow(ctx, `
			INSERT INTO study_sessions (user_id, collection_id, client_meta_json)
			VALUES ($1, $2, $3)
			RETURNING id, started_at, last_heartbeat_at, created_at
		`, s.UserID, s.CollectionID, s.ClientMetaJSON).Scan(
			&s.ID,
			&s.StartedAt,
			&s.LastHeartbeatAt,
			&s.CreatedAt,
		)
	})
	if err != nil {
		return 0, err
	}
	return closedSeconds, nil
}

// Heartbeat reports false when the session is unknown, foreign or already ended.
func (r *StudySessionRepo) Heartbeat(ctx context.Context, sessionID, userID uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE study_sessions
		SET last_heartbeat_at = NOW()
		WHERE id = $1
		  AND user_id = $2
		  AND ended_at IS NULL
	`, sessionID, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// Stop ends an active session and returns its duration in seconds. Stopping a
// session that already ended (or does not belong to the user) returns 0 so
// study time is only credited once.
func (r *StudySessionRepo) Stop(ctx context.Context, sessionID, userID uuid.UUID) (int, error) {
	var duration int
	err := r.pool.QueryRow(ctx, `
		UPDATE study_sessions
		SET ended_at = NOW(),
			last_heartbeat_at = NOW(),
			duration_seconds = GREATEST(0, LEAST(43200, EXTRACT(EPOCH FROM (NOW() - started_at))::INT))
		WHERE id = $1
		  AND user_id = $2
		  AND ended_at IS NULL
		RETURNING duration_seconds
	`, sessionID, userID).Scan(&duration)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	return duration, err
}

// CloseStale ends every active session whose last heartbeat is older than idle.
// The session is closed at its last heartbeat so idle time is not counted.
func (r *StudySessionRepo) CloseStale(ctx context.Context, idle time.Duration) ([]models.StudySession, error) {
	rows, err := r.pool.Query(ctx, `
		UPDATE study_sessions
		SET ended_at = last_heartbeat_at,
			duration_seconds = GREATEST(0, LEAST(43200, EXTRACT(EPOCH FROM (last_heartbeat_at - started_at))::INT))
		WHERE ended_at IS NULL
		  AND last_heartbeat_at < NOW() - make_interval(secs => $1)
		RETURNING id, user_id, collection_id, started_at, last_heartbeat_at, ended_at, duration_seconds, created_at
	`, idle.Seconds())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []models.StudySession
	for rows.Next() {
		s := models.StudySession{}
		if err := rows.Scan(&s.ID, &s.UserID, &s.CollectionID, &s.StartedAt, &s.LastHeartbeatAt,
			&s.EndedAt, &s.DurationSeconds, &s.CreatedAt); err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}
