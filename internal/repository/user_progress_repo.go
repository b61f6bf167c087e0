package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"vocab-backend/internal/database"
	"vocab-backend/internal/models"
)

type UserProgressRepo struct {
	pool *pgxpool.Pool
}

func NewUserProgressRepo(pool *pgxpool.Pool) *UserProgressRepo {
	return &UserProgressRepo{pool: pool}
}

// Mutate creates the user's aggregate row if missing, locks it, applies fn and
// persists the result as one atomic read-modify-write.
func (r *UserProgressRepo) Mutate(ctx context.Context, userID uuid.UUID, fn func(p *models.UserProgress) error) (*models.UserProgress, error) {
	p := &models.UserProgress{}

	err := database.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			"INSERT INTO user_progress (user_id) VALUES ($1) ON CONFLICT (user_id) DO NOTHING", userID)
		if err != nil {
			return fmt.Errorf("upsert user progress: %w", err)
		}

		err = tx.QueryRow(ctx, `
			SELECT user_id, total_words, learned_words, streak_days, study_time_minutes, study_time_today,
				words_learned_today, quizzes_taken, correct_answers, total_answers, last_study_date,
				created_at, updated_at
			FROM user_progress WHERE user_id = $1 FOR UPDATE
		`, userID).Scan(
			&p.UserID, &p.TotalWords, &p.LearnedWords, &p.StreakDays, &p.StudyTimeMinutes, &p.StudyTimeToday,
			&p.WordsLearnedToday, &p.QuizzesTaken, &p.CorrectAnswers, &p.TotalAnswers, &p.LastStudyDate,
			&p.CreatedAt, &p.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("lock user progress: %w", err)
		}

		if err := fn(p); err != nil {
			return err
		}

		return tx.QueryRow(ctx, `
			UPDATE user_progress
			SET total_words = $1, learned_words = $2, streak_days = $3, study_time_minutes = $4,
				study_time_today = $5, words_learned_today = $6, quizzes_taken = $7,
				correct_answers = $8, total_answers = $9, last_study_date = $10, updated_at = NOW()
			WHERE user_id = $11
			RETURNING updated_at
		`, p.TotalWords, p.LearnedWords, p.StreakDays, p.StudyTimeMinutes,
			p.StudyTimeToday, p.WordsLearnedToday, p.QuizzesTaken,
			p.CorrectAnswers, p.TotalAnswers, p.LastStudyDate, userID,
		).Scan(&p.UpdatedAt)
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}
