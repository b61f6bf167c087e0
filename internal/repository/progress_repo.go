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

const progressColumns = `id, vocabulary_id, collection_id, learning_status, learned,
	first_attempt_correct, second_attempt_correct, review_count, last_reviewed_at, created_at, updated_at`

// ProgressRepo stores one vocabulary_progress row per (vocabulary, collection) pair.
type ProgressRepo struct {
	pool *pgxpool.Pool
}

func NewProgressRepo(pool *pgxpool.Pool) *ProgressRepo {
	return &ProgressRepo{pool: pool}
}

func scanProgress(row pgx.Row, p *models.ItemProgress) error {
	return row.Scan(
		&p.ID, &p.VocabularyID, &p.CollectionID, &p.LearningStatus, &p.Learned,
		&p.FirstAttemptCorrect, &p.SecondAttemptCorrect, &p.ReviewCount, &p.LastReviewedAt,
		&p.CreatedAt, &p.UpdatedAt,
	)
}

// EnsureRows inserts a NOT_STARTED row for every vocabulary id that has none yet.
func (r *ProgressRepo) EnsureRows(ctx context.Context, collectionID uuid.UUID, vocabularyIDs []uuid.UUID) error {
	if len(vocabularyIDs) == 0 {
		return nil
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO vocabulary_progress (vocabulary_id, collection_id)
		SELECT v, $2 FROM UNNEST($1::uuid[]) AS v
		ON CONFLICT (vocabulary_id, collection_id) DO NOTHING
	`, vocabularyIDs, collectionID)
	return err
}

func (r *ProgressRepo) ListByCollection(ctx context.Context, collectionID uuid.UUID) ([]models.ItemProgress, error) {
	rows, err := r.pool.Query(ctx,
		"SELECT "+progressColumns+" FROM vocabulary_progress WHERE collection_id = $1 ORDER BY created_at ASC, id ASC",
		collectionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var progress []models.ItemProgress
	for rows.Next() {
		p := models.ItemProgress{}
		if err := scanProgress(rows, &p); err != nil {
			return nil, err
		}
		progress = append(progress, p)
	}
	return progress, rows.Err()
}

func (r *ProgressRepo) Get(ctx context.Context, vocabularyID, collectionID uuid.UUID) (*models.ItemProgress, error) {
	p := &models.ItemProgress{}
	err := scanProgress(r.pool.QueryRow(ctx,
		"SELECT "+progressColumns+" FROM vocabulary_progress WHERE vocabulary_id = $1 AND collection_id = $2",
		vocabularyID, collectionID), p)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Mutate upserts the pair's row, locks it, applies fn and writes the result back
// in a single transaction. Concurrent callers for the same pair are serialized.
func (r *ProgressRepo) Mutate(ctx context.Context, vocabularyID, collectionID uuid.UUID, fn func(p *models.ItemProgress) error) (*models.ItemProgress, error) {
	p := &models.ItemProgress{}

	err := database.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO vocabulary_progress (vocabulary_id, collection_id)
			VALUES ($1, $2)
			ON CONFLICT (vocabulary_id, collection_id) DO NOTHING
		`, vocabularyID, collectionID)
		if err != nil {
			return fmt.Errorf("upsert progress: %w", err)
		}

		err = scanProgress(tx.QueryRow(ctx,
			"SELECT "+progressColumns+" FROM vocabulary_progress WHERE vocabulary_id = $1 AND collection_id = $2 FOR UPDATE",
			vocabularyID, collectionID), p)
		if err != nil {
			return fmt.Errorf("lock progress: %w", err)
		}

		if err := fn(p); err != nil {
			return err
		}

		return tx.QueryRow(ctx, `
			UPDATE vocabulary_progress
			SET learning_status = $1, learned = $2, first_attempt_correct = $3,
				second_attempt_correct = $4, review_count = $5, last_reviewed_at = $6, updated_at = NOW()
			WHERE id = $7
			RETURNING updated_at
		`, p.LearningStatus, p.Learned, p.FirstAttemptCorrect, p.SecondAttemptCorrect,
			p.ReviewCount, p.LastReviewedAt, p.ID,
		).Scan(&p.UpdatedAt)
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *ProgressRepo) CountByStatus(ctx context.Context, collectionID uuid.UUID) (map[models.LearningStatus]int, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT learning_status, COUNT(*)
		FROM vocabulary_progress
		WHERE collection_id = $1
		GROUP BY learning_status
	`, collectionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[models.LearningStatus]int)
	for rows.Next() {
		var status models.LearningStatus
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}
