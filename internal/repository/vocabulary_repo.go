package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"vocab-backend/internal/models"
)

// VocabularyRepo is a read-only view over the vocabulary owned by the vocabulary service.
type VocabularyRepo struct {
	pool *pgxpool.Pool
}

func NewVocabularyRepo(pool *pgxpool.Pool) *VocabularyRepo {
	return &VocabularyRepo{pool: pool}
}

func (r *VocabularyRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.VocabularyItem, error) {
	v := &models.VocabularyItem{}
	query := `SELECT id, user_id, word, meaning, phonetic, word_type, example, created_at
		FROM vocabulary WHERE id = $1`

	err := r.pool.QueryRow(ctx, query, id).Scan(
		&v.ID, &v.UserID, &v.Word, &v.Meaning, &v.Phonetic, &v.WordType, &v.Example, &v.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return v, nil
}

// ListByCollection returns the collection's items in creation order.
func (r *VocabularyRepo) ListByCollection(ctx context.Context, collectionID uuid.UUID) ([]models.VocabularyItem, error) {
	query := `SELECT v.id, v.user_id, v.word, v.meaning, v.phonetic, v.word_type, v.example, v.created_at
		FROM vocabulary v
		JOIN vocabulary_collection vc ON vc.vocabulary_id = v.id
		WHERE vc.collection_id = $1
		ORDER BY v.created_at ASC, v.id ASC`

	rows, err := r.pool.Query(ctx, query, collectionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.VocabularyItem
	for rows.Next() {
		v := models.VocabularyItem{}
		err := rows.Scan(&v.ID, &v.UserID, &v.Word, &v.Meaning, &v.Phonetic, &v.WordType, &v.Example, &v.CreatedAt)
		if err != nil {
			return nil, err
		}
		items = append(items, v)
	}
	return items, rows.Err()
}

func (r *VocabularyRepo) InCollection(ctx context.Context, vocabularyID, collectionID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM vocabulary_collection
			WHERE vocabulary_id = $1 AND collection_id = $2
		)
	`, vocabularyID, collectionID).Scan(&exists)
	return exists, err
}

func (r *VocabularyRepo) CountByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM vocabulary WHERE user_id = $1", userID).Scan(&n)
	return n, err
}

// CountLearnedByUser counts the user's words that are learned in at least one collection.
func (r *VocabularyRepo) CountLearnedByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(DISTINCT vp.vocabulary_id)
		FROM vocabulary_progress vp
		JOIN vocabulary v ON v.id = vp.vocabulary_id
		WHERE v.user_id = $1
		  AND vp.learned = TRUE
	`, userID).Scan(&n)
	return n, err
}
