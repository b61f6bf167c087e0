package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"vocab-backend/internal/models"
)

type CollectionRepo struct {
	pool *pgxpool.Pool
}

func NewCollectionRepo(pool *pgxpool.Pool) *CollectionRepo {
	return &CollectionRepo{pool: pool}
}

func (r *CollectionRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Collection, error) {
	c := &models.Collection{}
	query := `SELECT id, user_id, name, is_public, created_at FROM collections WHERE id = $1`

	err := r.pool.QueryRow(ctx, query, id).Scan(&c.ID, &c.UserID, &c.Name, &c.IsPublic, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}
