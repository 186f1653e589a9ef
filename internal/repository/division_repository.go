package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/correspondence-service/internal/domain"
)

// DivisionRepository manages division lookups.
type DivisionRepository interface {
	Create(ctx context.Context, div *domain.Division) error
	List(ctx context.Context) ([]domain.Division, error)
}

type divisionRepository struct {
	pool *pgxpool.Pool
}

// NewDivisionRepository builds the repository.
func NewDivisionRepository(pool *pgxpool.Pool) DivisionRepository {
	return &divisionRepository{pool: pool}
}

func (r *divisionRepository) Create(ctx context.Context, div *domain.Division) error {
	const query = `
        INSERT INTO divisions (name, code)
        VALUES ($1,$2)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query, div.Name, div.Code).Scan(&div.ID, &div.CreatedAt)
}

func (r *divisionRepository) List(ctx context.Context) ([]domain.Division, error) {
	const query = `SELECT id, name, code, created_at FROM divisions ORDER BY name ASC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Division
	for rows.Next() {
		var div domain.Division
		if err := rows.Scan(&div.ID, &div.Name, &div.Code, &div.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, div)
	}
	return result, rows.Err()
}
