package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/correspondence-service/internal/domain"
)

// SLARuleRepository manages handling-window rules.
type SLARuleRepository interface {
	Create(ctx context.Context, rule *domain.SLARule) error
	ListActive(ctx context.Context) ([]domain.SLARule, error)
}

type slaRuleRepository struct {
	pool *pgxpool.Pool
}

// NewSLARuleRepository builds the repository.
func NewSLARuleRepository(pool *pgxpool.Pool) SLARuleRepository {
	return &slaRuleRepository{pool: pool}
}

func (r *slaRuleRepository) Create(ctx context.Context, rule *domain.SLARule) error {
	const query = `
        INSERT INTO sla_rules (name, correspondence_type, priority, department_id, response_days, resolution_days, is_active)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		rule.Name,
		rule.Type,
		rule.Priority,
		rule.DepartmentID,
		rule.ResponseDays,
		rule.ResolutionDays,
		rule.IsActive,
	).Scan(&rule.ID, &rule.CreatedAt, &rule.UpdatedAt)
}

func (r *slaRuleRepository) ListActive(ctx context.Context) ([]domain.SLARule, error) {
	const query = `
        SELECT id, name, correspondence_type, priority, department_id, response_days, resolution_days, is_active, created_at, updated_at
        FROM sla_rules WHERE is_active = TRUE`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.SLARule
	for rows.Next() {
		var rule domain.SLARule
		if err := rows.Scan(
			&rule.ID,
			&rule.Name,
			&rule.Type,
			&rule.Priority,
			&rule.DepartmentID,
			&rule.ResponseDays,
			&rule.ResolutionDays,
			&rule.IsActive,
			&rule.CreatedAt,
			&rule.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, rule)
	}
	return result, rows.Err()
}
