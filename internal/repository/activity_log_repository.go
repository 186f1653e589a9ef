package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/correspondence-service/internal/domain"
)

// ActivityLogRepository stores append-only audit entries.
type ActivityLogRepository interface {
	Create(ctx context.Context, entry *domain.ActivityLogEntry) error
	ListByCorrespondence(ctx context.Context, correspondenceID int64) ([]domain.ActivityLogEntry, error)
}

type activityLogRepository struct {
	pool *pgxpool.Pool
}

// NewActivityLogRepository builds repository.
func NewActivityLogRepository(pool *pgxpool.Pool) ActivityLogRepository {
	return &activityLogRepository{pool: pool}
}

func (r *activityLogRepository) Create(ctx context.Context, entry *domain.ActivityLogEntry) error {
	const query = `
        INSERT INTO activity_log (correspondence_id, user_id, action, description, previous_value, new_value)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		entry.CorrespondenceID,
		entry.UserID,
		entry.Action,
		entry.Description,
		entry.PreviousValue,
		entry.NewValue,
	).Scan(&entry.ID, &entry.CreatedAt)
}

func (r *activityLogRepository) ListByCorrespondence(ctx context.Context, correspondenceID int64) ([]domain.ActivityLogEntry, error) {
	const query = `
        SELECT a.id, a.correspondence_id, a.user_id, a.action, a.description,
               a.previous_value, a.new_value, a.created_at, u.id, u.name, u.email
        FROM activity_log a
        LEFT JOIN users u ON u.id = a.user_id
        WHERE a.correspondence_id=$1
        ORDER BY a.created_at DESC`
	rows, err := r.pool.Query(ctx, query, correspondenceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.ActivityLogEntry
	for rows.Next() {
		var entry domain.ActivityLogEntry
		var userID *int64
		var userName, userEmail *string
		if err := rows.Scan(
			&entry.ID,
			&entry.CorrespondenceID,
			&entry.UserID,
			&entry.Action,
			&entry.Description,
			&entry.PreviousValue,
			&entry.NewValue,
			&entry.CreatedAt,
			&userID,
			&userName,
			&userEmail,
		); err != nil {
			return nil, err
		}
		if userID != nil {
			entry.User = &domain.UserRef{ID: *userID, Name: deref(userName), Email: deref(userEmail)}
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
