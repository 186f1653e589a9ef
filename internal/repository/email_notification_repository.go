package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/correspondence-service/internal/domain"
)

// EmailNotificationRepository queues outbound notification emails.
type EmailNotificationRepository interface {
	Create(ctx context.Context, n *domain.EmailNotification) error
	ListPending(ctx context.Context, limit int) ([]domain.EmailNotification, error)
	MarkSent(ctx context.Context, id int64) error
}

type emailNotificationRepository struct {
	pool *pgxpool.Pool
}

// NewEmailNotificationRepository builds the repository.
func NewEmailNotificationRepository(pool *pgxpool.Pool) EmailNotificationRepository {
	return &emailNotificationRepository{pool: pool}
}

func (r *emailNotificationRepository) Create(ctx context.Context, n *domain.EmailNotification) error {
	const query = `
        INSERT INTO email_notifications (correspondence_id, recipient_id, subject, body, status)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		n.CorrespondenceID,
		n.RecipientID,
		n.Subject,
		n.Body,
		n.Status,
	).Scan(&n.ID, &n.CreatedAt)
}

func (r *emailNotificationRepository) ListPending(ctx context.Context, limit int) ([]domain.EmailNotification, error) {
	if limit <= 0 {
		limit = 50
	}
	const query = `
        SELECT id, correspondence_id, recipient_id, subject, body, sent_at, status, created_at
        FROM email_notifications WHERE status = 'pending'
        ORDER BY created_at ASC LIMIT $1`
	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.EmailNotification
	for rows.Next() {
		var n domain.EmailNotification
		if err := rows.Scan(
			&n.ID,
			&n.CorrespondenceID,
			&n.RecipientID,
			&n.Subject,
			&n.Body,
			&n.SentAt,
			&n.Status,
			&n.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, n)
	}
	return result, rows.Err()
}

func (r *emailNotificationRepository) MarkSent(ctx context.Context, id int64) error {
	const query = `UPDATE email_notifications SET status='sent', sent_at=NOW() WHERE id=$1`
	_, err := r.pool.Exec(ctx, query, id)
	return err
}
