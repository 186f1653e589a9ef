package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/correspondence-service/internal/domain"
)

// CommentRepository stores append-only comments.
type CommentRepository interface {
	Create(ctx context.Context, comment *domain.Comment) error
	ListByCorrespondence(ctx context.Context, correspondenceID int64) ([]domain.Comment, error)
}

type commentRepository struct {
	pool *pgxpool.Pool
}

// NewCommentRepository builds repository.
func NewCommentRepository(pool *pgxpool.Pool) CommentRepository {
	return &commentRepository{pool: pool}
}

func (r *commentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	const query = `
        INSERT INTO comments (correspondence_id, user_id, content, is_internal)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		comment.CorrespondenceID,
		comment.UserID,
		comment.Content,
		comment.IsInternal,
	).Scan(&comment.ID, &comment.CreatedAt, &comment.UpdatedAt)
}

func (r *commentRepository) ListByCorrespondence(ctx context.Context, correspondenceID int64) ([]domain.Comment, error) {
	const query = `
        SELECT co.id, co.correspondence_id, co.user_id, co.content, co.is_internal,
               co.created_at, co.updated_at, u.id, u.name, u.email
        FROM comments co
        LEFT JOIN users u ON u.id = co.user_id
        WHERE co.correspondence_id=$1
        ORDER BY co.created_at DESC`
	rows, err := r.pool.Query(ctx, query, correspondenceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Comment
	for rows.Next() {
		var comment domain.Comment
		var userID *int64
		var userName, userEmail *string
		if err := rows.Scan(
			&comment.ID,
			&comment.CorrespondenceID,
			&comment.UserID,
			&comment.Content,
			&comment.IsInternal,
			&comment.CreatedAt,
			&comment.UpdatedAt,
			&userID,
			&userName,
			&userEmail,
		); err != nil {
			return nil, err
		}
		if userID != nil {
			comment.User = &domain.UserRef{ID: *userID, Name: deref(userName), Email: deref(userEmail)}
		}
		result = append(result, comment)
	}
	return result, rows.Err()
}
