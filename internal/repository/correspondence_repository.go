package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/correspondence-service/internal/domain"
)

// OptionalID carries the null-vs-absent distinction for nullable references.
// Set=false leaves the column untouched; Set=true with a nil ID clears it.
type OptionalID struct {
	Set bool
	ID  *int64
}

// CorrespondencePatch is a sparse update set. Nil fields are left untouched.
type CorrespondencePatch struct {
	Status       *domain.Status
	Priority     *domain.Priority
	AssignedToID OptionalID
	DepartmentID OptionalID
	Notes        *string
	// CompleteNow additionally stamps completed_date with the write time.
	CompleteNow bool
}

// Empty reports whether the patch names no fields at all.
func (p CorrespondencePatch) Empty() bool {
	return p.Status == nil && p.Priority == nil && !p.AssignedToID.Set &&
		!p.DepartmentID.Set && p.Notes == nil
}

// CorrespondenceRepository encapsulates correspondence persistence.
type CorrespondenceRepository interface {
	Create(ctx context.Context, item *domain.Correspondence) error
	GetByID(ctx context.Context, id int64) (*domain.Correspondence, error)
	List(ctx context.Context) ([]domain.Correspondence, error)
	// CurrentState loads just status and priority, the minimal read the
	// update path needs for its audit diff.
	CurrentState(ctx context.Context, id int64) (domain.Status, domain.Priority, error)
	// ApplyPatch merges the patch into the row in a single atomic UPDATE,
	// always advancing updated_at, and returns the updated row.
	ApplyPatch(ctx context.Context, id int64, patch CorrespondencePatch) (*domain.Correspondence, error)
	Stats(ctx context.Context) (*domain.Stats, error)
}

type correspondenceRepository struct {
	pool *pgxpool.Pool
}

// NewCorrespondenceRepository instantiates repository.
func NewCorrespondenceRepository(pool *pgxpool.Pool) CorrespondenceRepository {
	return &correspondenceRepository{pool: pool}
}

func (r *correspondenceRepository) Create(ctx context.Context, item *domain.Correspondence) error {
	const query = `
        INSERT INTO correspondence (reference_number, subject, description, type, priority, status,
            sender_name, sender_email, sender_phone, sender_organization, sender_address,
            assigned_to_id, department_id, received_date, due_date, completed_date,
            attachments, notes, created_by_id)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		item.ReferenceNumber,
		item.Subject,
		item.Description,
		item.Type,
		item.Priority,
		item.Status,
		item.SenderName,
		item.SenderEmail,
		item.SenderPhone,
		item.SenderOrganization,
		item.SenderAddress,
		item.AssignedToID,
		item.DepartmentID,
		item.ReceivedDate,
		item.DueDate,
		item.CompletedDate,
		item.Attachments,
		item.Notes,
		item.CreatedByID,
	).Scan(&item.ID, &item.CreatedAt, &item.UpdatedAt)
}

const correspondenceColumns = `
        c.id, c.reference_number, c.subject, c.description, c.type, c.priority, c.status,
        c.sender_name, c.sender_email, c.sender_phone, c.sender_organization, c.sender_address,
        c.assigned_to_id, c.department_id, c.received_date, c.due_date, c.completed_date,
        c.attachments, c.notes, c.created_by_id, c.created_at, c.updated_at,
        u.id, u.name, u.email, d.id, d.name, d.code`

const correspondenceJoins = `
        FROM correspondence c
        LEFT JOIN users u ON u.id = c.assigned_to_id
        LEFT JOIN departments d ON d.id = c.department_id`

func (r *correspondenceRepository) GetByID(ctx context.Context, id int64) (*domain.Correspondence, error) {
	query := `SELECT` + correspondenceColumns + correspondenceJoins + ` WHERE c.id=$1`
	row := r.pool.QueryRow(ctx, query, id)
	return scanCorrespondenceRow(row)
}

func (r *correspondenceRepository) List(ctx context.Context) ([]domain.Correspondence, error) {
	query := `SELECT` + correspondenceColumns + correspondenceJoins + ` ORDER BY c.created_at DESC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Correspondence
	for rows.Next() {
		item, err := scanCorrespondenceRow(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *item)
	}
	return result, rows.Err()
}

func (r *correspondenceRepository) CurrentState(ctx context.Context, id int64) (domain.Status, domain.Priority, error) {
	const query = `SELECT status, priority FROM correspondence WHERE id=$1`
	var status domain.Status
	var priority domain.Priority
	if err := r.pool.QueryRow(ctx, query, id).Scan(&status, &priority); err != nil {
		return "", "", err
	}
	return status, priority, nil
}

func (r *correspondenceRepository) ApplyPatch(ctx context.Context, id int64, patch CorrespondencePatch) (*domain.Correspondence, error) {
	sets := []string{"updated_at = NOW()"}
	args := []any{}

	if patch.Status != nil {
		args = append(args, *patch.Status)
		sets = append(sets, fmt.Sprintf("status=$%d", len(args)))
	}
	if patch.Priority != nil {
		args = append(args, *patch.Priority)
		sets = append(sets, fmt.Sprintf("priority=$%d", len(args)))
	}
	if patch.AssignedToID.Set {
		args = append(args, patch.AssignedToID.ID)
		sets = append(sets, fmt.Sprintf("assigned_to_id=$%d", len(args)))
	}
	if patch.DepartmentID.Set {
		args = append(args, patch.DepartmentID.ID)
		sets = append(sets, fmt.Sprintf("department_id=$%d", len(args)))
	}
	if patch.Notes != nil {
		args = append(args, *patch.Notes)
		sets = append(sets, fmt.Sprintf("notes=$%d", len(args)))
	}
	if patch.CompleteNow {
		sets = append(sets, "completed_date = NOW()")
	}

	args = append(args, id)
	query := fmt.Sprintf(`
        UPDATE correspondence c SET %s WHERE c.id=$%d
        RETURNING c.id, c.reference_number, c.subject, c.description, c.type, c.priority, c.status,
            c.sender_name, c.sender_email, c.sender_phone, c.sender_organization, c.sender_address,
            c.assigned_to_id, c.department_id, c.received_date, c.due_date, c.completed_date,
            c.attachments, c.notes, c.created_by_id, c.created_at, c.updated_at`,
		strings.Join(sets, ", "), len(args))

	var item domain.Correspondence
	if err := r.pool.QueryRow(ctx, query, args...).Scan(
		&item.ID,
		&item.ReferenceNumber,
		&item.Subject,
		&item.Description,
		&item.Type,
		&item.Priority,
		&item.Status,
		&item.SenderName,
		&item.SenderEmail,
		&item.SenderPhone,
		&item.SenderOrganization,
		&item.SenderAddress,
		&item.AssignedToID,
		&item.DepartmentID,
		&item.ReceivedDate,
		&item.DueDate,
		&item.CompletedDate,
		&item.Attachments,
		&item.Notes,
		&item.CreatedByID,
		&item.CreatedAt,
		&item.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *correspondenceRepository) Stats(ctx context.Context) (*domain.Stats, error) {
	const query = `
        SELECT count(*)::int,
               count(*) filter (where status = 'pending')::int,
               count(*) filter (where status = 'in_progress')::int,
               count(*) filter (where status = 'completed')::int,
               count(*) filter (where status = 'overdue')::int,
               count(*) filter (where priority = 'urgent')::int,
               count(*) filter (where priority = 'high')::int,
               count(*) filter (where priority = 'normal')::int,
               count(*) filter (where priority = 'low')::int
        FROM correspondence`
	var stats domain.Stats
	if err := r.pool.QueryRow(ctx, query).Scan(
		&stats.Total,
		&stats.Pending,
		&stats.InProgress,
		&stats.Completed,
		&stats.Overdue,
		&stats.Urgent,
		&stats.High,
		&stats.Normal,
		&stats.Low,
	); err != nil {
		return nil, err
	}
	return &stats, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCorrespondenceRow(row rowScanner) (*domain.Correspondence, error) {
	var item domain.Correspondence
	var userID *int64
	var userName, userEmail *string
	var deptID *int64
	var deptName, deptCode *string

	if err := row.Scan(
		&item.ID,
		&item.ReferenceNumber,
		&item.Subject,
		&item.Description,
		&item.Type,
		&item.Priority,
		&item.Status,
		&item.SenderName,
		&item.SenderEmail,
		&item.SenderPhone,
		&item.SenderOrganization,
		&item.SenderAddress,
		&item.AssignedToID,
		&item.DepartmentID,
		&item.ReceivedDate,
		&item.DueDate,
		&item.CompletedDate,
		&item.Attachments,
		&item.Notes,
		&item.CreatedByID,
		&item.CreatedAt,
		&item.UpdatedAt,
		&userID,
		&userName,
		&userEmail,
		&deptID,
		&deptName,
		&deptCode,
	); err != nil {
		return nil, err
	}
	if userID != nil {
		item.AssignedTo = &domain.UserRef{ID: *userID, Name: deref(userName), Email: deref(userEmail)}
	}
	if deptID != nil {
		item.Department = &domain.DepartmentRef{ID: *deptID, Name: deref(deptName), Code: deref(deptCode)}
	}
	return &item, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
