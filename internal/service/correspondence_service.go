package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/correspondence-service/internal/domain"
	"github.com/spec-kit/correspondence-service/internal/events"
	"github.com/spec-kit/correspondence-service/internal/repository"
	"github.com/spec-kit/correspondence-service/internal/triage"
	apperrors "github.com/spec-kit/correspondence-service/pkg/util/errorutil"
)

const statsCacheKey = "correspondence:stats"

// StatsCache caches serialized aggregate counts. *persistence.Redis satisfies it.
type StatsCache interface {
	GetString(ctx context.Context, key string) (string, bool, error)
	SetString(ctx context.Context, key, value string, ttl time.Duration) error
}

// CorrespondenceService coordinates correspondence workflows.
type CorrespondenceService struct {
	items      repository.CorrespondenceRepository
	comments   repository.CommentRepository
	activity   repository.ActivityLogRepository
	slaRules   repository.SLARuleRepository
	dispatcher events.Dispatcher
	cache      StatsCache
	cacheTTL   time.Duration
	logger     *zap.Logger
}

// CorrespondenceDependencies bundles collaborators for the service.
type CorrespondenceDependencies struct {
	CorrespondenceRepo repository.CorrespondenceRepository
	CommentRepo        repository.CommentRepository
	ActivityRepo       repository.ActivityLogRepository
	SLARuleRepo        repository.SLARuleRepository
	Dispatcher         events.Dispatcher
	Cache              StatsCache
	CacheTTL           time.Duration
	Logger             *zap.Logger
}

// NewCorrespondenceService constructs the service.
func NewCorrespondenceService(deps CorrespondenceDependencies) *CorrespondenceService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CorrespondenceService{
		items:      deps.CorrespondenceRepo,
		comments:   deps.CommentRepo,
		activity:   deps.ActivityRepo,
		slaRules:   deps.SLARuleRepo,
		dispatcher: deps.Dispatcher,
		cache:      deps.Cache,
		cacheTTL:   deps.CacheTTL,
		logger:     logger,
	}
}

// CreateInput describes the creation payload. The boundary validates enum
// membership before this point.
type CreateInput struct {
	ReferenceNumber    string
	Subject            string
	Description        string
	Type               domain.CorrespondenceType
	Priority           domain.Priority
	Status             domain.Status
	SenderName         string
	SenderEmail        *string
	SenderPhone        *string
	SenderOrganization *string
	SenderAddress      *string
	AssignedToID       *int64
	DepartmentID       *int64
	ReceivedDate       time.Time
	DueDate            time.Time
	Attachments        *string
	Notes              *string
}

// UpdateInput is a merge patch: nil fields are untouched. AssignedToID and
// DepartmentID distinguish "absent" from "explicitly cleared".
type UpdateInput struct {
	Status       *domain.Status
	Priority     *domain.Priority
	AssignedToID repository.OptionalID
	DepartmentID repository.OptionalID
	Notes        *string
}

// Create registers a new correspondence item. A missing reference number is
// generated; a missing due date is derived from the best-matching SLA rule.
func (s *CorrespondenceService) Create(ctx context.Context, acting domain.ActingUser, input CreateInput) (*domain.Correspondence, error) {
	subject := strings.TrimSpace(input.Subject)
	description := strings.TrimSpace(input.Description)
	senderName := strings.TrimSpace(input.SenderName)
	if subject == "" || description == "" || senderName == "" {
		return nil, apperrors.NewValidationError("subject, description and sender_name are required", nil)
	}

	item := &domain.Correspondence{
		ReferenceNumber:    strings.TrimSpace(input.ReferenceNumber),
		Subject:            subject,
		Description:        description,
		Type:               input.Type,
		Priority:           input.Priority,
		Status:             input.Status,
		SenderName:         senderName,
		SenderEmail:        input.SenderEmail,
		SenderPhone:        input.SenderPhone,
		SenderOrganization: input.SenderOrganization,
		SenderAddress:      input.SenderAddress,
		AssignedToID:       input.AssignedToID,
		DepartmentID:       input.DepartmentID,
		ReceivedDate:       input.ReceivedDate,
		DueDate:            input.DueDate,
		Attachments:        input.Attachments,
		Notes:              input.Notes,
		CreatedByID:        acting.ID,
	}
	if item.ReferenceNumber == "" {
		item.ReferenceNumber = GenerateReferenceNumber(time.Now())
	}
	if item.Priority == "" {
		item.Priority = domain.PriorityNormal
	}
	if item.Status == "" {
		item.Status = domain.StatusPending
	}
	if item.ReceivedDate.IsZero() {
		item.ReceivedDate = time.Now()
	}
	if item.DueDate.IsZero() {
		due, err := s.deriveDueDate(ctx, item)
		if err != nil {
			return nil, err
		}
		item.DueDate = due
	}

	if err := s.items.Create(ctx, item); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:             events.EventCorrespondenceCreated,
		CorrespondenceID: item.ID,
		ActorUserID:      acting.ID,
		Payload: events.CorrespondenceCreatedPayload{
			ReferenceNumber: item.ReferenceNumber,
			Subject:         item.Subject,
			Type:            item.Type,
			Priority:        item.Priority,
			AssignedToID:    item.AssignedToID,
			DepartmentID:    item.DepartmentID,
			DueDate:         item.DueDate,
		},
	})
	return item, nil
}

// List returns all items, newest first.
func (s *CorrespondenceService) List(ctx context.Context) ([]domain.Correspondence, error) {
	items, err := s.items.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return items, nil
}

// Get fetches one item by id.
func (s *CorrespondenceService) Get(ctx context.Context, id int64) (*domain.Correspondence, error) {
	item, err := s.items.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("correspondence", map[string]any{"id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return item, nil
}

// Update applies a merge patch to one item and appends audit entries for
// status and priority transitions.
//
// The write itself is a single atomic UPDATE. The audit appends run after it
// and are best-effort: a failed audit insert is logged and the update still
// succeeds. The before values come from this request's own prior read, so
// concurrent updates can interleave; last write wins.
func (s *CorrespondenceService) Update(ctx context.Context, acting domain.ActingUser, id int64, patch UpdateInput) (*domain.Correspondence, error) {
	priorStatus, priorPriority, err := s.items.CurrentState(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("correspondence", map[string]any{"id": id})
		}
		return nil, apperrors.MapError(err)
	}

	repoPatch := repository.CorrespondencePatch{
		Status:       patch.Status,
		Priority:     patch.Priority,
		AssignedToID: patch.AssignedToID,
		DepartmentID: patch.DepartmentID,
		Notes:        patch.Notes,
		// A repeated complete keeps refreshing completed_date; it is never
		// cleared when status moves away from completed.
		CompleteNow: patch.Status != nil && *patch.Status == domain.StatusCompleted,
	}

	// A patch naming no fields writes nothing, not even updated_at.
	if repoPatch.Empty() {
		item, err := s.items.GetByID(ctx, id)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		return item, nil
	}

	updated, err := s.items.ApplyPatch(ctx, id, repoPatch)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("correspondence", map[string]any{"id": id})
		}
		return nil, apperrors.MapError(err)
	}

	if patch.Status != nil && *patch.Status != priorStatus {
		s.recordChange(ctx, id, acting.ID, domain.ActionStatusChange,
			fmt.Sprintf("Status changed from %s to %s", priorStatus, *patch.Status),
			string(priorStatus), string(*patch.Status))
		s.publishEvent(ctx, events.Event{
			Type:             events.EventStatusChanged,
			CorrespondenceID: id,
			ActorUserID:      acting.ID,
			Payload: events.StatusChangedPayload{
				OldStatus: priorStatus,
				NewStatus: *patch.Status,
			},
		})
	}
	if patch.Priority != nil && *patch.Priority != priorPriority {
		s.recordChange(ctx, id, acting.ID, domain.ActionPriorityChange,
			fmt.Sprintf("Priority changed from %s to %s", priorPriority, *patch.Priority),
			string(priorPriority), string(*patch.Priority))
		s.publishEvent(ctx, events.Event{
			Type:             events.EventPriorityChanged,
			CorrespondenceID: id,
			ActorUserID:      acting.ID,
			Payload: events.PriorityChangedPayload{
				OldPriority: priorPriority,
				NewPriority: *patch.Priority,
			},
		})
	}
	if patch.AssignedToID.Set || patch.DepartmentID.Set {
		s.publishEvent(ctx, events.Event{
			Type:             events.EventAssignmentChanged,
			CorrespondenceID: id,
			ActorUserID:      acting.ID,
			Payload: events.AssignmentChangedPayload{
				AssignedToID: updated.AssignedToID,
				DepartmentID: updated.DepartmentID,
			},
		})
	}

	return updated, nil
}

// AddComment appends a comment to an item. Blank content is rejected.
func (s *CorrespondenceService) AddComment(ctx context.Context, acting domain.ActingUser, correspondenceID int64, content string, isInternal bool) (*domain.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperrors.NewValidationError("comment content is required", nil)
	}

	if _, _, err := s.items.CurrentState(ctx, correspondenceID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("correspondence", map[string]any{"id": correspondenceID})
		}
		return nil, apperrors.MapError(err)
	}

	comment := &domain.Comment{
		CorrespondenceID: correspondenceID,
		UserID:           acting.ID,
		Content:          content,
		IsInternal:       isInternal,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:             events.EventCommentAdded,
		CorrespondenceID: correspondenceID,
		ActorUserID:      acting.ID,
		Payload: events.CommentAddedPayload{
			CommentID:  comment.ID,
			IsInternal: comment.IsInternal,
			Preview:    stringPreview(comment.Content, 120),
		},
	})
	return comment, nil
}

// ListComments returns comments for an item, newest first.
func (s *CorrespondenceService) ListComments(ctx context.Context, correspondenceID int64) ([]domain.Comment, error) {
	comments, err := s.comments.ListByCorrespondence(ctx, correspondenceID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return comments, nil
}

// ListActivity returns audit entries for an item, newest first.
func (s *CorrespondenceService) ListActivity(ctx context.Context, correspondenceID int64) ([]domain.ActivityLogEntry, error) {
	entries, err := s.activity.ListByCorrespondence(ctx, correspondenceID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return entries, nil
}

// Stats returns aggregate counts, served from cache when fresh.
func (s *CorrespondenceService) Stats(ctx context.Context) (*domain.Stats, error) {
	if s.cache != nil && s.cacheTTL > 0 {
		if cached, ok, err := s.cache.GetString(ctx, statsCacheKey); err == nil && ok {
			var stats domain.Stats
			if err := json.Unmarshal([]byte(cached), &stats); err == nil {
				return &stats, nil
			}
		}
	}

	stats, err := s.items.Stats(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	if s.cache != nil && s.cacheTTL > 0 {
		if encoded, err := json.Marshal(stats); err == nil {
			if err := s.cache.SetString(ctx, statsCacheKey, string(encoded), s.cacheTTL); err != nil {
				s.logger.Debug("stats cache write failed", zap.Error(err))
			}
		}
	}
	return stats, nil
}

// TriageView buckets all items by due date for the dashboard.
func (s *CorrespondenceService) TriageView(ctx context.Context, now time.Time) (triage.Grouped, error) {
	items, err := s.items.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return triage.Group(items, now), nil
}

func (s *CorrespondenceService) deriveDueDate(ctx context.Context, item *domain.Correspondence) (time.Time, error) {
	if s.slaRules == nil {
		return time.Time{}, apperrors.NewValidationError("due_date is required", nil)
	}
	rules, err := s.slaRules.ListActive(ctx)
	if err != nil {
		return time.Time{}, apperrors.MapError(err)
	}
	rule := BestSLAMatch(rules, item.Type, item.Priority)
	if rule == nil {
		return time.Time{}, apperrors.NewValidationError("due_date is required and no SLA rule matches", nil)
	}
	return item.ReceivedDate.AddDate(0, 0, rule.ResolutionDays), nil
}

// BestSLAMatch picks the most specific active rule matching type and priority.
func BestSLAMatch(rules []domain.SLARule, t domain.CorrespondenceType, p domain.Priority) *domain.SLARule {
	var best *domain.SLARule
	for i := range rules {
		rule := &rules[i]
		if !rule.Matches(t, p) {
			continue
		}
		if best == nil || rule.Specificity() > best.Specificity() {
			best = rule
		}
	}
	return best
}

// GenerateReferenceNumber produces a COR-<year>-<4-digit> reference.
func GenerateReferenceNumber(now time.Time) string {
	return fmt.Sprintf("COR-%d-%04d", now.Year(), rand.Intn(10000))
}

func (s *CorrespondenceService) recordChange(ctx context.Context, correspondenceID, userID int64, action, description, previous, next string) {
	if s.activity == nil {
		return
	}
	entry := &domain.ActivityLogEntry{
		CorrespondenceID: correspondenceID,
		UserID:           userID,
		Action:           action,
		Description:      description,
		PreviousValue:    &previous,
		NewValue:         &next,
	}
	if err := s.activity.Create(ctx, entry); err != nil {
		// The primary update already committed; keep it and report the
		// gap in the audit trail instead of failing the request.
		s.logger.Warn("activity log write failed",
			zap.Int64("correspondence_id", correspondenceID),
			zap.String("action", action),
			zap.Error(err))
	}
}

func (s *CorrespondenceService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func stringPreview(body string, max int) string {
	body = strings.TrimSpace(body)
	if len(body) <= max {
		return body
	}
	if max <= 3 {
		return body[:max]
	}
	return body[:max-3] + "..."
}
