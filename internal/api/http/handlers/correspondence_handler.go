package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/correspondence-service/internal/api/dto"
	"github.com/spec-kit/correspondence-service/internal/auth"
	"github.com/spec-kit/correspondence-service/internal/domain"
	"github.com/spec-kit/correspondence-service/internal/repository"
	"github.com/spec-kit/correspondence-service/internal/service"
	"github.com/spec-kit/correspondence-service/internal/triage"
	apperrors "github.com/spec-kit/correspondence-service/pkg/util/errorutil"
)

// CorrespondenceHandler manages correspondence endpoints.
type CorrespondenceHandler struct {
	service *service.CorrespondenceService
}

// NewCorrespondenceHandler constructs handler.
func NewCorrespondenceHandler(correspondenceService *service.CorrespondenceService) *CorrespondenceHandler {
	return &CorrespondenceHandler{service: correspondenceService}
}

// List GET /correspondence.
func (h *CorrespondenceHandler) List(c *fiber.Ctx) error {
	items, err := h.service.List(c.UserContext())
	if err != nil {
		return err
	}
	result := make([]dto.CorrespondenceResponse, 0, len(items))
	for i := range items {
		result = append(result, correspondenceResponse(&items[i]))
	}
	return c.JSON(fiber.Map{"data": result})
}

// Get GET /correspondence/:id.
func (h *CorrespondenceHandler) Get(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	item, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": correspondenceResponse(item)})
}

// Create POST /correspondence.
func (h *CorrespondenceHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateCorrespondenceRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	if strings.TrimSpace(req.Subject) == "" || strings.TrimSpace(req.Description) == "" || strings.TrimSpace(req.SenderName) == "" {
		return apperrors.NewValidationError("subject, description, sender_name required", nil)
	}
	if !dto.ValidType(req.Type) {
		return apperrors.NewValidationError("invalid correspondence type", map[string]any{"type": req.Type})
	}
	if req.Priority != "" && !dto.ValidPriority(req.Priority) {
		return apperrors.NewValidationError("invalid priority", map[string]any{"priority": req.Priority})
	}
	if req.Status != "" && !dto.ValidStatus(req.Status) {
		return apperrors.NewValidationError("invalid status", map[string]any{"status": req.Status})
	}

	receivedDate, err := parseDate(req.ReceivedDate)
	if err != nil {
		return apperrors.NewValidationError("invalid received_date", nil)
	}
	dueDate, err := parseDate(req.DueDate)
	if err != nil {
		return apperrors.NewValidationError("invalid due_date", nil)
	}

	input := service.CreateInput{
		ReferenceNumber:    req.ReferenceNumber,
		Subject:            req.Subject,
		Description:        req.Description,
		Type:               domain.CorrespondenceType(req.Type),
		Priority:           domain.Priority(req.Priority),
		Status:             domain.Status(req.Status),
		SenderName:         req.SenderName,
		SenderEmail:        req.SenderEmail,
		SenderPhone:        req.SenderPhone,
		SenderOrganization: req.SenderOrganization,
		SenderAddress:      req.SenderAddress,
		AssignedToID:       req.AssignedToID,
		DepartmentID:       req.DepartmentID,
		ReceivedDate:       receivedDate,
		DueDate:            dueDate,
		Attachments:        req.Attachments,
		Notes:              req.Notes,
	}
	item, err := h.service.Create(c.UserContext(), principal.Acting(), input)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": correspondenceResponse(item)})
}

// Update PATCH /correspondence/:id.
func (h *CorrespondenceHandler) Update(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req dto.UpdateCorrespondenceRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	patch := service.UpdateInput{
		AssignedToID: repository.OptionalID{Set: req.AssignedToID.Present, ID: req.AssignedToID.Value},
		DepartmentID: repository.OptionalID{Set: req.DepartmentID.Present, ID: req.DepartmentID.Value},
		Notes:        req.Notes,
	}
	if req.Status != nil {
		if !dto.ValidStatus(*req.Status) {
			return apperrors.NewValidationError("invalid status", map[string]any{"status": *req.Status})
		}
		status := domain.Status(*req.Status)
		patch.Status = &status
	}
	if req.Priority != nil {
		if !dto.ValidPriority(*req.Priority) {
			return apperrors.NewValidationError("invalid priority", map[string]any{"priority": *req.Priority})
		}
		priority := domain.Priority(*req.Priority)
		patch.Priority = &priority
	}

	item, err := h.service.Update(c.UserContext(), principal.Acting(), id, patch)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": correspondenceResponse(item)})
}

// ListComments GET /correspondence/:id/comments.
func (h *CorrespondenceHandler) ListComments(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	comments, err := h.service.ListComments(c.UserContext(), id)
	if err != nil {
		return err
	}
	result := make([]dto.CommentResponse, 0, len(comments))
	for i := range comments {
		result = append(result, commentResponse(&comments[i]))
	}
	return c.JSON(fiber.Map{"data": result})
}

// AddComment POST /correspondence/:id/comments.
func (h *CorrespondenceHandler) AddComment(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req dto.CreateCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	isInternal := true
	if req.IsInternal != nil {
		isInternal = *req.IsInternal
	}
	comment, err := h.service.AddComment(c.UserContext(), principal.Acting(), id, req.Content, isInternal)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": commentResponse(comment)})
}

// ListActivity GET /correspondence/:id/activity.
func (h *CorrespondenceHandler) ListActivity(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	entries, err := h.service.ListActivity(c.UserContext(), id)
	if err != nil {
		return err
	}
	result := make([]dto.ActivityResponse, 0, len(entries))
	for i := range entries {
		result = append(result, activityResponse(&entries[i]))
	}
	return c.JSON(fiber.Map{"data": result})
}

// Stats GET /correspondence/stats.
func (h *CorrespondenceHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.service.Stats(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.StatsResponse{
		Total:      stats.Total,
		Pending:    stats.Pending,
		InProgress: stats.InProgress,
		Completed:  stats.Completed,
		Overdue:    stats.Overdue,
		Urgent:     stats.Urgent,
		High:       stats.High,
		Normal:     stats.Normal,
		Low:        stats.Low,
	}})
}

// Triage GET /correspondence/triage.
func (h *CorrespondenceHandler) Triage(c *fiber.Ctx) error {
	now := time.Now()
	grouped, err := h.service.TriageView(c.UserContext(), now)
	if err != nil {
		return err
	}
	result := make([]dto.TriageGroupResponse, 0, len(triage.BucketOrder))
	for _, bucket := range triage.BucketOrder {
		items := grouped[bucket]
		group := dto.TriageGroupResponse{Bucket: string(bucket), Items: make([]dto.TriageItemResponse, 0, len(items))}
		for i := range items {
			entry := dto.TriageItemResponse{CorrespondenceResponse: correspondenceResponse(&items[i])}
			if badge := triage.BadgeFor(items[i], now); badge != nil {
				entry.Badge = &dto.BadgeResponse{Label: badge.Label, Severity: string(badge.Severity)}
			}
			group.Items = append(group.Items, entry)
		}
		result = append(result, group)
	}
	return c.JSON(fiber.Map{"data": result})
}

func parseID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError("invalid correspondence ID", nil)
	}
	return id, nil
}

func parseDate(val string) (time.Time, error) {
	if val == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, val); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", val)
}

func correspondenceResponse(item *domain.Correspondence) dto.CorrespondenceResponse {
	resp := dto.CorrespondenceResponse{
		ID:                 item.ID,
		ReferenceNumber:    item.ReferenceNumber,
		Subject:            item.Subject,
		Description:        item.Description,
		Type:               string(item.Type),
		Priority:           string(item.Priority),
		Status:             string(item.Status),
		SenderName:         item.SenderName,
		SenderEmail:        item.SenderEmail,
		SenderPhone:        item.SenderPhone,
		SenderOrganization: item.SenderOrganization,
		SenderAddress:      item.SenderAddress,
		ReceivedDate:       item.ReceivedDate,
		DueDate:            item.DueDate,
		CompletedDate:      item.CompletedDate,
		Attachments:        item.Attachments,
		Notes:              item.Notes,
		CreatedAt:          item.CreatedAt,
		UpdatedAt:          item.UpdatedAt,
	}
	if item.AssignedTo != nil {
		resp.AssignedTo = &dto.UserRefResponse{ID: item.AssignedTo.ID, Name: item.AssignedTo.Name, Email: item.AssignedTo.Email}
	}
	if item.Department != nil {
		resp.Department = &dto.DepartmentRefResponse{ID: item.Department.ID, Name: item.Department.Name, Code: item.Department.Code}
	}
	return resp
}

func commentResponse(comment *domain.Comment) dto.CommentResponse {
	resp := dto.CommentResponse{
		ID:         comment.ID,
		Content:    comment.Content,
		IsInternal: comment.IsInternal,
		CreatedAt:  comment.CreatedAt,
	}
	if comment.User != nil {
		resp.User = &dto.UserRefResponse{ID: comment.User.ID, Name: comment.User.Name, Email: comment.User.Email}
	}
	return resp
}

func activityResponse(entry *domain.ActivityLogEntry) dto.ActivityResponse {
	resp := dto.ActivityResponse{
		ID:            entry.ID,
		Action:        entry.Action,
		Description:   entry.Description,
		PreviousValue: entry.PreviousValue,
		NewValue:      entry.NewValue,
		CreatedAt:     entry.CreatedAt,
	}
	if entry.User != nil {
		resp.User = &dto.UserRefResponse{ID: entry.User.ID, Name: entry.User.Name, Email: entry.User.Email}
	}
	return resp
}
