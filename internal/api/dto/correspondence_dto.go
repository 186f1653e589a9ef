package dto

import (
	"time"

	"github.com/spec-kit/correspondence-service/internal/domain"
)

// CreateCorrespondenceRequest payload.
type CreateCorrespondenceRequest struct {
	ReferenceNumber    string  `json:"reference_number"`
	Subject            string  `json:"subject"`
	Description        string  `json:"description"`
	Type               string  `json:"type"`
	Priority           string  `json:"priority"`
	Status             string  `json:"status"`
	SenderName         string  `json:"sender_name"`
	SenderEmail        *string `json:"sender_email"`
	SenderPhone        *string `json:"sender_phone"`
	SenderOrganization *string `json:"sender_organization"`
	SenderAddress      *string `json:"sender_address"`
	AssignedToID       *int64  `json:"assigned_to_id"`
	DepartmentID       *int64  `json:"department_id"`
	ReceivedDate       string  `json:"received_date"`
	DueDate            string  `json:"due_date"`
	Attachments        *string `json:"attachments"`
	Notes              *string `json:"notes"`
}

// UpdateCorrespondenceRequest is a merge patch; absent fields are untouched.
type UpdateCorrespondenceRequest struct {
	Status       *string    `json:"status"`
	Priority     *string    `json:"priority"`
	AssignedToID NullableID `json:"assigned_to_id"`
	DepartmentID NullableID `json:"department_id"`
	Notes        *string    `json:"notes"`
}

// UserRefResponse is the joined assigned-user view.
type UserRefResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// DepartmentRefResponse is the joined department view.
type DepartmentRefResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Code string `json:"code"`
}

// CorrespondenceResponse is the full item view.
type CorrespondenceResponse struct {
	ID                 int64                  `json:"id"`
	ReferenceNumber    string                 `json:"reference_number"`
	Subject            string                 `json:"subject"`
	Description        string                 `json:"description"`
	Type               string                 `json:"type"`
	Priority           string                 `json:"priority"`
	Status             string                 `json:"status"`
	SenderName         string                 `json:"sender_name"`
	SenderEmail        *string                `json:"sender_email"`
	SenderPhone        *string                `json:"sender_phone"`
	SenderOrganization *string                `json:"sender_organization"`
	SenderAddress      *string                `json:"sender_address"`
	AssignedTo         *UserRefResponse       `json:"assigned_to"`
	Department         *DepartmentRefResponse `json:"department"`
	ReceivedDate       time.Time              `json:"received_date"`
	DueDate            time.Time              `json:"due_date"`
	CompletedDate      *time.Time             `json:"completed_date"`
	Attachments        *string                `json:"attachments"`
	Notes              *string                `json:"notes"`
	CreatedAt          time.Time              `json:"created_at"`
	UpdatedAt          time.Time              `json:"updated_at"`
}

// TriageItemResponse adds the urgency badge to an item in the triage view.
type TriageItemResponse struct {
	CorrespondenceResponse
	Badge *BadgeResponse `json:"badge,omitempty"`
}

// BadgeResponse is a display badge.
type BadgeResponse struct {
	Label    string `json:"label"`
	Severity string `json:"severity"`
}

// TriageGroupResponse is one bucket in the triage view.
type TriageGroupResponse struct {
	Bucket string               `json:"bucket"`
	Items  []TriageItemResponse `json:"items"`
}

// CommentResponse represents an item comment.
type CommentResponse struct {
	ID         int64            `json:"id"`
	Content    string           `json:"content"`
	IsInternal bool             `json:"is_internal"`
	User       *UserRefResponse `json:"user"`
	CreatedAt  time.Time        `json:"created_at"`
}

// CreateCommentRequest payload.
type CreateCommentRequest struct {
	Content    string `json:"content"`
	IsInternal *bool  `json:"is_internal"`
}

// ActivityResponse represents one audit entry.
type ActivityResponse struct {
	ID            int64            `json:"id"`
	Action        string           `json:"action"`
	Description   string           `json:"description"`
	PreviousValue *string          `json:"previous_value"`
	NewValue      *string          `json:"new_value"`
	User          *UserRefResponse `json:"user"`
	CreatedAt     time.Time        `json:"created_at"`
}

// StatsResponse aggregates counts by status and priority.
type StatsResponse struct {
	Total      int `json:"total"`
	Pending    int `json:"pending"`
	InProgress int `json:"in_progress"`
	Completed  int `json:"completed"`
	Overdue    int `json:"overdue"`
	Urgent     int `json:"urgent"`
	High       int `json:"high"`
	Normal     int `json:"normal"`
	Low        int `json:"low"`
}

// ValidType reports whether a correspondence type string is a known enum member.
func ValidType(val string) bool {
	return domain.CorrespondenceType(val).Valid()
}

// ValidPriority reports whether a priority string is a known enum member.
func ValidPriority(val string) bool {
	return domain.Priority(val).Valid()
}

// ValidStatus reports whether a status string is a known enum member.
func ValidStatus(val string) bool {
	return domain.Status(val).Valid()
}
