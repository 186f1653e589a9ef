package events

import (
	"time"

	"github.com/spec-kit/correspondence-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventCorrespondenceCreated EventType = "correspondence_created"
	EventStatusChanged         EventType = "correspondence_status_changed"
	EventPriorityChanged       EventType = "correspondence_priority_changed"
	EventAssignmentChanged     EventType = "correspondence_assignment_changed"
	EventCommentAdded          EventType = "correspondence_comment_added"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID               string      `json:"id"`
	Type             EventType   `json:"type"`
	CorrespondenceID int64       `json:"correspondence_id"`
	ActorUserID      int64       `json:"actor_user_id"`
	Timestamp        time.Time   `json:"timestamp"`
	Payload          interface{} `json:"payload"`
}

// CorrespondenceCreatedPayload payload.
type CorrespondenceCreatedPayload struct {
	ReferenceNumber string                    `json:"reference_number"`
	Subject         string                    `json:"subject"`
	Type            domain.CorrespondenceType `json:"type"`
	Priority        domain.Priority           `json:"priority"`
	AssignedToID    *int64                    `json:"assigned_to_id,omitempty"`
	DepartmentID    *int64                    `json:"department_id,omitempty"`
	DueDate         time.Time                 `json:"due_date"`
}

// StatusChangedPayload payload.
type StatusChangedPayload struct {
	OldStatus domain.Status `json:"old_status"`
	NewStatus domain.Status `json:"new_status"`
}

// PriorityChangedPayload payload.
type PriorityChangedPayload struct {
	OldPriority domain.Priority `json:"old_priority"`
	NewPriority domain.Priority `json:"new_priority"`
}

// AssignmentChangedPayload payload.
type AssignmentChangedPayload struct {
	AssignedToID *int64 `json:"assigned_to_id,omitempty"`
	DepartmentID *int64 `json:"department_id,omitempty"`
}

// CommentAddedPayload payload.
type CommentAddedPayload struct {
	CommentID  int64  `json:"comment_id"`
	IsInternal bool   `json:"is_internal"`
	Preview    string `json:"preview"`
}
