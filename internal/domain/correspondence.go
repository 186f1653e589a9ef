package domain

import "time"

// Status enumerates lifecycle states for correspondence items.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusOverdue    Status = "overdue"
)

// Valid reports whether the status is a known enum member.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusOverdue:
		return true
	}
	return false
}

// Priority enumerates urgency levels.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Valid reports whether the priority is a known enum member.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// CorrespondenceType enumerates kinds of inbound correspondence.
type CorrespondenceType string

const (
	TypeLetter     CorrespondenceType = "letter"
	TypeEmail      CorrespondenceType = "email"
	TypeRequest    CorrespondenceType = "request"
	TypeSubmission CorrespondenceType = "submission"
	TypeComplaint  CorrespondenceType = "complaint"
	TypeInquiry    CorrespondenceType = "inquiry"
	TypeOther      CorrespondenceType = "other"
)

// Valid reports whether the type is a known enum member.
func (t CorrespondenceType) Valid() bool {
	switch t {
	case TypeLetter, TypeEmail, TypeRequest, TypeSubmission, TypeComplaint, TypeInquiry, TypeOther:
		return true
	}
	return false
}

// Correspondence is the aggregate root for one tracked inbound communication.
type Correspondence struct {
	ID                 int64
	ReferenceNumber    string
	Subject            string
	Description        string
	Type               CorrespondenceType
	Priority           Priority
	Status             Status
	SenderName         string
	SenderEmail        *string
	SenderPhone        *string
	SenderOrganization *string
	SenderAddress      *string
	AssignedToID       *int64
	DepartmentID       *int64
	ReceivedDate       time.Time
	DueDate            time.Time
	CompletedDate      *time.Time
	Attachments        *string
	Notes              *string
	CreatedByID        int64
	CreatedAt          time.Time
	UpdatedAt          time.Time

	// Populated by list/detail joins, nil otherwise.
	AssignedTo *UserRef
	Department *DepartmentRef
}

// UserRef is the joined view of an assigned user.
type UserRef struct {
	ID    int64
	Name  string
	Email string
}

// DepartmentRef is the joined view of an owning department.
type DepartmentRef struct {
	ID   int64
	Name string
	Code string
}

// Stats aggregates item counts by status and priority.
type Stats struct {
	Total      int
	Pending    int
	InProgress int
	Completed  int
	Overdue    int
	Urgent     int
	High       int
	Normal     int
	Low        int
}
