package domain

import "time"

// Activity actions recorded against a correspondence item.
const (
	ActionStatusChange   = "status_change"
	ActionPriorityChange = "priority_change"
)

// ActivityLogEntry is an immutable audit trail row owned by one correspondence
// item. Entries are only ever inserted, never updated or deleted.
type ActivityLogEntry struct {
	ID               int64
	CorrespondenceID int64
	UserID           int64
	Action           string
	Description      string
	PreviousValue    *string
	NewValue         *string
	CreatedAt        time.Time

	// Populated by list joins, nil otherwise.
	User *UserRef
}
