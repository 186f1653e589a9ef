package domain

import "time"

// EmailNotificationStatus tracks delivery state of a queued notification.
type EmailNotificationStatus string

const (
	EmailNotificationPending EmailNotificationStatus = "pending"
	EmailNotificationSent    EmailNotificationStatus = "sent"
	EmailNotificationFailed  EmailNotificationStatus = "failed"
)

// EmailNotification is a queued outbound email tied to a correspondence item.
type EmailNotification struct {
	ID               int64
	CorrespondenceID int64
	RecipientID      int64
	Subject          string
	Body             string
	SentAt           *time.Time
	Status           EmailNotificationStatus
	CreatedAt        time.Time
}
