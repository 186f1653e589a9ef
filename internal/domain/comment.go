package domain

import "time"

// Comment is an append-only note on a correspondence item.
type Comment struct {
	ID               int64
	CorrespondenceID int64
	UserID           int64
	Content          string
	IsInternal       bool
	CreatedAt        time.Time
	UpdatedAt        time.Time

	// Populated by list joins, nil otherwise.
	User *UserRef
}
