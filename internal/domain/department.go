package domain

import "time"

// Department is an organizational unit correspondence can be routed to.
type Department struct {
	ID          int64
	Name        string
	Code        string
	Description *string
	CreatedAt   time.Time
}

// Division is a secondary organizational lookup used by the routing form.
type Division struct {
	ID        int64
	Name      string
	Code      string
	CreatedAt time.Time
}
