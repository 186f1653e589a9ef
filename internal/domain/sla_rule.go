package domain

import "time"

// SLARule derives default handling windows for incoming correspondence.
// Type, Priority and DepartmentID are optional match criteria; a nil
// criterion matches anything.
type SLARule struct {
	ID             int64
	Name           string
	Type           *CorrespondenceType
	Priority       *Priority
	DepartmentID   *int64
	ResponseDays   int
	ResolutionDays int
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Matches reports whether the rule applies to the given type and priority.
func (r SLARule) Matches(t CorrespondenceType, p Priority) bool {
	if !r.IsActive {
		return false
	}
	if r.Type != nil && *r.Type != t {
		return false
	}
	if r.Priority != nil && *r.Priority != p {
		return false
	}
	return true
}

// Specificity ranks rules so the most constrained match wins.
func (r SLARule) Specificity() int {
	score := 0
	if r.Type != nil {
		score++
	}
	if r.Priority != nil {
		score++
	}
	if r.DepartmentID != nil {
		score++
	}
	return score
}
