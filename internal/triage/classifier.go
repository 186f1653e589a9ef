// Package triage derives due-date buckets and urgency badges for
// correspondence items. Everything here is a pure function of an item
// snapshot and a reference instant; nothing is persisted or cached, so
// bucket membership is always computed fresh.
package triage

import (
	"fmt"
	"sort"
	"time"

	"github.com/spec-kit/correspondence-service/internal/domain"
)

// Bucket is a due-date-derived display group.
type Bucket string

const (
	BucketOverdue   Bucket = "overdue"
	BucketThisWeek  Bucket = "this_week"
	BucketThisMonth Bucket = "this_month"
	BucketBeyond    Bucket = "beyond"
	BucketCompleted Bucket = "completed"
)

// BucketOrder lists buckets in display order.
var BucketOrder = []Bucket{BucketOverdue, BucketThisWeek, BucketThisMonth, BucketBeyond, BucketCompleted}

// DaysUntilDue returns the calendar-day difference between the due date and
// now. Both instants are reduced to their local dates first, so a due date
// later today yields 0 and one that passed yesterday yields -1 regardless of
// clock time. The dates are re-anchored at UTC midnight before subtracting;
// every day is then exactly 24h, so DST transitions cannot skew the count.
func DaysUntilDue(dueDate, now time.Time) int {
	due := time.Date(dueDate.Year(), dueDate.Month(), dueDate.Day(), 0, 0, 0, 0, time.UTC)
	ref := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return int(due.Sub(ref).Hours() / 24)
}

// Classify assigns the item to exactly one bucket. Completed status wins over
// any due-date consideration.
func Classify(item domain.Correspondence, now time.Time) Bucket {
	if item.Status == domain.StatusCompleted {
		return BucketCompleted
	}
	days := DaysUntilDue(item.DueDate, now)
	switch {
	case days < 0:
		return BucketOverdue
	case days <= 7:
		return BucketThisWeek
	case days <= 30:
		return BucketThisMonth
	default:
		return BucketBeyond
	}
}

// BadgeSeverity styles the urgency badge.
type BadgeSeverity string

const (
	SeverityCritical BadgeSeverity = "critical"
	SeverityHigh     BadgeSeverity = "high"
	SeverityMedium   BadgeSeverity = "medium"
)

// Badge is a short urgency label shown next to an item.
type Badge struct {
	Label    string
	Severity BadgeSeverity
}

// BadgeFor computes the urgency badge for an item, or nil when none applies.
// Completed items never carry a badge.
func BadgeFor(item domain.Correspondence, now time.Time) *Badge {
	if item.Status == domain.StatusCompleted {
		return nil
	}
	days := DaysUntilDue(item.DueDate, now)
	switch {
	case days < 0:
		return &Badge{Label: "Overdue", Severity: SeverityCritical}
	case days == 0:
		return &Badge{Label: "Due today", Severity: SeverityCritical}
	case days <= 3:
		return &Badge{Label: fmt.Sprintf("%dd left", days), Severity: SeverityHigh}
	case days <= 7:
		return &Badge{Label: fmt.Sprintf("%dd left", days), Severity: SeverityMedium}
	default:
		return nil
	}
}

// Grouped holds items bucketed for the triage view.
type Grouped map[Bucket][]domain.Correspondence

// Group buckets items and sorts each bucket ascending by due date. The sort
// is stable so items sharing a due date keep their incoming relative order.
func Group(items []domain.Correspondence, now time.Time) Grouped {
	groups := make(Grouped, len(BucketOrder))
	for _, item := range items {
		bucket := Classify(item, now)
		groups[bucket] = append(groups[bucket], item)
	}
	for bucket := range groups {
		members := groups[bucket]
		sort.SliceStable(members, func(i, j int) bool {
			return members[i].DueDate.Before(members[j].DueDate)
		})
	}
	return groups
}
