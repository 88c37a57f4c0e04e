package domain

import (
	"context"
	"time"
)

// DateKeyLayout is the calendar-day key format used by usage counters.
const DateKeyLayout = "2006-01-02"

// DateKey returns the calendar day of now in loc (UTC when loc is nil).
func DateKey(now time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return now.In(loc).Format(DateKeyLayout)
}

// UsageRecord is the per-user daily counter. A record whose DateKey is not
// today counts as zero.
type UsageRecord struct {
	UserID    string    `json:"user_id"`
	DateKey   string    `json:"date_key"`
	Count     int       `json:"count"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UsageResult is the outcome of one check-and-increment.
type UsageResult struct {
	Allowed   bool   `json:"allowed"`
	Unlimited bool   `json:"unlimited"`
	Count     int    `json:"count"`
	Limit     int    `json:"limit"`
	Remaining int    `json:"remaining"`
	DateKey   string `json:"date_key"`
}

// UsageRepository performs the atomic read-compare-increment. It returns the
// count after the call and whether the unit was granted; a denied call never
// changes the stored count.
type UsageRepository interface {
	Increment(ctx context.Context, userID, dateKey string, limit int, token string) (count int, allowed bool, err error)
	Peek(ctx context.Context, userID, dateKey string, token string) (int, error)
}
