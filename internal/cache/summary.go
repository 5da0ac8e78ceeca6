package cache

import (
	"context"
	"time"
)

const summaryPrefix = "summary:"

// SummaryKey is the cache key of one user's daily summary.
func SummaryKey(userID, date string) string {
	return summaryPrefix + userID + ":" + date
}

// SummaryPattern matches every cached summary of a user.
func SummaryPattern(userID string) string {
	return summaryPrefix + userID + ":*"
}

// GetSummary loads a cached summary into out.
func (r *Redis) GetSummary(ctx context.Context, userID, date string, out any) (bool, error) {
	return r.GetJSON(ctx, SummaryKey(userID, date), out)
}

// SetSummary caches a summary with the default TTL.
func (r *Redis) SetSummary(ctx context.Context, userID, date string, value any) error {
	return r.SetJSON(ctx, SummaryKey(userID, date), value, time.Duration(0))
}

// InvalidateDay drops the cached summary for one user and date. Called when
// an entry is logged.
func (r *Redis) InvalidateDay(ctx context.Context, userID, date string) error {
	return r.Delete(ctx, SummaryKey(userID, date))
}

// InvalidateUser drops all of a user's cached summaries. Called when the
// profile, and so the calorie target, changes.
func (r *Redis) InvalidateUser(ctx context.Context, userID string) error {
	return r.DeleteByPattern(ctx, SummaryPattern(userID))
}
