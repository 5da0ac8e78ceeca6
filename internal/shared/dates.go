package shared

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the calendar date format used for entry dates, summary
// filters and plan dates.
const DateLayout = "2006-01-02"

// ErrInvalidDate is returned when a date filter is not YYYY-MM-DD.
var ErrInvalidDate = errors.New("invalid date, expected YYYY-MM-DD")

// Today formats now as a calendar date.
func Today(now time.Time) string {
	return now.Format(DateLayout)
}

// NormalizeDate returns raw when it is a valid calendar date, or today when raw
// is empty.
func NormalizeDate(raw string, now time.Time) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Today(now), nil
	}
	t, err := time.Parse(DateLayout, raw)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidDate, raw)
	}
	return t.Format(DateLayout), nil
}
