package summary

import (
	"context"
	"log"
	"math"
	"time"

	"calorie-buddy/internal/food"
	"calorie-buddy/internal/profile"
	"calorie-buddy/internal/shared"
)

// Totals are the nutrients summed over a day's entries.
type Totals struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
	Fiber    float64 `json:"fiber"`
}

// Remaining is what is left of the daily target, never negative.
type Remaining struct {
	Calories float64 `json:"calories"`
}

// Meals groups a day's entries by slot.
type Meals struct {
	Breakfast []food.Entry `json:"breakfast"`
	Lunch     []food.Entry `json:"lunch"`
	Dinner    []food.Entry `json:"dinner"`
	Snack     []food.Entry `json:"snack"`
}

// Daily is one user's nutrition for one date.
type Daily struct {
	Date         string    `json:"date"`
	UserID       string    `json:"user_id"`
	DailyTarget  float64   `json:"daily_target"`
	Consumed     Totals    `json:"consumed"`
	Remaining    Remaining `json:"remaining"`
	Meals        Meals     `json:"meals"`
	EntriesCount int       `json:"entries_count"`
}

// ProfileReader fetches profiles.
type ProfileReader interface {
	Get(ctx context.Context, id string) (profile.Profile, error)
}

// EntryReader lists every entry a user logged on a date.
type EntryReader interface {
	ForDay(ctx context.Context, userID, date string) ([]food.Entry, error)
}

// Cache stores computed summaries.
type Cache interface {
	GetSummary(ctx context.Context, userID, date string, out any) (bool, error)
	SetSummary(ctx context.Context, userID, date string, value any) error
}

// Aggregator computes daily summaries.
type Aggregator struct {
	profiles ProfileReader
	entries  EntryReader
	cache    Cache
	now      func() time.Time
}

// NewAggregator creates an Aggregator. cache may be nil.
func NewAggregator(profiles ProfileReader, entries EntryReader, cache Cache) *Aggregator {
	return &Aggregator{
		profiles: profiles,
		entries:  entries,
		cache:    cache,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Daily summarizes userID's entries for date, defaulting to today. It fails
// with profile.ErrNotFound when the user does not exist.
func (a *Aggregator) Daily(ctx context.Context, userID, date string) (Daily, error) {
	date, err := shared.NormalizeDate(date, a.now())
	if err != nil {
		return Daily{}, err
	}

	if a.cache != nil {
		var cached Daily
		if hit, err := a.cache.GetSummary(ctx, userID, date, &cached); err == nil && hit {
			return cached, nil
		}
	}

	p, err := a.profiles.Get(ctx, userID)
	if err != nil {
		return Daily{}, err
	}

	entries, err := a.entries.ForDay(ctx, userID, date)
	if err != nil {
		return Daily{}, err
	}

	d := Summarize(userID, date, p.DailyCalorieTarget, entries)

	if a.cache != nil {
		if err := a.cache.SetSummary(ctx, userID, date, d); err != nil {
			log.Printf("Warning: failed to cache summary for %s on %s: %v", userID, date, err)
		}
	}
	return d, nil
}

// Summarize folds entries into totals and per-slot groups. Entries in an
// unknown slot count toward totals but appear in no group.
func Summarize(userID, date string, target float64, entries []food.Entry) Daily {
	d := Daily{
		Date:        date,
		UserID:      userID,
		DailyTarget: target,
		Meals: Meals{
			Breakfast: []food.Entry{},
			Lunch:     []food.Entry{},
			Dinner:    []food.Entry{},
			Snack:     []food.Entry{},
		},
		EntriesCount: len(entries),
	}

	for _, e := range entries {
		d.Consumed.Calories += e.Calories
		d.Consumed.Protein += food.Value(e.Protein)
		d.Consumed.Carbs += food.Value(e.Carbs)
		d.Consumed.Fat += food.Value(e.Fat)
		d.Consumed.Fiber += food.Value(e.Fiber)

		switch e.MealType {
		case food.Breakfast:
			d.Meals.Breakfast = append(d.Meals.Breakfast, e)
		case food.Lunch:
			d.Meals.Lunch = append(d.Meals.Lunch, e)
		case food.Dinner:
			d.Meals.Dinner = append(d.Meals.Dinner, e)
		case food.Snack:
			d.Meals.Snack = append(d.Meals.Snack, e)
		}
	}

	d.Remaining.Calories = math.Max(0, target-d.Consumed.Calories)
	return d
}
