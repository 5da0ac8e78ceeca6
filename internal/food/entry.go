package food

import (
	"errors"
	"time"
)

var (
	// ErrNotImage is returned when an upload is not an image.
	ErrNotImage = errors.New("file must be an image")
	// ErrInvalidEntry is returned when required entry fields are missing.
	ErrInvalidEntry = errors.New("invalid food entry")
)

// MealSlot is the meal a food entry belongs to.
type MealSlot string

const (
	Breakfast MealSlot = "breakfast"
	Lunch     MealSlot = "lunch"
	Dinner    MealSlot = "dinner"
	Snack     MealSlot = "snack"
)

// Known reports whether m is one of the four grouped meal slots. Entries in
// other slots still count toward daily totals.
func (m MealSlot) Known() bool {
	switch m {
	case Breakfast, Lunch, Dinner, Snack:
		return true
	}
	return false
}

// Entry is one consumed food item. Entries are immutable once stored.
type Entry struct {
	ID              string         `json:"id"`
	UserID          string         `json:"user_id"`
	FoodName        string         `json:"food_name"`
	Calories        float64        `json:"calories"`
	Protein         *float64       `json:"protein"`
	Carbs           *float64       `json:"carbs"`
	Fat             *float64       `json:"fat"`
	Fiber           *float64       `json:"fiber"`
	Sodium          *float64       `json:"sodium"`
	Sugar           *float64       `json:"sugar"`
	ServingSize     string         `json:"serving_size,omitempty"`
	MealType        MealSlot       `json:"meal_type"`
	Image           []byte         `json:"image_base64,omitempty"`
	AnalysisDetails map[string]any `json:"analysis_details,omitempty"`
	Date            string         `json:"date"`
	CreatedAt       time.Time      `json:"created_at"`
}

// Value dereferences an optional nutrient, treating nil as zero.
func Value(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
