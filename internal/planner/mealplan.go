package planner

import "time"

// MealItem is one dish of a generated plan.
type MealItem struct {
	Name        string  `json:"name"`
	Calories    float64 `json:"calories"`
	Protein     float64 `json:"protein"`
	Carbs       float64 `json:"carbs"`
	Fat         float64 `json:"fat"`
	Description string  `json:"description"`
}

// MealPlan is a stored single-day plan. Totals are the model's own figures
// and are not reconciled against the items.
type MealPlan struct {
	ID            string     `json:"id"`
	UserID        string     `json:"user_id"`
	Date          string     `json:"date"`
	Breakfast     []MealItem `json:"breakfast"`
	Lunch         []MealItem `json:"lunch"`
	Dinner        []MealItem `json:"dinner"`
	Snacks        []MealItem `json:"snacks"`
	TotalCalories float64    `json:"total_calories"`
	TotalProtein  float64    `json:"total_protein"`
	TotalCarbs    float64    `json:"total_carbs"`
	TotalFat      float64    `json:"total_fat"`
	CreatedAt     time.Time  `json:"created_at"`
}

// Result is a freshly generated plan plus the model's free-text advice, which
// is returned to the caller but not stored.
type Result struct {
	Plan             MealPlan `json:"meal_plan"`
	NutritionalNotes string   `json:"nutritional_notes"`
}
