package profile

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"calorie-buddy/internal/nutrition"
)

var (
	// ErrNotFound is returned when no profile has the requested id.
	ErrNotFound = errors.New("user not found")
	// ErrInvalidProfile is returned when required attributes are missing.
	ErrInvalidProfile = errors.New("invalid profile")
)

// Profile is a user's physical attributes and the calorie target derived
// from them.
type Profile struct {
	ID                 string    `json:"id"`
	Name               string    `json:"name"`
	Email              string    `json:"email"`
	Age                int       `json:"age"`
	Gender             string    `json:"gender"`
	Height             float64   `json:"height"`
	Weight             float64   `json:"weight"`
	ActivityLevel      string    `json:"activity_level"`
	Goal               string    `json:"goal"`
	GoalWeight         *float64  `json:"goal_weight"`
	DailyCalorieTarget float64   `json:"daily_calorie_target"`
	CreatedAt          time.Time `json:"created_at"`
}

// Input carries the client-settable attributes for create and update. The
// calorie target is deliberately absent.
type Input struct {
	Name          string   `json:"name"`
	Email         string   `json:"email"`
	Age           *int     `json:"age"`
	Gender        string   `json:"gender"`
	Height        float64  `json:"height"`
	Weight        float64  `json:"weight"`
	ActivityLevel string   `json:"activity_level"`
	Goal          string   `json:"goal"`
	GoalWeight    *float64 `json:"goal_weight"`
}

// Validate reports missing required attributes. Age 0 is valid.
func (in Input) Validate() error {
	var missing []string
	if strings.TrimSpace(in.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(in.Email) == "" {
		missing = append(missing, "email")
	}
	if in.Age == nil || *in.Age < 0 {
		missing = append(missing, "age")
	}
	if strings.TrimSpace(in.Gender) == "" {
		missing = append(missing, "gender")
	}
	if in.Height <= 0 {
		missing = append(missing, "height")
	}
	if in.Weight <= 0 {
		missing = append(missing, "weight")
	}
	if strings.TrimSpace(in.ActivityLevel) == "" {
		missing = append(missing, "activity_level")
	}
	if strings.TrimSpace(in.Goal) == "" {
		missing = append(missing, "goal")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrInvalidProfile, strings.Join(missing, ", "))
	}
	return nil
}

// apply overwrites p's client-settable attributes and recomputes the target.
func (p *Profile) apply(in Input) {
	p.Name = strings.TrimSpace(in.Name)
	p.Email = strings.TrimSpace(in.Email)
	p.Age = *in.Age
	p.Gender = strings.TrimSpace(in.Gender)
	p.Height = in.Height
	p.Weight = in.Weight
	p.ActivityLevel = strings.TrimSpace(in.ActivityLevel)
	p.Goal = strings.TrimSpace(in.Goal)
	p.GoalWeight = in.GoalWeight
	p.DailyCalorieTarget = nutrition.CalorieTarget(p.Metrics())
}

// Metrics returns the attributes the calorie target depends on.
func (p Profile) Metrics() nutrition.BodyMetrics {
	return nutrition.BodyMetrics{
		WeightKg:      p.Weight,
		HeightCm:      p.Height,
		AgeYears:      p.Age,
		Gender:        p.Gender,
		ActivityLevel: p.ActivityLevel,
		Goal:          p.Goal,
	}
}
