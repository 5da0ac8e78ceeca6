package nutrition

import "strings"

// Activity levels understood by the calorie target formula.
const (
	Sedentary        = "sedentary"
	LightlyActive    = "lightly_active"
	ModeratelyActive = "moderately_active"
	VeryActive       = "very_active"
	ExtraActive      = "extra_active"
)

// Goals understood by the calorie target formula.
const (
	LoseWeight     = "lose_weight"
	MaintainWeight = "maintain_weight"
	GainWeight     = "gain_weight"
)

// GoalAdjustment is the daily calorie deficit or surplus applied for a
// weight goal.
const GoalAdjustment = 500.0

var activityFactors = map[string]float64{
	Sedentary:        1.2,
	LightlyActive:    1.375,
	ModeratelyActive: 1.55,
	VeryActive:       1.725,
	ExtraActive:      1.9,
}

// BasalMetabolicRate computes the Mifflin-St Jeor BMR in kcal/day. Only a
// case-insensitive "male" selects the male constant; every other value uses
// the female one.
func BasalMetabolicRate(weightKg, heightCm float64, ageYears int, gender string) float64 {
	base := 10*weightKg + 6.25*heightCm - 5*float64(ageYears)
	if strings.EqualFold(strings.TrimSpace(gender), "male") {
		return base + 5
	}
	return base - 161
}

// ActivityFactor returns the TDEE multiplier for level. Unrecognized levels
// get the sedentary factor and ok=false.
func ActivityFactor(level string) (factor float64, ok bool) {
	factor, ok = activityFactors[level]
	if !ok {
		return activityFactors[Sedentary], false
	}
	return factor, true
}

// DailyCalorieTarget scales bmr by activity and shifts it by the goal.
func DailyCalorieTarget(bmr float64, activityLevel, goal string) float64 {
	factor, _ := ActivityFactor(activityLevel)
	tdee := bmr * factor

	switch goal {
	case LoseWeight:
		return tdee - GoalAdjustment
	case GainWeight:
		return tdee + GoalAdjustment
	default:
		return tdee
	}
}

// BodyMetrics are the profile attributes the calorie target depends on.
type BodyMetrics struct {
	WeightKg      float64
	HeightCm      float64
	AgeYears      int
	Gender        string
	ActivityLevel string
	Goal          string
}

// CalorieTarget composes BasalMetabolicRate and DailyCalorieTarget.
func CalorieTarget(m BodyMetrics) float64 {
	bmr := BasalMetabolicRate(m.WeightKg, m.HeightCm, m.AgeYears, m.Gender)
	return DailyCalorieTarget(bmr, m.ActivityLevel, m.Goal)
}
