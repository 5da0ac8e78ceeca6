package nutrition

import (
	"encoding/json"
	"strings"

	"calorie-buddy/internal/llm"
	"calorie-buddy/internal/shared"
)

// Values substituted for fields the model did not provide.
const (
	DefaultFoodName    = "Unknown food"
	DefaultCalories    = 200.0
	DefaultProtein     = 10.0
	DefaultCarbs       = 20.0
	DefaultFat         = 8.0
	DefaultFiber       = 3.0
	DefaultSodium      = 300.0
	DefaultSugar       = 5.0
	DefaultServingSize = "1 serving"

	// FallbackConfidence marks an analysis that was not parsed from the model.
	FallbackConfidence = 0.5
)

const (
	unparsedFoodName = "Unknown food item"
	textOnlyFoodName = "Food item from image"
	unparsedNote     = "Could not parse structured data, using defaults"
	textOnlyNote     = "Structured analysis available in text format"
)

// Analysis is the typed view of a food image analysis. Optional fields the
// model omitted are nil; WithDefaults fills them.
type Analysis struct {
	FoodName    *string
	Calories    *float64
	Protein     *float64
	Carbs       *float64
	Fat         *float64
	Fiber       *float64
	Sodium      *float64
	Sugar       *float64
	ServingSize *string
	Confidence  *float64

	// Raw is the decoded model object, kept verbatim as the audit record.
	Raw map[string]any
	// Fallback is set when Raw was synthesized because the model reply held
	// no parseable object.
	Fallback bool
}

// ParseAnalysis normalizes a vision model reply. It never fails: replies
// without a JSON object, or with a malformed one, yield the fallback record.
// Any reply containing '{' counts as an attempted object.
func ParseAnalysis(text string) Analysis {
	if !strings.Contains(text, "{") {
		return fallbackAnalysis(text, textOnlyFoodName, textOnlyNote)
	}
	candidate, ok := llm.ExtractJSONObject(text)
	if !ok {
		return fallbackAnalysis(text, unparsedFoodName, unparsedNote)
	}

	var raw map[string]any
	if err := json.Unmarshal([]byte(candidate), &raw); err != nil || raw == nil {
		return fallbackAnalysis(text, unparsedFoodName, unparsedNote)
	}

	return analysisFromMap(raw)
}

func analysisFromMap(raw map[string]any) Analysis {
	a := Analysis{Raw: raw}
	if s, ok := shared.String(raw["food_name"]); ok {
		a.FoodName = &s
	}
	if s, ok := shared.String(raw["serving_size"]); ok {
		a.ServingSize = &s
	}
	a.Calories = number(raw, "calories")
	a.Protein = number(raw, "protein")
	a.Carbs = number(raw, "carbs")
	a.Fat = number(raw, "fat")
	a.Fiber = number(raw, "fiber")
	a.Sodium = number(raw, "sodium")
	a.Sugar = number(raw, "sugar")
	a.Confidence = number(raw, "confidence")
	return a
}

func number(raw map[string]any, key string) *float64 {
	f, ok := shared.Float(raw[key])
	if !ok {
		return nil
	}
	return &f
}

func fallbackAnalysis(text, foodName, note string) Analysis {
	raw := map[string]any{
		"food_name":    foodName,
		"calories":     DefaultCalories,
		"protein":      DefaultProtein,
		"carbs":        DefaultCarbs,
		"fat":          DefaultFat,
		"fiber":        DefaultFiber,
		"sodium":       DefaultSodium,
		"sugar":        DefaultSugar,
		"serving_size": DefaultServingSize,
		"confidence":   FallbackConfidence,
		"detailed_breakdown": map[string]any{
			"analysis_text": strings.TrimSpace(text),
			"note":          note,
		},
	}
	a := analysisFromMap(raw)
	a.Fallback = true
	return a
}

// Nutrients is a fully populated analysis, ready to become a food entry.
type Nutrients struct {
	FoodName    string
	Calories    float64
	Protein     float64
	Carbs       float64
	Fat         float64
	Fiber       float64
	Sodium      float64
	Sugar       float64
	ServingSize string
	Confidence  float64
}

// WithDefaults resolves every optional field, substituting the package
// defaults for missing ones.
func (a Analysis) WithDefaults() Nutrients {
	n := Nutrients{
		FoodName:    orString(a.FoodName, DefaultFoodName),
		Calories:    orFloat(a.Calories, DefaultCalories),
		Protein:     orFloat(a.Protein, DefaultProtein),
		Carbs:       orFloat(a.Carbs, DefaultCarbs),
		Fat:         orFloat(a.Fat, DefaultFat),
		Fiber:       orFloat(a.Fiber, DefaultFiber),
		Sodium:      orFloat(a.Sodium, DefaultSodium),
		Sugar:       orFloat(a.Sugar, DefaultSugar),
		ServingSize: orString(a.ServingSize, DefaultServingSize),
		Confidence:  orFloat(a.Confidence, 0),
	}
	return n
}

func orString(v *string, fallback string) string {
	if v == nil {
		return fallback
	}
	return *v
}

func orFloat(v *float64, fallback float64) float64 {
	if v == nil {
		return fallback
	}
	return *v
}
