package planner

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"text/template"
	"time"

	"calorie-buddy/internal/llm"
	"calorie-buddy/internal/profile"
	"calorie-buddy/internal/shared"

	"github.com/google/uuid"
)

//go:embed planner_prompt.md
var plannerPrompt string

var plannerTemplate = template.Must(template.New("planner").Parse(plannerPrompt))

const (
	plannerAgent = "MealPlanner"

	// ListLimit caps the number of plans returned by List.
	ListLimit = 30
)

// ErrMalformedPlan is returned when the model reply holds no parseable plan.
var ErrMalformedPlan = errors.New("failed to parse meal plan response")

// ProfileReader fetches profiles.
type ProfileReader interface {
	Get(ctx context.Context, id string) (profile.Profile, error)
}

// PlanStore persists generated plans.
type PlanStore interface {
	Save(ctx context.Context, plan MealPlan) error
	ListRecentByUserID(ctx context.Context, userID string, limit int) ([]MealPlan, error)
}

// MetricsRecorder records AI usage.
type MetricsRecorder interface {
	RecordMeta(ctx context.Context, meta shared.AgentMeta) error
}

// Planner handles the generation of meal plans.
type Planner struct {
	profiles ProfileReader
	textGen  llm.TextGenerator
	store    PlanStore
	metrics  MetricsRecorder
	now      func() time.Time
	newID    func() string
}

// NewPlanner creates a new Planner instance. metrics may be nil.
func NewPlanner(profiles ProfileReader, textGen llm.TextGenerator, store PlanStore, metrics MetricsRecorder) *Planner {
	return &Planner{
		profiles: profiles,
		textGen:  textGen,
		store:    store,
		metrics:  metrics,
		now:      func() time.Time { return time.Now().UTC() },
		newID:    uuid.NewString,
	}
}

// Generate asks the model for a plan fitted to userID's profile and stores
// it under date (default today). Unlike food analysis there is no fallback:
// an unparseable reply fails with ErrMalformedPlan and nothing is stored.
func (p *Planner) Generate(ctx context.Context, userID, date string) (Result, error) {
	date, err := shared.NormalizeDate(date, p.now())
	if err != nil {
		return Result{}, err
	}

	prof, err := p.profiles.Get(ctx, userID)
	if err != nil {
		return Result{}, err
	}

	prompt, err := buildPlannerPrompt(prof)
	if err != nil {
		return Result{}, fmt.Errorf("failed to build meal plan prompt: %w", err)
	}

	start := time.Now()
	resp, err := p.textGen.GenerateContent(ctx, prompt, userPrompt(date))
	p.record(ctx, shared.NewAgentMeta(plannerAgent, resp.Usage, start))
	if err != nil {
		return Result{}, fmt.Errorf("failed to generate meal plan: %w", err)
	}

	plan, notes, err := parsePlan(resp.Content)
	if err != nil {
		return Result{}, err
	}
	plan.ID = p.newID()
	plan.UserID = userID
	plan.Date = date
	plan.CreatedAt = p.now()

	if err := p.store.Save(ctx, plan); err != nil {
		return Result{}, fmt.Errorf("failed to store meal plan: %w", err)
	}
	return Result{Plan: plan, NutritionalNotes: notes}, nil
}

// List returns userID's most recent plans, newest date first.
func (p *Planner) List(ctx context.Context, userID string) ([]MealPlan, error) {
	return p.store.ListRecentByUserID(ctx, userID, ListLimit)
}

func (p *Planner) record(ctx context.Context, meta shared.AgentMeta) {
	if p.metrics == nil {
		return
	}
	if err := p.metrics.RecordMeta(ctx, meta); err != nil {
		log.Printf("Warning: failed to record metrics for %s: %v", meta.AgentName, err)
	}
}

func userPrompt(date string) string {
	return fmt.Sprintf("Create my personalized meal plan for %s.", date)
}

func buildPlannerPrompt(prof profile.Profile) (string, error) {
	var buf bytes.Buffer
	if err := plannerTemplate.Execute(&buf, prof); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// parsePlan extracts the plan object from a model reply. Missing lists become
// empty and missing totals zero.
func parsePlan(text string) (MealPlan, string, error) {
	candidate, ok := llm.ExtractJSONObject(text)
	if !ok {
		return MealPlan{}, "", ErrMalformedPlan
	}

	var raw map[string]any
	if err := json.Unmarshal([]byte(candidate), &raw); err != nil {
		return MealPlan{}, "", fmt.Errorf("%w: %v", ErrMalformedPlan, err)
	}

	plan := MealPlan{
		Breakfast:     items(raw["breakfast"]),
		Lunch:         items(raw["lunch"]),
		Dinner:        items(raw["dinner"]),
		Snacks:        items(raw["snacks"]),
		TotalCalories: total(raw["total_calories"]),
		TotalProtein:  total(raw["total_protein"]),
		TotalCarbs:    total(raw["total_carbs"]),
		TotalFat:      total(raw["total_fat"]),
	}
	notes, _ := shared.String(raw["nutritional_notes"])
	return plan, notes, nil
}

func items(v any) []MealItem {
	list, _ := v.([]any)
	out := make([]MealItem, 0, len(list))
	for _, el := range list {
		m, ok := el.(map[string]any)
		if !ok {
			continue
		}
		name, _ := shared.String(m["name"])
		desc, _ := shared.String(m["description"])
		out = append(out, MealItem{
			Name:        name,
			Calories:    total(m["calories"]),
			Protein:     total(m["protein"]),
			Carbs:       total(m["carbs"]),
			Fat:         total(m["fat"]),
			Description: desc,
		})
	}
	return out
}

func total(v any) float64 {
	f, _ := shared.Float(v)
	return f
}
