package planner

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
)

// PlanRepository is a database-backed repository for meal plans.
type PlanRepository struct {
	db *sql.DB
}

// NewPlanRepository creates a new PlanRepository.
func NewPlanRepository(d *sql.DB) *PlanRepository {
	return &PlanRepository{db: d}
}

// Save inserts a new meal plan into the database. Plans are never updated;
// generating again for the same date adds another record.
func (r *PlanRepository) Save(ctx context.Context, plan MealPlan) error {
	data, err := json.Marshal(plan)
	if err != nil {
		return fmt.Errorf("failed to marshal meal plan to JSON: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO meal_plans (id, user_id, plan_date, data, created_at) VALUES (?, ?, ?, ?, ?)`,
		plan.ID, plan.UserID, plan.Date, string(data), plan.CreatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to save meal plan for user %s: %w", plan.UserID, err)
	}
	return nil
}

// ListRecentByUserID retrieves the N most recent meal plans for a given user,
// ordered by plan date.
func (r *PlanRepository) ListRecentByUserID(ctx context.Context, userID string, limit int) ([]MealPlan, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, data FROM meal_plans
		WHERE user_id = ?
		ORDER BY plan_date DESC, created_at DESC
		LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent meal plans for user %s: %w", userID, err)
	}
	defer rows.Close()

	plans := []MealPlan{}
	for rows.Next() {
		var id, data string
		if err := rows.Scan(&id, &data); err != nil {
			return nil, fmt.Errorf("failed to scan meal plan row: %w", err)
		}
		var plan MealPlan
		if err := json.Unmarshal([]byte(data), &plan); err != nil {
			log.Printf("Warning: failed to unmarshal meal plan JSON for ID %s: %v", id, err)
			continue
		}
		plans = append(plans, plan)
	}
	return plans, rows.Err()
}
