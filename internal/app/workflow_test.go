package app

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"calorie-buddy/internal/api"
	"calorie-buddy/internal/summary"
)

// TestSummaryWorkflow drives the API end to end. Set REDIS_ADDR to run it
// against a live Redis; otherwise the summary cache is bypassed.
func TestSummaryWorkflow(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	cfg.RedisAddr = os.Getenv("REDIS_ADDR")

	a, err := New(ctx, cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer a.Close()

	opts := a.ServerOptions()
	opts.Logger = log.New(io.Discard, "", 0)
	server := api.NewServer(a.Services(), opts)

	call := func(method, path string, body any, out any) int {
		t.Helper()
		var r io.Reader
		if body != nil {
			b, _ := json.Marshal(body)
			r = bytes.NewReader(b)
		}
		req := httptest.NewRequest(method, path, r)
		req.Header.Set("Content-Type", "application/json")
		resp, err := server.Test(req)
		if err != nil {
			t.Fatalf("%s %s failed: %v", method, path, err)
		}
		defer resp.Body.Close()
		if out != nil {
			if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
				t.Fatalf("failed to decode %s %s: %v", method, path, err)
			}
		}
		return resp.StatusCode
	}

	var created struct {
		ID string `json:"id"`
	}
	if code := call(http.MethodPost, "/api/users", map[string]any{
		"name": "Ada", "email": "ada@example.com", "age": 28, "gender": "female",
		"height": 165, "weight": 68, "activity_level": "sedentary", "goal": "maintain_weight",
	}, &created); code != http.StatusOK {
		t.Fatalf("expected 200 creating profile, got %d", code)
	}
	if a.Cache.Enabled() {
		defer a.Cache.InvalidateUser(ctx, created.ID)
	}

	logEntry := func(name string, kcal float64) {
		t.Helper()
		code := call(http.MethodPost, "/api/food-entries", map[string]any{
			"user_id": created.ID, "food_name": name, "calories": kcal,
			"meal_type": "lunch", "date": "2024-05-01",
		}, nil)
		if code != http.StatusOK {
			t.Fatalf("expected 200 logging %s, got %d", name, code)
		}
	}
	summaryPath := "/api/daily-summary/" + created.ID + "?date_filter=2024-05-01"

	logEntry("Soup", 250)
	var first summary.Daily
	call(http.MethodGet, summaryPath, nil, &first)
	if first.Consumed.Calories != 250 {
		t.Fatalf("expected 250 consumed, got %v", first.Consumed.Calories)
	}

	// A new entry must be visible even when the previous summary was cached.
	logEntry("Bread", 150)
	var second summary.Daily
	call(http.MethodGet, summaryPath, nil, &second)
	if second.Consumed.Calories != 400 || second.EntriesCount != 2 {
		t.Errorf("expected 400 kcal over 2 entries, got %v over %d", second.Consumed.Calories, second.EntriesCount)
	}

	// Profile updates change the target used by cached summaries.
	if code := call(http.MethodPut, "/api/users/"+created.ID, map[string]any{
		"name": "Ada", "email": "ada@example.com", "age": 28, "gender": "female",
		"height": 165, "weight": 68, "activity_level": "very_active", "goal": "maintain_weight",
	}, nil); code != http.StatusOK {
		t.Fatalf("expected 200 updating profile, got %d", code)
	}
	var third summary.Daily
	call(http.MethodGet, summaryPath, nil, &third)
	if third.DailyTarget <= second.DailyTarget {
		t.Errorf("expected target to rise after update, got %v then %v", second.DailyTarget, third.DailyTarget)
	}
}
