package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"math"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"calorie-buddy/internal/cache"
	"calorie-buddy/internal/database"
	"calorie-buddy/internal/food"
	"calorie-buddy/internal/llm"
	"calorie-buddy/internal/metrics"
	"calorie-buddy/internal/nutrition"
	"calorie-buddy/internal/planner"
	"calorie-buddy/internal/profile"
	"calorie-buddy/internal/summary"

	"github.com/gofiber/fiber/v3"
)

type fakeVision struct {
	reply string
}

func (f fakeVision) DescribeImage(_ context.Context, _, _ string, _ llm.Image) (llm.ContentResponse, error) {
	return llm.ContentResponse{Content: f.reply}, nil
}

type fakeText struct {
	reply string
}

func (f fakeText) GenerateContent(_ context.Context, _, _ string) (llm.ContentResponse, error) {
	return llm.ContentResponse{Content: f.reply}, nil
}

type testEnv struct {
	vision llm.VisionGenerator
	text   llm.TextGenerator
	secret string
}

func newTestApp(t *testing.T, env testEnv) *fiber.App {
	t.Helper()
	dir := t.TempDir()
	db, err := database.NewDB(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if env.vision == nil {
		env.vision = llm.Unconfigured{Provider: "gemini"}
	}
	if env.text == nil {
		env.text = llm.Unconfigured{Provider: "gemini"}
	}

	summaryCache := cache.NewRedis(context.Background(), "", "", time.Minute, nil)
	usage := metrics.NewStore(db.SQL)
	profiles := profile.NewService(profile.NewRepository(db.SQL), summaryCache)
	foods := food.NewService(food.NewRepository(db.SQL), nutrition.NewAnalyzer(env.vision), usage, summaryCache)

	return NewServer(Services{
		Profiles:  profiles,
		Foods:     foods,
		Summaries: summary.NewAggregator(profiles, foods, summaryCache),
		Plans:     planner.NewPlanner(profiles, env.text, planner.NewPlanRepository(db.SQL), usage),
		Usage:     usage,
	}, Options{
		JWTSecret: env.secret,
		DataDir:   dir,
		Logger:    log.New(io.Discard, "", 0),
	})
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request %s %s failed: %v", method, path, err)
	}
	return resp
}

func decode(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
}

func uploadRequest(t *testing.T, contentType string, fields map[string]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("failed to write field: %v", err)
		}
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="meal.jpg"`)
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	if err != nil {
		t.Fatalf("failed to create file part: %v", err)
	}
	part.Write([]byte{0xff, 0xd8, 0xff, 0xe0})
	w.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/analyze-food", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

var ada = map[string]any{
	"name":           "Ada",
	"email":          "ada@example.com",
	"age":            28,
	"gender":         "female",
	"height":         165,
	"weight":         68,
	"activity_level": "moderately_active",
	"goal":           "lose_weight",
}

func createProfile(t *testing.T, app *fiber.App) profile.Profile {
	t.Helper()
	resp := doJSON(t, app, http.MethodPost, "/api/users", ada)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 creating profile, got %d", resp.StatusCode)
	}
	var p profile.Profile
	decode(t, resp, &p)
	return p
}

func TestHealth(t *testing.T) {
	app := newTestApp(t, testEnv{})

	resp := doJSON(t, app, http.MethodGet, "/api/health", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var body map[string]string
	decode(t, resp, &body)
	if body["status"] != "healthy" {
		t.Errorf("expected healthy, got %q", body["status"])
	}
	if _, err := time.Parse(time.RFC3339, body["timestamp"]); err != nil {
		t.Errorf("timestamp %q is not RFC 3339: %v", body["timestamp"], err)
	}
}

func TestProfiles(t *testing.T) {
	app := newTestApp(t, testEnv{})
	created := createProfile(t, app)

	t.Run("CreateComputesTarget", func(t *testing.T) {
		if created.ID == "" {
			t.Fatal("expected generated id")
		}
		if !almostEqual(created.DailyCalorieTarget, 1685.8875) {
			t.Errorf("expected target 1685.8875, got %v", created.DailyCalorieTarget)
		}
	})

	t.Run("Get", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodGet, "/api/users/"+created.ID, nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}
		var p profile.Profile
		decode(t, resp, &p)
		if p.Email != "ada@example.com" {
			t.Errorf("unexpected profile: %+v", p)
		}
	})

	t.Run("GetMissing", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodGet, "/api/users/missing", nil)
		if resp.StatusCode != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", resp.StatusCode)
		}
		var body ErrorResponse
		decode(t, resp, &body)
		if body.Status != http.StatusNotFound || body.Message != "User not found" {
			t.Errorf("unexpected error body: %+v", body)
		}
	})

	t.Run("List", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodGet, "/api/users", nil)
		var list []profile.Profile
		decode(t, resp, &list)
		if len(list) != 1 {
			t.Errorf("expected 1 profile, got %d", len(list))
		}
	})

	t.Run("UpdateRecomputesTarget", func(t *testing.T) {
		in := map[string]any{}
		for k, v := range ada {
			in[k] = v
		}
		in["goal"] = "maintain_weight"
		resp := doJSON(t, app, http.MethodPut, "/api/users/"+created.ID, in)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}
		var p profile.Profile
		decode(t, resp, &p)
		if !almostEqual(p.DailyCalorieTarget, 2185.8875) {
			t.Errorf("expected target 2185.8875, got %v", p.DailyCalorieTarget)
		}
	})

	t.Run("UpdateMissing", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPut, "/api/users/missing", ada)
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("expected 404, got %d", resp.StatusCode)
		}
	})

	t.Run("MissingFields", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPost, "/api/users", map[string]any{"name": "Bob"})
		if resp.StatusCode != http.StatusUnprocessableEntity {
			t.Errorf("expected 422, got %d", resp.StatusCode)
		}
	})

	t.Run("BadBody", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/users", strings.NewReader("{not json"))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", resp.StatusCode)
		}
	})
}

func TestDailySummary(t *testing.T) {
	app := newTestApp(t, testEnv{})
	p := createProfile(t, app)

	for _, e := range []map[string]any{
		{"user_id": p.ID, "food_name": "Oatmeal", "calories": 300, "protein": 10, "meal_type": "breakfast", "date": "2024-05-01"},
		{"user_id": p.ID, "food_name": "Salad", "calories": 500, "protein": 20, "meal_type": "lunch", "date": "2024-05-01"},
		{"user_id": p.ID, "food_name": "Pizza", "calories": 900, "meal_type": "dinner", "date": "2024-05-02"},
	} {
		resp := doJSON(t, app, http.MethodPost, "/api/food-entries", e)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200 creating entry, got %d", resp.StatusCode)
		}
		resp.Body.Close()
	}

	resp := doJSON(t, app, http.MethodGet, "/api/daily-summary/"+p.ID+"?date_filter=2024-05-01", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var d summary.Daily
	decode(t, resp, &d)

	if d.Consumed.Calories != 800 {
		t.Errorf("expected 800 consumed, got %v", d.Consumed.Calories)
	}
	if d.Consumed.Protein != 30 {
		t.Errorf("expected 30 protein, got %v", d.Consumed.Protein)
	}
	if !almostEqual(d.Remaining.Calories, 885.8875) {
		t.Errorf("expected remaining 885.8875, got %v", d.Remaining.Calories)
	}
	if len(d.Meals.Breakfast) != 1 || len(d.Meals.Lunch) != 1 || len(d.Meals.Dinner) != 0 {
		t.Errorf("unexpected grouping: %+v", d.Meals)
	}
	if d.EntriesCount != 2 {
		t.Errorf("expected 2 entries, got %d", d.EntriesCount)
	}

	t.Run("ListFiltered", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodGet, "/api/food-entries/"+p.ID+"?date_filter=2024-05-02", nil)
		var entries []food.Entry
		decode(t, resp, &entries)
		if len(entries) != 1 || entries[0].FoodName != "Pizza" {
			t.Errorf("unexpected entries: %+v", entries)
		}
	})

	t.Run("MissingProfile", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodGet, "/api/daily-summary/ghost?date_filter=2024-05-01", nil)
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("expected 404, got %d", resp.StatusCode)
		}
	})

	t.Run("InvalidDate", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodGet, "/api/daily-summary/"+p.ID+"?date_filter=05-01-2024", nil)
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", resp.StatusCode)
		}
	})
}

func TestAnalyzeFood(t *testing.T) {
	reply := "Here you go: {\"food_name\": \"Banana\", \"calories\": 105, \"protein\": 1.3, \"confidence\": 0.9}"
	app := newTestApp(t, testEnv{vision: fakeVision{reply: reply}})
	p := createProfile(t, app)

	t.Run("StoresEntry", func(t *testing.T) {
		req := uploadRequest(t, "image/jpeg", map[string]string{"user_id": p.ID, "meal_type": "snack", "date": "2024-05-01"})
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}
		var body struct {
			Success   bool           `json:"success"`
			FoodEntry food.Entry     `json:"food_entry"`
			Analysis  map[string]any `json:"analysis"`
		}
		decode(t, resp, &body)
		if !body.Success || body.FoodEntry.FoodName != "Banana" || body.FoodEntry.Calories != 105 {
			t.Errorf("unexpected body: %+v", body)
		}
		if body.FoodEntry.Fat == nil || *body.FoodEntry.Fat != 0 {
			t.Errorf("expected fat defaulted to 0, got %v", body.FoodEntry.Fat)
		}
		if len(body.FoodEntry.Image) == 0 {
			t.Error("expected stored image")
		}
		if body.Analysis["confidence"] != 0.9 {
			t.Errorf("expected raw analysis, got %v", body.Analysis)
		}
	})

	t.Run("RejectsNonImage", func(t *testing.T) {
		req := uploadRequest(t, "text/plain", map[string]string{"user_id": p.ID, "meal_type": "snack"})
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", resp.StatusCode)
		}
	})

	t.Run("ProviderNotConfigured", func(t *testing.T) {
		app := newTestApp(t, testEnv{})
		req := uploadRequest(t, "image/png", map[string]string{"user_id": "u1", "meal_type": "lunch"})
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		if resp.StatusCode != http.StatusInternalServerError {
			t.Errorf("expected 500, got %d", resp.StatusCode)
		}
	})
}

func TestMealPlan(t *testing.T) {
	reply := `{"breakfast": [{"name": "Eggs", "calories": 300}], "snacks": [], "total_calories": 1600, "nutritional_notes": "Balanced"}`
	app := newTestApp(t, testEnv{text: fakeText{reply: reply}})
	p := createProfile(t, app)

	resp := doJSON(t, app, http.MethodPost, "/api/meal-plan/"+p.ID+"?target_date=2024-05-01", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var body struct {
		Success          bool             `json:"success"`
		MealPlan         planner.MealPlan `json:"meal_plan"`
		NutritionalNotes string           `json:"nutritional_notes"`
	}
	decode(t, resp, &body)
	if !body.Success || body.MealPlan.TotalCalories != 1600 || body.NutritionalNotes != "Balanced" {
		t.Errorf("unexpected body: %+v", body)
	}
	if len(body.MealPlan.Breakfast) != 1 || body.MealPlan.Date != "2024-05-01" {
		t.Errorf("unexpected plan: %+v", body.MealPlan)
	}

	t.Run("List", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodGet, "/api/meal-plans/"+p.ID, nil)
		var plans []planner.MealPlan
		decode(t, resp, &plans)
		if len(plans) != 1 {
			t.Errorf("expected 1 plan, got %d", len(plans))
		}
	})

	t.Run("UnknownProfile", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPost, "/api/meal-plan/missing", nil)
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("expected 404, got %d", resp.StatusCode)
		}
	})

	t.Run("MalformedReply", func(t *testing.T) {
		app := newTestApp(t, testEnv{text: fakeText{reply: "I cannot help with that."}})
		p := createProfile(t, app)
		resp := doJSON(t, app, http.MethodPost, "/api/meal-plan/"+p.ID, nil)
		if resp.StatusCode != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", resp.StatusCode)
		}
		var body ErrorResponse
		decode(t, resp, &body)
		if body.Message != "Failed to parse meal plan response" {
			t.Errorf("unexpected message: %q", body.Message)
		}
	})
}

func TestMetricsReport(t *testing.T) {
	app := newTestApp(t, testEnv{text: fakeText{reply: `{"total_calories": 1500}`}})

	resp := doJSON(t, app, http.MethodGet, "/api/metrics?days=3", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var body struct {
		Days  int                  `json:"days"`
		Usage []metrics.DailyUsage `json:"usage"`
	}
	decode(t, resp, &body)
	if body.Days != 3 || body.Usage == nil {
		t.Errorf("unexpected body: %+v", body)
	}

	resp = doJSON(t, app, http.MethodGet, "/api/metrics?days=zero", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", resp.StatusCode)
	}
}

func TestUnknownRoute(t *testing.T) {
	app := newTestApp(t, testEnv{})
	resp := doJSON(t, app, http.MethodGet, "/api/nope", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	var body ErrorResponse
	decode(t, resp, &body)
	if body.Status != http.StatusNotFound {
		t.Errorf("unexpected body: %+v", body)
	}
}
