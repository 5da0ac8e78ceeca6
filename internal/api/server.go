package api

import (
	"context"
	"fmt"
	"log"
	"slices"
	"strings"

	"calorie-buddy/internal/food"
	"calorie-buddy/internal/metrics"
	"calorie-buddy/internal/nutrition"
	"calorie-buddy/internal/planner"
	"calorie-buddy/internal/profile"
	"calorie-buddy/internal/summary"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
)

// BodyLimit caps request bodies, photo uploads included.
const BodyLimit = 10 * 1024 * 1024

type ProfileService interface {
	Create(ctx context.Context, in profile.Input) (profile.Profile, error)
	Get(ctx context.Context, id string) (profile.Profile, error)
	List(ctx context.Context) ([]profile.Profile, error)
	Update(ctx context.Context, id string, in profile.Input) (profile.Profile, error)
}

type FoodService interface {
	AnalyzeImage(ctx context.Context, req food.AnalyzeRequest) (food.Entry, nutrition.Analysis, error)
	Create(ctx context.Context, in food.CreateInput) (food.Entry, error)
	List(ctx context.Context, userID, date string) ([]food.Entry, error)
}

type SummaryService interface {
	Daily(ctx context.Context, userID, date string) (summary.Daily, error)
}

type PlanService interface {
	Generate(ctx context.Context, userID, date string) (planner.Result, error)
	List(ctx context.Context, userID string) ([]planner.MealPlan, error)
}

type UsageReporter interface {
	GetDailyUsage(ctx context.Context, days int) ([]metrics.DailyUsage, error)
}

// Services groups the operations exposed over HTTP. Usage may be nil.
type Services struct {
	Profiles  ProfileService
	Foods     FoodService
	Summaries SummaryService
	Plans     PlanService
	Usage     UsageReporter
}

type Options struct {
	CORSOrigins []string
	// JWTSecret enables bearer auth on every route except the health probe.
	JWTSecret string
	// DataDir is sized in the metrics report.
	DataDir string
	Logger  *log.Logger
}

// NewServer builds the fiber app with all routes mounted under /api.
func NewServer(svc Services, opts Options) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:   "calorie-buddy",
		BodyLimit: BodyLimit,
	})

	app.Use(NewAccessLogMiddleware(opts.Logger).Middleware())
	app.Use(NewErrorMiddleware().Middleware())
	app.Use(cors.New(corsConfig(opts.CORSOrigins)))

	api := app.Group("/api")
	NewHealthHandler().RegisterRoutes(api)

	if opts.JWTSecret != "" {
		api.Use(NewAuthMiddleware(opts.JWTSecret).Middleware())
	}

	NewProfileHandler(svc.Profiles).RegisterRoutes(api)
	NewFoodHandler(svc.Foods).RegisterRoutes(api)
	NewSummaryHandler(svc.Summaries).RegisterRoutes(api)
	NewPlanHandler(svc.Plans).RegisterRoutes(api)
	if svc.Usage != nil {
		NewMetricsHandler(svc.Usage, opts.DataDir).RegisterRoutes(api)
	}

	return app
}

func corsConfig(origins []string) cors.Config {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{fiber.MethodGet, fiber.MethodPost, fiber.MethodPut, fiber.MethodDelete, fiber.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: !slices.Contains(origins, "*"),
	}
}

// ListenAddr turns a bare port into a listen address.
func ListenAddr(port string) (string, error) {
	p := strings.TrimSpace(port)
	if p == "" {
		return "", fmt.Errorf("empty HTTP port")
	}
	if strings.HasPrefix(p, ":") {
		return p, nil
	}
	return ":" + p, nil
}
