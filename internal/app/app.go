package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"

	"calorie-buddy/internal/api"
	"calorie-buddy/internal/cache"
	"calorie-buddy/internal/config"
	"calorie-buddy/internal/database"
	"calorie-buddy/internal/food"
	"calorie-buddy/internal/llm"
	"calorie-buddy/internal/metrics"
	"calorie-buddy/internal/nutrition"
	"calorie-buddy/internal/planner"
	"calorie-buddy/internal/profile"
	"calorie-buddy/internal/summary"
)

const groqTemperature = 0.7

// App holds the application's dependencies.
type App struct {
	Config *config.Config

	DB        *database.DB
	Cache     *cache.Redis
	Metrics   *metrics.Store
	Profiles  *profile.Service
	Foods     *food.Service
	Summaries *summary.Aggregator
	Planner   *planner.Planner

	closers []llm.Closer
}

// New opens the database, connects the cache and AI providers, and wires
// the services on top of them. Missing provider keys are not fatal: the
// affected operations fail when called.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	a := &App{Config: cfg, DB: db}
	a.Cache = cache.NewRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.SummaryCacheTTL, log.Default())
	a.Metrics = metrics.NewStore(db.SQL)

	vision, text, err := a.providers(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.Profiles = profile.NewService(profile.NewRepository(db.SQL), a.Cache)
	a.Foods = food.NewService(food.NewRepository(db.SQL), nutrition.NewAnalyzer(vision), a.Metrics, a.Cache)
	a.Summaries = summary.NewAggregator(a.Profiles, a.Foods, a.Cache)
	a.Planner = planner.NewPlanner(a.Profiles, text, planner.NewPlanRepository(db.SQL), a.Metrics)

	return a, nil
}

// providers returns the vision model used for food photos and the text model
// used for meal plans.
func (a *App) providers(ctx context.Context) (llm.VisionGenerator, llm.TextGenerator, error) {
	var vision llm.VisionGenerator = llm.Unconfigured{Provider: config.ProviderGemini}
	var gemini llm.TextGenerator = llm.Unconfigured{Provider: config.ProviderGemini}

	if a.Config.GeminiAPIKey != "" {
		client, err := llm.NewGeminiClient(ctx, a.Config.GeminiAPIKey, a.Config.GeminiModel)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create gemini client: %w", err)
		}
		a.closers = append(a.closers, client)
		vision, gemini = client, client
	} else {
		log.Println("Warning: GEMINI_API_KEY not set, food analysis is unavailable")
	}

	if a.Config.PlannerProvider != config.ProviderGroq {
		return vision, gemini, nil
	}
	if a.Config.GroqAPIKey == "" {
		log.Println("Warning: GROQ_API_KEY not set, meal planning is unavailable")
		return vision, llm.Unconfigured{Provider: config.ProviderGroq}, nil
	}
	return vision, llm.NewGroqClient(a.Config.GroqAPIKey, a.Config.GroqModel, groqTemperature), nil
}

// Services exposes the wired services to the HTTP layer.
func (a *App) Services() api.Services {
	return api.Services{
		Profiles:  a.Profiles,
		Foods:     a.Foods,
		Summaries: a.Summaries,
		Plans:     a.Planner,
		Usage:     a.Metrics,
	}
}

// ServerOptions derives the HTTP options from the configuration.
func (a *App) ServerOptions() api.Options {
	return api.Options{
		CORSOrigins: a.Config.CORSOrigins,
		JWTSecret:   a.Config.APIJWTSecret,
		DataDir:     filepath.Dir(a.Config.DatabasePath),
		Logger:      log.Default(),
	}
}

// Close releases the provider clients, the cache and the database.
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close ai client: %w", err))
		}
	}
	if err := a.Cache.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close cache: %w", err))
	}
	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}
	return errors.Join(errs...)
}
