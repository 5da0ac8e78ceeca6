package food

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"calorie-buddy/internal/llm"
	"calorie-buddy/internal/nutrition"
	"calorie-buddy/internal/shared"

	"github.com/google/uuid"
)

// ListLimit caps the number of entries returned by List.
const ListLimit = 100

// Store persists food entries.
type Store interface {
	Save(ctx context.Context, e Entry) error
	List(ctx context.Context, userID, date string, limit int) ([]Entry, error)
}

// ImageAnalyzer estimates nutrition from a food photo.
type ImageAnalyzer interface {
	Analyze(ctx context.Context, img llm.Image) (nutrition.Analysis, shared.AgentMeta, error)
}

// MetricsRecorder records AI usage.
type MetricsRecorder interface {
	RecordMeta(ctx context.Context, meta shared.AgentMeta) error
}

// SummaryInvalidator drops the cached summary for one user and day.
type SummaryInvalidator interface {
	InvalidateDay(ctx context.Context, userID, date string) error
}

// Service creates and lists food entries.
type Service struct {
	store    Store
	analyzer ImageAnalyzer
	metrics  MetricsRecorder
	cache    SummaryInvalidator
	now      func() time.Time
	newID    func() string
}

// NewService creates a Service. metrics and cache may be nil.
func NewService(store Store, analyzer ImageAnalyzer, metrics MetricsRecorder, cache SummaryInvalidator) *Service {
	return &Service{
		store:    store,
		analyzer: analyzer,
		metrics:  metrics,
		cache:    cache,
		now:      func() time.Time { return time.Now().UTC() },
		newID:    uuid.NewString,
	}
}

// AnalyzeRequest is an uploaded food photo.
type AnalyzeRequest struct {
	UserID      string
	MealType    string
	Date        string
	ContentType string
	Data        []byte
}

// AnalyzeImage runs the photo through the analyzer and stores the resulting
// entry along with the image and the full analysis.
func (s *Service) AnalyzeImage(ctx context.Context, req AnalyzeRequest) (Entry, nutrition.Analysis, error) {
	if !strings.HasPrefix(req.ContentType, "image/") {
		return Entry{}, nutrition.Analysis{}, ErrNotImage
	}
	if err := requireFields(map[string]string{"user_id": req.UserID, "meal_type": req.MealType}); err != nil {
		return Entry{}, nutrition.Analysis{}, err
	}
	date, err := shared.NormalizeDate(req.Date, s.now())
	if err != nil {
		return Entry{}, nutrition.Analysis{}, err
	}

	analysis, meta, err := s.analyzer.Analyze(ctx, llm.Image{MIMEType: req.ContentType, Data: req.Data})
	s.record(ctx, meta)
	if err != nil {
		return Entry{}, nutrition.Analysis{}, err
	}

	n := analysis.WithDefaults()
	e := Entry{
		ID:              s.newID(),
		UserID:          strings.TrimSpace(req.UserID),
		FoodName:        n.FoodName,
		Calories:        n.Calories,
		Protein:         &n.Protein,
		Carbs:           &n.Carbs,
		Fat:             &n.Fat,
		Fiber:           &n.Fiber,
		Sodium:          &n.Sodium,
		Sugar:           &n.Sugar,
		ServingSize:     n.ServingSize,
		MealType:        MealSlot(strings.TrimSpace(req.MealType)),
		Image:           req.Data,
		AnalysisDetails: analysis.Raw,
		Date:            date,
		CreatedAt:       s.now(),
	}

	if err := s.save(ctx, e); err != nil {
		return Entry{}, nutrition.Analysis{}, err
	}
	if analysis.Fallback {
		log.Printf("Food analysis for user %s could not be parsed, stored defaults (entry %s)", e.UserID, e.ID)
	}
	return e, analysis, nil
}

// CreateInput is a manually logged food entry.
type CreateInput struct {
	UserID      string   `json:"user_id"`
	FoodName    string   `json:"food_name"`
	Calories    *float64 `json:"calories"`
	Protein     *float64 `json:"protein"`
	Carbs       *float64 `json:"carbs"`
	Fat         *float64 `json:"fat"`
	Fiber       *float64 `json:"fiber"`
	Sodium      *float64 `json:"sodium"`
	Sugar       *float64 `json:"sugar"`
	ServingSize string   `json:"serving_size"`
	MealType    string   `json:"meal_type"`
	Date        string   `json:"date"`
}

// Create stores a manually logged entry.
func (s *Service) Create(ctx context.Context, in CreateInput) (Entry, error) {
	if err := requireFields(map[string]string{"user_id": in.UserID, "food_name": in.FoodName, "meal_type": in.MealType}); err != nil {
		return Entry{}, err
	}
	if in.Calories == nil {
		return Entry{}, fmt.Errorf("%w: missing calories", ErrInvalidEntry)
	}
	date, err := shared.NormalizeDate(in.Date, s.now())
	if err != nil {
		return Entry{}, err
	}

	e := Entry{
		ID:          s.newID(),
		UserID:      strings.TrimSpace(in.UserID),
		FoodName:    strings.TrimSpace(in.FoodName),
		Calories:    *in.Calories,
		Protein:     in.Protein,
		Carbs:       in.Carbs,
		Fat:         in.Fat,
		Fiber:       in.Fiber,
		Sodium:      in.Sodium,
		Sugar:       in.Sugar,
		ServingSize: strings.TrimSpace(in.ServingSize),
		MealType:    MealSlot(strings.TrimSpace(in.MealType)),
		Date:        date,
		CreatedAt:   s.now(),
	}
	if err := s.save(ctx, e); err != nil {
		return Entry{}, err
	}
	return e, nil
}

// List returns up to ListLimit of a user's entries, newest first, optionally
// restricted to one date.
func (s *Service) List(ctx context.Context, userID, date string) ([]Entry, error) {
	if date != "" {
		d, err := shared.NormalizeDate(date, s.now())
		if err != nil {
			return nil, err
		}
		date = d
	}
	return s.store.List(ctx, userID, date, ListLimit)
}

// ForDay returns every entry a user logged on date.
func (s *Service) ForDay(ctx context.Context, userID, date string) ([]Entry, error) {
	return s.store.List(ctx, userID, date, 0)
}

func (s *Service) save(ctx context.Context, e Entry) error {
	if err := s.store.Save(ctx, e); err != nil {
		return fmt.Errorf("failed to store food entry: %w", err)
	}
	if s.cache != nil {
		if err := s.cache.InvalidateDay(ctx, e.UserID, e.Date); err != nil {
			log.Printf("Warning: failed to invalidate cached summary for %s on %s: %v", e.UserID, e.Date, err)
		}
	}
	return nil
}

func (s *Service) record(ctx context.Context, meta shared.AgentMeta) {
	if s.metrics == nil {
		return
	}
	if err := s.metrics.RecordMeta(ctx, meta); err != nil {
		log.Printf("Warning: failed to record metrics for %s: %v", meta.AgentName, err)
	}
}

func requireFields(fields map[string]string) error {
	var missing []string
	for _, name := range []string{"user_id", "food_name", "meal_type"} {
		v, ok := fields[name]
		if ok && strings.TrimSpace(v) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrInvalidEntry, strings.Join(missing, ", "))
	}
	return nil
}
