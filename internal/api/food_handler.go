package api

import (
	"fmt"
	"io"

	"calorie-buddy/internal/food"

	"github.com/gofiber/fiber/v3"
)

type FoodHandler struct {
	svc FoodService
}

func NewFoodHandler(svc FoodService) *FoodHandler {
	return &FoodHandler{svc: svc}
}

func (h *FoodHandler) RegisterRoutes(r fiber.Router) {
	r.Post("/analyze-food", h.Analyze)
	r.Post("/food-entries", h.Create)
	r.Get("/food-entries/:user_id", h.List)
}

// Analyze accepts a multipart upload with a "file" part and the
// user_id, meal_type and optional date form fields.
func (h *FoodHandler) Analyze(c fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return NewAppError(fiber.StatusUnprocessableEntity, "missing required field: file", err)
	}

	f, err := fh.Open()
	if err != nil {
		return NewAppError(fiber.StatusBadRequest, "failed to open uploaded file", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return NewAppError(fiber.StatusBadRequest, "failed to read uploaded file", err)
	}

	entry, analysis, err := h.svc.AnalyzeImage(c.Context(), food.AnalyzeRequest{
		UserID:      c.FormValue("user_id"),
		MealType:    c.FormValue("meal_type"),
		Date:        c.FormValue("date"),
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	})
	if err != nil {
		return fromDomain(err)
	}

	return c.JSON(fiber.Map{
		"success":    true,
		"food_entry": entry,
		"analysis":   analysis.Raw,
	})
}

func (h *FoodHandler) Create(c fiber.Ctx) error {
	var in food.CreateInput
	if err := c.Bind().Body(&in); err != nil {
		return NewAppError(fiber.StatusBadRequest, "Invalid request payload", err)
	}

	entry, err := h.svc.Create(c.Context(), in)
	if err != nil {
		return fromDomain(err)
	}
	return c.JSON(entry)
}

func (h *FoodHandler) List(c fiber.Ctx) error {
	entries, err := h.svc.List(c.Context(), c.Params("user_id"), c.Query("date_filter"))
	if err != nil {
		return fromDomain(fmt.Errorf("failed to list food entries: %w", err))
	}
	if entries == nil {
		entries = []food.Entry{}
	}
	return c.JSON(entries)
}
