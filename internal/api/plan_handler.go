package api

import (
	"calorie-buddy/internal/planner"

	"github.com/gofiber/fiber/v3"
)

type PlanHandler struct {
	svc PlanService
}

func NewPlanHandler(svc PlanService) *PlanHandler {
	return &PlanHandler{svc: svc}
}

func (h *PlanHandler) RegisterRoutes(r fiber.Router) {
	r.Post("/meal-plan/:user_id", h.Generate)
	r.Get("/meal-plans/:user_id", h.List)
}

func (h *PlanHandler) Generate(c fiber.Ctx) error {
	res, err := h.svc.Generate(c.Context(), c.Params("user_id"), c.Query("target_date"))
	if err != nil {
		return fromDomain(err)
	}
	return c.JSON(fiber.Map{
		"success":           true,
		"meal_plan":         res.Plan,
		"nutritional_notes": res.NutritionalNotes,
	})
}

func (h *PlanHandler) List(c fiber.Ctx) error {
	plans, err := h.svc.List(c.Context(), c.Params("user_id"))
	if err != nil {
		return fromDomain(err)
	}
	if plans == nil {
		plans = []planner.MealPlan{}
	}
	return c.JSON(plans)
}
