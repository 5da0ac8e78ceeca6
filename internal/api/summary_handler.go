package api

import "github.com/gofiber/fiber/v3"

type SummaryHandler struct {
	svc SummaryService
}

func NewSummaryHandler(svc SummaryService) *SummaryHandler {
	return &SummaryHandler{svc: svc}
}

func (h *SummaryHandler) RegisterRoutes(r fiber.Router) {
	r.Get("/daily-summary/:user_id", h.Daily)
}

// Daily reports consumption for date_filter, or for today when omitted.
func (h *SummaryHandler) Daily(c fiber.Ctx) error {
	d, err := h.svc.Daily(c.Context(), c.Params("user_id"), c.Query("date_filter"))
	if err != nil {
		return fromDomain(err)
	}
	return c.JSON(d)
}
