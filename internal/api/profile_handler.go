package api

import (
	"calorie-buddy/internal/profile"

	"github.com/gofiber/fiber/v3"
)

type ProfileHandler struct {
	svc ProfileService
}

func NewProfileHandler(svc ProfileService) *ProfileHandler {
	return &ProfileHandler{svc: svc}
}

func (h *ProfileHandler) RegisterRoutes(r fiber.Router) {
	r.Post("/users", h.Create)
	r.Get("/users", h.List)
	r.Get("/users/:id", h.Get)
	r.Put("/users/:id", h.Update)
}

func (h *ProfileHandler) Create(c fiber.Ctx) error {
	var in profile.Input
	if err := c.Bind().Body(&in); err != nil {
		return NewAppError(fiber.StatusBadRequest, "Invalid request payload", err)
	}

	p, err := h.svc.Create(c.Context(), in)
	if err != nil {
		return fromDomain(err)
	}
	return c.Status(fiber.StatusOK).JSON(p)
}

func (h *ProfileHandler) Get(c fiber.Ctx) error {
	p, err := h.svc.Get(c.Context(), c.Params("id"))
	if err != nil {
		return fromDomain(err)
	}
	return c.JSON(p)
}

func (h *ProfileHandler) List(c fiber.Ctx) error {
	profiles, err := h.svc.List(c.Context())
	if err != nil {
		return fromDomain(err)
	}
	if profiles == nil {
		profiles = []profile.Profile{}
	}
	return c.JSON(profiles)
}

func (h *ProfileHandler) Update(c fiber.Ctx) error {
	var in profile.Input
	if err := c.Bind().Body(&in); err != nil {
		return NewAppError(fiber.StatusBadRequest, "Invalid request payload", err)
	}

	p, err := h.svc.Update(c.Context(), c.Params("id"), in)
	if err != nil {
		return fromDomain(err)
	}
	return c.JSON(p)
}
