package api

import (
	"strconv"

	"calorie-buddy/internal/metrics"

	"github.com/gofiber/fiber/v3"
)

const defaultUsageDays = 7

type MetricsHandler struct {
	usage   UsageReporter
	dataDir string
}

func NewMetricsHandler(usage UsageReporter, dataDir string) *MetricsHandler {
	return &MetricsHandler{usage: usage, dataDir: dataDir}
}

func (h *MetricsHandler) RegisterRoutes(r fiber.Router) {
	r.Get("/metrics", h.Report)
}

// Report returns per-day token usage for the last ?days (default 7) and the
// on-disk size of the data directory.
func (h *MetricsHandler) Report(c fiber.Ctx) error {
	days := defaultUsageDays
	if raw := c.Query("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return NewAppError(fiber.StatusBadRequest, "days must be a positive integer", err)
		}
		days = n
	}

	usage, err := h.usage.GetDailyUsage(c.Context(), days)
	if err != nil {
		return fromDomain(err)
	}
	if usage == nil {
		usage = []metrics.DailyUsage{}
	}

	return c.JSON(fiber.Map{
		"days":   days,
		"usage":  usage,
		"system": metrics.GetSysHealth(h.dataDir),
	})
}
