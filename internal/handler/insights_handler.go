package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v3"
	"github.com/markuplens/markuplens/internal/service"
)

// InsightsHandler handles portfolio insight and session history endpoints.
type InsightsHandler struct {
	insights *service.InsightService
}

// NewInsightsHandler creates a new insights handler.
func NewInsightsHandler(insights *service.InsightService) *InsightsHandler {
	return &InsightsHandler{insights: insights}
}

// Register sets up insight routes.
func (h *InsightsHandler) Register(router fiber.Router) {
	users := router.Group("/users")
	users.Get("/:username/insights", h.GetInsights)
	users.Get("/:username/sessions", h.ListSessions)
}

// GetInsights returns the aggregated portfolio view for a username. The view
// is recomputed from stored history on every request.
func (h *InsightsHandler) GetInsights(c fiber.Ctx) error {
	username := c.Params("username")

	insights, err := h.insights.Portfolio(c.Context(), username)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(insights)
}

// ListSessions returns recent sessions for a username, newest first.
func (h *InsightsHandler) ListSessions(c fiber.Ctx) error {
	username := c.Params("username")
	limitStr := c.Query("limit", "10")
	limit, _ := strconv.Atoi(limitStr)

	sessions, err := h.insights.Sessions(c.Context(), username, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{
		"username": username,
		"count":    len(sessions),
		"sessions": sessions,
	})
}
