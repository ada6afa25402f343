package handlers

import (
	"errors"

	"teenskill-api/internal/core/services"
	"teenskill-api/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// DashboardHandler handles dashboard endpoints
type DashboardHandler struct {
	dashboardService *services.DashboardService
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(dashboardService *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// Stats returns the caller's dashboard numbers
// @Summary Get dashboard stats
// @Description Role-specific stats: balance/XP/quota for freelancers, task counts for clients
// @Tags Dashboard
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /dashboard [get]
func (h *DashboardHandler) Stats(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	stats, err := h.dashboardService.GetStats(c.Context(), userID)
	if err != nil {
		if errors.Is(err, services.ErrInvalidRole) {
			return response.Forbidden(c, "Unknown role")
		}
		return response.InternalServerError(c, "Failed to get dashboard stats")
	}

	return response.Success(c, "Dashboard retrieved successfully", fiber.Map{
		"stats": stats,
	})
}
