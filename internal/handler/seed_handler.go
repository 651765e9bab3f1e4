package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"devrush/internal/service"
)

// SeedHandler handles seed data endpoints.
type SeedHandler struct {
	seeder *service.Seeder
}

// NewSeedHandler creates a new seed handler.
func NewSeedHandler(seeder *service.Seeder) *SeedHandler {
	return &SeedHandler{seeder: seeder}
}

// SeedResponse represents the seed response.
type SeedResponse struct {
	Message string `json:"message"`
	service.SeedResult
}

// SeedTeams godoc
// @Summary Load the demo teams
// @Description Creates the demo participants and teams. Teams whose code already exists are skipped.
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} SeedResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /admin/seed [post]
func (h *SeedHandler) SeedTeams(c echo.Context) error {
	result, err := h.seeder.Seed(c.Request().Context(), service.DemoTeams)
	if err != nil {
		return errorResponse(err)
	}

	return c.JSON(http.StatusOK, SeedResponse{
		Message:    "demo teams seeded",
		SeedResult: result,
	})
}
