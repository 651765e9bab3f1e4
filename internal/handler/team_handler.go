package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"devrush/internal/model"
)

// TeamHandler handles team formation endpoints for the caller's session.
type TeamHandler struct{}

// NewTeamHandler creates a new team handler.
func NewTeamHandler() *TeamHandler {
	return &TeamHandler{}
}

// CreateTeamRequest represents a team creation request.
type CreateTeamRequest struct {
	TeamName string      `json:"team_name" validate:"required,min=3,max=50"`
	Track    model.Track `json:"track" validate:"required,oneof=GenAI Blockchain Automation OpenInnovation"`
}

// CreateTeamResponse carries the join code to share with teammates.
type CreateTeamResponse struct {
	TeamCode string      `json:"team_code"`
	Team     *model.Team `json:"team"`
}

// JoinTeamRequest represents a join-by-code request.
type JoinTeamRequest struct {
	TeamCode string `json:"team_code" validate:"required,max=16"`
}

// Create godoc
// @Summary Create a team
// @Description The caller becomes the leader of a new pending team.
// @Tags teams
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateTeamRequest true "Team data"
// @Success 201 {object} CreateTeamResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /teams [post]
func (h *TeamHandler) Create(c echo.Context) error {
	m, err := requireSession(c)
	if err != nil {
		return err
	}

	var req CreateTeamRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	code, err := m.CreateTeam(c.Request().Context(), req.TeamName, req.Track)
	if err != nil {
		return errorResponse(err)
	}

	return c.JSON(http.StatusCreated, CreateTeamResponse{
		TeamCode: code,
		Team:     m.Team(),
	})
}

// Join godoc
// @Summary Join a team
// @Description Codes are matched after trimming and upper-casing.
// @Tags teams
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body JoinTeamRequest true "Team code"
// @Success 200 {object} model.Team
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /teams/join [post]
func (h *TeamHandler) Join(c echo.Context) error {
	m, err := requireSession(c)
	if err != nil {
		return err
	}

	var req JoinTeamRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	team, err := m.JoinTeam(c.Request().Context(), req.TeamCode)
	if err != nil {
		return errorResponse(err)
	}
	return c.JSON(http.StatusOK, team)
}

// Leave godoc
// @Summary Leave the current team
// @Description A leader leaving disbands the team and discards its submission.
// @Tags teams
// @Produce json
// @Security BearerAuth
// @Success 200 {object} MessageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /teams/leave [post]
func (h *TeamHandler) Leave(c echo.Context) error {
	m, err := requireSession(c)
	if err != nil {
		return err
	}

	if err := m.LeaveTeam(c.Request().Context()); err != nil {
		return errorResponse(err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "left team"})
}
