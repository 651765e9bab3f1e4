package handler

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"devrush/internal/errors"
	"devrush/internal/model"
	"devrush/internal/service"
)

// AdminHandler serves the organizer dashboard. Routes are mounted behind RequireAdmin.
type AdminHandler struct {
	identity    service.IdentityService
	teams       service.TeamService
	submissions service.SubmissionService
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(identity service.IdentityService, teams service.TeamService, submissions service.SubmissionService) *AdminHandler {
	return &AdminHandler{identity: identity, teams: teams, submissions: submissions}
}

// RequireAdmin rejects callers whose session is not bound to an administrator.
func RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		m := CurrentSession(c)
		if m == nil || !m.Authenticated() {
			return errorResponse(errors.ErrNotAuthenticated)
		}
		if !m.User().IsAdmin {
			return errorResponse(errors.ErrForbidden)
		}
		return next(c)
	}
}

// ListUsers godoc
// @Summary List registered users
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.User
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /admin/users [get]
func (h *AdminHandler) ListUsers(c echo.Context) error {
	users, err := h.identity.ListAll(c.Request().Context())
	if err != nil {
		return errorResponse(err)
	}
	return c.JSON(http.StatusOK, users)
}

// ListTeams godoc
// @Summary List teams
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param status query string false "Approval status filter" Enums(pending, approved, rejected)
// @Success 200 {array} model.Team
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /admin/teams [get]
func (h *AdminHandler) ListTeams(c echo.Context) error {
	ctx := c.Request().Context()

	var (
		teams []model.Team
		err   error
	)
	if status := c.QueryParam("status"); status != "" {
		teams, err = h.teams.ListByStatus(ctx, model.ApprovalStatus(status))
	} else {
		teams, err = h.teams.ListAll(ctx)
	}
	if err != nil {
		return errorResponse(err)
	}
	return c.JSON(http.StatusOK, teams)
}

// ListSubmissions godoc
// @Summary List idea submissions
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.Submission
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /admin/submissions [get]
func (h *AdminHandler) ListSubmissions(c echo.Context) error {
	submissions, err := h.submissions.ListAll(c.Request().Context())
	if err != nil {
		return errorResponse(err)
	}
	return c.JSON(http.StatusOK, submissions)
}

// Stats godoc
// @Summary Dashboard counters
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.TeamStats
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /admin/stats [get]
func (h *AdminHandler) Stats(c echo.Context) error {
	stats, err := h.teams.Stats(c.Request().Context())
	if err != nil {
		return errorResponse(err)
	}
	return c.JSON(http.StatusOK, stats)
}

// Approve godoc
// @Summary Approve a team
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Team ID"
// @Success 200 {object} model.Team
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /admin/teams/{id}/approve [post]
func (h *AdminHandler) Approve(c echo.Context) error {
	return h.decide(c, (*service.SessionManager).ApproveTeam)
}

// Reject godoc
// @Summary Reject a team
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Team ID"
// @Success 200 {object} model.Team
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /admin/teams/{id}/reject [post]
func (h *AdminHandler) Reject(c echo.Context) error {
	return h.decide(c, (*service.SessionManager).RejectTeam)
}

func (h *AdminHandler) decide(c echo.Context, apply func(*service.SessionManager, context.Context, uuid.UUID) error) error {
	teamID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid team ID",
			Code:  "INVALID_UUID",
		})
	}

	m, err := requireSession(c)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	if err := apply(m, ctx, teamID); err != nil {
		return errorResponse(err)
	}

	team, err := h.teams.FindByID(ctx, teamID)
	if err != nil {
		return errorResponse(err)
	}
	if team == nil {
		return errorResponse(errors.ErrTeamNotFound)
	}
	return c.JSON(http.StatusOK, team)
}
