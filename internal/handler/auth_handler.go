package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"devrush/internal/auth"
	"devrush/internal/model"
	"devrush/internal/service"
	"devrush/internal/session"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	sessions   *service.Sessions
	slots      session.Provider
	jwtService *auth.JWTService
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(sessions *service.Sessions, slots session.Provider, jwtService *auth.JWTService) *AuthHandler {
	return &AuthHandler{sessions: sessions, slots: slots, jwtService: jwtService}
}

// SignupRequest represents a participant registration request.
type SignupRequest struct {
	FullName        string `json:"full_name" validate:"required,min=2,max=100"`
	Email           string `json:"email" validate:"required,email,max=255"`
	Phone           string `json:"phone" validate:"required,min=10"`
	College         string `json:"college" validate:"required,min=2,max=200"`
	YearOfStudy     string `json:"year_of_study" validate:"required"`
	Password        string `json:"password" validate:"required,min=8,strongpassword"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
}

// LoginRequest represents a user login request.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse represents an authentication response.
type AuthResponse struct {
	AccessToken string      `json:"access_token"`
	User        *model.User `json:"user"`
}

// Signup godoc
// @Summary Register a participant
// @Description Creates the participant and starts a session for them.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body SignupRequest true "Registration data"
// @Success 201 {object} AuthResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/signup [post]
func (h *AuthHandler) Signup(c echo.Context) error {
	var req SignupRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	sessionID := auth.NewSessionID()
	m := h.sessions.Open(ctx, h.slots.Slot(sessionID))

	user, err := m.Signup(ctx, model.SignupProfile{
		Email:       req.Email,
		Password:    req.Password,
		FullName:    req.FullName,
		Phone:       req.Phone,
		College:     req.College,
		YearOfStudy: req.YearOfStudy,
	})
	if err != nil {
		return errorResponse(err)
	}

	return h.issue(c, http.StatusCreated, sessionID, user)
}

// Login godoc
// @Summary Login
// @Description Unknown emails are admitted as guests that are not registered.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login credentials"
// @Success 200 {object} AuthResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	sessionID := auth.NewSessionID()
	m := h.sessions.Open(ctx, h.slots.Slot(sessionID))

	user, err := m.Login(ctx, req.Email, req.Password)
	if err != nil {
		return errorResponse(err)
	}

	return h.issue(c, http.StatusOK, sessionID, user)
}

func (h *AuthHandler) issue(c echo.Context, status int, sessionID string, user *model.User) error {
	token, err := h.jwtService.GenerateSessionToken(sessionID)
	if err != nil {
		return errorResponse(err)
	}
	return c.JSON(status, AuthResponse{
		AccessToken: token,
		User:        user,
	})
}

// Logout godoc
// @Summary Logout
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} MessageResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	m, err := requireSession(c)
	if err != nil {
		return err
	}

	if err := m.Logout(c.Request().Context()); err != nil {
		return errorResponse(err)
	}

	return c.JSON(http.StatusOK, MessageResponse{Message: "logged out successfully"})
}

// Me godoc
// @Summary Current session
// @Description Returns the caller's user, team and submission. Administrators also receive every user and team.
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.SessionView
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	m, err := requireSession(c)
	if err != nil {
		return err
	}

	view, err := m.View(c.Request().Context())
	if err != nil {
		return errorResponse(err)
	}
	return c.JSON(http.StatusOK, view)
}
