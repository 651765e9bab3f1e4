package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"devrush/internal/errors"
	"devrush/internal/service"
)

const sessionContextKey = "session"

// WithSession stores the caller's session on the request context.
func WithSession(c echo.Context, m *service.SessionManager) {
	c.Set(sessionContextKey, m)
}

// CurrentSession returns the session opened for this request, or nil.
func CurrentSession(c echo.Context) *service.SessionManager {
	m, _ := c.Get(sessionContextKey).(*service.SessionManager)
	return m
}

// requireSession returns the request's session or a 401 when none was opened.
func requireSession(c echo.Context) (*service.SessionManager, error) {
	m := CurrentSession(c)
	if m == nil {
		return nil, errorResponse(errors.ErrNotAuthenticated)
	}
	return m, nil
}

// bindAndValidate decodes the body into req and runs the registered validator.
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid request body",
			Code:  "INVALID_REQUEST",
		})
	}

	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: err.Error(),
			Code:  "VALIDATION_FAILED",
		})
	}
	return nil
}

func errorResponse(err error) error {
	httpErr := errors.MapErrorToHTTP(err)
	return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
}

// MessageResponse is a plain acknowledgement.
type MessageResponse struct {
	Message string `json:"message"`
}
