package router

import (
	"net/http"
	"unicode"

	"github.com/go-playground/validator/v10"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"

	"devrush/docs"
	"devrush/internal/auth"
	"devrush/internal/config"
	"devrush/internal/errors"
	"devrush/internal/handler"
	"devrush/internal/metrics"
	"devrush/internal/service"
	"devrush/internal/session"
)

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	log *zap.Logger,
	m *metrics.Metrics,
	gatherer prometheus.Gatherer,
	jwtService *auth.JWTService,
	sessions *service.Sessions,
	slots session.Provider,
	authHandler *handler.AuthHandler,
	teamHandler *handler.TeamHandler,
	submissionHandler *handler.SubmissionHandler,
	adminHandler *handler.AdminHandler,
	seedHandler *handler.SeedHandler,
) {
	e.Use(middleware.RequestID())
	e.Use(RequestLogger(log))
	e.Use(m.Middleware())
	e.Use(middleware.Recover())

	// Add validator
	e.Validator = NewValidator()

	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = cfg.SwaggerHost
	}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")

	// Public routes
	api.POST("/auth/signup", authHandler.Signup)
	api.POST("/auth/login", authHandler.Login)

	// Secured routes (require a session token)
	secured := api.Group("", echojwt.WithConfig(echojwt.Config{
		TokenLookup: "header:" + echo.HeaderAuthorization + ":Bearer ",
		ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
			return jwtService.ValidateToken(token)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusUnauthorized, errors.ErrorResponse{
				Error: "invalid or expired token",
				Code:  "INVALID_TOKEN",
			})
		},
	}), LoadSession(sessions, slots))

	secured.POST("/auth/logout", authHandler.Logout)
	secured.GET("/me", authHandler.Me)

	// Team routes
	secured.POST("/teams", teamHandler.Create)
	secured.POST("/teams/join", teamHandler.Join)
	secured.POST("/teams/leave", teamHandler.Leave)

	// Submission routes
	secured.POST("/submissions", submissionHandler.Submit)

	// Organizer routes
	admin := secured.Group("/admin", handler.RequireAdmin)
	admin.GET("/users", adminHandler.ListUsers)
	admin.GET("/teams", adminHandler.ListTeams)
	admin.GET("/submissions", adminHandler.ListSubmissions)
	admin.GET("/stats", adminHandler.Stats)
	admin.POST("/teams/:id/approve", adminHandler.Approve)
	admin.POST("/teams/:id/reject", adminHandler.Reject)
	admin.POST("/seed", seedHandler.SeedTeams)
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator returns the request validator with the service's custom tags registered.
func NewValidator() *CustomValidator {
	v := validator.New()
	if err := v.RegisterValidation("strongpassword", strongPassword); err != nil {
		panic(err)
	}
	return &CustomValidator{validator: v}
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

// strongPassword requires at least one upper-case letter and one digit.
func strongPassword(fl validator.FieldLevel) bool {
	var upper, digit bool
	for _, r := range fl.Field().String() {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return upper && digit
}
