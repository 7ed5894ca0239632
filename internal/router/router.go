package router

import (
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"docentes/docs"
	"docentes/internal/auth"
	"docentes/internal/config"
	apperrors "docentes/internal/errors"
	"docentes/internal/handler"
	"docentes/internal/logger"
	"docentes/internal/validation"
)

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	log *logger.Logger,
	teacherHandler *handler.TeacherHandler,
	jwtService *auth.JWTService,
) {
	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			log.Info("request",
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency.String(),
				"request_id", v.RequestID,
			)
			return nil
		},
	}))
	e.Use(middleware.Recover())

	e.Validator = &CustomValidator{validator: validation.New()}
	e.HTTPErrorHandler = handler.ErrorHandler(log)

	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = strings.TrimPrefix(strings.TrimPrefix(cfg.SwaggerHost, "https://"), "http://")
	}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")
	teachers := api.Group("/docentes")

	// Public routes
	teachers.GET("", teacherHandler.ListTeachers)
	teachers.GET("/edad-promedio", teacherHandler.AverageAge)
	teachers.GET("/ciudad/:ciudad", teacherHandler.ListByCity)
	teachers.GET("/experiencia/:anos", teacherHandler.ListByExperience)
	teachers.GET("/:id", teacherHandler.GetTeacher)

	// Write routes, optionally behind a bearer token
	var guard []echo.MiddlewareFunc
	if cfg.WriteAuth {
		guard = append(guard, echojwt.WithConfig(echojwt.Config{
			TokenLookup: "header:" + echo.HeaderAuthorization + ":Bearer ",
			ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
				return jwtService.ValidateToken(token)
			},
		}))
	}
	teachers.POST("", teacherHandler.CreateTeacher, guard...)
	teachers.PUT("/:id", teacherHandler.UpdateTeacher, guard...)
	teachers.DELETE("/:id", teacherHandler.DeleteTeacher, guard...)
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface. Field failures become a
// ValidationFailed error keyed by JSON field name.
func (cv *CustomValidator) Validate(i interface{}) error {
	if err := cv.validator.Struct(i); err != nil {
		return apperrors.ValidationFailed(validation.ToDetails(err))
	}
	return nil
}
