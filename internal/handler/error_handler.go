package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	apperrors "docentes/internal/errors"
	"docentes/internal/logger"
)

// ErrorHandler renders every failure as an errors.ErrorResponse. Domain errors
// go through errors.MapErrorToHTTP; echo's own errors (unknown route, jwt) keep
// their status code.
func ErrorHandler(log *logger.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		httpErr := apperrors.MapErrorToHTTP(err)
		var echoErr *echo.HTTPError
		if apperrors.KindOf(err) == apperrors.KindUnexpected && errors.As(err, &echoErr) {
			httpErr = apperrors.NewHTTPError(
				echoErr.Code,
				http.StatusText(echoErr.Code),
				fmt.Sprint(echoErr.Message),
				strings.ToUpper(strings.ReplaceAll(http.StatusText(echoErr.Code), " ", "_")),
			)
		}

		if httpErr.StatusCode >= http.StatusInternalServerError {
			log.Error("request failed",
				"method", c.Request().Method,
				"path", c.Request().URL.Path,
				"error", err,
			)
		}

		var writeErr error
		if c.Request().Method == http.MethodHead {
			writeErr = c.NoContent(httpErr.StatusCode)
		} else {
			writeErr = c.JSON(httpErr.StatusCode, httpErr.ToErrorResponse(c.Request().URL.Path, time.Now()))
		}
		if writeErr != nil {
			log.Warn("write error response", "error", writeErr)
		}
	}
}
