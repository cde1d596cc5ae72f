package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/anonto42/vortex/backend/internal/apperrors"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

func respond(c echo.Context, status int, data interface{}) error {
	return c.JSON(status, echo.Map{"success": true, "data": data})
}

// bind decodes the request body into req and validates it.
func bind(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return apperrors.Validation("invalid request payload")
	}
	return c.Validate(req)
}

func pagination(c echo.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.QueryParam("page"))
	limit, _ = strconv.Atoi(c.QueryParam("limit"))
	return page, limit
}

// NewHTTPErrorHandler renders every error as {"success": false, "error": msg}
// with the status of its kind. Only internal errors are logged at error
// level.
func NewHTTPErrorHandler(logger *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var (
			status int
			msg    string
			kind   apperrors.Kind
			known  = true
		)
		var he *echo.HTTPError
		if errors.As(err, &he) {
			status = he.Code
			msg = fmt.Sprint(he.Message)
			kind, known = apperrors.KindForStatus(status)
			if he.Internal != nil {
				err = he.Internal
			}
		} else {
			kind = apperrors.KindOf(err)
			status = kind.Status()
			msg = apperrors.PublicMessage(err)
		}

		fields := []zap.Field{
			zap.String("method", c.Request().Method),
			zap.String("path", c.Request().URL.Path),
			zap.Int("status", status),
			zap.Error(err),
		}
		if known {
			fields = append(fields, zap.String("kind", kind.String()))
		}
		if status >= http.StatusInternalServerError {
			logger.Error("request failed", fields...)
		} else {
			logger.Info("request rejected", fields...)
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, echo.Map{"success": false, "error": msg})
		}
		if err != nil {
			logger.Error("write error response", zap.Error(err))
		}
	}
}
