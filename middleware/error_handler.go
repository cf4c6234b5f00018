package middleware

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/HSouheill/taxdesk_backend/apperrors"
	"github.com/HSouheill/taxdesk_backend/logger"
	"github.com/HSouheill/taxdesk_backend/models"
)

// ErrorHandler renders every error returned by a handler or middleware as
// a models.Response. Internal errors are logged and answered without detail.
func ErrorHandler(log *logger.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, resp := renderError(err)
		if status == http.StatusInternalServerError {
			log.Error(err, "Unhandled error",
				"method", c.Request().Method,
				"path", c.Request().URL.Path,
			)
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, resp)
		}
		if err != nil {
			log.Error(err, "Failed to write error response")
		}
	}
}

// StatusOf returns the HTTP status err will be rendered with.
func StatusOf(err error) int {
	status, _ := renderError(err)
	return status
}

func renderError(err error) (int, models.Response) {
	if appErr, ok := apperrors.As(err); ok {
		status := appErr.Kind.HTTPStatus()
		resp := models.Response{
			Success: false,
			Status:  status,
			Message: appErr.Message,
			Error:   appErr.Kind.String(),
		}
		if len(appErr.Details) > 0 && appErr.Kind != apperrors.KindInternal {
			resp.Data = appErr.Details
		}
		return status, resp
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg := http.StatusText(he.Code)
		if he.Code < http.StatusInternalServerError {
			if m, ok := he.Message.(string); ok {
				msg = m
			} else if he.Message != nil {
				msg = fmt.Sprint(he.Message)
			}
		}
		return he.Code, models.Response{
			Success: false,
			Status:  he.Code,
			Message: msg,
			Error:   http.StatusText(he.Code),
		}
	}

	return http.StatusInternalServerError, models.Response{
		Success: false,
		Status:  http.StatusInternalServerError,
		Message: "Internal server error",
		Error:   apperrors.KindInternal.String(),
	}
}
