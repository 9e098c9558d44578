package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/job-board/internal/repository"
)

// storeTimeout bounds every store call made on behalf of a request.
const storeTimeout = 5 * time.Second

func storeCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), storeTimeout)
}

// success writes {success:true, ...fields}.
func success(c echo.Context, status int, fields echo.Map) error {
	body := echo.Map{"success": true}
	for k, v := range fields {
		body[k] = v
	}
	return c.JSON(status, body)
}

// badRequest writes {success:false, error:msg} with 400.
func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": msg})
}

// domainErrors maps repository sentinels to the status and message the
// client sees.
var domainErrors = []struct {
	err    error
	status int
	msg    string
}{
	{repository.ErrJobNotFound, http.StatusNotFound, "Job not found"},
	{repository.ErrApplicationNotFound, http.StatusNotFound, "Application not found"},
	{repository.ErrUserNotFound, http.StatusNotFound, "User not found"},
	{repository.ErrDuplicateEmail, http.StatusBadRequest, "User with this email already exists"},
	{repository.ErrDuplicateApplication, http.StatusBadRequest, "Already applied for this job"},
	{repository.ErrInvalidStatus, http.StatusBadRequest, "Invalid status. Must be PENDING, ACCEPTED, or REJECTED"},
}

// fail renders err.  Known domain errors keep their own status; anything
// else is logged with its cause and answered 500 with the static internal
// message.
func fail(c echo.Context, log *logrus.Logger, err error, internal string) error {
	for _, de := range domainErrors {
		if errors.Is(err, de.err) {
			return c.JSON(de.status, echo.Map{"success": false, "error": de.msg})
		}
	}
	log.WithError(err).WithFields(logrus.Fields{
		"method": c.Request().Method,
		"path":   c.Path(),
	}).Error(internal)
	return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": internal})
}

// HTTPErrorHandler renders errors that escape handlers (unknown routes,
// wrong methods, oversized bodies) in the same envelope as everything
// else.
func HTTPErrorHandler(log *logrus.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		status := http.StatusInternalServerError
		msg := "Internal server error"

		var he *echo.HTTPError
		if errors.As(err, &he) {
			status = he.Code
			if m, ok := he.Message.(string); ok {
				msg = m
			} else {
				msg = http.StatusText(status)
			}
		} else {
			log.WithError(err).WithField("path", c.Request().URL.Path).Error("unhandled error")
		}

		body := echo.Map{"success": false, "error": msg}
		if status == http.StatusNotFound {
			body["path"] = c.Request().URL.RequestURI()
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, body)
		}
		if err != nil {
			log.WithError(err).Warn("write error response")
		}
	}
}
