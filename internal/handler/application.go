package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/job-board/internal/middleware"
	"github.com/iliyamo/job-board/internal/repository"
)

// ApplicationHandler serves the member side of applications.
type ApplicationHandler struct {
	Apps *repository.ApplicationRepo
	Log  *logrus.Logger
}

func NewApplicationHandler(apps *repository.ApplicationRepo, log *logrus.Logger) *ApplicationHandler {
	return &ApplicationHandler{Apps: apps, Log: log}
}

type applyReq struct {
	CoverLetter string `json:"coverLetter"`
}

// Apply files an application of the calling member to the job in the
// path.
func (h *ApplicationHandler) Apply(c echo.Context) error {
	caller, ok := middleware.CurrentIdentity(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "error": "Authentication required"})
	}

	// the body is optional; Bind leaves req zero when it is empty
	var req applyReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	ctx, cancel := storeCtx(c)
	defer cancel()

	app, err := h.Apps.Create(ctx, c.Param("id"), caller.ID, req.CoverLetter)
	if err != nil {
		return fail(c, h.Log, err, "Failed to apply")
	}
	return success(c, http.StatusCreated, echo.Map{"message": "Application submitted", "application": app})
}

// ListMine returns the caller's applications with their jobs.
func (h *ApplicationHandler) ListMine(c echo.Context) error {
	caller, ok := middleware.CurrentIdentity(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "error": "Authentication required"})
	}

	ctx, cancel := storeCtx(c)
	defer cancel()

	apps, err := h.Apps.ListByApplicant(ctx, caller.ID)
	if err != nil {
		return fail(c, h.Log, err, "Failed to fetch applications")
	}
	return success(c, http.StatusOK, echo.Map{"count": len(apps), "applications": apps})
}
