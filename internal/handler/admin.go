package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/job-board/internal/model"
	"github.com/iliyamo/job-board/internal/notify"
	"github.com/iliyamo/job-board/internal/repository"
)

// StatusNotifier receives status changes after they are stored.
// Implementations must not block.
type StatusNotifier interface {
	Dispatch(ev notify.StatusChange)
}

// AdminHandler serves application review and the admin user list.
type AdminHandler struct {
	Apps   *repository.ApplicationRepo
	Users  *repository.UserRepo
	Notify StatusNotifier
	Log    *logrus.Logger
}

func NewAdminHandler(apps *repository.ApplicationRepo, users *repository.UserRepo, n StatusNotifier, log *logrus.Logger) *AdminHandler {
	return &AdminHandler{Apps: apps, Users: users, Notify: n, Log: log}
}

type statusReq struct {
	Status string `json:"status"`
}

// ListApplications returns applications filtered by the optional status,
// jobId and applicantId query parameters.
func (h *AdminHandler) ListApplications(c echo.Context) error {
	f := model.ApplicationFilter{
		Status:      strings.TrimSpace(c.QueryParam("status")),
		JobID:       strings.TrimSpace(c.QueryParam("jobId")),
		ApplicantID: strings.TrimSpace(c.QueryParam("applicantId")),
	}

	ctx, cancel := storeCtx(c)
	defer cancel()

	apps, err := h.Apps.List(ctx, f)
	if err != nil {
		return fail(c, h.Log, err, "Failed to fetch applications")
	}
	return success(c, http.StatusOK, echo.Map{"count": len(apps), "applications": apps})
}

// UpdateStatus moves an application to a new status and notifies the
// applicant.  The notification runs in the background; its outcome never
// changes the response.
func (h *AdminHandler) UpdateStatus(c echo.Context) error {
	var req statusReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	status := strings.TrimSpace(req.Status)
	if !model.ValidStatus(status) {
		return badRequest(c, "Invalid status. Must be PENDING, ACCEPTED, or REJECTED")
	}

	ctx, cancel := storeCtx(c)
	defer cancel()

	app, err := h.Apps.UpdateStatus(ctx, c.Param("id"), status)
	if err != nil {
		return fail(c, h.Log, err, "Failed to update application")
	}

	if h.Notify != nil && app.Applicant != nil && app.Job != nil {
		h.Notify.Dispatch(notify.StatusChange{
			ApplicationID:  app.ID,
			ApplicantEmail: app.Applicant.Email,
			ApplicantName:  app.Applicant.Name,
			JobTitle:       app.Job.Title,
			Company:        app.Job.Company,
			Status:         app.Status,
		})
	}
	return success(c, http.StatusOK, echo.Map{
		"message":     "Application status updated to " + status,
		"application": app,
	})
}

// DeleteApplication removes one application.
func (h *AdminHandler) DeleteApplication(c echo.Context) error {
	ctx, cancel := storeCtx(c)
	defer cancel()

	if err := h.Apps.Delete(ctx, c.Param("id")); err != nil {
		return fail(c, h.Log, err, "Failed to delete application")
	}
	return success(c, http.StatusOK, echo.Map{"message": "Application deleted successfully"})
}

// Stats summarizes applications by status and lists the most applied jobs.
func (h *AdminHandler) Stats(c echo.Context) error {
	ctx, cancel := storeCtx(c)
	defer cancel()

	st, top, err := h.Apps.Stats(ctx)
	if err != nil {
		return fail(c, h.Log, err, "Failed to get statistics")
	}
	return success(c, http.StatusOK, echo.Map{"stats": st, "topJobs": top})
}

// ListUsers returns every user with their job and application counts.
func (h *AdminHandler) ListUsers(c echo.Context) error {
	ctx, cancel := storeCtx(c)
	defer cancel()

	users, err := h.Users.ListWithCounts(ctx)
	if err != nil {
		return fail(c, h.Log, err, "Failed to fetch users")
	}
	return success(c, http.StatusOK, echo.Map{"count": len(users), "users": users})
}
