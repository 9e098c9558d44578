package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/job-board/internal/middleware"
	"github.com/iliyamo/job-board/internal/model"
	"github.com/iliyamo/job-board/internal/repository"
)

// JobHandler serves the public job board and the admin job CRUD.
type JobHandler struct {
	Jobs *repository.JobRepo
	Log  *logrus.Logger
}

func NewJobHandler(jobs *repository.JobRepo, log *logrus.Logger) *JobHandler {
	return &JobHandler{Jobs: jobs, Log: log}
}

type createJobReq struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Company     string  `json:"company"`
	Location    string  `json:"location"`
	Salary      *string `json:"salary"`
}

// List returns every active job, newest first.
func (h *JobHandler) List(c echo.Context) error {
	ctx, cancel := storeCtx(c)
	defer cancel()

	jobs, err := h.Jobs.ListActive(ctx)
	if err != nil {
		return fail(c, h.Log, err, "Failed to fetch jobs")
	}
	return success(c, http.StatusOK, echo.Map{"count": len(jobs), "jobs": jobs})
}

// Get returns one job, active or not.
func (h *JobHandler) Get(c echo.Context) error {
	ctx, cancel := storeCtx(c)
	defer cancel()

	job, err := h.Jobs.GetByID(ctx, c.Param("id"))
	if err != nil {
		return fail(c, h.Log, err, "Failed to fetch job")
	}
	return success(c, http.StatusOK, echo.Map{"job": job})
}

// Create posts a job owned by the calling admin.
func (h *JobHandler) Create(c echo.Context) error {
	caller, ok := middleware.CurrentIdentity(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "error": "Authentication required"})
	}

	var req createJobReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	in := model.JobInput{
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		Company:     strings.TrimSpace(req.Company),
		Location:    strings.TrimSpace(req.Location),
		Salary:      req.Salary,
	}
	if in.Title == "" || in.Description == "" || in.Company == "" || in.Location == "" {
		return badRequest(c, "Missing required fields: title, description, company, location")
	}

	ctx, cancel := storeCtx(c)
	defer cancel()

	job, err := h.Jobs.Create(ctx, caller.ID, in)
	if err != nil {
		return fail(c, h.Log, err, "Failed to create job")
	}
	return success(c, http.StatusCreated, echo.Map{"message": "Job created successfully", "job": job})
}

// Update applies a partial update.  Only the fields of model.JobPatch are
// accepted; anything else in the body is rejected before touching the
// store.
func (h *JobHandler) Update(c echo.Context) error {
	dec := json.NewDecoder(c.Request().Body)
	dec.DisallowUnknownFields()

	var p model.JobPatch
	if err := dec.Decode(&p); err != nil {
		if errors.Is(err, io.EOF) {
			return badRequest(c, "No updatable fields provided")
		}
		return badRequest(c, "Invalid request body: "+patchError(err))
	}
	if p.Empty() {
		return badRequest(c, "No updatable fields provided")
	}
	for name, v := range map[string]*string{
		"title": p.Title, "description": p.Description, "company": p.Company, "location": p.Location,
	} {
		if v == nil {
			continue
		}
		trimmed := strings.TrimSpace(*v)
		if trimmed == "" {
			return badRequest(c, name+" cannot be empty")
		}
		*v = trimmed
	}

	ctx, cancel := storeCtx(c)
	defer cancel()

	job, err := h.Jobs.Update(ctx, c.Param("id"), p)
	if err != nil {
		return fail(c, h.Log, err, "Failed to update job")
	}
	return success(c, http.StatusOK, echo.Map{"message": "Job updated successfully", "job": job})
}

// patchError turns a decoder error into a short client-facing reason.
func patchError(err error) string {
	msg := err.Error()
	if strings.HasPrefix(msg, "json: unknown field ") {
		return "field " + strings.TrimPrefix(msg, "json: unknown field ") + " cannot be updated"
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return "field " + typeErr.Field + " has the wrong type"
	}
	return "malformed JSON"
}

// Delete removes the job and every application to it.
func (h *JobHandler) Delete(c echo.Context) error {
	ctx, cancel := storeCtx(c)
	defer cancel()

	if _, err := h.Jobs.Delete(ctx, c.Param("id")); err != nil {
		return fail(c, h.Log, err, "Failed to delete job")
	}
	return success(c, http.StatusOK, echo.Map{"message": "Job deleted successfully"})
}
