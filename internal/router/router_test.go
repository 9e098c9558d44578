package router

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/job-board/internal/database"
	"github.com/iliyamo/job-board/internal/handler"
	"github.com/iliyamo/job-board/internal/notify"
	"github.com/iliyamo/job-board/internal/repository"
	"github.com/iliyamo/job-board/internal/utils"
)

// recorder captures dispatched notifications synchronously.
type recorder struct {
	mu     sync.Mutex
	events []notify.StatusChange
}

func (r *recorder) Dispatch(ev notify.StatusChange) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) all() []notify.StatusChange {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]notify.StatusChange(nil), r.events...)
}

type app struct {
	t        *testing.T
	e        *echo.Echo
	notified *recorder
}

func newApp(t *testing.T) *app {
	t.Helper()
	db, err := database.OpenDSN("sqlite3", filepath.Join(t.TempDir(), "jobs.db")+"?_foreign_keys=on")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.Migrate(db))

	log := logrus.New()
	log.SetOutput(io.Discard)

	users := repository.NewUserRepo(db)
	jobs := repository.NewJobRepo(db)
	apps := repository.NewApplicationRepo(db)
	tokens := utils.NewTokenService("test-secret", time.Hour)
	rec := &recorder{}

	e := New(Deps{
		Log:    log,
		Tokens: tokens,
		Auth:   handler.NewAuthHandler(users, tokens, bcrypt.MinCost, log),
		Jobs:   handler.NewJobHandler(jobs, log),
		Apps:   handler.NewApplicationHandler(apps, log),
		Admin:  handler.NewAdminHandler(apps, users, rec, log),
	})
	return &app{t: t, e: e, notified: rec}
}

type resp struct {
	Code int
	Body map[string]any
}

func (a *app) do(method, path, token string, body any) resp {
	a.t.Helper()
	var rdr io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rdr = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(a.t, err)
		rdr = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rdr)
	if rdr != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)

	out := resp{Code: rec.Code}
	if strings.HasPrefix(rec.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		require.NoError(a.t, json.Unmarshal(rec.Body.Bytes(), &out.Body), rec.Body.String())
	}
	return out
}

func (a *app) register(email, name, role string) (token, id string) {
	a.t.Helper()
	r := a.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"email": email, "password": "secret1", "name": name, "role": role,
	})
	require.Equal(a.t, http.StatusCreated, r.Code, r.Body)
	user := r.Body["user"].(map[string]any)
	return r.Body["token"].(string), user["id"].(string)
}

func (a *app) createJob(token, title string) string {
	a.t.Helper()
	r := a.do(http.MethodPost, "/api/jobs", token, map[string]string{
		"title": title, "description": "...", "company": "Acme", "location": "Remote",
	})
	require.Equal(a.t, http.StatusCreated, r.Code, r.Body)
	return r.Body["job"].(map[string]any)["id"].(string)
}

func list(t *testing.T, r resp, key string) []any {
	t.Helper()
	items, ok := r.Body[key].([]any)
	require.True(t, ok, "missing %q in %v", key, r.Body)
	return items
}

func TestRegisterLoginAndProfile(t *testing.T) {
	a := newApp(t)

	r := a.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"email": "a@x.com", "password": "secret1", "name": "Ann", "role": "admin",
	})
	require.Equal(t, http.StatusCreated, r.Code)
	assert.Equal(t, true, r.Body["success"])
	assert.NotEmpty(t, r.Body["token"])
	user := r.Body["user"].(map[string]any)
	assert.Equal(t, "ADMIN", user["role"])
	assert.NotContains(t, user, "password")
	assert.NotContains(t, user, "passwordHash")

	r = a.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"email": "a@x.com", "password": "secret2", "name": "Ann Two",
	})
	assert.Equal(t, http.StatusBadRequest, r.Code)
	assert.Equal(t, "User with this email already exists", r.Body["error"])

	r = a.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "a@x.com", "password": "secret1"})
	require.Equal(t, http.StatusOK, r.Code)
	token := r.Body["token"].(string)

	r = a.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "a@x.com", "password": "wrong!"})
	assert.Equal(t, http.StatusUnauthorized, r.Code)
	assert.Equal(t, false, r.Body["success"])
	r = a.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "nobody@x.com", "password": "secret1"})
	assert.Equal(t, http.StatusUnauthorized, r.Code)

	for _, path := range []string{"/api/auth/me", "/api/auth/profile"} {
		r = a.do(http.MethodGet, path, token, nil)
		require.Equal(t, http.StatusOK, r.Code)
		me := r.Body["user"].(map[string]any)
		assert.Equal(t, "a@x.com", me["email"])
		assert.Equal(t, "Ann", me["name"])
		assert.NotContains(t, me, "passwordHash")
	}

	assert.Equal(t, http.StatusUnauthorized, a.do(http.MethodGet, "/api/auth/me", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, a.do(http.MethodGet, "/api/auth/me", token+"x", nil).Code)
}

func TestRegisterValidation(t *testing.T) {
	a := newApp(t)
	cases := []struct {
		name string
		body map[string]string
		want string
	}{
		{"missing name", map[string]string{"email": "a@x.com", "password": "secret1"}, "Email, password, and name are required"},
		{"bad email", map[string]string{"email": "not-an-email", "password": "secret1", "name": "Ann"}, "Invalid email format"},
		{"short password", map[string]string{"email": "a@x.com", "password": "12345", "name": "Ann"}, "Password must be at least 6 characters long"},
		{"short name", map[string]string{"email": "a@x.com", "password": "secret1", "name": "A"}, "Name must be at least 2 characters long"},
		{"bad role", map[string]string{"email": "a@x.com", "password": "secret1", "name": "Ann", "role": "OWNER"}, "Invalid role. Must be ADMIN or MEMBER"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := a.do(http.MethodPost, "/api/auth/register", "", tc.body)
			assert.Equal(t, http.StatusBadRequest, r.Code)
			assert.Equal(t, false, r.Body["success"])
			assert.Equal(t, tc.want, r.Body["error"])
		})
	}

	r := a.do(http.MethodPost, "/api/auth/register", "", `{"email":`)
	assert.Equal(t, http.StatusBadRequest, r.Code)

	// role defaults to MEMBER
	r = a.do(http.MethodPost, "/api/auth/register", "", map[string]string{"email": "m@x.com", "password": "secret1", "name": "Mo"})
	require.Equal(t, http.StatusCreated, r.Code)
	assert.Equal(t, "MEMBER", r.Body["user"].(map[string]any)["role"])
}

func TestJobBoardScenario(t *testing.T) {
	a := newApp(t)

	adminToken, _ := a.register("a@x.com", "Ann", "ADMIN")
	jobID := a.createJob(adminToken, "Dev")

	r := a.do(http.MethodGet, "/api/jobs/"+jobID, "", nil)
	require.Equal(t, http.StatusOK, r.Code)
	job := r.Body["job"].(map[string]any)
	assert.Equal(t, true, job["isActive"])
	assert.Equal(t, "Ann", job["employer"].(map[string]any)["name"])

	r = a.do(http.MethodGet, "/api/jobs", "", nil)
	require.Equal(t, http.StatusOK, r.Code)
	assert.EqualValues(t, 1, r.Body["count"])
	jobs := list(t, r, "jobs")
	require.Len(t, jobs, 1)
	assert.Equal(t, jobID, jobs[0].(map[string]any)["id"])

	bobToken, bobID := a.register("b@x.com", "Bob", "")

	r = a.do(http.MethodPost, "/api/jobs/"+jobID+"/apply", bobToken, map[string]string{"coverLetter": "hire me"})
	require.Equal(t, http.StatusCreated, r.Code, r.Body)
	application := r.Body["application"].(map[string]any)
	assert.Equal(t, "PENDING", application["status"])
	assert.Equal(t, bobID, application["applicantId"])
	appID := application["id"].(string)

	r = a.do(http.MethodPost, "/api/jobs/"+jobID+"/apply", bobToken, nil)
	assert.Equal(t, http.StatusBadRequest, r.Code)
	assert.Equal(t, "Already applied for this job", r.Body["error"])

	r = a.do(http.MethodPut, "/api/admin/applications/"+appID+"/status", adminToken, map[string]string{"status": "ACCEPTED"})
	require.Equal(t, http.StatusOK, r.Code, r.Body)
	assert.Equal(t, "ACCEPTED", r.Body["application"].(map[string]any)["status"])

	r = a.do(http.MethodGet, "/api/users/applications", bobToken, nil)
	require.Equal(t, http.StatusOK, r.Code)
	mine := list(t, r, "applications")
	require.Len(t, mine, 1)
	assert.Equal(t, "ACCEPTED", mine[0].(map[string]any)["status"])
	assert.Equal(t, "Dev", mine[0].(map[string]any)["job"].(map[string]any)["title"])

	events := a.notified.all()
	require.Len(t, events, 1)
	assert.Equal(t, notify.StatusChange{
		ApplicationID:  appID,
		ApplicantEmail: "b@x.com",
		ApplicantName:  "Bob",
		JobTitle:       "Dev",
		Company:        "Acme",
		Status:         "ACCEPTED",
	}, events[0])

	// members cannot post jobs; admins cannot apply
	r = a.do(http.MethodPost, "/api/jobs", bobToken, map[string]string{
		"title": "x", "description": "x", "company": "x", "location": "x",
	})
	assert.Equal(t, http.StatusForbidden, r.Code)
	assert.Equal(t, false, r.Body["success"])
	assert.Equal(t, http.StatusForbidden, a.do(http.MethodPost, "/api/jobs/"+jobID+"/apply", adminToken, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, a.do(http.MethodPost, "/api/jobs", "", map[string]string{"title": "x"}).Code)
}

func TestApplyToMissingJob(t *testing.T) {
	a := newApp(t)
	token, _ := a.register("b@x.com", "Bob", "MEMBER")
	r := a.do(http.MethodPost, "/api/jobs/does-not-exist/apply", token, nil)
	assert.Equal(t, http.StatusNotFound, r.Code)
	assert.Equal(t, "Job not found", r.Body["error"])
}

func TestJobValidationAndPatch(t *testing.T) {
	a := newApp(t)
	adminToken, adminID := a.register("a@x.com", "Ann", "ADMIN")

	r := a.do(http.MethodPost, "/api/jobs", adminToken, map[string]string{"title": "Dev", "description": "  ", "company": "Acme", "location": "Remote"})
	assert.Equal(t, http.StatusBadRequest, r.Code)
	assert.Equal(t, "Missing required fields: title, description, company, location", r.Body["error"])

	jobID := a.createJob(adminToken, "Dev")
	_, otherID := a.register("other@x.com", "Olga", "ADMIN")

	r = a.do(http.MethodPut, "/api/jobs/"+jobID, adminToken, map[string]any{"employerId": otherID})
	assert.Equal(t, http.StatusBadRequest, r.Code)
	assert.Contains(t, r.Body["error"], "employerId")

	r = a.do(http.MethodPut, "/api/jobs/"+jobID, adminToken, map[string]any{"title": "Dev II", "id": "hijack"})
	assert.Equal(t, http.StatusBadRequest, r.Code)

	r = a.do(http.MethodPut, "/api/jobs/"+jobID, adminToken, map[string]any{})
	assert.Equal(t, http.StatusBadRequest, r.Code)
	r = a.do(http.MethodPut, "/api/jobs/"+jobID, adminToken, map[string]any{"title": "   "})
	assert.Equal(t, http.StatusBadRequest, r.Code)
	r = a.do(http.MethodPut, "/api/jobs/"+jobID, adminToken, map[string]any{"isActive": "nope"})
	assert.Equal(t, http.StatusBadRequest, r.Code)

	r = a.do(http.MethodPut, "/api/jobs/"+jobID, adminToken, map[string]any{"title": "Dev II", "salary": "90k", "isActive": false})
	require.Equal(t, http.StatusOK, r.Code, r.Body)
	job := r.Body["job"].(map[string]any)
	assert.Equal(t, "Dev II", job["title"])
	assert.Equal(t, "90k", job["salary"])
	assert.Equal(t, false, job["isActive"])
	assert.Equal(t, adminID, job["employerId"])

	// inactive jobs leave the public list but stay addressable
	r = a.do(http.MethodGet, "/api/jobs", "", nil)
	assert.Empty(t, list(t, r, "jobs"))
	assert.Equal(t, http.StatusOK, a.do(http.MethodGet, "/api/jobs/"+jobID, "", nil).Code)

	r = a.do(http.MethodPut, "/api/jobs/missing", adminToken, map[string]any{"title": "x"})
	assert.Equal(t, http.StatusNotFound, r.Code)
	assert.Equal(t, http.StatusNotFound, a.do(http.MethodGet, "/api/jobs/missing", "", nil).Code)
}

func TestDeleteJobCascades(t *testing.T) {
	a := newApp(t)
	adminToken, _ := a.register("a@x.com", "Ann", "ADMIN")
	jobID := a.createJob(adminToken, "Dev")
	keptID := a.createJob(adminToken, "Ops")

	for _, email := range []string{"b@x.com", "c@x.com"} {
		token, _ := a.register(email, "Member", "MEMBER")
		require.Equal(t, http.StatusCreated, a.do(http.MethodPost, "/api/jobs/"+jobID+"/apply", token, nil).Code)
		require.Equal(t, http.StatusCreated, a.do(http.MethodPost, "/api/jobs/"+keptID+"/apply", token, nil).Code)
	}

	r := a.do(http.MethodDelete, "/api/jobs/"+jobID, adminToken, nil)
	require.Equal(t, http.StatusOK, r.Code)
	assert.Equal(t, "Job deleted successfully", r.Body["message"])

	r = a.do(http.MethodGet, "/api/admin/applications?jobId="+jobID, adminToken, nil)
	require.Equal(t, http.StatusOK, r.Code)
	assert.Empty(t, list(t, r, "applications"))

	r = a.do(http.MethodGet, "/api/admin/applications", adminToken, nil)
	require.Equal(t, http.StatusOK, r.Code)
	assert.Len(t, list(t, r, "applications"), 2)

	assert.Equal(t, http.StatusNotFound, a.do(http.MethodDelete, "/api/jobs/"+jobID, adminToken, nil).Code)
}

func TestAdminApplications(t *testing.T) {
	a := newApp(t)
	adminToken, _ := a.register("a@x.com", "Ann", "ADMIN")
	jobID := a.createJob(adminToken, "Dev")
	bobToken, bobID := a.register("b@x.com", "Bob", "MEMBER")

	r := a.do(http.MethodPost, "/api/jobs/"+jobID+"/apply", bobToken, nil)
	require.Equal(t, http.StatusCreated, r.Code)
	appID := r.Body["application"].(map[string]any)["id"].(string)

	r = a.do(http.MethodPut, "/api/admin/applications/"+appID+"/status", adminToken, map[string]string{"status": "HIRED"})
	assert.Equal(t, http.StatusBadRequest, r.Code)
	assert.Empty(t, a.notified.all())

	r = a.do(http.MethodGet, "/api/admin/applications?status=PENDING&applicantId="+bobID, adminToken, nil)
	require.Equal(t, http.StatusOK, r.Code)
	items := list(t, r, "applications")
	require.Len(t, items, 1)
	first := items[0].(map[string]any)
	assert.Equal(t, "PENDING", first["status"], "rejected update must leave the record untouched")
	assert.Equal(t, "b@x.com", first["applicant"].(map[string]any)["email"])
	assert.Equal(t, "Dev", first["job"].(map[string]any)["title"])

	r = a.do(http.MethodGet, "/api/admin/applications?status=HIRED", adminToken, nil)
	assert.Equal(t, http.StatusBadRequest, r.Code)

	r = a.do(http.MethodPut, "/api/admin/applications/missing/status", adminToken, map[string]string{"status": "REJECTED"})
	assert.Equal(t, http.StatusNotFound, r.Code)

	r = a.do(http.MethodPut, "/api/admin/applications/"+appID+"/status", adminToken, map[string]string{"status": "REJECTED"})
	require.Equal(t, http.StatusOK, r.Code)
	assert.Equal(t, "Application status updated to REJECTED", r.Body["message"])

	r = a.do(http.MethodGet, "/api/admin/stats", adminToken, nil)
	require.Equal(t, http.StatusOK, r.Code)
	stats := r.Body["stats"].(map[string]any)
	assert.EqualValues(t, 1, stats["total"])
	assert.EqualValues(t, 1, stats["rejected"])
	top := list(t, r, "topJobs")
	require.Len(t, top, 1)
	assert.EqualValues(t, 1, top[0].(map[string]any)["applications"])

	r = a.do(http.MethodGet, "/api/users", adminToken, nil)
	require.Equal(t, http.StatusOK, r.Code)
	assert.EqualValues(t, 2, r.Body["count"])
	for _, u := range list(t, r, "users") {
		assert.NotContains(t, u.(map[string]any), "passwordHash")
		assert.Contains(t, u.(map[string]any), "counts")
	}

	// member tokens never reach admin routes
	assert.Equal(t, http.StatusForbidden, a.do(http.MethodGet, "/api/admin/stats", bobToken, nil).Code)
	assert.Equal(t, http.StatusForbidden, a.do(http.MethodGet, "/api/users", bobToken, nil).Code)
	assert.Equal(t, http.StatusForbidden, a.do(http.MethodGet, "/api/users/applications", adminToken, nil).Code)

	r = a.do(http.MethodDelete, "/api/admin/applications/"+appID, adminToken, nil)
	require.Equal(t, http.StatusOK, r.Code)
	assert.Equal(t, http.StatusNotFound, a.do(http.MethodDelete, "/api/admin/applications/"+appID, adminToken, nil).Code)
}

func TestOperationalRoutes(t *testing.T) {
	a := newApp(t)

	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	r := a.do(http.MethodGet, "/api", "", nil)
	require.Equal(t, http.StatusOK, r.Code)
	assert.Equal(t, true, r.Body["success"])
	assert.Equal(t, handler.Version, r.Body["version"])

	r = a.do(http.MethodGet, "/api/nope?x=1", "", nil)
	assert.Equal(t, http.StatusNotFound, r.Code)
	assert.Equal(t, false, r.Body["success"])
	assert.Equal(t, "API route not found", r.Body["error"])
	assert.Equal(t, "/api/nope?x=1", r.Body["path"])

	rec = httptest.NewRecorder()
	a.e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "jobboard_http_requests_total")
}
