package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Version is reported by the API index.
const Version = "1.0.0"

// Health is a liveness probe for load balancers.  It answers plain "ok".
func Health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

// Index describes the API.
func Index(c echo.Context) error {
	return success(c, http.StatusOK, echo.Map{
		"message":   "Job Board API is running",
		"version":   Version,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"endpoints": echo.Map{
			"auth": echo.Map{
				"register": "POST /api/auth/register",
				"login":    "POST /api/auth/login",
				"me":       "GET /api/auth/me",
			},
			"jobs": echo.Map{
				"list":   "GET /api/jobs",
				"get":    "GET /api/jobs/:id",
				"create": "POST /api/jobs",
				"update": "PUT /api/jobs/:id",
				"delete": "DELETE /api/jobs/:id",
				"apply":  "POST /api/jobs/:id/apply",
			},
			"users": echo.Map{
				"list":         "GET /api/users",
				"applications": "GET /api/users/applications",
			},
			"admin": echo.Map{
				"applications": "GET /api/admin/applications",
				"status":       "PUT /api/admin/applications/:id/status",
				"delete":       "DELETE /api/admin/applications/:id",
				"stats":        "GET /api/admin/stats",
			},
		},
	})
}

// NotFound answers unknown /api paths.
func NotFound(c echo.Context) error {
	return c.JSON(http.StatusNotFound, echo.Map{
		"success": false,
		"error":   "API route not found",
		"path":    c.Request().URL.RequestURI(),
	})
}
