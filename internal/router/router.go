// Package router wires handlers, middleware and the framework-level
// plumbing (error envelope, request logging, metrics) onto an Echo
// instance.
package router

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/job-board/internal/handler"
	"github.com/iliyamo/job-board/internal/metrics"
	"github.com/iliyamo/job-board/internal/middleware"
	"github.com/iliyamo/job-board/internal/utils"
)

// Deps is everything the routes need.  AuthLimiter is optional; nil
// leaves the credential endpoints unlimited.
type Deps struct {
	Log         *logrus.Logger
	Tokens      *utils.TokenService
	Auth        *handler.AuthHandler
	Jobs        *handler.JobHandler
	Apps        *handler.ApplicationHandler
	Admin       *handler.AdminHandler
	AuthLimiter echo.MiddlewareFunc
}

// New builds the Echo instance serving the whole API.
func New(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = handler.HTTPErrorHandler(d.Log)

	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger(d.Log))
	e.Use(metrics.Middleware())
	e.Use(echomw.BodyLimit("1M"))

	RegisterRoutes(e)
	RegisterAuth(e, d.Auth, d.Tokens, d.AuthLimiter)
	RegisterJobs(e, d.Jobs, d.Apps, d.Tokens)
	RegisterUsers(e, d.Admin, d.Apps, d.Tokens)
	RegisterAdmin(e, d.Admin, d.Tokens)

	// anything else under /api gets the JSON 404
	e.Any("/api/*", handler.NotFound)
	return e
}

// RegisterRoutes registers the unauthenticated operational endpoints.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))
	e.GET("/api", handler.Index)
}

// RegisterAuth registers registration, login and the profile endpoints.
// limiter, when set, guards only the credential endpoints.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, tokens *utils.TokenService, limiter echo.MiddlewareFunc) {
	g := e.Group("/api/auth")
	var guard []echo.MiddlewareFunc
	if limiter != nil {
		guard = append(guard, limiter)
	}
	g.POST("/register", a.Register, guard...)
	g.POST("/login", a.Login, guard...)

	jwt := middleware.JWTAuth(tokens)
	g.GET("/me", a.Me, jwt)
	g.GET("/profile", a.Me, jwt)
}

// RegisterJobs registers the public job board, admin job management and
// the member apply endpoint.
func RegisterJobs(e *echo.Echo, j *handler.JobHandler, apps *handler.ApplicationHandler, tokens *utils.TokenService) {
	g := e.Group("/api/jobs")
	g.GET("", j.List)
	g.GET("/:id", j.Get)

	admin := []echo.MiddlewareFunc{middleware.JWTAuth(tokens), middleware.RequireAdmin()}
	g.POST("", j.Create, admin...)
	g.PUT("/:id", j.Update, admin...)
	g.DELETE("/:id", j.Delete, admin...)

	g.POST("/:id/apply", apps.Apply, middleware.JWTAuth(tokens), middleware.RequireMember())
}

// RegisterUsers registers the user list (admins) and the caller's own
// applications (members).
func RegisterUsers(e *echo.Echo, admin *handler.AdminHandler, apps *handler.ApplicationHandler, tokens *utils.TokenService) {
	g := e.Group("/api/users", middleware.JWTAuth(tokens))
	g.GET("", admin.ListUsers, middleware.RequireAdmin())
	g.GET("/applications", apps.ListMine, middleware.RequireMember())
}

// RegisterAdmin registers application review under /api/admin.  Every
// route requires an ADMIN token.
func RegisterAdmin(e *echo.Echo, h *handler.AdminHandler, tokens *utils.TokenService) {
	g := e.Group("/api/admin", middleware.JWTAuth(tokens), middleware.RequireAdmin())
	g.GET("/applications", h.ListApplications)
	g.PUT("/applications/:id/status", h.UpdateStatus)
	g.DELETE("/applications/:id", h.DeleteApplication)
	g.GET("/stats", h.Stats)
}
