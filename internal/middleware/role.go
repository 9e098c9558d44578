package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/job-board/internal/model"
)

// RequireRole returns a middleware that lets the request through only when
// the authenticated caller holds one of roles.  It must run after JWTAuth;
// a request that reaches it without claims is answered 401, a caller with
// the wrong role 403.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := c.Get(KeyRole).(string)
			if !ok || role == "" {
				return deny(c, http.StatusUnauthorized, "Authentication required")
			}
			if !allowed[role] {
				return deny(c, http.StatusForbidden, "Access denied. Insufficient permissions.")
			}
			return next(c)
		}
	}
}

// RequireAdmin admits ADMIN callers only.
func RequireAdmin() echo.MiddlewareFunc { return RequireRole(model.RoleAdmin) }

// RequireMember admits MEMBER callers only.
func RequireMember() echo.MiddlewareFunc { return RequireRole(model.RoleMember) }
