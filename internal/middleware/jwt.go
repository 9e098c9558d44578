package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/job-board/internal/utils"
)

// Context keys set by JWTAuth.
const (
	KeyUserID = "user_id"
	KeyRole   = "role"
	KeyEmail  = "email"
	KeyClaims = "claims"
)

// JWTAuth returns an Echo middleware that validates a Bearer access token
// with tokens and injects the caller's id, role and email into the request
// context.  Protected handlers read them via c.Get(KeyUserID) and friends or
// through CurrentIdentity.
func JWTAuth(tokens *utils.TokenService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get(echo.HeaderAuthorization)
			if !strings.HasPrefix(auth, "Bearer ") {
				return deny(c, http.StatusUnauthorized, "Access denied. No token provided.")
			}
			raw := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
			if raw == "" {
				return deny(c, http.StatusUnauthorized, "Access denied. No token provided.")
			}

			claims, err := tokens.Verify(raw)
			if err != nil {
				return deny(c, http.StatusUnauthorized, "Invalid or expired token")
			}

			c.Set(KeyUserID, claims.UserID)
			c.Set(KeyRole, claims.Role)
			c.Set(KeyEmail, claims.Email)
			c.Set(KeyClaims, claims)
			return next(c)
		}
	}
}

// CurrentIdentity returns the identity JWTAuth stored for this request.
func CurrentIdentity(c echo.Context) (utils.Identity, bool) {
	claims, ok := c.Get(KeyClaims).(*utils.Claims)
	if !ok || claims == nil {
		return utils.Identity{}, false
	}
	return claims.Identity(), true
}

// deny writes the standard failure envelope and stops the chain.
func deny(c echo.Context, status int, msg string) error {
	return c.JSON(status, echo.Map{"success": false, "error": msg})
}
