package handler

import (
	"errors"
	"net/http"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/job-board/internal/middleware"
	"github.com/iliyamo/job-board/internal/model"
	"github.com/iliyamo/job-board/internal/repository"
	"github.com/iliyamo/job-board/internal/utils"
)

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Users      *repository.UserRepo
	Tokens     *utils.TokenService
	BcryptCost int
	Log        *logrus.Logger
}

func NewAuthHandler(u *repository.UserRepo, t *utils.TokenService, bcryptCost int, log *logrus.Logger) *AuthHandler {
	return &AuthHandler{Users: u, Tokens: t, BcryptCost: bcryptCost, Log: log}
}

// ----- DTOs -----

type registerReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Role     string `json:"role"` // ADMIN | MEMBER, defaults to MEMBER
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userPart struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

func toUserPart(u *model.User) userPart {
	return userPart{ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role}
}

// Register creates the account and returns a token right away.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	req.Email = strings.TrimSpace(req.Email)
	req.Name = strings.TrimSpace(req.Name)
	if req.Email == "" || req.Password == "" || req.Name == "" {
		return badRequest(c, "Email, password, and name are required")
	}
	if !emailRe.MatchString(req.Email) {
		return badRequest(c, "Invalid email format")
	}
	if utf8.RuneCountInString(req.Password) < 6 {
		return badRequest(c, "Password must be at least 6 characters long")
	}
	// bcrypt only looks at the first 72 bytes
	if len(req.Password) > 72 {
		return badRequest(c, "Password must be at most 72 bytes long")
	}
	if utf8.RuneCountInString(req.Name) < 2 {
		return badRequest(c, "Name must be at least 2 characters long")
	}
	role := strings.ToUpper(strings.TrimSpace(req.Role))
	if role == "" {
		role = model.RoleMember
	}
	if !model.ValidRole(role) {
		return badRequest(c, "Invalid role. Must be ADMIN or MEMBER")
	}

	hash, err := utils.HashPassword(req.Password, h.BcryptCost)
	if err != nil {
		return fail(c, h.Log, err, "Registration failed")
	}

	ctx, cancel := storeCtx(c)
	defer cancel()

	u, err := h.Users.Create(ctx, req.Email, hash, req.Name, role)
	if err != nil {
		return fail(c, h.Log, err, "Registration failed")
	}

	token, _, err := h.Tokens.Issue(utils.Identity{ID: u.ID, Email: u.Email, Role: u.Role})
	if err != nil {
		return fail(c, h.Log, err, "Registration failed")
	}
	return success(c, http.StatusCreated, echo.Map{
		"message": "User created successfully",
		"token":   token,
		"user":    toUserPart(u),
	})
}

// Login verifies credentials and issues a fresh token.  Unknown email and
// wrong password produce the same answer.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		return badRequest(c, "Email and password are required")
	}
	if !emailRe.MatchString(req.Email) {
		return badRequest(c, "Invalid email format")
	}

	ctx, cancel := storeCtx(c)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "error": "Invalid credentials"})
		}
		return fail(c, h.Log, err, "Login failed")
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "error": "Invalid credentials"})
	}

	token, _, err := h.Tokens.Issue(utils.Identity{ID: u.ID, Email: u.Email, Role: u.Role})
	if err != nil {
		return fail(c, h.Log, err, "Login failed")
	}
	return success(c, http.StatusOK, echo.Map{
		"message": "Login successful",
		"token":   token,
		"user":    toUserPart(u),
	})
}

// Me returns the caller's profile.
func (h *AuthHandler) Me(c echo.Context) error {
	id, ok := middleware.CurrentIdentity(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "error": "Authentication required"})
	}

	ctx, cancel := storeCtx(c)
	defer cancel()

	u, err := h.Users.GetByID(ctx, id.ID)
	if err != nil {
		return fail(c, h.Log, err, "Failed to get profile")
	}
	return success(c, http.StatusOK, echo.Map{"user": u})
}
