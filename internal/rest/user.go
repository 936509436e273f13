package rest

import (
	"context"
	"net/http"
	"time"

	"garmentFactory/business/user"
	"garmentFactory/domain"
	"garmentFactory/internal/middleware"
	"garmentFactory/pkg/logger"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type UserService interface {
	Register(ctx context.Context, input user.RegisterInput) (domain.User, error)
	Login(ctx context.Context, email, password, ipAddress, userAgent string) (string, domain.User, error)
	Logout(ctx context.Context, userID uint, token string) error
	VerifyEmail(ctx context.Context, code string) error
	GetUserByID(ctx context.Context, id uint) (domain.User, error)
	GetAllUsers(ctx context.Context) ([]domain.User, error)
	UpdateProfile(ctx context.Context, id uint, input user.UpdateProfileInput) (domain.User, error)
	UpdateUserRole(ctx context.Context, actor domain.Actor, id uint, role string) (domain.User, error)
	DeleteUser(ctx context.Context, actor domain.Actor, id uint) error
}

type UserHandler struct {
	userService UserService
	validator   *validator.Validate
	timeout     time.Duration
}

func NewUserHandler(userService UserService, timeout time.Duration) *UserHandler {
	return &UserHandler{
		userService: userService,
		validator:   validator.New(),
		timeout:     timeout,
	}
}

type UserLoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UserRoleRequest struct {
	Role string `json:"role" validate:"required"`
}

// authUser is the shape the session endpoints report the caller as.
type authUser struct {
	ID                uint        `json:"_id"`
	Name              string      `json:"name"`
	Email             string      `json:"email"`
	Role              domain.Role `json:"role"`
	IsAccountVerified bool        `json:"isAccountVerified"`
}

func toAuthUser(u domain.User) authUser {
	return authUser{
		ID:                u.ID,
		Name:              u.Name,
		Email:             u.Email,
		Role:              u.Role,
		IsAccountVerified: u.IsAccountVerified,
	}
}

func (h *UserHandler) Register(c echo.Context) error {
	var req user.RegisterInput
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	if err := h.validator.Struct(&req); err != nil {
		return validationError(c, err)
	}

	ctx, cancel := withTimeout(c, h.timeout)
	defer cancel()

	newUser, err := h.userService.Register(ctx, req)
	if err != nil {
		return writeError(c, err)
	}

	return ok(c, http.StatusCreated, "Registration successful. Please check your email to verify your account.", map[string]any{
		"user": toAuthUser(newUser),
	})
}

func (h *UserHandler) Login(c echo.Context) error {
	var req UserLoginRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	if err := h.validator.Struct(&req); err != nil {
		return validationError(c, err)
	}

	ctx, cancel := withTimeout(c, h.timeout)
	defer cancel()

	token, u, err := h.userService.Login(ctx, req.Email, req.Password, c.RealIP(), c.Request().UserAgent())
	if err != nil {
		logger.Info("Login rejected", "email", req.Email, "error", err)
		return writeError(c, err)
	}

	return ok(c, http.StatusOK, "Login successful", map[string]any{
		"token": token,
		"user":  toAuthUser(u),
	})
}

func (h *UserHandler) Logout(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return writeError(c, err)
	}

	token, _ := c.Get(middleware.ContextToken).(string)

	ctx, cancel := withTimeout(c, h.timeout)
	defer cancel()

	if err := h.userService.Logout(ctx, actor.UserID, token); err != nil {
		return writeError(c, err)
	}

	return ok(c, http.StatusOK, "Logout successful", nil)
}

// IsAuthenticated answers whether the bearer token still belongs to a live session and
// who it belongs to.
func (h *UserHandler) IsAuthenticated(c echo.Context) error {
	return h.currentUser(c, "Authenticated")
}

func (h *UserHandler) GetUserData(c echo.Context) error {
	return h.currentUser(c, "")
}

func (h *UserHandler) currentUser(c echo.Context, message string) error {
	actor, err := actorOf(c)
	if err != nil {
		return writeError(c, err)
	}

	ctx, cancel := withTimeout(c, h.timeout)
	defer cancel()

	u, err := h.userService.GetUserByID(ctx, actor.UserID)
	if err != nil {
		return writeError(c, err)
	}

	return ok(c, http.StatusOK, message, map[string]any{
		"userData": toAuthUser(u),
	})
}

func (h *UserHandler) VerifyEmail(c echo.Context) error {
	ctx, cancel := withTimeout(c, h.timeout)
	defer cancel()

	if err := h.userService.VerifyEmail(ctx, c.Param("code")); err != nil {
		return writeError(c, err)
	}

	return ok(c, http.StatusOK, "Successfully verified email", nil)
}

func (h *UserHandler) UpdateProfile(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return writeError(c, err)
	}

	var req user.UpdateProfileInput
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	if err := h.validator.Struct(&req); err != nil {
		return validationError(c, err)
	}

	ctx, cancel := withTimeout(c, h.timeout)
	defer cancel()

	updated, err := h.userService.UpdateProfile(ctx, actor.UserID, req)
	if err != nil {
		return writeError(c, err)
	}

	return ok(c, http.StatusOK, "Profile updated successfully", map[string]any{
		"user": toAuthUser(updated),
	})
}

func (h *UserHandler) GetAllUsers(c echo.Context) error {
	ctx, cancel := withTimeout(c, h.timeout)
	defer cancel()

	users, err := h.userService.GetAllUsers(ctx)
	if err != nil {
		return writeError(c, err)
	}

	return ok(c, http.StatusOK, "", map[string]any{
		"users": users,
	})
}

func (h *UserHandler) GetUserByID(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return writeError(c, err)
	}

	ctx, cancel := withTimeout(c, h.timeout)
	defer cancel()

	u, err := h.userService.GetUserByID(ctx, id)
	if err != nil {
		return writeError(c, err)
	}

	return ok(c, http.StatusOK, "", map[string]any{
		"user": u,
	})
}

func (h *UserHandler) UpdateUserRole(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return writeError(c, err)
	}

	id, err := paramID(c)
	if err != nil {
		return writeError(c, err)
	}

	var req UserRoleRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if err := h.validator.Struct(&req); err != nil {
		return validationError(c, err)
	}

	ctx, cancel := withTimeout(c, h.timeout)
	defer cancel()

	updated, err := h.userService.UpdateUserRole(ctx, actor, id, req.Role)
	if err != nil {
		return writeError(c, err)
	}

	return ok(c, http.StatusOK, "Role updated successfully", map[string]any{
		"user": updated,
	})
}

func (h *UserHandler) DeleteUser(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return writeError(c, err)
	}

	id, err := paramID(c)
	if err != nil {
		return writeError(c, err)
	}

	ctx, cancel := withTimeout(c, h.timeout)
	defer cancel()

	if err := h.userService.DeleteUser(ctx, actor, id); err != nil {
		return writeError(c, err)
	}

	return ok(c, http.StatusOK, "User deleted successfully", nil)
}
