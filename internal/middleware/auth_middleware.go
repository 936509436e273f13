package middleware

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"garmentFactory/domain"
	"garmentFactory/pkg/logger"
	jsonres "garmentFactory/pkg/response"
	"garmentFactory/pkg/utils"

	"github.com/labstack/echo/v4"
)

const (
	ContextUserID = "user_id"
	ContextRole   = "role"
	ContextToken  = "token"
)

// TokenValidator looks a session token up in the token store.
type TokenValidator interface {
	ValidateTokenFromRedis(ctx context.Context, token string) (string, error)
}

func unauthorized(c echo.Context, message string) error {
	return c.JSON(http.StatusUnauthorized, jsonres.Error("UNAUTHORIZED", message, nil))
}

func forbidden(c echo.Context, message string) error {
	return c.JSON(http.StatusForbidden, jsonres.Error("FORBIDDEN", message, nil))
}

// bearerClaims extracts and parses the bearer token of the request.
func bearerClaims(c echo.Context) (*utils.Claims, string, string) {
	authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
	if authHeader == "" {
		return nil, "", "Missing authorization header"
	}

	tokenParts := strings.SplitN(authHeader, " ", 2)
	if len(tokenParts) != 2 || !strings.EqualFold(tokenParts[0], "Bearer") || tokenParts[1] == "" {
		return nil, "", "Invalid authorization format"
	}

	claims, err := utils.ParseJWT(tokenParts[1])
	if err != nil {
		logger.Debug("Failed to parse JWT", err)
		return nil, "", "Invalid or expired token"
	}

	return claims, tokenParts[1], ""
}

func setIdentity(c echo.Context, claims *utils.Claims, token string) error {
	userID, err := strconv.ParseUint(claims.UserID, 10, 64)
	if err != nil || userID == 0 {
		logger.Warn("Invalid user ID in token", "user_id", claims.UserID)
		return unauthorized(c, "Invalid token")
	}

	role, ok := domain.ParseRole(claims.Role)
	if !ok {
		logger.Warn("Unknown role in token", "role", claims.Role)
		return unauthorized(c, "Invalid token")
	}

	c.Set(ContextUserID, uint(userID))
	c.Set(ContextRole, role)
	c.Set(ContextToken, token)
	return nil
}

// AuthMiddleware authenticates the bearer JWT without consulting the token store.
func AuthMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, token, msg := bearerClaims(c)
			if claims == nil {
				return unauthorized(c, msg)
			}

			if err := setIdentity(c, claims, token); err != nil {
				return err
			}

			return next(c)
		}
	}
}

// AuthMiddlewareWithRedis also requires the token to be a live session in Redis, so
// logged out tokens stop working before they expire.
func AuthMiddlewareWithRedis(tokenValidator TokenValidator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, token, msg := bearerClaims(c)
			if claims == nil {
				return unauthorized(c, msg)
			}

			ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
			defer cancel()

			userID, err := tokenValidator.ValidateTokenFromRedis(ctx, token)
			if err != nil {
				logger.Debug("Token not found in Redis", err)
				return unauthorized(c, "Token expired or invalid")
			}

			if userID != claims.UserID {
				logger.Warn("UserID mismatch between JWT and Redis", "jwt", claims.UserID, "redis", userID)
				return unauthorized(c, "Invalid token")
			}

			if err := setIdentity(c, claims, token); err != nil {
				return err
			}

			return next(c)
		}
	}
}

// ActorFrom returns the caller identity stored by the auth middleware.
func ActorFrom(c echo.Context) (domain.Actor, bool) {
	userID, ok := c.Get(ContextUserID).(uint)
	if !ok {
		return domain.Actor{}, false
	}
	role, ok := c.Get(ContextRole).(domain.Role)
	if !ok {
		return domain.Actor{}, false
	}
	return domain.Actor{UserID: userID, Role: role}, true
}

// RequireCapability lets the request through only if the caller's role grants cap.
func RequireCapability(cap domain.Capability) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			actor, ok := ActorFrom(c)
			if !ok {
				return unauthorized(c, "User not authenticated")
			}

			if !actor.Can(cap) {
				return forbidden(c, "Insufficient permissions")
			}

			return next(c)
		}
	}
}

// SelfOrCapability allows callers acting on their own :id, and anyone holding cap.
func SelfOrCapability(cap domain.Capability) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			actor, ok := ActorFrom(c)
			if !ok {
				return unauthorized(c, "User not authenticated")
			}

			if actor.Can(cap) {
				return next(c)
			}

			requestedID, err := strconv.ParseUint(c.Param("id"), 10, 64)
			if err != nil {
				return c.JSON(http.StatusBadRequest, jsonres.Error("BAD_REQUEST", "Invalid user ID", nil))
			}

			if uint(requestedID) != actor.UserID {
				return forbidden(c, "You can only access your own data")
			}

			return next(c)
		}
	}
}
