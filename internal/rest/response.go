package rest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"garmentFactory/domain"
	"garmentFactory/internal/middleware"
	"garmentFactory/pkg/logger"
	jsonres "garmentFactory/pkg/response"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

const defaultTimeout = 10 * time.Second

// statusOf maps domain errors to HTTP status codes and error codes.
func statusOf(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, "BAD_REQUEST"
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, "UNAUTHORIZED"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "FORBIDDEN"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict, "CONFLICT"
	case errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusConflict, "INVALID_TRANSITION"
	case errors.Is(err, domain.ErrOutOfStock):
		return http.StatusConflict, "OUT_OF_STOCK"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "TIMEOUT"
	}
	return http.StatusInternalServerError, "INTERNAL_ERROR"
}

// writeError renders err in the error envelope. Internal errors are logged and their
// details hidden from the client.
func writeError(c echo.Context, err error) error {
	status, code := statusOf(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		logger.Error("Request failed", "path", c.Path(), "rid", c.Get(middleware.ContextRequestID), "error", err)
		message = "Internal server error"
	}
	return c.JSON(status, jsonres.Error(code, message, nil))
}

func badRequest(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, jsonres.Error("BAD_REQUEST", message, nil))
}

// validationError turns validator output into a readable list of failed fields.
func validationError(c echo.Context, err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return badRequest(c, err.Error())
	}

	fields := make(map[string]string, len(verrs))
	names := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fe.Tag()
		names = append(names, fe.Field())
	}
	return c.JSON(http.StatusBadRequest, jsonres.Error(
		"BAD_REQUEST",
		fmt.Sprintf("invalid fields: %s", strings.Join(names, ", ")),
		fields,
	))
}

func paramID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%w: invalid id %q", domain.ErrValidation, c.Param("id"))
	}
	return uint(id), nil
}

func actorOf(c echo.Context) (domain.Actor, error) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		return domain.Actor{}, fmt.Errorf("not authenticated: %w", domain.ErrUnauthorized)
	}
	return actor, nil
}

func withTimeout(c echo.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return context.WithTimeout(c.Request().Context(), timeout)
}

// ok renders data in the fres success envelope. A non-empty message replaces the default one.
func ok(c echo.Context, status int, message string, data any) error {
	body := fres.Response.StatusOK(data)
	if status == http.StatusCreated {
		body = fres.Response.StatusCreated(data)
	}
	if message != "" {
		body.Message = message
	}
	return c.JSON(status, body)
}
