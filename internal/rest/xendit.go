package rest

import (
	"net/http"

	"garmentFactory/domain"
	"garmentFactory/pkg/logger"
	jsonres "garmentFactory/pkg/response"

	"github.com/labstack/echo/v4"
)

const callbackTokenHeader = "x-callback-token"

// XenditWebhook receives invoice callbacks. Xendit retries anything that is not a 2xx,
// so only bad tokens, malformed bodies and internal failures are rejected.
func (h *PaymentsHandler) XenditWebhook(c echo.Context) error {
	if !h.paymentsService.VerifyCallbackToken(c.Request().Header.Get(callbackTokenHeader)) {
		logger.Warn("Rejected xendit callback with bad token", "ip", c.RealIP())
		return c.JSON(http.StatusUnauthorized, jsonres.Error("UNAUTHORIZED", "Invalid callback token", nil))
	}

	var payload domain.XenditWebhook
	if err := c.Bind(&payload); err != nil {
		logger.Error("Invalid xendit callback body", err)
		return badRequest(c, "Invalid request body")
	}

	ctx, cancel := withTimeout(c, h.timeout)
	defer cancel()

	if err := h.paymentsService.HandleWebhook(ctx, payload); err != nil {
		return writeError(c, err)
	}

	return ok(c, http.StatusOK, "Callback processed", nil)
}
