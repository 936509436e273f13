package rest

import (
	"context"
	"net/http"
	"time"

	"garmentFactory/domain"
	"garmentFactory/pkg/logger"

	"github.com/labstack/echo/v4"
)

type (
	PaymentsHandler struct {
		paymentsService PaymentsService
		timeout         time.Duration
	}

	PaymentsService interface {
		CreatePaymentLink(ctx context.Context, actor domain.Actor, orderID uint) (domain.PaymentLink, error)
		VerifyCallbackToken(token string) bool
		HandleWebhook(ctx context.Context, payload domain.XenditWebhook) error
	}
)

func NewPaymentsHandler(paymentsService PaymentsService, timeout time.Duration) *PaymentsHandler {
	return &PaymentsHandler{
		paymentsService: paymentsService,
		timeout:         timeout,
	}
}

func (h *PaymentsHandler) CreatePaymentLink(c echo.Context) error {
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

	link, err := h.paymentsService.CreatePaymentLink(ctx, actor, id)
	if err != nil {
		logger.Warn("Failed to create payment link", "order_id", id, "error", err)
		return writeError(c, err)
	}

	return ok(c, http.StatusCreated, "Payment link created", map[string]any{
		"payment": link,
	})
}

// PaidResponse is where the invoice page sends the buyer after a successful payment.
func (h *PaymentsHandler) PaidResponse(c echo.Context) error {
	return ok(c, http.StatusOK, "Your payment was successful!", nil)
}
