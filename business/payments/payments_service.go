package payments

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"garmentFactory/domain"
	"garmentFactory/internal/repository/xendit"
	"garmentFactory/pkg/logger"
)

type InvoiceGateway interface {
	CreateInvoice(ctx context.Context, order domain.Order, user domain.User) (domain.XenditResponse, error)
}

type UserFinder interface {
	FindByID(ctx context.Context, id uint) (domain.User, error)
}

type OrderPayer interface {
	GetOrder(ctx context.Context, actor domain.Actor, id uint) (domain.Order, error)
	RecordPayment(ctx context.Context, id uint, result domain.PaymentResult) (domain.Order, error)
}

type PaymentsService struct {
	gateway      InvoiceGateway
	users        UserFinder
	orders       OrderPayer
	webhookToken string
}

func NewPaymentsService(gateway InvoiceGateway, users UserFinder, orders OrderPayer, webhookToken string) *PaymentsService {
	return &PaymentsService{
		gateway:      gateway,
		users:        users,
		orders:       orders,
		webhookToken: webhookToken,
	}
}

// CreatePaymentLink opens an invoice for an unpaid online order of the actor.
func (s *PaymentsService) CreatePaymentLink(ctx context.Context, actor domain.Actor, orderID uint) (domain.PaymentLink, error) {
	order, err := s.orders.GetOrder(ctx, actor, orderID)
	if err != nil {
		return domain.PaymentLink{}, err
	}

	switch {
	case order.IsPaid:
		return domain.PaymentLink{}, fmt.Errorf("order %d already paid: %w", order.ID, domain.ErrConflict)
	case order.OrderStatus == domain.OrderCancelled:
		return domain.PaymentLink{}, fmt.Errorf("%w: order %d is cancelled", domain.ErrInvalidTransition, order.ID)
	case order.PaymentMethod != domain.PaymentOnline:
		return domain.PaymentLink{}, fmt.Errorf("%w: order %d is not paid online", domain.ErrValidation, order.ID)
	}

	user, err := s.users.FindByID(ctx, order.UserID)
	if err != nil {
		return domain.PaymentLink{}, err
	}

	invoice, err := s.gateway.CreateInvoice(ctx, order, user)
	if err != nil {
		logger.Error("Failed to create xendit invoice", "order_id", order.ID, "error", err)
		return domain.PaymentLink{}, err
	}

	return domain.PaymentLink{
		OrderID:    order.ID,
		InvoiceID:  invoice.ID,
		InvoiceURL: invoice.InvoiceURL,
		Amount:     invoice.Amount,
		ExpiresAt:  invoice.ExpiryDate,
	}, nil
}

// VerifyCallbackToken compares the x-callback-token header with the configured token.
func (s *PaymentsService) VerifyCallbackToken(token string) bool {
	if s.webhookToken == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(s.webhookToken)) == 1
}

// HandleWebhook marks the order paid when Xendit reports the invoice as paid. Other
// statuses are acknowledged and ignored, and so are payments for orders that were
// cancelled or removed in the meantime. Only malformed ids and internal failures are
// returned.
func (s *PaymentsService) HandleWebhook(ctx context.Context, payload domain.XenditWebhook) error {
	status := strings.ToUpper(payload.Status)
	if status != "PAID" && status != "SETTLED" {
		logger.Info("Ignoring xendit callback", "external_id", payload.ExternalID, "status", payload.Status)
		return nil
	}

	orderID, err := xendit.ParseExternalID(payload.ExternalID)
	if err != nil {
		return fmt.Errorf("%w: %s", domain.ErrValidation, err.Error())
	}

	updateTime := payload.Updated
	if updateTime.IsZero() {
		updateTime = payload.PaidAt
	}

	_, err = s.orders.RecordPayment(ctx, orderID, domain.PaymentResult{
		TransactionID: payload.ID,
		Status:        status,
		UpdateTime:    updateTime.UTC().Format(time.RFC3339),
		EmailAddress:  payload.PayerEmail,
	})
	if errors.Is(err, domain.ErrConflict) {
		logger.Info("Duplicate xendit callback", "order_id", orderID)
		return nil
	}
	// Xendit retries every non-2xx answer, so a payment that can no longer be applied
	// is acknowledged and left for a manual refund.
	if errors.Is(err, domain.ErrInvalidTransition) || errors.Is(err, domain.ErrNotFound) {
		logger.Error("Xendit payment needs refund",
			"order_id", orderID,
			"invoice_id", payload.ID,
			"amount", payload.PaidAmount,
			"payer_email", payload.PayerEmail,
			"error", err,
		)
		return nil
	}
	if err != nil {
		logger.Error("Failed to record xendit payment", "order_id", orderID, "error", err)
		return err
	}

	logger.Info("Order paid through xendit", "order_id", orderID, "amount", payload.PaidAmount)
	return nil
}
