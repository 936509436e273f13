package payments

import (
	"context"
	"fmt"
	"testing"
	"time"

	"garmentFactory/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) CreateInvoice(ctx context.Context, order domain.Order, user domain.User) (domain.XenditResponse, error) {
	args := m.Called(ctx, order, user)
	return args.Get(0).(domain.XenditResponse), args.Error(1)
}

type MockUsers struct {
	mock.Mock
}

func (m *MockUsers) FindByID(ctx context.Context, id uint) (domain.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.User), args.Error(1)
}

type MockOrders struct {
	mock.Mock
}

func (m *MockOrders) GetOrder(ctx context.Context, actor domain.Actor, id uint) (domain.Order, error) {
	args := m.Called(ctx, actor, id)
	return args.Get(0).(domain.Order), args.Error(1)
}

func (m *MockOrders) RecordPayment(ctx context.Context, id uint, result domain.PaymentResult) (domain.Order, error) {
	args := m.Called(ctx, id, result)
	return args.Get(0).(domain.Order), args.Error(1)
}

var owner = domain.Actor{UserID: 5, Role: domain.RoleUser}

func TestCreatePaymentLink(t *testing.T) {
	ctx := context.Background()
	gateway, users, orders := new(MockGateway), new(MockUsers), new(MockOrders)
	svc := NewPaymentsService(gateway, users, orders, "cb-token")

	order := domain.Order{ID: 12, UserID: 5, PaymentMethod: domain.PaymentOnline, TotalPrice: 115, OrderStatus: domain.OrderPending}
	user := domain.User{ID: 5, Email: "ana@factory.test"}
	orders.On("GetOrder", ctx, owner, uint(12)).Return(order, nil)
	users.On("FindByID", ctx, uint(5)).Return(user, nil)
	gateway.On("CreateInvoice", ctx, order, user).Return(domain.XenditResponse{
		ID: "inv-1", InvoiceURL: "https://pay.test/inv-1", Amount: 115,
	}, nil)

	link, err := svc.CreatePaymentLink(ctx, owner, 12)
	require.NoError(t, err)
	assert.Equal(t, "https://pay.test/inv-1", link.InvoiceURL)
	assert.Equal(t, uint(12), link.OrderID)
}

func TestCreatePaymentLink_Rejections(t *testing.T) {
	ctx := context.Background()

	cases := map[string]struct {
		order domain.Order
		want  error
	}{
		"paid":      {domain.Order{ID: 1, PaymentMethod: domain.PaymentOnline, IsPaid: true}, domain.ErrConflict},
		"cancelled": {domain.Order{ID: 1, PaymentMethod: domain.PaymentOnline, OrderStatus: domain.OrderCancelled}, domain.ErrInvalidTransition},
		"cash":      {domain.Order{ID: 1, PaymentMethod: domain.PaymentCashOnDelivery}, domain.ErrValidation},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			orders := new(MockOrders)
			gateway := new(MockGateway)
			svc := NewPaymentsService(gateway, new(MockUsers), orders, "cb-token")
			orders.On("GetOrder", ctx, owner, uint(1)).Return(tc.order, nil)

			_, err := svc.CreatePaymentLink(ctx, owner, 1)
			assert.ErrorIs(t, err, tc.want)
			gateway.AssertNotCalled(t, "CreateInvoice", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestVerifyCallbackToken(t *testing.T) {
	svc := NewPaymentsService(nil, nil, nil, "cb-token")
	assert.True(t, svc.VerifyCallbackToken("cb-token"))
	assert.False(t, svc.VerifyCallbackToken("nope"))

	unset := NewPaymentsService(nil, nil, nil, "")
	assert.False(t, unset.VerifyCallbackToken(""))
}

func TestHandleWebhook(t *testing.T) {
	ctx := context.Background()
	orders := new(MockOrders)
	svc := NewPaymentsService(nil, nil, orders, "cb-token")

	paidAt := time.Date(2024, 5, 2, 8, 30, 0, 0, time.UTC)
	orders.On("RecordPayment", ctx, uint(12), domain.PaymentResult{
		TransactionID: "inv-1",
		Status:        "PAID",
		UpdateTime:    "2024-05-02T08:30:00Z",
		EmailAddress:  "ana@factory.test",
	}).Return(domain.Order{ID: 12, IsPaid: true}, nil)

	err := svc.HandleWebhook(ctx, domain.XenditWebhook{
		ID: "inv-1", ExternalID: "order-12", Status: "paid", PayerEmail: "ana@factory.test", PaidAt: paidAt,
	})
	require.NoError(t, err)
	orders.AssertExpectations(t)

	assert.NoError(t, svc.HandleWebhook(ctx, domain.XenditWebhook{ExternalID: "order-12", Status: "EXPIRED"}))
	assert.ErrorIs(t, svc.HandleWebhook(ctx, domain.XenditWebhook{ExternalID: "junk", Status: "PAID"}), domain.ErrValidation)
}

func TestHandleWebhook_DuplicateIsAcknowledged(t *testing.T) {
	ctx := context.Background()
	orders := new(MockOrders)
	svc := NewPaymentsService(nil, nil, orders, "cb-token")

	orders.On("RecordPayment", ctx, uint(3), mock.Anything).
		Return(domain.Order{}, fmt.Errorf("order 3 already paid: %w", domain.ErrConflict))

	assert.NoError(t, svc.HandleWebhook(ctx, domain.XenditWebhook{ID: "inv-3", ExternalID: "order-3", Status: "SETTLED"}))
}

func TestHandleWebhook_UnapplicablePaymentIsAcknowledged(t *testing.T) {
	ctx := context.Background()

	for name, repoErr := range map[string]error{
		"cancelled": fmt.Errorf("%w: order 12 is cancelled", domain.ErrInvalidTransition),
		"missing":   fmt.Errorf("order 12: %w", domain.ErrNotFound),
	} {
		t.Run(name, func(t *testing.T) {
			orders := new(MockOrders)
			svc := NewPaymentsService(nil, nil, orders, "cb-token")
			orders.On("RecordPayment", ctx, uint(12), mock.Anything).Return(domain.Order{}, repoErr)

			err := svc.HandleWebhook(ctx, domain.XenditWebhook{
				ID: "inv-12", ExternalID: "order-12", Status: "PAID", PaidAmount: 115,
			})
			assert.NoError(t, err)
			orders.AssertExpectations(t)
		})
	}
}

func TestHandleWebhook_InternalFailureIsReturned(t *testing.T) {
	ctx := context.Background()
	orders := new(MockOrders)
	svc := NewPaymentsService(nil, nil, orders, "cb-token")

	orders.On("RecordPayment", ctx, uint(12), mock.Anything).Return(domain.Order{}, fmt.Errorf("connection reset"))

	assert.EqualError(t, svc.HandleWebhook(ctx, domain.XenditWebhook{ExternalID: "order-12", Status: "PAID"}), "connection reset")
}
