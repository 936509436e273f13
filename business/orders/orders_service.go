package orders

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"garmentFactory/domain"
	"garmentFactory/internal/repository/events"
	"garmentFactory/pkg/logger"
	"garmentFactory/pkg/metrics"

	"github.com/go-playground/validator/v10"
)

type OrdersRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	FindByID(ctx context.Context, id uint) (domain.Order, error)
	List(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, int64, error)
	UpdateStatus(ctx context.Context, id uint, from, to domain.OrderStatus, extra map[string]any) error
	Cancel(ctx context.Context, order domain.Order) error
	MarkPaid(ctx context.Context, id uint, result domain.PaymentResult, paidAt time.Time) error
	Statistics(ctx context.Context, userID uint) (domain.OrderStatistics, error)
}

type ProductRepository interface {
	FindByIDs(ctx context.Context, ids []uint) (map[uint]domain.Product, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, subject string, message any) error
}

type OrderItemInput struct {
	ProductID uint `json:"product" validate:"required"`
	Quantity  int  `json:"quantity" validate:"required,min=1"`
}

type CreateOrderInput struct {
	OrderItems      []OrderItemInput       `json:"orderItems" validate:"required,min=1,dive"`
	ShippingAddress domain.ShippingAddress `json:"shippingAddress"`
	PaymentMethod   string                 `json:"paymentMethod" validate:"required"`
}

type OrdersService struct {
	orderRepo   OrdersRepository
	productRepo ProductRepository
	publisher   EventPublisher
	validate    *validator.Validate
	now         func() time.Time
}

func NewOrdersService(orderRepo OrdersRepository, productRepo ProductRepository, publisher EventPublisher, validate *validator.Validate) *OrdersService {
	return &OrdersService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		publisher:   publisher,
		validate:    validate,
		now:         time.Now,
	}
}

func (s *OrdersService) CreateOrder(ctx context.Context, actor domain.Actor, input CreateOrderInput) (domain.Order, error) {
	if err := s.validate.Struct(input); err != nil {
		return domain.Order{}, fmt.Errorf("%w: %s", domain.ErrValidation, err.Error())
	}

	addr := input.ShippingAddress
	if addr.Address == "" || addr.City == "" || addr.PostalCode == "" || addr.Country == "" {
		return domain.Order{}, fmt.Errorf("%w: shipping address is incomplete", domain.ErrValidation)
	}

	method, ok := domain.ParsePaymentMethod(input.PaymentMethod)
	if !ok {
		return domain.Order{}, fmt.Errorf("%w: unknown payment method %q", domain.ErrValidation, input.PaymentMethod)
	}

	// merge duplicate lines so stock is reserved once per product
	quantities := make(map[uint]int, len(input.OrderItems))
	ids := make([]uint, 0, len(input.OrderItems))
	for _, it := range input.OrderItems {
		if _, seen := quantities[it.ProductID]; !seen {
			ids = append(ids, it.ProductID)
		}
		quantities[it.ProductID] += it.Quantity
	}

	products, err := s.productRepo.FindByIDs(ctx, ids)
	if err != nil {
		logger.Error("Failed to load products for order", err)
		return domain.Order{}, err
	}

	items := make([]domain.OrderItem, 0, len(ids))
	for _, id := range ids {
		p, ok := products[id]
		if !ok {
			return domain.Order{}, fmt.Errorf("product %d: %w", id, domain.ErrNotFound)
		}
		if p.Quantity < quantities[id] {
			return domain.Order{}, fmt.Errorf("%w: %s", domain.ErrOutOfStock, p.Name)
		}
		items = append(items, domain.OrderItem{
			ProductID: p.ID,
			Name:      p.Name,
			Quantity:  quantities[id],
			Price:     p.Price,
			Image:     p.Image,
		})
	}

	prices := CalculatePrices(items)
	order := domain.Order{
		UserID:          actor.UserID,
		OrderItems:      items,
		ShippingAddress: addr,
		PaymentMethod:   method,
		ItemsPrice:      prices.Items,
		ShippingPrice:   prices.Shipping,
		TaxPrice:        prices.Tax,
		TotalPrice:      prices.Total,
		OrderStatus:     domain.OrderPending,
	}

	if err := s.orderRepo.Create(ctx, &order); err != nil {
		logger.Error("Failed to create order", err)
		return domain.Order{}, err
	}

	metrics.OrdersCreated.Inc()
	s.publish(ctx, events.SubjectOrderCreated, events.OrderCreatedEvent{
		OrderID:    order.ID,
		UserID:     order.UserID,
		TotalPrice: order.TotalPrice,
		Items:      len(order.OrderItems),
		CreatedAt:  order.CreatedAt,
	})

	return order, nil
}

// GetOrder returns an order to its owner or to staff who may view orders.
func (s *OrdersService) GetOrder(ctx context.Context, actor domain.Actor, id uint) (domain.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return domain.Order{}, err
	}

	if !actor.Owns(order.UserID) && !actor.Can(domain.CapOrdersView) {
		return domain.Order{}, fmt.Errorf("order %d: %w", id, domain.ErrForbidden)
	}

	return order, nil
}

func (s *OrdersService) ListOrders(ctx context.Context, actor domain.Actor, filter domain.OrderFilter) (domain.OrderPage, error) {
	if !actor.Can(domain.CapOrdersView) {
		return domain.OrderPage{}, fmt.Errorf("listing orders: %w", domain.ErrForbidden)
	}
	return s.list(ctx, filter)
}

// ListMyOrders lists the actor's own orders whatever user the filter names.
func (s *OrdersService) ListMyOrders(ctx context.Context, actor domain.Actor, filter domain.OrderFilter) (domain.OrderPage, error) {
	filter.UserID = actor.UserID
	return s.list(ctx, filter)
}

func (s *OrdersService) list(ctx context.Context, filter domain.OrderFilter) (domain.OrderPage, error) {
	filter = filter.Normalize()

	orders, total, err := s.orderRepo.List(ctx, filter)
	if err != nil {
		logger.Error("Failed to list orders", err)
		return domain.OrderPage{}, err
	}
	if orders == nil {
		orders = []domain.Order{}
	}

	return domain.OrderPage{
		Orders: orders,
		Total:  total,
		Page:   filter.Page,
		Pages:  int(math.Ceil(float64(total) / float64(filter.Limit))),
	}, nil
}

// UpdateStatus moves an order along its lifecycle. Cancelling restocks the items and
// delivering stamps the delivery time.
func (s *OrdersService) UpdateStatus(ctx context.Context, actor domain.Actor, id uint, status string) (domain.Order, error) {
	if !actor.Can(domain.CapOrdersManage) {
		return domain.Order{}, fmt.Errorf("updating order status: %w", domain.ErrForbidden)
	}

	next, ok := domain.ParseOrderStatus(status)
	if !ok {
		return domain.Order{}, fmt.Errorf("%w: unknown order status %q", domain.ErrValidation, status)
	}

	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return domain.Order{}, err
	}

	return s.transition(ctx, actor, order, next)
}

func (s *OrdersService) transition(ctx context.Context, actor domain.Actor, order domain.Order, next domain.OrderStatus) (domain.Order, error) {
	from := order.OrderStatus
	if !from.CanTransitionTo(next) {
		return domain.Order{}, fmt.Errorf("%w: %s to %s", domain.ErrInvalidTransition, from, next)
	}

	var err error
	switch next {
	case domain.OrderCancelled:
		err = s.orderRepo.Cancel(ctx, order)
	case domain.OrderDelivered:
		err = s.orderRepo.UpdateStatus(ctx, order.ID, from, next, map[string]any{
			"is_delivered": true,
			"delivered_at": s.now(),
		})
	default:
		err = s.orderRepo.UpdateStatus(ctx, order.ID, from, next, nil)
	}
	if err != nil {
		logger.Error("Failed to change order status", "order_id", order.ID, "from", from, "to", next, "error", err)
		return domain.Order{}, err
	}

	metrics.OrderStatusTransitions.WithLabelValues(string(from), string(next)).Inc()
	s.publish(ctx, events.SubjectOrderStatusUpdated, events.OrderStatusEvent{
		OrderID:   order.ID,
		From:      from,
		To:        next,
		ChangedBy: actor.UserID,
		ChangedAt: s.now(),
	})

	return s.orderRepo.FindByID(ctx, order.ID)
}

// CancelOrder lets owners cancel before shipping and order managers cancel any order
// still in a cancellable status.
func (s *OrdersService) CancelOrder(ctx context.Context, actor domain.Actor, id uint) (domain.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return domain.Order{}, err
	}

	if !actor.Can(domain.CapOrdersManage) {
		if !actor.Owns(order.UserID) {
			return domain.Order{}, fmt.Errorf("order %d: %w", id, domain.ErrForbidden)
		}
		if order.IsPaid {
			return domain.Order{}, fmt.Errorf("%w: paid orders must be cancelled by staff", domain.ErrInvalidTransition)
		}
	}

	return s.transition(ctx, actor, order, domain.OrderCancelled)
}

func (s *OrdersService) DeliverOrder(ctx context.Context, actor domain.Actor, id uint) (domain.Order, error) {
	if !actor.Can(domain.CapOrdersManage) {
		return domain.Order{}, fmt.Errorf("delivering order: %w", domain.ErrForbidden)
	}

	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return domain.Order{}, err
	}

	return s.transition(ctx, actor, order, domain.OrderDelivered)
}

// PayOrder records a payment made by the owner or entered by an order manager.
func (s *OrdersService) PayOrder(ctx context.Context, actor domain.Actor, id uint, result domain.PaymentResult) (domain.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return domain.Order{}, err
	}

	if !actor.Owns(order.UserID) && !actor.Can(domain.CapOrdersManage) {
		return domain.Order{}, fmt.Errorf("order %d: %w", id, domain.ErrForbidden)
	}

	return s.markPaid(ctx, order, result)
}

// RecordPayment marks an order paid on behalf of the payment gateway.
func (s *OrdersService) RecordPayment(ctx context.Context, id uint, result domain.PaymentResult) (domain.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return domain.Order{}, err
	}

	return s.markPaid(ctx, order, result)
}

func (s *OrdersService) markPaid(ctx context.Context, order domain.Order, result domain.PaymentResult) (domain.Order, error) {
	if order.OrderStatus == domain.OrderCancelled {
		return domain.Order{}, fmt.Errorf("%w: order %d is cancelled", domain.ErrInvalidTransition, order.ID)
	}
	if order.IsPaid {
		return domain.Order{}, fmt.Errorf("order %d already paid: %w", order.ID, domain.ErrConflict)
	}

	if result.UpdateTime == "" {
		result.UpdateTime = s.now().UTC().Format(time.RFC3339)
	}

	if err := s.orderRepo.MarkPaid(ctx, order.ID, result, s.now()); err != nil {
		logger.Error("Failed to mark order paid", "order_id", order.ID, "error", err)
		return domain.Order{}, err
	}

	return s.orderRepo.FindByID(ctx, order.ID)
}

// Statistics covers every order for staff and only the actor's own orders otherwise.
func (s *OrdersService) Statistics(ctx context.Context, actor domain.Actor) (domain.OrderStatistics, error) {
	var userID uint
	if !actor.Can(domain.CapOrdersView) {
		userID = actor.UserID
	}

	stats, err := s.orderRepo.Statistics(ctx, userID)
	if err != nil {
		logger.Error("Failed to compute order statistics", err)
		return domain.OrderStatistics{}, err
	}

	return stats, nil
}

func (s *OrdersService) publish(ctx context.Context, subject string, event any) {
	if err := s.publisher.Publish(ctx, subject, event); err != nil && !errors.Is(err, context.Canceled) {
		logger.Warn("Failed to publish order event", "subject", subject, "error", err)
	}
}
