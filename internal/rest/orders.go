package rest

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"garmentFactory/business/orders"
	"garmentFactory/domain"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type (
	OrdersHandler struct {
		validate      *validator.Validate
		ordersService OrdersService
		timeout       time.Duration
	}

	OrdersService interface {
		CreateOrder(ctx context.Context, actor domain.Actor, input orders.CreateOrderInput) (domain.Order, error)
		GetOrder(ctx context.Context, actor domain.Actor, id uint) (domain.Order, error)
		ListOrders(ctx context.Context, actor domain.Actor, filter domain.OrderFilter) (domain.OrderPage, error)
		ListMyOrders(ctx context.Context, actor domain.Actor, filter domain.OrderFilter) (domain.OrderPage, error)
		UpdateStatus(ctx context.Context, actor domain.Actor, id uint, status string) (domain.Order, error)
		CancelOrder(ctx context.Context, actor domain.Actor, id uint) (domain.Order, error)
		DeliverOrder(ctx context.Context, actor domain.Actor, id uint) (domain.Order, error)
		PayOrder(ctx context.Context, actor domain.Actor, id uint, result domain.PaymentResult) (domain.Order, error)
		Statistics(ctx context.Context, actor domain.Actor) (domain.OrderStatistics, error)
	}

	StatusInput struct {
		Status string `json:"status" validate:"required"`
	}
)

func NewOrdersHandler(ordersService OrdersService, timeout time.Duration) *OrdersHandler {
	return &OrdersHandler{
		validate:      validator.New(),
		ordersService: ordersService,
		timeout:       timeout,
	}
}

// orderFilter reads status, isPaid, page and limit from the query string.
func orderFilter(c echo.Context) (domain.OrderFilter, error) {
	var f domain.OrderFilter

	if s := c.QueryParam("status"); s != "" {
		st, ok := domain.ParseOrderStatus(s)
		if !ok {
			return f, fmt.Errorf("%w: unknown order status %q", domain.ErrValidation, s)
		}
		f.Status = st
	}

	if p := c.QueryParam("isPaid"); p != "" {
		paid, err := strconv.ParseBool(p)
		if err != nil {
			return f, fmt.Errorf("%w: isPaid must be true or false", domain.ErrValidation)
		}
		f.IsPaid = &paid
	}

	if u := c.QueryParam("user"); u != "" {
		id, err := strconv.ParseUint(u, 10, 64)
		if err != nil {
			return f, fmt.Errorf("%w: user must be a numeric id", domain.ErrValidation)
		}
		f.UserID = uint(id)
	}

	f.Page, _ = strconv.Atoi(c.QueryParam("page"))
	f.Limit, _ = strconv.Atoi(c.QueryParam("limit"))

	return f.Normalize(), nil
}

func (h *OrdersHandler) CreateOrder(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return writeError(c, err)
	}

	var request orders.CreateOrderInput
	if err := c.Bind(&request); err != nil {
		return badRequest(c, "Invalid request body")
	}

	if err := h.validate.Struct(&request); err != nil {
		return validationError(c, err)
	}

	ctx, cancel := withTimeout(c, h.timeout)
	defer cancel()

	order, err := h.ordersService.CreateOrder(ctx, actor, request)
	if err != nil {
		return writeError(c, err)
	}

	return ok(c, http.StatusCreated, "Order placed", map[string]any{"order": order})
}

func (h *OrdersHandler) GetAllOrders(c echo.Context) error {
	return h.listOrders(c, h.ordersService.ListOrders)
}

func (h *OrdersHandler) GetMyOrders(c echo.Context) error {
	return h.listOrders(c, h.ordersService.ListMyOrders)
}

func (h *OrdersHandler) listOrders(c echo.Context, list func(context.Context, domain.Actor, domain.OrderFilter) (domain.OrderPage, error)) error {
	actor, err := actorOf(c)
	if err != nil {
		return writeError(c, err)
	}

	filter, err := orderFilter(c)
	if err != nil {
		return writeError(c, err)
	}

	ctx, cancel := withTimeout(c, h.timeout)
	defer cancel()

	page, err := list(ctx, actor, filter)
	if err != nil {
		return writeError(c, err)
	}

	return ok(c, http.StatusOK, "", map[string]any{
		"orders": page.Orders,
		"total":  page.Total,
		"page":   page.Page,
		"pages":  page.Pages,
	})
}

func (h *OrdersHandler) GetOrderByID(c echo.Context) error {
	return h.withOrder(c, "", h.ordersService.GetOrder)
}

func (h *OrdersHandler) CancelOrder(c echo.Context) error {
	return h.withOrder(c, "Order cancelled", h.ordersService.CancelOrder)
}

func (h *OrdersHandler) DeliverOrder(c echo.Context) error {
	return h.withOrder(c, "Order delivered", h.ordersService.DeliverOrder)
}

func (h *OrdersHandler) withOrder(c echo.Context, message string, fn func(context.Context, domain.Actor, uint) (domain.Order, error)) error {
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

	order, err := fn(ctx, actor, id)
	if err != nil {
		return writeError(c, err)
	}

	return ok(c, http.StatusOK, message, map[string]any{"order": order})
}

func (h *OrdersHandler) UpdateOrderStatus(c echo.Context) error {
	var request StatusInput
	if err := c.Bind(&request); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if err := h.validate.Struct(&request); err != nil {
		return validationError(c, err)
	}

	return h.withOrder(c, "Order status updated", func(ctx context.Context, actor domain.Actor, id uint) (domain.Order, error) {
		return h.ordersService.UpdateStatus(ctx, actor, id, request.Status)
	})
}

func (h *OrdersHandler) PayOrder(c echo.Context) error {
	var result domain.PaymentResult
	if err := c.Bind(&result); err != nil {
		return badRequest(c, "Invalid request body")
	}

	return h.withOrder(c, "Order paid", func(ctx context.Context, actor domain.Actor, id uint) (domain.Order, error) {
		return h.ordersService.PayOrder(ctx, actor, id, result)
	})
}

func (h *OrdersHandler) GetOrderStatistics(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return writeError(c, err)
	}

	ctx, cancel := withTimeout(c, h.timeout)
	defer cancel()

	stats, err := h.ordersService.Statistics(ctx, actor)
	if err != nil {
		return writeError(c, err)
	}

	return ok(c, http.StatusOK, "", map[string]any{"stats": stats})
}

// GetStatusPresentations serves the badge table so every client renders statuses alike.
func (h *OrdersHandler) GetStatusPresentations(c echo.Context) error {
	return ok(c, http.StatusOK, "", map[string]any{"statuses": domain.StatusPresentations()})
}
