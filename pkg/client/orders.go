package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"garmentFactory/domain"
)

type OrderItemRequest struct {
	ProductID uint `json:"product"`
	Quantity  int  `json:"quantity"`
}

type CreateOrderRequest struct {
	OrderItems      []OrderItemRequest     `json:"orderItems"`
	ShippingAddress domain.ShippingAddress `json:"shippingAddress"`
	PaymentMethod   domain.PaymentMethod   `json:"paymentMethod"`
}

// OrderQuery filters GetAllOrders. Empty fields are left out of the query string.
type OrderQuery struct {
	Status string
	User   string
	IsPaid *bool
	Page   int
	Limit  int
}

func (q OrderQuery) Values() url.Values {
	v := url.Values{}
	if q.Status != "" {
		v.Set("status", q.Status)
	}
	if q.User != "" {
		v.Set("user", q.User)
	}
	if q.IsPaid != nil {
		v.Set("isPaid", strconv.FormatBool(*q.IsPaid))
	}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	return v
}

type orderResponse struct {
	Order domain.Order `json:"order"`
}

func (c *Client) CreateOrder(ctx context.Context, req CreateOrderRequest) (domain.Order, error) {
	var out orderResponse
	if err := c.do(ctx, http.MethodPost, "/api/orders", nil, req, &out); err != nil {
		return domain.Order{}, err
	}
	return out.Order, nil
}

func (c *Client) GetAllOrders(ctx context.Context, q OrderQuery) (domain.OrderPage, error) {
	var out domain.OrderPage
	if err := c.do(ctx, http.MethodGet, "/api/orders", q.Values(), nil, &out); err != nil {
		return domain.OrderPage{}, err
	}
	return out, nil
}

func (c *Client) GetMyOrders(ctx context.Context, q OrderQuery) (domain.OrderPage, error) {
	var out domain.OrderPage
	if err := c.do(ctx, http.MethodGet, "/api/orders/myorders", q.Values(), nil, &out); err != nil {
		return domain.OrderPage{}, err
	}
	return out, nil
}

func (c *Client) GetOrder(ctx context.Context, id uint) (domain.Order, error) {
	var out orderResponse
	if err := c.do(ctx, http.MethodGet, orderPath(id, ""), nil, nil, &out); err != nil {
		return domain.Order{}, err
	}
	return out.Order, nil
}

func (c *Client) UpdateOrderStatus(ctx context.Context, id uint, status domain.OrderStatus) (domain.Order, error) {
	return c.orderAction(ctx, id, "status", map[string]string{"status": string(status)})
}

func (c *Client) CancelOrder(ctx context.Context, id uint) (domain.Order, error) {
	return c.orderAction(ctx, id, "cancel", nil)
}

func (c *Client) PayOrder(ctx context.Context, id uint, result domain.PaymentResult) (domain.Order, error) {
	return c.orderAction(ctx, id, "pay", result)
}

func (c *Client) DeliverOrder(ctx context.Context, id uint) (domain.Order, error) {
	return c.orderAction(ctx, id, "deliver", nil)
}

func (c *Client) orderAction(ctx context.Context, id uint, action string, body any) (domain.Order, error) {
	var out orderResponse
	if err := c.do(ctx, http.MethodPut, orderPath(id, action), nil, body, &out); err != nil {
		return domain.Order{}, err
	}
	return out.Order, nil
}

func (c *Client) GetOrderStatistics(ctx context.Context) (domain.OrderStatistics, error) {
	var out struct {
		Stats domain.OrderStatistics `json:"stats"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/orders/stats", nil, nil, &out); err != nil {
		return domain.OrderStatistics{}, err
	}
	return out.Stats, nil
}

func (c *Client) CreatePaymentLink(ctx context.Context, id uint) (domain.PaymentLink, error) {
	var out struct {
		Payment domain.PaymentLink `json:"payment"`
	}
	if err := c.do(ctx, http.MethodPost, orderPath(id, "payment-link"), nil, nil, &out); err != nil {
		return domain.PaymentLink{}, err
	}
	return out.Payment, nil
}

func (c *Client) GetStatusPresentations(ctx context.Context) ([]domain.StatusPresentation, error) {
	var out struct {
		Statuses []domain.StatusPresentation `json:"statuses"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/orders/statuses", nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Statuses, nil
}

func orderPath(id uint, action string) string {
	if action == "" {
		return fmt.Sprintf("/api/orders/%d", id)
	}
	return fmt.Sprintf("/api/orders/%d/%s", id, action)
}

// FilterOrdersByStatus keeps the orders whose status matches status, ignoring case. An
// empty status keeps everything.
func FilterOrdersByStatus(orders []domain.Order, status string) []domain.Order {
	if status == "" {
		return orders
	}
	want, ok := domain.ParseOrderStatus(status)
	if !ok {
		return []domain.Order{}
	}

	out := make([]domain.Order, 0, len(orders))
	for _, o := range orders {
		if o.OrderStatus == want {
			out = append(out, o)
		}
	}
	return out
}
