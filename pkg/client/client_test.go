package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"garmentFactory/domain"

	"github.com/AMFarhan21/fres"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeData renders data the way the server does for a successful request.
func writeData(w http.ResponseWriter, status int, data any) {
	body := fres.Response.StatusOK(data)
	if status == http.StatusCreated {
		body = fres.Response.StatusCreated(data)
	}
	writeJSON(w, status, body)
}

func TestOrderQuery_OnlyNonEmptyFields(t *testing.T) {
	assert.Equal(t, "status=Shipped", OrderQuery{Status: "Shipped"}.Values().Encode())
	assert.Empty(t, OrderQuery{}.Values().Encode())

	paid := true
	q := OrderQuery{Status: "Pending", User: "7", IsPaid: &paid, Page: 2, Limit: 5}
	assert.Equal(t, "isPaid=true&limit=5&page=2&status=Pending&user=7", q.Values().Encode())
}

func TestGetAllOrders_SendsStatusOnly(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/orders", r.URL.Path)
		gotQuery = r.URL.RawQuery
		writeData(w, http.StatusOK, map[string]any{"orders": []any{}, "total": 0, "page": 1, "pages": 0})
	}))
	defer srv.Close()

	_, err := New(srv.URL).GetAllOrders(context.Background(), OrderQuery{Status: "Shipped"})
	require.NoError(t, err)
	assert.Equal(t, "status=Shipped", gotQuery)
}

func TestCreateOrder(t *testing.T) {
	req := CreateOrderRequest{
		OrderItems:      []OrderItemRequest{{ProductID: 5, Quantity: 2}},
		ShippingAddress: domain.ShippingAddress{Address: "Jl. Merdeka 1", City: "Bandung", PostalCode: "40111", Country: "ID"},
		PaymentMethod:   domain.PaymentOnline,
	}

	t.Run("created", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))

			var got CreateOrderRequest
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			assert.Equal(t, req, got)

			writeData(w, http.StatusCreated, map[string]any{
				"order": map[string]any{"_id": 31, "orderStatus": "Pending", "totalPrice": 125.5},
			})
		}))
		defer srv.Close()

		order, err := New(srv.URL, WithToken("tok")).CreateOrder(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, uint(31), order.ID)
		assert.Equal(t, domain.OrderPending, order.OrderStatus)
	})

	t.Run("rejected", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"success": false, "code": "BAD_REQUEST", "message": "validation failed: order has no items",
			})
		}))
		defer srv.Close()

		_, err := New(srv.URL).CreateOrder(context.Background(), req)
		apiErr, ok := AsAPIError(err)
		require.True(t, ok)
		assert.Equal(t, KindClient, apiErr.Kind)
		assert.Equal(t, http.StatusBadRequest, apiErr.Status)
		assert.Equal(t, "validation failed: order has no items", apiErr.Message)
	})
}

func TestErrorKinds(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/orders/1":
			w.WriteHeader(http.StatusBadGateway)
			_, _ = io.WriteString(w, "<html>bad gateway</html>")
		case "/api/orders/2":
			_, _ = io.WriteString(w, "not json")
		}
	}))

	c := New(srv.URL)
	_, err := c.GetOrder(context.Background(), 1)
	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, KindServer, apiErr.Kind)
	assert.Equal(t, "Bad Gateway", apiErr.Message)

	_, err = c.GetOrder(context.Background(), 2)
	apiErr, ok = AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, KindDecode, apiErr.Kind)

	srv.Close()
	_, err = c.GetOrder(context.Background(), 1)
	apiErr, ok = AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, KindNetwork, apiErr.Kind)
}

func TestUnauthorizedHook(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"success": false, "code": "UNAUTHORIZED", "message": "Token expired or invalid"})
	}))
	defer srv.Close()

	calls := 0
	c := New(srv.URL)
	c.OnUnauthorized(func() { calls++ })

	_, err := c.GetOrderStatistics(context.Background())
	assert.True(t, IsUnauthorized(err))
	_, err = c.CancelOrder(context.Background(), 3)
	assert.True(t, IsUnauthorized(err))
	assert.Equal(t, 2, calls)
}

func TestMyOrders_FilterDelivered(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/orders/myorders", r.URL.Path)
		writeData(w, http.StatusOK, map[string]any{
			"orders": []map[string]any{
				{"_id": 11, "orderStatus": "Pending"},
				{"_id": 12, "orderStatus": "Delivered"},
			},
			"total": 2, "page": 1, "pages": 1,
		})
	}))
	defer srv.Close()

	page, err := New(srv.URL).GetMyOrders(context.Background(), OrderQuery{})
	require.NoError(t, err)
	require.Len(t, page.Orders, 2)

	delivered := FilterOrdersByStatus(page.Orders, "Delivered")
	require.Len(t, delivered, 1)
	assert.Equal(t, uint(12), delivered[0].ID)

	assert.Len(t, FilterOrdersByStatus(page.Orders, ""), 2)
	assert.Len(t, FilterOrdersByStatus(page.Orders, "delivered"), 1)
	assert.Empty(t, FilterOrdersByStatus(page.Orders, "Lost"))
}

func TestStatusActions(t *testing.T) {
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		paths = append(paths, r.URL.Path)
		writeData(w, http.StatusOK, map[string]any{"order": map[string]any{"_id": 4}})
	}))
	defer srv.Close()

	c := New(srv.URL)
	ctx := context.Background()
	_, err := c.UpdateOrderStatus(ctx, 4, domain.OrderShipped)
	require.NoError(t, err)
	_, err = c.DeliverOrder(ctx, 4)
	require.NoError(t, err)
	_, err = c.PayOrder(ctx, 4, domain.PaymentResult{TransactionID: "tx"})
	require.NoError(t, err)

	assert.Equal(t, []string{"/api/orders/4/status", "/api/orders/4/deliver", "/api/orders/4/pay"}, paths)
}
