package postgres

import (
	"context"
	"fmt"
	"time"

	"garmentFactory/domain"

	"gorm.io/gorm"
)

// FinanceRepository runs the read-only aggregate queries behind the finance dashboard.
type FinanceRepository struct {
	DB *gorm.DB
}

func NewFinanceRepository(db *gorm.DB) *FinanceRepository {
	return &FinanceRepository{
		DB: db,
	}
}

func (r *FinanceRepository) OrderTotals(ctx context.Context) (domain.OrderTotals, error) {
	var t domain.OrderTotals
	err := r.DB.WithContext(ctx).Model(&domain.Order{}).
		Select(`COUNT(*) AS total_orders,
			COUNT(*) FILTER (WHERE is_paid) AS paid_orders,
			COUNT(*) FILTER (WHERE order_status = ?) AS cancelled_orders,
			COALESCE(SUM(total_price) FILTER (WHERE is_paid AND order_status <> ?), 0) AS revenue,
			COALESCE(SUM(total_price) FILTER (WHERE NOT is_paid AND order_status <> ?), 0) AS pending_payment_amount`,
			domain.OrderCancelled, domain.OrderCancelled, domain.OrderCancelled).
		Scan(&t).Error
	if err != nil {
		return domain.OrderTotals{}, fmt.Errorf("failed to aggregate orders: %w", err)
	}
	return t, nil
}

type methodRevenue struct {
	PaymentMethod domain.PaymentMethod
	Revenue       float64
}

func (r *FinanceRepository) RevenueByPaymentMethod(ctx context.Context) (map[domain.PaymentMethod]float64, error) {
	var rows []methodRevenue
	err := r.DB.WithContext(ctx).Model(&domain.Order{}).
		Select("payment_method, COALESCE(SUM(total_price), 0) AS revenue").
		Where("is_paid = ? AND order_status <> ?", true, domain.OrderCancelled).
		Group("payment_method").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to sum revenue by payment method: %w", err)
	}

	out := make(map[domain.PaymentMethod]float64, len(rows))
	for _, row := range rows {
		out[row.PaymentMethod] = row.Revenue
	}
	return out, nil
}

type financeStatusCount struct {
	OrderStatus domain.OrderStatus
	Count       int
}

func (r *FinanceRepository) OrdersByStatus(ctx context.Context) (map[domain.OrderStatus]int, error) {
	var rows []financeStatusCount
	err := r.DB.WithContext(ctx).Model(&domain.Order{}).
		Select("order_status, COUNT(*) AS count").
		Group("order_status").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count orders by status: %w", err)
	}

	out := make(map[domain.OrderStatus]int, len(domain.OrderStatuses))
	for _, st := range domain.OrderStatuses {
		out[st] = 0
	}
	for _, row := range rows {
		out[row.OrderStatus] = row.Count
	}
	return out, nil
}

// TopProducts ranks products by revenue from paid, not cancelled orders.
func (r *FinanceRepository) TopProducts(ctx context.Context, limit int) ([]domain.ProductRevenue, error) {
	var rows []domain.ProductRevenue
	err := r.DB.WithContext(ctx).Table("order_items AS oi").
		Select("oi.product_id, MAX(oi.name) AS name, SUM(oi.quantity) AS quantity, SUM(oi.quantity * oi.price) AS revenue").
		Joins("JOIN orders o ON o.id = oi.order_id").
		Where("o.is_paid = ? AND o.order_status <> ?", true, domain.OrderCancelled).
		Group("oi.product_id").
		Order("revenue DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to rank products: %w", err)
	}
	return rows, nil
}

type monthRow struct {
	Month   int
	Revenue float64
	Orders  int
}

// Monthly returns per month revenue and order counts for the calendar year, only for
// months that have orders.
func (r *FinanceRepository) Monthly(ctx context.Context, year int) (map[int]domain.MonthlyFinance, error) {
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(1, 0, 0)

	var rows []monthRow
	err := r.DB.WithContext(ctx).Model(&domain.Order{}).
		Select(`CAST(EXTRACT(MONTH FROM created_at) AS INTEGER) AS month,
			COALESCE(SUM(total_price) FILTER (WHERE is_paid AND order_status <> ?), 0) AS revenue,
			COUNT(*) AS orders`, domain.OrderCancelled).
		Where("created_at >= ? AND created_at < ?", from, to).
		Group("month").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate monthly finance: %w", err)
	}

	out := make(map[int]domain.MonthlyFinance, len(rows))
	for _, row := range rows {
		out[row.Month] = domain.MonthlyFinance{Month: row.Month, Revenue: row.Revenue, Orders: row.Orders}
	}
	return out, nil
}
