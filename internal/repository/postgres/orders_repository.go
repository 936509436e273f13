package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"garmentFactory/domain"

	"gorm.io/gorm"
)

type OrdersRepository struct {
	DB *gorm.DB
}

func NewOrdersRepository(db *gorm.DB) *OrdersRepository {
	return &OrdersRepository{
		DB: db,
	}
}

// Create inserts the order with its items and takes the ordered quantities out of stock
// in one transaction. A product without enough stock aborts the whole order.
func (r *OrdersRepository) Create(ctx context.Context, order *domain.Order) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, item := range order.OrderItems {
			res := tx.Model(&domain.Product{}).
				Where("id = ? AND quantity >= ?", item.ProductID, item.Quantity).
				Update("quantity", gorm.Expr("quantity - ?", item.Quantity))
			if res.Error != nil {
				return fmt.Errorf("failed to reserve stock: %w", res.Error)
			}
			if res.RowsAffected == 0 {
				return fmt.Errorf("%w: %s", domain.ErrOutOfStock, item.Name)
			}
		}

		if err := tx.Create(order).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		return nil
	})
}

func (r *OrdersRepository) FindByID(ctx context.Context, id uint) (domain.Order, error) {
	var order domain.Order

	err := r.DB.WithContext(ctx).Preload("OrderItems").First(&order, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Order{}, fmt.Errorf("order %d: %w", id, domain.ErrNotFound)
		}
		return domain.Order{}, fmt.Errorf("failed to find order: %w", err)
	}

	return order, nil
}

func (r *OrdersRepository) applyFilter(q *gorm.DB, filter domain.OrderFilter) *gorm.DB {
	if filter.Status != "" {
		q = q.Where("order_status = ?", filter.Status)
	}
	if filter.UserID != 0 {
		q = q.Where("user_id = ?", filter.UserID)
	}
	if filter.IsPaid != nil {
		q = q.Where("is_paid = ?", *filter.IsPaid)
	}
	return q
}

// List returns one page of orders, newest first, and the total matching count.
func (r *OrdersRepository) List(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, int64, error) {
	filter = filter.Normalize()

	var total int64
	if err := r.applyFilter(r.DB.WithContext(ctx).Model(&domain.Order{}), filter).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	var orders []domain.Order
	err := r.applyFilter(r.DB.WithContext(ctx), filter).
		Preload("OrderItems").
		Order("created_at DESC").
		Limit(filter.Limit).
		Offset(filter.Offset()).
		Find(&orders).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find orders: %w", err)
	}

	return orders, total, nil
}

// UpdateStatus moves the order from one status to another. The update only applies if
// the stored status is still from, so two concurrent changes cannot both win.
func (r *OrdersRepository) UpdateStatus(ctx context.Context, id uint, from, to domain.OrderStatus, extra map[string]any) error {
	updates := map[string]any{"order_status": to, "updated_at": time.Now()}
	for k, v := range extra {
		updates[k] = v
	}

	res := r.DB.WithContext(ctx).Model(&domain.Order{}).
		Where("id = ? AND order_status = ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("failed to update order status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("order %d is no longer %s: %w", id, from, domain.ErrConflict)
	}

	return nil
}

// Cancel marks the order cancelled and puts its items back in stock.
func (r *OrdersRepository) Cancel(ctx context.Context, order domain.Order) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&domain.Order{}).
			Where("id = ? AND order_status = ?", order.ID, order.OrderStatus).
			Updates(map[string]any{"order_status": domain.OrderCancelled, "updated_at": time.Now()})
		if res.Error != nil {
			return fmt.Errorf("failed to cancel order: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("order %d is no longer %s: %w", order.ID, order.OrderStatus, domain.ErrConflict)
		}

		for _, item := range order.OrderItems {
			err := tx.Model(&domain.Product{}).
				Where("id = ?", item.ProductID).
				Update("quantity", gorm.Expr("quantity + ?", item.Quantity)).Error
			if err != nil {
				return fmt.Errorf("failed to restock product %d: %w", item.ProductID, err)
			}
		}

		return nil
	})
}

// MarkPaid records the payment result. Already paid orders are left untouched.
func (r *OrdersRepository) MarkPaid(ctx context.Context, id uint, result domain.PaymentResult, paidAt time.Time) error {
	res := r.DB.WithContext(ctx).Model(&domain.Order{}).
		Where("id = ? AND is_paid = ?", id, false).
		Updates(map[string]any{
			"is_paid":                true,
			"paid_at":                paidAt,
			"payment_transaction_id": result.TransactionID,
			"payment_status":         result.Status,
			"payment_update_time":    result.UpdateTime,
			"payment_email_address":  result.EmailAddress,
			"updated_at":             time.Now(),
		})
	if res.Error != nil {
		return fmt.Errorf("failed to mark order paid: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("order %d already paid: %w", id, domain.ErrConflict)
	}

	return nil
}

type statusCount struct {
	OrderStatus domain.OrderStatus
	Count       int64
}

// Statistics aggregates every order, or only one user's when userID is not zero.
func (r *OrdersRepository) Statistics(ctx context.Context, userID uint) (domain.OrderStatistics, error) {
	scoped := func() *gorm.DB {
		q := r.DB.WithContext(ctx).Model(&domain.Order{})
		if userID != 0 {
			q = q.Where("user_id = ?", userID)
		}
		return q
	}

	var counts []statusCount
	if err := scoped().Select("order_status, COUNT(*) AS count").Group("order_status").Scan(&counts).Error; err != nil {
		return domain.OrderStatistics{}, fmt.Errorf("failed to count orders by status: %w", err)
	}

	stats := domain.OrderStatistics{ByStatus: make(map[domain.OrderStatus]int64, len(domain.OrderStatuses))}
	for _, st := range domain.OrderStatuses {
		stats.ByStatus[st] = 0
	}
	for _, c := range counts {
		stats.ByStatus[c.OrderStatus] = c.Count
		stats.TotalOrders += c.Count
	}

	if err := scoped().Where("is_paid = ?", true).Count(&stats.PaidOrders).Error; err != nil {
		return domain.OrderStatistics{}, fmt.Errorf("failed to count paid orders: %w", err)
	}
	stats.UnpaidOrders = stats.TotalOrders - stats.PaidOrders

	var revenue float64
	err := scoped().
		Where("is_paid = ? AND order_status <> ?", true, domain.OrderCancelled).
		Select("COALESCE(SUM(total_price), 0)").
		Scan(&revenue).Error
	if err != nil {
		return domain.OrderStatistics{}, fmt.Errorf("failed to sum revenue: %w", err)
	}
	stats.TotalRevenue = revenue

	return stats, nil
}
