//go:build integration

package postgres

import (
	"context"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"garmentFactory/domain"
	"garmentFactory/pkg/database"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	pg "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newTestDB migrates a throwaway schema on TEST_DATABASE_DSN and drops it afterwards.
// Run with: TEST_DATABASE_DSN="host=localhost user=postgres password=postgres dbname=postgres sslmode=disable" go test -tags integration ./internal/repository/postgres/
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("TEST_DATABASE_DSN not set")
	}

	admin, err := gorm.Open(pg.Open(dsn), &gorm.Config{Logger: gormlogger.Discard})
	require.NoError(t, err)

	schema := "it_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	require.NoError(t, admin.Exec("CREATE SCHEMA "+schema).Error)

	db, err := gorm.Open(pg.Open(withSearchPath(dsn, schema)), &gorm.Config{
		Logger:         gormlogger.Discard,
		TranslateError: true,
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
		admin.Exec("DROP SCHEMA " + schema + " CASCADE")
		if sqlDB, err := admin.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	require.NoError(t, database.AutoMigrate(db))
	return db
}

func withSearchPath(dsn, schema string) string {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		return dsn + sep + "search_path=" + schema
	}
	return dsn + " search_path=" + schema
}

func seedProduct(t *testing.T, db *gorm.DB, name string, quantity int) domain.Product {
	t.Helper()
	p := domain.Product{Name: name, Price: 25, Quantity: quantity, Category: domain.CategoryProduct}
	require.NoError(t, db.Create(&p).Error)
	return p
}

func stockOf(t *testing.T, db *gorm.DB, id uint) int {
	t.Helper()
	var p domain.Product
	require.NoError(t, db.First(&p, id).Error)
	return p.Quantity
}

func newOrder(userID uint, items ...domain.OrderItem) *domain.Order {
	return &domain.Order{
		UserID:        userID,
		OrderItems:    items,
		PaymentMethod: domain.PaymentOnline,
		OrderStatus:   domain.OrderPending,
		ItemsPrice:    50,
		TotalPrice:    67.5,
	}
}

func TestOrdersRepository_CreateReservesStock(t *testing.T) {
	db := newTestDB(t)
	repo := NewOrdersRepository(db)
	ctx := context.Background()

	shirt := seedProduct(t, db, "Shirt", 5)
	denim := seedProduct(t, db, "Denim", 3)

	order := newOrder(1,
		domain.OrderItem{ProductID: shirt.ID, Name: shirt.Name, Quantity: 2, Price: 25},
		domain.OrderItem{ProductID: denim.ID, Name: denim.Name, Quantity: 3, Price: 25},
	)
	require.NoError(t, repo.Create(ctx, order))
	require.NotZero(t, order.ID)

	assert.Equal(t, 3, stockOf(t, db, shirt.ID))
	assert.Equal(t, 0, stockOf(t, db, denim.ID))

	stored, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Len(t, stored.OrderItems, 2)
	assert.Equal(t, domain.OrderPending, stored.OrderStatus)
}

func TestOrdersRepository_CreateOutOfStockRollsBack(t *testing.T) {
	db := newTestDB(t)
	repo := NewOrdersRepository(db)
	ctx := context.Background()

	shirt := seedProduct(t, db, "Shirt", 5)
	denim := seedProduct(t, db, "Denim", 1)

	err := repo.Create(ctx, newOrder(1,
		domain.OrderItem{ProductID: shirt.ID, Name: shirt.Name, Quantity: 2},
		domain.OrderItem{ProductID: denim.ID, Name: denim.Name, Quantity: 4},
	))
	assert.ErrorIs(t, err, domain.ErrOutOfStock)

	assert.Equal(t, 5, stockOf(t, db, shirt.ID))
	assert.Equal(t, 1, stockOf(t, db, denim.ID))

	var orders, items int64
	require.NoError(t, db.Model(&domain.Order{}).Count(&orders).Error)
	require.NoError(t, db.Model(&domain.OrderItem{}).Count(&items).Error)
	assert.Zero(t, orders)
	assert.Zero(t, items)
}

func TestOrdersRepository_ConcurrentOrdersNeverOversell(t *testing.T) {
	db := newTestDB(t)
	repo := NewOrdersRepository(db)
	ctx := context.Background()

	fabric := seedProduct(t, db, "Linen", 3)

	var (
		wg       sync.WaitGroup
		placed   atomic.Int32
		rejected atomic.Int32
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(user uint) {
			defer wg.Done()
			err := repo.Create(ctx, newOrder(user, domain.OrderItem{ProductID: fabric.ID, Name: fabric.Name, Quantity: 1}))
			switch {
			case err == nil:
				placed.Add(1)
			case assert.ErrorIs(t, err, domain.ErrOutOfStock):
				rejected.Add(1)
			}
		}(uint(i + 1))
	}
	wg.Wait()

	assert.Equal(t, int32(3), placed.Load())
	assert.Equal(t, int32(5), rejected.Load())
	assert.Equal(t, 0, stockOf(t, db, fabric.ID))
}

func TestOrdersRepository_CancelRestocksOnce(t *testing.T) {
	db := newTestDB(t)
	repo := NewOrdersRepository(db)
	ctx := context.Background()

	shirt := seedProduct(t, db, "Shirt", 4)
	order := newOrder(2, domain.OrderItem{ProductID: shirt.ID, Name: shirt.Name, Quantity: 3})
	require.NoError(t, repo.Create(ctx, order))
	require.Equal(t, 1, stockOf(t, db, shirt.ID))

	stored, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	require.NoError(t, repo.Cancel(ctx, stored))

	assert.Equal(t, 4, stockOf(t, db, shirt.ID))
	cancelled, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderCancelled, cancelled.OrderStatus)

	// a second cancel built from the stale Pending copy must not restock again
	assert.ErrorIs(t, repo.Cancel(ctx, stored), domain.ErrConflict)
	assert.Equal(t, 4, stockOf(t, db, shirt.ID))
}

func TestOrdersRepository_UpdateStatusCompareAndSet(t *testing.T) {
	db := newTestDB(t)
	repo := NewOrdersRepository(db)
	ctx := context.Background()

	shirt := seedProduct(t, db, "Shirt", 4)
	order := newOrder(2, domain.OrderItem{ProductID: shirt.ID, Name: shirt.Name, Quantity: 1})
	require.NoError(t, repo.Create(ctx, order))

	require.NoError(t, repo.UpdateStatus(ctx, order.ID, domain.OrderPending, domain.OrderProcessing, nil))
	assert.ErrorIs(t, repo.UpdateStatus(ctx, order.ID, domain.OrderPending, domain.OrderCancelled, nil), domain.ErrConflict)

	deliveredAt := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, repo.UpdateStatus(ctx, order.ID, domain.OrderProcessing, domain.OrderShipped, nil))
	require.NoError(t, repo.UpdateStatus(ctx, order.ID, domain.OrderShipped, domain.OrderDelivered, map[string]any{
		"is_delivered": true,
		"delivered_at": deliveredAt,
	}))

	stored, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderDelivered, stored.OrderStatus)
	assert.True(t, stored.IsDelivered)
	require.NotNil(t, stored.DeliveredAt)
	assert.True(t, deliveredAt.Equal(stored.DeliveredAt.UTC()))

	assert.ErrorIs(t, repo.UpdateStatus(ctx, 9999, domain.OrderPending, domain.OrderProcessing, nil), domain.ErrConflict)
}

func TestOrdersRepository_MarkPaidOnce(t *testing.T) {
	db := newTestDB(t)
	repo := NewOrdersRepository(db)
	ctx := context.Background()

	shirt := seedProduct(t, db, "Shirt", 4)
	order := newOrder(2, domain.OrderItem{ProductID: shirt.ID, Name: shirt.Name, Quantity: 1})
	require.NoError(t, repo.Create(ctx, order))

	first := domain.PaymentResult{TransactionID: "inv-1", Status: "PAID", UpdateTime: "2024-05-02T08:30:00Z", EmailAddress: "ana@factory.test"}
	require.NoError(t, repo.MarkPaid(ctx, order.ID, first, time.Now()))

	second := domain.PaymentResult{TransactionID: "inv-2", Status: "PAID"}
	assert.ErrorIs(t, repo.MarkPaid(ctx, order.ID, second, time.Now()), domain.ErrConflict)

	stored, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsPaid)
	assert.NotNil(t, stored.PaidAt)
	assert.Equal(t, first, stored.PaymentResult)
}

func TestOrdersRepository_ListAndStatistics(t *testing.T) {
	db := newTestDB(t)
	repo := NewOrdersRepository(db)
	ctx := context.Background()

	shirt := seedProduct(t, db, "Shirt", 50)
	place := func(user uint) uint {
		o := newOrder(user, domain.OrderItem{ProductID: shirt.ID, Name: shirt.Name, Quantity: 1})
		require.NoError(t, repo.Create(ctx, o))
		return o.ID
	}

	paid := place(1)
	require.NoError(t, repo.MarkPaid(ctx, paid, domain.PaymentResult{TransactionID: "a"}, time.Now()))
	paidThenCancelled := place(1)
	require.NoError(t, repo.MarkPaid(ctx, paidThenCancelled, domain.PaymentResult{TransactionID: "b"}, time.Now()))
	require.NoError(t, repo.UpdateStatus(ctx, paidThenCancelled, domain.OrderPending, domain.OrderCancelled, nil))
	place(1)
	place(2)

	all, err := repo.Statistics(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(4), all.TotalOrders)
	assert.Equal(t, int64(2), all.PaidOrders)
	assert.Equal(t, int64(2), all.UnpaidOrders)
	assert.Equal(t, int64(3), all.ByStatus[domain.OrderPending])
	assert.Equal(t, int64(1), all.ByStatus[domain.OrderCancelled])
	assert.Equal(t, int64(0), all.ByStatus[domain.OrderShipped])
	assert.InDelta(t, 67.5, all.TotalRevenue, 0.001)

	mine, err := repo.Statistics(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(1), mine.TotalOrders)
	assert.Zero(t, mine.TotalRevenue)

	isPaid := false
	orders, total, err := repo.List(ctx, domain.OrderFilter{UserID: 1, IsPaid: &isPaid})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, orders, 1)
	assert.Len(t, orders[0].OrderItems, 1)

	orders, total, err = repo.List(ctx, domain.OrderFilter{Limit: 3, Page: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
	assert.Len(t, orders, 1)
}

func TestUserRepository_DuplicateEmailAndSoftDelete(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	ana := &domain.User{Name: "Ana", Email: " Ana@Factory.test ", Password: "hash", Role: domain.RoleSales}
	require.NoError(t, repo.Create(ctx, ana))
	assert.Equal(t, "ana@factory.test", ana.Email)

	err := repo.Create(ctx, &domain.User{Name: "Other", Email: "ana@factory.test", Password: "hash"})
	assert.ErrorIs(t, err, domain.ErrConflict)

	require.NoError(t, repo.UpdateRole(ctx, ana.ID, domain.RoleFinance))
	found, err := repo.FindByEmail(ctx, "ANA@factory.test")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleFinance, found.Role)

	require.NoError(t, repo.Delete(ctx, ana.ID))
	_, err = repo.FindByID(ctx, ana.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, ana.ID), domain.ErrNotFound)
}
