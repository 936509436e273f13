package finance

import (
	"context"
	"time"

	"garmentFactory/domain"
	"garmentFactory/pkg/logger"

	"github.com/shopspring/decimal"
)

type FinanceRepository interface {
	OrderTotals(ctx context.Context) (domain.OrderTotals, error)
	RevenueByPaymentMethod(ctx context.Context) (map[domain.PaymentMethod]float64, error)
	OrdersByStatus(ctx context.Context) (map[domain.OrderStatus]int, error)
	TopProducts(ctx context.Context, limit int) ([]domain.ProductRevenue, error)
	Monthly(ctx context.Context, year int) (map[int]domain.MonthlyFinance, error)
}

type StockCounter interface {
	CountLowStock(ctx context.Context, threshold int) (int64, error)
}

const topProductsLimit = 5

type FinanceService struct {
	financeRepo       FinanceRepository
	stock             StockCounter
	lowStockThreshold int
	now               func() time.Time
}

func NewFinanceService(financeRepo FinanceRepository, stock StockCounter, lowStockThreshold int) *FinanceService {
	return &FinanceService{
		financeRepo:       financeRepo,
		stock:             stock,
		lowStockThreshold: lowStockThreshold,
		now:               time.Now,
	}
}

func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

func (s *FinanceService) KPIs(ctx context.Context) (domain.FinanceKPIs, error) {
	totals, err := s.financeRepo.OrderTotals(ctx)
	if err != nil {
		logger.Error("Failed to load order totals", err)
		return domain.FinanceKPIs{}, err
	}

	lowStock, err := s.stock.CountLowStock(ctx, s.lowStockThreshold)
	if err != nil {
		logger.Error("Failed to count low stock products", err)
		return domain.FinanceKPIs{}, err
	}

	kpis := domain.FinanceKPIs{
		TotalRevenue:         round2(totals.Revenue),
		TotalOrders:          int(totals.TotalOrders),
		PaidOrders:           int(totals.PaidOrders),
		PendingPaymentAmount: round2(totals.PendingPaymentAmount),
		CancelledOrders:      int(totals.CancelledOrders),
		LowStockProducts:     int(lowStock),
	}

	// average over paid orders, which are the ones carrying revenue
	if totals.PaidOrders > 0 {
		kpis.AverageOrderValue = decimal.NewFromFloat(totals.Revenue).
			Div(decimal.NewFromInt(totals.PaidOrders)).
			Round(2).
			InexactFloat64()
	}

	return kpis, nil
}

func (s *FinanceService) Summary(ctx context.Context) (domain.FinanceSummary, error) {
	byMethod, err := s.financeRepo.RevenueByPaymentMethod(ctx)
	if err != nil {
		logger.Error("Failed to load revenue by payment method", err)
		return domain.FinanceSummary{}, err
	}

	byStatus, err := s.financeRepo.OrdersByStatus(ctx)
	if err != nil {
		logger.Error("Failed to load orders by status", err)
		return domain.FinanceSummary{}, err
	}

	top, err := s.financeRepo.TopProducts(ctx, topProductsLimit)
	if err != nil {
		logger.Error("Failed to load top products", err)
		return domain.FinanceSummary{}, err
	}

	for m, v := range byMethod {
		byMethod[m] = round2(v)
	}
	for i := range top {
		top[i].Revenue = round2(top[i].Revenue)
	}
	if top == nil {
		top = []domain.ProductRevenue{}
	}

	return domain.FinanceSummary{
		RevenueByPaymentMethod: byMethod,
		OrdersByStatus:         byStatus,
		TopProducts:            top,
	}, nil
}

// Monthly always returns twelve buckets, January first. Zero or negative years mean
// the current year.
func (s *FinanceService) Monthly(ctx context.Context, year int) (domain.FinanceMonthly, error) {
	if year <= 0 {
		year = s.now().Year()
	}

	rows, err := s.financeRepo.Monthly(ctx, year)
	if err != nil {
		logger.Error("Failed to load monthly finance", err)
		return domain.FinanceMonthly{}, err
	}

	months := make([]domain.MonthlyFinance, 12)
	for i := range months {
		m := i + 1
		row := rows[m]
		months[i] = domain.MonthlyFinance{
			Month:   m,
			Label:   time.Month(m).String()[:3],
			Revenue: round2(row.Revenue),
			Orders:  row.Orders,
		}
	}

	return domain.FinanceMonthly{Year: year, Months: months}, nil
}
