package domain

type FinanceKPIs struct {
	TotalRevenue         float64 `json:"totalRevenue"`
	TotalOrders          int     `json:"totalOrders"`
	PaidOrders           int     `json:"paidOrders"`
	AverageOrderValue    float64 `json:"averageOrderValue"`
	PendingPaymentAmount float64 `json:"pendingPaymentAmount"`
	CancelledOrders      int     `json:"cancelledOrders"`
	LowStockProducts     int     `json:"lowStockProducts"`
}

type ProductRevenue struct {
	ProductID uint    `json:"productId"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	Revenue   float64 `json:"revenue"`
}

type FinanceSummary struct {
	RevenueByPaymentMethod map[PaymentMethod]float64 `json:"revenueByPaymentMethod"`
	OrdersByStatus         map[OrderStatus]int       `json:"ordersByStatus"`
	TopProducts            []ProductRevenue          `json:"topProducts"`
}

type MonthlyFinance struct {
	Month   int     `json:"month"`
	Label   string  `json:"label"`
	Revenue float64 `json:"revenue"`
	Orders  int     `json:"orders"`
}

type FinanceMonthly struct {
	Year   int              `json:"year"`
	Months []MonthlyFinance `json:"months"`
}

// OrderTotals is the raw order aggregate KPIs are derived from.
type OrderTotals struct {
	TotalOrders          int64
	PaidOrders           int64
	CancelledOrders      int64
	Revenue              float64
	PendingPaymentAmount float64
}
