package domain

import (
	"strings"
	"time"
)

type OrderStatus string

const (
	OrderPending    OrderStatus = "Pending"
	OrderProcessing OrderStatus = "Processing"
	OrderShipped    OrderStatus = "Shipped"
	OrderDelivered  OrderStatus = "Delivered"
	OrderCancelled  OrderStatus = "Cancelled"
)

// OrderStatuses lists every status in lifecycle order.
var OrderStatuses = []OrderStatus{OrderPending, OrderProcessing, OrderShipped, OrderDelivered, OrderCancelled}

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderPending:    {OrderProcessing, OrderCancelled},
	OrderProcessing: {OrderShipped, OrderCancelled},
	OrderShipped:    {OrderDelivered},
	OrderDelivered:  {},
	OrderCancelled:  {},
}

// ParseOrderStatus matches one of the five statuses, ignoring case and surrounding space.
func ParseOrderStatus(s string) (OrderStatus, bool) {
	s = strings.TrimSpace(s)
	for _, st := range OrderStatuses {
		if strings.EqualFold(string(st), s) {
			return st, true
		}
	}
	return "", false
}

func (s OrderStatus) IsTerminal() bool {
	return s == OrderDelivered || s == OrderCancelled
}

// CanTransitionTo reports whether an order in status s may move to next.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// NextStatuses returns the statuses reachable from s.
func (s OrderStatus) NextStatuses() []OrderStatus {
	return append([]OrderStatus(nil), orderTransitions[s]...)
}

type PaymentMethod string

const (
	PaymentCashOnDelivery PaymentMethod = "Cash on Delivery"
	PaymentBankTransfer   PaymentMethod = "Bank Transfer"
	PaymentOnline         PaymentMethod = "Online"
)

func ParsePaymentMethod(s string) (PaymentMethod, bool) {
	s = strings.TrimSpace(s)
	for _, m := range []PaymentMethod{PaymentCashOnDelivery, PaymentBankTransfer, PaymentOnline} {
		if strings.EqualFold(string(m), s) {
			return m, true
		}
	}
	return "", false
}

type ShippingAddress struct {
	Address    string `gorm:"column:address;type:text" json:"address"`
	City       string `gorm:"column:city;type:text" json:"city"`
	PostalCode string `gorm:"column:postal_code;type:text" json:"postalCode"`
	Country    string `gorm:"column:country;type:text" json:"country"`
	Phone      string `gorm:"column:phone;type:text" json:"phone,omitempty"`
}

type PaymentResult struct {
	TransactionID string `gorm:"column:transaction_id;type:text" json:"id,omitempty"`
	Status        string `gorm:"column:status;type:text" json:"status,omitempty"`
	UpdateTime    string `gorm:"column:update_time;type:text" json:"update_time,omitempty"`
	EmailAddress  string `gorm:"column:email_address;type:text" json:"email_address,omitempty"`
}

type OrderItem struct {
	ID        uint    `gorm:"primaryKey" json:"-"`
	OrderID   uint    `gorm:"column:order_id;index;not null" json:"-"`
	ProductID uint    `gorm:"column:product_id;not null" json:"product"`
	Name      string  `gorm:"column:name;type:text" json:"name"`
	Quantity  int     `gorm:"column:quantity;not null" json:"quantity"`
	Price     float64 `gorm:"column:price;type:numeric" json:"price"`
	Image     string  `gorm:"column:image;type:text" json:"image,omitempty"`
}

func (OrderItem) TableName() string {
	return "order_items"
}

type Order struct {
	ID              uint            `gorm:"primaryKey" json:"_id"`
	UserID          uint            `gorm:"column:user_id;index;not null" json:"user"`
	OrderItems      []OrderItem     `gorm:"foreignKey:OrderID" json:"orderItems"`
	ShippingAddress ShippingAddress `gorm:"embedded;embeddedPrefix:shipping_" json:"shippingAddress"`
	PaymentMethod   PaymentMethod   `gorm:"column:payment_method;type:text" json:"paymentMethod"`
	PaymentResult   PaymentResult   `gorm:"embedded;embeddedPrefix:payment_" json:"paymentResult"`
	ItemsPrice      float64         `gorm:"column:items_price;type:numeric" json:"itemsPrice"`
	ShippingPrice   float64         `gorm:"column:shipping_price;type:numeric" json:"shippingPrice"`
	TaxPrice        float64         `gorm:"column:tax_price;type:numeric" json:"taxPrice"`
	TotalPrice      float64         `gorm:"column:total_price;type:numeric" json:"totalPrice"`
	IsPaid          bool            `gorm:"column:is_paid;default:false" json:"isPaid"`
	PaidAt          *time.Time      `gorm:"column:paid_at" json:"paidAt,omitempty"`
	OrderStatus     OrderStatus     `gorm:"column:order_status;type:text;index;default:Pending" json:"orderStatus"`
	IsDelivered     bool            `gorm:"column:is_delivered;default:false" json:"isDelivered"`
	DeliveredAt     *time.Time      `gorm:"column:delivered_at" json:"deliveredAt,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

func (Order) TableName() string {
	return "orders"
}

// OrderFilter narrows an order listing. Zero fields are not applied.
type OrderFilter struct {
	Status OrderStatus
	UserID uint
	IsPaid *bool
	Page   int
	Limit  int
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Normalize clamps paging to sane values.
func (f OrderFilter) Normalize() OrderFilter {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = DefaultPageSize
	}
	if f.Limit > MaxPageSize {
		f.Limit = MaxPageSize
	}
	return f
}

func (f OrderFilter) Offset() int {
	return (f.Page - 1) * f.Limit
}

type OrderPage struct {
	Orders []Order `json:"orders"`
	Total  int64   `json:"total"`
	Page   int     `json:"page"`
	Pages  int     `json:"pages"`
}

type OrderStatistics struct {
	TotalOrders  int64                 `json:"totalOrders"`
	ByStatus     map[OrderStatus]int64 `json:"byStatus"`
	PaidOrders   int64                 `json:"paidOrders"`
	UnpaidOrders int64                 `json:"unpaidOrders"`
	TotalRevenue float64               `json:"totalRevenue"`
}
