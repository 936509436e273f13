package orders

import (
	"garmentFactory/domain"

	"github.com/shopspring/decimal"
)

var (
	freeShippingThreshold = decimal.NewFromInt(100)
	flatShipping          = decimal.NewFromInt(10)
	taxRate               = decimal.NewFromFloat(0.15)
)

type Prices struct {
	Items    float64
	Shipping float64
	Tax      float64
	Total    float64
}

// CalculatePrices computes the price breakdown of an order. Shipping is free from 100
// upwards, tax is 15% of the items, and every amount is rounded to cents.
func CalculatePrices(items []domain.OrderItem) Prices {
	itemsTotal := decimal.Zero
	for _, it := range items {
		itemsTotal = itemsTotal.Add(decimal.NewFromFloat(it.Price).Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	itemsTotal = itemsTotal.Round(2)

	shipping := flatShipping
	if itemsTotal.GreaterThanOrEqual(freeShippingThreshold) {
		shipping = decimal.Zero
	}

	tax := itemsTotal.Mul(taxRate).Round(2)
	total := itemsTotal.Add(shipping).Add(tax).Round(2)

	return Prices{
		Items:    itemsTotal.InexactFloat64(),
		Shipping: shipping.InexactFloat64(),
		Tax:      tax.InexactFloat64(),
		Total:    total.InexactFloat64(),
	}
}
