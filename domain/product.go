package domain

import (
	"strings"
	"time"
)

type ProductCategory string

const (
	CategoryProduct ProductCategory = "product"
	CategoryFabric  ProductCategory = "fabric"
)

func ParseProductCategory(s string) (ProductCategory, bool) {
	switch ProductCategory(strings.ToLower(strings.TrimSpace(s))) {
	case CategoryProduct:
		return CategoryProduct, true
	case CategoryFabric:
		return CategoryFabric, true
	}
	return "", false
}

type Product struct {
	ID          uint            `gorm:"primaryKey" json:"_id"`
	Name        string          `gorm:"column:name;type:text;not null" json:"name"`
	Description string          `gorm:"column:description;type:text" json:"description"`
	Price       float64         `gorm:"column:price;type:numeric;not null" json:"price"`
	Quantity    int             `gorm:"column:quantity;not null;default:0" json:"quantity"`
	Category    ProductCategory `gorm:"column:category;type:text;index;not null" json:"category"`
	Color       string          `gorm:"column:color;type:text" json:"color,omitempty"`
	FabricType  string          `gorm:"column:fabric_type;type:text" json:"fabricType,omitempty"`
	Image       string          `gorm:"column:image;type:text" json:"image,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

func (Product) TableName() string {
	return "products"
}

type ProductFilter struct {
	Category ProductCategory
	Search   string
}
