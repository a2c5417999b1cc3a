package models

import (
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// Product is a catalog entry. The cart/order subsystem treats products as
// read-only reference data: carts point at them by ID and orders copy the
// fields they need at checkout time.
type Product struct {
	ID          bson.ObjectID `json:"id" bson:"_id,omitempty"`
	Title       string        `json:"title" bson:"title" validate:"required,min=2,max=200"`
	Description string        `json:"description" bson:"description" validate:"max=2000"`
	Price       float64       `json:"price" bson:"price" validate:"gte=0"`
	Categories  []string      `json:"categories" bson:"categories"`
	Image       string        `json:"image" bson:"image"`
	InStock     bool          `json:"inStock" bson:"in_stock"`
	Size        []string      `json:"size" bson:"size" validate:"dive,oneof=S M L XL"`
	Color       []string      `json:"color" bson:"color"`
	CreatedAt   time.Time     `json:"createdAt" bson:"created_at"`
	UpdatedAt   time.Time     `json:"updatedAt" bson:"updated_at"`
}

// UnitPrice returns the price as a decimal for money arithmetic.
func (p *Product) UnitPrice() decimal.Decimal {
	return decimal.NewFromFloat(p.Price)
}

func (p *Product) HasCategory(category string) bool {
	for _, c := range p.Categories {
		if c == category {
			return true
		}
	}
	return false
}

func (p *Product) SetTimestamps() {
	now := time.Now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
}

// ProductFilter narrows a catalog listing. Zero value matches everything.
type ProductFilter struct {
	Category    string
	NewArrivals bool
}

// NewArrivalWindow bounds the "new" filter: products created within this
// window count as new arrivals.
const NewArrivalWindow = 30 * 24 * time.Hour
