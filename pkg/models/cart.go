package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// CartItem is a line item: a reference to a product plus a quantity. It
// never carries product details; those are joined in at read time so an
// open cart always shows live catalog data.
type CartItem struct {
	ProductID bson.ObjectID `json:"productID" bson:"product_id"`
	Quantity  int           `json:"quantity" bson:"quantity"`
}

// Cart holds at most one document per user. Version is the optimistic
// concurrency token: every write filters on the version it read and bumps
// it, so concurrent read-modify-write cycles cannot silently drop updates.
type Cart struct {
	ID        bson.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID    bson.ObjectID `json:"userID" bson:"user_id"`
	Items     []CartItem    `json:"products" bson:"items"`
	Version   int64         `json:"-" bson:"version"`
	CreatedAt time.Time     `json:"createdAt" bson:"created_at"`
	UpdatedAt time.Time     `json:"updatedAt" bson:"updated_at"`
}

func (c *Cart) IsEmpty() bool { return len(c.Items) == 0 }

func (c *Cart) SetTimestamps() {
	now := time.Now()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now
}

// NormalizeItems collapses an incoming line-item list into the canonical
// form stored on a cart: duplicate product entries merge by summing their
// quantities, zero-quantity lines are dropped (quantity 0 means absence),
// and any negative quantity rejects the whole list. First-seen order is
// preserved so listings stay stable.
func NormalizeItems(items []CartItem) ([]CartItem, error) {
	normalized := make([]CartItem, 0, len(items))
	index := make(map[bson.ObjectID]int, len(items))
	for _, item := range items {
		if item.Quantity < 0 {
			return nil, ErrInvalidQuantity
		}
		if i, ok := index[item.ProductID]; ok {
			normalized[i].Quantity += item.Quantity
			continue
		}
		index[item.ProductID] = len(normalized)
		normalized = append(normalized, item)
	}
	out := normalized[:0]
	for _, item := range normalized {
		if item.Quantity > 0 {
			out = append(out, item)
		}
	}
	return out, nil
}

// PatchItems applies a single-item quantity patch. Quantity sets, it does
// not add: patching an existing line replaces its quantity. Quantity 0
// removes the line, and removing an absent line is a no-op (the client
// contract spells "remove" as "patch to zero", so that conflation is kept
// deliberately). Negative quantities are rejected.
func PatchItems(items []CartItem, productID bson.ObjectID, quantity int) ([]CartItem, error) {
	if quantity < 0 {
		return nil, ErrInvalidQuantity
	}
	out := make([]CartItem, 0, len(items)+1)
	patched := false
	for _, item := range items {
		if item.ProductID == productID {
			patched = true
			if quantity > 0 {
				out = append(out, CartItem{ProductID: productID, Quantity: quantity})
			}
			continue
		}
		out = append(out, item)
	}
	if !patched && quantity > 0 {
		out = append(out, CartItem{ProductID: productID, Quantity: quantity})
	}
	return out, nil
}

// CartLine is a line item joined with live product data, the shape the
// storefront renders while a cart is open.
type CartLine struct {
	ProductID bson.ObjectID `json:"id"`
	Title     string        `json:"title"`
	Price     float64       `json:"price"`
	Image     string        `json:"image"`
	Quantity  int           `json:"quantity"`
}

// CartView is the read model returned by cart GETs: the cart plus its
// read-time join against the catalog.
type CartView struct {
	ID        bson.ObjectID `json:"id"`
	UserID    bson.ObjectID `json:"userID"`
	Products  []CartLine    `json:"products"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

type CartItemRequest struct {
	ProductID string `json:"productID" binding:"required"`
	Quantity  int    `json:"quantity"`
}

type CreateCartRequest struct {
	Products []CartItemRequest `json:"products"`
}

type ReplaceCartRequest struct {
	Products []CartItemRequest `json:"products" binding:"required"`
}

// PatchCartRequest uses a pointer for quantity so an explicit zero (the
// remove spelling) survives binding.
type PatchCartRequest struct {
	ProductID string `json:"productID" binding:"required"`
	Quantity  *int   `json:"quantity" binding:"required"`
}
