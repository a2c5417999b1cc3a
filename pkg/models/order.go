package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// Order statuses. Payment collection itself is an external collaborator;
// the field exists so its webhook can drive transitions.
const (
	OrderStatusCreated = "created"
	OrderStatusPaid    = "paid"
	OrderStatusFailed  = "failed"
)

// AmountTolerance is the largest difference allowed between a
// client-supplied amount and the server-recomputed cart total. Prices have
// cent precision, so one cent absorbs client-side float rounding without
// opening room for tampering.
var AmountTolerance = decimal.NewFromFloat(0.01)

// OrderItem is a frozen copy of a line item at checkout time. Unlike a
// CartItem it owns the title and price it was bought at, so later catalog
// changes never rewrite order history.
type OrderItem struct {
	ProductID bson.ObjectID `json:"productID" bson:"product_id"`
	Title     string        `json:"title" bson:"title"`
	Price     float64       `json:"price" bson:"price"`
	Quantity  int           `json:"quantity" bson:"quantity"`
}

type Order struct {
	ID        bson.ObjectID `json:"id" bson:"_id,omitempty"`
	Number    string        `json:"number" bson:"number"`
	UserID    bson.ObjectID `json:"userID" bson:"user_id"`
	Items     []OrderItem   `json:"products" bson:"items"`
	Amount    float64       `json:"amount" bson:"amount"`
	Address   string        `json:"address" bson:"address"`
	Status    string        `json:"status" bson:"status"`
	CreatedAt time.Time     `json:"createdAt" bson:"created_at"`
}

func GenerateOrderNumber() string {
	return fmt.Sprintf("ORD-%s", uuid.NewString()[:8])
}

// SnapshotItems freezes cart line items against the given product set,
// capturing title and price at this instant. Every referenced product must
// be present; a missing one is ErrNotFound.
func SnapshotItems(items []CartItem, products map[bson.ObjectID]*Product) ([]OrderItem, error) {
	snapshot := make([]OrderItem, 0, len(items))
	for _, item := range items {
		product, ok := products[item.ProductID]
		if !ok {
			return nil, fmt.Errorf("product %s: %w", item.ProductID.Hex(), ErrNotFound)
		}
		snapshot = append(snapshot, OrderItem{
			ProductID: item.ProductID,
			Title:     product.Title,
			Price:     product.Price,
			Quantity:  item.Quantity,
		})
	}
	return snapshot, nil
}

// OrderTotal sums price x quantity over the snapshot in decimal space.
func OrderTotal(items []OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		line := decimal.NewFromFloat(item.Price).Mul(decimal.NewFromInt(int64(item.Quantity)))
		total = total.Add(line)
	}
	return total
}

// AmountMatches reports whether a client-supplied amount agrees with the
// recomputed total within AmountTolerance. The server never trusts the
// client figure; it only accepts it once recomputation confirms it.
func AmountMatches(total decimal.Decimal, amount float64) bool {
	diff := total.Sub(decimal.NewFromFloat(amount)).Abs()
	return diff.LessThanOrEqual(AmountTolerance)
}

type CreateOrderRequest struct {
	Products []CartItemRequest `json:"products"`
	Amount   float64           `json:"amount" binding:"required,gt=0"`
	Address  string            `json:"address" binding:"required"`
}
