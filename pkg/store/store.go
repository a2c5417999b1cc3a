// Package store defines the persistence contracts for the storefront.
// pkg/mongo implements them against the document database; the in-memory
// implementation in this package backs tests and local experiments with
// the same semantics, including per-user cart serialization and atomic
// checkout.
package store

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/outfitly/storefront-api/pkg/models"
)

// Catalog holds product records. Listings are offset-paginated with a
// stable creation-time ordering so pages are reproducible.
type Catalog interface {
	ListProducts(ctx context.Context, filter models.ProductFilter, page, pageSize int) ([]models.Product, int64, error)
	GetProduct(ctx context.Context, id bson.ObjectID) (*models.Product, error)
	ListCategories(ctx context.Context) ([]string, error)
	CreateProducts(ctx context.Context, products []*models.Product) error
}

// Carts holds one cart per user. All mutations for a given user are
// serialized by the implementation, so concurrent read-modify-write cycles
// never lose updates.
type Carts interface {
	// CreateCart fails with ErrDuplicateCart when the user already has one.
	CreateCart(ctx context.Context, userID bson.ObjectID, items []models.CartItem) (*models.Cart, error)
	// GetCart fails with ErrNotFound when no cart exists for the user.
	GetCart(ctx context.Context, userID bson.ObjectID) (*models.Cart, error)
	// ReplaceItems overwrites the whole line-item set.
	ReplaceItems(ctx context.Context, userID bson.ObjectID, items []models.CartItem) (*models.Cart, error)
	// PatchItem upserts one line's quantity; zero removes it.
	PatchItem(ctx context.Context, userID bson.ObjectID, productID bson.ObjectID, quantity int) (*models.Cart, error)
	// ClearCart empties the line-item set but keeps the cart entity.
	ClearCart(ctx context.Context, userID bson.ObjectID) (*models.Cart, error)
}

// Orders holds immutable checkout snapshots.
type Orders interface {
	// CreateFromCart recomputes the cart total from live catalog prices,
	// rejects an empty cart (ErrEmptyCart) or a non-matching amount
	// (ErrAmountMismatch), then persists the order and clears the source
	// cart in one atomic step: neither write is visible without the other.
	CreateFromCart(ctx context.Context, userID bson.ObjectID, amount float64, address string) (*models.Order, error)
	// GetOrder enforces ownership: a requester who does not own the order
	// gets ErrForbidden.
	GetOrder(ctx context.Context, orderID, requestingUserID bson.ObjectID) (*models.Order, error)
	// ListOrders returns the user's orders newest first.
	ListOrders(ctx context.Context, userID bson.ObjectID) ([]models.Order, error)
}

type Users interface {
	// CreateUser fails with ErrDuplicateEmail when the email is taken.
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id bson.ObjectID) (*models.User, error)
}

// Stores bundles the four contracts for handler wiring.
type Stores struct {
	Catalog Catalog
	Carts   Carts
	Orders  Orders
	Users   Users
}
