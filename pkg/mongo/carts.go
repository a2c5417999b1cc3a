package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/outfitly/storefront-api/pkg/models"
)

// Cart writes go through a compare-and-swap on the cart's version token:
// the update filters on the version the caller read and bumps it, so a
// concurrent writer makes the swap miss and the read-modify-write cycle is
// retried on fresh state. That serializes all mutations per user without
// holding any lock across the database round trip.
const maxCASRetries = 8

var errVersionConflict = errors.New("cart version conflict")

func (s *Store) CreateCart(ctx context.Context, userID bson.ObjectID, items []models.CartItem) (*models.Cart, error) {
	normalized, err := models.NormalizeItems(items)
	if err != nil {
		return nil, err
	}

	cart := &models.Cart{
		ID:     bson.NewObjectID(),
		UserID: userID,
		Items:  normalized,
	}
	cart.SetTimestamps()

	if _, err := s.collection("carts").InsertOne(ctx, cart); err != nil {
		// The unique index on user_id enforces one cart per user.
		if mongo.IsDuplicateKeyError(err) {
			return nil, models.ErrDuplicateCart
		}
		return nil, models.Storage("carts.insert", err)
	}
	return cart, nil
}

func (s *Store) GetCart(ctx context.Context, userID bson.ObjectID) (*models.Cart, error) {
	var cart models.Cart
	err := s.collection("carts").FindOne(ctx, bson.D{{Key: "user_id", Value: userID}}).Decode(&cart)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrNotFound
		}
		return nil, models.Storage("carts.get", err)
	}
	return &cart, nil
}

func (s *Store) ReplaceItems(ctx context.Context, userID bson.ObjectID, items []models.CartItem) (*models.Cart, error) {
	normalized, err := models.NormalizeItems(items)
	if err != nil {
		return nil, err
	}
	return s.mutateItems(ctx, userID, func([]models.CartItem) ([]models.CartItem, error) {
		return normalized, nil
	})
}

func (s *Store) PatchItem(ctx context.Context, userID bson.ObjectID, productID bson.ObjectID, quantity int) (*models.Cart, error) {
	if quantity < 0 {
		return nil, models.ErrInvalidQuantity
	}
	return s.mutateItems(ctx, userID, func(current []models.CartItem) ([]models.CartItem, error) {
		return models.PatchItems(current, productID, quantity)
	})
}

func (s *Store) ClearCart(ctx context.Context, userID bson.ObjectID) (*models.Cart, error) {
	return s.mutateItems(ctx, userID, func([]models.CartItem) ([]models.CartItem, error) {
		return []models.CartItem{}, nil
	})
}

// mutateItems runs a read-transform-CAS loop until the swap lands or the
// retries are exhausted.
func (s *Store) mutateItems(ctx context.Context, userID bson.ObjectID, transform func([]models.CartItem) ([]models.CartItem, error)) (*models.Cart, error) {
	for attempt := 0; attempt < maxCASRetries; attempt++ {
		cart, err := s.GetCart(ctx, userID)
		if err != nil {
			return nil, err
		}
		items, err := transform(cart.Items)
		if err != nil {
			return nil, err
		}
		updated, err := s.casItems(ctx, userID, cart.Version, items)
		if err == nil {
			return updated, nil
		}
		if !errors.Is(err, errVersionConflict) {
			return nil, err
		}
	}
	return nil, models.Storage("carts.cas", errVersionConflict)
}

func (s *Store) casItems(ctx context.Context, userID bson.ObjectID, version int64, items []models.CartItem) (*models.Cart, error) {
	if items == nil {
		items = []models.CartItem{}
	}
	res := s.collection("carts").FindOneAndUpdate(ctx,
		bson.D{
			{Key: "user_id", Value: userID},
			{Key: "version", Value: version},
		},
		bson.D{
			{Key: "$set", Value: bson.D{
				{Key: "items", Value: items},
				{Key: "updated_at", Value: time.Now()},
			}},
			{Key: "$inc", Value: bson.D{{Key: "version", Value: 1}}},
		},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)

	var cart models.Cart
	if err := res.Decode(&cart); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, errVersionConflict
		}
		return nil, models.Storage("carts.cas", err)
	}
	return &cart, nil
}
