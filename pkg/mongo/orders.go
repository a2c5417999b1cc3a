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

// CreateFromCart snapshots the user's cart into an order and clears the
// cart inside one multi-document transaction. If the transaction aborts
// for any reason, neither the order nor the cleared cart is visible.
func (s *Store) CreateFromCart(ctx context.Context, userID bson.ObjectID, amount float64, address string) (*models.Order, error) {
	sess, err := s.client.StartSession()
	if err != nil {
		return nil, models.Storage("orders.session", err)
	}
	defer sess.EndSession(ctx)

	result, err := sess.WithTransaction(ctx, func(ctx context.Context) (interface{}, error) {
		cart, err := s.GetCart(ctx, userID)
		if err != nil {
			if errors.Is(err, models.ErrNotFound) {
				// No cart reads the same as an empty one at checkout.
				return nil, models.ErrEmptyCart
			}
			return nil, err
		}
		if cart.IsEmpty() {
			return nil, models.ErrEmptyCart
		}

		products, err := s.productsByID(ctx, cart.Items)
		if err != nil {
			return nil, err
		}
		snapshot, err := models.SnapshotItems(cart.Items, products)
		if err != nil {
			return nil, err
		}
		total := models.OrderTotal(snapshot)
		if !models.AmountMatches(total, amount) {
			return nil, models.ErrAmountMismatch
		}

		order := &models.Order{
			ID:        bson.NewObjectID(),
			Number:    models.GenerateOrderNumber(),
			UserID:    userID,
			Items:     snapshot,
			Amount:    total.InexactFloat64(),
			Address:   address,
			Status:    models.OrderStatusCreated,
			CreatedAt: time.Now(),
		}
		if _, err := s.collection("orders").InsertOne(ctx, order); err != nil {
			return nil, models.Storage("orders.insert", err)
		}

		// The version filter aborts the transaction if another writer
		// touched the cart between our read and this clear.
		if _, err := s.casItems(ctx, userID, cart.Version, []models.CartItem{}); err != nil {
			return nil, err
		}
		return order, nil
	})
	if err != nil {
		return nil, models.Storage("orders.create", err)
	}
	return result.(*models.Order), nil
}

func (s *Store) GetOrder(ctx context.Context, orderID, requestingUserID bson.ObjectID) (*models.Order, error) {
	var order models.Order
	err := s.collection("orders").FindOne(ctx, bson.D{{Key: "_id", Value: orderID}}).Decode(&order)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrNotFound
		}
		return nil, models.Storage("orders.get", err)
	}
	if order.UserID != requestingUserID {
		return nil, models.ErrForbidden
	}
	return &order, nil
}

func (s *Store) ListOrders(ctx context.Context, userID bson.ObjectID) ([]models.Order, error) {
	cursor, err := s.collection("orders").Find(ctx,
		bson.D{{Key: "user_id", Value: userID}},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}),
	)
	if err != nil {
		return nil, models.Storage("orders.list", err)
	}
	defer cursor.Close(ctx)

	orders := []models.Order{}
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, models.Storage("orders.decode", err)
	}
	return orders, nil
}

func (s *Store) productsByID(ctx context.Context, items []models.CartItem) (map[bson.ObjectID]*models.Product, error) {
	ids := make([]bson.ObjectID, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}
	cursor, err := s.collection("products").Find(ctx, bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: ids}}}})
	if err != nil {
		return nil, models.Storage("products.byID", err)
	}
	defer cursor.Close(ctx)

	var products []models.Product
	if err := cursor.All(ctx, &products); err != nil {
		return nil, models.Storage("products.byID", err)
	}
	byID := make(map[bson.ObjectID]*models.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}
	return byID, nil
}
