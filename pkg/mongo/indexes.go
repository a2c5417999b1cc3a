package mongo

import (
	"context"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type indexConfig struct {
	CollectionName string
	IndexModel     mongo.IndexModel
}

var requiredIndexes = []indexConfig{
	// Users
	{
		CollectionName: "users",
		IndexModel: mongo.IndexModel{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("idx_user_email_unique"),
		},
	},

	// Products: category filtering and stable creation-time pagination
	{
		CollectionName: "products",
		IndexModel: mongo.IndexModel{
			Keys:    bson.D{{Key: "categories", Value: 1}},
			Options: options.Index().SetName("idx_product_categories"),
		},
	},
	{
		CollectionName: "products",
		IndexModel: mongo.IndexModel{
			Keys: bson.D{
				{Key: "created_at", Value: 1},
				{Key: "_id", Value: 1},
			},
			Options: options.Index().SetName("idx_product_created"),
		},
	},

	// Carts: at most one cart per user, enforced by the database
	{
		CollectionName: "carts",
		IndexModel: mongo.IndexModel{
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("idx_cart_user_unique"),
		},
	},

	// Orders: per-user history newest first, unique order number
	{
		CollectionName: "orders",
		IndexModel: mongo.IndexModel{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "created_at", Value: -1},
			},
			Options: options.Index().SetName("idx_user_orders"),
		},
	},
	{
		CollectionName: "orders",
		IndexModel: mongo.IndexModel{
			Keys:    bson.D{{Key: "number", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("idx_order_number_unique"),
		},
	},
}

// EnsureIndexes creates every index the stores rely on. Safe to run on
// every startup; existing indexes are left alone.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	for _, idx := range requiredIndexes {
		name, err := s.collection(idx.CollectionName).Indexes().CreateOne(ctx, idx.IndexModel)
		if err != nil {
			return fmt.Errorf("create index on %s: %w", idx.CollectionName, err)
		}
		slog.Debug("ensured index", "index", name, "collection", idx.CollectionName)
	}
	return nil
}
