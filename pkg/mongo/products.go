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

func (s *Store) ListProducts(ctx context.Context, filter models.ProductFilter, page, pageSize int) ([]models.Product, int64, error) {
	query := bson.D{}
	if filter.Category != "" {
		query = append(query, bson.E{Key: "categories", Value: filter.Category})
	}
	if filter.NewArrivals {
		cutoff := time.Now().Add(-models.NewArrivalWindow)
		query = append(query, bson.E{Key: "created_at", Value: bson.D{{Key: "$gte", Value: cutoff}}})
	}

	coll := s.collection("products")
	total, err := coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, models.Storage("products.count", err)
	}

	findOpts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}).
		SetSkip(int64((page - 1) * pageSize)).
		SetLimit(int64(pageSize))

	cursor, err := coll.Find(ctx, query, findOpts)
	if err != nil {
		return nil, 0, models.Storage("products.find", err)
	}
	defer cursor.Close(ctx)

	products := []models.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		return nil, 0, models.Storage("products.decode", err)
	}
	return products, total, nil
}

func (s *Store) GetProduct(ctx context.Context, id bson.ObjectID) (*models.Product, error) {
	var product models.Product
	err := s.collection("products").FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&product)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrNotFound
		}
		return nil, models.Storage("products.get", err)
	}
	return &product, nil
}

func (s *Store) ListCategories(ctx context.Context) ([]string, error) {
	var categories []string
	err := s.collection("products").Distinct(ctx, "categories", bson.D{}).Decode(&categories)
	if err != nil {
		return nil, models.Storage("products.categories", err)
	}
	return categories, nil
}

func (s *Store) CreateProducts(ctx context.Context, products []*models.Product) error {
	docs := make([]interface{}, len(products))
	for i, p := range products {
		if p.ID.IsZero() {
			p.ID = bson.NewObjectID()
		}
		p.SetTimestamps()
		docs[i] = p
	}
	if _, err := s.collection("products").InsertMany(ctx, docs); err != nil {
		return models.Storage("products.insert", err)
	}
	return nil
}
