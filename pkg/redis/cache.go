package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	redisclient "github.com/redis/go-redis/v9"

	"github.com/outfitly/storefront-api/pkg/global"
	"github.com/outfitly/storefront-api/pkg/models"
)

const productTTL = 24 * time.Hour

// Cache is a read-through product cache. Catalog data is read-only from
// the storefront's perspective, so a TTL is the only invalidation needed.
type Cache struct {
	client *redisclient.Client
}

func New() *Cache {
	return &Cache{
		client: redisclient.NewClient(&redisclient.Options{
			Addr:     global.GetEnvOrDefault("REDIS_ADDRESS", "localhost:6379"),
			Password: global.GetEnvOrDefault("REDIS_PASSWORD", ""),
			DB:       0,
			Protocol: 2,
		}),
	}
}

func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *Cache) Close() error {
	return c.client.Close()
}

func (c *Cache) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	productJSON, err := c.client.Get(ctx, productKey(id)).Result()
	if err != nil {
		return nil, err
	}
	var product models.Product
	if err := json.Unmarshal([]byte(productJSON), &product); err != nil {
		return nil, fmt.Errorf("unmarshal cached product: %w", err)
	}
	return &product, nil
}

func (c *Cache) SetProduct(ctx context.Context, product *models.Product) error {
	productJSON, err := json.Marshal(product)
	if err != nil {
		return fmt.Errorf("marshal product %s: %w", product.ID.Hex(), err)
	}

	pipe := c.client.TxPipeline()
	pipe.Set(ctx, productKey(product.ID.Hex()), productJSON, productTTL)
	for _, category := range product.Categories {
		categoryKey := fmt.Sprintf("category:%s", category)
		pipe.LPush(ctx, categoryKey, product.ID.Hex())
		pipe.Expire(ctx, categoryKey, productTTL)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("cache product %s: %w", product.ID.Hex(), err)
	}
	return nil
}

func productKey(id string) string {
	return fmt.Sprintf("product:%s", id)
}
