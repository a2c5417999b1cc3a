package router

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/outfitly/storefront-api/pkg/global"
	"github.com/outfitly/storefront-api/pkg/models"
)

func (h *Handler) GetAllProducts(c *gin.Context) {
	filter := models.ProductFilter{
		Category:    c.Query("category"),
		NewArrivals: c.Query("new") == "true",
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	products, total, err := h.stores.Catalog.ListProducts(c.Request.Context(), filter, page, limit)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.Header("X-Total-Count", strconv.FormatInt(total, 10))
	c.JSON(http.StatusOK, global.SuccessResponse(map[string]interface{}{
		"products":   products,
		"totalCount": total,
	}))
}

// GetProductByID serves a single product, read-through the Redis cache
// when one is configured.
func (h *Handler) GetProductByID(c *gin.Context) {
	id, err := bson.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		badRequest(c, "id", "must be a valid product ID")
		return
	}
	ctx := c.Request.Context()

	if h.cache != nil {
		if product, err := h.cache.GetProduct(ctx, id.Hex()); err == nil {
			c.Header("X-Cache", "HIT")
			c.JSON(http.StatusOK, global.SuccessResponse(product))
			return
		}
	}

	product, err := h.stores.Catalog.GetProduct(ctx, id)
	if err != nil {
		h.fail(c, err)
		return
	}

	if h.cache != nil {
		if cacheErr := h.cache.SetProduct(ctx, product); cacheErr != nil {
			h.log.Warn("failed to cache product", "id", id.Hex(), "err", cacheErr)
		}
		c.Header("X-Cache", "MISS")
	}
	c.JSON(http.StatusOK, global.SuccessResponse(product))
}

func (h *Handler) GetAllCategories(c *gin.Context) {
	categories, err := h.stores.Catalog.ListCategories(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(categories))
}
