package router

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/v2/bson"
	"golang.org/x/sync/errgroup"

	"github.com/outfitly/storefront-api/pkg/global"
	"github.com/outfitly/storefront-api/pkg/models"
)

const joinConcurrency = 8

func (h *Handler) CreateCart(c *gin.Context) {
	var req models.CreateCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "request", err.Error())
		return
	}
	items, ok := parseItems(c, req.Products)
	if !ok {
		return
	}

	cart, err := h.stores.Carts.CreateCart(c.Request.Context(), authedUser(c), items)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, global.SuccessResponse(cart))
}

// GetCart returns the cart with each line joined against the live catalog,
// so the storefront always renders current titles and prices while the
// cart is open. Orders freeze these at checkout instead.
func (h *Handler) GetCart(c *gin.Context) {
	userID, ok := h.ownedUserParam(c)
	if !ok {
		return
	}

	cart, err := h.stores.Carts.GetCart(c.Request.Context(), userID)
	if err != nil {
		h.fail(c, err)
		return
	}

	view, err := h.joinCart(c.Request.Context(), cart)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(view))
}

func (h *Handler) ReplaceCart(c *gin.Context) {
	userID, ok := h.ownedUserParam(c)
	if !ok {
		return
	}
	var req models.ReplaceCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "request", err.Error())
		return
	}
	items, ok := parseItems(c, req.Products)
	if !ok {
		return
	}

	cart, err := h.stores.Carts.ReplaceItems(c.Request.Context(), userID, items)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(cart))
}

func (h *Handler) PatchCart(c *gin.Context) {
	userID, ok := h.ownedUserParam(c)
	if !ok {
		return
	}
	var req models.PatchCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "request", err.Error())
		return
	}
	productID, err := bson.ObjectIDFromHex(req.ProductID)
	if err != nil {
		badRequest(c, "productID", "must be a valid product ID")
		return
	}

	cart, err := h.stores.Carts.PatchItem(c.Request.Context(), userID, productID, *req.Quantity)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(cart))
}

func (h *Handler) ClearCart(c *gin.Context) {
	cart, err := h.stores.Carts.ClearCart(c.Request.Context(), authedUser(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(cart))
}

// joinCart fans out over the catalog to decorate each line item with its
// product's title, price, and image. Lines whose product has been removed
// from the catalog are dropped from the view; the stored cart keeps them.
func (h *Handler) joinCart(ctx context.Context, cart *models.Cart) (*models.CartView, error) {
	lines := make([]*models.CartLine, len(cart.Items))
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(joinConcurrency)
	for i, item := range cart.Items {
		g.Go(func() error {
			product, err := h.stores.Catalog.GetProduct(ctx, item.ProductID)
			if err != nil {
				if errors.Is(err, models.ErrNotFound) {
					return nil
				}
				return err
			}
			mu.Lock()
			lines[i] = &models.CartLine{
				ProductID: product.ID,
				Title:     product.Title,
				Price:     product.Price,
				Image:     product.Image,
				Quantity:  item.Quantity,
			}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	view := &models.CartView{
		ID:        cart.ID,
		UserID:    cart.UserID,
		Products:  make([]models.CartLine, 0, len(lines)),
		UpdatedAt: cart.UpdatedAt,
	}
	for _, line := range lines {
		if line != nil {
			view.Products = append(view.Products, *line)
		}
	}
	return view, nil
}

// ownedUserParam parses the :userID path segment and enforces that it is
// the authenticated user.
func (h *Handler) ownedUserParam(c *gin.Context) (bson.ObjectID, bool) {
	userID, err := bson.ObjectIDFromHex(c.Param("userID"))
	if err != nil {
		badRequest(c, "userID", "must be a valid user ID")
		return bson.ObjectID{}, false
	}
	if userID != authedUser(c) {
		h.fail(c, models.ErrForbidden)
		return bson.ObjectID{}, false
	}
	return userID, true
}

func parseItems(c *gin.Context, reqs []models.CartItemRequest) ([]models.CartItem, bool) {
	items := make([]models.CartItem, 0, len(reqs))
	for _, r := range reqs {
		id, err := bson.ObjectIDFromHex(r.ProductID)
		if err != nil {
			badRequest(c, "products", "product ID "+r.ProductID+" is not valid")
			return nil, false
		}
		items = append(items, models.CartItem{ProductID: id, Quantity: r.Quantity})
	}
	return items, true
}
