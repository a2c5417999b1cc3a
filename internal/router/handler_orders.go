package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/outfitly/storefront-api/pkg/global"
	"github.com/outfitly/storefront-api/pkg/models"
)

// CreateOrder checks out the authenticated user's cart. The request's
// products field is accepted for wire compatibility but ignored: the
// server reads the stored cart and recomputes the total from live catalog
// prices, so a tampered client amount is rejected rather than trusted.
func (h *Handler) CreateOrder(c *gin.Context) {
	var req models.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "request", err.Error())
		return
	}

	order, err := h.stores.Orders.CreateFromCart(c.Request.Context(), authedUser(c), req.Amount, req.Address)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, global.SuccessResponse(order))
}

func (h *Handler) GetUserOrders(c *gin.Context) {
	userID, ok := h.ownedUserParam(c)
	if !ok {
		return
	}
	orders, err := h.stores.Orders.ListOrders(c.Request.Context(), userID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(orders))
}

func (h *Handler) GetOrderByID(c *gin.Context) {
	orderID, err := bson.ObjectIDFromHex(c.Param("orderID"))
	if err != nil {
		badRequest(c, "orderID", "must be a valid order ID")
		return
	}
	order, err := h.stores.Orders.GetOrder(c.Request.Context(), orderID, authedUser(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(order))
}
