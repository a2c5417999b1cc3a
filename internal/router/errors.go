package router

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/outfitly/storefront-api/pkg/global"
	"github.com/outfitly/storefront-api/pkg/models"
)

// httpStatusFor classifies a store error into an HTTP status and a stable
// machine-readable code.
func httpStatusFor(err error) (int, string) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, models.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, models.ErrUnauthenticated):
		return http.StatusUnauthorized, "unauthenticated"
	case errors.Is(err, models.ErrInvalidQuantity):
		return http.StatusBadRequest, "invalid_quantity"
	case errors.Is(err, models.ErrEmptyCart):
		return http.StatusBadRequest, "empty_cart"
	case errors.Is(err, models.ErrAmountMismatch):
		return http.StatusUnprocessableEntity, "amount_mismatch"
	case errors.Is(err, models.ErrDuplicateCart):
		return http.StatusConflict, "duplicate_cart"
	case errors.Is(err, models.ErrDuplicateEmail):
		return http.StatusConflict, "duplicate_email"
	default:
		return http.StatusInternalServerError, "storage_error"
	}
}

// fail writes the error envelope for a store failure. Storage errors are
// logged with their cause and surfaced generically.
func (h *Handler) fail(c *gin.Context, err error) {
	status, code := httpStatusFor(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		h.log.Error("storage failure", "path", c.FullPath(), "err", err)
		message = "storage failure"
	}
	c.JSON(status, global.ErrorResponse(message, []global.ValidationError{
		{Field: "", Message: message, Code: code},
	}))
}

func badRequest(c *gin.Context, field, message string) {
	c.JSON(http.StatusBadRequest, global.ErrorResponse(message, []global.ValidationError{
		{Field: field, Message: message, Code: "validation_error"},
	}))
}
