package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"agrimarket-backend/internal/middleware"
	"agrimarket-backend/internal/models"
	"agrimarket-backend/internal/services"
)

// CheckoutHandlers hands the buyer off to the payment gateway
type CheckoutHandlers struct {
	checkout *services.CheckoutService
	carts    *services.CartStore
}

// NewCheckoutHandlers creates new checkout handlers
func NewCheckoutHandlers(checkout *services.CheckoutService, carts *services.CartStore) *CheckoutHandlers {
	return &CheckoutHandlers{checkout: checkout, carts: carts}
}

// Checkout submits the cart. With ?redirect=1 the answer is a 303 to the payment page.
func (h *CheckoutHandlers) Checkout(c *gin.Context) {
	var req models.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondFail(c, http.StatusBadRequest, "Invalid request data: "+err.Error())
		return
	}
	if req.ShippingMethod == "" {
		req.ShippingMethod = models.ShippingStandard
	}

	result, err := h.checkout.Checkout(c.Request.Context(),
		c.GetString(middleware.ContextUserID),
		c.GetString(middleware.ContextUpstreamToken),
		c.GetString(middleware.ContextIdempotencyKey),
		req)
	if errors.Is(err, services.ErrEmptyCart) {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Your cart is empty",
			"view":    "empty_cart",
		})
		return
	}
	if err != nil {
		respondUpstreamError(c, err, services.CheckoutGenericMessage)
		return
	}

	if c.Query("redirect") == "1" {
		c.Redirect(http.StatusSeeOther, result.PaymentURL)
		return
	}
	respondOK(c, http.StatusOK, result)
}

// Summary returns what checkout would charge for the current cart
func (h *CheckoutHandlers) Summary(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserID)
	method := models.ShippingMethod(c.DefaultQuery("shipping", string(models.ShippingStandard)))
	view := h.carts.View(userID, method)
	if len(view.Items) == 0 {
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data":    view,
			"view":    "empty_cart",
		})
		return
	}
	respondOK(c, http.StatusOK, view)
}

// Attempts lists the user's recent checkout attempts
func (h *CheckoutHandlers) Attempts(c *gin.Context) {
	limit := queryInt(c, "limit", 20)
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	attempts, err := h.checkout.Attempts(c.GetString(middleware.ContextUserID), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, attempts)
}
