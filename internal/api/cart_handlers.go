package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"agrimarket-backend/internal/middleware"
	"agrimarket-backend/internal/models"
	"agrimarket-backend/internal/services"
)

// CartHandlers exposes the session user's cart
type CartHandlers struct {
	carts   *services.CartStore
	catalog *services.CatalogService
}

// NewCartHandlers creates new cart handlers
func NewCartHandlers(carts *services.CartStore, catalog *services.CatalogService) *CartHandlers {
	return &CartHandlers{carts: carts, catalog: catalog}
}

func (h *CartHandlers) view(c *gin.Context) {
	method := models.ShippingMethod(c.DefaultQuery("shipping", string(models.ShippingStandard)))
	respondOK(c, http.StatusOK, h.carts.View(c.GetString(middleware.ContextUserID), method))
}

// GetCart returns the cart with totals for ?shipping=standard|express
func (h *CartHandlers) GetCart(c *gin.Context) {
	h.view(c)
}

// AddToCart adds a product, looked up from the marketplace so price and stock are current
func (h *CartHandlers) AddToCart(c *gin.Context) {
	var req struct {
		ProductID string `json:"productId" binding:"required"`
		Quantity  int    `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondFail(c, http.StatusBadRequest, "productId is required")
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	product, err := h.catalog.Product(c.Request.Context(), req.ProductID)
	if err != nil {
		respondUpstreamError(c, err, genericError)
		return
	}
	product.ResolveImages(h.catalog.AssetBaseURL())

	if err := h.carts.Add(c.GetString(middleware.ContextUserID), *product, req.Quantity); err != nil {
		respondError(c, err)
		return
	}
	h.view(c)
}

// UpdateCartItem sets a line's quantity; zero removes it
func (h *CartHandlers) UpdateCartItem(c *gin.Context) {
	var req struct {
		Quantity *int `json:"quantity" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondFail(c, http.StatusBadRequest, "quantity is required")
		return
	}

	if err := h.carts.SetQuantity(c.GetString(middleware.ContextUserID), models.FlexibleID(c.Param("productId")), *req.Quantity); err != nil {
		respondError(c, err)
		return
	}
	h.view(c)
}

// RemoveFromCart drops a product from the cart
func (h *CartHandlers) RemoveFromCart(c *gin.Context) {
	if err := h.carts.Remove(c.GetString(middleware.ContextUserID), models.FlexibleID(c.Param("productId"))); err != nil {
		respondError(c, err)
		return
	}
	h.view(c)
}

// ClearCart empties the cart
func (h *CartHandlers) ClearCart(c *gin.Context) {
	h.carts.Clear(c.GetString(middleware.ContextUserID))
	h.view(c)
}
