package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"agrimarket-backend/internal/middleware"
	"agrimarket-backend/internal/services"
)

// BuyerHandlers backs the buyer dashboard
type BuyerHandlers struct {
	buyer *services.BuyerService
}

// NewBuyerHandlers creates new buyer handlers
func NewBuyerHandlers(buyer *services.BuyerService) *BuyerHandlers {
	return &BuyerHandlers{buyer: buyer}
}

// GetOrders lists the buyer's orders, ?status= narrows by display status
func (h *BuyerHandlers) GetOrders(c *gin.Context) {
	orders, err := h.buyer.Orders(c.Request.Context(), c.GetString(middleware.ContextUpstreamToken), c.Query("status"))
	if err != nil {
		respondUpstreamError(c, err, genericError)
		return
	}
	respondOK(c, http.StatusOK, orders)
}

// GetOrder returns a single order
func (h *BuyerHandlers) GetOrder(c *gin.Context) {
	order, err := h.buyer.Order(c.Request.Context(), c.GetString(middleware.ContextUpstreamToken), c.Param("id"))
	if err != nil {
		respondUpstreamError(c, err, genericError)
		return
	}
	respondOK(c, http.StatusOK, order)
}
