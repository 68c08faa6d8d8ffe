package api

import (
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"agrimarket-backend/internal/middleware"
	"agrimarket-backend/internal/models"
	"agrimarket-backend/internal/services"
	"agrimarket-backend/internal/upstream"
)

const maxProfileBody = 64 << 10

// SellerHandlers backs the seller dashboard
type SellerHandlers struct {
	seller *services.SellerService
}

// NewSellerHandlers creates new seller handlers
func NewSellerHandlers(seller *services.SellerService) *SellerHandlers {
	return &SellerHandlers{seller: seller}
}

func upstreamToken(c *gin.Context) string {
	return c.GetString(middleware.ContextUpstreamToken)
}

// GetProducts lists the seller's own products
func (h *SellerHandlers) GetProducts(c *gin.Context) {
	products, err := h.seller.Products(c.Request.Context(), c.GetString(middleware.ContextUserID), upstreamToken(c))
	if err != nil {
		respondUpstreamError(c, err, genericError)
		return
	}
	respondOK(c, http.StatusOK, products)
}

// productForm reads a product from JSON or from a multipart form with image files.
// The returned closer releases the opened files.
func productForm(c *gin.Context) (models.ProductInput, []upstream.FilePart, func(), error) {
	var input models.ProductInput
	noop := func() {}

	if !strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		if err := c.ShouldBindJSON(&input); err != nil {
			return input, nil, noop, err
		}
		return input, nil, noop, nil
	}

	if err := c.ShouldBind(&input); err != nil {
		return input, nil, noop, err
	}
	form, err := c.MultipartForm()
	if err != nil {
		return input, nil, noop, err
	}

	var opened []multipart.File
	closeAll := func() {
		for _, f := range opened {
			f.Close()
		}
	}

	var parts []upstream.FilePart
	for _, header := range form.File["images"] {
		file, err := header.Open()
		if err != nil {
			closeAll()
			return input, nil, noop, err
		}
		opened = append(opened, file)
		parts = append(parts, upstream.FilePart{
			Field:    "images",
			Filename: header.Filename,
			Content:  file,
		})
	}
	return input, parts, closeAll, nil
}

// CreateProduct creates a product
func (h *SellerHandlers) CreateProduct(c *gin.Context) {
	input, files, done, err := productForm(c)
	defer done()
	if err != nil {
		respondFail(c, http.StatusBadRequest, "Invalid product data: "+err.Error())
		return
	}

	product, err := h.seller.CreateProduct(c.Request.Context(), upstreamToken(c), input, files)
	if err != nil {
		respondUpstreamError(c, err, "Failed to create product")
		return
	}
	respondOK(c, http.StatusCreated, product)
}

// UpdateProduct updates a product
func (h *SellerHandlers) UpdateProduct(c *gin.Context) {
	input, files, done, err := productForm(c)
	defer done()
	if err != nil {
		respondFail(c, http.StatusBadRequest, "Invalid product data: "+err.Error())
		return
	}

	product, err := h.seller.UpdateProduct(c.Request.Context(), upstreamToken(c), c.Param("id"), input, files)
	if err != nil {
		respondUpstreamError(c, err, "Failed to update product")
		return
	}
	respondOK(c, http.StatusOK, product)
}

// DeleteProduct deletes a product
func (h *SellerHandlers) DeleteProduct(c *gin.Context) {
	if err := h.seller.DeleteProduct(c.Request.Context(), upstreamToken(c), c.Param("id")); err != nil {
		respondUpstreamError(c, err, "Failed to delete product")
		return
	}
	respondOK(c, http.StatusOK, gin.H{"id": c.Param("id")})
}

// GetAnalytics returns the seller analytics
func (h *SellerHandlers) GetAnalytics(c *gin.Context) {
	result, err := h.seller.Analytics(c.Request.Context(), upstreamToken(c))
	respondResult(c, result, err)
}

// GetInventory returns the inventory with stock statuses
func (h *SellerHandlers) GetInventory(c *gin.Context) {
	result, err := h.seller.Inventory(c.Request.Context(), upstreamToken(c))
	respondResult(c, result, err)
}

// UpdateStock sets the stock quantity of one product
func (h *SellerHandlers) UpdateStock(c *gin.Context) {
	var req struct {
		Quantity *int `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Quantity == nil {
		respondFail(c, http.StatusBadRequest, "quantity is required")
		return
	}

	item, err := h.seller.UpdateStock(c.Request.Context(), upstreamToken(c), c.Param("productId"), *req.Quantity)
	if err != nil {
		respondUpstreamError(c, err, "Failed to update stock")
		return
	}
	respondOK(c, http.StatusOK, item)
}

// GetOrders returns the seller orders, ?status= narrows the list
func (h *SellerHandlers) GetOrders(c *gin.Context) {
	result, err := h.seller.Orders(c.Request.Context(), upstreamToken(c), c.Query("status"))
	respondResult(c, result, err)
}

// UpdateOrderStatus moves an order to the next fulfilment status
func (h *SellerHandlers) UpdateOrderStatus(c *gin.Context) {
	var req models.StatusUpdate
	if err := c.ShouldBindJSON(&req); err != nil || req.Status == "" {
		respondFail(c, http.StatusBadRequest, "status is required")
		return
	}

	next := models.OrderStatus(strings.ToLower(strings.TrimSpace(req.Status)))
	order, err := h.seller.UpdateOrderStatus(c.Request.Context(), upstreamToken(c), c.Param("id"), next)
	if err != nil {
		respondUpstreamError(c, err, "Failed to update order status")
		return
	}
	respondOK(c, http.StatusOK, order)
}

// GetPayments returns the balance and transactions
func (h *SellerHandlers) GetPayments(c *gin.Context) {
	result, err := h.seller.Payments(c.Request.Context(), upstreamToken(c))
	respondResult(c, result, err)
}

// GetReports returns the reports for ?period=
func (h *SellerHandlers) GetReports(c *gin.Context) {
	result, err := h.seller.Reports(c.Request.Context(), upstreamToken(c), c.DefaultQuery("period", "month"))
	respondResult(c, result, err)
}

// GetProfileStats returns the read-only profile statistics
func (h *SellerHandlers) GetProfileStats(c *gin.Context) {
	result, err := h.seller.ProfileStats(c.Request.Context(), upstreamToken(c))
	respondResult(c, result, err)
}

// GetProfileSection returns one editable profile section
func (h *SellerHandlers) GetProfileSection(c *gin.Context) {
	section, err := h.seller.Profile(c.Request.Context(), upstreamToken(c), c.Param("section"))
	if err != nil {
		respondUpstreamError(c, err, genericError)
		return
	}
	respondOK(c, http.StatusOK, section)
}

// UpdateProfileSection validates and saves one profile section
func (h *SellerHandlers) UpdateProfileSection(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxProfileBody))
	if err != nil {
		respondFail(c, http.StatusBadRequest, "Failed to read request body")
		return
	}

	section, err := h.seller.UpdateProfile(c.Request.Context(), upstreamToken(c), c.Param("section"), body)
	if err != nil {
		respondUpstreamError(c, err, "Failed to save profile")
		return
	}
	respondOK(c, http.StatusOK, section)
}
