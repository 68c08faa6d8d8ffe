package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"agrimarket-backend/internal/models"
	"agrimarket-backend/internal/services"
)

// CatalogHandlers serves the storefront catalog
type CatalogHandlers struct {
	catalog *services.CatalogService
}

// NewCatalogHandlers creates new catalog handlers
func NewCatalogHandlers(catalog *services.CatalogService) *CatalogHandlers {
	return &CatalogHandlers{catalog: catalog}
}

// GetProducts lists products with search, category, price range, sort and paging
func (h *CatalogHandlers) GetProducts(c *gin.Context) {
	filter := models.ProductFilter{
		Search:   c.Query("search"),
		Category: c.Query("category"),
		MinPrice: queryFloat(c, "minPrice"),
		MaxPrice: queryFloat(c, "maxPrice"),
		Sort:     c.Query("sort"),
		Page:     queryInt(c, "page", 1),
		Limit:    queryInt(c, "limit", 0),
	}

	page, err := h.catalog.Products(c.Request.Context(), filter)
	if err != nil {
		respondUpstreamError(c, err, genericError)
		return
	}
	respondOK(c, http.StatusOK, page)
}

// GetProduct returns a single product
func (h *CatalogHandlers) GetProduct(c *gin.Context) {
	product, err := h.catalog.Product(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondUpstreamError(c, err, genericError)
		return
	}
	respondOK(c, http.StatusOK, h.catalog.View(*product))
}

// GetCategories lists product categories
func (h *CatalogHandlers) GetCategories(c *gin.Context) {
	categories, err := h.catalog.Categories(c.Request.Context())
	if err != nil {
		respondUpstreamError(c, err, genericError)
		return
	}
	respondOK(c, http.StatusOK, categories)
}
