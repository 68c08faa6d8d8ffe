package services

import (
	"context"
	"net/url"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"agrimarket-backend/internal/models"
	"agrimarket-backend/internal/upstream"
	"agrimarket-backend/internal/utils"
)

const (
	defaultPageSize = 12
	maxPageSize     = 100
)

// productCache holds the last product listing for a short time
type productCache struct {
	mu        sync.RWMutex
	products  []models.Product
	fetchedAt time.Time
	ttl       time.Duration
}

func (c *productCache) get() ([]models.Product, bool) {
	if c.ttl <= 0 {
		return nil, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.products == nil || time.Since(c.fetchedAt) > c.ttl {
		return nil, false
	}
	return c.products, true
}

func (c *productCache) set(products []models.Product) {
	if c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	c.products = products
	c.fetchedAt = time.Now()
	c.mu.Unlock()
}

func (c *productCache) invalidate() {
	c.mu.Lock()
	c.products = nil
	c.mu.Unlock()
}

// CatalogService serves the storefront product listing
type CatalogService struct {
	client       *upstream.Client
	assetBaseURL string
	currency     string
	cache        *productCache
}

// NewCatalogService creates a new catalog service. A zero cacheTTL disables the listing cache.
func NewCatalogService(client *upstream.Client, assetBaseURL, currency string, cacheTTL time.Duration) *CatalogService {
	return &CatalogService{
		client:       client,
		assetBaseURL: assetBaseURL,
		currency:     currency,
		cache:        &productCache{ttl: cacheTTL},
	}
}

// AssetBaseURL returns the base that relative image paths resolve against
func (s *CatalogService) AssetBaseURL() string {
	return s.assetBaseURL
}

// View decorates a product for display
func (s *CatalogService) View(p models.Product) models.ProductView {
	p.Images = append([]string(nil), p.Images...)
	p.ResolveImages(s.assetBaseURL)
	return models.ProductView{
		Product:         p,
		DiscountPercent: p.DiscountPercent(),
		InStock:         p.InStock(),
		PriceLabel:      utils.FormatCurrency(decimal.NewFromFloat(p.Price), s.currency),
	}
}

func (s *CatalogService) allProducts(ctx context.Context) ([]models.Product, error) {
	if products, ok := s.cache.get(); ok {
		return products, nil
	}
	var products []models.Product
	if err := s.client.GetJSON(ctx, "/products", "", &products); err != nil {
		return nil, err
	}
	s.cache.set(products)
	return products, nil
}

// InvalidateCache drops the cached listing after a seller change
func (s *CatalogService) InvalidateCache() {
	s.cache.invalidate()
}

// Products lists products matching filter, one page at a time
func (s *CatalogService) Products(ctx context.Context, filter models.ProductFilter) (*models.ProductPage, error) {
	products, err := s.allProducts(ctx)
	if err != nil {
		return nil, err
	}

	page, limit := utils.NormalizePage(filter.Page, filter.Limit, defaultPageSize, maxPageSize)
	items, total := utils.Paginate(filter.Apply(products), page, limit)

	views := make([]models.ProductView, 0, len(items))
	for _, p := range items {
		views = append(views, s.View(p))
	}
	return &models.ProductPage{Items: views, Total: total, Page: page, Limit: limit}, nil
}

// Product fetches a single product
func (s *CatalogService) Product(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	if err := s.client.GetJSON(ctx, "/products/"+url.PathEscape(id), "", &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// Categories lists product categories
func (s *CatalogService) Categories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	if err := s.client.GetJSON(ctx, "/categories", "", &categories); err != nil {
		return nil, err
	}
	return categories, nil
}
