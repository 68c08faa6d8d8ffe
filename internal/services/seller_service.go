package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"agrimarket-backend/internal/fallback"
	"agrimarket-backend/internal/models"
	"agrimarket-backend/internal/upstream"
)

const defaultStockThreshold = 10

var (
	ErrInvalidTransition = errors.New("order status transition is not allowed")
	ErrUnknownSection    = errors.New("unknown profile section")
	ErrInvalidStock      = errors.New("stock quantity cannot be negative")
	ErrInvalidPayload    = errors.New("invalid request body")
)

// SellerService backs the seller dashboard
type SellerService struct {
	loader  *upstream.Loader
	catalog *CatalogService
	logger  *zap.Logger
}

// NewSellerService creates a new seller service
func NewSellerService(loader *upstream.Loader, catalog *CatalogService, logger *zap.Logger) *SellerService {
	return &SellerService{loader: loader, catalog: catalog, logger: logger}
}

func (s *SellerService) client() *upstream.Client {
	return s.loader.Client()
}

// Products lists the seller's own products
func (s *SellerService) Products(ctx context.Context, sellerID, token string) ([]models.ProductView, error) {
	var products []models.Product
	if err := s.client().GetJSON(ctx, "/seller/"+url.PathEscape(sellerID)+"/products", token, &products); err != nil {
		return nil, err
	}
	views := make([]models.ProductView, 0, len(products))
	for _, p := range products {
		views = append(views, s.catalog.View(p))
	}
	return views, nil
}

func productFields(in models.ProductInput) map[string]string {
	fields := map[string]string{
		"name":        in.Name,
		"description": in.Description,
		"price":       strconv.FormatFloat(in.Price, 'f', -1, 64),
		"category":    in.Category,
		"quantity":    strconv.Itoa(in.Quantity),
		"unit":        in.Unit,
	}
	if in.OldPrice != nil {
		fields["oldPrice"] = strconv.FormatFloat(*in.OldPrice, 'f', -1, 64)
	}
	return fields
}

func (s *SellerService) saveProduct(ctx context.Context, method, path, token string, in models.ProductInput, files []upstream.FilePart) (*models.Product, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	var product models.Product
	var err error
	if len(files) > 0 {
		err = s.client().SendMultipart(ctx, method, path, token, productFields(in), files, &product)
	} else if method == http.MethodPost {
		err = s.client().PostJSON(ctx, path, token, in, &product)
	} else {
		err = s.client().PutJSON(ctx, path, token, in, &product)
	}
	if err != nil {
		return nil, err
	}

	s.catalog.InvalidateCache()
	return &product, nil
}

// CreateProduct creates a product, uploading images as multipart when present
func (s *SellerService) CreateProduct(ctx context.Context, token string, in models.ProductInput, files []upstream.FilePart) (*models.Product, error) {
	return s.saveProduct(ctx, http.MethodPost, "/products", token, in, files)
}

// UpdateProduct updates a product
func (s *SellerService) UpdateProduct(ctx context.Context, token, productID string, in models.ProductInput, files []upstream.FilePart) (*models.Product, error) {
	return s.saveProduct(ctx, http.MethodPut, "/products/"+url.PathEscape(productID), token, in, files)
}

// DeleteProduct deletes a product
func (s *SellerService) DeleteProduct(ctx context.Context, token, productID string) error {
	if err := s.client().Delete(ctx, "/products/"+url.PathEscape(productID), token); err != nil {
		return err
	}
	s.catalog.InvalidateCache()
	return nil
}

// Analytics returns the seller analytics, reshaping the legacy response when needed
func (s *SellerService) Analytics(ctx context.Context, token string) (upstream.Result[models.SellerAnalytics], error) {
	return upstream.FetchWithFallbackRaw(ctx, s.loader, "seller_analytics", "/seller/analytics", token,
		func(raw json.RawMessage) (models.SellerAnalytics, error) {
			return models.DecodeSellerAnalytics(raw)
		},
		fallback.SellerAnalytics)
}

// Inventory returns the seller inventory with stock statuses derived from quantities
func (s *SellerService) Inventory(ctx context.Context, token string) (upstream.Result[models.SellerInventory], error) {
	result, err := upstream.FetchWithFallback(ctx, s.loader, "seller_inventory", "/seller/inventory", token, fallback.SellerInventory)
	if err != nil {
		return result, err
	}
	result.Data.Recompute()
	return result, nil
}

// UpdateStock sets a product's stock through PUT {API}/products/:id and returns the refreshed row
func (s *SellerService) UpdateStock(ctx context.Context, token, productID string, quantity int) (*models.InventoryItem, error) {
	if quantity < 0 {
		return nil, ErrInvalidStock
	}

	var product models.Product
	path := "/products/" + url.PathEscape(productID)
	if err := s.client().PutJSON(ctx, path, token, models.StockUpdate{Quantity: quantity}, &product); err != nil {
		return nil, err
	}
	s.catalog.InvalidateCache()

	s.logger.Info("stock updated",
		zap.String("productId", productID),
		zap.Int("quantity", quantity))

	var inventory models.SellerInventory
	if err := s.client().GetJSON(ctx, "/seller/inventory", token, &inventory); err == nil {
		inventory.Recompute()
		for _, item := range inventory.Items {
			if item.ProductID.String() == productID {
				return &item, nil
			}
		}
	}

	if product.ID == "" {
		product.ID = models.FlexibleID(productID)
		product.Quantity = quantity
	}
	return &models.InventoryItem{
		ProductID: product.ID,
		Name:      product.Name,
		Category:  product.Category,
		Quantity:  product.Quantity,
		Unit:      product.Unit,
		Threshold: defaultStockThreshold,
		Price:     product.Price,
		Status:    models.StockStatusFor(product.Quantity, defaultStockThreshold),
	}, nil
}

// Orders returns the seller orders, optionally narrowed to one fulfilment status
func (s *SellerService) Orders(ctx context.Context, token, status string) (upstream.Result[models.SellerOrders], error) {
	result, err := upstream.FetchWithFallback(ctx, s.loader, "seller_orders", "/seller/orders", token, fallback.SellerOrders)
	if err != nil {
		return result, err
	}
	result.Data.Stats = models.CountOrders(result.Data.Orders)
	result.Data.Orders = models.FilterOrdersByStatus(result.Data.Orders, status)
	return result, nil
}

// UpdateOrderStatus moves an order along the fulfilment flow
func (s *SellerService) UpdateOrderStatus(ctx context.Context, token, orderID string, next models.OrderStatus) (*models.Order, error) {
	if !next.IsValid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, next)
	}

	path := "/orders/" + url.PathEscape(orderID)
	var order models.Order
	if err := s.client().GetJSON(ctx, path, token, &order); err != nil {
		return nil, err
	}

	current := models.OrderStatus(strings.ToLower(strings.TrimSpace(order.Status)))
	if current.IsTerminal() {
		return nil, fmt.Errorf("%w: order is already %s", ErrInvalidTransition, current)
	}
	if !models.CanTransition(current, next) {
		return nil, fmt.Errorf("%w: %s to %s (allowed: %v)", ErrInvalidTransition, current, next, models.NextStatuses(current))
	}

	var updated models.Order
	if err := s.client().PutJSON(ctx, path+"/status", token, models.StatusUpdate{Status: string(next)}, &updated); err != nil {
		return nil, err
	}
	if updated.ID == "" {
		order.Status = string(next)
		updated = order
	}

	s.logger.Info("order status changed",
		zap.String("orderId", orderID),
		zap.String("from", string(current)),
		zap.String("to", string(next)))
	return &updated, nil
}

// Payments returns the seller balance and transactions
func (s *SellerService) Payments(ctx context.Context, token string) (upstream.Result[models.SellerPayments], error) {
	return upstream.FetchWithFallback(ctx, s.loader, "seller_payments", "/seller/payments", token, fallback.SellerPayments)
}

// Reports returns the seller reports for a period
func (s *SellerService) Reports(ctx context.Context, token, period string) (upstream.Result[models.SellerReports], error) {
	path := "/seller/reports"
	if period != "" {
		path += "?period=" + url.QueryEscape(period)
	}
	return upstream.FetchWithFallback(ctx, s.loader, "seller_reports", path, token, fallback.SellerReports)
}

// ProfileStats returns the read-only profile statistics
func (s *SellerService) ProfileStats(ctx context.Context, token string) (upstream.Result[models.ProfileStats], error) {
	return upstream.FetchWithFallback(ctx, s.loader, "seller_profile_stats", "/seller/profile/stats", token, fallback.ProfileStats)
}

// Profile fetches one profile section
func (s *SellerService) Profile(ctx context.Context, token, section string) (interface{}, error) {
	value, ok := models.NewProfileSection(section)
	if !ok {
		return nil, ErrUnknownSection
	}
	if err := s.client().GetJSON(ctx, "/seller/profile/"+section, token, value); err != nil {
		return nil, err
	}
	return value, nil
}

// UpdateProfile validates and saves one profile section
func (s *SellerService) UpdateProfile(ctx context.Context, token, section string, body []byte) (interface{}, error) {
	value, ok := models.NewProfileSection(section)
	if !ok {
		return nil, ErrUnknownSection
	}
	if err := json.Unmarshal(body, value); err != nil {
		return nil, fmt.Errorf("%w: %s section: %v", ErrInvalidPayload, section, err)
	}
	if err := models.ValidateProfileSection(value); err != nil {
		return nil, err
	}
	if err := s.client().PutJSON(ctx, "/seller/profile/"+section, token, value, nil); err != nil {
		return nil, err
	}
	return value, nil
}
