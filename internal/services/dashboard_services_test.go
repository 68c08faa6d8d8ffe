package services

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agrimarket-backend/internal/models"
	"agrimarket-backend/internal/upstream"
)

func newSellerService(t *testing.T, fallbackEnabled bool, handler http.HandlerFunc) *SellerService {
	client, _ := setupUpstream(t, handler)
	loader := upstream.NewLoader(client, fallbackEnabled, zapNop())
	catalog := NewCatalogService(client, "https://cdn.example.com", "FCFA", time.Minute)
	return NewSellerService(loader, catalog, zapNop())
}

func TestSellerAnalyticsFallsBackOnServerError(t *testing.T) {
	seller := newSellerService(t, true, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	result, err := seller.Analytics(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, upstream.SourceFallback, result.Source)
	assert.Equal(t, float64(0), result.Data.Overview.TotalRevenue)

	strict := newSellerService(t, false, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	_, err = strict.Analytics(context.Background(), "tok")
	assert.Error(t, err)
}

func TestSellerAnalyticsLegacyShape(t *testing.T) {
	seller := newSellerService(t, true, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/seller/analytics", r.URL.Path)
		_, _ = w.Write([]byte(`{
			"revenue": {"total": 250000, "growth": 12},
			"orders": {"total": 40, "growth": 5},
			"products": {"total": 9},
			"monthly": [{"month": "Jan", "sales": 100000, "orders": 15}, {"month": "Fév", "sales": 150000, "orders": 25}],
			"bestSellers": [{"id": 3, "name": "Mangues", "sold": 20, "revenue": 80000}]
		}`))
	})

	result, err := seller.Analytics(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, upstream.SourceLive, result.Source)
	assert.Equal(t, float64(250000), result.Data.Overview.TotalRevenue)
	assert.Equal(t, 40, result.Data.Overview.TotalOrders)
	assert.Len(t, result.Data.SalesByMonth, 2)
	require.Len(t, result.Data.TopProducts, 1)
	assert.Equal(t, "Mangues", result.Data.TopProducts[0].Name)
}

func TestSellerInventoryRecomputesStatuses(t *testing.T) {
	seller := newSellerService(t, true, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"items": [
			{"productId": 1, "name": "Riz", "quantity": 0, "threshold": 10, "price": 500, "status": "in_stock"},
			{"productId": 2, "name": "Mil", "quantity": 5, "threshold": 10, "price": 400},
			{"productId": 3, "name": "Maïs", "quantity": 50, "threshold": 10, "price": 300}
		]}`))
	})

	result, err := seller.Inventory(context.Background(), "tok")
	require.NoError(t, err)
	items := result.Data.Items
	require.Len(t, items, 3)
	assert.Equal(t, models.StockOutOfStock, items[0].Status)
	assert.Equal(t, models.StockLow, items[1].Status)
	assert.Equal(t, models.StockInStock, items[2].Status)
	assert.Equal(t, 3, result.Data.Summary.TotalProducts)
	assert.Equal(t, 1, result.Data.Summary.LowStock)
	assert.Equal(t, 1, result.Data.Summary.OutOfStock)
}

func TestSellerUpdateStock(t *testing.T) {
	var put models.StockUpdate
	seller := newSellerService(t, true, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPut && r.URL.Path == "/products/2":
			_ = json.NewDecoder(r.Body).Decode(&put)
			_, _ = w.Write([]byte(`{"id": 2, "name": "Mil", "quantity": 4, "unit": "kg", "price": 400}`))
		case r.URL.Path == "/seller/inventory":
			_, _ = w.Write([]byte(`{"items": [{"productId": 2, "name": "Mil", "quantity": 4, "threshold": 10}]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	_, err := seller.UpdateStock(context.Background(), "tok", "2", -1)
	assert.ErrorIs(t, err, ErrInvalidStock)

	item, err := seller.UpdateStock(context.Background(), "tok", "2", 4)
	require.NoError(t, err)
	assert.Equal(t, 4, put.Quantity)
	assert.Equal(t, 4, item.Quantity)
	assert.Equal(t, models.StockLow, item.Status)
}

func TestSellerUpdateStockWithoutInventoryRow(t *testing.T) {
	seller := newSellerService(t, true, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPut {
			_, _ = w.Write([]byte(`{}`))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	item, err := seller.UpdateStock(context.Background(), "tok", "9", 0)
	require.NoError(t, err)
	assert.Equal(t, models.FlexibleID("9"), item.ProductID)
	assert.Equal(t, models.StockOutOfStock, item.Status)
	assert.Equal(t, defaultStockThreshold, item.Threshold)
}

func TestSellerOrderStatusTransitions(t *testing.T) {
	var puts int32
	seller := newSellerService(t, true, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/orders/ORD-1":
			_, _ = w.Write([]byte(`{"id": "ORD-1", "status": "Pending", "total": 1000}`))
		case r.Method == http.MethodPut && r.URL.Path == "/orders/ORD-1/status":
			atomic.AddInt32(&puts, 1)
			body, _ := io.ReadAll(r.Body)
			assert.JSONEq(t, `{"status": "confirmed"}`, string(body))
			_, _ = w.Write([]byte(`{"success": true}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	_, err := seller.UpdateOrderStatus(context.Background(), "tok", "ORD-1", models.OrderStatusDelivered)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = seller.UpdateOrderStatus(context.Background(), "tok", "ORD-1", "teleported")
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, int32(0), atomic.LoadInt32(&puts))

	order, err := seller.UpdateOrderStatus(context.Background(), "tok", "ORD-1", models.OrderStatusConfirmed)
	require.NoError(t, err)
	assert.Equal(t, "confirmed", order.Status)
	assert.Equal(t, int32(1), atomic.LoadInt32(&puts))
}

func TestSellerOrderStatusFinalOrders(t *testing.T) {
	var puts int32
	seller := newSellerService(t, true, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/orders/ORD-9":
			_, _ = w.Write([]byte(`{"id": "ORD-9", "status": "cancelled", "total": 1000}`))
		case r.Method == http.MethodPut:
			atomic.AddInt32(&puts, 1)
			_, _ = w.Write([]byte(`{"success": true}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	_, err := seller.UpdateOrderStatus(context.Background(), "tok", "ORD-9", models.OrderStatusConfirmed)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Contains(t, err.Error(), "order is already cancelled")
	assert.Equal(t, int32(0), atomic.LoadInt32(&puts))
}

func TestSellerOrdersFilterKeepsFullStats(t *testing.T) {
	seller := newSellerService(t, true, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	result, err := seller.Orders(context.Background(), "tok", "shipped")
	require.NoError(t, err)
	assert.True(t, result.IsFallback())
	assert.Equal(t, 2, result.Data.Stats.Total)
	require.Len(t, result.Data.Orders, 1)
	assert.Equal(t, models.FlexibleID("ORD-002"), result.Data.Orders[0].ID)
}

func TestSellerCreateProduct(t *testing.T) {
	seller := newSellerService(t, true, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/products", r.URL.Path)
		if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
			if !assert.NoError(t, r.ParseMultipartForm(1<<20)) {
				return
			}
			assert.Equal(t, "Oignons", r.FormValue("name"))
			assert.Equal(t, "750", r.FormValue("price"))
			_, _ = w.Write([]byte(`{"id": 11, "name": "Oignons"}`))
			return
		}
		_, _ = w.Write([]byte(`{"id": 10, "name": "Oignons"}`))
	})

	in := models.ProductInput{Name: "Oignons", Price: 750, Category: "Légumes", Quantity: 20, Unit: "kg"}

	_, err := seller.CreateProduct(context.Background(), "tok", models.ProductInput{Name: "Oignons"}, nil)
	assert.Error(t, err)

	product, err := seller.CreateProduct(context.Background(), "tok", in, nil)
	require.NoError(t, err)
	assert.Equal(t, models.FlexibleID("10"), product.ID)

	files := []upstream.FilePart{{Field: "images[]", Filename: "oignons.jpg", Content: strings.NewReader("jpeg")}}
	product, err = seller.CreateProduct(context.Background(), "tok", in, files)
	require.NoError(t, err)
	assert.Equal(t, models.FlexibleID("11"), product.ID)
}

func TestSellerProfileSections(t *testing.T) {
	seller := newSellerService(t, true, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{}`))
	})

	_, err := seller.Profile(context.Background(), "tok", "secret")
	assert.ErrorIs(t, err, ErrUnknownSection)

	_, err = seller.UpdateProfile(context.Background(), "tok", models.ProfileSectionPersonal, []byte(`{not json`))
	assert.ErrorIs(t, err, ErrInvalidPayload)

	stats, err := seller.ProfileStats(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, upstream.SourceLive, stats.Source)
}

func TestAdminUsersFilterAndPage(t *testing.T) {
	client, _ := setupUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	admin := NewAdminService(upstream.NewLoader(client, true, zapNop()), zapNop())

	result, err := admin.Users(context.Background(), "tok", models.AdminUserFilter{Role: "seller"})
	require.NoError(t, err)
	assert.True(t, result.IsFallback())
	assert.Equal(t, 2, result.Data.Total)
	assert.Equal(t, 20, result.Data.Limit)

	result, err = admin.Users(context.Background(), "tok", models.AdminUserFilter{Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 5, result.Data.Total)
	assert.Len(t, result.Data.Items, 2)

	analytics, err := admin.Analytics(context.Background(), "tok")
	require.NoError(t, err)
	assert.True(t, analytics.IsFallback())
}

func TestAdminUpdateSettingsValidates(t *testing.T) {
	var puts int32
	client, _ := setupUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&puts, 1)
		w.WriteHeader(http.StatusOK)
	})
	admin := NewAdminService(upstream.NewLoader(client, true, zapNop()), zapNop())

	settings := models.AdminSettings{}
	settings.General.SiteName = "AgriMarket"
	settings.General.ContactEmail = "contact@example.com"
	settings.Payments.CommissionRate = 5

	saved, err := admin.UpdateSettings(context.Background(), "tok", settings)
	require.NoError(t, err)
	assert.Equal(t, "AgriMarket", saved.General.SiteName)

	settings.Payments.CommissionRate = 150
	_, err = admin.UpdateSettings(context.Background(), "tok", settings)
	assert.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&puts))
}

func TestBuyerOrdersView(t *testing.T) {
	client, _ := setupUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`[
			{"id": 1, "date": "2024-03-15", "status": "delivered", "total": 12500, "items": [{"name": "Riz", "quantity": 2}, {"name": "Mil", "quantity": 3}]},
			{"id": 2, "date": "2024-03-10", "status": "shipped", "total": 4000},
			{"id": 3, "date": "2024-03-09", "status": "En attente", "total": 1000},
			{"id": 4, "date": "2024-03-01", "status": "lost", "total": 1000}
		]`))
	})
	buyer := NewBuyerService(client, "FCFA")

	views, err := buyer.Orders(context.Background(), "tok", "")
	require.NoError(t, err)
	require.Len(t, views, 4)
	assert.Equal(t, models.DisplayDelivered, views[0].DisplayStatus)
	assert.Equal(t, models.BadgeDefault, views[0].Badge)
	assert.Equal(t, "15 mars 2024", views[0].DateLabel)
	assert.Equal(t, 5, views[0].ItemCount)
	assert.Equal(t, models.BadgeSecondary, views[1].Badge)
	assert.Equal(t, models.BadgeOutline, views[2].Badge)
	assert.Equal(t, models.DisplayPending, views[3].DisplayStatus)

	views, err = buyer.Orders(context.Background(), "tok", "En cours")
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, models.FlexibleID("2"), views[0].ID)
}

func TestCatalogProductsPagingAndCache(t *testing.T) {
	var listings int32
	client, _ := setupUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/products":
			atomic.AddInt32(&listings, 1)
			_, _ = w.Write([]byte(`[
				{"id": 1, "name": "Tomates", "price": 1500, "oldPrice": 2000, "category": "Légumes", "quantity": 10, "images": ["products/tomates.jpg"]},
				{"id": 2, "name": "Mangues", "price": 800, "category": "Fruits", "quantity": 0},
				{"id": 3, "name": "Oignons", "price": 600, "category": "Légumes", "quantity": 5}
			]`))
		case "/products/1":
			_, _ = w.Write([]byte(`{"id": 1, "name": "Tomates", "price": 1500}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
	catalog := NewCatalogService(client, "https://cdn.example.com", "FCFA", time.Minute)

	page, err := catalog.Products(context.Background(), models.ProductFilter{Category: "légumes", Sort: models.ProductSortPriceAsc})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)
	assert.Equal(t, defaultPageSize, page.Limit)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "Oignons", page.Items[0].Name)

	tomates := page.Items[1]
	assert.Equal(t, 25, tomates.DiscountPercent)
	assert.True(t, tomates.InStock)
	assert.Equal(t, []string{"https://cdn.example.com/storage/products/tomates.jpg"}, tomates.Images)

	page, err = catalog.Products(context.Background(), models.ProductFilter{Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Oignons", page.Items[0].Name)
	assert.Equal(t, int32(1), atomic.LoadInt32(&listings))

	// the cached listing keeps its relative image paths
	page, err = catalog.Products(context.Background(), models.ProductFilter{Search: "tomates"})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/storage/products/tomates.jpg", page.Items[0].Images[0])

	catalog.InvalidateCache()
	_, err = catalog.Products(context.Background(), models.ProductFilter{})
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&listings))

	product, err := catalog.Product(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, "Tomates", product.Name)

	_, err = catalog.Product(context.Background(), "404")
	assert.Equal(t, http.StatusNotFound, upstream.HTTPStatus(err))
}
