package services

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"agrimarket-backend/database"
	"agrimarket-backend/internal/models"
	"agrimarket-backend/internal/upstream"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Initialize(":memory:")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { db.Close() })
	return db
}

// setupUpstream starts a fake marketplace API and returns a client pointed at it
func setupUpstream(t *testing.T, handler http.HandlerFunc) (*upstream.Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return upstream.NewClient(server.URL, 2*time.Second, nil), server
}

func testRates() models.ShippingRates {
	return models.ShippingRates{Standard: decimal.NewFromInt(1000), Express: decimal.NewFromInt(2500)}
}

func testProduct(id string, price float64, quantity int) models.Product {
	return models.Product{
		ID:       models.FlexibleID(id),
		Name:     "Produit " + id,
		Price:    price,
		Category: "cereales",
		Quantity: quantity,
		Unit:     "kg",
	}
}

func zapNop() *zap.Logger {
	return zap.NewNop()
}
