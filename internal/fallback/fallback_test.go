package fallback

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agrimarket-backend/internal/models"
)

// roundTrip encodes v and decodes it back into a fresh value of the same type,
// the way a live response is decoded.
func roundTrip[T any](t *testing.T, v T) T {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	var out T
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func TestFallbackShapesDecodeAsLiveData(t *testing.T) {
	t.Run("AdminAnalytics", func(t *testing.T) {
		got := roundTrip(t, AdminAnalytics())
		assert.Equal(t, AdminAnalytics().Overview, got.Overview)
		assert.Len(t, got.RevenueByMonth, 6)
	})

	t.Run("AdminUsers", func(t *testing.T) {
		got := roundTrip(t, AdminUsers())
		require.Len(t, got, 5)
		assert.Equal(t, "Kouassi Yao", got[0].Name)
		assert.Equal(t, 2023, got[0].JoinDate.Year())
	})

	t.Run("AdminSettings", func(t *testing.T) {
		got := roundTrip(t, AdminSettings())
		assert.Equal(t, AdminSettings(), got)
		assert.NoError(t, got.Validate())
	})

	t.Run("SellerAnalytics", func(t *testing.T) {
		raw, err := json.Marshal(SellerAnalytics())
		require.NoError(t, err)
		got, err := models.DecodeSellerAnalytics(raw)
		require.NoError(t, err)
		assert.Equal(t, 0.0, got.Overview.TotalRevenue)
	})

	t.Run("SellerInventory", func(t *testing.T) {
		got := roundTrip(t, SellerInventory())
		assert.Equal(t, 3, got.Summary.TotalProducts)
		assert.Equal(t, 1, got.Summary.LowStock)
		assert.Equal(t, 1, got.Summary.OutOfStock)
	})

	t.Run("SellerOrders", func(t *testing.T) {
		got := roundTrip(t, SellerOrders())
		require.Len(t, got.Orders, 2)
		assert.Equal(t, 1, got.Stats.Pending)
		assert.Equal(t, 1, got.Stats.InProgress)
	})

	t.Run("SellerPaymentsAndReports", func(t *testing.T) {
		assert.NotNil(t, roundTrip(t, SellerPayments()).Transactions)
		assert.Len(t, roundTrip(t, SellerReports()).Monthly, 6)
	})
}

func TestDemoNotifications(t *testing.T) {
	now := time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC)
	notifications := DemoNotifications("user-1", now)
	require.Len(t, notifications, 8)

	unread := models.NotificationFilter{Tab: models.NotificationTabUnread}.Apply(notifications)
	require.Len(t, unread, 2)
	for _, n := range unread {
		assert.Equal(t, models.NotificationUnread, n.Status)
		assert.Nil(t, n.ReadAt)
	}

	for i, n := range notifications {
		assert.Equal(t, "user-1", n.UserID)
		assert.True(t, n.CreatedAt.Before(now))
		if i > 0 {
			// Newest first
			assert.True(t, n.CreatedAt.Before(notifications[i-1].CreatedAt))
		}
	}
}
