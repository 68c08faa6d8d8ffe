package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agrimarket-backend/internal/utils"
)

func floatPtr(f float64) *float64 { return &f }

func TestProductModel(t *testing.T) {
	t.Run("DiscountAndStock", func(t *testing.T) {
		p := Product{Price: 750, OldPrice: floatPtr(1000), Quantity: 3}
		assert.Equal(t, 25, p.DiscountPercent())
		assert.True(t, p.InStock())

		p.OldPrice = floatPtr(500)
		assert.Equal(t, 0, p.DiscountPercent())

		p.Quantity = 0
		assert.False(t, p.InStock())
	})

	t.Run("ResolveImages", func(t *testing.T) {
		p := Product{Images: []string{"products/tomate.jpg", "/storage/mais.png", "https://cdn.example.com/a.jpg", ""}}
		p.ResolveImages("http://localhost:8000/")

		assert.Equal(t, "http://localhost:8000/storage/products/tomate.jpg", p.Images[0])
		assert.Equal(t, "http://localhost:8000/storage/mais.png", p.Images[1])
		assert.Equal(t, "https://cdn.example.com/a.jpg", p.Images[2])
		assert.Equal(t, "", p.Images[3])
	})

	t.Run("DecodeNumericIDsAndDates", func(t *testing.T) {
		var p Product
		err := json.Unmarshal([]byte(`{"id": 42, "name": "Mangue", "price": 500, "createdAt": "2024-03-15 10:00:00", "seller": {"id": 7, "name": "Ferme Kouassi"}}`), &p)
		require.NoError(t, err)
		assert.Equal(t, FlexibleID("42"), p.ID)
		assert.Equal(t, "7", p.Seller.ID.String())
		assert.Equal(t, 2024, p.CreatedAt.Year())
	})

	t.Run("Validate", func(t *testing.T) {
		err := ProductInput{}.Validate()
		require.Error(t, err)
		errs, ok := err.(utils.ValidationErrors)
		require.True(t, ok)
		assert.Len(t, errs, 4)

		assert.NoError(t, ProductInput{Name: "Igname", Category: "Tubercules", Unit: "kg", Price: 400, Quantity: 10}.Validate())
	})
}

func TestProductFilter(t *testing.T) {
	now := time.Now()
	products := []Product{
		{ID: "1", Name: "Tomates fraîches", Category: "Légumes", Price: 1500, Rating: 4.2, CreatedAt: FlexibleDate{now.Add(-48 * time.Hour)}},
		{ID: "2", Name: "Mangues Kent", Category: "Fruits", Price: 800, Rating: 4.8, CreatedAt: FlexibleDate{now}},
		{ID: "3", Name: "Oignons", Category: "Légumes", Price: 600, Rating: 3.9, CreatedAt: FlexibleDate{now.Add(-24 * time.Hour)}},
	}

	t.Run("SearchIsCaseInsensitive", func(t *testing.T) {
		out := ProductFilter{Search: "TOMATE"}.Apply(products)
		require.Len(t, out, 1)
		assert.Equal(t, FlexibleID("1"), out[0].ID)
	})

	t.Run("CategoryAndPriceRange", func(t *testing.T) {
		out := ProductFilter{Category: "légumes", MaxPrice: floatPtr(1000)}.Apply(products)
		require.Len(t, out, 1)
		assert.Equal(t, FlexibleID("3"), out[0].ID)

		out = ProductFilter{Category: "all", MinPrice: floatPtr(700)}.Apply(products)
		assert.Len(t, out, 2)
	})

	t.Run("Sorts", func(t *testing.T) {
		ids := func(ps []Product) []FlexibleID {
			out := make([]FlexibleID, len(ps))
			for i, p := range ps {
				out[i] = p.ID
			}
			return out
		}
		assert.Equal(t, []FlexibleID{"3", "2", "1"}, ids(ProductFilter{Sort: ProductSortPriceAsc}.Apply(products)))
		assert.Equal(t, []FlexibleID{"1", "2", "3"}, ids(ProductFilter{Sort: ProductSortPriceDesc}.Apply(products)))
		assert.Equal(t, []FlexibleID{"2", "1", "3"}, ids(ProductFilter{Sort: ProductSortRating}.Apply(products)))
		assert.Equal(t, []FlexibleID{"2", "3", "1"}, ids(ProductFilter{Sort: ProductSortNewest}.Apply(products)))

		// Input order is untouched
		assert.Equal(t, FlexibleID("1"), products[0].ID)
	})
}

func TestOrderStatus(t *testing.T) {
	t.Run("BadgeMappingIsTotal", func(t *testing.T) {
		expected := map[DisplayStatus]BadgeVariant{
			DisplayDelivered:  BadgeDefault,
			DisplayInProgress: BadgeSecondary,
			DisplayPending:    BadgeOutline,
			DisplayCancelled:  BadgeDestructive,
		}
		seen := map[BadgeVariant]DisplayStatus{}
		for _, status := range DisplayStatuses {
			variant, ok := Badge(status)
			require.True(t, ok, "no badge for %s", status)
			assert.Equal(t, expected[status], variant)

			// Each variant belongs to exactly one status
			_, dup := seen[variant]
			assert.False(t, dup)
			seen[variant] = status
		}
		assert.Len(t, seen, 4)

		_, ok := Badge("Expédié")
		assert.False(t, ok)
	})

	t.Run("DisplayForAcceptsBothVocabularies", func(t *testing.T) {
		cases := map[string]DisplayStatus{
			"Livré":      DisplayDelivered,
			"En cours":   DisplayInProgress,
			"pending":    DisplayPending,
			"confirmed":  DisplayInProgress,
			"preparing":  DisplayInProgress,
			"SHIPPED":    DisplayInProgress,
			"delivered":  DisplayDelivered,
			"cancelled":  DisplayCancelled,
			"En attente": DisplayPending,
		}
		for in, want := range cases {
			got, ok := DisplayFor(in)
			assert.True(t, ok, in)
			assert.Equal(t, want, got, in)
		}
		_, ok := DisplayFor("lost")
		assert.False(t, ok)
	})

	t.Run("Transitions", func(t *testing.T) {
		assert.True(t, CanTransition(OrderStatusPending, OrderStatusConfirmed))
		assert.True(t, CanTransition(OrderStatusPreparing, OrderStatusCancelled))
		assert.True(t, CanTransition(OrderStatusShipped, OrderStatusDelivered))
		assert.False(t, CanTransition(OrderStatusShipped, OrderStatusCancelled))
		assert.False(t, CanTransition(OrderStatusPending, OrderStatusDelivered))
		assert.False(t, CanTransition(OrderStatusDelivered, OrderStatusPending))

		assert.True(t, OrderStatusCancelled.IsTerminal())
		assert.Empty(t, NextStatuses(OrderStatusDelivered))
		assert.Equal(t, []OrderStatus{OrderStatusConfirmed, OrderStatusCancelled}, NextStatuses(OrderStatusPending))
	})

	t.Run("FilterByDisplay", func(t *testing.T) {
		views := []OrderView{
			{Order: Order{ID: "a"}, DisplayStatus: DisplayDelivered},
			{Order: Order{ID: "b"}, DisplayStatus: DisplayPending},
			{Order: Order{ID: "c"}, DisplayStatus: DisplayDelivered},
		}
		assert.Len(t, FilterOrdersByDisplay(views, "Livré"), 2)
		assert.Len(t, FilterOrdersByDisplay(views, "delivered"), 2)
		assert.Len(t, FilterOrdersByDisplay(views, "all"), 3)
		assert.Empty(t, FilterOrdersByDisplay(views, "bogus"))
	})
}

func demoNotifications() []Notification {
	mk := func(id string, typ NotificationType, status NotificationStatus, priority NotificationPriority) Notification {
		return Notification{ID: id, Type: typ, Status: status, Priority: priority}
	}
	return []Notification{
		mk("1", NotificationTypeOrder, NotificationUnread, PriorityHigh),
		mk("2", NotificationTypeDelivery, NotificationUnread, PriorityMedium),
		mk("3", NotificationTypeMessage, NotificationRead, PriorityLow),
		mk("4", NotificationTypePromotion, NotificationRead, PriorityLow),
		mk("5", NotificationTypeSystem, NotificationRead, PriorityHigh),
		mk("6", NotificationTypeOrder, NotificationRead, PriorityMedium),
		mk("7", NotificationTypeDelivery, NotificationRead, PriorityMedium),
		mk("8", NotificationTypeMessage, NotificationRead, PriorityLow),
	}
}

func TestNotificationFilter(t *testing.T) {
	notifications := demoNotifications()

	t.Run("UnreadTab", func(t *testing.T) {
		out := NotificationFilter{Tab: NotificationTabUnread}.Apply(notifications)
		require.Len(t, out, 2)
		assert.Equal(t, "1", out[0].ID)
		assert.Equal(t, "2", out[1].ID)
	})

	t.Run("ImportantTab", func(t *testing.T) {
		out := NotificationFilter{Tab: NotificationTabImportant}.Apply(notifications)
		assert.Len(t, out, 2)
	})

	t.Run("Conjunction", func(t *testing.T) {
		filters := []NotificationFilter{
			{Tab: "read", Type: "order"},
			{Tab: "all", Priority: "medium", Status: "read"},
			{Type: "message", Priority: "low"},
			{Tab: "unread", Type: "system"},
		}
		for _, f := range filters {
			var expected []Notification
			for _, n := range notifications {
				if f.matchesTab(n) && matchesOrAll(f.Type, string(n.Type)) &&
					matchesOrAll(f.Priority, string(n.Priority)) && matchesOrAll(f.Status, string(n.Status)) {
					expected = append(expected, n)
				}
			}
			got := f.Apply(notifications)
			assert.Len(t, got, len(expected))
			for i := range expected {
				assert.Equal(t, expected[i].ID, got[i].ID)
			}
		}
		assert.Empty(t, NotificationFilter{Tab: "unread", Type: "system"}.Apply(notifications))
	})

	t.Run("Counts", func(t *testing.T) {
		counts := CountNotifications(notifications)
		assert.Equal(t, 8, counts.Total)
		assert.Equal(t, 2, counts.Unread)
		assert.Equal(t, 2, counts.Important)
		assert.Equal(t, 2, counts.ByType[NotificationTypeOrder])
	})
}

func TestNotificationPreferences(t *testing.T) {
	defaults := DefaultNotificationPreferences()
	assert.True(t, defaults.Allows(ChannelEmail, NotificationTypePromotion))
	assert.False(t, defaults.Allows(ChannelSMS, NotificationTypePromotion))
	assert.False(t, defaults.Allows("fax", NotificationTypeOrder))

	t.Run("MergeDoesNotMutateOriginal", func(t *testing.T) {
		weekly := FrequencyWeekly
		merged, err := defaults.Merge(PreferencesUpdate{
			Channels:   map[string]map[NotificationType]bool{ChannelPush: {NotificationTypeMessage: false}},
			Frequency:  &weekly,
			QuietHours: &QuietHoursUpdate{Enabled: ptr(true), Start: ptr("21:30"), End: ptr("06:00")},
		})
		require.NoError(t, err)
		assert.False(t, merged.Allows(ChannelPush, NotificationTypeMessage))
		assert.True(t, merged.Allows(ChannelPush, NotificationTypeOrder))
		assert.Equal(t, FrequencyWeekly, merged.Frequency)
		assert.True(t, merged.QuietHours.Enabled)

		assert.True(t, defaults.Allows(ChannelPush, NotificationTypeMessage))
		assert.Equal(t, FrequencyInstant, defaults.Frequency)
	})

	t.Run("MergeRejectsInvalidValues", func(t *testing.T) {
		hourly := "hourly"
		_, err := defaults.Merge(PreferencesUpdate{
			Channels:   map[string]map[NotificationType]bool{"fax": {NotificationTypeOrder: true}, ChannelEmail: {"weather": true}},
			Frequency:  &hourly,
			QuietHours: &QuietHoursUpdate{Start: ptr("25:00"), End: ptr("7h")},
		})
		require.Error(t, err)
		assert.Len(t, err.(utils.ValidationErrors), 5)
	})

	t.Run("MergeQuietHoursFieldByField", func(t *testing.T) {
		on, err := defaults.Merge(PreferencesUpdate{
			QuietHours: &QuietHoursUpdate{Enabled: ptr(true), Start: ptr("23:00")},
		})
		require.NoError(t, err)
		assert.Equal(t, QuietHours{Enabled: true, Start: "23:00", End: "07:00"}, on.QuietHours)

		off, err := on.Merge(PreferencesUpdate{QuietHours: &QuietHoursUpdate{Enabled: ptr(false)}})
		require.NoError(t, err)
		assert.Equal(t, QuietHours{Enabled: false, Start: "23:00", End: "07:00"}, off.QuietHours)

		_, err = on.Merge(PreferencesUpdate{QuietHours: &QuietHoursUpdate{End: ptr("24:10")}})
		require.Error(t, err)
		assert.Len(t, err.(utils.ValidationErrors), 1)
	})
}

func ptr[T any](v T) *T { return &v }

func TestCartTotals(t *testing.T) {
	rates := ShippingRates{Standard: decimal.NewFromInt(1000), Express: decimal.NewFromInt(2500)}
	items := []CartItem{
		{Product: Product{ID: "1", Price: 1500}, Quantity: 2},
		{Product: Product{ID: "2", Price: 0.1}, Quantity: 3},
		{Product: Product{ID: "3", Price: 725.5}, Quantity: 1},
	}

	t.Run("Standard", func(t *testing.T) {
		totals := ComputeTotals(items, rates, ShippingStandard)
		assert.Equal(t, 6, totals.TotalItems)
		assert.True(t, decimal.RequireFromString("3725.8").Equal(totals.TotalPrice), totals.TotalPrice.String())
		assert.True(t, decimal.RequireFromString("4725.8").Equal(totals.TotalWithShipping))
	})

	t.Run("Express", func(t *testing.T) {
		totals := ComputeTotals(items, rates, ShippingExpress)
		assert.True(t, totals.TotalWithShipping.Sub(totals.TotalPrice).Equal(decimal.NewFromInt(2500)))
	})

	t.Run("UnknownMethodUsesStandard", func(t *testing.T) {
		totals := ComputeTotals(nil, rates, "drone")
		assert.Equal(t, ShippingStandard, totals.ShippingMethod)
		assert.True(t, totals.TotalPrice.IsZero())
		assert.True(t, totals.TotalWithShipping.Equal(decimal.NewFromInt(1000)))
	})
}

func TestCheckout(t *testing.T) {
	req := CheckoutRequest{
		FullName:       "Awa Traoré",
		Phone:          "+225 07 00 00 00",
		Address:        "Rue 12",
		City:           "Abidjan",
		PaymentMethod:  PaymentMobileMoney,
		ShippingMethod: ShippingExpress,
	}
	require.NoError(t, req.Validate())

	bad := req
	bad.PaymentMethod = "bitcoin"
	bad.City = ""
	assert.Error(t, bad.Validate())

	rates := ShippingRates{Standard: decimal.NewFromInt(1000), Express: decimal.NewFromInt(2500)}
	items := []CartItem{{Product: Product{ID: "p1", Name: "Riz", Price: 500}, Quantity: 4}}
	totals := ComputeTotals(items, rates, req.ShippingMethod)

	payload := NewCheckoutPayload("order_x", "u1", req, items, totals)
	assert.True(t, payload.Amount.Equal(decimal.NewFromInt(4500)))
	assert.Equal(t, "p1", payload.ProductID)
	assert.Equal(t, "express", payload.ShippingInfo.ShippingMethod)
	require.Len(t, payload.Items, 1)
	assert.Equal(t, 4, payload.Items[0].Quantity)

	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	var wire map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &wire))
	for _, key := range []string{"amount", "order_id", "user_id", "product_id", "shipping_info", "payment_method", "items"} {
		assert.Contains(t, wire, key)
	}
	assert.Equal(t, float64(4500), wire["amount"])
	assert.Contains(t, string(raw), `"amount":4500`)

	payload.Amount = decimal.RequireFromString("1250.75")
	raw, err = json.Marshal(payload)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"amount":1250.75`)

	var decoded CheckoutPayload
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.True(t, decoded.Amount.Equal(payload.Amount))
	assert.Equal(t, "order_x", decoded.OrderID)
}

func TestSellerAnalyticsDecode(t *testing.T) {
	t.Run("Legacy", func(t *testing.T) {
		raw := []byte(`{
			"revenue": {"total": 120000, "growth": 12.5},
			"orders": {"total": 40, "growth": 3},
			"products": {"total": 12},
			"monthly": [{"month": "Jan", "sales": 50000, "orders": 15}],
			"bestSellers": [{"id": 3, "name": "Tomates", "sold": 30, "revenue": 45000}]
		}`)
		a, err := DecodeSellerAnalytics(raw)
		require.NoError(t, err)
		assert.Equal(t, 120000.0, a.Overview.TotalRevenue)
		assert.Equal(t, 40, a.Overview.TotalOrders)
		assert.Equal(t, 3000.0, a.Overview.AverageOrderValue)
		require.Len(t, a.SalesByMonth, 1)
		assert.Equal(t, 50000.0, a.SalesByMonth[0].Revenue)
		require.Len(t, a.TopProducts, 1)
		assert.Equal(t, 30, a.TopProducts[0].Sales)
	})

	t.Run("Current", func(t *testing.T) {
		a, err := DecodeSellerAnalytics([]byte(`{"overview": {"totalRevenue": 5, "totalOrders": 1}, "salesByMonth": [], "topProducts": []}`))
		require.NoError(t, err)
		assert.Equal(t, 5.0, a.Overview.TotalRevenue)
	})

	t.Run("Malformed", func(t *testing.T) {
		_, err := DecodeSellerAnalytics([]byte(`[1,2]`))
		assert.Error(t, err)
	})
}

func TestInventoryRecompute(t *testing.T) {
	inv := SellerInventory{Items: []InventoryItem{
		{ProductID: "1", Quantity: 0, Threshold: 5, Price: 100},
		{ProductID: "2", Quantity: 4, Threshold: 5, Price: 100},
		{ProductID: "3", Quantity: 50, Threshold: 5, Price: 100},
	}}
	inv.Recompute()

	assert.Equal(t, StockOutOfStock, inv.Items[0].Status)
	assert.Equal(t, StockLow, inv.Items[1].Status)
	assert.Equal(t, StockInStock, inv.Items[2].Status)
	assert.Equal(t, InventorySummary{TotalProducts: 3, LowStock: 1, OutOfStock: 1, TotalValue: 5400}, inv.Summary)
}

func TestAdminUserFilter(t *testing.T) {
	users := []AdminUser{
		{ID: "1", Name: "Koffi", Email: "koffi@example.com", Role: "seller", Status: AdminUserActive},
		{ID: "2", Name: "Aminata", Email: "ami@example.com", Role: "acheteur", Status: AdminUserSuspended},
		{ID: "3", Name: "Admin", Email: "root@example.com", Role: "admin", Status: AdminUserActive},
	}
	assert.Len(t, AdminUserFilter{Role: "buyer"}.Apply(users), 1)
	assert.Len(t, AdminUserFilter{Status: "active"}.Apply(users), 2)
	assert.Len(t, AdminUserFilter{Search: "EXAMPLE"}.Apply(users), 3)
	assert.Len(t, AdminUserFilter{Role: "seller", Search: "ami"}.Apply(users), 0)
}

func TestUserModel(t *testing.T) {
	assert.Equal(t, UserRoleSeller, NormalizeRole(" Vendeur "))
	assert.Equal(t, UserRoleAdmin, NormalizeRole("admin"))
	assert.Equal(t, UserRoleBuyer, NormalizeRole("superuser"))

	req := RegisterRequest{Name: "Yao", Email: "yao@example.com", Phone: "0700000000", Password: "secret123", PasswordConfirmation: "secret123", TypeID: "1", RegionID: "2", CityID: "3"}
	assert.NoError(t, req.Validate())
	req.PasswordConfirmation = "nope"
	assert.Error(t, req.Validate())

	section, ok := NewProfileSection(ProfileSectionBank)
	require.True(t, ok)
	assert.Error(t, ValidateProfileSection(section))
	_, ok = NewProfileSection("avatar")
	assert.False(t, ok)

	var d FlexibleDate
	require.NoError(t, json.Unmarshal([]byte(`"15/03/2024"`), &d))
	assert.Equal(t, time.March, d.Month())
	require.NoError(t, json.Unmarshal([]byte(`null`), &d))
	assert.Error(t, json.Unmarshal([]byte(`"soon"`), &d))
}
