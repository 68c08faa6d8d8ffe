// Package fallback holds the static dashboard data served when the marketplace API is unreachable.
// Every literal uses the same type as the live decode.
package fallback

import (
	"time"

	"agrimarket-backend/internal/models"
)

func date(year int, month time.Month, day int) models.FlexibleDate {
	return models.FlexibleDate{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func months(revenue ...float64) []models.MonthlyPoint {
	names := []string{"Jan", "Fév", "Mar", "Avr", "Mai", "Juin", "Juil", "Août", "Sep", "Oct", "Nov", "Déc"}
	out := make([]models.MonthlyPoint, 0, len(revenue))
	for i, r := range revenue {
		out = append(out, models.MonthlyPoint{Month: names[i%len(names)], Revenue: r})
	}
	return out
}

// AdminAnalytics is shown when /admin/analytics fails
func AdminAnalytics() models.AdminAnalytics {
	return models.AdminAnalytics{
		Overview: models.AdminOverview{
			TotalUsers:    1250,
			TotalSellers:  180,
			TotalBuyers:   1065,
			TotalProducts: 640,
			TotalOrders:   3420,
			TotalRevenue:  15750000,
			PendingOrders: 38,
			UserGrowth:    12.5,
			RevenueGrowth: 8.3,
		},
		RevenueByMonth: months(1100000, 1250000, 1320000, 1180000, 1400000, 1520000),
		TopCategories: []models.CategoryShare{
			{Name: "Légumes", Value: 5200000, Percentage: 33},
			{Name: "Fruits", Value: 4100000, Percentage: 26},
			{Name: "Céréales", Value: 3300000, Percentage: 21},
			{Name: "Tubercules", Value: 3150000, Percentage: 20},
		},
		RecentActivity: []models.Activity{
			{ID: "1", Type: "user", Description: "Nouveau vendeur inscrit", Date: date(2024, time.March, 15)},
			{ID: "2", Type: "order", Description: "Commande #1234 livrée", Date: date(2024, time.March, 14)},
		},
	}
}

// AdminUsers is shown when /admin/users fails
func AdminUsers() []models.AdminUser {
	return []models.AdminUser{
		{ID: "1", Name: "Kouassi Yao", Email: "kouassi@example.com", Role: "seller", Status: models.AdminUserActive, Location: "Bouaké", Orders: 45, JoinDate: date(2023, time.January, 15)},
		{ID: "2", Name: "Aminata Diallo", Email: "aminata@example.com", Role: "buyer", Status: models.AdminUserActive, Location: "Abidjan", Orders: 12, JoinDate: date(2023, time.March, 2)},
		{ID: "3", Name: "Jean Koné", Email: "jean@example.com", Role: "seller", Status: models.AdminUserPending, Location: "Korhogo", Orders: 0, JoinDate: date(2024, time.February, 20)},
		{ID: "4", Name: "Fatou Bamba", Email: "fatou@example.com", Role: "buyer", Status: models.AdminUserSuspended, Location: "Yamoussoukro", Orders: 3, JoinDate: date(2023, time.June, 11)},
		{ID: "5", Name: "Administrateur", Email: "admin@example.com", Role: "admin", Status: models.AdminUserActive, Location: "Abidjan", Orders: 0, JoinDate: date(2022, time.December, 1)},
	}
}

// AdminSettings is shown when /admin/settings fails
func AdminSettings() models.AdminSettings {
	return models.AdminSettings{
		General: models.GeneralSettings{
			SiteName:        "AgriMarket",
			SiteDescription: "La place de marché des produits agricoles",
			ContactEmail:    "contact@agrimarket.example",
			Currency:        "FCFA",
			Language:        "fr",
		},
		Payments: models.PaymentSettings{
			CommissionRate:        5,
			MinimumPayout:         10000,
			MobileMoneyEnabled:    true,
			CardEnabled:           true,
			CashOnDeliveryEnabled: true,
		},
		Notifications: models.NotificationSettings{EmailEnabled: true, SMSEnabled: true, PushEnabled: false},
		Security:      models.SecuritySettings{TwoFactorRequired: false, SessionTimeoutMinutes: 60, PasswordMinLength: 8},
	}
}

// SellerAnalytics is shown when /seller/analytics fails. All figures are zero.
func SellerAnalytics() models.SellerAnalytics {
	return models.SellerAnalytics{
		Overview: models.SellerOverview{
			TotalRevenue:      0,
			TotalOrders:       0,
			TotalProducts:     0,
			AverageOrderValue: 0,
		},
		SalesByMonth: months(0, 0, 0, 0, 0, 0),
		TopProducts:  []models.TopProduct{},
	}
}

// SellerInventory is shown when /seller/inventory fails
func SellerInventory() models.SellerInventory {
	inv := models.SellerInventory{Items: []models.InventoryItem{
		{ProductID: "1", Name: "Tomates fraîches", Category: "Légumes", Quantity: 150, Unit: "kg", Threshold: 20, Price: 1500, LastRestocked: date(2024, time.March, 10)},
		{ProductID: "2", Name: "Mangues Kent", Category: "Fruits", Quantity: 12, Unit: "kg", Threshold: 25, Price: 800, LastRestocked: date(2024, time.March, 2)},
		{ProductID: "3", Name: "Igname", Category: "Tubercules", Quantity: 0, Unit: "kg", Threshold: 30, Price: 600, LastRestocked: date(2024, time.February, 18)},
	}}
	inv.Recompute()
	return inv
}

// SellerOrders is shown when /seller/orders fails
func SellerOrders() models.SellerOrders {
	orders := []models.Order{
		{
			ID:              "ORD-001",
			Date:            date(2024, time.March, 15),
			Status:          string(models.OrderStatusPending),
			Items:           []models.OrderItem{{ProductID: "1", Name: "Tomates fraîches", Quantity: 10, Price: 1500}},
			Buyer:           &models.ProductSeller{ID: "2", Name: "Aminata Diallo"},
			ShippingAddress: "Cocody, Abidjan",
			PaymentMethod:   models.PaymentMobileMoney,
			Total:           16000,
		},
		{
			ID:              "ORD-002",
			Date:            date(2024, time.March, 12),
			Status:          string(models.OrderStatusShipped),
			Items:           []models.OrderItem{{ProductID: "2", Name: "Mangues Kent", Quantity: 5, Price: 800}},
			Buyer:           &models.ProductSeller{ID: "4", Name: "Fatou Bamba"},
			ShippingAddress: "Yamoussoukro",
			PaymentMethod:   models.PaymentCashOnDelivery,
			TrackingNumber:  "TRK-8841",
			Total:           5000,
		},
	}
	return models.SellerOrders{Stats: models.CountOrders(orders), Orders: orders}
}

// SellerPayments is shown when /seller/payments fails
func SellerPayments() models.SellerPayments {
	return models.SellerPayments{
		Balance:      models.PaymentBalance{},
		Transactions: []models.Transaction{},
	}
}

// SellerReports is shown when /seller/reports fails
func SellerReports() models.SellerReports {
	return models.SellerReports{
		Period:        "month",
		Monthly:       months(0, 0, 0, 0, 0, 0),
		TopCategories: []models.CategoryShare{},
		TopProducts:   []models.TopProduct{},
	}
}

// ProfileStats is shown when /seller/profile/stats fails
func ProfileStats() models.ProfileStats {
	return models.ProfileStats{}
}

func strPtr(s string) *string { return &s }

// DemoNotifications are the notifications seeded for a new demo account: 8 in total, 2 unread.
func DemoNotifications(userID string, now time.Time) []models.Notification {
	type seed struct {
		typ      models.NotificationType
		status   models.NotificationStatus
		priority models.NotificationPriority
		title    string
		message  string
		sender   *string
		age      time.Duration
	}
	seeds := []seed{
		{models.NotificationTypeOrder, models.NotificationUnread, models.PriorityHigh, "Nouvelle commande", "Vous avez reçu une nouvelle commande de 10 kg de tomates.", strPtr("Aminata Diallo"), 10 * time.Minute},
		{models.NotificationTypeDelivery, models.NotificationUnread, models.PriorityMedium, "Livraison en cours", "La commande ORD-002 est en route vers Yamoussoukro.", nil, 2 * time.Hour},
		{models.NotificationTypeMessage, models.NotificationRead, models.PriorityLow, "Nouveau message", "Bonjour, les mangues sont-elles encore disponibles ?", strPtr("Fatou Bamba"), 5 * time.Hour},
		{models.NotificationTypePromotion, models.NotificationRead, models.PriorityLow, "Promotion de saison", "Profitez de 10% de réduction sur les frais de livraison.", nil, 24 * time.Hour},
		{models.NotificationTypeSystem, models.NotificationRead, models.PriorityHigh, "Maintenance planifiée", "La plateforme sera indisponible dimanche de 2h à 4h.", nil, 36 * time.Hour},
		{models.NotificationTypeOrder, models.NotificationRead, models.PriorityMedium, "Commande confirmée", "La commande ORD-001 a été confirmée.", nil, 48 * time.Hour},
		{models.NotificationTypeDelivery, models.NotificationRead, models.PriorityMedium, "Commande livrée", "La commande ORD-000 a été livrée.", nil, 72 * time.Hour},
		{models.NotificationTypeMessage, models.NotificationRead, models.PriorityLow, "Avis client", "Un acheteur a laissé un avis 5 étoiles.", strPtr("Jean Koné"), 96 * time.Hour},
	}

	out := make([]models.Notification, 0, len(seeds))
	for _, s := range seeds {
		n := models.Notification{
			UserID:    userID,
			Type:      s.typ,
			Status:    s.status,
			Priority:  s.priority,
			Title:     s.title,
			Message:   s.message,
			Sender:    s.sender,
			CreatedAt: now.Add(-s.age),
		}
		if s.status == models.NotificationRead {
			readAt := n.CreatedAt.Add(time.Minute)
			n.ReadAt = &readAt
		}
		out = append(out, n)
	}
	return out
}
