package models

import (
	"encoding/json"
	"strings"

	"agrimarket-backend/internal/utils"
)

// MonthlyPoint is one month of a time series chart
type MonthlyPoint struct {
	Month   string  `json:"month"`
	Revenue float64 `json:"revenue"`
	Orders  int     `json:"orders"`
}

// CategoryShare is a category's slice of sales
type CategoryShare struct {
	Name       string  `json:"name"`
	Value      float64 `json:"value"`
	Percentage float64 `json:"percentage"`
}

// Activity is an entry in the admin activity feed
type Activity struct {
	ID          string       `json:"id"`
	Type        string       `json:"type"`
	Description string       `json:"description"`
	Date        FlexibleDate `json:"date"`
}

// AdminOverview holds the platform headline figures
type AdminOverview struct {
	TotalUsers    int     `json:"totalUsers"`
	TotalSellers  int     `json:"totalSellers"`
	TotalBuyers   int     `json:"totalBuyers"`
	TotalProducts int     `json:"totalProducts"`
	TotalOrders   int     `json:"totalOrders"`
	TotalRevenue  float64 `json:"totalRevenue"`
	PendingOrders int     `json:"pendingOrders"`
	UserGrowth    float64 `json:"userGrowth"`
	RevenueGrowth float64 `json:"revenueGrowth"`
}

// AdminAnalytics is the admin dashboard analytics payload
type AdminAnalytics struct {
	Overview       AdminOverview   `json:"overview"`
	RevenueByMonth []MonthlyPoint  `json:"revenueByMonth"`
	TopCategories  []CategoryShare `json:"topCategories"`
	RecentActivity []Activity      `json:"recentActivity"`
}

// Admin user account states
const (
	AdminUserActive    = "active"
	AdminUserSuspended = "suspended"
	AdminUserPending   = "pending"
)

// AdminUser is a row in the admin users table
type AdminUser struct {
	ID       FlexibleID   `json:"id"`
	Name     string       `json:"name"`
	Email    string       `json:"email"`
	Phone    string       `json:"phone,omitempty"`
	Role     string       `json:"role"`
	Status   string       `json:"status"`
	Location string       `json:"location,omitempty"`
	Orders   int          `json:"orders"`
	JoinDate FlexibleDate `json:"joinDate"`
}

// AdminUserFilter narrows the admin users table
type AdminUserFilter struct {
	Role   string
	Status string
	Search string
	Page   int
	Limit  int
}

// Apply filters users by role, status and a name/email search
func (f AdminUserFilter) Apply(users []AdminUser) []AdminUser {
	out := make([]AdminUser, 0, len(users))
	for _, u := range users {
		if f.Role != "" && f.Role != "all" && NormalizeRole(u.Role) != NormalizeRole(f.Role) {
			continue
		}
		if f.Status != "" && f.Status != "all" && !strings.EqualFold(u.Status, f.Status) {
			continue
		}
		if f.Search != "" && !utils.ContainsFold(u.Name, f.Search) && !utils.ContainsFold(u.Email, f.Search) {
			continue
		}
		out = append(out, u)
	}
	return out
}

// AdminUserPage is a page of the admin users table
type AdminUserPage struct {
	Items []AdminUser `json:"items"`
	Total int         `json:"total"`
	Page  int         `json:"page"`
	Limit int         `json:"limit"`
}

// GeneralSettings are the marketplace identity settings
type GeneralSettings struct {
	SiteName        string `json:"siteName"`
	SiteDescription string `json:"siteDescription"`
	ContactEmail    string `json:"contactEmail"`
	Currency        string `json:"currency"`
	Language        string `json:"language"`
}

// PaymentSettings configure commissions and accepted payment methods
type PaymentSettings struct {
	CommissionRate        float64 `json:"commissionRate"`
	MinimumPayout         float64 `json:"minimumPayout"`
	MobileMoneyEnabled    bool    `json:"mobileMoneyEnabled"`
	CardEnabled           bool    `json:"cardEnabled"`
	CashOnDeliveryEnabled bool    `json:"cashOnDeliveryEnabled"`
}

// NotificationSettings toggle platform-wide delivery channels
type NotificationSettings struct {
	EmailEnabled bool `json:"emailEnabled"`
	SMSEnabled   bool `json:"smsEnabled"`
	PushEnabled  bool `json:"pushEnabled"`
}

// SecuritySettings configure account security policies
type SecuritySettings struct {
	TwoFactorRequired     bool `json:"twoFactorRequired"`
	SessionTimeoutMinutes int  `json:"sessionTimeoutMinutes"`
	PasswordMinLength     int  `json:"passwordMinLength"`
}

// AdminSettings is the admin settings payload
type AdminSettings struct {
	General       GeneralSettings      `json:"general"`
	Payments      PaymentSettings      `json:"payments"`
	Notifications NotificationSettings `json:"notifications"`
	Security      SecuritySettings     `json:"security"`
}

// Validate checks settings before they are forwarded
func (s AdminSettings) Validate() error {
	var v utils.Validator
	v.Required("general.siteName", s.General.SiteName)
	v.Email("general.contactEmail", s.General.ContactEmail)
	if s.Payments.CommissionRate < 0 || s.Payments.CommissionRate > 100 {
		v.Add("payments.commissionRate", "payments.commissionRate must be between 0 and 100")
	}
	if s.Security.PasswordMinLength != 0 && s.Security.PasswordMinLength < 6 {
		v.Add("security.passwordMinLength", "security.passwordMinLength must be at least 6")
	}
	return v.Err()
}

// SellerOverview holds the seller's headline figures
type SellerOverview struct {
	TotalRevenue      float64 `json:"totalRevenue"`
	TotalOrders       int     `json:"totalOrders"`
	TotalProducts     int     `json:"totalProducts"`
	AverageOrderValue float64 `json:"averageOrderValue"`
	RevenueGrowth     float64 `json:"revenueGrowth"`
	OrdersGrowth      float64 `json:"ordersGrowth"`
}

// TopProduct is a best-selling product
type TopProduct struct {
	ID      FlexibleID `json:"id"`
	Name    string     `json:"name"`
	Sales   int        `json:"sales"`
	Revenue float64    `json:"revenue"`
}

// SellerAnalytics is the current seller analytics shape
type SellerAnalytics struct {
	Overview     SellerOverview `json:"overview"`
	SalesByMonth []MonthlyPoint `json:"salesByMonth"`
	TopProducts  []TopProduct   `json:"topProducts"`
}

// LegacyTrend is a total with growth in the legacy analytics shape
type LegacyTrend struct {
	Total  float64 `json:"total"`
	Growth float64 `json:"growth"`
}

// LegacyMonthly is a month in the legacy analytics shape
type LegacyMonthly struct {
	Month  string  `json:"month"`
	Sales  float64 `json:"sales"`
	Orders int     `json:"orders"`
}

// LegacyBestSeller is a product in the legacy analytics shape
type LegacyBestSeller struct {
	ID      FlexibleID `json:"id"`
	Name    string     `json:"name"`
	Sold    int        `json:"sold"`
	Revenue float64    `json:"revenue"`
}

// LegacySellerAnalytics is the older analytics response still served by some backends
type LegacySellerAnalytics struct {
	Revenue     LegacyTrend        `json:"revenue"`
	Orders      LegacyTrend        `json:"orders"`
	Products    LegacyTrend        `json:"products"`
	Monthly     []LegacyMonthly    `json:"monthly"`
	BestSellers []LegacyBestSeller `json:"bestSellers"`
}

// ToCurrent reshapes legacy analytics into the current shape
func (l LegacySellerAnalytics) ToCurrent() SellerAnalytics {
	out := SellerAnalytics{
		Overview: SellerOverview{
			TotalRevenue:  l.Revenue.Total,
			TotalOrders:   int(l.Orders.Total),
			TotalProducts: int(l.Products.Total),
			RevenueGrowth: l.Revenue.Growth,
			OrdersGrowth:  l.Orders.Growth,
		},
		SalesByMonth: make([]MonthlyPoint, 0, len(l.Monthly)),
		TopProducts:  make([]TopProduct, 0, len(l.BestSellers)),
	}
	if l.Orders.Total > 0 {
		out.Overview.AverageOrderValue = l.Revenue.Total / l.Orders.Total
	}
	for _, m := range l.Monthly {
		out.SalesByMonth = append(out.SalesByMonth, MonthlyPoint{Month: m.Month, Revenue: m.Sales, Orders: m.Orders})
	}
	for _, b := range l.BestSellers {
		out.TopProducts = append(out.TopProducts, TopProduct{ID: b.ID, Name: b.Name, Sales: b.Sold, Revenue: b.Revenue})
	}
	return out
}

// DecodeSellerAnalytics accepts either the current or the legacy analytics shape
func DecodeSellerAnalytics(raw []byte) (SellerAnalytics, error) {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(raw, &keys); err != nil {
		return SellerAnalytics{}, err
	}
	_, hasOverview := keys["overview"]
	_, hasRevenue := keys["revenue"]
	_, hasMonthly := keys["monthly"]
	if !hasOverview && (hasRevenue || hasMonthly) {
		var legacy LegacySellerAnalytics
		if err := json.Unmarshal(raw, &legacy); err != nil {
			return SellerAnalytics{}, err
		}
		return legacy.ToCurrent(), nil
	}
	var current SellerAnalytics
	if err := json.Unmarshal(raw, &current); err != nil {
		return SellerAnalytics{}, err
	}
	return current, nil
}

// StockStatus classifies an inventory row
type StockStatus string

const (
	StockInStock    StockStatus = "in_stock"
	StockLow        StockStatus = "low_stock"
	StockOutOfStock StockStatus = "out_of_stock"
)

// StockStatusFor derives the stock status from quantity and the low-stock threshold
func StockStatusFor(quantity, threshold int) StockStatus {
	switch {
	case quantity <= 0:
		return StockOutOfStock
	case quantity <= threshold:
		return StockLow
	default:
		return StockInStock
	}
}

// InventoryItem is a row in the seller inventory table
type InventoryItem struct {
	ProductID     FlexibleID   `json:"productId"`
	Name          string       `json:"name"`
	Category      string       `json:"category"`
	Quantity      int          `json:"quantity"`
	Unit          string       `json:"unit"`
	Threshold     int          `json:"threshold"`
	Price         float64      `json:"price"`
	Status        StockStatus  `json:"status"`
	LastRestocked FlexibleDate `json:"lastRestocked"`
}

// InventorySummary aggregates the inventory table
type InventorySummary struct {
	TotalProducts int     `json:"totalProducts"`
	LowStock      int     `json:"lowStock"`
	OutOfStock    int     `json:"outOfStock"`
	TotalValue    float64 `json:"totalValue"`
}

// SellerInventory is the seller inventory payload
type SellerInventory struct {
	Summary InventorySummary `json:"summary"`
	Items   []InventoryItem  `json:"items"`
}

// Recompute refreshes each row's status and the summary from the rows
func (inv *SellerInventory) Recompute() {
	summary := InventorySummary{TotalProducts: len(inv.Items)}
	for i := range inv.Items {
		item := &inv.Items[i]
		item.Status = StockStatusFor(item.Quantity, item.Threshold)
		switch item.Status {
		case StockLow:
			summary.LowStock++
		case StockOutOfStock:
			summary.OutOfStock++
		}
		summary.TotalValue += item.Price * float64(item.Quantity)
	}
	inv.Summary = summary
}

// StockUpdate is the body of an inventory stock edit
type StockUpdate struct {
	Quantity int `json:"quantity"`
}

// OrderStats counts seller orders per fulfilment stage
type OrderStats struct {
	Total      int `json:"total"`
	Pending    int `json:"pending"`
	InProgress int `json:"inProgress"`
	Delivered  int `json:"delivered"`
	Cancelled  int `json:"cancelled"`
}

// CountOrders computes the order stats from a list of orders
func CountOrders(orders []Order) OrderStats {
	stats := OrderStats{Total: len(orders)}
	for _, o := range orders {
		display, _ := DisplayFor(o.Status)
		switch display {
		case DisplayPending:
			stats.Pending++
		case DisplayInProgress:
			stats.InProgress++
		case DisplayDelivered:
			stats.Delivered++
		case DisplayCancelled:
			stats.Cancelled++
		}
	}
	return stats
}

// SellerOrders is the seller orders payload
type SellerOrders struct {
	Stats  OrderStats `json:"stats"`
	Orders []Order    `json:"orders"`
}

// StatusUpdate is the body of a seller order status change
type StatusUpdate struct {
	Status string `json:"status"`
}

// PaymentBalance is the seller payout balance
type PaymentBalance struct {
	Available      float64 `json:"available"`
	Pending        float64 `json:"pending"`
	TotalEarned    float64 `json:"totalEarned"`
	TotalWithdrawn float64 `json:"totalWithdrawn"`
}

// Transaction is a seller ledger entry
type Transaction struct {
	ID          FlexibleID   `json:"id"`
	Date        FlexibleDate `json:"date"`
	Type        string       `json:"type"`
	Amount      float64      `json:"amount"`
	Status      string       `json:"status"`
	Description string       `json:"description"`
	OrderID     string       `json:"orderId,omitempty"`
}

// SellerPayments is the seller payments payload
type SellerPayments struct {
	Balance      PaymentBalance `json:"balance"`
	Transactions []Transaction  `json:"transactions"`
}

// SalesSummary is the sales block of a seller report
type SalesSummary struct {
	Total   float64 `json:"total"`
	Count   int     `json:"count"`
	Average float64 `json:"average"`
}

// CustomerSummary is the customers block of a seller report
type CustomerSummary struct {
	Total     int `json:"total"`
	New       int `json:"new"`
	Returning int `json:"returning"`
}

// SellerReports is the seller reports payload
type SellerReports struct {
	Period        string          `json:"period"`
	Sales         SalesSummary    `json:"sales"`
	Customers     CustomerSummary `json:"customers"`
	Monthly       []MonthlyPoint  `json:"monthly"`
	TopCategories []CategoryShare `json:"topCategories"`
	TopProducts   []TopProduct    `json:"topProducts"`
}
