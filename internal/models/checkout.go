package models

import (
	"encoding/json"

	"github.com/shopspring/decimal"

	"agrimarket-backend/internal/utils"
)

// Payment methods accepted at checkout
const (
	PaymentMobileMoney    = "mobile_money"
	PaymentCard           = "card"
	PaymentCashOnDelivery = "cash_on_delivery"
)

// CheckoutRequest is the checkout form as submitted by the buyer
type CheckoutRequest struct {
	FullName       string         `json:"fullName"`
	Email          string         `json:"email"`
	Phone          string         `json:"phone"`
	Address        string         `json:"address"`
	City           string         `json:"city"`
	Region         string         `json:"region"`
	PostalCode     string         `json:"postalCode"`
	Notes          string         `json:"notes"`
	PaymentMethod  string         `json:"paymentMethod"`
	ShippingMethod ShippingMethod `json:"shippingMethod"`
}

// Validate checks the required checkout fields
func (r CheckoutRequest) Validate() error {
	var v utils.Validator
	v.Required("fullName", r.FullName)
	v.Required("phone", r.Phone)
	v.Phone("phone", r.Phone)
	v.Email("email", r.Email)
	v.Required("address", r.Address)
	v.Required("city", r.City)
	v.OneOf("paymentMethod", r.PaymentMethod, PaymentMobileMoney, PaymentCard, PaymentCashOnDelivery)
	v.OneOf("shippingMethod", string(r.ShippingMethod), string(ShippingStandard), string(ShippingExpress))
	return v.Err()
}

// ShippingInfo is the shipping block sent to the payment API
type ShippingInfo struct {
	FullName       string `json:"full_name"`
	Email          string `json:"email,omitempty"`
	Phone          string `json:"phone"`
	Address        string `json:"address"`
	City           string `json:"city"`
	Region         string `json:"region,omitempty"`
	PostalCode     string `json:"postal_code,omitempty"`
	Notes          string `json:"notes,omitempty"`
	ShippingMethod string `json:"shipping_method"`
	ShippingCost   string `json:"shipping_cost"`
}

// CheckoutItem is a line in the checkout payload
type CheckoutItem struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	Price     string `json:"price"`
}

// CheckoutPayload is the body of POST {API}/checkout
type CheckoutPayload struct {
	Amount        decimal.Decimal `json:"amount"`
	OrderID       string          `json:"order_id"`
	UserID        string          `json:"user_id"`
	ProductID     string          `json:"product_id"`
	ShippingInfo  ShippingInfo    `json:"shipping_info"`
	PaymentMethod string          `json:"payment_method"`
	Items         []CheckoutItem  `json:"items"`
}

// MarshalJSON sends amount as a JSON number, the way the payment API expects it
func (p CheckoutPayload) MarshalJSON() ([]byte, error) {
	type wire CheckoutPayload
	return json.Marshal(struct {
		wire
		Amount json.Number `json:"amount"`
	}{wire: wire(p), Amount: json.Number(p.Amount.String())})
}

// CheckoutResponse is the payment API's answer
type CheckoutResponse struct {
	PaymentURL string `json:"payment_url"`
}

// CheckoutResult is what the storefront needs to redirect the buyer
type CheckoutResult struct {
	OrderID    string          `json:"orderId"`
	PaymentURL string          `json:"paymentUrl"`
	Amount     decimal.Decimal `json:"amount"`
	Replayed   bool            `json:"replayed,omitempty"`
}

// NewCheckoutPayload assembles the payment request from the form and the cart
func NewCheckoutPayload(orderID, userID string, req CheckoutRequest, items []CartItem, totals CartTotals) CheckoutPayload {
	payload := CheckoutPayload{
		Amount:        totals.TotalWithShipping,
		OrderID:       orderID,
		UserID:        userID,
		PaymentMethod: req.PaymentMethod,
		ShippingInfo: ShippingInfo{
			FullName:       req.FullName,
			Email:          req.Email,
			Phone:          req.Phone,
			Address:        req.Address,
			City:           req.City,
			Region:         req.Region,
			PostalCode:     req.PostalCode,
			Notes:          req.Notes,
			ShippingMethod: string(totals.ShippingMethod),
			ShippingCost:   totals.ShippingCost.String(),
		},
		Items: make([]CheckoutItem, 0, len(items)),
	}
	if len(items) > 0 {
		payload.ProductID = items[0].Product.ID.String()
	}
	for _, item := range items {
		payload.Items = append(payload.Items, CheckoutItem{
			ProductID: item.Product.ID.String(),
			Name:      item.Product.Name,
			Quantity:  item.Quantity,
			Price:     decimal.NewFromFloat(item.Product.Price).String(),
		})
	}
	return payload
}
