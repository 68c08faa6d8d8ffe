package models

import (
	"github.com/shopspring/decimal"
)

// ShippingMethod selects the delivery speed at checkout
type ShippingMethod string

const (
	ShippingStandard ShippingMethod = "standard"
	ShippingExpress  ShippingMethod = "express"
)

// ShippingRates holds the flat shipping cost per method
type ShippingRates struct {
	Standard decimal.Decimal
	Express  decimal.Decimal
}

// Cost returns the shipping cost for a method; unknown methods cost the standard rate
func (r ShippingRates) Cost(method ShippingMethod) decimal.Decimal {
	if method == ShippingExpress {
		return r.Express
	}
	return r.Standard
}

// CartItem represents a product and quantity held in a cart
type CartItem struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

// LineTotal returns price × quantity
func (ci CartItem) LineTotal() decimal.Decimal {
	return decimal.NewFromFloat(ci.Product.Price).Mul(decimal.NewFromInt(int64(ci.Quantity)))
}

// CartTotals are derived from the cart contents, never stored
type CartTotals struct {
	TotalItems        int             `json:"totalItems"`
	TotalPrice        decimal.Decimal `json:"totalPrice"`
	ShippingMethod    ShippingMethod  `json:"shippingMethod"`
	ShippingCost      decimal.Decimal `json:"shippingCost"`
	TotalWithShipping decimal.Decimal `json:"totalWithShipping"`
}

// ComputeTotals sums line totals and adds the shipping cost for the chosen method
func ComputeTotals(items []CartItem, rates ShippingRates, method ShippingMethod) CartTotals {
	if method != ShippingExpress {
		method = ShippingStandard
	}
	totals := CartTotals{
		TotalPrice:     decimal.Zero,
		ShippingMethod: method,
	}
	for _, item := range items {
		totals.TotalItems += item.Quantity
		totals.TotalPrice = totals.TotalPrice.Add(item.LineTotal())
	}
	totals.ShippingCost = rates.Cost(method)
	totals.TotalWithShipping = totals.TotalPrice.Add(totals.ShippingCost)
	return totals
}

// CartView is the cart as returned to the storefront
type CartView struct {
	Items  []CartItem `json:"items"`
	Totals CartTotals `json:"totals"`
}
