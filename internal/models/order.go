package models

import (
	"strings"
)

// OrderStatus is the fulfilment status used by sellers and the marketplace API
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusPreparing OrderStatus = "preparing"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// DisplayStatus is the closed set of labels buyers see
type DisplayStatus string

const (
	DisplayDelivered  DisplayStatus = "Livré"
	DisplayInProgress DisplayStatus = "En cours"
	DisplayPending    DisplayStatus = "En attente"
	DisplayCancelled  DisplayStatus = "Annulé"
)

// BadgeVariant names the visual badge used for a display status
type BadgeVariant string

const (
	BadgeDefault     BadgeVariant = "default"
	BadgeSecondary   BadgeVariant = "secondary"
	BadgeOutline     BadgeVariant = "outline"
	BadgeDestructive BadgeVariant = "destructive"
)

// DisplayStatuses lists every buyer-facing status
var DisplayStatuses = []DisplayStatus{DisplayDelivered, DisplayInProgress, DisplayPending, DisplayCancelled}

var badgeByDisplay = map[DisplayStatus]BadgeVariant{
	DisplayDelivered:  BadgeDefault,
	DisplayInProgress: BadgeSecondary,
	DisplayPending:    BadgeOutline,
	DisplayCancelled:  BadgeDestructive,
}

var displayByStatus = map[OrderStatus]DisplayStatus{
	OrderStatusPending:   DisplayPending,
	OrderStatusConfirmed: DisplayInProgress,
	OrderStatusPreparing: DisplayInProgress,
	OrderStatusShipped:   DisplayInProgress,
	OrderStatusDelivered: DisplayDelivered,
	OrderStatusCancelled: DisplayCancelled,
}

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:   {OrderStatusConfirmed, OrderStatusCancelled},
	OrderStatusConfirmed: {OrderStatusPreparing, OrderStatusCancelled},
	OrderStatusPreparing: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:   {OrderStatusDelivered},
}

// Badge maps a display status to its badge variant
func Badge(status DisplayStatus) (BadgeVariant, bool) {
	variant, ok := badgeByDisplay[status]
	return variant, ok
}

// DisplayFor accepts either a buyer label or a fulfilment status and returns the buyer label
func DisplayFor(status string) (DisplayStatus, bool) {
	for _, d := range DisplayStatuses {
		if status == string(d) {
			return d, true
		}
	}
	d, ok := displayByStatus[OrderStatus(strings.ToLower(strings.TrimSpace(status)))]
	return d, ok
}

// IsValid reports whether s is a known fulfilment status
func (s OrderStatus) IsValid() bool {
	_, ok := displayByStatus[s]
	return ok
}

// IsTerminal reports whether no further transition is possible
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// CanTransition checks the seller-side fulfilment flow
func CanTransition(from, to OrderStatus) bool {
	for _, next := range orderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// NextStatuses returns the statuses reachable from s
func NextStatuses(s OrderStatus) []OrderStatus {
	return append([]OrderStatus(nil), orderTransitions[s]...)
}

// OrderItem represents an item within an order
type OrderItem struct {
	ProductID FlexibleID `json:"productId"`
	Name      string     `json:"name"`
	Quantity  int        `json:"quantity"`
	Price     float64    `json:"price"`
	Image     string     `json:"image,omitempty"`
}

// Order represents an order as returned by the marketplace API
type Order struct {
	ID              FlexibleID     `json:"id"`
	Date            FlexibleDate   `json:"date"`
	Status          string         `json:"status"`
	Items           []OrderItem    `json:"items"`
	Seller          *ProductSeller `json:"seller,omitempty"`
	Buyer           *ProductSeller `json:"buyer,omitempty"`
	ShippingAddress string         `json:"shippingAddress"`
	PaymentMethod   string         `json:"paymentMethod"`
	TrackingNumber  string         `json:"trackingNumber,omitempty"`
	Total           float64        `json:"total"`
}

// OrderView decorates an order with its buyer label and badge
type OrderView struct {
	Order
	DisplayStatus DisplayStatus `json:"displayStatus"`
	Badge         BadgeVariant  `json:"badge"`
	DateLabel     string        `json:"dateLabel"`
	TotalLabel    string        `json:"totalLabel"`
	ItemCount     int           `json:"itemCount"`
}

// UnitCount returns the number of units in the order
func (o *Order) UnitCount() int {
	total := 0
	for _, item := range o.Items {
		total += item.Quantity
	}
	return total
}

// FilterOrdersByDisplay keeps orders whose buyer label equals status; empty or "all" keeps everything
func FilterOrdersByDisplay(orders []OrderView, status string) []OrderView {
	if status == "" || status == "all" {
		return orders
	}
	want, ok := DisplayFor(status)
	if !ok {
		return []OrderView{}
	}
	out := make([]OrderView, 0, len(orders))
	for _, o := range orders {
		if o.DisplayStatus == want {
			out = append(out, o)
		}
	}
	return out
}

// FilterOrdersByStatus keeps orders in the given fulfilment status; empty or "all" keeps everything
func FilterOrdersByStatus(orders []Order, status string) []Order {
	if status == "" || status == "all" {
		return orders
	}
	out := make([]Order, 0, len(orders))
	for _, o := range orders {
		if strings.EqualFold(o.Status, status) {
			out = append(out, o)
		}
	}
	return out
}
