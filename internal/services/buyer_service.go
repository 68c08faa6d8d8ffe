package services

import (
	"context"
	"net/url"

	"github.com/shopspring/decimal"

	"agrimarket-backend/internal/models"
	"agrimarket-backend/internal/upstream"
	"agrimarket-backend/internal/utils"
)

// BuyerService backs the buyer dashboard
type BuyerService struct {
	client   *upstream.Client
	currency string
}

// NewBuyerService creates a new buyer service
func NewBuyerService(client *upstream.Client, currency string) *BuyerService {
	return &BuyerService{client: client, currency: currency}
}

// View decorates an order with its buyer label, badge and formatted figures
func (s *BuyerService) View(o models.Order) models.OrderView {
	display, ok := models.DisplayFor(o.Status)
	if !ok {
		display = models.DisplayPending
	}
	badge, _ := models.Badge(display)
	return models.OrderView{
		Order:         o,
		DisplayStatus: display,
		Badge:         badge,
		DateLabel:     utils.FormatDateFR(o.Date.Time),
		TotalLabel:    utils.FormatCurrency(decimal.NewFromFloat(o.Total), s.currency),
		ItemCount:     o.UnitCount(),
	}
}

// Orders lists the buyer's orders, optionally narrowed to one display status
func (s *BuyerService) Orders(ctx context.Context, token, status string) ([]models.OrderView, error) {
	var orders []models.Order
	if err := s.client.GetJSON(ctx, "/orders", token, &orders); err != nil {
		return nil, err
	}

	views := make([]models.OrderView, 0, len(orders))
	for _, o := range orders {
		views = append(views, s.View(o))
	}
	return models.FilterOrdersByDisplay(views, status), nil
}

// Order fetches a single order
func (s *BuyerService) Order(ctx context.Context, token, orderID string) (*models.OrderView, error) {
	var order models.Order
	if err := s.client.GetJSON(ctx, "/orders/"+url.PathEscape(orderID), token, &order); err != nil {
		return nil, err
	}
	view := s.View(order)
	return &view, nil
}
