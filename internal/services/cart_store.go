package services

import (
	"errors"
	"sync"

	"agrimarket-backend/internal/models"
)

var (
	ErrInvalidQuantity = errors.New("quantity must be greater than zero")
	ErrOutOfStock      = errors.New("product is out of stock")
	ErrCartItemMissing = errors.New("product is not in the cart")
)

// CartEvent is delivered to subscribers after every cart mutation
type CartEvent struct {
	OwnerID string            `json:"ownerId"`
	Items   []models.CartItem `json:"items"`
	Totals  models.CartTotals `json:"totals"`
}

// CartSubscriber receives cart events
type CartSubscriber func(CartEvent)

// CartStore holds every user's cart in memory. Writers are serialized by one
// mutex; subscribers run after the lock is released.
type CartStore struct {
	mu          sync.Mutex
	carts       map[string][]models.CartItem
	rates       models.ShippingRates
	subscribers map[int]CartSubscriber
	nextSubID   int
}

// NewCartStore creates an empty cart store
func NewCartStore(rates models.ShippingRates) *CartStore {
	return &CartStore{
		carts:       make(map[string][]models.CartItem),
		rates:       rates,
		subscribers: make(map[int]CartSubscriber),
	}
}

// Rates returns the shipping rates used for totals
func (s *CartStore) Rates() models.ShippingRates {
	return s.rates
}

// Subscribe registers fn for cart events and returns a function that removes it
func (s *CartStore) Subscribe(fn CartSubscriber) func() {
	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subscribers, id)
		s.mu.Unlock()
	}
}

// Items returns a copy of the owner's cart
func (s *CartStore) Items(ownerID string) []models.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyItems(s.carts[ownerID])
}

// View returns the cart with totals for the chosen shipping method
func (s *CartStore) View(ownerID string, method models.ShippingMethod) models.CartView {
	items := s.Items(ownerID)
	return models.CartView{Items: items, Totals: models.ComputeTotals(items, s.rates, method)}
}

// Totals computes the owner's cart totals
func (s *CartStore) Totals(ownerID string, method models.ShippingMethod) models.CartTotals {
	return models.ComputeTotals(s.Items(ownerID), s.rates, method)
}

// Add puts quantity units of product in the cart, merging with an existing line
func (s *CartStore) Add(ownerID string, product models.Product, quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	if !product.InStock() {
		return ErrOutOfStock
	}

	return s.mutate(ownerID, func(items []models.CartItem) ([]models.CartItem, error) {
		for i := range items {
			if items[i].Product.ID == product.ID {
				items[i].Quantity += quantity
				items[i].Product = product
				return items, nil
			}
		}
		return append(items, models.CartItem{Product: product, Quantity: quantity}), nil
	})
}

// SetQuantity replaces a line's quantity; zero or less removes the line
func (s *CartStore) SetQuantity(ownerID string, productID models.FlexibleID, quantity int) error {
	return s.mutate(ownerID, func(items []models.CartItem) ([]models.CartItem, error) {
		for i := range items {
			if items[i].Product.ID != productID {
				continue
			}
			if quantity <= 0 {
				return append(items[:i], items[i+1:]...), nil
			}
			items[i].Quantity = quantity
			return items, nil
		}
		return items, ErrCartItemMissing
	})
}

// Remove drops a product from the cart
func (s *CartStore) Remove(ownerID string, productID models.FlexibleID) error {
	return s.SetQuantity(ownerID, productID, 0)
}

// Clear empties the owner's cart
func (s *CartStore) Clear(ownerID string) {
	_ = s.mutate(ownerID, func([]models.CartItem) ([]models.CartItem, error) {
		return nil, nil
	})
}

// RemoveSubmitted takes the submitted lines out of the cart. Units added after
// the snapshot was taken stay in the cart.
func (s *CartStore) RemoveSubmitted(ownerID string, submitted []models.CartItem) {
	sent := make(map[models.FlexibleID]int, len(submitted))
	for _, item := range submitted {
		sent[item.Product.ID] += item.Quantity
	}
	_ = s.mutate(ownerID, func(items []models.CartItem) ([]models.CartItem, error) {
		kept := items[:0]
		for _, item := range items {
			item.Quantity -= sent[item.Product.ID]
			if item.Quantity > 0 {
				kept = append(kept, item)
			}
		}
		return kept, nil
	})
}

func (s *CartStore) mutate(ownerID string, fn func([]models.CartItem) ([]models.CartItem, error)) error {
	s.mu.Lock()
	items, err := fn(copyItems(s.carts[ownerID]))
	if err != nil {
		s.mu.Unlock()
		return err
	}
	if len(items) == 0 {
		delete(s.carts, ownerID)
	} else {
		s.carts[ownerID] = items
	}
	event := CartEvent{OwnerID: ownerID, Items: copyItems(items), Totals: models.ComputeTotals(items, s.rates, models.ShippingStandard)}
	subscribers := make([]CartSubscriber, 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		subscribers = append(subscribers, fn)
	}
	s.mu.Unlock()

	for _, notify := range subscribers {
		notify(event)
	}
	return nil
}

func copyItems(items []models.CartItem) []models.CartItem {
	if len(items) == 0 {
		return []models.CartItem{}
	}
	out := make([]models.CartItem, len(items))
	copy(out, items)
	return out
}
