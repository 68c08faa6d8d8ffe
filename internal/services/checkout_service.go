package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"agrimarket-backend/internal/metrics"
	"agrimarket-backend/internal/models"
	"agrimarket-backend/internal/upstream"
	"agrimarket-backend/internal/utils"
)

// CheckoutGenericMessage is shown when the payment API gives no usable message
const CheckoutGenericMessage = "Payment could not be initiated. Please try again."

var (
	ErrEmptyCart          = errors.New("cart is empty")
	ErrMissingPaymentURL  = errors.New("payment api response has no payment_url")
	ErrCheckoutInProgress = errors.New("a checkout with this idempotency key is in progress")
)

// Checkout attempt states
const (
	AttemptPending   = "pending"
	AttemptSucceeded = "succeeded"
	AttemptFailed    = "failed"
)

// CheckoutAttempt is a recorded hand-off to the payment API
type CheckoutAttempt struct {
	OrderID        string          `json:"orderId"`
	UserID         string          `json:"userId"`
	IdempotencyKey string          `json:"idempotencyKey,omitempty"`
	Amount         decimal.Decimal `json:"amount"`
	PaymentMethod  string          `json:"paymentMethod"`
	Status         string          `json:"status"`
	PaymentURL     string          `json:"paymentUrl,omitempty"`
	Error          string          `json:"error,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// CheckoutService builds the payment request from the cart and hands the buyer off to the gateway
type CheckoutService struct {
	db            *sql.DB
	client        *upstream.Client
	carts         *CartStore
	notifications *NotificationService
	logger        *zap.Logger
	group         singleflight.Group
	newOrderID    func() string
}

// NewCheckoutService creates a new checkout service. notifications may be nil.
func NewCheckoutService(db *sql.DB, client *upstream.Client, carts *CartStore, notifications *NotificationService, logger *zap.Logger) *CheckoutService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CheckoutService{
		db:            db,
		client:        client,
		carts:         carts,
		notifications: notifications,
		logger:        logger,
		newOrderID: func() string {
			return "order_" + uuid.New().String()
		},
	}
}

// Checkout submits the user's cart to POST {API}/checkout. An empty cart fails
// with ErrEmptyCart before any request is made. Concurrent submits from the same
// user share one request; a repeated idempotency key replays the recorded result.
// On success only the submitted lines leave the cart.
func (s *CheckoutService) Checkout(ctx context.Context, userID, upstreamToken, idempotencyKey string, req models.CheckoutRequest) (*models.CheckoutResult, error) {
	// A retried key replays even though the cart is now empty
	if idempotencyKey != "" {
		result, err := s.replay(userID, idempotencyKey)
		if err != nil || result != nil {
			return result, err
		}
	}

	if len(s.carts.Items(userID)) == 0 {
		metrics.CheckoutOutcomes.WithLabelValues("empty_cart").Inc()
		return nil, ErrEmptyCart
	}
	if err := req.Validate(); err != nil {
		metrics.CheckoutOutcomes.WithLabelValues("invalid").Inc()
		return nil, err
	}

	key := userID + "\x00" + idempotencyKey
	v, err, _ := s.group.Do(key, func() (interface{}, error) {
		return s.submit(context.WithoutCancel(ctx), userID, upstreamToken, idempotencyKey, req)
	})
	if err != nil {
		return nil, err
	}
	result := *v.(*models.CheckoutResult)
	return &result, nil
}

func (s *CheckoutService) replay(userID, idempotencyKey string) (*models.CheckoutResult, error) {
	attempt, err := s.attemptByKey(userID, idempotencyKey)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	switch attempt.Status {
	case AttemptSucceeded:
		metrics.CheckoutOutcomes.WithLabelValues("replayed").Inc()
		return &models.CheckoutResult{OrderID: attempt.OrderID, PaymentURL: attempt.PaymentURL, Amount: attempt.Amount, Replayed: true}, nil
	case AttemptPending:
		return nil, ErrCheckoutInProgress
	default:
		// A failed attempt frees the key for a retry
		if _, err := s.db.Exec("DELETE FROM checkout_attempts WHERE order_id = ?", attempt.OrderID); err != nil {
			return nil, fmt.Errorf("failed to release idempotency key: %w", err)
		}
		return nil, nil
	}
}

func (s *CheckoutService) submit(ctx context.Context, userID, upstreamToken, idempotencyKey string, req models.CheckoutRequest) (*models.CheckoutResult, error) {
	items := s.carts.Items(userID)
	if len(items) == 0 {
		metrics.CheckoutOutcomes.WithLabelValues("empty_cart").Inc()
		return nil, ErrEmptyCart
	}

	totals := models.ComputeTotals(items, s.carts.Rates(), req.ShippingMethod)
	orderID := s.newOrderID()
	payload := models.NewCheckoutPayload(orderID, userID, req, items, totals)

	if err := s.recordAttempt(orderID, userID, idempotencyKey, payload); err != nil {
		return nil, err
	}

	var resp models.CheckoutResponse
	err := s.client.PostJSON(ctx, "/checkout", upstreamToken, payload, &resp)
	if err == nil && resp.PaymentURL == "" {
		err = ErrMissingPaymentURL
	}
	if err != nil {
		metrics.CheckoutOutcomes.WithLabelValues("failed").Inc()
		s.logger.Warn("checkout failed",
			zap.String("orderId", orderID),
			zap.String("userId", userID),
			zap.Error(err))
		s.finishAttempt(orderID, AttemptFailed, "", upstream.UserMessage(err, err.Error()))
		return nil, err
	}

	s.finishAttempt(orderID, AttemptSucceeded, resp.PaymentURL, "")
	s.carts.RemoveSubmitted(userID, items)
	metrics.CheckoutOutcomes.WithLabelValues("success").Inc()

	s.logger.Info("checkout initiated",
		zap.String("orderId", orderID),
		zap.String("userId", userID),
		zap.String("amount", payload.Amount.String()))

	if s.notifications != nil {
		_, nerr := s.notifications.Create(userID, models.NotificationTypeOrder, models.PriorityMedium,
			"Commande en attente de paiement",
			fmt.Sprintf("Votre commande %s de %s attend la confirmation du paiement.", orderID, utils.FormatCurrency(payload.Amount, "FCFA")),
			nil)
		if nerr != nil {
			s.logger.Warn("failed to create checkout notification", zap.Error(nerr))
		}
	}

	return &models.CheckoutResult{OrderID: orderID, PaymentURL: resp.PaymentURL, Amount: payload.Amount}, nil
}

func (s *CheckoutService) recordAttempt(orderID, userID, idempotencyKey string, payload models.CheckoutPayload) error {
	now := time.Now().UTC()
	query := `
		INSERT INTO checkout_attempts (
			order_id, user_id, idempotency_key, amount, payment_method, status, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.Exec(query, orderID, userID, idempotencyKey, payload.Amount.String(), payload.PaymentMethod, AttemptPending, now, now)
	if err != nil {
		return fmt.Errorf("failed to record checkout attempt: %w", err)
	}
	return nil
}

func (s *CheckoutService) finishAttempt(orderID, status, paymentURL, message string) {
	query := "UPDATE checkout_attempts SET status = ?, payment_url = ?, error = ?, updated_at = ? WHERE order_id = ?"
	if _, err := s.db.Exec(query, status, paymentURL, message, time.Now().UTC(), orderID); err != nil {
		s.logger.Error("failed to update checkout attempt", zap.String("orderId", orderID), zap.Error(err))
	}
}

const attemptColumns = `order_id, user_id, idempotency_key, amount, payment_method, status, payment_url, error, created_at, updated_at`

func scanAttempt(scanner interface{ Scan(...interface{}) error }) (*CheckoutAttempt, error) {
	var a CheckoutAttempt
	var amount string
	if err := scanner.Scan(&a.OrderID, &a.UserID, &a.IdempotencyKey, &amount, &a.PaymentMethod,
		&a.Status, &a.PaymentURL, &a.Error, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	parsed, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("invalid stored amount %q: %w", amount, err)
	}
	a.Amount = parsed
	return &a, nil
}

func (s *CheckoutService) attemptByKey(userID, idempotencyKey string) (*CheckoutAttempt, error) {
	row := s.db.QueryRow("SELECT "+attemptColumns+" FROM checkout_attempts WHERE user_id = ? AND idempotency_key = ?", userID, idempotencyKey)
	return scanAttempt(row)
}

// Attempts lists the user's checkout attempts, newest first
func (s *CheckoutService) Attempts(userID string, limit int) ([]*CheckoutAttempt, error) {
	rows, err := s.db.Query("SELECT "+attemptColumns+" FROM checkout_attempts WHERE user_id = ? ORDER BY created_at DESC LIMIT ?", userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list checkout attempts: %w", err)
	}
	defer rows.Close()

	attempts := []*CheckoutAttempt{}
	for rows.Next() {
		attempt, err := scanAttempt(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan checkout attempt: %w", err)
		}
		attempts = append(attempts, attempt)
	}
	return attempts, rows.Err()
}

// FailStaleAttempts marks attempts still pending since before cutoff as failed,
// which frees their idempotency keys
func (s *CheckoutService) FailStaleAttempts(cutoff time.Time) (int64, error) {
	result, err := s.db.Exec("UPDATE checkout_attempts SET status = ?, error = ?, updated_at = ? WHERE status = ? AND updated_at < ?",
		AttemptFailed, "abandoned", time.Now().UTC(), AttemptPending, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to release stale checkout attempts: %w", err)
	}
	return result.RowsAffected()
}
