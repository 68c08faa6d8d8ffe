package services

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"agrimarket-backend/internal/fallback"
	"agrimarket-backend/internal/models"
	"agrimarket-backend/internal/utils"
)

var ErrNotificationNotFound = errors.New("notification not found")

// NotificationPublisher is told the new unread count after every change
type NotificationPublisher func(userID string, unread int)

// NotificationService handles notifications and notification preferences
type NotificationService struct {
	db        *sql.DB
	logger    *zap.Logger
	publisher NotificationPublisher
	now       func() time.Time
}

// NewNotificationService creates a new notification service
func NewNotificationService(db *sql.DB, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{db: db, logger: logger, now: time.Now}
}

// SetPublisher registers the function told about unread count changes
func (s *NotificationService) SetPublisher(publisher NotificationPublisher) {
	s.publisher = publisher
}

func (s *NotificationService) publish(userID string) {
	if s.publisher == nil {
		return
	}
	unread, err := s.UnreadCount(userID)
	if err != nil {
		s.logger.Warn("failed to count unread notifications", zap.String("userId", userID), zap.Error(err))
		return
	}
	s.publisher(userID, unread)
}

// Create creates a new unread notification
func (s *NotificationService) Create(userID string, notifType models.NotificationType, priority models.NotificationPriority, title, message string, sender *string) (*models.Notification, error) {
	if !models.IsValidNotificationType(notifType) {
		return nil, fmt.Errorf("invalid notification type: %s", notifType)
	}

	notification := models.Notification{
		ID:        uuid.New().String(),
		UserID:    userID,
		Type:      notifType,
		Status:    models.NotificationUnread,
		Priority:  priority,
		Title:     title,
		Message:   message,
		Sender:    sender,
		CreatedAt: s.now().UTC(),
	}
	if err := s.insert(s.db, notification); err != nil {
		return nil, err
	}

	// the live push respects the user's push preferences and quiet hours
	if s.publisher != nil {
		deliver, err := s.ShouldDeliver(userID, models.ChannelPush, notification)
		if err != nil {
			s.logger.Warn("failed to read notification preferences", zap.String("userId", userID), zap.Error(err))
		}
		if deliver {
			s.publish(userID)
		}
	}
	return &notification, nil
}

type execer interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
}

func (s *NotificationService) insert(db execer, n models.Notification) error {
	query := `
		INSERT INTO notifications (
			id, user_id, type, status, priority, title, message, sender, link, created_at, read_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := db.Exec(query,
		n.ID, n.UserID, n.Type, n.Status, n.Priority, n.Title, n.Message,
		n.Sender, n.Link, n.CreatedAt, n.ReadAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

// SeedDemo gives a user the demo notifications and default preferences, unless
// they already have notifications. It returns how many notifications were added.
func (s *NotificationService) SeedDemo(userID string) (int, error) {
	var existing int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM notifications WHERE user_id = ?", userID).Scan(&existing); err != nil {
		return 0, fmt.Errorf("failed to count notifications: %w", err)
	}
	if existing > 0 {
		return 0, nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	demo := fallback.DemoNotifications(userID, s.now().UTC())
	for _, n := range demo {
		n.ID = uuid.New().String()
		if err := s.insert(tx, n); err != nil {
			return 0, err
		}
	}
	if err := s.savePreferences(tx, userID, models.DefaultNotificationPreferences()); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit demo notifications: %w", err)
	}

	s.publish(userID)
	return len(demo), nil
}

func (s *NotificationService) all(userID string) ([]models.Notification, error) {
	query := `
		SELECT id, user_id, type, status, priority, title, message, sender, link, created_at, read_at
		FROM notifications
		WHERE user_id = ?
		ORDER BY created_at DESC
	`
	rows, err := s.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get notifications: %w", err)
	}
	defer rows.Close()

	notifications := []models.Notification{}
	for rows.Next() {
		var n models.Notification
		var sender, link sql.NullString
		var readAt sql.NullTime
		err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Status, &n.Priority, &n.Title, &n.Message,
			&sender, &link, &n.CreatedAt, &readAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		if sender.Valid {
			n.Sender = &sender.String
		}
		if link.Valid {
			n.Link = &link.String
		}
		if readAt.Valid {
			n.ReadAt = &readAt.Time
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

// List returns the notifications selected by filter along with the tab counters
func (s *NotificationService) List(userID string, filter models.NotificationFilter, limit, offset int) (*models.NotificationPage, error) {
	notifications, err := s.all(userID)
	if err != nil {
		return nil, err
	}

	filtered := filter.Apply(notifications)
	page := &models.NotificationPage{
		Total:  len(filtered),
		Counts: models.CountNotifications(notifications),
		Limit:  limit,
		Offset: offset,
	}

	if offset > len(filtered) {
		offset = len(filtered)
	}
	end := len(filtered)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	page.Items = filtered[offset:end]
	return page, nil
}

// UnreadCount returns how many unread notifications the user has
func (s *NotificationService) UnreadCount(userID string) (int, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM notifications WHERE user_id = ? AND status = ?", userID, models.NotificationUnread).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get unread count: %w", err)
	}
	return count, nil
}

func (s *NotificationService) setStatus(userID, notificationID string, status models.NotificationStatus) error {
	var readAt interface{}
	if status == models.NotificationRead {
		readAt = s.now().UTC()
	}

	result, err := s.db.Exec("UPDATE notifications SET status = ?, read_at = ? WHERE id = ? AND user_id = ?",
		status, readAt, notificationID, userID)
	if err != nil {
		return fmt.Errorf("failed to update notification: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotificationNotFound
	}

	s.publish(userID)
	return nil
}

// MarkAsRead marks a notification as read
func (s *NotificationService) MarkAsRead(userID, notificationID string) error {
	return s.setStatus(userID, notificationID, models.NotificationRead)
}

// MarkAsUnread marks a notification as unread
func (s *NotificationService) MarkAsUnread(userID, notificationID string) error {
	return s.setStatus(userID, notificationID, models.NotificationUnread)
}

// Toggle flips a notification between read and unread and returns the new status
func (s *NotificationService) Toggle(userID, notificationID string) (models.NotificationStatus, error) {
	var current models.NotificationStatus
	err := s.db.QueryRow("SELECT status FROM notifications WHERE id = ? AND user_id = ?", notificationID, userID).Scan(&current)
	if err == sql.ErrNoRows {
		return "", ErrNotificationNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get notification: %w", err)
	}

	next := models.NotificationRead
	if current == models.NotificationRead {
		next = models.NotificationUnread
	}
	if err := s.setStatus(userID, notificationID, next); err != nil {
		return "", err
	}
	return next, nil
}

// MarkAllAsRead marks all notifications as read and returns how many changed
func (s *NotificationService) MarkAllAsRead(userID string) (int64, error) {
	result, err := s.db.Exec("UPDATE notifications SET status = ?, read_at = ? WHERE user_id = ? AND status = ?",
		models.NotificationRead, s.now().UTC(), userID, models.NotificationUnread)
	if err != nil {
		return 0, fmt.Errorf("failed to mark all notifications as read: %w", err)
	}
	changed, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check rows affected: %w", err)
	}

	s.publish(userID)
	return changed, nil
}

// Delete deletes a notification
func (s *NotificationService) Delete(userID, notificationID string) error {
	result, err := s.db.Exec("DELETE FROM notifications WHERE id = ? AND user_id = ?", notificationID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete notification: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotificationNotFound
	}

	s.publish(userID)
	return nil
}

// GetPreferences returns the stored preference tree, or the defaults
func (s *NotificationService) GetPreferences(userID string) (models.NotificationPreferences, error) {
	var raw string
	err := s.db.QueryRow("SELECT preferences FROM notification_preferences WHERE user_id = ?", userID).Scan(&raw)
	if err == sql.ErrNoRows {
		return models.DefaultNotificationPreferences(), nil
	}
	if err != nil {
		return models.NotificationPreferences{}, fmt.Errorf("failed to get notification preferences: %w", err)
	}

	prefs := models.DefaultNotificationPreferences()
	if err := json.Unmarshal([]byte(raw), &prefs); err != nil {
		return models.NotificationPreferences{}, fmt.Errorf("failed to decode notification preferences: %w", err)
	}
	return prefs, nil
}

// UpdatePreferences merges a partial update into the stored tree
func (s *NotificationService) UpdatePreferences(userID string, update models.PreferencesUpdate) (models.NotificationPreferences, error) {
	current, err := s.GetPreferences(userID)
	if err != nil {
		return models.NotificationPreferences{}, err
	}

	merged, err := current.Merge(update)
	if err != nil {
		return models.NotificationPreferences{}, err
	}

	if err := s.savePreferences(s.db, userID, merged); err != nil {
		return models.NotificationPreferences{}, err
	}
	return merged, nil
}

func (s *NotificationService) savePreferences(db execer, userID string, prefs models.NotificationPreferences) error {
	raw, err := json.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("failed to encode notification preferences: %w", err)
	}

	query := `
		INSERT INTO notification_preferences (user_id, preferences, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET preferences = excluded.preferences, updated_at = excluded.updated_at
	`
	if _, err := db.Exec(query, userID, string(raw), s.now().UTC()); err != nil {
		return fmt.Errorf("failed to save notification preferences: %w", err)
	}
	return nil
}

// ShouldDeliver reports whether a notification may go out on channel now,
// honouring the user's quiet hours for everything but high priority.
func (s *NotificationService) ShouldDeliver(userID, channel string, n models.Notification) (bool, error) {
	prefs, err := s.GetPreferences(userID)
	if err != nil {
		return false, err
	}
	if !prefs.Allows(channel, n.Type) {
		return false, nil
	}
	if n.Priority == models.PriorityHigh || !prefs.QuietHours.Enabled {
		return true, nil
	}
	return !utils.InQuietHours(s.now(), prefs.QuietHours.Start, prefs.QuietHours.End), nil
}
