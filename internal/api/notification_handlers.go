package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"agrimarket-backend/internal/middleware"
	"agrimarket-backend/internal/models"
	"agrimarket-backend/internal/services"
)

// NotificationHandlers serves the notification centre
type NotificationHandlers struct {
	notifications *services.NotificationService
}

// NewNotificationHandlers creates new notification handlers
func NewNotificationHandlers(notifications *services.NotificationService) *NotificationHandlers {
	return &NotificationHandlers{notifications: notifications}
}

// GetNotifications lists notifications for the authenticated user
func (h *NotificationHandlers) GetNotifications(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserID)

	limit := queryInt(c, "limit", 50)
	offset := queryInt(c, "offset", 0)
	if limit < 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	filter := models.NotificationFilter{
		Tab:      c.DefaultQuery("tab", "all"),
		Type:     c.Query("type"),
		Priority: c.Query("priority"),
		Status:   c.Query("status"),
	}

	page, err := h.notifications.List(userID, filter, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, page)
}

// GetUnreadCount returns the unread badge count
func (h *NotificationHandlers) GetUnreadCount(c *gin.Context) {
	count, err := h.notifications.UnreadCount(c.GetString(middleware.ContextUserID))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"unreadCount": count})
}

// ToggleRead flips a notification between read and unread
func (h *NotificationHandlers) ToggleRead(c *gin.Context) {
	status, err := h.notifications.Toggle(c.GetString(middleware.ContextUserID), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"id": c.Param("id"), "status": status})
}

// MarkAsRead marks a notification as read
func (h *NotificationHandlers) MarkAsRead(c *gin.Context) {
	if err := h.notifications.MarkAsRead(c.GetString(middleware.ContextUserID), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"id": c.Param("id"), "status": models.NotificationRead})
}

// MarkAsUnread marks a notification as unread
func (h *NotificationHandlers) MarkAsUnread(c *gin.Context) {
	if err := h.notifications.MarkAsUnread(c.GetString(middleware.ContextUserID), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"id": c.Param("id"), "status": models.NotificationUnread})
}

// MarkAllAsRead marks every notification as read
func (h *NotificationHandlers) MarkAllAsRead(c *gin.Context) {
	changed, err := h.notifications.MarkAllAsRead(c.GetString(middleware.ContextUserID))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"updated": changed})
}

// DeleteNotification deletes a notification
func (h *NotificationHandlers) DeleteNotification(c *gin.Context) {
	if err := h.notifications.Delete(c.GetString(middleware.ContextUserID), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"id": c.Param("id")})
}
