package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"agrimarket-backend/internal/middleware"
	"agrimarket-backend/internal/models"
)

// GetNotificationPreferences returns the stored preferences, or the defaults
func (h *NotificationHandlers) GetNotificationPreferences(c *gin.Context) {
	prefs, err := h.notifications.GetPreferences(c.GetString(middleware.ContextUserID))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, prefs)
}

// UpdateNotificationPreferences merges a partial update into the stored preferences
func (h *NotificationHandlers) UpdateNotificationPreferences(c *gin.Context) {
	var update models.PreferencesUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		respondFail(c, http.StatusBadRequest, "Invalid request data: "+err.Error())
		return
	}

	prefs, err := h.notifications.UpdatePreferences(c.GetString(middleware.ContextUserID), update)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, prefs)
}
