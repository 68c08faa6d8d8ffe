package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"agrimarket-backend/internal/models"
	"agrimarket-backend/internal/services"
)

// AdminHandlers backs the admin dashboard
type AdminHandlers struct {
	admin *services.AdminService
}

// NewAdminHandlers creates new admin handlers
func NewAdminHandlers(admin *services.AdminService) *AdminHandlers {
	return &AdminHandlers{admin: admin}
}

// GetAnalytics returns the platform analytics
func (h *AdminHandlers) GetAnalytics(c *gin.Context) {
	result, err := h.admin.Analytics(c.Request.Context(), upstreamToken(c))
	respondResult(c, result, err)
}

// GetUsers lists users filtered by role, status and a search term
func (h *AdminHandlers) GetUsers(c *gin.Context) {
	filter := models.AdminUserFilter{
		Role:   strings.ToLower(c.Query("role")),
		Status: strings.ToLower(c.Query("status")),
		Search: strings.TrimSpace(c.Query("search")),
		Page:   queryInt(c, "page", 1),
		Limit:  queryInt(c, "limit", 20),
	}
	result, err := h.admin.Users(c.Request.Context(), upstreamToken(c), filter)
	respondResult(c, result, err)
}

// GetSettings returns the platform settings
func (h *AdminHandlers) GetSettings(c *gin.Context) {
	result, err := h.admin.Settings(c.Request.Context(), upstreamToken(c))
	respondResult(c, result, err)
}

// UpdateSettings validates and saves the platform settings
func (h *AdminHandlers) UpdateSettings(c *gin.Context) {
	var settings models.AdminSettings
	if err := c.ShouldBindJSON(&settings); err != nil {
		respondFail(c, http.StatusBadRequest, "Invalid request data: "+err.Error())
		return
	}

	saved, err := h.admin.UpdateSettings(c.Request.Context(), upstreamToken(c), settings)
	if err != nil {
		respondUpstreamError(c, err, "Failed to save settings")
		return
	}
	respondOK(c, http.StatusOK, saved)
}
