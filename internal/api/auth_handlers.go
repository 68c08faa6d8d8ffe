package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"agrimarket-backend/internal/middleware"
	"agrimarket-backend/internal/models"
	"agrimarket-backend/internal/services"
)

// CookieConfig controls the session cookie
type CookieConfig struct {
	Name   string
	Secure bool
}

// AuthHandlers handles registration, login and the current session
type AuthHandlers struct {
	accounts *services.AccountService
	cookie   CookieConfig
}

// NewAuthHandlers creates new auth handlers
func NewAuthHandlers(accounts *services.AccountService, cookie CookieConfig) *AuthHandlers {
	return &AuthHandlers{accounts: accounts, cookie: cookie}
}

func (h *AuthHandlers) setCookie(c *gin.Context, token string, expiresAt time.Time) {
	maxAge := int(time.Until(expiresAt).Seconds())
	if token == "" {
		maxAge = -1
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, token, maxAge, "/", "", h.cookie.Secure, true)
}

// Register forwards the registration form to the marketplace API
func (h *AuthHandlers) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondFail(c, http.StatusBadRequest, "Invalid request data: "+err.Error())
		return
	}

	created, err := h.accounts.Register(c.Request.Context(), req)
	if err != nil {
		respondUpstreamError(c, err, "Registration failed. Please try again.")
		return
	}

	respondOK(c, http.StatusCreated, created)
}

// Login authenticates against the marketplace API and opens a session
func (h *AuthHandlers) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondFail(c, http.StatusBadRequest, "Email and password are required")
		return
	}

	result, err := h.accounts.Login(c.Request.Context(), req)
	if err != nil {
		respondUpstreamError(c, err, "Login failed. Please check your credentials.")
		return
	}

	h.setCookie(c, result.Token, result.ExpiresAt)
	respondOK(c, http.StatusOK, result)
}

// Logout revokes the current session and clears the cookie
func (h *AuthHandlers) Logout(c *gin.Context) {
	session := middleware.CurrentSession(c)
	if session == nil {
		respondFail(c, http.StatusUnauthorized, "User not authenticated")
		return
	}

	if err := h.accounts.Logout(c.Request.Context(), session); err != nil {
		respondError(c, err)
		return
	}

	h.setCookie(c, "", time.Time{})
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Logged out successfully",
	})
}

// Me returns the session user
func (h *AuthHandlers) Me(c *gin.Context) {
	session := middleware.CurrentSession(c)
	if session == nil {
		respondFail(c, http.StatusUnauthorized, "User not authenticated")
		return
	}

	respondOK(c, http.StatusOK, gin.H{
		"user":      session.User(),
		"expiresAt": session.ExpiresAt,
	})
}

// AccountTypes lists the registration account types
func (h *AuthHandlers) AccountTypes(c *gin.Context) {
	types, err := h.accounts.AccountTypes(c.Request.Context())
	if err != nil {
		respondUpstreamError(c, err, genericError)
		return
	}
	respondOK(c, http.StatusOK, types)
}

// Regions lists the registration regions
func (h *AuthHandlers) Regions(c *gin.Context) {
	regions, err := h.accounts.Regions(c.Request.Context())
	if err != nil {
		respondUpstreamError(c, err, genericError)
		return
	}
	respondOK(c, http.StatusOK, regions)
}

// Cities lists the cities of a region
func (h *AuthHandlers) Cities(c *gin.Context) {
	cities, err := h.accounts.Cities(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondUpstreamError(c, err, genericError)
		return
	}
	respondOK(c, http.StatusOK, cities)
}
