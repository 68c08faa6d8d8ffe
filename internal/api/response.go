package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"agrimarket-backend/internal/services"
	"agrimarket-backend/internal/upstream"
	"agrimarket-backend/internal/utils"
)

// genericError is shown when the marketplace API gives no usable message
const genericError = "The marketplace is unavailable. Please try again."

func respondOK(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{
		"success": true,
		"data":    data,
	})
}

// respondResult writes a fetch-with-fallback result and tags where the data came from
func respondResult[T any](c *gin.Context, result upstream.Result[T], err error) {
	if err != nil {
		respondUpstreamError(c, err, genericError)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result.Data,
		"source":  result.Source,
	})
}

func respondFail(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"error":   message,
	})
}

var sentinelStatus = []struct {
	err    error
	status int
}{
	{services.ErrEmptyCart, http.StatusBadRequest},
	{services.ErrInvalidQuantity, http.StatusBadRequest},
	{services.ErrOutOfStock, http.StatusBadRequest},
	{services.ErrInvalidStock, http.StatusBadRequest},
	{services.ErrInvalidPayload, http.StatusBadRequest},
	{services.ErrInvalidTransition, http.StatusBadRequest},
	{services.ErrCartItemMissing, http.StatusNotFound},
	{services.ErrNotificationNotFound, http.StatusNotFound},
	{services.ErrUnknownSection, http.StatusNotFound},
	{services.ErrSessionNotFound, http.StatusUnauthorized},
	{services.ErrCheckoutInProgress, http.StatusConflict},
}

// knownError maps validation failures and service sentinels to a status and inline message
func knownError(err error) (int, string, bool) {
	var validation utils.ValidationErrors
	if errors.As(err, &validation) {
		return http.StatusBadRequest, validation.Error(), true
	}
	for _, s := range sentinelStatus {
		if errors.Is(err, s.err) {
			return s.status, err.Error(), true
		}
	}
	return 0, "", false
}

// respondError answers a local (database) failure
func respondError(c *gin.Context, err error) {
	if status, message, ok := knownError(err); ok {
		respondFail(c, status, message)
		return
	}
	_ = c.Error(err)
	respondFail(c, http.StatusInternalServerError, "Internal server error")
}

// respondUpstreamError answers a failed marketplace call: 4xx pass through with the API's
// message, everything else becomes 502 or 504 with generic
func respondUpstreamError(c *gin.Context, err error, generic string) {
	if status, message, ok := knownError(err); ok {
		respondFail(c, status, message)
		return
	}
	_ = c.Error(err)
	respondFail(c, upstream.HTTPStatus(err), upstream.UserMessage(err, generic))
}

func queryInt(c *gin.Context, key string, fallback int) int {
	if v, err := strconv.Atoi(c.Query(key)); err == nil {
		return v
	}
	return fallback
}

func queryFloat(c *gin.Context, key string) *float64 {
	raw := c.Query(key)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &v
}
