package middleware

import (
	"net/http"
	"regexp"

	"github.com/gin-gonic/gin"
)

// IdempotencyKeyHeader lets a client retry a checkout without paying twice
const IdempotencyKeyHeader = "Idempotency-Key"

const ContextIdempotencyKey = "idempotencyKey"

var idempotencyKeyPattern = regexp.MustCompile(`^[A-Za-z0-9_\-:.]{8,128}$`)

// IdempotencyKey validates the optional Idempotency-Key header before processing
func IdempotencyKey() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyKeyHeader)
		if key == "" {
			c.Next()
			return
		}

		if !idempotencyKeyPattern.MatchString(key) {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error":   "Idempotency-Key must be 8 to 128 letters, digits or -_:.",
			})
			c.Abort()
			return
		}

		c.Set(ContextIdempotencyKey, key)
		c.Next()
	}
}
