package middleware

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// SecurityConfig holds security middleware configuration
type SecurityConfig struct {
	MaxRequestSize    int64
	RateLimitRequests int
	RateLimitWindow   time.Duration
	RequireHTTPS      bool
	Logger            *zap.Logger
}

// DefaultSecurityConfig returns default security configuration
func DefaultSecurityConfig() *SecurityConfig {
	return &SecurityConfig{
		MaxRequestSize:    10 * 1024 * 1024, // 10MB
		RateLimitRequests: 600,
		RateLimitWindow:   time.Minute,
		RequireHTTPS:      false,
	}
}

// limiterSet hands out one token bucket per client IP
type limiterSet struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

func newLimiterSet(requests int, window time.Duration) *limiterSet {
	if requests <= 0 {
		requests = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &limiterSet{
		limiters: make(map[string]*rate.Limiter),
		limit:    rate.Every(window / time.Duration(requests)),
		burst:    requests,
	}
}

func (s *limiterSet) allow(key string) bool {
	s.mu.Lock()
	limiter, exists := s.limiters[key]
	if !exists {
		limiter = rate.NewLimiter(s.limit, s.burst)
		s.limiters[key] = limiter
	}
	s.mu.Unlock()
	return limiter.Allow()
}

var validContentTypes = []string{
	"application/json",
	"multipart/form-data",
	"application/x-www-form-urlencoded",
}

var suspiciousPatterns = []string{
	"../", "..\\", "<script", "javascript:", "vbscript:",
	"onload=", "onerror=", "eval(", "expression(",
}

// SecurityMiddleware applies size limits, per-IP rate limiting, content type checks and security headers
func SecurityMiddleware(config *SecurityConfig) gin.HandlerFunc {
	if config == nil {
		config = DefaultSecurityConfig()
	}
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	limiters := newLimiterSet(config.RateLimitRequests, config.RateLimitWindow)

	return func(c *gin.Context) {
		// 1. Request size validation
		if c.Request.ContentLength > config.MaxRequestSize {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{
				"success": false,
				"error":   "Request body too large",
			})
			c.Abort()
			return
		}
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, config.MaxRequestSize)
		}

		// 2. Rate limiting per IP
		clientIP := c.ClientIP()
		if !limiters.allow(clientIP) {
			logger.Warn("rate limit exceeded",
				zap.String("ip", clientIP),
				zap.String("method", c.Request.Method),
				zap.String("path", c.Request.URL.Path))
			c.JSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"error":   "Rate limit exceeded",
			})
			c.Abort()
			return
		}

		// 3. Content-Type validation for requests with a body
		if (c.Request.Method == http.MethodPost || c.Request.Method == http.MethodPut || c.Request.Method == http.MethodPatch) &&
			c.Request.ContentLength != 0 {
			contentType := c.GetHeader("Content-Type")
			isValid := false
			for _, validType := range validContentTypes {
				if strings.Contains(contentType, validType) {
					isValid = true
					break
				}
			}
			if !isValid {
				c.JSON(http.StatusUnsupportedMediaType, gin.H{
					"success": false,
					"error":   "Unsupported content type: " + contentType,
				})
				c.Abort()
				return
			}
		}

		// 4. Security headers
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Header("Content-Security-Policy", "default-src 'self'")

		// 5. HTTPS enforcement (if enabled)
		if config.RequireHTTPS && c.Request.Header.Get("X-Forwarded-Proto") != "https" {
			c.JSON(http.StatusUpgradeRequired, gin.H{
				"success": false,
				"error":   "HTTPS required",
			})
			c.Abort()
			return
		}

		// 6. Block suspicious patterns in URL
		requestURI := strings.ToLower(c.Request.RequestURI)
		for _, pattern := range suspiciousPatterns {
			if strings.Contains(requestURI, pattern) {
				c.JSON(http.StatusBadRequest, gin.H{
					"success": false,
					"error":   "Suspicious request pattern detected",
				})
				c.Abort()
				return
			}
		}

		c.Next()
	}
}

// InputValidationMiddleware rejects oversized query parameters
func InputValidationMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		for key, values := range c.Request.URL.Query() {
			for _, value := range values {
				if len(value) > 1000 {
					c.JSON(http.StatusBadRequest, gin.H{
						"success": false,
						"error":   "Query parameter too long: " + key,
					})
					c.Abort()
					return
				}
			}
		}

		c.Next()
	}
}

var dangerousExtensions = []string{".exe", ".bat", ".cmd", ".scr", ".pif", ".js", ".vbs", ".php", ".asp"}

// FileUploadSecurityMiddleware validates product image uploads
func FileUploadSecurityMiddleware(maxFileSize int64, allowedTypes []string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(allowedTypes))
	for _, t := range allowedTypes {
		allowed[t] = true
	}

	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost && c.Request.Method != http.MethodPut {
			c.Next()
			return
		}
		if !strings.Contains(c.GetHeader("Content-Type"), "multipart/form-data") {
			c.Next()
			return
		}

		if err := c.Request.ParseMultipartForm(maxFileSize); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error":   "Failed to parse multipart form: " + err.Error(),
			})
			c.Abort()
			return
		}

		if c.Request.MultipartForm != nil {
			for _, files := range c.Request.MultipartForm.File {
				for _, file := range files {
					if file.Size > maxFileSize {
						c.JSON(http.StatusBadRequest, gin.H{
							"success": false,
							"error":   "File too large: " + file.Filename,
						})
						c.Abort()
						return
					}

					if !allowed[file.Header.Get("Content-Type")] {
						c.JSON(http.StatusBadRequest, gin.H{
							"success": false,
							"error":   "Invalid file type: " + file.Filename,
						})
						c.Abort()
						return
					}

					filename := strings.ToLower(file.Filename)
					for _, ext := range dangerousExtensions {
						if strings.HasSuffix(filename, ext) {
							c.JSON(http.StatusBadRequest, gin.H{
								"success": false,
								"error":   "Dangerous file type: " + file.Filename,
							})
							c.Abort()
							return
						}
					}
				}
			}
		}

		c.Next()
	}
}

// AuthRateLimitMiddleware provides stricter rate limiting for login and registration
func AuthRateLimitMiddleware(requestsPerMinute int) gin.HandlerFunc {
	limiters := newLimiterSet(requestsPerMinute, time.Minute)

	return func(c *gin.Context) {
		if !limiters.allow(c.ClientIP()) {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"error":   "Too many authentication attempts. Please try again later.",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
