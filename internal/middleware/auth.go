package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"agrimarket-backend/internal/services"
)

// Context keys set by the auth middleware
const (
	ContextUserID        = "userID"
	ContextUserRole      = "userRole"
	ContextSessionID     = "sessionID"
	ContextSession       = "session"
	ContextUpstreamToken = "upstreamToken"
)

// AuthMiddleware resolves the storefront token to a live server-side session
type AuthMiddleware struct {
	authService    *services.AuthService
	sessionService *services.SessionService
	cookieName     string
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(authService *services.AuthService, sessionService *services.SessionService, cookieName string) *AuthMiddleware {
	return &AuthMiddleware{
		authService:    authService,
		sessionService: sessionService,
		cookieName:     cookieName,
	}
}

// tokenFrom reads the Bearer header first, then the session cookie
func (m *AuthMiddleware) tokenFrom(c *gin.Context) string {
	if authHeader := c.GetHeader("Authorization"); authHeader != "" {
		if !strings.HasPrefix(authHeader, "Bearer ") {
			return ""
		}
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}
	if m.cookieName != "" {
		if cookie, err := c.Cookie(m.cookieName); err == nil {
			return cookie
		}
	}
	return ""
}

func (m *AuthMiddleware) resolve(c *gin.Context) (*services.Session, string) {
	token := m.tokenFrom(c)
	if token == "" {
		return nil, "Authentication required"
	}

	claims, err := m.authService.ValidateToken(token)
	if err != nil {
		return nil, "Invalid or expired token"
	}

	session, err := m.sessionService.Get(claims.SessionID)
	if err != nil || session.UserID != claims.UserID {
		return nil, "Session expired, please sign in again"
	}
	return session, ""
}

func setSession(c *gin.Context, session *services.Session) {
	c.Set(ContextUserID, session.UserID)
	c.Set(ContextUserRole, session.Role)
	c.Set(ContextSessionID, session.ID)
	c.Set(ContextSession, session)
	c.Set(ContextUpstreamToken, session.UpstreamToken)
}

// AuthRequired rejects requests without a valid session
func (m *AuthMiddleware) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		session, problem := m.resolve(c)
		if session == nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   problem,
			})
			c.Abort()
			return
		}

		setSession(c, session)
		c.Next()
	}
}

// RequireRoles is a middleware that checks if the user has one of the specified roles
func (m *AuthMiddleware) RequireRoles(requiredRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRole := c.GetString(ContextUserRole)
		if userRole == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   "User not authenticated",
			})
			c.Abort()
			return
		}

		hasValidRole := false
		for _, role := range requiredRoles {
			if userRole == role {
				hasValidRole = true
				break
			}
		}

		if !hasValidRole {
			c.JSON(http.StatusForbidden, gin.H{
				"success": false,
				"error":   "Insufficient permissions",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// CurrentSession returns the session attached by AuthRequired
func CurrentSession(c *gin.Context) *services.Session {
	if v, ok := c.Get(ContextSession); ok {
		if session, ok := v.(*services.Session); ok {
			return session
		}
	}
	return nil
}
