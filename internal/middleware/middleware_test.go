package middleware

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"agrimarket-backend/database"
	"agrimarket-backend/internal/models"
	"agrimarket-backend/internal/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type authFixture struct {
	auth     *services.AuthService
	sessions *services.SessionService
	mw       *AuthMiddleware
}

func newAuthFixture(t *testing.T) authFixture {
	db, err := database.Initialize(":memory:")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { db.Close() })

	auth := services.NewAuthService("test-secret", 3600)
	sessions := services.NewSessionService(db)
	return authFixture{auth: auth, sessions: sessions, mw: NewAuthMiddleware(auth, sessions, "agrimarket_session")}
}

func (f authFixture) login(t *testing.T, role models.UserRole) (*services.Session, string) {
	session, err := f.sessions.Create(models.SessionUser{ID: "42", Name: "Kofi"}, role, "api-token", time.Hour)
	require.NoError(t, err)
	token, err := f.auth.GenerateToken(session)
	require.NoError(t, err)
	return session, token
}

func protectedRouter(f authFixture, roles ...string) *gin.Engine {
	router := gin.New()
	group := router.Group("/", f.mw.AuthRequired())
	if len(roles) > 0 {
		group.Use(f.mw.RequireRoles(roles...))
	}
	group.GET("/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"userId":   c.GetString(ContextUserID),
			"role":     c.GetString(ContextUserRole),
			"upstream": c.GetString(ContextUpstreamToken),
			"session":  CurrentSession(c) != nil,
		})
	})
	return router
}

func TestAuthRequired(t *testing.T) {
	f := newAuthFixture(t)
	router := protectedRouter(f)
	session, token := f.login(t, models.UserRoleBuyer)

	tests := []struct {
		name   string
		header string
		cookie string
		status int
	}{
		{"no token", "", "", http.StatusUnauthorized},
		{"bad scheme", "Basic " + token, "", http.StatusUnauthorized},
		{"garbage", "Bearer not-a-jwt", "", http.StatusUnauthorized},
		{"bearer", "Bearer " + token, "", http.StatusOK},
		{"cookie", "", token, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: "agrimarket_session", Value: tt.cookie})
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusOK {
				assert.Contains(t, w.Body.String(), `"upstream":"api-token"`)
				assert.Contains(t, w.Body.String(), `"session":true`)
			}
		})
	}

	// a revoked session invalidates its token
	require.NoError(t, f.sessions.Revoke(session.ID))
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireRoles(t *testing.T) {
	f := newAuthFixture(t)
	router := protectedRouter(f, "seller", "admin")

	_, buyerToken := f.login(t, models.UserRoleBuyer)
	_, sellerToken := f.login(t, models.UserRoleSeller)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+buyerToken)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+sellerToken)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func okHandler(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

func TestSecurityMiddleware(t *testing.T) {
	router := gin.New()
	router.Use(SecurityMiddleware(&SecurityConfig{MaxRequestSize: 64, RateLimitRequests: 2, RateLimitWindow: time.Minute}))
	router.Any("/*path", okHandler)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))

	req := httptest.NewRequest(http.MethodPost, "/ok", strings.NewReader(strings.Repeat("x", 100)))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	req = httptest.NewRequest(http.MethodPost, "/ok", strings.NewReader("<xml/>"))
	req.Header.Set("Content-Type", "text/xml")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)

	// oversized bodies are rejected before the limiter, so this is the third counted request
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestSecurityMiddlewareBlocksTraversal(t *testing.T) {
	router := gin.New()
	router.Use(SecurityMiddleware(nil))
	router.Any("/*path", okHandler)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RequestURI = "/products/../../etc/passwd"
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func multipartRequest(t *testing.T, filename, contentType string, size int) *http.Request {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="images"; filename="`+filename+`"`)
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(bytes.Repeat([]byte("a"), size))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestFileUploadSecurityMiddleware(t *testing.T) {
	router := gin.New()
	router.POST("/upload", FileUploadSecurityMiddleware(1024, []string{"image/jpeg", "image/png"}), okHandler)

	tests := []struct {
		name        string
		filename    string
		contentType string
		size        int
		status      int
	}{
		{"valid image", "mangues.jpg", "image/jpeg", 100, http.StatusNoContent},
		{"wrong type", "notes.pdf", "application/pdf", 100, http.StatusBadRequest},
		{"too large", "big.png", "image/png", 4096, http.StatusBadRequest},
		{"dangerous extension", "evil.php", "image/png", 10, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, multipartRequest(t, tt.filename, tt.contentType, tt.size))
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestIdempotencyKey(t *testing.T) {
	router := gin.New()
	router.POST("/checkout", IdempotencyKey(), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(ContextIdempotencyKey))
	})

	tests := []struct {
		key    string
		status int
	}{
		{"", http.StatusOK},
		{"a1b2c3d4-e5f6", http.StatusOK},
		{"short", http.StatusBadRequest},
		{"has spaces in it", http.StatusBadRequest},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodPost, "/checkout", nil)
		if tt.key != "" {
			req.Header.Set(IdempotencyKeyHeader, tt.key)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, tt.status, w.Code, tt.key)
		if tt.status == http.StatusOK {
			assert.Equal(t, tt.key, w.Body.String())
		}
	}
}

func TestRequestLoggerAndRecovery(t *testing.T) {
	router := gin.New()
	router.Use(RequestLogger(zap.NewNop()), Recovery(zap.NewNop()))
	router.GET("/panic", func(c *gin.Context) { panic("boom") })
	router.GET("/ok", okHandler)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Internal server error")

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
}
