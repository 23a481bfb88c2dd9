package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"gitlab.yctc.tech/zhiting/strportal.git/internal/types"
	"gitlab.yctc.tech/zhiting/strportal.git/pkg/logger"
	"gitlab.yctc.tech/zhiting/strportal.git/pkg/session"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestIPLimiterPerIP(t *testing.T) {
	now := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)
	l := NewIPLimiter(1, 2)
	l.now = func() time.Time { return now }

	assert.True(t, l.Allow("10.0.0.1"))
	assert.True(t, l.Allow("10.0.0.1"))
	assert.False(t, l.Allow("10.0.0.1"))
	assert.True(t, l.Allow("10.0.0.2"), "other clients keep their own bucket")

	now = now.Add(time.Second)
	assert.True(t, l.Allow("10.0.0.1"))
}

func TestIPLimiterSweep(t *testing.T) {
	now := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)
	l := NewIPLimiter(1, 1)
	l.now = func() time.Time { return now }

	l.Allow("10.0.0.1")
	now = now.Add(limiterIdleTTL + time.Minute)
	l.Allow("10.0.0.2")
	assert.Len(t, l.limiters, 1)
}

func TestLimiterHandler(t *testing.T) {
	l := NewIPLimiter(0.001, 1)
	r := gin.New()
	r.POST("/login", l.Handler(), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "too many login attempts")
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	var seen string
	r.GET("/", RequestID, func(c *gin.Context) {
		seen = logger.RequestIDFromContext(c.Request.Context())
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(types.RequestIDHeader, "abc-123")
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", seen)
	assert.Equal(t, "abc-123", w.Header().Get(types.RequestIDHeader))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Len(t, seen, 36)
	assert.Equal(t, seen, w.Header().Get(types.RequestIDHeader))
}

func TestRequireProfile(t *testing.T) {
	r := gin.New()
	user := &session.User{UserID: "demo", Profile: types.ProfileOperator}
	r.GET("/admin", func(c *gin.Context) { session.Set(c, user) }, RequireProfile(types.ProfileAdmin),
		func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/anon", RequireProfile(types.ProfileAdmin), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin", nil))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/anon", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	user.Profile = types.ProfileAdmin
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequirePageSessionRedirects(t *testing.T) {
	r := gin.New()
	r.GET("/home", RequirePageSession, func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/home", nil))
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, types.SignInPath, w.Header().Get("Location"))
}
