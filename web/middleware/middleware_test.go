package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dailydiet/daily-diet/database/model"
	"github.com/dailydiet/daily-diet/util/metrics"
	"github.com/dailydiet/daily-diet/web/cache"
	"github.com/dailydiet/daily-diet/web/session"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(r *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func TestRoleRequired(t *testing.T) {
	var principal *model.User
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if principal != nil {
			session.SetPrincipal(c, principal)
		}
	})
	r.GET("/admin", RoleRequired(model.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodGet, "/admin").Code)

	principal = &model.User{Id: 1, Role: model.RoleUser}
	w := serve(r, http.MethodGet, "/admin")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t, `{"success":false,"msg":"admin role required"}`, w.Body.String())

	principal = &model.User{Id: 2, Role: model.RoleAdmin}
	assert.Equal(t, http.StatusNoContent, serve(r, http.MethodGet, "/admin").Code)
}

func TestRateLimitMiddleware(t *testing.T) {
	rc, err := cache.Open(context.Background(), "")
	require.NoError(t, err)
	defer rc.Close()

	r := gin.New()
	r.POST("/login", RateLimitMiddleware(rc, LoginRateLimitConfig(2)), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	before := testutil.ToFloat64(metrics.RateLimitHits.WithLabelValues("/login"))
	for i := 0; i < 2; i++ {
		assert.Equal(t, http.StatusOK, serve(r, http.MethodPost, "/login").Code)
	}
	w := serve(r, http.MethodPost, "/login")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.RateLimitHits.WithLabelValues("/login")))
}

func TestRateLimitDisabled(t *testing.T) {
	r := gin.New()
	r.POST("/login", RateLimitMiddleware(nil, LoginRateLimitConfig(1)), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, serve(r, http.MethodPost, "/login").Code)
	}
}

func TestRequestIDAndAccessLog(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), AccessLog())
	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, GetRequestID(c))
	})

	before := testutil.ToFloat64(metrics.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/ping", "200"))
	w := serve(r, http.MethodGet, "/ping")
	id := w.Header().Get(RequestIDHeader)
	assert.Len(t, id, 36)
	assert.Equal(t, id, w.Body.String())
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/ping", "200")))

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "client-id")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "client-id", w.Body.String())
}
