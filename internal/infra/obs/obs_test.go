package obs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staybook/internal/app/tenancy"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestTenantMiddleware(t *testing.T) {
	m := Middleware{}
	r := gin.New()
	r.Use(m.RequestID(), m.Tenant())
	r.GET("/t", func(c *gin.Context) {
		tenant, _ := tenancy.FromContext(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{"tenant": tenant, "request_id": RequestIDFromContext(c.Request.Context())})
	})

	t.Run("header bound to context", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/t", nil)
		req.Header.Set(HeaderTenantID, " hotel-a ")
		req.Header.Set(HeaderRequestID, "req-1")
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var body map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "hotel-a", body["tenant"])
		assert.Equal(t, "req-1", body["request_id"])
		assert.Equal(t, "req-1", rec.Header().Get(HeaderRequestID))
	})

	t.Run("missing header rejected", func(t *testing.T) {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/t", nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.NotEmpty(t, rec.Header().Get(HeaderRequestID))
	})
}

func TestReadyz(t *testing.T) {
	cases := []struct {
		name   string
		checks map[string]Check
		status int
	}{
		{"no checks", nil, http.StatusOK},
		{"healthy", map[string]Check{"mongo": func(context.Context) error { return nil }}, http.StatusOK},
		{"failing", map[string]Check{
			"mongo": func(context.Context) error { return nil },
			"redis": func(context.Context) error { return errors.New("dial tcp: refused") },
		}, http.StatusServiceUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/readyz", HealthHandlers{Checks: tc.checks}.Readyz)
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
			assert.Equal(t, tc.status, rec.Code)
		})
	}
}

func TestLoggerMiddlewareWritesTenant(t *testing.T) {
	var buf bytes.Buffer
	m := Middleware{Logger: NewLoggerTo(&buf, "prod")}
	r := gin.New()
	r.Use(m.RequestID(), m.LoggerMiddleware(), m.Tenant())
	r.GET("/t", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	req := httptest.NewRequest(http.MethodGet, "/t", nil)
	req.Header.Set(HeaderTenantID, "hotel-b")
	r.ServeHTTP(httptest.NewRecorder(), req)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "hotel-b", line["tenant_id"])
	assert.EqualValues(t, http.StatusNoContent, line["status"])
	assert.Equal(t, "staybook", line["service"])
}
