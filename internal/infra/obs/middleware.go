package obs

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"staybook/internal/app/tenancy"
	"staybook/internal/domain/shared/fault"
)

const (
	HeaderRequestID = "X-Request-ID"
	HeaderTenantID  = "X-Tenant-ID"
)

type Middleware struct {
	Logger *slog.Logger
}

func (m Middleware) RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		ctx := context.WithValue(c.Request.Context(), requestIDKey{}, id)
		c.Request = c.Request.WithContext(ctx)
		c.Writer.Header().Set(HeaderRequestID, id)
		c.Set("request_id", id)
		c.Next()
	}
}

// Tenant binds the X-Tenant-ID header to the request context. Requests
// without it are rejected before reaching a handler.
func (m Middleware) Tenant() gin.HandlerFunc {
	return func(c *gin.Context) {
		tenant := strings.TrimSpace(c.GetHeader(HeaderTenantID))
		if tenant == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "missing " + HeaderTenantID + " header", "kind": string(fault.KindValidation)})
			return
		}
		c.Request = c.Request.WithContext(tenancy.WithTenant(c.Request.Context(), tenant))
		c.Set("tenant_id", tenant)
		c.Next()
	}
}

func (m Middleware) LoggerMiddleware() gin.HandlerFunc {
	log := m.Logger
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		if log == nil {
			return
		}
		level := slog.LevelInfo
		if c.Writer.Status() >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		log.Log(c.Request.Context(), level, "http",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
			"request_id", c.GetString("request_id"),
			"tenant_id", c.GetString("tenant_id"),
		)
	}
}

type requestIDKey struct{}

func RequestIDFromContext(ctx context.Context) string {
	if v := ctx.Value(requestIDKey{}); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
