package middleware

import (
	"net/http"
	"strings"

	"github.com/erp/puntoventa/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TenantHeaderKey carries the tenant on incoming requests
const TenantHeaderKey = "X-Tenant-ID"

// TenantMiddlewareConfig holds configuration for tenant middleware
type TenantMiddlewareConfig struct {
	// DefaultTenantID serves requests without the header. Empty makes the
	// header mandatory.
	DefaultTenantID string
	// SkipPaths are paths that don't require tenant context (e.g., health check)
	SkipPaths []string
	Logger    *zap.Logger
}

// DefaultTenantConfig returns default tenant middleware configuration
func DefaultTenantConfig() TenantMiddlewareConfig {
	return TenantMiddlewareConfig{
		SkipPaths: []string{"/health", "/healthz", "/ready", "/metrics", "/swagger"},
	}
}

// TenantMiddleware resolves the tenant from the X-Tenant-ID header, falling
// back to the configured default. The tenant lands on both the gin context
// and the request context.
func TenantMiddleware(cfg TenantMiddlewareConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		for _, skipPath := range cfg.SkipPaths {
			if path == skipPath || strings.HasPrefix(path, skipPath+"/") {
				c.Next()
				return
			}
		}

		raw := strings.TrimSpace(c.GetHeader(TenantHeaderKey))
		method := "header"
		if raw == "" {
			raw = cfg.DefaultTenantID
			method = "default"
		}
		if raw == "" {
			respondUnauthorized(c, "Tenant identification required")
			return
		}

		tenantID, err := uuid.Parse(raw)
		if err != nil || tenantID == uuid.Nil {
			respondUnauthorized(c, "Invalid tenant ID format")
			return
		}

		c.Set(logger.GinTenantIDKey, tenantID.String())
		ctx := logger.WithTenantID(c.Request.Context(), tenantID)
		c.Request = c.Request.WithContext(ctx)

		if cfg.Logger != nil {
			cfg.Logger.Debug("Tenant identified",
				zap.String("tenant_id", tenantID.String()),
				zap.String("method", method),
			)
		}

		c.Next()
	}
}

func respondUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"error": gin.H{
			"code":       "ERR_UNAUTHORIZED",
			"message":    message,
			"request_id": c.GetString(logger.GinRequestIDKey),
		},
	})
}

// GetTenantID retrieves the tenant ID string from gin.Context
func GetTenantID(c *gin.Context) string {
	return c.GetString(logger.GinTenantIDKey)
}

// GetTenantUUID retrieves the tenant ID set by TenantMiddleware
func GetTenantUUID(c *gin.Context) (uuid.UUID, bool) {
	raw := GetTenantID(c)
	if raw == "" {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
