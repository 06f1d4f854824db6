package middleware

import (
	"net/http"

	"github.com/formloom/formloom-backend/internal/common"
	"github.com/gin-gonic/gin"
)

// Tenant resolves the tenant scope for the request. The JWT claim is
// authoritative; in development an X-Tenant-ID header is accepted as a
// fallback so the API can be exercised without the identity service.
func Tenant(devHeaderFallback bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantID := GetTenantID(c)
		if tenantID == "" && devHeaderFallback {
			if header := c.GetHeader("X-Tenant-ID"); header != "" {
				c.Set("tenantID", header)
				tenantID = header
			}
		}
		if tenantID == "" {
			common.ErrorResponse(c, http.StatusUnauthorized, "Tenant scope required", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetTenantID extracts the tenant ID from context
func GetTenantID(c *gin.Context) string {
	tenantID, exists := c.Get("tenantID")
	if !exists {
		return ""
	}
	if str, ok := tenantID.(string); ok {
		return str
	}
	return ""
}
