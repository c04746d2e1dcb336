package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/stockpilot/backend/internal/infrastructure/logger"
	"github.com/stockpilot/backend/internal/interfaces/http/dto"
)

// TenantIDHeader is the header carrying the tenant ID
const TenantIDHeader = "X-Tenant-ID"

// tenantIDKey is the gin context key for the parsed tenant ID
const tenantIDKey = "tenant_id"

// DevTenantID is the fallback tenant used when no header is supplied.
// Keeps local development and curl sessions friction-free; production
// deployments sit behind a gateway that always sets the header.
var DevTenantID = uuid.MustParse("00000000-0000-0000-0000-000000000001")

// Tenant parses the X-Tenant-ID header and stores the tenant ID in the gin
// context and the request context. A missing header falls back to the
// development tenant; a malformed one is rejected.
func Tenant() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(TenantIDHeader)
		tenantID := DevTenantID
		if raw != "" {
			parsed, err := uuid.Parse(raw)
			if err != nil {
				c.AbortWithStatusJSON(http.StatusBadRequest,
					dto.NewErrorResponseWithRequestID(dto.ErrCodeBadRequest, "Invalid tenant ID", GetRequestID(c)))
				return
			}
			tenantID = parsed
		}
		c.Set(tenantIDKey, tenantID)

		ctx, _ := logger.WithTenantID(c.Request.Context(),
			logger.FromContext(c.Request.Context()), tenantID.String())
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// GetTenantID returns the tenant ID stored by the Tenant middleware
func GetTenantID(c *gin.Context) (uuid.UUID, bool) {
	value, exists := c.Get(tenantIDKey)
	if !exists {
		return uuid.Nil, false
	}
	tenantID, ok := value.(uuid.UUID)
	return tenantID, ok
}
