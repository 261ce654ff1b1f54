package middleware

import (
	"net/http"

	"github.com/erp/puntoventa/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
)

// BodyLimit rejects bodies over maxBytes. Declared lengths are refused up
// front; streamed bodies fail on read through http.MaxBytesReader.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	if maxBytes <= 0 {
		return passThrough
	}
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{
				"success": false,
				"error": gin.H{
					"code":       "ERR_REQUEST_TOO_LARGE",
					"message":    "Request body exceeds maximum allowed size",
					"request_id": c.GetString(logger.GinRequestIDKey),
				},
			})
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
