package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dibaisales/central/internal/interfaces/http/dto"
)

// DefaultMaxBodySize bounds uploads when the configuration leaves it unset.
const DefaultMaxBodySize int64 = 32 << 20

// BodyLimit returns a middleware that limits request body size
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBodySize
	}
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, dto.NewErrorResponseWithRequestID(
				dto.ErrCodePayloadTooLarge,
				"Request body exceeds maximum allowed size",
				getRequestIDFromContext(c),
			))
			return
		}

		// Bodies without a Content-Length fail while being read
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
