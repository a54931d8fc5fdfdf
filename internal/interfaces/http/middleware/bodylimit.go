package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/invoiceapp/backend/internal/interfaces/http/dto"
)

// BodyLimit rejects request bodies over maxBytes. Oversized uploads
// with a declared length get an immediate 413; chunked bodies are
// capped by MaxBytesReader so a missing Content-Length cannot bypass
// the limit.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge,
				dto.NewErrorResponse("REQUEST_TOO_LARGE", "Request body exceeds maximum allowed size"))
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
