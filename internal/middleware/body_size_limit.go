package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Body limits for the JSON endpoints
const (
	DefaultBodyLimit = 64 * 1024
	NotesBodyLimit   = 256 * 1024
)

// BodySizeLimitMiddleware limits the size of request bodies
func BodySizeLimitMiddleware(maxBodySize int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}

		// Declared size is checked up front; MaxBytesReader covers chunked bodies
		if c.Request.ContentLength > maxBodySize {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{
				"error": "Request body too large",
			})
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodySize)

		c.Next()
	}
}
