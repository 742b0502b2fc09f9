package middleware

import (
	"github.com/gin-gonic/gin"
)

// baseSecurityHeaders are set on every response
var baseSecurityHeaders = map[string]string{
	"X-Frame-Options":                   "DENY",
	"X-Content-Type-Options":            "nosniff",
	"Referrer-Policy":                   "strict-origin-when-cross-origin",
	"Permissions-Policy":                "camera=(), microphone=(), geolocation=(), interest-cohort=()",
	"X-Permitted-Cross-Domain-Policies": "none",
	"Cache-Control":                     "no-store, no-cache, must-revalidate, private",
	"Pragma":                            "no-cache",
}

const hstsValue = "max-age=31536000; includeSubDomains"

// SecurityHeadersMiddleware adds security headers to all HTTP responses.
// Strict-Transport-Security is only sent when hsts is true, which main enables in production.
func SecurityHeadersMiddleware(hsts bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		for name, value := range baseSecurityHeaders {
			c.Header(name, value)
		}
		if hsts {
			c.Header("Strict-Transport-Security", hstsValue)
		}

		c.Next()
	}
}
