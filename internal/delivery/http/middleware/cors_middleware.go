package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
)

// DevOrigins are the local frontends allowed outside production.
var DevOrigins = []string{
	"http://localhost:3000",
	"http://127.0.0.1:3000",
	"http://localhost:3001",
}

// AllowedOrigins returns the browser origins for siteURL: the canonical origin
// only, plus DevOrigins when allowDev is set. It must agree with the contact
// pipeline's OriginPolicy, which trusts the canonical host alone.
func AllowedOrigins(siteURL string, allowDev bool) map[string]bool {
	allowed := map[string]bool{}
	if u, err := url.Parse(siteURL); err == nil && u.Scheme != "" && u.Host != "" {
		allowed[u.Scheme+"://"+strings.ToLower(u.Host)] = true
	}
	if allowDev {
		for _, o := range DevOrigins {
			allowed[o] = true
		}
	}
	return allowed
}

// CORSMiddleware only answers allowed origins. Requests without an Origin
// header (same-origin, server-to-server) pass through untouched.
func CORSMiddleware(allowed map[string]bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		isAllowed := origin == "" || allowed[origin]

		if isAllowed && origin != "" {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Headers", "Content-Type, Accept, X-Request-ID, X-Requested-With")
			c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			c.Header("Access-Control-Expose-Headers", "X-Request-ID, Retry-After")
			c.Header("Access-Control-Max-Age", "86400") // 24 hours
		}

		// Vary header to ensure caches differentiate by Origin
		c.Header("Vary", "Origin")

		if c.Request.Method == http.MethodOptions {
			if isAllowed {
				c.AbortWithStatus(http.StatusNoContent)
			} else {
				c.AbortWithStatus(http.StatusForbidden)
			}
			return
		}

		c.Next()
	}
}
