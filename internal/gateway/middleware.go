package gateway

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"mangahub/internal/auth"
	"mangahub/pkg/cache"
	"mangahub/pkg/config"
	"mangahub/pkg/models"
)

// RateLimit enforces RATE_LIMIT_REQUESTS_PER_MINUTE, keyed by the caller's
// user_id when claims are already in context and by client IP otherwise.
// NewRouter mounts it globally, ahead of every JWT middleware, so on the
// gateway's routes no claims are set yet and the key is the client IP.
func RateLimit(limiter *cache.RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		subject := c.ClientIP()
		if claims := auth.GetCurrentClaims(c); claims != nil {
			subject = claims.UserID
		}

		allowed, err := limiter.Allow(c.Request.Context(), subject)
		if err != nil {
			// Redis outage degrades to fail-open: a rate limiter bug should
			// never take the whole gateway down.
			c.Next()
			return
		}
		if !allowed {
			c.AbortWithStatusJSON(http.StatusTooManyRequests,
				models.NewErrorResponse(models.ErrCodeRateLimited, "rate limit exceeded", nil))
			return
		}
		c.Next()
	}
}

// CORS applies the configured allow-list, with a permissive "*" short
// circuit for local/dev use.
func CORS(cfg config.CORSConfig) gin.HandlerFunc {
	allowAll := len(cfg.AllowOrigins) == 1 && cfg.AllowOrigins[0] == "*"

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if allowAll {
			c.Header("Access-Control-Allow-Origin", "*")
		} else if origin != "" && contains(cfg.AllowOrigins, origin) {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Vary", "Origin")
		}
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// RequireAdmin gates the catalog-mutation routes (manga/chapter create) to
// callers whose JWT claims carry the admin role. JWTMiddleware must run
// first so claims are already in context.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := auth.GetCurrentClaims(c)
		if claims == nil || claims.Role != "admin" {
			c.AbortWithStatusJSON(http.StatusForbidden,
				models.NewErrorResponse(models.ErrCodeForbidden, "admin role required", nil))
			return
		}
		c.Next()
	}
}

func contains(list []string, needle string) bool {
	for _, v := range list {
		if strings.EqualFold(v, needle) {
			return true
		}
	}
	return false
}
