package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"mangahub/pkg/models"
)

const (
	ContextClaimsKey = "authClaims"
)

// JWTMiddleware requires a valid bearer token, aborting with 401 otherwise.
func JWTMiddleware(authService Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				models.NewErrorResponse(models.ErrCodeUnauthorized, "missing or malformed Authorization header", nil))
			return
		}

		claims, err := authService.ValidateToken(token)
		if err != nil {
			if appErr, ok := err.(*models.AppError); ok {
				c.AbortWithStatusJSON(appErr.StatusCode,
					models.NewErrorResponse(appErr.Code, appErr.Message, appErr.Details))
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				models.NewErrorResponse(models.ErrCodeUnauthorized, "invalid token", nil))
			return
		}

		c.Set(ContextClaimsKey, claims)
		c.Next()
	}
}

// OptionalJWTMiddleware validates a bearer token when present but never
// aborts the request on its absence — used by endpoints the spec marks
// optional-auth (e.g. browsing the catalog anonymously still works, but a
// valid token personalizes the response). A present but invalid token is
// rejected with 401.
func OptionalJWTMiddleware(authService Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			c.Next()
			return
		}

		claims, err := authService.ValidateToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				models.NewErrorResponse(models.ErrCodeUnauthorized, "invalid token", nil))
			return
		}

		c.Set(ContextClaimsKey, claims)
		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

// GetCurrentClaims returns the authenticated caller's claims, or nil when
// the request carries no (or no valid) bearer token.
func GetCurrentClaims(c *gin.Context) *models.Claims {
	val, exists := c.Get(ContextClaimsKey)
	if !exists {
		return nil
	}
	if claims, ok := val.(*models.Claims); ok {
		return claims
	}
	return nil
}
