package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/ridloal/woodkits-store/internal/admin/domain"
)

const claimsKey = "admin_claims"

// TokenParser validates a bearer token.
type TokenParser interface {
	ParseToken(token string) (*domain.Claims, error)
}

// RequireAdmin rejects requests without a valid admin bearer token and
// stores the claims on the request context.
func RequireAdmin(parser TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": gin.H{"code": "UNAUTHORIZED", "message": "missing bearer token"}})
			return
		}
		claims, err := parser.ParseToken(strings.TrimSpace(token))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": gin.H{"code": "UNAUTHORIZED", "message": err.Error()}})
			return
		}
		c.Set(claimsKey, claims)
		c.Next()
	}
}

func AdminFromContext(c *gin.Context) (*domain.Claims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*domain.Claims)
	return claims, ok
}
