package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/storecrew/storecrew/internal/auth/jwt"
	"github.com/storecrew/storecrew/internal/common/errorx"
)

// ClaimsKey is the gin context key holding the authenticated claims
const ClaimsKey = "claims"

// JWTAuthMiddleware creates a middleware that validates bearer tokens
func JWTAuthMiddleware(jwtService *jwt.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			errorx.Send(c, errorx.ErrAuthRequired)
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			errorx.Send(c, errorx.ErrAuthRequired)
			c.Abort()
			return
		}

		claims, err := jwtService.ValidateToken(parts[1])
		if err != nil {
			errorx.Send(c, errorx.ErrAuthRequired)
			c.Abort()
			return
		}

		c.Set(ClaimsKey, claims)
		c.Next()
	}
}

// Claims extracts the authenticated claims set by JWTAuthMiddleware
func Claims(c *gin.Context) (*jwt.Claims, bool) {
	value, exists := c.Get(ClaimsKey)
	if !exists {
		return nil, false
	}
	claims, ok := value.(*jwt.Claims)
	return claims, ok
}
