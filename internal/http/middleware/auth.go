package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/dthai91/edx-platform/internal/platform/ctxutil"
	"github.com/dthai91/edx-platform/internal/platform/logger"
	"github.com/dthai91/edx-platform/internal/services"
)

// AuthMiddleware resolves the requesting identity from a bearer token.
// Requests without a token proceed as anonymous; the access stage decides
// what an anonymous user may see.
type AuthMiddleware struct {
	log         *logger.Logger
	authService services.AuthService
}

func NewAuthMiddleware(log *logger.Logger, authService services.AuthService) *AuthMiddleware {
	return &AuthMiddleware{log: log.With("middleware", "AuthMiddleware"), authService: authService}
}

func (am *AuthMiddleware) ResolveUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		rd := &ctxutil.RequestData{Anonymous: true}
		if tokenString := extractToken(c); tokenString != "" {
			viewer, err := am.authService.ViewerFromToken(tokenString)
			if err != nil {
				am.log.Debug("token rejected", "error", err)
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"error": gin.H{"message": "missing or invalid token", "code": "unauthorized"},
				})
				return
			}
			rd = &ctxutil.RequestData{UserID: viewer.ID, Username: viewer.Username}
		}
		c.Request = c.Request.WithContext(ctxutil.WithRequestData(c.Request.Context(), rd))
		c.Next()
	}
}

func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return authHeader[7:]
	}
	return ""
}
