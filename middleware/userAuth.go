package middleware

import (
	"net/http"
	"strings"

	"tenantdesk/services/auth"
	"tenantdesk/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Context keys set by the middleware in this package.
const (
	ContextUserID       = "userID"
	ContextUser         = "user"
	ContextOrganization = "organization"
	ContextAccess       = "access"
)

// JWTAuthUserMiddleware resolves the bearer token to a user and stores it in
// the context. Revoked tokens and deleted users are rejected.
func JWTAuthUserMiddleware(authSvc auth.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, utils.ErrorResponse{
				Message: "Insufficient authorization",
			})
			return
		}
		tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, utils.ErrorResponse{
				Message: "Insufficient authorization",
			})
			return
		}

		user, err := authSvc.Authenticate(c.Request.Context(), tokenString)
		if err != nil {
			if !utils.HasCode(err, utils.CodeUnauthorized) {
				utils.GetLogger().Error("Authentication lookup failed", zap.Error(err))
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, utils.ErrorResponse{
				Message: "Authentication error",
			})
			return
		}

		c.Set(ContextUserID, user.ID)
		c.Set(ContextUser, user)
		c.Next()
	}
}
