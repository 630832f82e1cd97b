package middleware

import (
	"net/http"

	"tenantdesk/models"
	"tenantdesk/services/organization"
	"tenantdesk/utils"

	"github.com/gin-gonic/gin"
)

// OrgAccessMiddleware resolves :orgSlug for the authenticated user and stores
// the organization and the access row in the context. It must run after
// JWTAuthUserMiddleware.
func OrgAccessMiddleware(orgs organization.OrganizationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString(ContextUserID)
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, utils.ErrorResponse{
				Message: "Insufficient authorization",
			})
			return
		}

		org, access, err := orgs.RequireAccess(c.Request.Context(), userID, c.Param("orgSlug"))
		if err != nil {
			utils.RespondError(c, err)
			c.Abort()
			return
		}

		c.Set(ContextOrganization, org)
		c.Set(ContextAccess, access)
		c.Next()
	}
}

// RequireOrgRole rejects requests whose organization access does not carry
// one of the given roles. It must run after OrgAccessMiddleware.
func RequireOrgRole(roles ...models.AccessRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, exists := c.Get(ContextAccess)
		access, ok := v.(*models.UserOrganizationAccess)
		if !exists || !ok || access == nil {
			c.AbortWithStatusJSON(http.StatusForbidden, utils.ErrorResponse{
				Message: "Insufficient permissions",
			})
			return
		}
		for _, role := range roles {
			if access.Role == role {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, utils.ErrorResponse{
			Message: "Insufficient permissions",
			Details: string(utils.CodeForbidden),
		})
	}
}
