package handlers

import (
	"tenantdesk/middleware"
	"tenantdesk/models"
	"tenantdesk/utils"

	"github.com/gin-gonic/gin"
)

// currentUser returns the user set by the JWT middleware. Routes without the
// middleware get an unauthorized error.
func currentUser(c *gin.Context) (*models.User, error) {
	if v, ok := c.Get(middleware.ContextUser); ok {
		if user, ok := v.(*models.User); ok && user != nil {
			return user, nil
		}
	}
	return nil, utils.NewUnauthorizedError("authentication required")
}

// currentOrganization returns the organization resolved by the org access
// middleware from the :orgSlug path parameter.
func currentOrganization(c *gin.Context) (*models.Organization, error) {
	if v, ok := c.Get(middleware.ContextOrganization); ok {
		if org, ok := v.(*models.Organization); ok && org != nil {
			return org, nil
		}
	}
	return nil, utils.NewNotFoundError("organization %q not found", c.Param("orgSlug"))
}
