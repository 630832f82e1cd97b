package handlers

import (
	"net/http"

	"tenantdesk/models"
	"tenantdesk/services/organization"
	"tenantdesk/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// OrganizationHandler serves organization, membership and settings endpoints.
type OrganizationHandler struct {
	Orgs organization.OrganizationService
}

func NewOrganizationHandler(orgs organization.OrganizationService) *OrganizationHandler {
	return &OrganizationHandler{Orgs: orgs}
}

type connectSlackRequest struct {
	AccessToken string `json:"accessToken" binding:"required"`
	TeamName    string `json:"teamName"`
}

type notificationMethodRequest struct {
	// Method is nil to clear the organization default.
	Method *models.DeliveryMethod `json:"method"`
}

func (h *OrganizationHandler) CreateOrganizationHandler(c *gin.Context) {
	logger := getLogger(c)
	user, err := currentUser(c)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	var req models.CreateOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}

	org, err := h.Orgs.CreateOrganization(c.Request.Context(), user, req.Name)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	logger.Info("Organization created", zap.String("slug", org.Slug), zap.String("ownerID", user.ID))
	c.JSON(http.StatusCreated, org)
}

func (h *OrganizationHandler) ListOrganizationsHandler(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	orgs, err := h.Orgs.ListForUser(c.Request.Context(), user.ID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"organizations": orgs})
}

func (h *OrganizationHandler) GetOrganizationHandler(c *gin.Context) {
	org, err := currentOrganization(c)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, org)
}

func (h *OrganizationHandler) ListMembersHandler(c *gin.Context) {
	org, err := currentOrganization(c)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	members, err := h.Orgs.ListMembers(c.Request.Context(), org.ID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"members": members})
}

func (h *OrganizationHandler) InviteHandler(c *gin.Context) {
	logger := getLogger(c)
	user, err := currentUser(c)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	org, err := currentOrganization(c)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	var req models.InviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}

	inv, err := h.Orgs.Invite(c.Request.Context(), org, user, req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	logger.Info("Invitation created", zap.String("org", org.Slug), zap.String("invitationID", inv.ID))
	c.JSON(http.StatusCreated, inv)
}

func (h *OrganizationHandler) AcceptInvitationHandler(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	org, err := h.Orgs.AcceptInvitation(c.Request.Context(), user, c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, org)
}

func (h *OrganizationHandler) ConnectSlackHandler(c *gin.Context) {
	org, err := currentOrganization(c)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	var req connectSlackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}
	if err := h.Orgs.ConnectSlack(c.Request.Context(), org, req.AccessToken, req.TeamName); err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Slack connected", "teamName": req.TeamName})
}

func (h *OrganizationHandler) DisconnectSlackHandler(c *gin.Context) {
	org, err := currentOrganization(c)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	if err := h.Orgs.DisconnectSlack(c.Request.Context(), org); err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Slack disconnected"})
}

func (h *OrganizationHandler) ListSlackChannelsHandler(c *gin.Context) {
	org, err := currentOrganization(c)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	channels, err := h.Orgs.ListSlackChannels(c.Request.Context(), org)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"channels": channels})
}

func (h *OrganizationHandler) SetNotificationMethodHandler(c *gin.Context) {
	org, err := currentOrganization(c)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	var req notificationMethodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}
	if err := h.Orgs.SetDefaultNotificationMethod(c.Request.Context(), org, req.Method); err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"defaultNotificationMethod": req.Method})
}
