package handlers

import (
	"net/http"

	"tenantdesk/models"
	"tenantdesk/services/environment"
	"tenantdesk/utils"

	"github.com/gin-gonic/gin"
)

type EnvironmentHandler struct {
	Environments environment.EnvironmentService
}

func NewEnvironmentHandler(envs environment.EnvironmentService) *EnvironmentHandler {
	return &EnvironmentHandler{Environments: envs}
}

func (h *EnvironmentHandler) CreateEnvironmentHandler(c *gin.Context) {
	org, err := currentOrganization(c)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	var req models.CreateEnvironmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}
	env, err := h.Environments.CreateEnvironment(c.Request.Context(), org.ID, req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, env)
}

func (h *EnvironmentHandler) ListEnvironmentsHandler(c *gin.Context) {
	org, err := currentOrganization(c)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	envs, err := h.Environments.ListEnvironments(c.Request.Context(), org.ID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"environments": envs})
}
