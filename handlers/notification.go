package handlers

import (
	"net/http"

	"tenantdesk/models"
	"tenantdesk/services/notification"
	"tenantdesk/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NotificationHandler records notifications and reads them back with their
// deliveries.
type NotificationHandler struct {
	Notifications notification.NotificationService
}

func NewNotificationHandler(svc notification.NotificationService) *NotificationHandler {
	return &NotificationHandler{Notifications: svc}
}

// RecordNotificationHandler answers 201 with the recorded instructions, or
// 200 with an empty list when nothing was recorded.
func (h *NotificationHandler) RecordNotificationHandler(c *gin.Context) {
	logger := getLogger(c)
	org, err := currentOrganization(c)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	var req models.CreateNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}
	if req.Environment == "" {
		req.Environment = models.EnvironmentProduction
	}
	if req.IdempotencyKey == "" {
		req.IdempotencyKey = c.GetHeader("Idempotency-Key")
	}

	recorded, err := h.Notifications.Record(c.Request.Context(), notification.RecordRequest{
		Message:        req.Message,
		Title:          req.Title,
		Organization:   org,
		Environment:    req.Environment,
		TransactionID:  req.TransactionID,
		Deliveries:     req.Deliveries,
		IdempotencyKey: req.IdempotencyKey,
	})
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	status := http.StatusCreated
	if len(recorded) == 0 {
		status = http.StatusOK
	}
	logger.Debug("Notification request handled", zap.String("org", org.Slug), zap.Int("deliveries", len(recorded)))
	c.JSON(status, gin.H{"deliveries": recorded})
}

func (h *NotificationHandler) GetNotificationHandler(c *gin.Context) {
	org, err := currentOrganization(c)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	n, err := h.Notifications.GetNotification(c.Request.Context(), org.ID, c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, n)
}
