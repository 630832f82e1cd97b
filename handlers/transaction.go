package handlers

import (
	"net/http"

	"tenantdesk/models"
	"tenantdesk/services/transaction"
	"tenantdesk/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// TransactionHandler serves actions and the transactions run against them.
type TransactionHandler struct {
	Transactions transaction.TransactionService
}

func NewTransactionHandler(txs transaction.TransactionService) *TransactionHandler {
	return &TransactionHandler{Transactions: txs}
}

func (h *TransactionHandler) CreateActionHandler(c *gin.Context) {
	org, err := currentOrganization(c)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	var req models.CreateActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}
	action, err := h.Transactions.CreateAction(c.Request.Context(), org, req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, action)
}

func (h *TransactionHandler) CreateTransactionHandler(c *gin.Context) {
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
	var req models.CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}
	tx, err := h.Transactions.CreateTransaction(c.Request.Context(), org, user, req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	logger.Info("Transaction started", zap.String("transactionID", tx.ID), zap.String("actionID", tx.ActionID))
	c.JSON(http.StatusCreated, tx)
}

func (h *TransactionHandler) GetTransactionHandler(c *gin.Context) {
	org, err := currentOrganization(c)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	tx, err := h.Transactions.GetTransaction(c.Request.Context(), org.ID, c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tx)
}
