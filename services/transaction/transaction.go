package transaction

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	transactionRepo "tenantdesk/database/repository/transaction"
	"tenantdesk/models"
	"tenantdesk/services/notification"
	"tenantdesk/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type TransactionService interface {
	CreateAction(ctx context.Context, org *models.Organization, req models.CreateActionRequest) (*models.Action, error)
	CreateTransaction(ctx context.Context, org *models.Organization, user *models.User, req models.CreateTransactionRequest) (*models.Transaction, error)
	GetTransaction(ctx context.Context, organizationID, id string) (*models.Transaction, error)
}

// DefaultTransactionService is the production implementation.
type DefaultTransactionService struct {
	Repo transactionRepo.TransactionRepository
}

// CreateAction stores an action. A default delivery policy must parse.
func (s *DefaultTransactionService) CreateAction(ctx context.Context, org *models.Organization, req models.CreateActionRequest) (*models.Action, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, utils.NewInvalidError("action name is required")
	}
	if _, err := notification.ParseDeliveryPolicy(req.DefaultDelivery); err != nil {
		return nil, &utils.AppError{Code: utils.CodeInvalid, Message: "defaultDelivery is not a valid delivery policy", Err: err}
	}

	action := &models.Action{
		ID:              uuid.New().String(),
		OrganizationID:  org.ID,
		Name:            name,
		DefaultDelivery: strings.TrimSpace(req.DefaultDelivery),
		CreatedAt:       time.Now(),
	}
	if err := s.Repo.CreateAction(ctx, action); err != nil {
		return nil, fmt.Errorf("CreateAction: %w", err)
	}
	return action, nil
}

func (s *DefaultTransactionService) CreateTransaction(ctx context.Context, org *models.Organization, user *models.User, req models.CreateTransactionRequest) (*models.Transaction, error) {
	env := req.Environment
	if env == "" {
		env = models.EnvironmentProduction
	}
	if !env.Valid() {
		return nil, utils.NewInvalidError("unknown environment %q", req.Environment)
	}

	action, err := s.Repo.GetAction(ctx, req.ActionID)
	if errors.Is(err, utils.ErrNotFound) || (err == nil && action.OrganizationID != org.ID) {
		return nil, utils.NewNotFoundError("action %s not found", req.ActionID)
	}
	if err != nil {
		return nil, fmt.Errorf("CreateTransaction: %w", err)
	}

	tx := &models.Transaction{
		ID:             uuid.New().String(),
		OrganizationID: org.ID,
		ActionID:       action.ID,
		UserID:         user.ID,
		Environment:    env,
		CreatedAt:      time.Now(),
	}
	if err := s.Repo.CreateTransaction(ctx, tx); err != nil {
		return nil, fmt.Errorf("CreateTransaction: %w", err)
	}
	utils.GetLogger().Debug("transaction created",
		zap.String("transactionId", tx.ID), zap.String("actionId", action.ID), zap.String("userId", user.ID))
	return tx, nil
}

func (s *DefaultTransactionService) GetTransaction(ctx context.Context, organizationID, id string) (*models.Transaction, error) {
	tx, err := s.Repo.GetTransaction(ctx, id)
	if errors.Is(err, utils.ErrNotFound) || (err == nil && tx.OrganizationID != organizationID) {
		return nil, utils.NewNotFoundError("transaction %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("GetTransaction: %w", err)
	}
	return tx, nil
}
