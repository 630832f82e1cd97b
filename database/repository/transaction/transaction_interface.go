package transactionRepo

import (
	"context"

	"tenantdesk/models"
)

// TransactionRepository stores actions and the transactions run against them.
type TransactionRepository interface {
	GetTransaction(ctx context.Context, id string) (*models.Transaction, error)
	CreateTransaction(ctx context.Context, tx *models.Transaction) error
	GetAction(ctx context.Context, id string) (*models.Action, error)
	CreateAction(ctx context.Context, action *models.Action) error
}
