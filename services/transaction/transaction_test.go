package transaction

import (
	"context"
	"testing"

	"tenantdesk/models"
	"tenantdesk/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memRepo struct {
	transactions map[string]*models.Transaction
	actions      map[string]*models.Action
}

func newMemRepo() *memRepo {
	return &memRepo{transactions: map[string]*models.Transaction{}, actions: map[string]*models.Action{}}
}

func (m *memRepo) GetTransaction(_ context.Context, id string) (*models.Transaction, error) {
	if tx, ok := m.transactions[id]; ok {
		return tx, nil
	}
	return nil, utils.ErrNotFound
}

func (m *memRepo) CreateTransaction(_ context.Context, tx *models.Transaction) error {
	m.transactions[tx.ID] = tx
	return nil
}

func (m *memRepo) GetAction(_ context.Context, id string) (*models.Action, error) {
	if a, ok := m.actions[id]; ok {
		return a, nil
	}
	return nil, utils.ErrNotFound
}

func (m *memRepo) CreateAction(_ context.Context, a *models.Action) error {
	m.actions[a.ID] = a
	return nil
}

func TestCreateActionValidatesPolicy(t *testing.T) {
	svc := &DefaultTransactionService{Repo: newMemRepo()}
	org := &models.Organization{ID: "org-1"}
	ctx := context.Background()

	_, err := svc.CreateAction(ctx, org, models.CreateActionRequest{Name: "refund", DefaultDelivery: `{"method":"FAX"}`})
	assert.True(t, utils.HasCode(err, utils.CodeInvalid))

	_, err = svc.CreateAction(ctx, org, models.CreateActionRequest{Name: " "})
	assert.True(t, utils.HasCode(err, utils.CodeInvalid))

	action, err := svc.CreateAction(ctx, org, models.CreateActionRequest{Name: "refund", DefaultDelivery: ` {"method":"SLACK"} `})
	require.NoError(t, err)
	assert.Equal(t, `{"method":"SLACK"}`, action.DefaultDelivery)
	assert.Equal(t, "org-1", action.OrganizationID)
}

func TestCreateAndGetTransaction(t *testing.T) {
	repo := newMemRepo()
	svc := &DefaultTransactionService{Repo: repo}
	org := &models.Organization{ID: "org-1"}
	user := &models.User{ID: "u-1"}
	ctx := context.Background()

	action, err := svc.CreateAction(ctx, org, models.CreateActionRequest{Name: "refund"})
	require.NoError(t, err)

	tx, err := svc.CreateTransaction(ctx, org, user, models.CreateTransactionRequest{ActionID: action.ID})
	require.NoError(t, err)
	assert.Equal(t, models.EnvironmentProduction, tx.Environment)
	assert.Equal(t, "u-1", tx.UserID)

	got, err := svc.GetTransaction(ctx, "org-1", tx.ID)
	require.NoError(t, err)
	assert.Equal(t, tx, got)

	_, err = svc.GetTransaction(ctx, "org-2", tx.ID)
	assert.True(t, utils.HasCode(err, utils.CodeNotFound))

	_, err = svc.CreateTransaction(ctx, &models.Organization{ID: "org-2"}, user, models.CreateTransactionRequest{ActionID: action.ID})
	assert.True(t, utils.HasCode(err, utils.CodeNotFound))

	_, err = svc.CreateTransaction(ctx, org, user, models.CreateTransactionRequest{ActionID: action.ID, Environment: "QA"})
	assert.True(t, utils.HasCode(err, utils.CodeInvalid))
}
