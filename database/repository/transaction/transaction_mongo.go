package transactionRepo

import (
	"context"
	"fmt"
	"time"

	"tenantdesk/database"
	"tenantdesk/models"
	"tenantdesk/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// MongoTransactionRepo implements TransactionRepository using MongoDB.
type MongoTransactionRepo struct {
	transactions *mongo.Collection
	actions      *mongo.Collection
}

func NewMongoTransactionRepo(db *mongo.Database) TransactionRepository {
	repo := &MongoTransactionRepo{
		transactions: db.Collection("transactions"),
		actions:      db.Collection("actions"),
	}
	ctx, cancel := database.NewContext(context.Background(), 10*time.Second)
	defer cancel()
	unique := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "organizationId", Value: 1}}},
	}
	for _, coll := range []*mongo.Collection{repo.transactions, repo.actions} {
		if _, err := coll.Indexes().CreateMany(ctx, unique); err != nil {
			utils.GetLogger().Error("failed to create indexes",
				zap.String("collection", coll.Name()), zap.Error(err))
		}
	}
	return repo
}

func (r *MongoTransactionRepo) GetTransaction(ctx context.Context, id string) (*models.Transaction, error) {
	ctx, cancel := database.NewContext(ctx, 5*time.Second)
	defer cancel()

	var tx models.Transaction
	if err := r.transactions.FindOne(ctx, bson.M{"id": id}).Decode(&tx); err != nil {
		return nil, database.WrapFindError("GetTransaction", err)
	}
	return &tx, nil
}

func (r *MongoTransactionRepo) CreateTransaction(ctx context.Context, tx *models.Transaction) error {
	ctx, cancel := database.NewContext(ctx, 5*time.Second)
	defer cancel()

	tx.CreatedAt = time.Now()
	if _, err := r.transactions.InsertOne(ctx, tx); err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

func (r *MongoTransactionRepo) GetAction(ctx context.Context, id string) (*models.Action, error) {
	ctx, cancel := database.NewContext(ctx, 5*time.Second)
	defer cancel()

	var action models.Action
	if err := r.actions.FindOne(ctx, bson.M{"id": id}).Decode(&action); err != nil {
		return nil, database.WrapFindError("GetAction", err)
	}
	return &action, nil
}

func (r *MongoTransactionRepo) CreateAction(ctx context.Context, action *models.Action) error {
	ctx, cancel := database.NewContext(ctx, 5*time.Second)
	defer cancel()

	action.CreatedAt = time.Now()
	if _, err := r.actions.InsertOne(ctx, action); err != nil {
		return fmt.Errorf("failed to create action: %w", err)
	}
	return nil
}
