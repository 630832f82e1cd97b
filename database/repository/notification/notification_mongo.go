package notificationRepo

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

// MongoNotificationRepo keeps notifications and deliveries in separate
// collections so each delivery row is updated on its own.
type MongoNotificationRepo struct {
	notifications *mongo.Collection
	deliveries    *mongo.Collection
}

func NewMongoNotificationRepo(db *mongo.Database) NotificationRepository {
	repo := &MongoNotificationRepo{
		notifications: db.Collection("notifications"),
		deliveries:    db.Collection("notification_deliveries"),
	}
	if err := repo.ensureIndexes(); err != nil {
		utils.GetLogger().Error("failed to create notification indexes", zap.Error(err))
	}
	return repo
}

func (r *MongoNotificationRepo) ensureIndexes() error {
	ctx, cancel := database.NewContext(context.Background(), 10*time.Second)
	defer cancel()

	_, err := r.notifications.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{
			Keys: bson.D{{Key: "organizationId", Value: 1}, {Key: "idempotencyKey", Value: 1}},
			Options: options.Index().SetUnique(true).
				SetPartialFilterExpression(bson.M{"idempotencyKey": bson.M{"$type": "string"}}),
		},
		{Keys: bson.D{{Key: "transactionId", Value: 1}}, Options: options.Index().SetSparse(true)},
	})
	if err != nil {
		return fmt.Errorf("failed to create notification indexes: %w", err)
	}
	_, err = r.deliveries.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "notificationId", Value: 1}, {Key: "status", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create delivery indexes: %w", err)
	}
	return nil
}

func (r *MongoNotificationRepo) GetByID(ctx context.Context, id string) (*models.Notification, error) {
	ctx, cancel := database.NewContext(ctx, 5*time.Second)
	defer cancel()

	var n models.Notification
	if err := r.notifications.FindOne(ctx, bson.M{"id": id}).Decode(&n); err != nil {
		return nil, database.WrapFindError("GetByID", err)
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cursor, err := r.deliveries.Find(ctx, bson.M{"notificationId": id}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to load deliveries for %s: %w", id, err)
	}
	n.Deliveries = []models.NotificationDelivery{}
	if err := cursor.All(ctx, &n.Deliveries); err != nil {
		return nil, fmt.Errorf("failed to decode deliveries for %s: %w", id, err)
	}
	return &n, nil
}

func (r *MongoNotificationRepo) GetByIdempotencyKey(ctx context.Context, organizationID, key string) (*models.Notification, error) {
	ctx, cancel := database.NewContext(ctx, 5*time.Second)
	defer cancel()

	var n models.Notification
	err := r.notifications.FindOne(ctx, bson.M{"organizationId": organizationID, "idempotencyKey": key}).Decode(&n)
	if err != nil {
		return nil, database.WrapFindError("GetByIdempotencyKey", err)
	}
	return &n, nil
}

func (r *MongoNotificationRepo) Create(ctx context.Context, n *models.Notification) error {
	ctx, cancel := database.NewContext(ctx, 10*time.Second)
	defer cancel()

	if _, err := r.notifications.InsertOne(ctx, n); err != nil {
		return database.WrapWriteError("failed to create notification", err)
	}
	if len(n.Deliveries) == 0 {
		return nil
	}

	docs := make([]interface{}, 0, len(n.Deliveries))
	for i := range n.Deliveries {
		docs = append(docs, n.Deliveries[i])
	}
	if _, err := r.deliveries.InsertMany(ctx, docs); err != nil {
		// Without deliveries the notification is meaningless; remove it so a
		// retry with the same idempotency key is not swallowed.
		if _, delErr := r.notifications.DeleteOne(ctx, bson.M{"id": n.ID}); delErr != nil {
			utils.GetLogger().Error("failed to roll back notification",
				zap.String("notificationId", n.ID), zap.Error(delErr))
		}
		return database.WrapWriteError("failed to create deliveries", err)
	}
	return nil
}

func (r *MongoNotificationRepo) CreateDelivery(ctx context.Context, d *models.NotificationDelivery) error {
	ctx, cancel := database.NewContext(ctx, 5*time.Second)
	defer cancel()

	_, err := r.deliveries.InsertOne(ctx, d)
	return database.WrapWriteError("failed to create delivery", err)
}

func (r *MongoNotificationRepo) CompleteDelivery(ctx context.Context, id string, status models.DeliveryStatus, errMsg, userID string) error {
	ctx, cancel := database.NewContext(ctx, 5*time.Second)
	defer cancel()

	set := bson.M{"status": status, "updatedAt": time.Now()}
	if errMsg != "" {
		set["error"] = errMsg
	}
	if userID != "" {
		set["userId"] = userID
	}
	result, err := r.deliveries.UpdateOne(ctx,
		bson.M{"id": id, "status": models.DeliveryPending},
		bson.M{"$set": set},
	)
	if err != nil {
		return fmt.Errorf("failed to complete delivery %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("pending delivery %s: %w", id, utils.ErrNotFound)
	}
	return nil
}

func (r *MongoNotificationRepo) FailPendingDeliveries(ctx context.Context, notificationID, errMsg string) error {
	ctx, cancel := database.NewContext(ctx, 5*time.Second)
	defer cancel()

	_, err := r.deliveries.UpdateMany(ctx,
		bson.M{"notificationId": notificationID, "status": models.DeliveryPending},
		bson.M{"$set": bson.M{"status": models.DeliveryFailed, "error": errMsg, "updatedAt": time.Now()}},
	)
	if err != nil {
		return fmt.Errorf("failed to fail deliveries of %s: %w", notificationID, err)
	}
	return nil
}
