package accessRepo

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

// MongoAccessRepo implements AccessRepository using MongoDB.
type MongoAccessRepo struct {
	coll *mongo.Collection
}

func NewMongoAccessRepo(db *mongo.Database) AccessRepository {
	repo := &MongoAccessRepo{coll: db.Collection("user_organization_access")}
	ctx, cancel := database.NewContext(context.Background(), 10*time.Second)
	defer cancel()
	_, err := repo.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "organizationId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "organizationId", Value: 1}}},
	})
	if err != nil {
		utils.GetLogger().Error("failed to create access indexes", zap.Error(err))
	}
	return repo
}

func (r *MongoAccessRepo) Get(ctx context.Context, userID, organizationID string) (*models.UserOrganizationAccess, error) {
	ctx, cancel := database.NewContext(ctx, 5*time.Second)
	defer cancel()

	var access models.UserOrganizationAccess
	err := r.coll.FindOne(ctx, bson.M{"userId": userID, "organizationId": organizationID}).Decode(&access)
	if err != nil {
		return nil, database.WrapFindError("Get", err)
	}
	return &access, nil
}

func (r *MongoAccessRepo) list(ctx context.Context, filter bson.M) ([]models.UserOrganizationAccess, error) {
	ctx, cancel := database.NewContext(ctx, 5*time.Second)
	defer cancel()

	cursor, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list access: %w", err)
	}
	rows := []models.UserOrganizationAccess{}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode access: %w", err)
	}
	return rows, nil
}

func (r *MongoAccessRepo) ListByUser(ctx context.Context, userID string) ([]models.UserOrganizationAccess, error) {
	return r.list(ctx, bson.M{"userId": userID})
}

func (r *MongoAccessRepo) ListByOrganization(ctx context.Context, organizationID string) ([]models.UserOrganizationAccess, error) {
	return r.list(ctx, bson.M{"organizationId": organizationID})
}

func (r *MongoAccessRepo) Create(ctx context.Context, access *models.UserOrganizationAccess) error {
	ctx, cancel := database.NewContext(ctx, 5*time.Second)
	defer cancel()

	access.CreatedAt = time.Now()
	_, err := r.coll.InsertOne(ctx, access)
	return database.WrapWriteError("failed to create access", err)
}

// MongoInvitationRepo implements InvitationRepository using MongoDB.
type MongoInvitationRepo struct {
	coll *mongo.Collection
}

func NewMongoInvitationRepo(db *mongo.Database) InvitationRepository {
	repo := &MongoInvitationRepo{coll: db.Collection("user_organization_invitations")}
	ctx, cancel := database.NewContext(context.Background(), 10*time.Second)
	defer cancel()
	_, err := repo.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "email", Value: 1}, {Key: "status", Value: 1}}},
	})
	if err != nil {
		utils.GetLogger().Error("failed to create invitation indexes", zap.Error(err))
	}
	return repo
}

func (r *MongoInvitationRepo) GetByID(ctx context.Context, id string) (*models.UserOrganizationInvitation, error) {
	ctx, cancel := database.NewContext(ctx, 5*time.Second)
	defer cancel()

	var inv models.UserOrganizationInvitation
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&inv); err != nil {
		return nil, database.WrapFindError("GetByID", err)
	}
	return &inv, nil
}

func (r *MongoInvitationRepo) ListPendingByEmail(ctx context.Context, email string) ([]models.UserOrganizationInvitation, error) {
	ctx, cancel := database.NewContext(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"email": utils.NormalizeEmail(email), "status": models.InvitationPending}
	cursor, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list invitations: %w", err)
	}
	var invs []models.UserOrganizationInvitation
	if err := cursor.All(ctx, &invs); err != nil {
		return nil, fmt.Errorf("failed to decode invitations: %w", err)
	}
	return invs, nil
}

func (r *MongoInvitationRepo) Create(ctx context.Context, invitation *models.UserOrganizationInvitation) error {
	ctx, cancel := database.NewContext(ctx, 5*time.Second)
	defer cancel()

	invitation.Email = utils.NormalizeEmail(invitation.Email)
	invitation.CreatedAt = time.Now()
	_, err := r.coll.InsertOne(ctx, invitation)
	return database.WrapWriteError("failed to create invitation", err)
}

func (r *MongoInvitationRepo) MarkAccepted(ctx context.Context, id string) error {
	ctx, cancel := database.NewContext(ctx, 5*time.Second)
	defer cancel()

	now := time.Now()
	result, err := r.coll.UpdateOne(ctx,
		bson.M{"id": id, "status": models.InvitationPending},
		bson.M{"$set": bson.M{"status": models.InvitationAccepted, "acceptedAt": now}},
	)
	if err != nil {
		return fmt.Errorf("failed to accept invitation %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("pending invitation %s: %w", id, utils.ErrNotFound)
	}
	return nil
}
