package organizationRepo

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"tenantdesk/database"
	"tenantdesk/models"
	"tenantdesk/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// MongoOrganizationRepo implements OrganizationRepository using MongoDB.
type MongoOrganizationRepo struct {
	coll *mongo.Collection
}

func NewMongoOrganizationRepo(db *mongo.Database) OrganizationRepository {
	repo := &MongoOrganizationRepo{coll: db.Collection("organizations")}
	if err := repo.ensureIndexes(); err != nil {
		utils.GetLogger().Error("failed to create organization indexes", zap.Error(err))
	}
	return repo
}

func (r *MongoOrganizationRepo) ensureIndexes() error {
	ctx, cancel := database.NewContext(context.Background(), 10*time.Second)
	defer cancel()

	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "slug", Value: 1}}, Options: options.Index().SetUnique(true)},
		{
			Keys: bson.D{{Key: "idpOrgId", Value: 1}},
			Options: options.Index().SetUnique(true).
				SetPartialFilterExpression(bson.M{"idpOrgId": bson.M{"$type": "string"}}),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

func (r *MongoOrganizationRepo) findOne(ctx context.Context, filter bson.M, op string) (*models.Organization, error) {
	ctx, cancel := database.NewContext(ctx, 5*time.Second)
	defer cancel()

	var org models.Organization
	if err := r.coll.FindOne(ctx, filter).Decode(&org); err != nil {
		return nil, database.WrapFindError(op, err)
	}
	return &org, nil
}

func (r *MongoOrganizationRepo) GetByID(ctx context.Context, id string) (*models.Organization, error) {
	return r.findOne(ctx, bson.M{"id": id}, "GetByID")
}

func (r *MongoOrganizationRepo) GetBySlug(ctx context.Context, slug string) (*models.Organization, error) {
	return r.findOne(ctx, bson.M{"slug": slug}, "GetBySlug")
}

func (r *MongoOrganizationRepo) GetByIdpOrgID(ctx context.Context, idpOrgID string) (*models.Organization, error) {
	return r.findOne(ctx, bson.M{"idpOrgId": idpOrgID}, "GetByIdpOrgID")
}

func (r *MongoOrganizationRepo) GetByIDs(ctx context.Context, ids []string) ([]models.Organization, error) {
	ctx, cancel := database.NewContext(ctx, 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := r.coll.Find(ctx, bson.M{"id": bson.M{"$in": ids}}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve organizations: %w", err)
	}
	var orgs []models.Organization
	if err := cursor.All(ctx, &orgs); err != nil {
		return nil, fmt.Errorf("failed to decode organizations: %w", err)
	}
	return orgs, nil
}

func (r *MongoOrganizationRepo) ListSlugsWithPrefix(ctx context.Context, prefix string) ([]string, error) {
	ctx, cancel := database.NewContext(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"slug": bson.M{"$regex": "^" + regexp.QuoteMeta(prefix)}}
	cursor, err := r.coll.Find(ctx, filter, options.Find().SetProjection(bson.M{"slug": 1}))
	if err != nil {
		return nil, fmt.Errorf("failed to list organization slugs: %w", err)
	}
	var rows []struct {
		Slug string `bson:"slug"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode organization slugs: %w", err)
	}
	slugs := make([]string, 0, len(rows))
	for _, row := range rows {
		slugs = append(slugs, row.Slug)
	}
	return slugs, nil
}

func (r *MongoOrganizationRepo) Create(ctx context.Context, org *models.Organization) error {
	ctx, cancel := database.NewContext(ctx, 5*time.Second)
	defer cancel()

	now := time.Now()
	org.CreatedAt = now
	org.UpdatedAt = now
	_, err := r.coll.InsertOne(ctx, org)
	return database.WrapWriteError("failed to create organization", err)
}

func (r *MongoOrganizationRepo) updateByID(ctx context.Context, id string, update bson.M) error {
	ctx, cancel := database.NewContext(ctx, 5*time.Second)
	defer cancel()

	result, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to update organization %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("organization %s: %w", id, utils.ErrNotFound)
	}
	return nil
}

func (r *MongoOrganizationRepo) SetSlackToken(ctx context.Context, id, token, teamName string) error {
	now := time.Now()
	if token == "" {
		return r.updateByID(ctx, id, bson.M{
			"$unset": bson.M{"slackAccessToken": "", "slackTeamName": ""},
			"$set":   bson.M{"updatedAt": now},
		})
	}
	return r.updateByID(ctx, id, bson.M{"$set": bson.M{
		"slackAccessToken": token,
		"slackTeamName":    teamName,
		"updatedAt":        now,
	}})
}

func (r *MongoOrganizationRepo) SetDefaultNotificationMethod(ctx context.Context, id string, method *models.DeliveryMethod) error {
	now := time.Now()
	if method == nil {
		return r.updateByID(ctx, id, bson.M{
			"$unset": bson.M{"defaultNotificationMethod": ""},
			"$set":   bson.M{"updatedAt": now},
		})
	}
	return r.updateByID(ctx, id, bson.M{"$set": bson.M{
		"defaultNotificationMethod": *method,
		"updatedAt":                 now,
	}})
}
