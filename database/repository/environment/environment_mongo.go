package environmentRepo

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

// MongoEnvironmentRepo implements EnvironmentRepository using MongoDB.
type MongoEnvironmentRepo struct {
	coll *mongo.Collection
}

func NewMongoEnvironmentRepo(db *mongo.Database) EnvironmentRepository {
	repo := &MongoEnvironmentRepo{coll: db.Collection("organization_environments")}
	if err := repo.ensureIndexes(); err != nil {
		utils.GetLogger().Error("failed to create environment indexes", zap.Error(err))
	}
	return repo
}

// ensureIndexes scopes slug uniqueness to the organization.
func (r *MongoEnvironmentRepo) ensureIndexes() error {
	ctx, cancel := database.NewContext(context.Background(), 10*time.Second)
	defer cancel()

	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{
			Keys:    bson.D{{Key: "organizationId", Value: 1}, {Key: "slug", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

func (r *MongoEnvironmentRepo) GetBySlug(ctx context.Context, organizationID, slug string) (*models.OrganizationEnvironment, error) {
	ctx, cancel := database.NewContext(ctx, 5*time.Second)
	defer cancel()

	var env models.OrganizationEnvironment
	err := r.coll.FindOne(ctx, bson.M{"organizationId": organizationID, "slug": slug}).Decode(&env)
	if err != nil {
		return nil, database.WrapFindError("GetBySlug", err)
	}
	return &env, nil
}

func (r *MongoEnvironmentRepo) ListByOrganization(ctx context.Context, organizationID string) ([]models.OrganizationEnvironment, error) {
	ctx, cancel := database.NewContext(ctx, 5*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cursor, err := r.coll.Find(ctx, bson.M{"organizationId": organizationID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list environments: %w", err)
	}
	envs := []models.OrganizationEnvironment{}
	if err := cursor.All(ctx, &envs); err != nil {
		return nil, fmt.Errorf("failed to decode environments: %w", err)
	}
	return envs, nil
}

func (r *MongoEnvironmentRepo) ListSlugsWithPrefix(ctx context.Context, organizationID, prefix string) ([]string, error) {
	ctx, cancel := database.NewContext(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"organizationId": organizationID,
		"slug":           bson.M{"$regex": "^" + regexp.QuoteMeta(prefix)},
	}
	cursor, err := r.coll.Find(ctx, filter, options.Find().SetProjection(bson.M{"slug": 1}))
	if err != nil {
		return nil, fmt.Errorf("failed to list environment slugs: %w", err)
	}
	var rows []struct {
		Slug string `bson:"slug"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode environment slugs: %w", err)
	}
	slugs := make([]string, 0, len(rows))
	for _, row := range rows {
		slugs = append(slugs, row.Slug)
	}
	return slugs, nil
}

func (r *MongoEnvironmentRepo) Create(ctx context.Context, env *models.OrganizationEnvironment) error {
	ctx, cancel := database.NewContext(ctx, 5*time.Second)
	defer cancel()

	env.CreatedAt = time.Now()
	_, err := r.coll.InsertOne(ctx, env)
	return database.WrapWriteError("failed to create environment", err)
}
