package environment

import (
	"context"
	"fmt"
	"strings"
	"time"

	environmentRepo "tenantdesk/database/repository/environment"
	"tenantdesk/models"
	"tenantdesk/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type EnvironmentService interface {
	CreateEnvironment(ctx context.Context, organizationID string, req models.CreateEnvironmentRequest) (*models.OrganizationEnvironment, error)
	ListEnvironments(ctx context.Context, organizationID string) ([]models.OrganizationEnvironment, error)
	// CreateDefaultEnvironments adds "production" and "development" to a new organization.
	CreateDefaultEnvironments(ctx context.Context, organizationID string) error
}

// DefaultEnvironmentService is the production implementation.
type DefaultEnvironmentService struct {
	Repo environmentRepo.EnvironmentRepository
}

func (s *DefaultEnvironmentService) CreateEnvironment(ctx context.Context, organizationID string, req models.CreateEnvironmentRequest) (*models.OrganizationEnvironment, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, utils.NewInvalidError("environment name is required")
	}
	if req.Type == "" {
		req.Type = models.EnvironmentDevelopment
	}
	if !req.Type.Valid() {
		return nil, utils.NewInvalidError("unknown environment type %q", req.Type)
	}

	env := &models.OrganizationEnvironment{
		ID:             uuid.New().String(),
		OrganizationID: organizationID,
		Name:           name,
		Type:           req.Type,
		CreatedAt:      time.Now(),
	}
	list := func(ctx context.Context, prefix string) ([]string, error) {
		return s.Repo.ListSlugsWithPrefix(ctx, organizationID, prefix)
	}
	_, err := utils.CreateWithUniqueSlug(ctx, name, list, func(slug string) error {
		env.Slug = slug
		return s.Repo.Create(ctx, env)
	})
	if err != nil {
		return nil, fmt.Errorf("CreateEnvironment: %w", err)
	}

	utils.GetLogger().Info("environment created",
		zap.String("organizationId", organizationID),
		zap.String("slug", env.Slug),
		zap.String("type", string(env.Type)))
	return env, nil
}

func (s *DefaultEnvironmentService) ListEnvironments(ctx context.Context, organizationID string) ([]models.OrganizationEnvironment, error) {
	envs, err := s.Repo.ListByOrganization(ctx, organizationID)
	if err != nil {
		return nil, fmt.Errorf("ListEnvironments: %w", err)
	}
	return envs, nil
}

func (s *DefaultEnvironmentService) CreateDefaultEnvironments(ctx context.Context, organizationID string) error {
	defaults := []models.CreateEnvironmentRequest{
		{Name: "production", Type: models.EnvironmentProduction},
		{Name: "development", Type: models.EnvironmentDevelopment},
	}
	for _, req := range defaults {
		if _, err := s.CreateEnvironment(ctx, organizationID, req); err != nil {
			return err
		}
	}
	return nil
}
