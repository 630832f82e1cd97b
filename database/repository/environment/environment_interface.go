package environmentRepo

import (
	"context"

	"tenantdesk/models"
)

// EnvironmentRepository defines methods for organization environment data access.
type EnvironmentRepository interface {
	GetBySlug(ctx context.Context, organizationID, slug string) (*models.OrganizationEnvironment, error)
	ListByOrganization(ctx context.Context, organizationID string) ([]models.OrganizationEnvironment, error)
	// ListSlugsWithPrefix returns the environment slugs of one organization starting with prefix.
	ListSlugsWithPrefix(ctx context.Context, organizationID, prefix string) ([]string, error)
	Create(ctx context.Context, env *models.OrganizationEnvironment) error
}
