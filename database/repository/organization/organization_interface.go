package organizationRepo

import (
	"context"

	"tenantdesk/models"
)

// OrganizationRepository defines methods for organization data access.
type OrganizationRepository interface {
	GetByID(ctx context.Context, id string) (*models.Organization, error)
	GetBySlug(ctx context.Context, slug string) (*models.Organization, error)
	GetByIdpOrgID(ctx context.Context, idpOrgID string) (*models.Organization, error)
	GetByIDs(ctx context.Context, ids []string) ([]models.Organization, error)
	// ListSlugsWithPrefix returns every organization slug starting with prefix.
	ListSlugsWithPrefix(ctx context.Context, prefix string) ([]string, error)
	Create(ctx context.Context, org *models.Organization) error
	// SetSlackToken stores the Slack installation; an empty token clears it.
	SetSlackToken(ctx context.Context, id, token, teamName string) error
	SetDefaultNotificationMethod(ctx context.Context, id string, method *models.DeliveryMethod) error
}
