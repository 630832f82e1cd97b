package accessRepo

import (
	"context"

	"tenantdesk/models"
)

// AccessRepository stores which users can reach which organizations.
type AccessRepository interface {
	Get(ctx context.Context, userID, organizationID string) (*models.UserOrganizationAccess, error)
	ListByUser(ctx context.Context, userID string) ([]models.UserOrganizationAccess, error)
	ListByOrganization(ctx context.Context, organizationID string) ([]models.UserOrganizationAccess, error)
	// Create inserts an access row. A second row for the same pair wraps utils.ErrDuplicateKey.
	Create(ctx context.Context, access *models.UserOrganizationAccess) error
}

// InvitationRepository stores pending organization invitations.
type InvitationRepository interface {
	GetByID(ctx context.Context, id string) (*models.UserOrganizationInvitation, error)
	ListPendingByEmail(ctx context.Context, email string) ([]models.UserOrganizationInvitation, error)
	Create(ctx context.Context, invitation *models.UserOrganizationInvitation) error
	MarkAccepted(ctx context.Context, id string) error
}
