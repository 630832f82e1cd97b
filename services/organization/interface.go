package organization

import (
	"context"

	accessRepo "tenantdesk/database/repository/access"
	organizationRepo "tenantdesk/database/repository/organization"
	userRepo "tenantdesk/database/repository/user"
	"tenantdesk/models"
	"tenantdesk/services/email"
	"tenantdesk/services/environment"
	"tenantdesk/services/slack"
)

type OrganizationService interface {
	// Creation
	CreateOrganization(ctx context.Context, owner *models.User, name string) (*models.Organization, error)
	FindOrCreateForIdp(ctx context.Context, owner *models.User, idpOrgID, name string) (*models.Organization, error)

	// Lookup
	GetOrganization(ctx context.Context, slug string) (*models.Organization, error)
	ListForUser(ctx context.Context, userID string) ([]models.Organization, error)
	ListMembers(ctx context.Context, organizationID string) ([]models.Member, error)

	// Access
	RequireAccess(ctx context.Context, userID, orgSlug string) (*models.Organization, *models.UserOrganizationAccess, error)
	RequireOwner(ctx context.Context, userID, orgSlug string) (*models.Organization, error)
	EnsureAccess(ctx context.Context, userID, organizationID string, role models.AccessRole) error

	// Invitations
	Invite(ctx context.Context, org *models.Organization, inviter *models.User, req models.InviteRequest) (*models.UserOrganizationInvitation, error)
	AcceptInvitation(ctx context.Context, user *models.User, invitationID string) (*models.Organization, error)
	AcceptPendingInvitations(ctx context.Context, user *models.User) (int, error)

	// Settings
	ConnectSlack(ctx context.Context, org *models.Organization, token, teamName string) error
	DisconnectSlack(ctx context.Context, org *models.Organization) error
	ListSlackChannels(ctx context.Context, org *models.Organization) ([]slack.Channel, error)
	SetDefaultNotificationMethod(ctx context.Context, org *models.Organization, method *models.DeliveryMethod) error
}

// DefaultOrganizationService is the production implementation.
type DefaultOrganizationService struct {
	Repo         organizationRepo.OrganizationRepository
	Access       accessRepo.AccessRepository
	Invitations  accessRepo.InvitationRepository
	Users        userRepo.UserRepository
	Environments environment.EnvironmentService
	Email        email.Sender
	Slack        slack.Client
	AppBaseURL   string
}
