package organization

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"tenantdesk/models"
	"tenantdesk/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CreateOrganization creates an organization owned by owner, with a slug
// unique across all organizations and the default environments.
func (s *DefaultOrganizationService) CreateOrganization(ctx context.Context, owner *models.User, name string) (*models.Organization, error) {
	return s.create(ctx, owner, name, "")
}

// FindOrCreateForIdp returns the organization linked to an identity
// provider organization, creating it on first sign-in.
func (s *DefaultOrganizationService) FindOrCreateForIdp(ctx context.Context, owner *models.User, idpOrgID, name string) (*models.Organization, error) {
	org, err := s.Repo.GetByIdpOrgID(ctx, idpOrgID)
	if err == nil {
		return org, nil
	}
	if !errors.Is(err, utils.ErrNotFound) {
		return nil, fmt.Errorf("FindOrCreateForIdp: %w", err)
	}
	if strings.TrimSpace(name) == "" {
		name = owner.Name
	}
	org, err = s.create(ctx, owner, name, idpOrgID)
	var taken *idpOrgTakenError
	if errors.As(err, &taken) {
		return taken.existing, nil
	}
	return org, err
}

// idpOrgTakenError reports that a concurrent sign-in linked the IdP
// organization first. It does not wrap ErrDuplicateKey, so slug retries stop.
type idpOrgTakenError struct {
	existing *models.Organization
}

func (e *idpOrgTakenError) Error() string {
	return fmt.Sprintf("idp organization %s already linked to %s", e.existing.IdpOrgID, e.existing.ID)
}

func (s *DefaultOrganizationService) create(ctx context.Context, owner *models.User, name, idpOrgID string) (*models.Organization, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, utils.NewInvalidError("organization name is required")
	}

	now := time.Now()
	org := &models.Organization{
		ID:        uuid.New().String(),
		Name:      name,
		OwnerID:   owner.ID,
		IdpOrgID:  idpOrgID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err := utils.CreateWithUniqueSlug(ctx, name, s.Repo.ListSlugsWithPrefix, func(slug string) error {
		org.Slug = slug
		err := s.Repo.Create(ctx, org)
		if idpOrgID != "" && errors.Is(err, utils.ErrDuplicateKey) {
			if existing, lookupErr := s.Repo.GetByIdpOrgID(ctx, idpOrgID); lookupErr == nil {
				return &idpOrgTakenError{existing: existing}
			}
		}
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("CreateOrganization: %w", err)
	}

	if err := s.EnsureAccess(ctx, owner.ID, org.ID, models.RoleOwner); err != nil {
		return nil, err
	}
	if err := s.Environments.CreateDefaultEnvironments(ctx, org.ID); err != nil {
		return nil, fmt.Errorf("CreateOrganization: default environments: %w", err)
	}

	utils.GetLogger().Info("organization created",
		zap.String("organizationId", org.ID),
		zap.String("slug", org.Slug),
		zap.String("ownerId", owner.ID))
	return org, nil
}

func (s *DefaultOrganizationService) GetOrganization(ctx context.Context, slug string) (*models.Organization, error) {
	org, err := s.Repo.GetBySlug(ctx, slug)
	if errors.Is(err, utils.ErrNotFound) {
		return nil, utils.NewNotFoundError("organization %s not found", slug)
	}
	if err != nil {
		return nil, fmt.Errorf("GetOrganization: %w", err)
	}
	return org, nil
}

func (s *DefaultOrganizationService) ListForUser(ctx context.Context, userID string) ([]models.Organization, error) {
	rows, err := s.Access.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("ListForUser: %w", err)
	}
	if len(rows) == 0 {
		return []models.Organization{}, nil
	}
	ids := make([]string, len(rows))
	for i, r := range rows {
		ids[i] = r.OrganizationID
	}
	orgs, err := s.Repo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("ListForUser: %w", err)
	}
	return orgs, nil
}

func (s *DefaultOrganizationService) ListMembers(ctx context.Context, organizationID string) ([]models.Member, error) {
	rows, err := s.Access.ListByOrganization(ctx, organizationID)
	if err != nil {
		return nil, fmt.Errorf("ListMembers: %w", err)
	}
	ids := make([]string, len(rows))
	for i, r := range rows {
		ids[i] = r.UserID
	}
	users, err := s.Users.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("ListMembers: %w", err)
	}
	byID := make(map[string]models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	members := make([]models.Member, 0, len(rows))
	for _, r := range rows {
		u, ok := byID[r.UserID]
		if !ok || u.Deleted {
			continue
		}
		members = append(members, models.Member{UserID: u.ID, Email: u.Email, Name: u.Name, Role: r.Role})
	}
	return members, nil
}

// RequireAccess resolves orgSlug and checks the user may see it. Unknown
// organizations are NotFound, organizations without an access row Forbidden.
func (s *DefaultOrganizationService) RequireAccess(ctx context.Context, userID, orgSlug string) (*models.Organization, *models.UserOrganizationAccess, error) {
	org, err := s.GetOrganization(ctx, orgSlug)
	if err != nil {
		return nil, nil, err
	}
	access, err := s.Access.Get(ctx, userID, org.ID)
	if errors.Is(err, utils.ErrNotFound) {
		return nil, nil, utils.NewForbiddenError("no access to organization %s", orgSlug)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("RequireAccess: %w", err)
	}
	return org, access, nil
}

func (s *DefaultOrganizationService) RequireOwner(ctx context.Context, userID, orgSlug string) (*models.Organization, error) {
	org, access, err := s.RequireAccess(ctx, userID, orgSlug)
	if err != nil {
		return nil, err
	}
	if access.Role != models.RoleOwner {
		return nil, utils.NewForbiddenError("only owners can change organization %s", orgSlug)
	}
	return org, nil
}

// EnsureAccess grants role unless the user already has access.
func (s *DefaultOrganizationService) EnsureAccess(ctx context.Context, userID, organizationID string, role models.AccessRole) error {
	err := s.Access.Create(ctx, &models.UserOrganizationAccess{
		ID:             uuid.New().String(),
		UserID:         userID,
		OrganizationID: organizationID,
		Role:           role,
		CreatedAt:      time.Now(),
	})
	if err != nil && !errors.Is(err, utils.ErrDuplicateKey) {
		return fmt.Errorf("EnsureAccess: %w", err)
	}
	return nil
}
