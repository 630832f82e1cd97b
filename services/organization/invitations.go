package organization

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"tenantdesk/models"
	"tenantdesk/services/email"
	"tenantdesk/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Invite records a pending invitation for an email address and mails it.
// A failed email is logged; the invitation stays valid.
func (s *DefaultOrganizationService) Invite(ctx context.Context, org *models.Organization, inviter *models.User, req models.InviteRequest) (*models.UserOrganizationInvitation, error) {
	addr := utils.NormalizeEmail(req.Email)
	if !utils.IsEmail(addr) {
		return nil, utils.NewInvalidError("%q is not a valid email address", req.Email)
	}
	role := req.Role
	if role == "" {
		role = models.RoleMember
	}
	if role != models.RoleMember && role != models.RoleOwner {
		return nil, utils.NewInvalidError("unknown role %q", req.Role)
	}

	if existing, err := s.Users.GetByEmail(ctx, addr); err == nil {
		if _, err := s.Access.Get(ctx, existing.ID, org.ID); err == nil {
			return nil, utils.NewConflictError("%s is already a member of %s", addr, org.Slug)
		}
	} else if !errors.Is(err, utils.ErrNotFound) {
		return nil, fmt.Errorf("Invite: %w", err)
	}

	inv := &models.UserOrganizationInvitation{
		ID:             uuid.New().String(),
		OrganizationID: org.ID,
		Email:          addr,
		InviterID:      inviter.ID,
		Role:           role,
		Status:         models.InvitationPending,
		CreatedAt:      time.Now(),
	}
	if err := s.Invitations.Create(ctx, inv); err != nil {
		return nil, fmt.Errorf("Invite: %w", err)
	}

	_, err := s.Email.Send(ctx, addr, email.TemplateInvitation, email.TemplateData{
		InviterName:      inviter.Name,
		OrganizationName: org.Name,
		ActionURL:        strings.TrimRight(s.AppBaseURL, "/") + "/invitations/" + inv.ID,
		CreatedAt:        inv.CreatedAt,
	})
	if err != nil {
		utils.GetLogger().Warn("invitation email failed",
			zap.String("invitationId", inv.ID), zap.String("email", addr), zap.Error(err))
	}
	return inv, nil
}

// AcceptInvitation grants the invited access to user.
func (s *DefaultOrganizationService) AcceptInvitation(ctx context.Context, user *models.User, invitationID string) (*models.Organization, error) {
	inv, err := s.Invitations.GetByID(ctx, invitationID)
	if errors.Is(err, utils.ErrNotFound) {
		return nil, utils.NewNotFoundError("invitation %s not found", invitationID)
	}
	if err != nil {
		return nil, fmt.Errorf("AcceptInvitation: %w", err)
	}
	if !strings.EqualFold(inv.Email, strings.TrimSpace(user.Email)) {
		return nil, utils.NewForbiddenError("invitation %s was sent to a different address", invitationID)
	}
	if inv.Status != models.InvitationPending {
		return nil, utils.NewConflictError("invitation %s was already accepted", invitationID)
	}

	if err := s.accept(ctx, user, inv); err != nil {
		return nil, err
	}
	org, err := s.Repo.GetByID(ctx, inv.OrganizationID)
	if err != nil {
		return nil, fmt.Errorf("AcceptInvitation: %w", err)
	}
	return org, nil
}

// AcceptPendingInvitations accepts every invitation addressed to the
// user's email and returns how many were accepted.
func (s *DefaultOrganizationService) AcceptPendingInvitations(ctx context.Context, user *models.User) (int, error) {
	invs, err := s.Invitations.ListPendingByEmail(ctx, utils.NormalizeEmail(user.Email))
	if err != nil {
		return 0, fmt.Errorf("AcceptPendingInvitations: %w", err)
	}
	accepted := 0
	for i := range invs {
		if err := s.accept(ctx, user, &invs[i]); err != nil {
			return accepted, err
		}
		accepted++
	}
	return accepted, nil
}

func (s *DefaultOrganizationService) accept(ctx context.Context, user *models.User, inv *models.UserOrganizationInvitation) error {
	if err := s.EnsureAccess(ctx, user.ID, inv.OrganizationID, inv.Role); err != nil {
		return err
	}
	if err := s.Invitations.MarkAccepted(ctx, inv.ID); err != nil {
		return fmt.Errorf("accept invitation %s: %w", inv.ID, err)
	}
	utils.GetLogger().Info("invitation accepted",
		zap.String("invitationId", inv.ID),
		zap.String("organizationId", inv.OrganizationID),
		zap.String("userId", user.ID))
	return nil
}
