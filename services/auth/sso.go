package auth

import (
	"context"
	"errors"
	"fmt"

	"tenantdesk/models"
	"tenantdesk/services/featureflag"
	"tenantdesk/utils"

	"go.uber.org/zap"
)

func (s *DefaultAuthService) SSOLoginURL(ctx context.Context, state string) (string, error) {
	if !s.ssoEnabled(ctx) {
		return "", utils.NewForbiddenError("single sign-on is disabled")
	}
	return s.IdP.AuthCodeURL(state), nil
}

// SSOCallback completes an identity provider sign-in: it finds or creates
// the user and their organization, grants access, accepts pending
// invitations and starts a session.
func (s *DefaultAuthService) SSOCallback(ctx context.Context, code string) (*AuthResponse, error) {
	if !s.ssoEnabled(ctx) {
		return nil, utils.NewForbiddenError("single sign-on is disabled")
	}
	if code == "" {
		return nil, utils.NewInvalidError("authorization code is required")
	}

	profile, err := s.IdP.Exchange(ctx, code)
	if err != nil {
		utils.GetLogger().Warn("sso exchange failed", zap.Error(err))
		return nil, &utils.AppError{Code: utils.CodeUnauthorized, Message: "single sign-on failed", Err: err}
	}

	user, created, err := s.findOrCreateSSOUser(ctx, profile)
	if err != nil {
		return nil, err
	}

	var org *models.Organization
	switch {
	case profile.OrganizationID != "":
		org, err = s.Organizations.FindOrCreateForIdp(ctx, user, profile.OrganizationID, profile.OrganizationName)
		if err != nil {
			return nil, fmt.Errorf("SSOCallback: organization: %w", err)
		}
		if err := s.Organizations.EnsureAccess(ctx, user.ID, org.ID, models.RoleMember); err != nil {
			return nil, fmt.Errorf("SSOCallback: %w", err)
		}
	case created:
		org, err = s.Organizations.CreateOrganization(ctx, user, user.Name)
		if err != nil {
			return nil, fmt.Errorf("SSOCallback: personal organization: %w", err)
		}
	}

	if n, err := s.Organizations.AcceptPendingInvitations(ctx, user); err != nil {
		utils.GetLogger().Warn("failed to accept pending invitations", zap.String("userId", user.ID), zap.Error(err))
	} else if n > 0 {
		utils.GetLogger().Info("accepted pending invitations", zap.String("userId", user.ID), zap.Int("count", n))
	}

	resp, err := s.issueToken(ctx, user)
	if err != nil {
		return nil, err
	}
	resp.Organization = org
	return resp, nil
}

// findOrCreateSSOUser looks the user up by IdP id, then by email (linking
// the IdP id), and creates them otherwise. created reports the last case.
func (s *DefaultAuthService) findOrCreateSSOUser(ctx context.Context, profile *models.SSOProfile) (user *models.User, created bool, err error) {
	user, err = s.Users.GetByIdpID(ctx, profile.IdpID)
	if err == nil {
		return user, false, nil
	}
	if !errors.Is(err, utils.ErrNotFound) {
		return nil, false, fmt.Errorf("SSOCallback: lookup by idp id: %w", err)
	}

	addr := utils.NormalizeEmail(profile.Email)
	user, err = s.linkByEmail(ctx, addr, profile.IdpID)
	if err == nil {
		return user, false, nil
	}
	if !errors.Is(err, utils.ErrNotFound) {
		return nil, false, err
	}

	user = &models.User{Email: addr, Name: profile.FullName(), IdpID: profile.IdpID}
	if user.Name == "" {
		user.Name = addr
	}
	err = s.createUser(ctx, user)
	if errors.Is(err, utils.ErrDuplicateKey) {
		// created concurrently, by email or by idp id
		if existing, lookupErr := s.Users.GetByIdpID(ctx, profile.IdpID); lookupErr == nil {
			return existing, false, nil
		}
		user, err = s.linkByEmail(ctx, addr, profile.IdpID)
		return user, false, err
	}
	if err != nil {
		return nil, false, err
	}
	utils.GetLogger().Info("sso user created", zap.String("userId", user.ID), zap.String("idpId", user.IdpID))
	return user, true, nil
}

func (s *DefaultAuthService) linkByEmail(ctx context.Context, addr, idpID string) (*models.User, error) {
	user, err := s.Users.GetByEmail(ctx, addr)
	if err != nil {
		return nil, err
	}
	if user.IdpID != idpID {
		user.IdpID = idpID
		if err := s.Users.Update(ctx, user); err != nil {
			return nil, fmt.Errorf("SSOCallback: link idp id: %w", err)
		}
	}
	return user, nil
}

func (s *DefaultAuthService) ssoEnabled(ctx context.Context) bool {
	return s.IdP != nil && s.Flags.IsEnabled(ctx, featureflag.FlagSSOLogin)
}
