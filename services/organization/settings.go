package organization

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"tenantdesk/models"
	"tenantdesk/services/slack"
	"tenantdesk/utils"

	"go.uber.org/zap"
)

func (s *DefaultOrganizationService) ConnectSlack(ctx context.Context, org *models.Organization, token, teamName string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return utils.NewInvalidError("slack access token is required")
	}
	if err := s.Repo.SetSlackToken(ctx, org.ID, token, teamName); err != nil {
		return fmt.Errorf("ConnectSlack: %w", err)
	}
	org.SlackAccessToken, org.SlackTeamName = token, teamName
	utils.GetLogger().Info("slack connected", zap.String("organizationId", org.ID), zap.String("team", teamName))
	return nil
}

func (s *DefaultOrganizationService) DisconnectSlack(ctx context.Context, org *models.Organization) error {
	if err := s.Repo.SetSlackToken(ctx, org.ID, "", ""); err != nil {
		return fmt.Errorf("DisconnectSlack: %w", err)
	}
	org.SlackAccessToken, org.SlackTeamName = "", ""
	return nil
}

// ListSlackChannels lists the channels the organization's app can post to.
// An uninstalled app clears the stored token.
func (s *DefaultOrganizationService) ListSlackChannels(ctx context.Context, org *models.Organization) ([]slack.Channel, error) {
	if !org.HasSlack() {
		return nil, utils.NewInvalidError("organization %s has not connected Slack", org.Slug)
	}
	channels, err := s.Slack.ListChannels(ctx, org.SlackAccessToken)
	switch {
	case err == nil:
		return channels, nil
	case slack.IsAppUninstalled(err):
		if clearErr := s.DisconnectSlack(ctx, org); clearErr != nil {
			utils.GetLogger().Error("failed to clear uninstalled Slack token", zap.Error(clearErr))
		}
		return nil, &utils.AppError{Code: utils.CodeInvalid, Message: "the Slack app was uninstalled, reconnect Slack", Err: err}
	case errors.Is(err, slack.ErrMissingScope):
		return nil, &utils.AppError{Code: utils.CodeInvalid, Message: "the Slack app is missing a permission, reinstall it", Err: err}
	default:
		return nil, fmt.Errorf("ListSlackChannels: %w", err)
	}
}

func (s *DefaultOrganizationService) SetDefaultNotificationMethod(ctx context.Context, org *models.Organization, method *models.DeliveryMethod) error {
	if method != nil && !method.Valid() {
		return utils.NewInvalidError("unknown delivery method %q", *method)
	}
	if err := s.Repo.SetDefaultNotificationMethod(ctx, org.ID, method); err != nil {
		return fmt.Errorf("SetDefaultNotificationMethod: %w", err)
	}
	org.DefaultNotificationMethod = method
	return nil
}
