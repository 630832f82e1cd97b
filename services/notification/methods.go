package notification

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"tenantdesk/models"
	"tenantdesk/services/email"
	"tenantdesk/services/featureflag"
	"tenantdesk/services/slack"
	"tenantdesk/utils"
)

var (
	ErrInvalidDestination  = errors.New("invalid destination")
	ErrSlackNotConnected   = errors.New("organization has not connected Slack")
	ErrSlackDeliveryOff    = errors.New("slack delivery is disabled")
	ErrSlackChannelMissing = errors.New("slack channel not found")
)

// deliveryRequest is everything a handler needs to send one delivery.
type deliveryRequest struct {
	Notification *models.Notification
	Organization *models.Organization
	Destination  string
	Failures     []models.DeliveryFailure
	ActionURL    string
}

type deliveryHandler interface {
	Validate(destination string) error
	Deliver(ctx context.Context, req deliveryRequest) error
}

type emailHandler struct {
	sender email.Sender
}

func (h *emailHandler) Validate(destination string) error {
	if !utils.IsEmail(destination) {
		return fmt.Errorf("%w: %q is not an email address", ErrInvalidDestination, destination)
	}
	return nil
}

func (h *emailHandler) Deliver(ctx context.Context, req deliveryRequest) error {
	kind := email.TemplateNotification
	if req.Notification.TransactionID != "" {
		kind = email.TemplateTransactionNotification
	}
	_, err := h.sender.Send(ctx, req.Destination, kind, email.TemplateData{
		Title:            req.Notification.Title,
		Message:          req.Notification.Message,
		OrganizationName: req.Organization.Name,
		TransactionID:    req.Notification.TransactionID,
		ActionURL:        req.ActionURL,
		CreatedAt:        req.Notification.CreatedAt,
		Failures:         req.Failures,
	})
	return err
}

type slackHandler struct {
	client slack.Client
	flags  featureflag.Checker
}

// Validate accepts "#channel", "@handle" or an email address.
func (h *slackHandler) Validate(destination string) error {
	switch {
	case strings.HasPrefix(destination, "#") && len(destination) > 1:
		return nil
	case strings.HasPrefix(destination, "@") && len(destination) > 1:
		return nil
	case utils.IsEmail(destination):
		return nil
	}
	return fmt.Errorf("%w: %q is not a Slack channel, handle or email", ErrInvalidDestination, destination)
}

func (h *slackHandler) Deliver(ctx context.Context, req deliveryRequest) error {
	if !h.flags.IsEnabled(ctx, featureflag.FlagSlackDelivery) {
		return ErrSlackDeliveryOff
	}
	if !req.Organization.HasSlack() {
		return ErrSlackNotConnected
	}
	token := req.Organization.SlackAccessToken

	target, err := h.resolveTarget(ctx, token, req.Destination)
	if err != nil {
		return err
	}
	return h.client.PostMessage(ctx, token, target, slackText(req))
}

func (h *slackHandler) resolveTarget(ctx context.Context, token, destination string) (string, error) {
	switch {
	case strings.HasPrefix(destination, "#"):
		name := strings.TrimPrefix(destination, "#")
		channels, err := h.client.ListChannels(ctx, token)
		if err != nil {
			return "", err
		}
		for _, ch := range channels {
			if strings.EqualFold(ch.Name, name) {
				return ch.ID, nil
			}
		}
		return "", fmt.Errorf("%w: %s", ErrSlackChannelMissing, destination)
	case strings.HasPrefix(destination, "@"):
		u, err := h.client.FindUserByHandle(ctx, token, destination)
		if err != nil {
			return "", err
		}
		return u.ID, nil
	default:
		u, err := h.client.FindUserByEmail(ctx, token, destination)
		if err != nil {
			return "", err
		}
		return u.ID, nil
	}
}

// slackText renders a notification as Slack mrkdwn.
func slackText(req deliveryRequest) string {
	var b strings.Builder
	if req.Notification.Title != "" {
		fmt.Fprintf(&b, "*%s*\n", req.Notification.Title)
	}
	b.WriteString(req.Notification.Message)
	if req.ActionURL != "" {
		fmt.Fprintf(&b, "\n<%s|View transaction>", req.ActionURL)
	}
	if n := len(req.Failures); n > 0 {
		fmt.Fprintf(&b, "\n\n:warning: %d deliver%s of this notification failed:", n, pluralY(n))
		for _, f := range req.Failures {
			if f.Method != "" {
				fmt.Fprintf(&b, "\n• %s (%s): %s", f.Destination, f.Method, f.Error)
			} else {
				fmt.Fprintf(&b, "\n• %s: %s", f.Destination, f.Error)
			}
		}
	}
	return b.String()
}

func pluralY(n int) string {
	if n == 1 {
		return "y"
	}
	return "ies"
}
