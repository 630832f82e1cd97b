package notification

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"tenantdesk/models"
	"tenantdesk/services/slack"
	"tenantdesk/utils"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// maxConcurrentAttempts bounds the fan-out of one notification.
const maxConcurrentAttempts = 16

// attemptResult is the outcome of one delivery attempt.
type attemptResult struct {
	delivery models.NotificationDelivery
	method   models.DeliveryMethod
	err      error
}

// ProcessNotification loads a notification and runs its pending deliveries.
func (s *DefaultNotificationService) ProcessNotification(ctx context.Context, notificationID string) error {
	n, err := s.notifications.GetByID(ctx, notificationID)
	if err != nil {
		return fmt.Errorf("ProcessNotification: %w", err)
	}
	return s.ProcessDeliveries(ctx, n)
}

// ProcessDeliveries attempts every PENDING delivery of n. Deliveries not
// addressed to the owner go first; once they settle, the owner's deliveries
// are sent with the list of failures. When something failed and no delivery
// was addressed to the owner, one is created for them.
func (s *DefaultNotificationService) ProcessDeliveries(ctx context.Context, n *models.Notification) error {
	org, err := s.organizations.GetByID(ctx, n.OrganizationID)
	if err != nil {
		return fmt.Errorf("ProcessDeliveries: load organization %s: %w", n.OrganizationID, err)
	}
	owner := s.resolveOwner(ctx, n, org)
	actionURL := s.transactionURL(org, n)

	var (
		ownerPending []models.NotificationDelivery
		others       []models.NotificationDelivery
		failures     []models.DeliveryFailure
		hadOwner     bool
	)
	for _, d := range n.Deliveries {
		isOwner := owner != nil && sameEmail(d.Destination, owner.Email)
		if isOwner {
			hadOwner = true
		}
		switch {
		case d.Status == models.DeliveryPending && isOwner:
			ownerPending = append(ownerPending, d)
		case d.Status == models.DeliveryPending:
			others = append(others, d)
		case d.Status == models.DeliveryFailed && !isOwner:
			// failed in an earlier run, still reported to the owner
			failures = append(failures, failureOf(d, derefMethod(d.Method), d.Error))
		}
	}

	for _, r := range s.attemptAll(ctx, n, org, others, nil, actionURL) {
		if r.err != nil {
			failures = append(failures, failureOf(r.delivery, r.method, r.err.Error()))
		}
	}

	if len(failures) > 0 && !hadOwner {
		if owner == nil {
			s.logger.Warn("deliveries failed but notification has no owner to escalate to",
				zap.String("notificationId", n.ID), zap.Int("failures", len(failures)))
		} else {
			d := s.newDelivery(n.ID, owner.Email, nil, owner.ID)
			if err := s.notifications.CreateDelivery(ctx, &d); err != nil {
				s.logger.Error("failed to create owner escalation delivery",
					zap.String("notificationId", n.ID), zap.Error(err))
			} else {
				utils.OwnerEscalations.Inc()
				ownerPending = append(ownerPending, d)
			}
		}
	}

	s.attemptAll(ctx, n, org, ownerPending, failures, actionURL)
	return nil
}

// attemptAll runs the deliveries concurrently and waits for all of them.
// Every attempt runs to completion; outcomes are reported per delivery.
func (s *DefaultNotificationService) attemptAll(ctx context.Context, n *models.Notification, org *models.Organization, deliveries []models.NotificationDelivery, failures []models.DeliveryFailure, actionURL string) []attemptResult {
	results := make([]attemptResult, len(deliveries))
	var g errgroup.Group
	g.SetLimit(maxConcurrentAttempts)
	for i, d := range deliveries {
		i, d := i, d
		g.Go(func() error {
			results[i] = s.attempt(ctx, n, org, d, failures, actionURL)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// FailNotification marks every PENDING delivery of a notification FAILED
// with cause. It is used when processing is abandoned.
func (s *DefaultNotificationService) FailNotification(ctx context.Context, notificationID, cause string) error {
	if err := s.notifications.FailPendingDeliveries(context.WithoutCancel(ctx), notificationID, cause); err != nil {
		return fmt.Errorf("FailNotification: %w", err)
	}
	s.logger.Warn("pending deliveries failed without an attempt",
		zap.String("notificationId", notificationID), zap.String("cause", cause))
	return nil
}

// attempt sends one delivery and writes its final status.
func (s *DefaultNotificationService) attempt(ctx context.Context, n *models.Notification, org *models.Organization, d models.NotificationDelivery, failures []models.DeliveryFailure, actionURL string) attemptResult {
	start := time.Now()
	recipient := s.lookupRecipient(ctx, d.Destination)
	method := resolveMethod(d.Method, recipient, org)
	res := attemptResult{delivery: d, method: method}

	handler, ok := s.methodHandlers[method]
	if !ok {
		res.err = fmt.Errorf("unsupported delivery method %s", method)
	} else if res.err = handler.Validate(d.Destination); res.err == nil {
		res.err = handler.Deliver(ctx, deliveryRequest{
			Notification: n,
			Organization: org,
			Destination:  d.Destination,
			Failures:     failures,
			ActionURL:    actionURL,
		})
	}

	status := models.DeliveryDelivered
	errMsg := ""
	userID := d.UserID
	if res.err != nil {
		status = models.DeliveryFailed
		errMsg = res.err.Error()
		s.logger.Warn("delivery failed",
			zap.String("notificationId", n.ID),
			zap.String("deliveryId", d.ID),
			zap.String("destination", d.Destination),
			zap.String("method", string(method)),
			zap.Error(res.err))
		if slack.IsAppUninstalled(res.err) {
			s.clearSlack(ctx, org)
		}
	} else if recipient != nil {
		userID = recipient.ID
	}

	utils.DeliveryAttempts.WithLabelValues(string(method), string(status)).Inc()
	utils.DeliveryDuration.WithLabelValues(string(method)).Observe(time.Since(start).Seconds())

	wctx := context.WithoutCancel(ctx)
	if err := s.notifications.CompleteDelivery(wctx, d.ID, status, errMsg, userID); err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			s.logger.Warn("delivery already completed", zap.String("deliveryId", d.ID))
		} else {
			s.logger.Error("failed to record delivery status",
				zap.String("deliveryId", d.ID), zap.String("status", string(status)), zap.Error(err))
		}
	}
	return res
}

// resolveOwner returns the transaction's user, or the organization owner.
func (s *DefaultNotificationService) resolveOwner(ctx context.Context, n *models.Notification, org *models.Organization) *models.User {
	ownerID := org.OwnerID
	if n.TransactionID != "" {
		tx, err := s.transactions.GetTransaction(ctx, n.TransactionID)
		if err != nil {
			s.logger.Warn("could not load transaction for owner resolution",
				zap.String("transactionId", n.TransactionID), zap.Error(err))
			return nil
		}
		ownerID = tx.UserID
	}
	if ownerID == "" {
		return nil
	}
	owner, err := s.users.GetByID(ctx, ownerID)
	if err != nil {
		s.logger.Warn("could not load notification owner", zap.String("userId", ownerID), zap.Error(err))
		return nil
	}
	return owner
}

// lookupRecipient finds the local user behind an email destination.
func (s *DefaultNotificationService) lookupRecipient(ctx context.Context, destination string) *models.User {
	if !utils.IsEmail(destination) {
		return nil
	}
	u, err := s.users.GetByEmail(ctx, utils.NormalizeEmail(destination))
	if err != nil {
		if !errors.Is(err, utils.ErrNotFound) {
			s.logger.Warn("recipient lookup failed", zap.String("destination", destination), zap.Error(err))
		}
		return nil
	}
	return u
}

func (s *DefaultNotificationService) clearSlack(ctx context.Context, org *models.Organization) {
	if err := s.organizations.SetSlackToken(context.WithoutCancel(ctx), org.ID, "", ""); err != nil {
		s.logger.Error("failed to clear uninstalled Slack token",
			zap.String("organizationId", org.ID), zap.Error(err))
		return
	}
	s.logger.Info("cleared Slack token after app uninstall", zap.String("organizationId", org.ID))
}

func (s *DefaultNotificationService) transactionURL(org *models.Organization, n *models.Notification) string {
	if n.TransactionID == "" || s.appBaseURL == "" {
		return ""
	}
	return strings.TrimRight(s.appBaseURL, "/") + "/orgs/" + url.PathEscape(org.Slug) +
		"/transactions/" + url.PathEscape(n.TransactionID)
}

// resolveMethod picks the explicit method, then the recipient's
// preference, then the organization default, then email.
func resolveMethod(explicit *models.DeliveryMethod, recipient *models.User, org *models.Organization) models.DeliveryMethod {
	switch {
	case explicit != nil:
		return *explicit
	case recipient != nil && recipient.NotificationMethod != nil:
		return *recipient.NotificationMethod
	case org != nil && org.DefaultNotificationMethod != nil:
		return *org.DefaultNotificationMethod
	}
	return models.DeliveryEmail
}

func sameEmail(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

func failureOf(d models.NotificationDelivery, method models.DeliveryMethod, msg string) models.DeliveryFailure {
	return models.DeliveryFailure{Destination: d.Destination, Method: method, Error: msg}
}

func derefMethod(m *models.DeliveryMethod) models.DeliveryMethod {
	if m == nil {
		return ""
	}
	return *m
}
