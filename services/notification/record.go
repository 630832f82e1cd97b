package notification

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

// Record persists a notification with one PENDING delivery per resolved
// instruction and, in production, queues it for delivery. It returns the
// instructions that were recorded, or none when the idempotency key was
// already used or nothing resolved.
func (s *DefaultNotificationService) Record(ctx context.Context, req RecordRequest) ([]models.NotificationInstruction, error) {
	if req.Organization == nil {
		return nil, utils.NewInvalidError("organization is required")
	}
	if strings.TrimSpace(req.Message) == "" {
		return nil, utils.NewInvalidError("message is required")
	}
	if !req.Environment.Valid() {
		return nil, utils.NewInvalidError("unknown environment %q", req.Environment)
	}
	org := req.Organization

	if req.IdempotencyKey != "" {
		_, err := s.notifications.GetByIdempotencyKey(ctx, org.ID, req.IdempotencyKey)
		switch {
		case err == nil:
			s.logger.Debug("idempotency key already recorded",
				zap.String("organizationId", org.ID), zap.String("idempotencyKey", req.IdempotencyKey))
			return []models.NotificationInstruction{}, nil
		case !errors.Is(err, utils.ErrNotFound):
			return nil, fmt.Errorf("Record: idempotency lookup: %w", err)
		}
	}

	instructions, err := s.resolveInstructions(ctx, org, req)
	if err != nil {
		return nil, err
	}
	if len(instructions) == 0 {
		return []models.NotificationInstruction{}, nil
	}

	createdAt := req.CreatedAt
	if createdAt.IsZero() {
		createdAt = s.now()
	}
	n := &models.Notification{
		ID:             uuid.New().String(),
		Message:        req.Message,
		Title:          req.Title,
		OrganizationID: org.ID,
		Environment:    req.Environment,
		TransactionID:  req.TransactionID,
		IdempotencyKey: req.IdempotencyKey,
		CreatedAt:      createdAt,
	}
	for _, in := range instructions {
		n.Deliveries = append(n.Deliveries, s.newDelivery(n.ID, in.Destination, in.Method, ""))
	}

	if err := s.notifications.Create(ctx, n); err != nil {
		if req.IdempotencyKey != "" && errors.Is(err, utils.ErrDuplicateKey) {
			return []models.NotificationInstruction{}, nil
		}
		return nil, fmt.Errorf("Record: %w", err)
	}
	s.logger.Info("notification recorded",
		zap.String("notificationId", n.ID),
		zap.String("organizationId", org.ID),
		zap.String("environment", string(n.Environment)),
		zap.Int("deliveries", len(n.Deliveries)))

	if n.Environment == models.EnvironmentProduction {
		s.enqueue(ctx, n)
	}
	if n.TransactionID != "" {
		s.signal(ctx, n)
	}
	return instructions, nil
}

// resolveInstructions applies the explicit list or, for transaction-bound
// notifications, the transaction owner and the action's delivery policy.
func (s *DefaultNotificationService) resolveInstructions(ctx context.Context, org *models.Organization, req RecordRequest) ([]models.NotificationInstruction, error) {
	var tx *models.Transaction
	if req.TransactionID != "" {
		var err error
		tx, err = s.transactions.GetTransaction(ctx, req.TransactionID)
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.NewNotFoundError("transaction %s not found", req.TransactionID)
		}
		if err != nil {
			return nil, fmt.Errorf("Record: load transaction: %w", err)
		}
		if tx.OrganizationID != org.ID {
			return nil, utils.NewForbiddenError("transaction %s does not belong to organization %s", tx.ID, org.Slug)
		}
	}

	if len(req.Deliveries) > 0 {
		out := make([]models.NotificationInstruction, 0, len(req.Deliveries))
		for i, in := range req.Deliveries {
			dest := strings.TrimSpace(in.Destination)
			if dest == "" {
				return nil, utils.NewInvalidError("delivery %d has no destination", i)
			}
			if in.Method != nil && !in.Method.Valid() {
				return nil, utils.NewInvalidError("delivery %d has unknown method %q", i, *in.Method)
			}
			out = append(out, models.NotificationInstruction{Destination: dest, Method: in.Method})
		}
		return out, nil
	}
	if tx == nil {
		return nil, nil
	}

	owner, err := s.users.GetByID(ctx, tx.UserID)
	if errors.Is(err, utils.ErrNotFound) {
		return nil, utils.NewNotFoundError("user %s of transaction %s not found", tx.UserID, tx.ID)
	}
	if err != nil {
		return nil, fmt.Errorf("Record: load transaction owner: %w", err)
	}

	return s.actionPolicy(ctx, tx).Instructions(owner.Email), nil
}

// actionPolicy returns the action's stored policy, or nil when the action
// has none or it cannot be used.
func (s *DefaultNotificationService) actionPolicy(ctx context.Context, tx *models.Transaction) *DeliveryPolicy {
	if tx.ActionID == "" {
		return nil
	}
	action, err := s.transactions.GetAction(ctx, tx.ActionID)
	if err != nil {
		s.logger.Warn("could not load action for delivery policy",
			zap.String("actionId", tx.ActionID), zap.Error(err))
		return nil
	}
	policy, err := ParseDeliveryPolicy(action.DefaultDelivery)
	if err != nil {
		s.logger.Warn("ignoring invalid delivery policy",
			zap.String("actionId", action.ID), zap.Error(err))
		return nil
	}
	return policy
}

func (s *DefaultNotificationService) newDelivery(notificationID, destination string, method *models.DeliveryMethod, userID string) models.NotificationDelivery {
	now := s.now()
	return models.NotificationDelivery{
		ID:             uuid.New().String(),
		NotificationID: notificationID,
		Destination:    destination,
		Method:         method,
		Status:         models.DeliveryPending,
		UserID:         userID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// enqueue hands the notification to the worker. If that fails the pending
// deliveries are failed so the notification is not silently dropped.
func (s *DefaultNotificationService) enqueue(ctx context.Context, n *models.Notification) {
	err := s.queue.Enqueue(ctx, n.ID)
	if err == nil {
		return
	}
	utils.EnqueueFailures.Inc()
	s.logger.Error("failed to queue notification for delivery",
		zap.String("notificationId", n.ID), zap.Error(err))

	if ferr := s.FailNotification(ctx, n.ID, "failed to queue for delivery: "+err.Error()); ferr != nil {
		s.logger.Error("failed to record enqueue failure",
			zap.String("notificationId", n.ID), zap.Error(ferr))
	}
}

// signal publishes a best-effort real-time event. Failures are only logged.
func (s *DefaultNotificationService) signal(ctx context.Context, n *models.Notification) {
	if s.signaler == nil {
		return
	}
	sig := models.TransactionSignal{
		TransactionID:  n.TransactionID,
		NotificationID: n.ID,
		Title:          n.Title,
		Message:        n.Message,
		CreatedAt:      n.CreatedAt,
	}
	s.background.Add(1)
	go func() {
		defer s.background.Done()
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := s.signaler.SignalTransaction(sctx, sig); err != nil {
			s.logger.Warn("transaction signal failed",
				zap.String("transactionId", n.TransactionID), zap.Error(err))
		}
	}()
}

// GetNotification returns a notification of the organization with its deliveries.
func (s *DefaultNotificationService) GetNotification(ctx context.Context, organizationID, notificationID string) (*models.Notification, error) {
	n, err := s.notifications.GetByID(ctx, notificationID)
	if errors.Is(err, utils.ErrNotFound) || (err == nil && n.OrganizationID != organizationID) {
		return nil, utils.NewNotFoundError("notification %s not found", notificationID)
	}
	if err != nil {
		return nil, fmt.Errorf("GetNotification: %w", err)
	}
	return n, nil
}
