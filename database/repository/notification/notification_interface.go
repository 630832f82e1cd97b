package notificationRepo

import (
	"context"

	"tenantdesk/models"
)

// NotificationRepository persists notifications and their delivery rows.
type NotificationRepository interface {
	// GetByID returns the notification with its deliveries loaded.
	GetByID(ctx context.Context, id string) (*models.Notification, error)
	// GetByIdempotencyKey returns utils.ErrNotFound when the key is unused in the organization.
	GetByIdempotencyKey(ctx context.Context, organizationID, key string) (*models.Notification, error)
	// Create inserts the notification and every entry of n.Deliveries.
	// A reused idempotency key wraps utils.ErrDuplicateKey.
	Create(ctx context.Context, n *models.Notification) error
	// CreateDelivery adds one delivery row to an existing notification.
	CreateDelivery(ctx context.Context, d *models.NotificationDelivery) error
	// CompleteDelivery moves a PENDING delivery to its final status. A delivery
	// that is no longer PENDING is left untouched and utils.ErrNotFound is returned.
	CompleteDelivery(ctx context.Context, id string, status models.DeliveryStatus, errMsg, userID string) error
	// FailPendingDeliveries marks every PENDING delivery of a notification FAILED.
	FailPendingDeliveries(ctx context.Context, notificationID, errMsg string) error
}
