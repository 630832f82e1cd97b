package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"tenantdesk/models"

	"github.com/hibiken/asynq"
)

const (
	TypeDeliverNotification = "notification:deliver"
	QueueNotifications      = "notifications"
)

func NewDeliveryTask(notificationID string) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(models.DeliveryTaskPayload{NotificationID: notificationID})
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeDeliverNotification, b)
	opts := []asynq.Option{
		asynq.Queue(QueueNotifications),
		asynq.TaskID("deliver:" + notificationID),
		asynq.MaxRetry(5),
		asynq.Timeout(2 * time.Minute),
	}

	return task, opts, nil
}

// ParseDeliveryTask decodes the payload built by NewDeliveryTask.
func ParseDeliveryTask(task *asynq.Task) (models.DeliveryTaskPayload, error) {
	var p models.DeliveryTaskPayload
	if err := json.Unmarshal(task.Payload(), &p); err != nil {
		return p, fmt.Errorf("invalid %s payload: %w", TypeDeliverNotification, err)
	}
	if p.NotificationID == "" {
		return p, fmt.Errorf("invalid %s payload: missing notificationId", TypeDeliverNotification)
	}
	return p, nil
}

// AsynqQueue enqueues delivery tasks on Redis.
type AsynqQueue struct {
	client *asynq.Client
}

func NewAsynqQueue(client *asynq.Client) *AsynqQueue {
	return &AsynqQueue{client: client}
}

// Enqueue schedules processing of a notification. Enqueueing the same
// notification twice is a no-op.
func (q *AsynqQueue) Enqueue(ctx context.Context, notificationID string) error {
	task, opts, err := NewDeliveryTask(notificationID)
	if err != nil {
		return err
	}
	if _, err := q.client.EnqueueContext(ctx, task, opts...); err != nil {
		if errors.Is(err, asynq.ErrTaskIDConflict) {
			return nil
		}
		return fmt.Errorf("enqueue %s for %s: %w", TypeDeliverNotification, notificationID, err)
	}
	return nil
}
