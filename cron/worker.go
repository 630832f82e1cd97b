package cron

import (
	"context"
	"errors"
	"fmt"

	"tenantdesk/config"
	"tenantdesk/services/tasks"
	"tenantdesk/utils"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// DeliveryProcessor runs the deliveries of one recorded notification.
type DeliveryProcessor interface {
	ProcessNotification(ctx context.Context, notificationID string) error
	FailNotification(ctx context.Context, notificationID, cause string) error
}

// RedisOpt builds the asynq connection for the delivery queue.
func RedisOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}
}

// InitDeliveryWorker starts the delivery worker in the background. The
// returned server must be shut down by the caller.
func InitDeliveryWorker(proc DeliveryProcessor, logger *zap.Logger) (*asynq.Server, error) {
	concurrency := config.AppConfig.DeliveryWorkerConcurrency
	if concurrency <= 0 {
		concurrency = 10
	}

	srv := asynq.NewServer(
		RedisOpt(),
		asynq.Config{
			Concurrency: concurrency,
			Queues: map[string]int{
				tasks.QueueNotifications: 1,
			},
			Logger: logger.Named("asynq").Sugar(),
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeDeliverNotification, handleDeliveryTask(proc, logger, isLastAttempt))

	if err := srv.Start(mux); err != nil {
		return nil, fmt.Errorf("InitDeliveryWorker: %w", err)
	}
	logger.Info("delivery worker started", zap.Int("concurrency", concurrency))
	return srv, nil
}

// isLastAttempt reports whether asynq will not run the current task again.
func isLastAttempt(ctx context.Context) bool {
	retried, ok := asynq.GetRetryCount(ctx)
	if !ok {
		return false
	}
	maxRetry, ok := asynq.GetMaxRetry(ctx)
	return ok && retried >= maxRetry
}

// handleDeliveryTask processes one notification. When the task will not be
// retried, whatever is still PENDING is failed so no delivery is dropped.
func handleDeliveryTask(proc DeliveryProcessor, logger *zap.Logger, lastAttempt func(context.Context) bool) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		p, err := tasks.ParseDeliveryTask(task)
		if err != nil {
			logger.Error("dropping delivery task", zap.Error(err))
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}

		err = proc.ProcessNotification(ctx, p.NotificationID)
		switch {
		case err == nil:
			return nil
		case errors.Is(err, utils.ErrNotFound):
			logger.Warn("notification cannot be delivered", zap.String("notificationId", p.NotificationID), zap.Error(err))
			abandon(ctx, proc, logger, p.NotificationID, err)
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		case lastAttempt(ctx):
			logger.Error("delivery task out of retries", zap.String("notificationId", p.NotificationID), zap.Error(err))
			abandon(ctx, proc, logger, p.NotificationID, err)
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		default:
			logger.Error("delivery task failed", zap.String("notificationId", p.NotificationID), zap.Error(err))
			return err
		}
	}
}

func abandon(ctx context.Context, proc DeliveryProcessor, logger *zap.Logger, notificationID string, cause error) {
	if err := proc.FailNotification(ctx, notificationID, "delivery abandoned: "+cause.Error()); err != nil {
		logger.Error("failed to record abandoned delivery", zap.String("notificationId", notificationID), zap.Error(err))
	}
}
