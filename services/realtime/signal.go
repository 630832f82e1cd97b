package realtime

import (
	"context"
	"encoding/json"
	"fmt"

	"tenantdesk/models"

	"github.com/go-redis/redis/v8"
)

// Channel returns the pub/sub channel subscribers of a transaction listen on.
func Channel(transactionID string) string {
	return "transactions:" + transactionID + ":notifications"
}

// RedisSignaler publishes transaction signals over Redis pub/sub.
type RedisSignaler struct {
	client *redis.Client
}

func NewRedisSignaler(client *redis.Client) *RedisSignaler {
	return &RedisSignaler{client: client}
}

func (s *RedisSignaler) SignalTransaction(ctx context.Context, signal models.TransactionSignal) error {
	payload, err := json.Marshal(signal)
	if err != nil {
		return fmt.Errorf("SignalTransaction: marshal: %w", err)
	}
	if err := s.client.Publish(ctx, Channel(signal.TransactionID), payload).Err(); err != nil {
		return fmt.Errorf("SignalTransaction: publish to %s: %w", Channel(signal.TransactionID), err)
	}
	return nil
}
