package featureflag

import (
	"context"
	"strconv"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const (
	FlagSSOLogin      = "sso-login"
	FlagSlackDelivery = "slack-delivery"

	// redisKey holds runtime overrides as a hash of flag name to bool.
	redisKey = "feature_flags"
)

type Checker interface {
	IsEnabled(ctx context.Context, flag string) bool
}

// Static answers from a fixed set of flags.
type Static map[string]bool

func (s Static) IsEnabled(_ context.Context, flag string) bool {
	return s[flag]
}

// RedisChecker reads overrides from Redis and falls back to the configured defaults.
type RedisChecker struct {
	client   *redis.Client
	defaults Static
	logger   *zap.Logger
}

func NewRedisChecker(client *redis.Client, defaults map[string]bool, logger *zap.Logger) *RedisChecker {
	return &RedisChecker{client: client, defaults: defaults, logger: logger.Named("flags")}
}

func (r *RedisChecker) IsEnabled(ctx context.Context, flag string) bool {
	if r.client == nil {
		return r.defaults.IsEnabled(ctx, flag)
	}
	val, err := r.client.HGet(ctx, redisKey, flag).Result()
	if err == redis.Nil {
		return r.defaults.IsEnabled(ctx, flag)
	}
	if err != nil {
		r.logger.Warn("feature flag lookup failed, using default", zap.String("flag", flag), zap.Error(err))
		return r.defaults.IsEnabled(ctx, flag)
	}
	enabled, err := strconv.ParseBool(val)
	if err != nil {
		r.logger.Warn("invalid feature flag override", zap.String("flag", flag), zap.String("value", val))
		return r.defaults.IsEnabled(ctx, flag)
	}
	return enabled
}

// Set stores a runtime override.
func (r *RedisChecker) Set(ctx context.Context, flag string, enabled bool) error {
	return r.client.HSet(ctx, redisKey, flag, strconv.FormatBool(enabled)).Err()
}
