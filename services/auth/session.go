package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tenantdesk/models"
	"tenantdesk/utils"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// authCachePrefix keys the cached token hash of each user.
const authCachePrefix = "auth:token:"

const defaultTokenTTL = 24 * time.Hour

func (s *DefaultAuthService) issueToken(ctx context.Context, user *models.User) (*AuthResponse, error) {
	ttl := s.TokenTTL
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	token, err := utils.GenerateToken(user.ID, user.Email, ttl)
	if err != nil {
		return nil, fmt.Errorf("issueToken: %w", err)
	}
	hash := utils.HashToken(token)
	if err := s.Users.SetTokenHash(ctx, user.ID, hash); err != nil {
		return nil, fmt.Errorf("issueToken: %w", err)
	}
	if s.Cache != nil {
		if err := s.Cache.Set(ctx, authCachePrefix+user.ID, hash, ttl).Err(); err != nil {
			utils.GetLogger().Warn("failed to cache token hash", zap.String("userId", user.ID), zap.Error(err))
		}
	}
	user.TokenHash = hash
	return &AuthResponse{ID: user.ID, Token: token, Name: user.Name, Email: user.Email, Slug: user.Slug}, nil
}

// Logout revokes the user's current session token.
func (s *DefaultAuthService) Logout(ctx context.Context, userID string) error {
	if err := s.Users.SetTokenHash(ctx, userID, ""); err != nil {
		return fmt.Errorf("Logout: %w", err)
	}
	if s.Cache != nil {
		if err := s.Cache.Del(ctx, authCachePrefix+userID).Err(); err != nil {
			utils.GetLogger().Warn("failed to evict cached token", zap.String("userId", userID), zap.Error(err))
		}
	}
	return nil
}

// Authenticate accepts a token only while it is the user's current session.
func (s *DefaultAuthService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	userID, err := utils.ExtractIDFromToken(token)
	if err != nil {
		return nil, &utils.AppError{Code: utils.CodeUnauthorized, Message: "invalid or expired token", Err: err}
	}
	hash := utils.HashToken(token)

	if s.Cache != nil {
		cached, err := s.Cache.Get(ctx, authCachePrefix+userID).Result()
		switch {
		case err == nil && cached != hash:
			return nil, utils.NewUnauthorizedError("session has been revoked")
		case err != nil && !errors.Is(err, redis.Nil):
			utils.GetLogger().Warn("auth cache unavailable, falling back to database", zap.Error(err))
		}
	}

	user, err := s.Users.GetByTokenHash(ctx, hash)
	if errors.Is(err, utils.ErrNotFound) {
		return nil, utils.NewUnauthorizedError("session has been revoked")
	}
	if err != nil {
		return nil, fmt.Errorf("Authenticate: %w", err)
	}
	if user.ID != userID || user.Deleted {
		return nil, utils.NewUnauthorizedError("session has been revoked")
	}
	return user, nil
}
