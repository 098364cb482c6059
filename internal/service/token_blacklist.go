package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/whitelabel-hq/auth-service/pkg/database"
)

// TokenBlacklistService revokes access tokens in Redis until they would
// have expired anyway. Refresh tokens need no blacklist: rotation
// invalidates them by overwrite.
type TokenBlacklistService struct {
	redis *database.Redis
}

var _ TokenBlacklist = (*TokenBlacklistService)(nil)

// NewTokenBlacklistService creates a new token blacklist service
func NewTokenBlacklistService(redis *database.Redis) *TokenBlacklistService {
	return &TokenBlacklistService{redis: redis}
}

// AddToken adds a token to the blacklist for the given duration.
func (s *TokenBlacklistService) AddToken(ctx context.Context, token string, expiry time.Duration) error {
	err := s.redis.Client.Set(ctx, blacklistKey(token), "1", expiry).Err()
	if err != nil {
		return fmt.Errorf("failed to add token to blacklist: %w", err)
	}
	return nil
}

// IsTokenBlacklisted checks if a token is in the blacklist.
func (s *TokenBlacklistService) IsTokenBlacklisted(ctx context.Context, token string) (bool, error) {
	exists, err := s.redis.Client.Exists(ctx, blacklistKey(token)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check token blacklist: %w", err)
	}
	return exists > 0, nil
}

// blacklistKey hashes the token so raw JWTs never land in Redis keys.
func blacklistKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return fmt.Sprintf("blacklist:token:%s", hex.EncodeToString(sum[:]))
}
