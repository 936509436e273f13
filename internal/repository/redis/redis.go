package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrTokenNotFound = errors.New("token not found or expired")

type TokenData struct {
	UserID    string    `json:"user_id"`
	Role      string    `json:"role"`
	Token     string    `json:"token"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
	IPAddress string    `json:"ip_address,omitempty"`
	UserAgent string    `json:"user_agent,omitempty"`
}

// TokenRepository keeps one active session token per user. Two keys are written:
// token:user:{id} holds the session data and token:lookup:{token} points back to the user.
type TokenRepository struct {
	client *redis.Client
}

func NewTokenRepository(client *redis.Client) *TokenRepository {
	return &TokenRepository{
		client: client,
	}
}

func userKey(userID string) string {
	return "token:user:" + userID
}

func lookupKey(token string) string {
	return "token:lookup:" + token
}

func (r *TokenRepository) StoreToken(ctx context.Context, data TokenData, ttl time.Duration) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal token data: %w", err)
	}

	// a new login replaces the previous session
	if prev, err := r.GetTokenData(ctx, data.UserID); err == nil && prev.Token != data.Token {
		r.client.Del(ctx, lookupKey(prev.Token))
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, userKey(data.UserID), jsonData, ttl)
	pipe.Set(ctx, lookupKey(data.Token), data.UserID, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to store token in Redis: %w", err)
	}

	return nil
}

func (r *TokenRepository) GetTokenData(ctx context.Context, userID string) (*TokenData, error) {
	val, err := r.client.Get(ctx, userKey(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrTokenNotFound
		}
		return nil, fmt.Errorf("failed to get token from Redis: %w", err)
	}

	var tokenData TokenData
	if err := json.Unmarshal([]byte(val), &tokenData); err != nil {
		return nil, fmt.Errorf("failed to unmarshal token data: %w", err)
	}

	return &tokenData, nil
}

// ValidateToken returns the user id the token was issued to.
func (r *TokenRepository) ValidateToken(ctx context.Context, token string) (string, error) {
	userID, err := r.client.Get(ctx, lookupKey(token)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrTokenNotFound
		}
		return "", fmt.Errorf("failed to validate token: %w", err)
	}

	return userID, nil
}

// RefreshTokenTTL slides the session expiry to newTTL from now, capped at the moment
// the token itself expires. A session past that moment is removed.
func (r *TokenRepository) RefreshTokenTTL(ctx context.Context, userID string, newTTL time.Duration) error {
	tokenData, err := r.GetTokenData(ctx, userID)
	if err != nil {
		return err
	}

	if !tokenData.ExpiresAt.IsZero() {
		remaining := time.Until(tokenData.ExpiresAt)
		if remaining <= 0 {
			_ = r.DeleteToken(ctx, userID, tokenData.Token)
			return ErrTokenNotFound
		}
		newTTL = min(newTTL, remaining)
	}

	pipe := r.client.TxPipeline()
	pipe.Expire(ctx, userKey(userID), newTTL)
	pipe.Expire(ctx, lookupKey(tokenData.Token), newTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to refresh token TTL: %w", err)
	}

	return nil
}

// DeleteToken revokes the session. Deleting an absent token is not an error.
func (r *TokenRepository) DeleteToken(ctx context.Context, userID, token string) error {
	if err := r.client.Del(ctx, userKey(userID), lookupKey(token)).Err(); err != nil {
		return fmt.Errorf("failed to delete token: %w", err)
	}

	return nil
}
