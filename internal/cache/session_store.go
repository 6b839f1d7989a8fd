package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	refreshTokenKeyPrefix = "refresh:"
	userSessionsKeyPrefix = "user_sessions:"
	deniedAccessKeyPrefix = "denied_access:"
	accessCutoffKeyPrefix = "access_cutoff:"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionNotOwned = errors.New("session belongs to another user")
)

// SessionStore keeps refresh tokens and the access-token deny list in Redis.
// Each user also has a set of live refresh tokens so every session can be
// revoked at once.
type SessionStore struct {
	client *redis.Client
}

func NewSessionStore(client *redis.Client) *SessionStore {
	return &SessionStore{client: client}
}

func refreshTokenKey(token string) string {
	return refreshTokenKeyPrefix + token
}

func userSessionsKey(userID uint) string {
	return userSessionsKeyPrefix + strconv.FormatUint(uint64(userID), 10)
}

func deniedAccessKey(jti string) string {
	return deniedAccessKeyPrefix + jti
}

func accessCutoffKey(userID uint) string {
	return accessCutoffKeyPrefix + strconv.FormatUint(uint64(userID), 10)
}

func (store *SessionStore) SaveRefreshToken(ctx context.Context, token string, userID uint, ttl time.Duration) error {
	sessionsKey := userSessionsKey(userID)
	_, err := store.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, refreshTokenKey(token), strconv.FormatUint(uint64(userID), 10), ttl)
		pipe.SAdd(ctx, sessionsKey, token)
		pipe.Expire(ctx, sessionsKey, ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("save refresh token: %w", err)
	}
	return nil
}

func (store *SessionStore) LookupRefreshToken(ctx context.Context, token string) (uint, error) {
	raw, err := store.client.Get(ctx, refreshTokenKey(token)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, ErrSessionNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("lookup refresh token: %w", err)
	}
	return parseUserID(raw)
}

// ConsumeRefreshToken removes the token and returns its owner. A token can be
// consumed once.
func (store *SessionStore) ConsumeRefreshToken(ctx context.Context, token string) (uint, error) {
	raw, err := store.client.GetDel(ctx, refreshTokenKey(token)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, ErrSessionNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("consume refresh token: %w", err)
	}

	userID, err := parseUserID(raw)
	if err != nil {
		return 0, err
	}
	if err := store.client.SRem(ctx, userSessionsKey(userID), token).Err(); err != nil {
		return 0, fmt.Errorf("untrack refresh token: %w", err)
	}
	return userID, nil
}

// RevokeUserRefreshToken drops token only when userID owns it. Unknown tokens
// are ignored; a token owned by someone else is left in place.
func (store *SessionStore) RevokeUserRefreshToken(ctx context.Context, token string, userID uint) error {
	key := refreshTokenKey(token)
	err := store.client.Watch(ctx, func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, key).Result()
		if errors.Is(err, redis.Nil) {
			return nil
		}
		if err != nil {
			return err
		}
		owner, err := parseUserID(raw)
		if err != nil {
			return err
		}
		if owner != userID {
			return ErrSessionNotOwned
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, key)
			pipe.SRem(ctx, userSessionsKey(userID), token)
			return nil
		})
		return err
	}, key)
	if err != nil && !errors.Is(err, ErrSessionNotOwned) {
		return fmt.Errorf("revoke refresh token: %w", err)
	}
	return err
}

func (store *SessionStore) RevokeAllSessions(ctx context.Context, userID uint) error {
	sessionsKey := userSessionsKey(userID)
	tokens, err := store.client.SMembers(ctx, sessionsKey).Result()
	if err != nil {
		return fmt.Errorf("list user sessions: %w", err)
	}

	keys := make([]string, 0, len(tokens)+1)
	for _, token := range tokens {
		keys = append(keys, refreshTokenKey(token))
	}
	keys = append(keys, sessionsKey)
	if err := store.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("revoke user sessions: %w", err)
	}
	return nil
}

// DenyAccessToken blocks an access token id until it would have expired anyway.
func (store *SessionStore) DenyAccessToken(ctx context.Context, jti string, ttl time.Duration) error {
	if jti == "" || ttl <= 0 {
		return nil
	}
	if err := store.client.Set(ctx, deniedAccessKey(jti), "1", ttl).Err(); err != nil {
		return fmt.Errorf("deny access token: %w", err)
	}
	return nil
}

func (store *SessionStore) IsAccessTokenDenied(ctx context.Context, jti string) (bool, error) {
	if jti == "" {
		return false, nil
	}
	count, err := store.client.Exists(ctx, deniedAccessKey(jti)).Result()
	if err != nil {
		return false, fmt.Errorf("check access deny list: %w", err)
	}
	return count > 0, nil
}

// RevokeAccessIssuedBefore rejects every access token of userID issued before
// at. The marker lives as long as the longest access token can.
func (store *SessionStore) RevokeAccessIssuedBefore(ctx context.Context, userID uint, at time.Time, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := store.client.Set(ctx, accessCutoffKey(userID), at.Unix(), ttl).Err(); err != nil {
		return fmt.Errorf("save access cutoff: %w", err)
	}
	return nil
}

// AccessCutoff returns the instant set by RevokeAccessIssuedBefore, if any.
func (store *SessionStore) AccessCutoff(ctx context.Context, userID uint) (time.Time, bool, error) {
	seconds, err := store.client.Get(ctx, accessCutoffKey(userID)).Int64()
	if errors.Is(err, redis.Nil) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("load access cutoff: %w", err)
	}
	return time.Unix(seconds, 0), true, nil
}

func parseUserID(raw string) (uint, error) {
	value, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || value == 0 {
		return 0, fmt.Errorf("corrupt session value %q", raw)
	}
	return uint(value), nil
}
