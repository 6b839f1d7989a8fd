package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestSessionStore(t *testing.T) (*miniredis.Miniredis, *SessionStore) {
	mr := miniredis.RunT(t)
	client := NewClient(Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
	})
	return mr, NewSessionStore(client)
}

func TestSessionStore_SaveAndLookup(t *testing.T) {
	mr, store := setupTestSessionStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveRefreshToken(ctx, "token-a", 7, time.Hour))

	userID, err := store.LookupRefreshToken(ctx, "token-a")
	require.NoError(t, err)
	assert.Equal(t, uint(7), userID)
	assert.True(t, mr.Exists("user_sessions:7"))

	mr.FastForward(2 * time.Hour)
	_, err = store.LookupRefreshToken(ctx, "token-a")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionStore_ConsumeIsOneTime(t *testing.T) {
	mr, store := setupTestSessionStore(t)
	ctx := context.Background()
	require.NoError(t, store.SaveRefreshToken(ctx, "token-a", 7, time.Hour))

	userID, err := store.ConsumeRefreshToken(ctx, "token-a")
	require.NoError(t, err)
	assert.Equal(t, uint(7), userID)

	_, err = store.ConsumeRefreshToken(ctx, "token-a")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	members, err := mr.Members("user_sessions:7")
	if err == nil {
		assert.NotContains(t, members, "token-a")
	}
}

func TestSessionStore_RevokeAllSessions(t *testing.T) {
	mr, store := setupTestSessionStore(t)
	ctx := context.Background()
	require.NoError(t, store.SaveRefreshToken(ctx, "token-a", 7, time.Hour))
	require.NoError(t, store.SaveRefreshToken(ctx, "token-b", 7, time.Hour))
	require.NoError(t, store.SaveRefreshToken(ctx, "token-c", 8, time.Hour))

	require.NoError(t, store.RevokeAllSessions(ctx, 7))

	for _, token := range []string{"token-a", "token-b"} {
		_, err := store.LookupRefreshToken(ctx, token)
		assert.ErrorIs(t, err, ErrSessionNotFound)
	}
	assert.False(t, mr.Exists("user_sessions:7"))

	userID, err := store.LookupRefreshToken(ctx, "token-c")
	require.NoError(t, err)
	assert.Equal(t, uint(8), userID)
}

func TestSessionStore_DenyAccessToken(t *testing.T) {
	mr, store := setupTestSessionStore(t)
	ctx := context.Background()

	require.NoError(t, store.DenyAccessToken(ctx, "jti-1", time.Minute))
	require.NoError(t, store.DenyAccessToken(ctx, "jti-expired", 0))

	denied, err := store.IsAccessTokenDenied(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, denied)

	denied, err = store.IsAccessTokenDenied(ctx, "jti-expired")
	require.NoError(t, err)
	assert.False(t, denied)

	mr.FastForward(2 * time.Minute)
	denied, err = store.IsAccessTokenDenied(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, denied)
}

func TestSessionStore_CorruptValue(t *testing.T) {
	mr, store := setupTestSessionStore(t)
	require.NoError(t, mr.Set("refresh:bad", "not-a-number"))

	_, err := store.LookupRefreshToken(context.Background(), "bad")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrSessionNotFound)
}

func TestPing(t *testing.T) {
	mr := miniredis.RunT(t)
	client := NewClient(Options{Addr: mr.Addr()})
	defer client.Close()

	require.NoError(t, Ping(context.Background(), client))
}

func TestPing_Unreachable(t *testing.T) {
	client := NewClient(Options{Addr: "127.0.0.1:1"})
	defer client.Close()

	assert.Error(t, Ping(context.Background(), client))
}

func TestSessionStore_RevokeUserRefreshTokenChecksOwner(t *testing.T) {
	mr, store := setupTestSessionStore(t)
	ctx := context.Background()
	require.NoError(t, store.SaveRefreshToken(ctx, "token-b", 8, time.Hour))

	err := store.RevokeUserRefreshToken(ctx, "token-b", 7)
	assert.ErrorIs(t, err, ErrSessionNotOwned)
	owner, err := store.LookupRefreshToken(ctx, "token-b")
	require.NoError(t, err)
	assert.Equal(t, uint(8), owner)

	require.NoError(t, store.RevokeUserRefreshToken(ctx, "token-b", 8))
	assert.False(t, mr.Exists("refresh:token-b"))
	members, err := mr.Members("user_sessions:8")
	if err == nil {
		assert.NotContains(t, members, "token-b")
	}

	assert.NoError(t, store.RevokeUserRefreshToken(ctx, "missing", 8))
}

func TestSessionStore_AccessCutoff(t *testing.T) {
	mr, store := setupTestSessionStore(t)
	ctx := context.Background()

	_, found, err := store.AccessCutoff(ctx, 7)
	require.NoError(t, err)
	assert.False(t, found)

	at := time.Date(2025, time.March, 10, 9, 0, 30, 0, time.UTC)
	require.NoError(t, store.RevokeAccessIssuedBefore(ctx, 7, at, 15*time.Minute))
	cutoff, found, err := store.AccessCutoff(ctx, 7)
	require.NoError(t, err)
	assert.True(t, found)
	assert.True(t, cutoff.Equal(at))

	_, found, err = store.AccessCutoff(ctx, 8)
	require.NoError(t, err)
	assert.False(t, found)

	mr.FastForward(16 * time.Minute)
	_, found, err = store.AccessCutoff(ctx, 7)
	require.NoError(t, err)
	assert.False(t, found)
}
