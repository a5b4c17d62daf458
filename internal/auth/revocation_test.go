// AngelaMos | 2026
// revocation_test.go

package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRevocationStore(t *testing.T) (*RevocationStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = client.Close() //nolint:errcheck // test cleanup
	})

	return NewRevocationStore(client), mr
}

func TestRevocationStore_RevokeAndCheck(t *testing.T) {
	t.Parallel()

	store, _ := newTestRevocationStore(t)
	ctx := context.Background()

	revoked, err := store.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	err = store.Revoke(ctx, "jti-1", time.Now().Add(time.Hour))
	require.NoError(t, err)

	revoked, err = store.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	// Other token IDs stay unaffected.
	revoked, err = store.IsRevoked(ctx, "jti-2")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestRevocationStore_EntryExpiresWithToken(t *testing.T) {
	t.Parallel()

	store, mr := newTestRevocationStore(t)
	ctx := context.Background()

	err := store.Revoke(ctx, "jti-1", time.Now().Add(time.Minute))
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)

	revoked, err := store.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestRevocationStore_ExpiredTokenIsNoop(t *testing.T) {
	t.Parallel()

	store, mr := newTestRevocationStore(t)

	err := store.Revoke(
		context.Background(),
		"jti-1",
		time.Now().Add(-time.Minute),
	)
	require.NoError(t, err)

	assert.Empty(t, mr.Keys())
}
