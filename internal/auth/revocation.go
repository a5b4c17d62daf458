// AngelaMos | 2026
// revocation.go

package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const revokedKeyPrefix = "session:revoked:"

// RevocationStore records logged-out session token IDs in redis. Entries
// expire together with the token they revoke, so the set never needs a
// sweeper and stays bounded by the session TTL.
type RevocationStore struct {
	client *redis.Client
}

func NewRevocationStore(client *redis.Client) *RevocationStore {
	return &RevocationStore{client: client}
}

func (s *RevocationStore) Revoke(
	ctx context.Context,
	jti string,
	expiresAt time.Time,
) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		// Token already expired, nothing to revoke.
		return nil
	}

	err := s.client.Set(ctx, revokedKeyPrefix+jti, "1", ttl).Err()
	if err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}

	return nil
}

// IsRevoked satisfies middleware.SessionRevoker.
func (s *RevocationStore) IsRevoked(
	ctx context.Context,
	jti string,
) (bool, error) {
	n, err := s.client.Exists(ctx, revokedKeyPrefix+jti).Result()
	if err != nil {
		return false, fmt.Errorf("check session revocation: %w", err)
	}

	return n > 0, nil
}
