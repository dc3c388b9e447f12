package redis

import (
	"context"
	"fmt"
	"time"
)

// TryLock attempts to take a named advisory lease via SET NX. The TTL
// bounds how long a crashed holder can block the next pass. Returns false
// when another holder has the lease.
func (s *Store) TryLock(ctx context.Context, name string, ttl time.Duration) (bool, error) {
	ok, err := s.client.SetNX(ctx, LockKey(name), "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire lock %s: %w", name, err)
	}
	return ok, nil
}

// Unlock releases a named lease. Releasing a lease that already expired
// is harmless.
func (s *Store) Unlock(ctx context.Context, name string) error {
	if err := s.client.Del(ctx, LockKey(name)).Err(); err != nil {
		return fmt.Errorf("failed to release lock %s: %w", name, err)
	}
	return nil
}
