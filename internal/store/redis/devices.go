package redis

import (
	"context"
	"fmt"
)

// RegisterDeviceToken adds a push device token to the user's set.
func (s *Store) RegisterDeviceToken(ctx context.Context, userID, token string) error {
	if err := s.client.SAdd(ctx, UserDevicesKey(userID), token).Err(); err != nil {
		return fmt.Errorf("failed to register device token: %w", err)
	}
	return nil
}

// RemoveDeviceToken drops a device token, typically after the delivery
// service reported it dead.
func (s *Store) RemoveDeviceToken(ctx context.Context, userID, token string) error {
	if err := s.client.SRem(ctx, UserDevicesKey(userID), token).Err(); err != nil {
		return fmt.Errorf("failed to remove device token: %w", err)
	}
	return nil
}

// DeviceTokens returns the user's registered device tokens.
func (s *Store) DeviceTokens(ctx context.Context, userID string) ([]string, error) {
	tokens, err := s.client.SMembers(ctx, UserDevicesKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get device tokens: %w", err)
	}
	return tokens, nil
}
