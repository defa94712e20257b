package docstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Redis stores each document as a single string value.
type Redis struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedis wraps a connected client. Keys are stored as keyPrefix+key.
func NewRedis(client *redis.Client, keyPrefix string) *Redis {
	return &Redis{client: client, keyPrefix: keyPrefix}
}

func (r *Redis) Load(ctx context.Context, key string) ([]byte, bool, error) {
	body, err := r.client.Get(ctx, r.keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get document %s: %w", key, err)
	}
	return body, true, nil
}

// Save replaces the value with one SET, which redis applies atomically.
func (r *Redis) Save(ctx context.Context, key string, body []byte) error {
	if err := r.client.Set(ctx, r.keyPrefix+key, body, 0).Err(); err != nil {
		return fmt.Errorf("failed to set document %s: %w", key, err)
	}
	return nil
}

func (r *Redis) SetSyncMetadata(ctx context.Context, key, value string) error {
	if err := r.client.HSet(ctx, r.keyPrefix+"sync_metadata", key, value).Err(); err != nil {
		return fmt.Errorf("failed to set sync metadata %s: %w", key, err)
	}
	return nil
}

func (r *Redis) GetSyncMetadata(ctx context.Context, key string) (string, error) {
	value, err := r.client.HGet(ctx, r.keyPrefix+"sync_metadata", key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get sync metadata %s: %w", key, err)
	}
	return value, nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}
