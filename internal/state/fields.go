package state

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// FieldStore holds the current value of host form fields, keyed by item and field name
type FieldStore interface {
	GetFieldValue(ctx context.Context, itemSlug, fieldName string) (string, error)
	SetFieldValue(ctx context.Context, itemSlug, fieldName, value string) error
	DeleteFieldValue(ctx context.Context, itemSlug, fieldName string) error
}

type redisFieldStore struct {
	redisClient *redis.Client
	keyPrefix   string
}

func NewRedisFieldStore(redisClient *redis.Client) FieldStore {
	return &redisFieldStore{
		redisClient: redisClient,
		keyPrefix:   "pathscategories:field:",
	}
}

func (s *redisFieldStore) key(itemSlug, fieldName string) string {
	return s.keyPrefix + itemSlug + ":" + fieldName
}

// GetFieldValue returns "" when nothing was stored yet
func (s *redisFieldStore) GetFieldValue(ctx context.Context, itemSlug, fieldName string) (string, error) {
	val, err := s.redisClient.Get(ctx, s.key(itemSlug, fieldName)).Result()
	if err != nil {
		if err == redis.Nil {
			return "", nil
		}
		return "", fmt.Errorf("failed to get field %s of item %s: %w", fieldName, itemSlug, err)
	}
	return val, nil
}

func (s *redisFieldStore) SetFieldValue(ctx context.Context, itemSlug, fieldName, value string) error {
	err := s.redisClient.Set(ctx, s.key(itemSlug, fieldName), value, 0).Err() // No expiration
	if err != nil {
		return fmt.Errorf("failed to set field %s of item %s: %w", fieldName, itemSlug, err)
	}
	return nil
}

// DeleteFieldValue is a no-op for fields that hold nothing
func (s *redisFieldStore) DeleteFieldValue(ctx context.Context, itemSlug, fieldName string) error {
	if err := s.redisClient.Del(ctx, s.key(itemSlug, fieldName)).Err(); err != nil {
		return fmt.Errorf("failed to delete field %s of item %s: %w", fieldName, itemSlug, err)
	}
	return nil
}
