package store

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"idres/internal/identity/models"
	"idres/pkg/platform/sentinel"
)

// Redis stores each document as a plain string key.
type Redis struct {
	client *redis.Client
	prefix string
}

// RedisOption configures a Redis store.
type RedisOption func(*Redis)

// WithKeyPrefix namespaces both keys, e.g. per workspace.
func WithKeyPrefix(prefix string) RedisOption {
	return func(s *Redis) {
		s.prefix = prefix
	}
}

func NewRedis(client *redis.Client, opts ...RedisOption) *Redis {
	s := &Redis{client: client}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *Redis) Load(ctx context.Context) (Snapshot, error) {
	vals, err := s.client.MGet(ctx, s.prefix+FieldsKey, s.prefix+DeletedKey).Result()
	if err != nil {
		return Snapshot{}, fmt.Errorf("redis mget: %w: %w", sentinel.ErrUnavailable, err)
	}
	return decodeSnapshot(stringOrNil(vals[0]), stringOrNil(vals[1])), nil
}

// Save writes both keys in one MULTI/EXEC so readers never see half a save.
func (s *Redis) Save(ctx context.Context, fields, deleted []models.IdentifierField) error {
	rawFields, rawDeleted, err := encodeBoth(fields, deleted)
	if err != nil {
		return err
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.prefix+FieldsKey, rawFields, 0)
		pipe.Set(ctx, s.prefix+DeletedKey, rawDeleted, 0)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis save: %w: %w", sentinel.ErrUnavailable, err)
	}
	return nil
}

func stringOrNil(v any) []byte {
	str, ok := v.(string)
	if !ok {
		return nil
	}
	return []byte(str)
}
