package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"draftshare/internal/domain"
)

type RedisDocumentStore struct {
	c      *redis.Client
	prefix string
}

func NewRedisDocumentStore(c *redis.Client, keyPrefix string) *RedisDocumentStore {
	if keyPrefix == "" {
		keyPrefix = "draftshare:"
	}
	return &RedisDocumentStore{c: c, prefix: keyPrefix}
}

func (s *RedisDocumentStore) docKey() string {
	return s.prefix + "grants:doc"
}

func (s *RedisDocumentStore) revKey() string {
	return s.prefix + "grants:rev"
}

func (s *RedisDocumentStore) Load(ctx context.Context) (domain.OwnerGrantSet, int64, error) {
	raw, err := s.c.Get(ctx, s.docKey()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.OwnerGrantSet{}, 0, nil
		}
		return nil, 0, fmt.Errorf("%w: load document: %v", domain.ErrStoreUnavailable, err)
	}

	revision, err := s.c.Get(ctx, s.revKey()).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, 0, fmt.Errorf("%w: load revision: %v", domain.ErrStoreUnavailable, err)
	}

	var set domain.OwnerGrantSet
	if err := json.Unmarshal(raw, &set); err != nil {
		return domain.OwnerGrantSet{}, revision, nil
	}
	if set == nil {
		set = domain.OwnerGrantSet{}
	}
	return set, revision, nil
}

func (s *RedisDocumentStore) Save(ctx context.Context, set domain.OwnerGrantSet, revision int64) error {
	raw, err := json.Marshal(set)
	if err != nil {
		return fmt.Errorf("marshal grant document: %w", err)
	}

	// WATCH на ключе ревизии даёт compare-and-swap на весь документ
	err = s.c.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, s.revKey()).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != revision {
			return domain.ErrRevisionConflict
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, s.docKey(), raw, 0)
			pipe.Incr(ctx, s.revKey())
			return nil
		})
		return err
	}, s.revKey())

	if err != nil {
		if errors.Is(err, domain.ErrRevisionConflict) || errors.Is(err, redis.TxFailedErr) {
			return domain.ErrRevisionConflict
		}
		return fmt.Errorf("%w: save document: %v", domain.ErrStoreUnavailable, err)
	}
	return nil
}
