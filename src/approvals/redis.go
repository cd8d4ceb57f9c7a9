package approvals

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

const defaultRedisPrefix = "selfai:approvals:"

// RedisStore keeps approvals in Redis so several API replicas share one queue.
// Ids come from INCR and Take uses GETDEL inside a transaction, which keeps resolution exactly-once
// across processes.
type RedisStore struct {
	rdb    *redis.Client
	prefix string
}

type RedisOption func(*RedisStore)

// WithPrefix overrides the key prefix.
func WithPrefix(prefix string) RedisOption {
	return func(s *RedisStore) {
		s.prefix = prefix
	}
}

func NewRedisStore(rdb *redis.Client, opts ...RedisOption) *RedisStore {
	s := &RedisStore{rdb: rdb, prefix: defaultRedisPrefix}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisStore) seqKey() string   { return s.prefix + "seq" }
func (s *RedisStore) indexKey() string { return s.prefix + "index" }
func (s *RedisStore) key(id uint64) string {
	return s.prefix + strconv.FormatUint(id, 10)
}

func (s *RedisStore) Add(ctx context.Context, p PendingApproval) (uint64, error) {
	n, err := s.rdb.Incr(ctx, s.seqKey()).Result()
	if err != nil {
		return 0, fmt.Errorf("approvals: allocate id: %w", err)
	}
	p.ID = uint64(n)

	data, err := json.Marshal(p)
	if err != nil {
		return 0, fmt.Errorf("approvals: marshal: %w", err)
	}

	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, s.key(p.ID), data, 0)
	pipe.ZAdd(ctx, s.indexKey(), redis.Z{Score: float64(p.ID), Member: p.ID})
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("approvals: save %d: %w", p.ID, err)
	}
	return p.ID, nil
}

func (s *RedisStore) Get(ctx context.Context, id uint64) (PendingApproval, error) {
	raw, err := s.rdb.Get(ctx, s.key(id)).Result()
	return s.decode(id, raw, err)
}

// Take removes the record and its index entry in one MULTI/EXEC, so a
// consumed approval never leaves a stale index member behind.
func (s *RedisStore) Take(ctx context.Context, id uint64) (PendingApproval, error) {
	pipe := s.rdb.TxPipeline()
	get := pipe.GetDel(ctx, s.key(id))
	pipe.ZRem(ctx, s.indexKey(), id)
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return PendingApproval{}, fmt.Errorf("approvals: take %d: %w", id, err)
	}
	raw, err := get.Result()
	return s.decode(id, raw, err)
}

func (s *RedisStore) List(ctx context.Context) ([]PendingApproval, error) {
	members, err := s.rdb.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("approvals: list: %w", err)
	}
	out := []PendingApproval{}
	if len(members) == 0 {
		return out, nil
	}

	keys := make([]string, 0, len(members))
	for _, m := range members {
		keys = append(keys, s.prefix+m)
	}
	values, err := s.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("approvals: list: %w", err)
	}
	for _, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		var p PendingApproval
		if err := json.Unmarshal([]byte(raw), &p); err != nil {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (s *RedisStore) decode(id uint64, raw string, err error) (PendingApproval, error) {
	if errors.Is(err, redis.Nil) {
		return PendingApproval{}, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	if err != nil {
		return PendingApproval{}, fmt.Errorf("approvals: load %d: %w", id, err)
	}
	var p PendingApproval
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return PendingApproval{}, fmt.Errorf("approvals: unmarshal %d: %w", id, err)
	}
	return p, nil
}
