package approvals

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/selfai-labs/selfai/src/companions"
)

type storeFactory func(t *testing.T) Store

func memoryFactory(t *testing.T) Store { return NewMemoryStore() }

func redisFactory(t *testing.T) Store {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client, WithPrefix("test:approvals:"))
}

var factories = map[string]storeFactory{
	"memory": memoryFactory,
	"redis":  redisFactory,
}

func TestStoreContract(t *testing.T) {
	for name, factory := range factories {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := factory(t)

			first, err := store.Add(ctx, PendingApproval{TokenID: 1, RequesterID: 5, ActionType: companions.ActionPost, Context: "gm"})
			require.NoError(t, err)
			second, err := store.Add(ctx, PendingApproval{TokenID: 1, RequesterID: 6, ActionType: companions.ActionQuote, ReplyTarget: "0xabc"})
			require.NoError(t, err)
			assert.Equal(t, uint64(1), first)
			assert.Equal(t, uint64(2), second)

			got, err := store.Get(ctx, second)
			require.NoError(t, err)
			assert.Equal(t, second, got.ID)
			assert.Equal(t, companions.ActionQuote, got.ActionType)
			assert.Equal(t, "0xabc", got.ReplyTarget)

			list, err := store.List(ctx)
			require.NoError(t, err)
			require.Len(t, list, 2)
			assert.Equal(t, first, list[0].ID)

			taken, err := store.Take(ctx, first)
			require.NoError(t, err)
			assert.Equal(t, "gm", taken.Context)

			_, err = store.Take(ctx, first)
			assert.ErrorIs(t, err, ErrNotFound)
			_, err = store.Get(ctx, first)
			assert.ErrorIs(t, err, ErrNotFound)

			list, err = store.List(ctx)
			require.NoError(t, err)
			require.Len(t, list, 1)
			assert.Equal(t, second, list[0].ID)

			third, err := store.Add(ctx, PendingApproval{TokenID: 2})
			require.NoError(t, err)
			assert.Equal(t, uint64(3), third, "ids are never reused")
		})
	}
}

func newQueue(t *testing.T, store Store) (*Queue, *companions.Registry, uint64) {
	t.Helper()
	reg := companions.NewRegistry()
	id, err := reg.Create("Nova", "Curious and upbeat explorer", "You write short, friendly casts.", 100, companions.TierPrivate)
	require.NoError(t, err)
	return NewQueue(store, reg), reg, id
}

func TestQueue_ResolveIsExactlyOnce(t *testing.T) {
	for name, factory := range factories {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			q, _, token := newQueue(t, factory(t))

			id, err := q.Enqueue(ctx, token, 55, companions.ActionPost, "launch day", "")
			require.NoError(t, err)

			p, err := q.Resolve(ctx, id, 100)
			require.NoError(t, err)
			assert.Equal(t, int64(55), p.RequesterID)
			assert.Equal(t, "launch day", p.Context)

			_, err = q.Resolve(ctx, id, 100)
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestQueue_ConcurrentResolve(t *testing.T) {
	for name, factory := range factories {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			q, _, token := newQueue(t, factory(t))

			id, err := q.Enqueue(ctx, token, 100, companions.ActionQuote, "", "")
			require.NoError(t, err)

			var wins, misses atomic.Int32
			var wg sync.WaitGroup
			for i := 0; i < 32; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					_, err := q.Resolve(ctx, id, 100)
					switch {
					case err == nil:
						wins.Add(1)
					default:
						assert.ErrorIs(t, err, ErrNotFound)
						misses.Add(1)
					}
				}()
			}
			wg.Wait()

			assert.Equal(t, int32(1), wins.Load())
			assert.Equal(t, int32(31), misses.Load())
		})
	}
}

func TestQueue_ResolveRequiresOwner(t *testing.T) {
	ctx := context.Background()
	q, _, token := newQueue(t, NewMemoryStore())

	id, err := q.Enqueue(ctx, token, 55, companions.ActionPost, "", "")
	require.NoError(t, err)

	for _, intruder := range []int64{55, 0, 99, 101} {
		_, err := q.Resolve(ctx, id, intruder)
		assert.ErrorIs(t, err, companions.ErrUnauthorized, "identity %d", intruder)
		assert.ErrorIs(t, q.Reject(ctx, id, intruder), companions.ErrUnauthorized)
	}

	// a refused approver must not consume the record
	_, err = q.Resolve(ctx, id, 100)
	assert.NoError(t, err)
}

func TestQueue_EnqueueUnknownCompanion(t *testing.T) {
	q, _, token := newQueue(t, NewMemoryStore())
	_, err := q.Enqueue(context.Background(), token+10, 1, companions.ActionPost, "", "")
	assert.ErrorIs(t, err, companions.ErrNotFound)
}

func TestQueue_RejectAndPending(t *testing.T) {
	ctx := context.Background()
	q, reg, token := newQueue(t, NewMemoryStore())
	other, err := reg.Create("Echo", "Quiet, thoughtful observer", "You write calm, measured casts.", 200, companions.TierPublic)
	require.NoError(t, err)

	a, _ := q.Enqueue(ctx, token, 1, companions.ActionPost, "a", "")
	b, _ := q.Enqueue(ctx, other, 1, companions.ActionPost, "b", "")
	c, _ := q.Enqueue(ctx, token, 2, companions.ActionQuote, "c", "")

	mine, err := q.Pending(ctx, 100)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, a, mine[0].ID)
	assert.Equal(t, c, mine[1].ID)

	require.NoError(t, q.Reject(ctx, a, 100))
	_, err = q.Resolve(ctx, a, 100)
	assert.ErrorIs(t, err, ErrNotFound)

	theirs, err := q.Pending(ctx, 200)
	require.NoError(t, err)
	require.Len(t, theirs, 1)
	assert.Equal(t, b, theirs[0].ID)

	none, err := q.Pending(ctx, 999)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestRedisStore_TakeDropsIndexEntry(t *testing.T) {
	ctx := context.Background()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	s := NewRedisStore(client, WithPrefix("t:"))

	first, err := s.Add(ctx, PendingApproval{TokenID: 1, ActionType: companions.ActionPost, Context: "a"})
	require.NoError(t, err)
	second, err := s.Add(ctx, PendingApproval{TokenID: 1, ActionType: companions.ActionQuote, Context: "b"})
	require.NoError(t, err)

	p, err := s.Take(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, "a", p.Context)
	assert.False(t, mr.Exists("t:1"))

	members, err := mr.ZMembers("t:index")
	require.NoError(t, err)
	assert.Equal(t, []string{"2"}, members)

	_, err = s.Take(ctx, first)
	assert.ErrorIs(t, err, ErrNotFound)
	members, err = mr.ZMembers("t:index")
	require.NoError(t, err)
	assert.Equal(t, []string{"2"}, members, "a missing id leaves the index alone")

	_, err = s.Take(ctx, second)
	require.NoError(t, err)
	assert.False(t, mr.Exists("t:index"))
}
