package core

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectionLocks_SerializeSameKey(t *testing.T) {
	locks := newCollectionLocks()
	key := lockKey("list", CollectionRef{OwnerID: uuid.New(), CollectionID: uuid.New()})

	var inside, maxInside int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := locks.lock(context.Background(), key)
			if err != nil {
				t.Error(err)
				return
			}
			defer unlock()

			n := atomic.AddInt32(&inside, 1)
			for {
				m := atomic.LoadInt32(&maxInside)
				if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
					break
				}
			}
			time.Sleep(2 * time.Millisecond)
			atomic.AddInt32(&inside, -1)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxInside)
	assert.Equal(t, 0, locks.size(), "released keys are dropped")
}

func TestCollectionLocks_IndependentKeys(t *testing.T) {
	locks := newCollectionLocks()
	owner := uuid.New()

	unlockA, err := locks.lock(context.Background(), lockKey("list", CollectionRef{OwnerID: owner, CollectionID: uuid.New()}))
	require.NoError(t, err)
	defer unlockA()

	done := make(chan struct{})
	go func() {
		unlock, err := locks.lock(context.Background(), lockKey("watchlist", CollectionRef{OwnerID: owner}))
		if err == nil {
			unlock()
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock on a different collection blocked")
	}
	assert.Equal(t, 1, locks.size())
}

func TestCollectionLocks_WaiterGivesUpOnContext(t *testing.T) {
	locks := newCollectionLocks()
	key := lockKey("watchlist", CollectionRef{OwnerID: uuid.New()})

	unlock, err := locks.lock(context.Background(), key)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = locks.lock(ctx, key)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, locks.size(), "the holder keeps its entry")

	unlock()
	assert.Equal(t, 0, locks.size())

	unlock, err = locks.lock(context.Background(), key)
	require.NoError(t, err, "a released key can be taken again")
	unlock()
}

func TestLockKey(t *testing.T) {
	owner := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	list := uuid.MustParse("22222222-2222-2222-2222-222222222222")

	assert.Equal(t, "watchlist:11111111-1111-1111-1111-111111111111",
		lockKey("watchlist", CollectionRef{OwnerID: owner}))
	assert.Equal(t, "list:11111111-1111-1111-1111-111111111111/22222222-2222-2222-2222-222222222222",
		lockKey("list", CollectionRef{OwnerID: owner, CollectionID: list}))
}
