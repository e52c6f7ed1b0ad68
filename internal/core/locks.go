package core

import (
	"context"
	"sync"
)

// collectionLocks serializes import jobs per target collection within
// this process. Entries are refcounted and dropped when the last holder
// or waiter leaves, so the map only holds collections with a job in
// flight.
type collectionLocks struct {
	mu    sync.Mutex
	locks map[string]*refLock
}

// refLock is a one-slot channel so waiters can give up on ctx.
type refLock struct {
	ch   chan struct{}
	refs int
}

func newCollectionLocks() *collectionLocks {
	return &collectionLocks{locks: make(map[string]*refLock)}
}

// lock blocks until key is free or ctx is done, and returns the matching
// unlock on success.
func (c *collectionLocks) lock(ctx context.Context, key string) (func(), error) {
	c.mu.Lock()
	l, ok := c.locks[key]
	if !ok {
		l = &refLock{ch: make(chan struct{}, 1)}
		c.locks[key] = l
	}
	l.refs++
	c.mu.Unlock()

	select {
	case l.ch <- struct{}{}:
	case <-ctx.Done():
		c.release(key, l)
		return nil, ctx.Err()
	}

	return func() {
		<-l.ch
		c.release(key, l)
	}, nil
}

func (c *collectionLocks) release(key string, l *refLock) {
	c.mu.Lock()
	l.refs--
	if l.refs == 0 {
		delete(c.locks, key)
	}
	c.mu.Unlock()
}

func (c *collectionLocks) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.locks)
}

func lockKey(collection string, ref CollectionRef) string {
	return collection + ":" + ref.String()
}
