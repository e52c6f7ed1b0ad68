package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllow_PerKeyBurst(t *testing.T) {
	krl := New(1, 2)
	defer krl.Stop()

	assert.True(t, krl.Allow("alice"))
	assert.True(t, krl.Allow("alice"))
	assert.False(t, krl.Allow("alice"), "third request exceeds burst")

	assert.True(t, krl.Allow("bob"), "keys are independent")
	assert.Equal(t, 2, krl.Len())
}

func TestWait_RespectsContext(t *testing.T) {
	krl := New(0.1, 1)
	defer krl.Stop()

	require.NoError(t, krl.Wait(context.Background(), "k"))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.Error(t, krl.Wait(ctx, "k"))
}

func TestSweep_EvictsIdleKeys(t *testing.T) {
	krl := NewWithIdleTimeout(10, 1, time.Minute)
	defer krl.Stop()

	var mu sync.Mutex
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	krl.now = func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}
	advance := func(d time.Duration) {
		mu.Lock()
		now = now.Add(d)
		mu.Unlock()
	}

	krl.Allow("old")
	advance(45 * time.Second)
	krl.Allow("fresh")
	advance(30 * time.Second)

	assert.Equal(t, 1, krl.sweep())
	assert.Equal(t, 1, krl.Len())

	// Touching a key keeps it alive.
	krl.Allow("fresh")
	advance(50 * time.Second)
	assert.Equal(t, 0, krl.sweep())
}

func TestStop_Idempotent(t *testing.T) {
	krl := New(1, 1)
	krl.Stop()
	krl.Stop()
}

func TestPerMinute(t *testing.T) {
	assert.InDelta(t, 100.0/60, PerMinute(100), 1e-9)
}

func TestRetryAfter(t *testing.T) {
	krl := New(0.5, 1)
	defer krl.Stop()
	assert.Equal(t, 2*time.Second, krl.RetryAfter())
}
