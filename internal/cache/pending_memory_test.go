package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/kyrios-fx/backend/internal/domain"
	"github.com/kyrios-fx/backend/internal/metrics"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTTL = 90 * time.Second

func newPending(clock clockwork.Clock, email string) *domain.PendingRegistration {
	return &domain.PendingRegistration{
		Name:         "Alice",
		Email:        email,
		Phone:        "+10000000000",
		Password:     "hash",
		ReferralCode: "ABC1234",
		CreatedAt:    clock.Now(),
	}
}

func TestMemoryPendingStore_AdmitGetDelete(t *testing.T) {
	ctx := context.Background()
	clock := clockwork.NewFakeClock()
	store := NewMemoryPendingStore(testTTL, clock)

	require.NoError(t, store.Admit(ctx, newPending(clock, "a@x.io")))
	assert.ErrorIs(t, store.Admit(ctx, newPending(clock, "a@x.io")), domain.ErrDuplicateEntry)

	got, err := store.Get(ctx, "a@x.io")
	require.NoError(t, err)
	assert.Equal(t, "Alice", got.Name)

	got.Name = "mutated"
	again, err := store.Get(ctx, "a@x.io")
	require.NoError(t, err)
	assert.Equal(t, "Alice", again.Name, "Get returns a copy")

	require.NoError(t, store.Delete(ctx, "a@x.io"))
	require.NoError(t, store.Delete(ctx, "a@x.io"))
	_, err = store.Get(ctx, "a@x.io")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMemoryPendingStore_ExpiresAfterTTL(t *testing.T) {
	ctx := context.Background()
	clock := clockwork.NewFakeClock()
	store := NewMemoryPendingStore(testTTL, clock)

	require.NoError(t, store.Admit(ctx, newPending(clock, "a@x.io")))

	clock.Advance(testTTL - time.Second)
	_, err := store.Get(ctx, "a@x.io")
	require.NoError(t, err)

	clock.Advance(time.Second)
	require.Eventually(t, func() bool {
		_, err := store.Get(ctx, "a@x.io")
		return err != nil
	}, time.Second, 5*time.Millisecond)
}

func TestMemoryPendingStore_StaleTimerKeepsNewEntry(t *testing.T) {
	ctx := context.Background()
	clock := clockwork.NewFakeClock()
	store := NewMemoryPendingStore(testTTL, clock)

	require.NoError(t, store.Admit(ctx, newPending(clock, "a@x.io")))
	// simulate a timer that outlived its entry
	clock.Advance(time.Minute)
	fresh := newPending(clock, "a@x.io")
	store.mu.Lock()
	store.items["a@x.io"].entry = *fresh
	store.mu.Unlock()

	store.expire("a@x.io", fresh.CreatedAt.Add(-time.Minute))

	_, err := store.Get(ctx, "a@x.io")
	assert.NoError(t, err)
}

func TestMemoryPendingStore_RejectsEntryWithoutLifetime(t *testing.T) {
	ctx := context.Background()
	clock := clockwork.NewFakeClock()

	stale := newPending(clock, "a@x.io")
	stale.CreatedAt = clock.Now().Add(-testTTL)
	store := NewMemoryPendingStore(testTTL, clock)
	assert.ErrorIs(t, store.Admit(ctx, stale), ErrNoLifetime)

	zero := NewMemoryPendingStore(0, clock)
	assert.ErrorIs(t, zero.Admit(ctx, newPending(clock, "b@x.io")), ErrNoLifetime)

	_, err := store.Get(ctx, "a@x.io")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = zero.Get(ctx, "b@x.io")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMemoryPendingStore_EntriesGauge(t *testing.T) {
	ctx := context.Background()
	clock := clockwork.NewFakeClock()
	store := NewMemoryPendingStore(testTTL, clock)

	require.NoError(t, store.Admit(ctx, newPending(clock, "a@x.io")))
	require.NoError(t, store.Admit(ctx, newPending(clock, "b@x.io")))
	assert.Equal(t, float64(2), testutil.ToFloat64(metrics.PendingEntries))

	require.NoError(t, store.Delete(ctx, "a@x.io"))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.PendingEntries))

	clock.Advance(testTTL)
	require.Eventually(t, func() bool {
		return testutil.ToFloat64(metrics.PendingEntries) == 0
	}, time.Second, 5*time.Millisecond)
}

func TestMemoryPendingStore_Sweep(t *testing.T) {
	ctx := context.Background()
	clock := clockwork.NewFakeClock()
	store := NewMemoryPendingStore(testTTL, clock)

	old := newPending(clock, "old@x.io")
	old.CreatedAt = clock.Now().Add(-2 * testTTL)
	store.items[old.Email] = &pendingItem{entry: *old, timer: clock.NewTimer(time.Hour)}
	require.NoError(t, store.Admit(ctx, newPending(clock, "new@x.io")))

	removed, err := store.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.PendingEntries))
}

func TestMemoryPendingStore_ConcurrentAdmitSameEmail(t *testing.T) {
	ctx := context.Background()
	clock := clockwork.NewFakeClock()
	store := NewMemoryPendingStore(testTTL, clock)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if store.Admit(ctx, newPending(clock, "race@x.io")) == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
}

func TestMemoryPendingStore_ManyEmails(t *testing.T) {
	ctx := context.Background()
	clock := clockwork.NewFakeClock()
	store := NewMemoryPendingStore(testTTL, clock)

	for i := 0; i < 100; i++ {
		require.NoError(t, store.Admit(ctx, newPending(clock, fmt.Sprintf("u%d@x.io", i))))
	}
	assert.Equal(t, float64(100), testutil.ToFloat64(metrics.PendingEntries))
}
