package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/kyrios-fx/backend/internal/domain"
	"github.com/kyrios-fx/backend/internal/metrics"
	"github.com/kyrios-fx/backend/pkg/logger"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

type pendingItem struct {
	entry domain.PendingRegistration
	timer clockwork.Timer
}

// MemoryPendingStore keeps pending registrations in process memory.
// Every admitted entry schedules its own removal at CreatedAt+ttl.
type MemoryPendingStore struct {
	mu    sync.Mutex
	items map[string]*pendingItem
	ttl   time.Duration
	clock clockwork.Clock
}

func NewMemoryPendingStore(ttl time.Duration, clock clockwork.Clock) *MemoryPendingStore {
	return &MemoryPendingStore{
		items: make(map[string]*pendingItem),
		ttl:   ttl,
		clock: clock,
	}
}

func (s *MemoryPendingStore) Admit(_ context.Context, entry *domain.PendingRegistration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ttl := entry.ExpiresIn(s.clock.Now(), s.ttl)
	if ttl <= 0 {
		return fmt.Errorf("cache.MemoryPendingStore.Admit: %w", ErrNoLifetime)
	}
	if _, ok := s.items[entry.Email]; ok {
		return domain.ErrDuplicateEntry
	}

	item := &pendingItem{entry: *entry}
	createdAt := entry.CreatedAt
	email := entry.Email
	item.timer = s.clock.AfterFunc(ttl, func() {
		s.expire(email, createdAt)
	})
	s.items[email] = item
	s.observeSize()

	return nil
}

// observeSize publishes the entry count; callers hold mu.
func (s *MemoryPendingStore) observeSize() {
	metrics.PendingEntries.Set(float64(len(s.items)))
}

// expire removes the entry only if it is still the one the timer was scheduled for.
func (s *MemoryPendingStore) expire(email string, createdAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[email]
	if !ok || !item.entry.CreatedAt.Equal(createdAt) {
		return
	}
	delete(s.items, email)
	s.observeSize()
	metrics.PendingExpired.Inc()
	logger.Debug("pending registration expired", zap.String("email", email))
}

func (s *MemoryPendingStore) Get(_ context.Context, email string) (*domain.PendingRegistration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[email]
	if !ok {
		return nil, domain.ErrNotFound
	}
	entry := item.entry
	return &entry, nil
}

func (s *MemoryPendingStore) Delete(_ context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if item, ok := s.items[email]; ok {
		item.timer.Stop()
		delete(s.items, email)
		s.observeSize()
	}
	return nil
}

func (s *MemoryPendingStore) Sweep(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	removed := 0
	for email, item := range s.items {
		if item.entry.Expired(now, s.ttl) {
			item.timer.Stop()
			delete(s.items, email)
			removed++
		}
	}
	if removed > 0 {
		metrics.PendingExpired.Add(float64(removed))
	}
	s.observeSize()
	return removed, nil
}
