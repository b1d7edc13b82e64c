package store

import (
	"context"
	"sync"
	"time"

	"github.com/srujanab94/acp-commerce/internal/domain"
)

const (
	// DefaultCheckoutTTL is how long an untouched checkout survives
	// before the background sweep drops it.
	DefaultCheckoutTTL = 24 * time.Hour

	// CleanupInterval is how often the background sweep runs.
	CleanupInterval = 5 * time.Minute
)

// MemoryStore implements Store with in-memory storage.
type MemoryStore struct {
	mu        sync.RWMutex
	checkouts map[string]*domain.Checkout // checkoutID -> checkout

	ttl         time.Duration
	stopCleanup chan struct{}
	wg          sync.WaitGroup
}

// NewMemoryStore creates a new in-memory checkout store and starts the
// background expiry sweep.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultCheckoutTTL
	}
	s := &MemoryStore{
		checkouts:   make(map[string]*domain.Checkout),
		ttl:         ttl,
		stopCleanup: make(chan struct{}),
	}

	s.wg.Add(1)
	go s.cleanupLoop()

	return s
}

func (s *MemoryStore) cleanupLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.expireCheckouts()
		case <-s.stopCleanup:
			return
		}
	}
}

// expireCheckouts drops checkouts whose last mutation is past the TTL.
func (s *MemoryStore) expireCheckouts() {
	cutoff := time.Now().Add(-s.ttl)

	s.mu.Lock()
	defer s.mu.Unlock()
	for id, c := range s.checkouts {
		if c.UpdatedAt.Before(cutoff) {
			delete(s.checkouts, id)
		}
	}
}

func (s *MemoryStore) Put(_ context.Context, c *domain.Checkout) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checkouts[c.ID] = c.Clone()
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*domain.Checkout, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.checkouts[id]
	if !ok {
		return nil, ErrCheckoutNotFound
	}
	return c.Clone(), nil
}

func (s *MemoryStore) Update(_ context.Context, id string, fn func(c *domain.Checkout) error) (*domain.Checkout, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.checkouts[id]
	if !ok {
		return nil, ErrCheckoutNotFound
	}

	updated := c.Clone()
	if err := fn(updated); err != nil {
		return nil, err
	}

	s.checkouts[id] = updated
	return updated.Clone(), nil
}

// Close stops the background sweep and waits for it to exit.
func (s *MemoryStore) Close() {
	close(s.stopCleanup)
	s.wg.Wait()
}
