package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/storefront/backend/internal/domain/cart"
)

// cartEntry is a stored cart snapshot with expiration
type cartEntry struct {
	data      []byte
	expiresAt time.Time
}

// InMemoryCartStore implements cart.CartStore using an in-memory map.
// This is suitable for single-instance deployments and testing. Carts are
// kept as JSON snapshots so callers cannot mutate stored state through a
// retained pointer, matching the Redis store's semantics.
type InMemoryCartStore struct {
	mu        sync.RWMutex
	entries   map[string]cartEntry
	ttl       time.Duration
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryCartStore creates a new in-memory cart store
// It starts a background goroutine to clean up expired carts
func NewInMemoryCartStore(ttl time.Duration) *InMemoryCartStore {
	store := &InMemoryCartStore{
		entries:  make(map[string]cartEntry),
		ttl:      ttl,
		stopChan: make(chan struct{}),
	}

	store.wg.Add(1)
	go store.cleanupLoop()

	return store
}

// Get loads the cart for a session, returning a fresh empty cart when none
// is stored or the stored one has expired. A hit slides the TTL forward.
func (s *InMemoryCartStore) Get(ctx context.Context, sessionID string) (*cart.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, exists := s.entries[sessionID]
	if !exists || time.Now().After(e.expiresAt) {
		return cart.NewCart(sessionID)
	}

	var c cart.Cart
	if err := json.Unmarshal(e.data, &c); err != nil {
		return cart.NewCart(sessionID)
	}

	e.expiresAt = time.Now().Add(s.ttl)
	s.entries[sessionID] = e
	return &c, nil
}

// Save writes the cart back and resets its TTL
func (s *InMemoryCartStore) Save(ctx context.Context, c *cart.Cart) error {
	data, err := json.Marshal(c)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[c.SessionID] = cartEntry{
		data:      data,
		expiresAt: time.Now().Add(s.ttl),
	}
	return nil
}

// Delete removes a session's cart
func (s *InMemoryCartStore) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, sessionID)
	return nil
}

// Close stops the cleanup goroutine and releases resources
// Safe to call multiple times
func (s *InMemoryCartStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.stopChan)
		s.wg.Wait()
	})
	return nil
}

// cleanupLoop periodically removes expired carts
func (s *InMemoryCartStore) cleanupLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.cleanup()
		}
	}
}

// cleanup removes expired carts from the store
func (s *InMemoryCartStore) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for sessionID, e := range s.entries {
		if now.After(e.expiresAt) {
			delete(s.entries, sessionID)
		}
	}
}

// Size returns the number of stored carts (for testing/monitoring)
func (s *InMemoryCartStore) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Ensure InMemoryCartStore implements CartStore
var _ cart.CartStore = (*InMemoryCartStore)(nil)
