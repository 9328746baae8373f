package memory

import (
	"context"
	"sync"
	"time"

	"cortex-backend/domain/services"
	pkgerrors "cortex-backend/pkg/errors"
)

type packEntry struct {
	pack     *services.ContextPack
	storedAt time.Time
}

// PackStore is an in-memory ContextPackRepository with TTL eviction.
// Packs only need to live long enough for feedback to arrive.
type PackStore struct {
	mu     sync.RWMutex
	packs  map[string]packEntry
	ttl    time.Duration
	stopCh chan struct{}
}

// NewPackStore creates a new in-memory pack store
func NewPackStore(ttl time.Duration) *PackStore {
	store := &PackStore{
		packs:  make(map[string]packEntry),
		ttl:    ttl,
		stopCh: make(chan struct{}),
	}

	go store.cleanupRoutine()

	return store
}

// Save stores a built pack
func (s *PackStore) Save(ctx context.Context, pack *services.ContextPack) error {
	if pack == nil || pack.ID == "" {
		return pkgerrors.NewValidationError("pack must have an id")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.packs[pack.ID] = packEntry{pack: pack, storedAt: time.Now()}
	return nil
}

// GetByID retrieves a pack by its id
func (s *PackStore) GetByID(ctx context.Context, packID string) (*services.ContextPack, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, exists := s.packs[packID]
	if !exists {
		return nil, pkgerrors.NewNotFoundError("context pack")
	}
	if s.isExpired(entry) {
		return nil, pkgerrors.NewNotFoundError("context pack")
	}
	return entry.pack, nil
}

// Close stops the cleanup goroutine
func (s *PackStore) Close() {
	close(s.stopCh)
}

// isExpired checks if an entry outlived the TTL
func (s *PackStore) isExpired(entry packEntry) bool {
	return s.ttl > 0 && time.Since(entry.storedAt) > s.ttl
}

// cleanupExpired removes entries older than the TTL
func (s *PackStore) cleanupExpired() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, entry := range s.packs {
		if s.isExpired(entry) {
			delete(s.packs, id)
		}
	}
}

// cleanupRoutine runs periodically to evict expired packs
func (s *PackStore) cleanupRoutine() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.cleanupExpired()
		}
	}
}
