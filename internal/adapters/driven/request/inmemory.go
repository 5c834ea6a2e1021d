// Package request provides stores for outstanding SAML AuthnRequest IDs.
// The set of live IDs is the allowed in-response-to set handed to the
// response validator.
package request

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/philiph/samlgate/internal/core/ports"
)

// NewID returns a fresh request ID. SAML IDs must begin with a letter and
// some IdPs (ADFS, Azure) are picky about the alphabet, so the UUID is
// stripped of dashes and prefixed.
func NewID() string {
	return "id-" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// InMemoryRequestStore stores pending SAML request IDs for replay protection.
// Request IDs are single-use and expire after a configured duration.
type InMemoryRequestStore struct {
	mu      sync.Mutex
	entries map[string]time.Time
	done    chan struct{}
	closed  bool
}

// NewInMemoryRequestStore creates a store WITHOUT background cleanup; expired
// entries are dropped lazily on access. For long-lived processes use
// NewInMemoryRequestStoreWithCleanup.
func NewInMemoryRequestStore() *InMemoryRequestStore {
	return &InMemoryRequestStore{
		entries: make(map[string]time.Time),
	}
}

// NewInMemoryRequestStoreWithCleanup creates a store that removes expired
// entries every cleanupInterval. Call Close() to stop the cleanup goroutine.
func NewInMemoryRequestStoreWithCleanup(cleanupInterval time.Duration) *InMemoryRequestStore {
	s := NewInMemoryRequestStore()
	s.done = make(chan struct{})
	// The goroutine keeps its own reference so Close never races with it.
	done := s.done
	go func() {
		ticker := time.NewTicker(cleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.removeExpired()
			case <-done:
				return
			}
		}
	}()
	return s
}

// Close stops the background cleanup goroutine, if any. Safe to call more
// than once.
func (s *InMemoryRequestStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.done != nil && !s.closed {
		close(s.done)
		s.closed = true
	}
	return nil
}

// Store adds a request ID with the given expiry time.
func (s *InMemoryRequestStore) Store(requestID string, expiry time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[requestID] = expiry
	return nil
}

// Valid checks if a request ID exists and is not expired.
// If valid, the ID is removed (single-use) and returns true.
// Returns false for unknown or expired IDs.
func (s *InMemoryRequestStore) Valid(requestID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	expiry, exists := s.entries[requestID]
	if !exists {
		return false
	}

	if time.Now().After(expiry) {
		delete(s.entries, requestID)
		return false
	}

	// Single-use: remove after validation
	delete(s.entries, requestID)
	return true
}

// GetAll returns all non-expired request IDs.
func (s *InMemoryRequestStore) GetAll() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	var ids []string
	for id, expiry := range s.entries {
		if now.Before(expiry) {
			ids = append(ids, id)
		}
	}
	return ids
}

func (s *InMemoryRequestStore) removeExpired() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for id, expiry := range s.entries {
		if now.After(expiry) {
			delete(s.entries, id)
		}
	}
}

// Ensure implementation satisfies the port
var _ ports.RequestStore = (*InMemoryRequestStore)(nil)
