//go:build unit

package request

import (
	"strings"
	"sync"
	"testing"
	"time"
)

func TestNewID(t *testing.T) {
	id := NewID()
	if !strings.HasPrefix(id, "id-") {
		t.Errorf("ID %q must start with a letter prefix", id)
	}
	if strings.Contains(id[3:], "-") {
		t.Errorf("ID %q must not contain dashes after the prefix", id)
	}
	if NewID() == id {
		t.Error("consecutive IDs must differ")
	}
}

func TestInMemoryRequestStore_SingleUse(t *testing.T) {
	s := NewInMemoryRequestStore()
	if err := s.Store("id-1", time.Now().Add(time.Minute)); err != nil {
		t.Fatalf("store failed: %v", err)
	}

	if !s.Valid("id-1") {
		t.Error("first use should be valid")
	}
	if s.Valid("id-1") {
		t.Error("second use of the same ID must be rejected")
	}
	if s.Valid("id-unknown") {
		t.Error("unknown ID must be rejected")
	}
}

func TestInMemoryRequestStore_Expiry(t *testing.T) {
	s := NewInMemoryRequestStore()
	if err := s.Store("id-old", time.Now().Add(-time.Second)); err != nil {
		t.Fatalf("store failed: %v", err)
	}
	if s.Valid("id-old") {
		t.Error("expired ID must be rejected")
	}
}

func TestInMemoryRequestStore_GetAll(t *testing.T) {
	s := NewInMemoryRequestStore()
	_ = s.Store("id-live", time.Now().Add(time.Minute))
	_ = s.Store("id-dead", time.Now().Add(-time.Minute))

	ids := s.GetAll()
	if len(ids) != 1 || ids[0] != "id-live" {
		t.Errorf("GetAll = %v, want [id-live]", ids)
	}
}

func TestInMemoryRequestStore_Cleanup(t *testing.T) {
	s := NewInMemoryRequestStoreWithCleanup(10 * time.Millisecond)
	defer s.Close()

	_ = s.Store("id-dead", time.Now().Add(-time.Minute))
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		s.mu.Lock()
		_, exists := s.entries["id-dead"]
		s.mu.Unlock()
		if !exists {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Error("expired entry was not cleaned up in time")
}

func TestInMemoryRequestStore_Close(t *testing.T) {
	// A tight interval keeps the cleanup goroutine busy while Close runs,
	// which makes the race detector trip if shutdown touches shared state
	// without the lock.
	s := NewInMemoryRequestStoreWithCleanup(time.Microsecond)
	_ = s.Store("id-1", time.Now().Add(time.Minute))

	if err := s.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("second close failed: %v", err)
	}

	if !s.Valid("id-1") {
		t.Error("store should remain usable after close")
	}
}

func TestInMemoryRequestStore_Concurrent(t *testing.T) {
	s := NewInMemoryRequestStore()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				id := NewID()
				_ = s.Store(id, time.Now().Add(time.Minute))
				if !s.Valid(id) {
					t.Error("freshly stored ID should validate")
				}
			}
		}()
	}
	wg.Wait()
}
