package ratelimit

import (
	"sync"
	"testing"
	"time"
)

func TestStore_Allow(t *testing.T) {
	store := NewStore(60, 2, time.Hour)
	defer store.Close()

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	if !store.Allow("1.1.1.1") || !store.Allow("1.1.1.1") {
		t.Fatal("Allow() = false within burst, want true")
	}
	if store.Allow("1.1.1.1") {
		t.Error("Allow() = true after burst exhausted, want false")
	}

	// Keys are independent
	if !store.Allow("2.2.2.2") {
		t.Error("Allow() for a second key = false, want true")
	}

	// One token refills per second at 60/min
	now = now.Add(time.Second)
	if !store.Allow("1.1.1.1") {
		t.Error("Allow() after refill = false, want true")
	}
}

func TestStore_RemoveIdle(t *testing.T) {
	store := NewStore(60, 1, time.Minute)
	defer store.Close()

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	store.Allow("old")
	now = now.Add(2 * time.Minute)
	store.Allow("fresh")

	store.removeIdle()

	if store.Size() != 1 {
		t.Fatalf("Size() = %d, want 1", store.Size())
	}
	if _, ok := store.visitors["fresh"]; !ok {
		t.Error("fresh visitor was removed")
	}
}

func TestStore_ConcurrentAccess(t *testing.T) {
	store := NewStore(6000, 100, time.Hour)
	defer store.Close()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			store.Allow("shared")
		}()
	}
	wg.Wait()

	if store.Size() != 1 {
		t.Errorf("Size() = %d, want 1", store.Size())
	}
}

func TestStore_CloseIsIdempotent(t *testing.T) {
	store := NewStore(60, 1, time.Minute)
	store.Close()
	store.Close()
}
