package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const cleanupInterval = 10 * time.Minute

// visitor holds one client's token bucket and when it was last used
type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Store is a thread-safe set of per-key token buckets. Idle keys are
// dropped after the configured TTL.
type Store struct {
	visitors map[string]*visitor
	mutex    sync.Mutex
	limit    rate.Limit
	burst    int
	ttl      time.Duration
	now      func() time.Time
	done     chan struct{}
	once     sync.Once
}

// NewStore creates a store allowing perMinute requests per key with the given burst
func NewStore(perMinute, burst int, ttl time.Duration) *Store {
	if burst < 1 {
		burst = 1
	}
	store := &Store{
		visitors: make(map[string]*visitor),
		limit:    rate.Limit(float64(perMinute) / 60.0),
		burst:    burst,
		ttl:      ttl,
		now:      time.Now,
		done:     make(chan struct{}),
	}

	go store.cleanupLoop()

	return store
}

// Allow reports whether key may make a request now, consuming a token if so
func (s *Store) Allow(key string) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	v, exists := s.visitors[key]
	if !exists {
		v = &visitor{limiter: rate.NewLimiter(s.limit, s.burst)}
		s.visitors[key] = v
	}
	v.lastSeen = s.now()

	return v.limiter.AllowN(v.lastSeen, 1)
}

// Size returns the number of tracked keys (for debugging/monitoring)
func (s *Store) Size() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return len(s.visitors)
}

// Close stops the cleanup goroutine
func (s *Store) Close() {
	s.once.Do(func() { close(s.done) })
}

func (s *Store) cleanupLoop() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.removeIdle()
		}
	}
}

// removeIdle drops visitors not seen within the TTL
func (s *Store) removeIdle() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	cutoff := s.now().Add(-s.ttl)
	for key, v := range s.visitors {
		if v.lastSeen.Before(cutoff) {
			delete(s.visitors, key)
		}
	}
}
