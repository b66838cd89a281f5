package mem

import (
	"sync"
	"time"
)

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// TTLStore is an in-memory map whose entries expire after a TTL. Reads
// through Touch extend the entry, which gives idle-timeout semantics.
type TTLStore[V any] struct {
	mu      sync.RWMutex
	data    map[string]entry[V]
	now     func() time.Time
	onEvict func(key string, value V)
}

func NewTTLStore[V any]() *TTLStore[V] {
	return &TTLStore[V]{
		data: make(map[string]entry[V]),
		now:  time.Now,
	}
}

// OnEvict registers a callback run, outside the lock, for every entry that
// expires or is deleted.
func (s *TTLStore[V]) OnEvict(fn func(key string, value V)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onEvict = fn
}

func (s *TTLStore[V]) Set(key string, value V, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = entry[V]{
		value:     value,
		expiresAt: s.now().Add(ttl),
	}
}

// SetIfAbsent stores value unless a live entry exists, and returns the entry
// that ends up stored.
func (s *TTLStore[V]) SetIfAbsent(key string, value V, ttl time.Duration) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.data[key]; ok && !s.now().After(e.expiresAt) {
		return e.value, false
	}
	s.data[key] = entry[V]{value: value, expiresAt: s.now().Add(ttl)}
	return value, true
}

func (s *TTLStore[V]) Peek(key string) (V, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.data[key]
	if !ok || s.now().After(e.expiresAt) {
		var zero V
		return zero, false
	}
	return e.value, true
}

// Touch returns a live value and pushes its expiry ttl into the future.
func (s *TTLStore[V]) Touch(key string, ttl time.Duration) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.data[key]
	if !ok || s.now().After(e.expiresAt) {
		var zero V
		return zero, false
	}
	e.expiresAt = s.now().Add(ttl)
	s.data[key] = e
	return e.value, true
}

// Consume returns a live value and removes it (single-use).
func (s *TTLStore[V]) Consume(key string) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var zero V
	e, ok := s.data[key]
	if !ok {
		return zero, false
	}
	delete(s.data, key)
	if s.now().After(e.expiresAt) {
		return zero, false
	}
	return e.value, true
}

func (s *TTLStore[V]) Delete(key string) {
	s.mu.Lock()
	e, ok := s.data[key]
	delete(s.data, key)
	fn := s.onEvict
	s.mu.Unlock()
	if ok && fn != nil {
		fn(key, e.value)
	}
}

// Sweep drops expired entries and returns how many were removed.
func (s *TTLStore[V]) Sweep() int {
	s.mu.Lock()
	now := s.now()
	type evicted struct {
		key   string
		value V
	}
	var gone []evicted
	for k, e := range s.data {
		if now.After(e.expiresAt) {
			gone = append(gone, evicted{k, e.value})
			delete(s.data, k)
		}
	}
	fn := s.onEvict
	s.mu.Unlock()

	if fn != nil {
		for _, g := range gone {
			fn(g.key, g.value)
		}
	}
	return len(gone)
}

func (s *TTLStore[V]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

// Keys lists every stored key, live or not yet swept.
func (s *TTLStore[V]) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	return keys
}
