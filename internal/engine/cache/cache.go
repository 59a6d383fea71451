// Package cache implements the shared TTL store used by every pipeline
// stage. It is a direct generalization of mailvetter's original
// internal/cache.Store: the same map-plus-mutex shape, but parameterized
// by namespace so the resolver, disposable classifier, typo corrector,
// health probe and bulk scheduler each get an isolated keyspace from one
// implementation instead of five hand-rolled ones.
package cache

import (
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Namespace identifies which stage owns a cache entry.
type Namespace string

const (
	NamespaceDomain     Namespace = "domain"
	NamespaceMX         Namespace = "mx"
	NamespaceHealth     Namespace = "health"
	NamespaceDisposable Namespace = "disposable"
	NamespaceTypo       Namespace = "typo"
	NamespaceBulk       Namespace = "bulk"
)

// Default TTLs per spec.md §3.
const (
	TTLDomain     = 5 * time.Minute
	TTLDisposable = 24 * time.Hour
	TTLTypo       = 1 * time.Hour
	TTLBulk       = 30 * time.Minute
)

type item struct {
	value   interface{}
	expires int64
}

// Store is a thread-safe, namespace-partitioned TTL cache. Entries are
// never mutated in place: a refresh replaces the item wholesale.
type Store struct {
	mu    sync.RWMutex
	items map[string]item
	sf    singleflight.Group
}

// New creates an empty cache.
func New() *Store {
	return &Store{items: make(map[string]item)}
}

func key(ns Namespace, id string) string {
	return string(ns) + ":" + id
}

// Get retrieves a value for (namespace, id). Returns false if absent or
// expired.
func (s *Store) Get(ns Namespace, id string) (interface{}, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	it, found := s.items[key(ns, id)]
	if !found {
		return nil, false
	}
	if time.Now().UnixNano() > it.expires {
		return nil, false
	}
	return it.value, true
}

// Set stores a value for (namespace, id) with the given TTL.
func (s *Store) Set(ns Namespace, id string, value interface{}, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[key(ns, id)] = item{
		value:   value,
		expires: time.Now().Add(ttl).UnixNano(),
	}
}

// GetOrLoad returns the cached value for (namespace, id), or calls load
// to populate it. Concurrent GetOrLoad calls for the same key are
// deduplicated via singleflight so only one load runs at a time, matching
// the dedup behavior optimode-emailkit's dnscache.Cache gives DNS lookups.
func (s *Store) GetOrLoad(ns Namespace, id string, ttl time.Duration, load func() (interface{}, error)) (interface{}, error) {
	if v, ok := s.Get(ns, id); ok {
		return v, nil
	}

	v, err, _ := s.sf.Do(key(ns, id), func() (interface{}, error) {
		if cached, ok := s.Get(ns, id); ok {
			return cached, nil
		}
		val, err := load()
		if err != nil {
			return nil, err
		}
		s.Set(ns, id, val, ttl)
		return val, nil
	})
	return v, err
}

// Clear removes every entry. Primarily useful for tests.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = make(map[string]item)
}

// Cleanup removes expired entries. Intended to run periodically in a
// background goroutine, the way mailvetter's cmd/api.main starts one for
// the original single-namespace cache.
func (s *Store) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UnixNano()
	for k, v := range s.items {
		if now > v.expires {
			delete(s.items, k)
		}
	}
}

// StartCleanup launches a goroutine that calls Cleanup on interval until
// done is closed.
func StartCleanup(done <-chan struct{}, interval time.Duration, s *Store) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.Cleanup()
			case <-done:
				return
			}
		}
	}()
}
