// Package cache provides the time-bounded memoization layer shared by every
// aggregator in the hub. Entries expire by TTL only; there is no size or LRU
// eviction because entries are small and short-lived.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Default TTLs per cached concern.
const (
	GeocodeTTL    = time.Hour
	ExtractionTTL = time.Hour
	SocialTTL     = 30 * time.Minute
	OfficialTTL   = time.Hour
)

// Store is the get/set/delete contract consumed by the aggregators.
// Get fails soft: missing, expired, and storage-error entries all read as
// absent, never as an error.
type Store interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration)
	Delete(key string)
}

type entry struct {
	value     []byte
	expiresAt time.Time
}

// Memory is an in-process TTL store. Reads and writes of a single entry are
// atomic under the mutex; expired entries are removed eagerly when observed.
type Memory struct {
	clock clockwork.Clock

	mu      sync.RWMutex
	entries map[string]entry
}

// NewMemory creates an empty store using the real clock.
func NewMemory() *Memory {
	return NewMemoryWithClock(clockwork.NewRealClock())
}

// NewMemoryWithClock creates an empty store with an injected time source so
// tests can advance expiry deterministically.
func NewMemoryWithClock(clock clockwork.Clock) *Memory {
	return &Memory{
		clock:   clock,
		entries: make(map[string]entry),
	}
}

// Get returns the value stored under key, or absent if the key is unknown or
// its TTL has passed. Observing an expired entry deletes it.
func (m *Memory) Get(key string) ([]byte, bool) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return nil, false
	}

	if !m.clock.Now().Before(e.expiresAt) {
		m.mu.Lock()
		// Re-check under the write lock: a concurrent Set may have refreshed it.
		if cur, ok := m.entries[key]; ok && !m.clock.Now().Before(cur.expiresAt) {
			delete(m.entries, key)
		}
		m.mu.Unlock()
		return nil, false
	}

	return e.value, true
}

// Set upserts key with the given TTL measured from the moment of write.
// Non-positive TTLs fall back to one hour.
func (m *Memory) Set(key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		ttl = time.Hour
	}
	m.mu.Lock()
	m.entries[key] = entry{value: value, expiresAt: m.clock.Now().Add(ttl)}
	m.mu.Unlock()
}

// Delete removes key if present.
func (m *Memory) Delete(key string) {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
}

// Len reports the number of live plus not-yet-observed dead entries.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Key builds a deterministic, collision-resistant cache key from a namespace
// and the parts of a logical query. Parts are length-prefixed before hashing
// so ("ab","c") and ("a","bc") never collide.
func Key(namespace string, parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		fmt.Fprintf(h, "%d:", len(p))
		h.Write([]byte(p))
	}
	return namespace + ":" + hex.EncodeToString(h.Sum(nil))
}

// CanonicalTags lower-cases, trims, de-duplicates, and sorts a tag set so
// requests differing only in tag order or duplication share a cache entry.
func CanonicalTags(tags []string) string {
	seen := make(map[string]struct{}, len(tags))
	canon := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		canon = append(canon, t)
	}
	sort.Strings(canon)
	return strings.Join(canon, ",")
}

// GetJSON reads key and unmarshals it into v. Any unmarshal failure reads as
// a miss so a stale encoding can never fail a request.
func GetJSON(s Store, key string, v any) bool {
	data, ok := s.Get(key)
	if !ok {
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		s.Delete(key)
		return false
	}
	return true
}

// SetJSON marshals v and stores it under key. Marshal failures are dropped;
// callers treat the cache as an optimization, never a dependency.
func SetJSON(s Store, key string, v any, ttl time.Duration) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	s.Set(key, data, ttl)
}
