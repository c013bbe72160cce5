// Package namecache resolves bundle identifiers to display names with a
// TTL cache, so repeated scans of the same cache folders do not repeat
// filesystem probes.
package namecache

import (
	"os"
	"strings"
	"sync"
	"time"
)

const (
	// defaultTTL is how long a resolved name stays fresh.
	defaultTTL = 15 * time.Minute
	// cleanupInterval is how often expired entries are swept.
	cleanupInterval = 5 * time.Minute
)

// LookupFunc resolves a bundle identifier to a display name.
type LookupFunc func(bundleID string) string

type cacheEntry struct {
	value     string
	expiresAt time.Time
}

// Resolver caches bundle-ID to display-name lookups. Safe for
// concurrent use.
type Resolver struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	ttl     time.Duration
	lookup  LookupFunc
	stopCh  chan struct{}
	once    sync.Once
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithTTL overrides the entry lifetime.
func WithTTL(ttl time.Duration) Option {
	return func(r *Resolver) {
		if ttl > 0 {
			r.ttl = ttl
		}
	}
}

// WithLookup replaces the name lookup, mainly for tests.
func WithLookup(fn LookupFunc) Option {
	return func(r *Resolver) {
		if fn != nil {
			r.lookup = fn
		}
	}
}

// NewResolver creates a Resolver and starts its cleanup goroutine.
// Call Close when done.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		entries: make(map[string]cacheEntry),
		ttl:     defaultTTL,
		lookup:  defaultLookup,
		stopCh:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}

	go r.cleanupLoop()
	return r
}

// Resolve returns the display name for a bundle identifier, consulting
// the cache first.
func (r *Resolver) Resolve(bundleID string) string {
	r.mu.RLock()
	entry, ok := r.entries[bundleID]
	r.mu.RUnlock()
	if ok && time.Now().Before(entry.expiresAt) {
		return entry.value
	}

	name := r.lookup(bundleID)

	r.mu.Lock()
	r.entries[bundleID] = cacheEntry{
		value:     name,
		expiresAt: time.Now().Add(r.ttl),
	}
	r.mu.Unlock()

	return name
}

// Len returns the number of cached entries, expired ones included.
func (r *Resolver) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Clear drops all cached entries.
func (r *Resolver) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = make(map[string]cacheEntry)
}

// Close stops the cleanup goroutine. Resolve keeps working after Close;
// only expiry sweeping stops.
func (r *Resolver) Close() {
	r.once.Do(func() { close(r.stopCh) })
}

func (r *Resolver) cleanupLoop() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.removeExpired()
		case <-r.stopCh:
			return
		}
	}
}

func (r *Resolver) removeExpired() {
	now := time.Now()
	r.mu.Lock()
	defer r.mu.Unlock()
	for key, entry := range r.entries {
		if now.After(entry.expiresAt) {
			delete(r.entries, key)
		}
	}
}

// defaultLookup derives a display name from the identifier's last dot
// component ("com.google.Chrome" → "Chrome"), preferring the installed
// app bundle's capitalization when one exists.
func defaultLookup(bundleID string) string {
	name := bundleID
	if idx := strings.LastIndex(bundleID, "."); idx >= 0 && idx < len(bundleID)-1 {
		name = bundleID[idx+1:]
	}
	if name == "" {
		return bundleID
	}

	if _, err := os.Stat("/Applications/" + name + ".app"); err == nil {
		return name
	}

	// Try title case for all-lowercase segments ("firefox" → "Firefox").
	titled := strings.ToUpper(name[:1]) + name[1:]
	if _, err := os.Stat("/Applications/" + titled + ".app"); err == nil {
		return titled
	}

	return name
}

// LooksLikeBundleID reports whether a directory name resembles a
// reverse-DNS bundle identifier (at least two dots, no spaces).
func LooksLikeBundleID(name string) bool {
	if strings.ContainsAny(name, " /") {
		return false
	}
	return strings.Count(name, ".") >= 2
}
