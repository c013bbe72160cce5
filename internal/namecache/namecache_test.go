package namecache

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func countingLookup(calls *atomic.Int32, name string) LookupFunc {
	return func(bundleID string) string {
		calls.Add(1)
		return name
	}
}

func TestResolve_CachesLookups(t *testing.T) {
	var calls atomic.Int32
	r := NewResolver(WithLookup(countingLookup(&calls, "Chrome")))
	defer r.Close()

	assert.Equal(t, "Chrome", r.Resolve("com.google.Chrome"))
	assert.Equal(t, "Chrome", r.Resolve("com.google.Chrome"))
	assert.Equal(t, int32(1), calls.Load(), "second resolve served from cache")

	r.Resolve("com.apple.Safari")
	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, 2, r.Len())
}

func TestResolve_ExpiredEntryRefreshes(t *testing.T) {
	var calls atomic.Int32
	r := NewResolver(
		WithLookup(countingLookup(&calls, "Firefox")),
		WithTTL(time.Millisecond),
	)
	defer r.Close()

	r.Resolve("org.mozilla.firefox")
	time.Sleep(20 * time.Millisecond)
	r.Resolve("org.mozilla.firefox")

	assert.Equal(t, int32(2), calls.Load(), "expired entry triggers a fresh lookup")
}

func TestClear(t *testing.T) {
	var calls atomic.Int32
	r := NewResolver(WithLookup(countingLookup(&calls, "App")))
	defer r.Close()

	r.Resolve("com.example.app")
	assert.Equal(t, 1, r.Len())

	r.Clear()
	assert.Equal(t, 0, r.Len())

	r.Resolve("com.example.app")
	assert.Equal(t, int32(2), calls.Load())
}

func TestClose_Idempotent(t *testing.T) {
	r := NewResolver(WithLookup(func(string) string { return "X" }))

	r.Close()
	r.Close()

	// Resolution keeps working after Close; only expiry sweeping stops.
	assert.Equal(t, "X", r.Resolve("com.example.app"))
}

func TestOptions_RejectInvalidValues(t *testing.T) {
	r := NewResolver(WithTTL(0), WithLookup(nil))
	defer r.Close()

	assert.Equal(t, defaultTTL, r.ttl)
	assert.NotNil(t, r.lookup)
}

func TestResolve_Concurrent(t *testing.T) {
	var calls atomic.Int32
	r := NewResolver(WithLookup(countingLookup(&calls, "Shared")))
	defer r.Close()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				r.Resolve("com.example.shared")
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, "Shared", r.Resolve("com.example.shared"))
	assert.Equal(t, 1, r.Len())
}

func TestDefaultLookup(t *testing.T) {
	// The last dot component is the fallback display name.
	assert.Equal(t, "Chrome", defaultLookup("com.google.Chrome"))
	assert.Equal(t, "plainname", defaultLookup("plainname"))
	assert.Equal(t, "trailing.", defaultLookup("trailing."))
	assert.Equal(t, "", defaultLookup(""))
}

func TestLooksLikeBundleID(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"com.google.Chrome", true},
		{"com.apple.Safari.fsCachedData", true},
		{"org.mozilla.firefox", true},
		{"Chrome", false},
		{"com.foo", false},
		{"com. apple.finder", false},
		{"com/apple.finder.cache", false},
		{"", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, LooksLikeBundleID(tt.name), tt.name)
	}
}
