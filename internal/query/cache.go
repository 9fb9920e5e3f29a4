// Package query implements the keyed cache sitting between the UI and
// the API client.
package query

import (
	"context"
	"strings"
	"sync"
	"time"
)

// keySeparator joins key parts. A unit separator keeps route names and
// parameter values from colliding.
const keySeparator = "\x1f"

// Key builds a cache key from a logical route name and its parameters.
func Key(parts ...string) string {
	return strings.Join(parts, keySeparator)
}

// Config tunes a Cache.
type Config struct {
	// StaleTime is how long a cached value is served without refetching.
	StaleTime time.Duration
	// GCTime is how long an unexpired value is kept at all.
	GCTime time.Duration
	// OnError observes every fetch failure. It is the single bridge
	// from query errors to user-facing notifications.
	OnError func(error)
}

type entry struct {
	value     any
	fetchedAt time.Time
}

// Cache is a stale-while-valid cache over fetch functions, keyed by
// route and parameters. Failures are never cached; every one is passed
// to the configured error hook and returned to the caller.
type Cache struct {
	config  Config
	mutex   sync.Mutex
	entries map[string]entry
	now     func() time.Time
}

// NewCache creates a Cache.
func NewCache(config Config) *Cache {
	return &Cache{
		config:  config,
		entries: map[string]entry{},
		now:     time.Now,
	}
}

// Invalidate drops every entry whose key starts with the given prefix,
// forcing the next Fetch to go to the network. An empty prefix drops
// everything.
func (cache *Cache) Invalidate(prefix string) {
	cache.mutex.Lock()
	defer cache.mutex.Unlock()

	for key := range cache.entries {
		if strings.HasPrefix(key, prefix) {
			delete(cache.entries, key)
		}
	}
}

// Len returns the number of live entries, collecting expired ones first.
func (cache *Cache) Len() int {
	cache.mutex.Lock()
	defer cache.mutex.Unlock()

	cache.collect()

	return len(cache.entries)
}

func (cache *Cache) lookup(key string) (any, bool) {
	cache.mutex.Lock()
	defer cache.mutex.Unlock()

	cache.collect()

	cached, found := cache.entries[key]

	if !found {
		return nil, false
	}

	if cache.now().Sub(cached.fetchedAt) >= cache.config.StaleTime {
		return nil, false
	}

	return cached.value, true
}

func (cache *Cache) settle(key string, value any) {
	cache.mutex.Lock()
	defer cache.mutex.Unlock()

	cache.entries[key] = entry{value: value, fetchedAt: cache.now()}
}

// collect drops entries older than GCTime. Callers hold the mutex.
func (cache *Cache) collect() {
	for key, cached := range cache.entries {
		if cache.now().Sub(cached.fetchedAt) >= cache.config.GCTime {
			delete(cache.entries, key)
		}
	}
}

func (cache *Cache) reportError(err error) {
	if cache.config.OnError != nil {
		cache.config.OnError(err)
	}
}

// Fetch returns the cached value for key while it is fresh, and runs
// fetch otherwise. Successful results are cached; failures are reported
// to the error hook and returned, with cancellation passed through
// untouched.
func Fetch[T any](
	ctx context.Context,
	cache *Cache,
	key string,
	fetch func(ctx context.Context) (T, error),
) (T, error) {
	if value, found := cache.lookup(key); found {
		return value.(T), nil
	}

	value, err := fetch(ctx)

	if err != nil {
		cache.reportError(err)

		return value, err
	}

	cache.settle(key, value)

	return value, nil
}
