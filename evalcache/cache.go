// Package evalcache memoizes (formatter, style, source) evaluations so the
// search engine never pays for the same subprocess invocation twice (spec
// §4.3).
package evalcache

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/golang/groupcache/lru"
	"github.com/vmihailenco/msgpack/v5"
	"golang.org/x/sync/singleflight"

	"github.com/styleprobe/styleprobe/diffmetric"
	"github.com/styleprobe/styleprobe/stats"
)

// Key identifies one evaluation. Cache keys never collide across
// formatters: the formatter's fingerprint is always part of the key.
type Key struct {
	FormatterFingerprint string
	StyleFingerprint     string
	SourceFingerprint    string
}

func (k Key) String() string {
	return k.FormatterFingerprint + "\x00" + k.StyleFingerprint + "\x00" + k.SourceFingerprint
}

// Entry is what GetOrCompute returns: the distance summary is always
// present; Bytes is populated only while the reformatted output still fits
// the cache's byte budget, and is nil once evicted.
type Entry struct {
	Digest string
	Result diffmetric.Result
	Bytes  []byte
}

// summary is the part of an Entry kept forever: cheap, and the search loop
// consults it far more often than it needs the actual reformatted bytes.
type summary struct {
	Digest string            `msgpack:"digest"`
	Result diffmetric.Result `msgpack:"result"`
}

// ComputeFunc performs the actual (expensive) evaluation for a cache miss:
// run the formatter, run the diff metric, return the resulting Entry.
type ComputeFunc func(ctx context.Context) (Entry, error)

// Cache is a process-local, thread-safe memoization layer with
// at-most-one-concurrent-evaluation per key and LRU eviction of reformatted
// bytes bounded by total byte footprint. Distance summaries are never
// evicted by the byte budget: they're retained for the lifetime of the
// Cache even after their bytes are dropped.
type Cache struct {
	mu sync.Mutex

	summaries map[string]summary
	bytes     *lru.Cache // key string -> []byte, footprint-bounded
	footprint int64
	maxFootprint int64

	group singleflight.Group
	log   *log.Logger
	stats *stats.Stats

	disabled bool
}

// SetStats attaches run counters: every cache hit increments stats.CacheHits.
// A nil receiver-set Stats (the default) makes this a no-op.
func (c *Cache) SetStats(s *stats.Stats) {
	c.stats = s
}

// SetDisabled makes the cache a pure pass-through: every GetOrCompute call
// runs compute fresh, with no lookup, no storing of the result, and no
// singleflight coalescing of concurrent callers for the same key. This is
// "ignore the evaluation cache entirely", not a zero-size footprint budget,
// which would still serve (and keep growing) distance summaries forever.
func (c *Cache) SetDisabled(disabled bool) {
	c.disabled = disabled
}

// New creates a Cache that evicts least-recently-used reformatted byte
// blobs once their total serialized size exceeds maxFootprintBytes.
// maxFootprintBytes <= 0 means bytes are never evicted by size.
func New(maxFootprintBytes int64) *Cache {
	c := &Cache{
		summaries:    make(map[string]summary),
		maxFootprint: maxFootprintBytes,
		log:          log.WithPrefix("evalcache"),
	}

	c.bytes = &lru.Cache{
		OnEvicted: func(key lru.Key, value any) {
			if blob, ok := value.([]byte); ok {
				c.footprint -= blobSize(blob)
				c.log.Debugf("evicted bytes for %v (footprint now %d bytes)", key, c.footprint)
			}
		},
	}

	return c
}

func blobSize(b []byte) int64 {
	data, err := msgpack.Marshal(b)
	if err != nil {
		return int64(len(b))
	}

	return int64(len(data))
}

// GetOrCompute returns the cached Entry for key, computing it via compute on
// a miss. Concurrent callers for the same key share one in-flight
// computation and receive the identical result (or error).
func (c *Cache) GetOrCompute(ctx context.Context, key Key, compute ComputeFunc) (Entry, error) {
	if c.disabled {
		return compute(ctx)
	}

	if entry, ok := c.lookup(key); ok {
		return entry, nil
	}

	result, err, _ := c.group.Do(key.String(), func() (any, error) {
		if entry, ok := c.lookup(key); ok {
			return entry, nil
		}

		entry, err := compute(ctx)
		if err != nil {
			return Entry{}, err
		}

		c.store(key, entry)

		return entry, nil
	})
	if err != nil {
		return Entry{}, err
	}

	entry, ok := result.(Entry)
	if !ok {
		return Entry{}, fmt.Errorf("evalcache: unexpected result type %T", result)
	}

	return entry, nil
}

func (c *Cache) lookup(key Key) (Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok := c.summaries[key.String()]
	if !ok {
		return Entry{}, false
	}

	entry := Entry{Digest: s.Digest, Result: s.Result}

	if blob, ok := c.bytes.Get(lru.Key(key.String())); ok {
		entry.Bytes, _ = blob.([]byte)
	}

	if c.stats != nil {
		c.stats.Add(stats.CacheHits, 1)
	}

	return entry, true
}

func (c *Cache) store(key Key, entry Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	k := key.String()
	c.summaries[k] = summary{Digest: entry.Digest, Result: entry.Result}

	if len(entry.Bytes) == 0 {
		return
	}

	c.bytes.Add(lru.Key(k), entry.Bytes)
	c.footprint += blobSize(entry.Bytes)

	for c.maxFootprint > 0 && c.footprint > c.maxFootprint && c.bytes.Len() > 0 {
		c.bytes.RemoveOldest()
	}
}

// Len reports the number of distinct evaluations summarized (for
// tests/metrics). This count is never reduced by byte eviction.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.summaries)
}

// Footprint reports the current total serialized footprint of cached
// reformatted bytes, in bytes.
func (c *Cache) Footprint() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.footprint
}

// BytesLen reports how many reformatted byte blobs are currently retained
// (distinct from Len, which counts all retained distance summaries).
func (c *Cache) BytesLen() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.bytes.Len()
}
