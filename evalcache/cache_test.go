package evalcache_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/styleprobe/styleprobe/diffmetric"
	"github.com/styleprobe/styleprobe/evalcache"
)

func testKey(suffix string) evalcache.Key {
	return evalcache.Key{
		FormatterFingerprint: "fmt-" + suffix,
		StyleFingerprint:     "style-" + suffix,
		SourceFingerprint:    "source-" + suffix,
	}
}

func TestGetOrComputeCachesOnSecondCall(t *testing.T) {
	as := require.New(t)

	cache := evalcache.New(1 << 20)

	var calls int32

	compute := func(context.Context) (evalcache.Entry, error) {
		atomic.AddInt32(&calls, 1)
		return evalcache.Entry{Digest: "abc", Result: diffmetric.Result{Distance: 3}, Bytes: []byte("formatted")}, nil
	}

	ctx := context.Background()
	key := testKey("a")

	first, err := cache.GetOrCompute(ctx, key, compute)
	as.NoError(err)
	as.Equal(int64(3), first.Result.Distance)

	second, err := cache.GetOrCompute(ctx, key, compute)
	as.NoError(err)
	as.Equal(first, second)

	as.Equal(int32(1), atomic.LoadInt32(&calls), "compute must run exactly once for a repeated key")
}

func TestGetOrComputeDedupesConcurrentCallsForSameKey(t *testing.T) {
	as := require.New(t)

	cache := evalcache.New(1 << 20)

	var calls int32

	release := make(chan struct{})

	compute := func(context.Context) (evalcache.Entry, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return evalcache.Entry{Digest: "shared", Result: diffmetric.Result{Distance: 1}}, nil
	}

	ctx := context.Background()
	key := testKey("concurrent")

	const goroutines = 8

	var wg sync.WaitGroup

	wg.Add(goroutines)

	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()

			entry, err := cache.GetOrCompute(ctx, key, compute)
			as.NoError(err)
			as.Equal("shared", entry.Digest)
		}()
	}

	close(release)
	wg.Wait()

	as.Equal(int32(1), atomic.LoadInt32(&calls), "at most one concurrent evaluation per key")
}

func TestDistinctKeysNeverCollideAcrossFormatters(t *testing.T) {
	as := require.New(t)

	cache := evalcache.New(1 << 20)
	ctx := context.Background()

	keyA := evalcache.Key{FormatterFingerprint: "clang-format", StyleFingerprint: "same-style", SourceFingerprint: "same-source"}
	keyB := evalcache.Key{FormatterFingerprint: "prettier", StyleFingerprint: "same-style", SourceFingerprint: "same-source"}

	_, err := cache.GetOrCompute(ctx, keyA, func(context.Context) (evalcache.Entry, error) {
		return evalcache.Entry{Digest: "a", Result: diffmetric.Result{Distance: 10}}, nil
	})
	as.NoError(err)

	_, err = cache.GetOrCompute(ctx, keyB, func(context.Context) (evalcache.Entry, error) {
		return evalcache.Entry{Digest: "b", Result: diffmetric.Result{Distance: 20}}, nil
	})
	as.NoError(err)

	as.Equal(2, cache.Len(), "distinct formatter fingerprints must not share a cache entry")
}

func TestComputeErrorIsNotCached(t *testing.T) {
	as := require.New(t)

	cache := evalcache.New(1 << 20)
	ctx := context.Background()
	key := testKey("failing")

	wantErr := diffmetric.ErrMetricUnavailable

	_, err := cache.GetOrCompute(ctx, key, func(context.Context) (evalcache.Entry, error) {
		return evalcache.Entry{}, wantErr
	})
	as.ErrorIs(err, wantErr)
	as.Equal(0, cache.Len(), "a failed computation must not populate the cache")

	var secondCallRan bool

	_, err = cache.GetOrCompute(ctx, key, func(context.Context) (evalcache.Entry, error) {
		secondCallRan = true
		return evalcache.Entry{Digest: "ok", Result: diffmetric.Result{Distance: 0}}, nil
	})
	as.NoError(err)
	as.True(secondCallRan, "a retry after a failed compute must run again, not reuse the failure")
}

func TestDisabledCacheRecomputesEveryCall(t *testing.T) {
	as := require.New(t)

	cache := evalcache.New(1 << 20)
	cache.SetDisabled(true)

	var calls int32

	compute := func(context.Context) (evalcache.Entry, error) {
		atomic.AddInt32(&calls, 1)
		return evalcache.Entry{Digest: "abc", Result: diffmetric.Result{Distance: 3}}, nil
	}

	ctx := context.Background()
	key := testKey("disabled")

	_, err := cache.GetOrCompute(ctx, key, compute)
	as.NoError(err)

	_, err = cache.GetOrCompute(ctx, key, compute)
	as.NoError(err)

	as.Equal(int32(2), atomic.LoadInt32(&calls), "a disabled cache must never serve a repeated key from memory")
	as.Equal(0, cache.Len(), "a disabled cache must not retain any distance summaries")
}

func TestByteFootprintEvictionRetainsDistanceSummaries(t *testing.T) {
	as := require.New(t)

	// Smaller than one serialized 16-byte blob (msgpack adds a 2-byte
	// header), so each stored blob is evicted as soon as it is added.
	cache := evalcache.New(16)
	ctx := context.Background()

	keyA := testKey("evict-a")
	keyB := testKey("evict-b")

	_, err := cache.GetOrCompute(ctx, keyA, func(context.Context) (evalcache.Entry, error) {
		return evalcache.Entry{Digest: "a", Result: diffmetric.Result{Distance: 5}, Bytes: []byte("0123456789abcdef")}, nil
	})
	as.NoError(err)

	_, err = cache.GetOrCompute(ctx, keyB, func(context.Context) (evalcache.Entry, error) {
		return evalcache.Entry{Digest: "b", Result: diffmetric.Result{Distance: 9}, Bytes: []byte("fedcba9876543210")}, nil
	})
	as.NoError(err)

	as.Equal(2, cache.Len(), "both distance summaries must survive byte eviction")
	as.LessOrEqual(cache.BytesLen(), 1, "the byte budget must have evicted at least one blob")

	// GetOrCompute must not re-run the (now byte-less) computation for keyA.
	var recomputed bool

	entry, err := cache.GetOrCompute(ctx, keyA, func(context.Context) (evalcache.Entry, error) {
		recomputed = true
		return evalcache.Entry{}, nil
	})
	as.NoError(err)
	as.False(recomputed, "the distance summary for keyA must still be served from cache")
	as.Equal(int64(5), entry.Result.Distance)
}
