package benchmark

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"testing"

	"github.com/keyline-io/keyline/internal/storage/memory"
	"github.com/oklog/ulid/v2"
)

// KeyCounts defines the key counts for benchmarking.
var KeyCounts = []int{5000, 10000, 50000, 100000, 500000}

// SmallKeyCounts for quick benchmarks.
var SmallKeyCounts = []int{1000, 5000, 10000}

// benchValue is the payload stored under benchmark keys.
var benchValue = strings.Repeat("v", 64)

// benchKey returns the stable key for an index.
func benchKey(i int) string {
	return fmt.Sprintf("bench:key:%d", i)
}

// uniqueKey returns a key no other goroutine can collide on.
func uniqueKey() string {
	return "bench:unique:" + ulid.Make().String()
}

// prefillStore fills a store with count keys.
func prefillStore(ctx context.Context, store *memory.Store, count int) {
	for i := 0; i < count; i++ {
		store.Write(ctx, benchKey(i), benchValue)
	}
}

// reportMemory reports memory usage.
func reportMemory(b *testing.B, prefix string) {
	var m runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&m)
	b.ReportMetric(float64(m.Alloc)/(1024*1024), prefix+"_MB")
	b.ReportMetric(float64(m.NumGC), prefix+"_GC")
}

// runWithKeyCounts runs a benchmark function with various key counts.
func runWithKeyCounts(b *testing.B, counts []int, benchFn func(b *testing.B, count int)) {
	for _, count := range counts {
		b.Run(fmt.Sprintf("keys_%d", count), func(b *testing.B) {
			benchFn(b, count)
		})
	}
}
