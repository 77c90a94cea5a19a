package benchmark

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/keyline-io/keyline/internal/storage/memory"
)

// prefillExpired fills a store with keys whose deadline already
// passed, alongside live ones.
func prefillExpired(ctx context.Context, store *memory.Store, expired, live int) {
	for i := 0; i < expired; i++ {
		store.WriteWithExpiry(ctx, fmt.Sprintf("stale:%d", i), benchValue, -time.Second)
	}
	for i := 0; i < live; i++ {
		store.Write(ctx, benchKey(i), benchValue)
	}
}

// BenchmarkExpiredCount benchmarks the dry-run sweep at various mixes
// of stale and live keys.
func BenchmarkExpiredCount(b *testing.B) {
	mixes := []struct {
		name    string
		expired int
		live    int
	}{
		{"all_live", 0, 10000},
		{"half_stale", 5000, 5000},
		{"all_stale", 10000, 0},
	}

	for _, mix := range mixes {
		b.Run(mix.name, func(b *testing.B) {
			ctx := context.Background()
			store := memory.New()
			prefillExpired(ctx, store, mix.expired, mix.live)

			b.ResetTimer()
			b.ReportAllocs()

			for i := 0; i < b.N; i++ {
				if got := store.ExpiredCount(); got != mix.expired {
					b.Fatalf("ExpiredCount = %d, want %d", got, mix.expired)
				}
			}
		})
	}
}

// BenchmarkPurgeExpired benchmarks the evicting sweep. Each iteration
// rebuilds the stale population, so only the purge itself is timed.
func BenchmarkPurgeExpired(b *testing.B) {
	ctx := context.Background()
	store := memory.New()
	prefillStore(ctx, store, 5000)

	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		b.StopTimer()
		for j := 0; j < 1000; j++ {
			store.WriteWithExpiry(ctx, fmt.Sprintf("stale:%d", j), benchValue, -time.Second)
		}
		b.StartTimer()

		if got := store.PurgeExpired(ctx); got != 1000 {
			b.Fatalf("PurgeExpired = %d, want 1000", got)
		}
	}
}

// BenchmarkLockRegistryChurn benchmarks the write-expire-read cycle
// that creates and drops per-key locks.
func BenchmarkLockRegistryChurn(b *testing.B) {
	ctx := context.Background()
	store := memory.New()

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		key := benchKey(i)
		store.WriteWithExpiry(ctx, key, benchValue, -time.Second)
		store.Read(ctx, key)
	}

	b.StopTimer()
	if locks := store.LockCount(); locks != 0 {
		b.Fatalf("LockCount = %d after churn, want 0", locks)
	}
}
