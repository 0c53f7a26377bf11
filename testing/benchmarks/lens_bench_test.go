package benchmarks

import (
	"context"
	"fmt"
	"testing"

	"github.com/zoobzio/lens"
	"github.com/zoobzio/lens/cache"
	lenstest "github.com/zoobzio/lens/testing"
)

func BenchmarkParams_Key(b *testing.B) {
	p := lens.Query{Search: "spider", Limit: lens.LimitMid, Page: 3}.Params("0123456789abcdef")

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = p.Key()
	}
}

func BenchmarkCache_Get(b *testing.B) {
	body := lenstest.EnvelopeJSON(3, 0, 3, lenstest.Items("a", "b", "c"))
	lru, err := cache.NewLRU[[]byte](1024)
	if err != nil {
		b.Fatal(err)
	}

	stores := []struct {
		name  string
		store cache.Cache[[]byte]
	}{
		{"memory", cache.NewMemory[[]byte]()},
		{"lru", lru},
	}

	ctx := context.Background()
	for _, s := range stores {
		for i := 0; i < 512; i++ {
			_ = s.store.Set(ctx, fmt.Sprintf("key-%d", i), body)
		}
		b.Run(s.name, func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				if _, err := s.store.Get(ctx, fmt.Sprintf("key-%d", i%512)); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkSubject_Fanout(b *testing.B) {
	for _, subscribers := range []int{1, 10, 100} {
		b.Run(fmt.Sprintf("subscribers=%d", subscribers), func(b *testing.B) {
			s := lens.NewSubject(0)
			for i := 0; i < subscribers; i++ {
				stop := s.Subscribe(func(int) {})
				defer stop()
			}
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				s.Set(i)
			}
		})
	}
}

func BenchmarkCombine_TotalPages(b *testing.B) {
	total := lens.NewSubject(0)
	limit := lens.NewSubject(lens.LimitMid)
	pages := lens.Combine[int, int, int](total, limit, func(t, l int) int { return (t + l - 1) / l })
	stop := pages.Subscribe(func(int) {})
	defer stop()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		total.Set(i)
	}
}

// BenchmarkCoordinator_CacheHit measures a search round trip answered from
// the cache.
func BenchmarkCoordinator_CacheHit(b *testing.B) {
	src := &lenstest.CountingSource{}
	c := lens.New[lenstest.Item](src, "k").Debounce(0)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := c.Start(ctx); err != nil {
		b.Fatal(err)
	}

	done := make(chan struct{}, 1)
	stop := c.Results().Subscribe(func(lens.Result[lenstest.Item]) {
		select {
		case done <- struct{}{}:
		default:
		}
	})
	defer stop()
	<-done

	terms := []string{"a", "b"}
	for _, term := range terms {
		c.Search(term)
		<-done
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Search(terms[i%2])
		<-done
	}
	b.StopTimer()

	if src.Calls() != 3 {
		b.Fatalf("expected 3 upstream calls, got %d", src.Calls())
	}
}
