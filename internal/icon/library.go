package icon

import (
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/stardust-xr/protostar/internal/config"
	"github.com/stardust-xr/protostar/internal/entry"
)

// Library is the front door for icon lookups: it resolves candidates,
// materializes the winner through the disk cache, and memoizes the result in
// an LRU keyed by icon name and size.
type Library struct {
	resolver *Resolver
	cache    *Cache
	memo     *lru.Cache[string, Candidate]
	size     int
	prefer3D bool
	hits     int64
	misses   int64
}

func NewLibrary(cfg *config.Config) (*Library, error) {
	maxSize := cfg.Icons.MemoryCacheSize
	if maxSize <= 0 {
		maxSize = 200
	}

	memo, err := lru.New[string, Candidate](maxSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create icon memo cache: %w", err)
	}

	return &Library{
		resolver: NewResolver(cfg),
		cache:    NewCache(cfg),
		memo:     memo,
		size:     cfg.Icons.PreferredSize,
		prefer3D: cfg.Icons.Prefer3D,
	}, nil
}

// Get returns the resolved, renderable icon for an entry. The second return
// is false on a resolution miss or a materialization failure; the caller is
// expected to fall back to its default icon.
func (l *Library) Get(e entry.Entry) (Candidate, bool) {
	if e.Icon == "" {
		return Candidate{}, false
	}

	key := fmt.Sprintf("%s@%d", e.Icon, l.size)
	if cand, ok := l.memo.Get(key); ok {
		atomic.AddInt64(&l.hits, 1)
		return cand, true
	}
	atomic.AddInt64(&l.misses, 1)

	candidates := l.resolver.Resolve(e, l.size)
	selected, ok := Select(candidates, l.prefer3D)
	if !ok {
		return Candidate{}, false
	}

	resolved, err := l.cache.Materialize(selected, l.size)
	if err != nil {
		log.Printf("[ICON-LIBRARY] Failed to materialize %s: %v", e.Icon, err)
		return Candidate{}, false
	}

	l.memo.Add(key, resolved)
	return resolved, true
}

// Prefetch resolves and materializes icons for all entries with bounded
// parallelism. Misses are fine; the point is to warm both cache layers before
// the frame loop starts.
func (l *Library) Prefetch(entries []entry.Entry) {
	start := time.Now()
	var wg sync.WaitGroup
	semaphore := make(chan struct{}, 5) // limit concurrent rasterization

	for _, e := range entries {
		wg.Add(1)
		go func(e entry.Entry) {
			defer wg.Done()
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			l.Get(e)
		}(e)
	}

	wg.Wait()
	log.Printf("[ICON-LIBRARY] Prefetched icons for %d entries in %v", len(entries), time.Since(start))
}

// Stats returns hit/miss counters and current memo size.
func (l *Library) Stats() (hits, misses int64, size int) {
	return atomic.LoadInt64(&l.hits), atomic.LoadInt64(&l.misses), l.memo.Len()
}

// Purge empties the in-memory memo. The disk cache is untouched.
func (l *Library) Purge() {
	l.memo.Purge()
	log.Printf("[ICON-LIBRARY] Memo cache cleared")
}

// RenderCount exposes the disk cache's rasterization counter.
func (l *Library) RenderCount() int64 {
	return l.cache.RenderCount()
}
