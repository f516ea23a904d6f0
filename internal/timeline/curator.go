package timeline

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"arttimeline/internal/artwork"
)

const (
	// PerQueryLimit caps how many ids one search contributes to the pool.
	PerQueryLimit = 50
	// PoolFactor bounds how many ids are tried per requested artwork.
	PoolFactor = 20
)

// Source resolves ids and searches. *artwork.Fetcher satisfies it.
type Source interface {
	Lookup(ctx context.Context, id int) (artwork.Artwork, bool)
	Search(ctx context.Context, query string) ([]int, bool)
}

type CuratorConfig struct {
	BatchSize  int
	BatchPause time.Duration
}

type Curator struct {
	source Source
	cfg    CuratorConfig
	now    func() time.Time
	log    zerolog.Logger
}

func NewCurator(source Source, cfg CuratorConfig, log zerolog.Logger) *Curator {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 8
	}
	return &Curator{source: source, cfg: cfg, now: time.Now, log: log}
}

// Curate picks up to target artworks for the period. The selection is
// stable for a calendar day. Remote failures shrink the result instead of
// failing it; a cancelled ctx returns what was collected so far.
func (c *Curator) Curate(ctx context.Context, periodID string, target int) ([]artwork.Artwork, error) {
	return c.CurateAt(ctx, periodID, target, c.now())
}

// CurateAt is Curate for an explicit date.
func (c *Curator) CurateAt(ctx context.Context, periodID string, target int, now time.Time) ([]artwork.Artwork, error) {
	p, err := FindPeriod(periodID)
	if err != nil {
		return nil, err
	}
	if target <= 0 {
		return []artwork.Artwork{}, nil
	}
	start, end := p.StartYear, p.End(now)

	pool := c.candidates(ctx, p.Queries)
	pool = Shuffle(pool, Seed(now))
	if limit := target * PoolFactor; len(pool) > limit {
		pool = pool[:limit]
	}

	out := make([]artwork.Artwork, 0, target)
	for offset := 0; offset < len(pool) && len(out) < target; offset += c.cfg.BatchSize {
		if offset > 0 && c.cfg.BatchPause > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(c.cfg.BatchPause):
			}
		}
		if ctx.Err() != nil {
			break
		}

		batch := pool[offset:min(offset+c.cfg.BatchSize, len(pool))]
		out = c.resolveBatch(ctx, batch, start, end, target, out)
	}

	c.log.Debug().
		Str("period", p.ID).
		Int("pool", len(pool)).
		Int("returned", len(out)).
		Msg("curated")
	return out, nil
}

// candidates merges search results in query order, dropping duplicates.
func (c *Curator) candidates(ctx context.Context, queries []string) []int {
	seen := make(map[int]struct{})
	var ids []int
	for _, q := range queries {
		found, ok := c.source.Search(ctx, q)
		if !ok {
			c.log.Debug().Str("query", q).Msg("search skipped")
			continue
		}
		if len(found) > PerQueryLimit {
			found = found[:PerQueryLimit]
		}
		for _, id := range found {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	return ids
}

// resolveBatch looks up a batch concurrently and appends accepted artworks
// in batch position order. Once enough have been accepted the remaining
// lookups are cancelled.
func (c *Curator) resolveBatch(ctx context.Context, batch []int, start, end, target int, out []artwork.Artwork) []artwork.Artwork {
	type slot struct {
		art  artwork.Artwork
		ok   bool
		done bool
	}
	slots := make([]slot, len(batch))

	g, gctx := errgroup.WithContext(ctx)
	bctx, cancel := context.WithCancel(gctx)
	defer cancel()

	var mu sync.Mutex
	next := 0 // first position not yet folded into out

	// fold consumes settled positions from the front. Called with mu held.
	fold := func() {
		for next < len(slots) && slots[next].done && len(out) < target {
			if slots[next].ok {
				out = append(out, slots[next].art)
			}
			next++
		}
		if len(out) >= target {
			cancel()
		}
	}

	for i, id := range batch {
		g.Go(func() error {
			a, ok := c.source.Lookup(bctx, id)
			accepted := ok && a.Image != "" && a.Overlaps(start, end)

			mu.Lock()
			defer mu.Unlock()
			slots[i] = slot{art: a, ok: accepted, done: true}
			fold()
			return nil
		})
	}
	_ = g.Wait()
	return out
}
