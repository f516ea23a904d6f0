package artwork

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"arttimeline/internal/cache"
	"arttimeline/internal/platform/metmuseum"
)

const (
	ObjectNamespace = "met:object"
	SearchNamespace = "met:search"
)

// cachedObject is what the object bucket stores. Found=false marks an
// explicit absence so that repeat lookups skip the network.
type cachedObject struct {
	Found   bool     `json:"found"`
	Artwork *Artwork `json:"artwork,omitempty"`
}

type SearchResult struct {
	Total     int   `json:"total"`
	ObjectIDs []int `json:"objectIDs"`
}

type Fetcher struct {
	remote      Remote
	objects     *cache.Bucket
	searches    *cache.Bucket
	negativeTTL time.Duration
	log         zerolog.Logger
}

type FetcherConfig struct {
	ObjectTTL   time.Duration
	NegativeTTL time.Duration
	SearchTTL   time.Duration
}

func NewFetcher(remote Remote, store cache.Store, rec cache.Recorder, cfg FetcherConfig, log zerolog.Logger) *Fetcher {
	return &Fetcher{
		remote:      remote,
		objects:     cache.NewBucket(store, ObjectNamespace, cfg.ObjectTTL, rec),
		searches:    cache.NewBucket(store, SearchNamespace, cfg.SearchTTL, rec),
		negativeTTL: cfg.NegativeTTL,
		log:         log,
	}
}

// Lookup returns the artwork for id, or false when it does not exist, has
// no image, or could not be fetched right now. It never returns an error.
func (f *Fetcher) Lookup(ctx context.Context, id int) (Artwork, bool) {
	key := strconv.Itoa(id)

	// Cache errors after ctx is done are the caller's deadline, not the store.
	var hit cachedObject
	ok, err := f.objects.GetJSON(ctx, key, &hit)
	if err != nil && ctx.Err() == nil {
		f.log.Warn().Err(err).Int("object_id", id).Msg("object cache read failed")
	}
	if ok {
		if hit.Found && hit.Artwork != nil {
			return *hit.Artwork, true
		}
		return Artwork{}, false
	}

	obj, err := f.remote.Object(ctx, id)
	if err != nil {
		if errors.Is(err, metmuseum.ErrNotFound) {
			f.store(ctx, key, cachedObject{Found: false}, f.negativeTTL)
			return Artwork{}, false
		}
		if ctx.Err() == nil {
			f.log.Warn().Err(err).Int("object_id", id).Msg("object fetch failed")
		}
		return Artwork{}, false
	}

	a, ok := Normalize(obj)
	if !ok {
		f.store(ctx, key, cachedObject{Found: false}, f.negativeTTL)
		return Artwork{}, false
	}
	if a.ID == 0 {
		a.ID = id
	}
	f.store(ctx, key, cachedObject{Found: true, Artwork: &a}, f.objects.TTL())
	return a, true
}

func (f *Fetcher) store(ctx context.Context, key string, v cachedObject, ttl time.Duration) {
	if err := f.objects.SetJSONWithTTL(ctx, key, v, ttl); err != nil && ctx.Err() == nil {
		f.log.Warn().Err(err).Str("key", key).Msg("object cache write failed")
	}
}

// Search returns ids of objects with images matching query.
func (f *Fetcher) Search(ctx context.Context, query string) ([]int, bool) {
	res, ok := f.SearchObjects(ctx, query, true)
	if !ok {
		return nil, false
	}
	return res.ObjectIDs, true
}

// SearchObjects is the cached form of the remote search endpoint.
func (f *Fetcher) SearchObjects(ctx context.Context, query string, hasImages bool) (SearchResult, bool) {
	key := searchKey(query, hasImages)

	var hit SearchResult
	ok, err := f.searches.GetJSON(ctx, key, &hit)
	if err != nil && ctx.Err() == nil {
		f.log.Warn().Err(err).Str("query", query).Msg("search cache read failed")
	}
	if ok {
		return hit, true
	}

	res, err := f.remote.Search(ctx, query, hasImages)
	if err != nil {
		if ctx.Err() == nil {
			f.log.Warn().Err(err).Str("query", query).Msg("search failed")
		}
		return SearchResult{}, false
	}

	out := SearchResult{Total: res.Total, ObjectIDs: res.ObjectIDs}
	if out.ObjectIDs == nil {
		out.ObjectIDs = []int{}
	}
	if err := f.searches.SetJSON(ctx, key, out); err != nil && ctx.Err() == nil {
		f.log.Warn().Err(err).Str("query", query).Msg("search cache write failed")
	}
	return out, true
}

func searchKey(query string, hasImages bool) string {
	sum := sha256.Sum256([]byte(query + "|" + strconv.FormatBool(hasImages)))
	return hex.EncodeToString(sum[:])
}
