package timeline

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"arttimeline/internal/artwork"
	"arttimeline/internal/cache"
)

type curatedRecorder struct{ calls map[string]int }

func (r *curatedRecorder) Curated(period string, _ int) {
	if r.calls == nil {
		r.calls = map[string]int{}
	}
	r.calls[period]++
}

func newTestService(src Source, clock *time.Time) (*Service, *curatedRecorder) {
	rec := &curatedRecorder{}
	bucket := cache.NewBucket(cache.NewMemory(), PeriodNamespace, 24*time.Hour, nil)
	s := NewService(newTestCurator(src), bucket, rec, zerolog.Nop())
	s.now = func() time.Time { return *clock }
	return s, rec
}

func TestService_CachesPerDay(t *testing.T) {
	src := newFakeSource()
	src.searches["Baroque"] = []int{1, 2}
	src.arts[1] = art(1, 1650, 1660)
	src.arts[2] = art(2, 1700, 1710)

	now := testDay
	s, rec := newTestService(src, &now)

	first, err := s.PeriodArtworks(context.Background(), "baroque", 4)
	require.NoError(t, err)
	assert.Len(t, first, 2)
	lookups := src.lookupCount()

	again, err := s.PeriodArtworks(context.Background(), "baroque", 4)
	require.NoError(t, err)
	assert.Equal(t, first, again)
	assert.Equal(t, lookups, src.lookupCount(), "served from cache")
	assert.Equal(t, 1, rec.calls["baroque"])

	now = now.Add(24 * time.Hour)
	_, err = s.PeriodArtworks(context.Background(), "baroque", 4)
	require.NoError(t, err)
	assert.Greater(t, src.lookupCount(), lookups, "a new day curates again")
}

func TestService_DoesNotCacheEmpty(t *testing.T) {
	src := newFakeSource()
	src.failing["Egyptian"] = true
	src.failing["Greek"] = true
	src.failing["Ancient"] = true

	now := testDay
	s, rec := newTestService(src, &now)

	got, err := s.PeriodArtworks(context.Background(), "ancient", 4)
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = s.PeriodArtworks(context.Background(), "ancient", 4)
	require.NoError(t, err)
	assert.Equal(t, 2, rec.calls["ancient"])
}

func TestService_UnknownPeriod(t *testing.T) {
	now := testDay
	s, _ := newTestService(newFakeSource(), &now)
	_, err := s.PeriodArtworks(context.Background(), "nope", 4)
	assert.ErrorIs(t, err, ErrUnknownPeriod)
}

func TestPeriods(t *testing.T) {
	ps := Periods(testDay)
	require.Len(t, ps, 5)
	assert.Equal(t, "ancient", ps[0].ID)
	assert.Equal(t, -3000, ps[0].StartYear)
	assert.Equal(t, 2024, ps[4].EndYear)

	ps[0].Queries[0] = "mutated"
	p, err := FindPeriod("ancient")
	require.NoError(t, err)
	assert.Equal(t, "Egyptian", p.Queries[0])
}

func TestHTTPHandler(t *testing.T) {
	src := newFakeSource()
	src.searches["Renaissance"] = []int{1}
	src.arts[1] = art(1, 1500, 1510)

	now := testDay
	s, _ := newTestService(src, &now)
	h := NewHTTPHandler(s, 4, zerolog.Nop())

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/periods", h.ListPeriods)
	mux.HandleFunc("GET /api/artworks/period/{periodId}", h.PeriodArtworks)

	t.Run("periods", func(t *testing.T) {
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/periods", nil))
		require.Equal(t, http.StatusOK, w.Code)

		var body struct {
			Data []Period `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Len(t, body.Data, 5)
		assert.NotContains(t, w.Body.String(), "Queries")
	})

	t.Run("artworks", func(t *testing.T) {
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/artworks/period/renaissance?limit=3", nil))
		require.Equal(t, http.StatusOK, w.Code)

		var body struct {
			Data []artwork.Artwork `json:"data"`
			Meta map[string]any    `json:"meta"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		require.Len(t, body.Data, 1)
		assert.EqualValues(t, 3, body.Meta["limit"])
	})

	for _, tc := range []struct {
		path string
		want int
	}{
		{"/api/artworks/period/rococo", http.StatusNotFound},
		{"/api/artworks/period/renaissance?limit=0", http.StatusBadRequest},
		{"/api/artworks/period/renaissance?limit=21", http.StatusBadRequest},
		{"/api/artworks/period/renaissance?limit=abc", http.StatusBadRequest},
	} {
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tc.path, nil))
		assert.Equal(t, tc.want, w.Code, tc.path)
	}
}
