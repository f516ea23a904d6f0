package cache

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type countingRecorder struct {
	mu     sync.Mutex
	counts map[string]int
}

func (r *countingRecorder) CacheLookup(namespace, result string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.counts == nil {
		r.counts = map[string]int{}
	}
	r.counts[namespace+"/"+result]++
}

func TestMemory_Expiry(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	m := NewMemoryWithClock(clock.Now)

	require.NoError(t, m.Set(ctx, "k", []byte("v"), time.Minute))

	got, ok, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), got)

	clock.Advance(59 * time.Second)
	_, ok, _ = m.Get(ctx, "k")
	assert.True(t, ok, "entry is fresh just before expiry")

	clock.Advance(time.Second)
	_, ok, err = m.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok, "entry is absent at expiry")
	assert.Equal(t, 0, m.Len())
}

func TestMemory_ZeroTTLIsNotStored(t *testing.T) {
	m := NewMemory()
	require.NoError(t, m.Set(context.Background(), "k", []byte("v"), 0))
	assert.Equal(t, 0, m.Len())
}

func TestMemory_EmptyKey(t *testing.T) {
	m := NewMemory()
	_, _, err := m.Get(context.Background(), "")
	assert.ErrorIs(t, err, ErrEmptyKey)
	assert.ErrorIs(t, m.Set(context.Background(), "", nil, time.Minute), ErrEmptyKey)
}

func TestMemory_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	src := []byte("abc")
	require.NoError(t, m.Set(ctx, "k", src, time.Minute))
	src[0] = 'x'

	got, _, _ := m.Get(ctx, "k")
	assert.Equal(t, "abc", string(got))
	got[0] = 'y'

	again, _, _ := m.Get(ctx, "k")
	assert.Equal(t, "abc", string(again))
}

func TestMemory_Sweep(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Unix(0, 0)}
	m := NewMemoryWithClock(clock.Now)

	require.NoError(t, m.Set(ctx, "short", []byte("1"), time.Second))
	require.NoError(t, m.Set(ctx, "long", []byte("2"), time.Hour))

	clock.Advance(2 * time.Second)
	assert.Equal(t, 1, m.Sweep())
	assert.Equal(t, 1, m.Len())
}

func TestMemory_ConcurrentWriters(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = m.Set(ctx, "shared", []byte{byte(i)}, time.Minute)
			_, _, _ = m.Get(ctx, "shared")
		}(i)
	}
	wg.Wait()

	got, ok, err := m.Get(ctx, "shared")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Len(t, got, 1)
}

func TestBucket_JSONRoundTripAndRecorder(t *testing.T) {
	ctx := context.Background()
	rec := &countingRecorder{}
	b := NewBucket(NewMemory(), "met:object", time.Hour, rec)

	type payload struct {
		ID    int    `json:"id"`
		Title string `json:"title"`
	}

	var out payload
	ok, err := b.GetJSON(ctx, "436535", &out)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, b.SetJSON(ctx, "436535", payload{ID: 436535, Title: "Wheat Field with Cypresses"}))

	ok, err = b.GetJSON(ctx, "436535", &out)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Wheat Field with Cypresses", out.Title)

	assert.Equal(t, 1, rec.counts["met:object/miss"])
	assert.Equal(t, 1, rec.counts["met:object/hit"])
}

func TestBucket_NamespacesDoNotCollide(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()
	a := NewBucket(store, "a", time.Hour, nil)
	b := NewBucket(store, "b", time.Hour, nil)

	require.NoError(t, a.SetJSON(ctx, "k", 1))

	var v int
	ok, err := b.GetJSON(ctx, "k", &v)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBucket_CorruptEntry(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()
	rec := &countingRecorder{}
	b := NewBucket(store, "ns", time.Hour, rec)

	require.NoError(t, store.Set(ctx, "ns:k", []byte("{not json"), time.Hour))

	var v map[string]any
	ok, err := b.GetJSON(ctx, "k", &v)
	assert.Error(t, err)
	assert.False(t, ok)
	assert.Equal(t, 1, rec.counts["ns/error"])
}

func TestSQLiteStore(t *testing.T) {
	ctx := context.Background()
	s, err := OpenSQLite(":memory:")
	require.NoError(t, err)
	defer s.Close()

	clock := &fakeClock{now: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)}
	s.now = clock.Now

	require.NoError(t, s.Set(ctx, "k", []byte("one"), time.Minute))
	require.NoError(t, s.Set(ctx, "k", []byte("two"), time.Minute))

	got, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "two", string(got))

	clock.Advance(time.Minute)
	_, ok, err = s.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	n, err := s.CleanupExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	require.NoError(t, s.Set(ctx, "gone", []byte("x"), time.Hour))
	require.NoError(t, s.Delete(ctx, "gone"))
	_, ok, err = s.Get(ctx, "gone")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPostgresStore_Integration(t *testing.T) {
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		t.Skipf("database not reachable: %v", err)
	}

	s := NewPostgresStore(pool, 3*time.Second)
	key := "test:" + time.Now().Format(time.RFC3339Nano)

	require.NoError(t, s.Set(ctx, key, []byte(`{"a":1}`), time.Minute))
	got, ok, err := s.Get(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `{"a":1}`, string(got))

	require.NoError(t, s.Delete(ctx, key))
	_, ok, err = s.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)
}
