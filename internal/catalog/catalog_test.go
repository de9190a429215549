package catalog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLRUCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRUCache(2)
	c.Put(&Product{ID: "a", Name: "A"})
	c.Put(&Product{ID: "b", Name: "B"})

	// Touch a so b becomes the eviction candidate.
	require.NotNil(t, c.Get("a"))
	c.Put(&Product{ID: "c", Name: "C"})

	require.NotNil(t, c.Get("a"))
	require.Nil(t, c.Get("b"))
	require.NotNil(t, c.Get("c"))
	require.Equal(t, 2, c.Len())
}

func TestLRUCache_ReturnsCopies(t *testing.T) {
	c := NewLRUCache(4)
	original := &Product{ID: "a", Name: "A"}
	c.Put(original)
	original.Name = "mutated"

	got := c.Get("a")
	require.Equal(t, "A", got.Name)

	got.Name = "also mutated"
	require.Equal(t, "A", c.Get("a").Name)
}

func TestLRUCache_PutReplacesAndInvalidate(t *testing.T) {
	c := NewLRUCache(4)
	c.Put(&Product{ID: "a", Category: "shoes"})
	c.Put(&Product{ID: "a", Category: "boots"})
	require.Equal(t, 1, c.Len())
	require.Equal(t, "boots", c.Get("a").Category)

	c.Invalidate("a")
	require.Nil(t, c.Get("a"))
	c.Invalidate("missing")
}

type countingSource struct {
	inner Source
	calls atomic.Int32
	delay time.Duration
}

func (s *countingSource) Get(ctx context.Context, productID string) (*Product, error) {
	s.calls.Add(1)
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	return s.inner.Get(ctx, productID)
}

func TestResolver_CachesHits(t *testing.T) {
	src := &countingSource{inner: NewMemorySource(Product{ID: "p-1", Name: "Shoe", Category: "footwear"})}
	r := NewResolver(src, 10)

	for i := 0; i < 3; i++ {
		p, err := r.Resolve(context.Background(), "p-1")
		require.NoError(t, err)
		require.Equal(t, "footwear", p.Category)
	}
	require.Equal(t, int32(1), src.calls.Load())
}

func TestResolver_DoesNotCacheMisses(t *testing.T) {
	mem := NewMemorySource()
	src := &countingSource{inner: mem}
	r := NewResolver(src, 10)

	_, err := r.Resolve(context.Background(), "p-new")
	require.ErrorIs(t, err, ErrProductNotFound)

	mem.Put(Product{ID: "p-new", Name: "New"})

	p, err := r.Resolve(context.Background(), "p-new")
	require.NoError(t, err)
	require.Equal(t, "New", p.Name)
	require.Equal(t, int32(2), src.calls.Load())
}

func TestResolver_DedupesConcurrentLookups(t *testing.T) {
	src := &countingSource{
		inner: NewMemorySource(Product{ID: "p-1", Name: "Shoe"}),
		delay: 50 * time.Millisecond,
	}
	r := NewResolver(src, 10)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, err := r.Resolve(context.Background(), "p-1")
			assert.NoError(t, err)
			assert.Equal(t, "p-1", p.ID)
		}()
	}
	wg.Wait()

	require.LessOrEqual(t, src.calls.Load(), int32(2))
}

func TestResolver_PropagatesSourceErrors(t *testing.T) {
	boom := errors.New("db down")
	r := NewResolver(sourceFunc(func(ctx context.Context, id string) (*Product, error) {
		return nil, boom
	}), 0)

	_, err := r.Resolve(context.Background(), "p-1")
	require.ErrorIs(t, err, boom)
}

type sourceFunc func(ctx context.Context, id string) (*Product, error)

func (f sourceFunc) Get(ctx context.Context, id string) (*Product, error) { return f(ctx, id) }

func TestFileSystemSource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "products.yaml")
	content := `
products:
  - id: p-1
    name: Running Shoe
    category: footwear
  - id: p-2
    name: Gift Card
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	src, err := NewFileSystemSource(path)
	require.NoError(t, err)

	p, err := src.Get(context.Background(), "p-1")
	require.NoError(t, err)
	require.Equal(t, Product{ID: "p-1", Name: "Running Shoe", Category: "footwear"}, *p)

	p, err = src.Get(context.Background(), "p-2")
	require.NoError(t, err)
	require.Empty(t, p.Category)

	_, err = src.Get(context.Background(), "p-3")
	require.ErrorIs(t, err, ErrProductNotFound)

	require.NoError(t, os.WriteFile(path, []byte("products:\n  - id: p-3\n    name: Sock\n"), 0o644))
	require.NoError(t, src.Reload())

	_, err = src.Get(context.Background(), "p-1")
	require.ErrorIs(t, err, ErrProductNotFound)
	_, err = src.Get(context.Background(), "p-3")
	require.NoError(t, err)
}

func TestFileSystemSource_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := NewFileSystemSource(filepath.Join(dir, "missing.yaml"))
	require.ErrorContains(t, err, "failed to read catalog file")

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("products: [ {id: "), 0o644))
	_, err = NewFileSystemSource(bad)
	require.ErrorContains(t, err, "failed to parse catalog file")

	noID := filepath.Join(dir, "noid.yaml")
	require.NoError(t, os.WriteFile(noID, []byte("products:\n  - name: Nameless\n"), 0o644))
	_, err = NewFileSystemSource(noID)
	require.ErrorContains(t, err, "has no id")
}

func TestRefresher_ReloadsAndPurges(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "products.yaml")
	require.NoError(t, os.WriteFile(path, []byte("products:\n  - id: p-1\n    name: Shoe\n    category: shoes\n"), 0o644))

	src, err := NewFileSystemSource(path)
	require.NoError(t, err)
	resolver := NewResolver(src, 10)

	p, err := resolver.Resolve(context.Background(), "p-1")
	require.NoError(t, err)
	require.Equal(t, "shoes", p.Category)

	require.NoError(t, os.WriteFile(path, []byte("products:\n  - id: p-1\n    name: Shoe\n    category: footwear\n"), 0o644))
	refresher := NewRefresher(time.Hour, src, resolver)
	refresher.Refresh()

	p, err = resolver.Resolve(context.Background(), "p-1")
	require.NoError(t, err)
	require.Equal(t, "footwear", p.Category)
}

func TestRefresher_FailedReloadKeepsCache(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "products.yaml")
	require.NoError(t, os.WriteFile(path, []byte("products:\n  - id: p-1\n    name: Shoe\n"), 0o644))

	src, err := NewFileSystemSource(path)
	require.NoError(t, err)
	resolver := NewResolver(src, 10)
	_, err = resolver.Resolve(context.Background(), "p-1")
	require.NoError(t, err)

	require.NoError(t, os.Remove(path))
	NewRefresher(time.Hour, src, resolver).Refresh()

	require.Equal(t, 1, resolver.cache.Len())
	_, err = resolver.Resolve(context.Background(), "p-1")
	require.NoError(t, err)
}

func TestRefresher_StartStopsOnCancel(t *testing.T) {
	resolver := NewResolver(NewMemorySource(Product{ID: "p-1"}), 10)
	_, err := resolver.Resolve(context.Background(), "p-1")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- NewRefresher(5*time.Millisecond, resolver.source, resolver).Start(ctx) }()

	require.Eventually(t, func() bool { return resolver.cache.Len() == 0 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("refresher did not stop")
	}
}
