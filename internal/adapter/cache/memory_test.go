package cache

import (
	"fmt"
	"sync"
	"testing"

	"codechunk/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entry(id string) *domain.CacheEntry {
	return &domain.CacheEntry{ID: id, Language: "python", Text: "x = 1\n", Result: &domain.ParseResult{Language: "python"}}
}

func TestMemoryStore_GetMiss(t *testing.T) {
	c := NewMemoryStore(2)
	_, err := c.Get("nope")
	assert.ErrorIs(t, err, domain.ErrCacheMiss)
}

func TestMemoryStore_EvictsLeastRecentlyUsed(t *testing.T) {
	c := NewMemoryStore(2)
	require.NoError(t, c.Put(entry("a")))
	require.NoError(t, c.Put(entry("b")))

	_, err := c.Get("a")
	require.NoError(t, err)

	require.NoError(t, c.Put(entry("c")))
	assert.Equal(t, 2, c.Size())

	_, err = c.Get("b")
	assert.ErrorIs(t, err, domain.ErrCacheMiss)

	ids, err := c.IDs()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c"}, ids)
}

func TestMemoryStore_PutReplaces(t *testing.T) {
	c := NewMemoryStore(0)
	require.NoError(t, c.Put(entry("a")))

	next := entry("a")
	next.Text = "y = 2\n"
	require.NoError(t, c.Put(next))

	got, err := c.Get("a")
	require.NoError(t, err)
	assert.Same(t, next, got)
	assert.Equal(t, 1, c.Size())
}

func TestMemoryStore_Delete(t *testing.T) {
	c := NewMemoryStore(0)
	require.NoError(t, c.Put(entry("a")))
	require.NoError(t, c.Delete("a"))
	require.NoError(t, c.Delete("missing"))

	_, err := c.Get("a")
	assert.ErrorIs(t, err, domain.ErrCacheMiss)
	assert.Equal(t, 0, c.Size())
}

func TestMemoryStore_ConcurrentGetAndDelete(t *testing.T) {
	c := NewMemoryStore(4)
	ids := []string{"a", "b", "c", "d"}
	for _, id := range ids {
		require.NoError(t, c.Put(entry(id)))
	}

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for n := 0; n < 200; n++ {
				id := ids[(w+n)%len(ids)]
				switch n % 3 {
				case 0:
					_, _ = c.Get(id)
				case 1:
					_ = c.Delete(id)
				default:
					_ = c.Put(entry(fmt.Sprintf("%s%d", id, n%2)))
				}
			}
		}(w)
	}
	wg.Wait()

	c.mu.RLock()
	defer c.mu.RUnlock()
	assert.LessOrEqual(t, len(c.entries), 4)
	assert.Len(t, c.order, len(c.entries))
	for _, id := range c.order {
		assert.Contains(t, c.entries, id)
	}
}

func TestTieredStore_FillsFrontFromBack(t *testing.T) {
	front := NewMemoryStore(10)
	back := NewMemoryStore(10)
	require.NoError(t, back.Put(entry("a")))

	tiered := NewTieredStore(front, back)
	assert.Equal(t, 0, front.Size())

	got, err := tiered.Get("a")
	require.NoError(t, err)
	assert.Equal(t, "a", got.ID)
	assert.Equal(t, 1, front.Size())

	_, err = tiered.Get("b")
	assert.ErrorIs(t, err, domain.ErrCacheMiss)
}

func TestTieredStore_WritesThrough(t *testing.T) {
	front := NewMemoryStore(10)
	back := NewMemoryStore(10)
	tiered := NewTieredStore(front, back)

	require.NoError(t, tiered.Put(entry("a")))
	require.NoError(t, tiered.Put(entry("b")))
	assert.Equal(t, 2, front.Size())
	assert.Equal(t, 2, back.Size())

	require.NoError(t, tiered.Delete("a"))
	_, err := front.Get("a")
	assert.ErrorIs(t, err, domain.ErrCacheMiss)
	_, err = back.Get("a")
	assert.ErrorIs(t, err, domain.ErrCacheMiss)

	ids, err := tiered.IDs()
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, ids)
	assert.NoError(t, tiered.Close())
}
