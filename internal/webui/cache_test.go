package webui

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLRUCacheGetSet(t *testing.T) {
	c := newLRUCache[string](4, time.Minute)

	_, ok := c.Get("missing")
	assert.False(t, ok)

	c.Set("a", "1")
	got, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, "1", got)

	c.Set("a", "2")
	got, _ = c.Get("a")
	assert.Equal(t, "2", got)
}

func TestLRUCacheEviction(t *testing.T) {
	c := newLRUCache[int](2, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)

	// Touch "a" so "b" becomes the eviction candidate.
	_, _ = c.Get("a")
	c.Set("c", 3)

	_, ok := c.Get("b")
	assert.False(t, ok)
	_, ok = c.Get("a")
	assert.True(t, ok)
	_, ok = c.Get("c")
	assert.True(t, ok)
}

func TestLRUCacheTTL(t *testing.T) {
	c := newLRUCache[int](4, 10*time.Millisecond)
	c.Set("a", 1)

	time.Sleep(20 * time.Millisecond)

	_, ok := c.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 0, c.CleanExpired(), "expired read already removed the entry")
}

func TestLRUCacheInvalidatePrefix(t *testing.T) {
	c := newLRUCache[int](16, time.Minute)
	for m := 1; m <= 3; m++ {
		c.Set(fmt.Sprintf("expenses|1403|%d", m), m)
	}
	c.Set("payments|1403|1", 9)

	c.Invalidate("expenses|")

	for m := 1; m <= 3; m++ {
		_, ok := c.Get(fmt.Sprintf("expenses|1403|%d", m))
		assert.False(t, ok)
	}
	_, ok := c.Get("payments|1403|1")
	assert.True(t, ok)
}

func TestLRUCacheCleanExpired(t *testing.T) {
	c := newLRUCache[int](16, 5*time.Millisecond)
	c.Set("a", 1)
	c.Set("b", 2)

	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, 2, c.CleanExpired())
}
