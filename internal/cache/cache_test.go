package cache

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

type result struct{ html string }

func TestCacheGetMiss(t *testing.T) {
	c := New[*result]()

	got, ok := c.Get("missing")
	require.False(t, ok)
	require.Nil(t, got.Value)
	require.NoError(t, got.Err)
}

func TestCacheStoresSamePointer(t *testing.T) {
	c := New[*result]()
	r := &result{html: "<script></script>"}
	c.Put("k", Outcome[*result]{Value: r})

	got, ok := c.Get("k")
	require.True(t, ok)
	require.Same(t, r, got.Value)
	require.NoError(t, got.Err)
}

func TestCacheStoresFailure(t *testing.T) {
	c := New[*result]()
	boom := errors.New("boom")
	c.Put("k", Outcome[*result]{Err: boom})

	got, ok := c.Get("k")
	require.True(t, ok)
	require.Nil(t, got.Value)
	require.ErrorIs(t, got.Err, boom)
}

func TestCachePutReplaces(t *testing.T) {
	c := New[*result]()
	c.Put("k", Outcome[*result]{Err: errors.New("first")})
	second := &result{html: "second"}
	c.Put("k", Outcome[*result]{Value: second})

	got, ok := c.Get("k")
	require.True(t, ok)
	require.Same(t, second, got.Value)
	require.Equal(t, 1, c.Len())
}

func TestCacheClear(t *testing.T) {
	c := New[*result]()
	c.Put("a", Outcome[*result]{Value: &result{}})
	c.Put("b", Outcome[*result]{Value: &result{}})
	require.Equal(t, 2, c.Len())

	c.Clear()
	require.Zero(t, c.Len())
	_, ok := c.Get("a")
	require.False(t, ok)
}

func TestCacheInstancesAreIsolated(t *testing.T) {
	a, b := New[*result](), New[*result]()
	a.Put("k", Outcome[*result]{Value: &result{}})

	_, ok := b.Get("k")
	require.False(t, ok)
}

func TestCacheConcurrentAccess(t *testing.T) {
	c := New[int]()
	var wg sync.WaitGroup
	for i := range 32 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			key := fmt.Sprintf("k%d", i%4)
			c.Put(key, Outcome[int]{Value: i})
			_, _ = c.Get(key)
		}()
	}
	wg.Wait()
	require.Equal(t, 4, c.Len())
}
