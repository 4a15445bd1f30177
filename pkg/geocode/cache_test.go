package geocode

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheKey(t *testing.T) {
	a := AddressInput{HouseNumber: "100", Street: "Main St", City: "Frisco", State: "TX", ZipCode: "75034"}
	b := AddressInput{HouseNumber: "100", Street: "MAIN  ST", City: "frisco", State: "tx", ZipCode: "75034"}
	c := AddressInput{HouseNumber: "200", Street: "Main St", City: "Frisco", State: "TX", ZipCode: "75034"}

	assert.Len(t, CacheKey(a), 64)
	assert.Equal(t, CacheKey(a), CacheKey(b))
	assert.NotEqual(t, CacheKey(a), CacheKey(c))
}

func TestCachedClient_MissThenHit(t *testing.T) {
	upstream := &stubProvider{name: "geocodio", result: &Result{Matched: true, Latitude: 33, Longitude: -96}}
	cache := newMemCache()
	c := NewCachedClient(upstream, cache)

	first, err := c.Geocode(context.Background(), testAddr)
	require.NoError(t, err)
	second, err := c.Geocode(context.Background(), testAddr)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), upstream.calls.Load())
	assert.Len(t, cache.items, 1)
}

func TestCachedClient_CachesNonMatch(t *testing.T) {
	upstream := &stubProvider{name: "geocodio", result: &Result{Matched: false}}
	c := NewCachedClient(upstream, newMemCache())

	for range 2 {
		res, err := c.Geocode(context.Background(), testAddr)
		require.NoError(t, err)
		assert.False(t, res.Matched)
	}
	assert.Equal(t, int32(1), upstream.calls.Load())
}

func TestCachedClient_ErrorsNotCached(t *testing.T) {
	upstream := &stubProvider{name: "geocodio", err: errors.New("down")}
	cache := newMemCache()
	c := NewCachedClient(upstream, cache)

	_, err := c.Geocode(context.Background(), testAddr)
	require.Error(t, err)
	assert.Empty(t, cache.items)
}

func TestCachedClient_CacheFailuresAreMisses(t *testing.T) {
	upstream := &stubProvider{name: "geocodio", result: &Result{Matched: true}}
	cache := newMemCache()
	cache.getErr = errors.New("disk full")
	cache.putErr = errors.New("disk full")

	res, err := NewCachedClient(upstream, cache).Geocode(context.Background(), testAddr)
	require.NoError(t, err)
	assert.True(t, res.Matched)
	assert.Equal(t, int32(1), upstream.calls.Load())
}
