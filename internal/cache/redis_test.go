package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seogyeonga/auction-radar/internal/domain"
)

func setupCache(t *testing.T) (*ViewCache, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	c := NewViewCache(redis.NewClient(&redis.Options{Addr: mr.Addr()}), time.Minute)
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestViewCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	c, mr := setupCache(t)

	_, found, err := c.Get(ctx, "a-1")
	require.NoError(t, err)
	assert.False(t, found)

	view := domain.ListingView{
		Listing:    domain.Listing{ID: "a-1", CaseNo: "2024타경1"},
		Assessment: domain.RiskAssessment{Level: domain.RiskDanger, Reason: "유치권"},
		Grade:      domain.GradeF,
	}
	require.NoError(t, c.Set(ctx, view))
	assert.True(t, mr.Exists("auction:view:a-1"))
	assert.Equal(t, time.Minute, mr.TTL("auction:view:a-1"))

	got, found, err := c.Get(ctx, "a-1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, view.Assessment, got.Assessment)
	assert.Equal(t, "2024타경1", got.Listing.CaseNo)

	require.NoError(t, c.Invalidate(ctx, "a-1"))
	_, found, err = c.Get(ctx, "a-1")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestViewCacheExpires(t *testing.T) {
	ctx := context.Background()
	c, mr := setupCache(t)

	require.NoError(t, c.Set(ctx, domain.ListingView{Listing: domain.Listing{ID: "a-2"}}))
	mr.FastForward(2 * time.Minute)

	_, found, err := c.Get(ctx, "a-2")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestViewCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, mr := setupCache(t)

	require.NoError(t, mr.Set("auction:view:bad", "{not json"))
	_, found, err := c.Get(ctx, "bad")
	assert.Error(t, err)
	assert.False(t, found)
}

func TestNilViewCacheIsNoop(t *testing.T) {
	ctx := context.Background()
	var c *ViewCache

	require.NoError(t, c.Set(ctx, domain.ListingView{}))
	_, found, err := c.Get(ctx, "x")
	require.NoError(t, err)
	assert.False(t, found)
	assert.NoError(t, c.Invalidate(ctx, "x"))
	assert.NoError(t, c.Ping(ctx))
	assert.NoError(t, c.Close())
}
