package service

import (
	"context"
	"testing"
	"time"

	"aura/internal/cache"
	"aura/internal/models"
	"aura/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoodStatService_GlobalStatsCachedAndInvalidated(t *testing.T) {
	store, db := newTestStore(t)
	rdb, mr := newTestRedis(t)
	testutil.CreateUser(t, db, "u1")
	posts := NewPostService(store, rdb, nil, "")
	stats := NewMoodStatService(store, rdb)
	ctx := context.Background()
	today := time.Now().UTC().Format(time.DateOnly)

	_, err := posts.CreatePost(ctx, CreatePostInput{UserID: "u1", Content: "hi", Mood: models.MoodHappy, Location: "Japan"})
	require.NoError(t, err)

	global, err := stats.GlobalStats(ctx, "")
	require.NoError(t, err)
	require.Len(t, global, 1)
	assert.Equal(t, 1, global[0].Count)
	assert.True(t, mr.Exists(cache.GlobalMoodStatsKey(today)))

	yesterday := time.Now().UTC().AddDate(0, 0, -1).Format(time.DateOnly)
	past, err := stats.GlobalStats(ctx, yesterday)
	require.NoError(t, err)
	require.Len(t, past, 1)
	assert.True(t, mr.Exists(cache.GlobalMoodStatsKey(yesterday)))

	_, err = posts.CreatePost(ctx, CreatePostInput{UserID: "u1", Content: "again", Mood: models.MoodHappy, Location: "Japan"})
	require.NoError(t, err)
	assert.False(t, mr.Exists(cache.GlobalMoodStatsKey(today)))
	assert.False(t, mr.Exists(cache.GlobalMoodStatsKey(yesterday)))

	past, err = stats.GlobalStats(ctx, yesterday)
	require.NoError(t, err)
	require.Len(t, past, 1)
	assert.Equal(t, 2, past[0].Count)

	global, err = stats.GlobalStats(ctx, today)
	require.NoError(t, err)
	require.Len(t, global, 1)
	assert.Equal(t, 2, global[0].Count)

	region, err := stats.RegionStats(ctx, "Japan")
	require.NoError(t, err)
	require.Len(t, region, 1)
	assert.True(t, mr.Exists(cache.RegionMoodStatsKey("Japan")))
}

func TestMoodStatService_Validation(t *testing.T) {
	store, _ := newTestStore(t)
	stats := NewMoodStatService(store, nil)
	ctx := context.Background()

	_, err := stats.GlobalStats(ctx, "18/10/2026")
	assert.True(t, models.IsCode(err, models.CodeValidation))

	_, err = stats.RegionStats(ctx, "  ")
	assert.True(t, models.IsCode(err, models.CodeValidation))

	empty, err := stats.GlobalStats(ctx, "2001-01-01")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}
