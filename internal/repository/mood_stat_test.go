package repository

import (
	"context"
	"testing"
	"time"

	"aura/internal/models"
	"aura/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoodStatRepository_RecordSameDay(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewMoodStatRepository(db)
	ctx := context.Background()

	now := time.Now().UTC()
	require.NoError(t, repo.Record(ctx, models.MoodHappy, "France", now))
	require.NoError(t, repo.Record(ctx, models.MoodHappy, "France", now))
	require.NoError(t, repo.Record(ctx, models.MoodCalm, "France", now))
	require.NoError(t, repo.Record(ctx, models.MoodHappy, "Japan", now))

	stats, err := repo.ListSince(ctx, models.StartOfDay(now))
	require.NoError(t, err)
	require.Len(t, stats, 3)
	assert.Equal(t, models.MoodHappy, stats[0].Mood)
	assert.Equal(t, "France", stats[0].Country)
	assert.Equal(t, 2, stats[0].Count)
	assert.Nil(t, stats[0].Percentage)
}

func TestMoodStatRepository_NewDayStartsNewRow(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewMoodStatRepository(db)
	ctx := context.Background()

	today := time.Now().UTC()
	yesterday := today.Add(-24 * time.Hour)
	require.NoError(t, repo.Record(ctx, models.MoodHappy, "France", yesterday))
	require.NoError(t, repo.Record(ctx, models.MoodHappy, "France", today))

	history, err := repo.ListByCountry(ctx, "France", 30)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, 1, history[0].Count)
	assert.True(t, history[0].Date.After(history[1].Date))
}
