package service

import (
	"context"
	"testing"

	"aura/internal/models"
	"aura/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuraService_SummaryAndActivities(t *testing.T) {
	store, db := newTestStore(t)
	testutil.CreateUser(t, db, "u1")
	posts := NewPostService(store, nil, nil, "")
	aura := NewAuraService(store)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := posts.CreatePost(ctx, CreatePostInput{UserID: "u1", Content: "note", Mood: models.MoodMotivated})
		require.NoError(t, err)
	}

	activities, err := aura.ListActivities(ctx, "u1", 0)
	require.NoError(t, err)
	assert.Len(t, activities, 3)

	limited, err := aura.ListActivities(ctx, "u1", 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	summary, err := aura.Summary(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 30, summary.AuraPoints)
	assert.Equal(t, 1, summary.TreeLevel)
	assert.Equal(t, "Blooming Spirit Tree", summary.LevelName)

	_, err = aura.Summary(ctx, "ghost")
	assert.True(t, models.IsCode(err, models.CodeNotFound))
}
