package service

import (
	"context"
	"strings"
	"testing"

	"aura/internal/models"
	"aura/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostService_CreatePostAwardsAndLists(t *testing.T) {
	store, db := newTestStore(t)
	testutil.CreateUser(t, db, "u1")
	broadcaster := &recordingBroadcaster{}
	svc := NewPostService(store, nil, broadcaster, "https://aura.example/")
	ctx := context.Background()

	post, err := svc.CreatePost(ctx, CreatePostInput{UserID: "u1", Content: "  sunrise run  ", Mood: models.MoodEnergetic})
	require.NoError(t, err)
	assert.Equal(t, "sunrise run", post.Content)
	require.NotNil(t, post.User)
	assert.Equal(t, "u1", post.User.ID)

	feed, err := svc.ListPosts(ctx, ListPostsInput{})
	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.Equal(t, post.ID, feed[0].ID)

	user, err := store.Users().GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, models.PointsSharedExperience, user.AuraPoints)
	assert.Equal(t, user.AuraPoints, ledgerTotal(t, store, "u1"))
	assert.Empty(t, broadcaster.updates)
}

func TestPostService_CreatePostCountsMoodPerDay(t *testing.T) {
	store, db := newTestStore(t)
	testutil.CreateUser(t, db, "u1")
	testutil.CreateUser(t, db, "u2")
	broadcaster := &recordingBroadcaster{}
	svc := NewPostService(store, nil, broadcaster, "")
	ctx := context.Background()

	for _, uid := range []string{"u1", "u2"} {
		_, err := svc.CreatePost(ctx, CreatePostInput{UserID: uid, Content: "sunny", Mood: models.MoodHappy, Location: "France"})
		require.NoError(t, err)
	}

	var stats []models.GlobalMoodStat
	require.NoError(t, db.Find(&stats).Error)
	require.Len(t, stats, 1)
	assert.Equal(t, 2, stats[0].Count)
	assert.Equal(t, "France", stats[0].Country)

	require.Len(t, broadcaster.updates, 2)
	assert.Equal(t, moodUpdate{mood: models.MoodHappy, location: "France"}, broadcaster.updates[0])
}

func TestPostService_CreatePostValidation(t *testing.T) {
	store, db := newTestStore(t)
	testutil.CreateUser(t, db, "u1")
	svc := NewPostService(store, nil, nil, "")
	ctx := context.Background()

	tests := []struct {
		name  string
		input CreatePostInput
		want  string
	}{
		{"missing content", CreatePostInput{UserID: "u1", Content: "   ", Mood: models.MoodCalm}, "content is required"},
		{"unknown mood", CreatePostInput{UserID: "u1", Content: "hi", Mood: "grumpy"}, "mood must be one of"},
		{"content too long", CreatePostInput{UserID: "u1", Content: strings.Repeat("a", 5001), Mood: models.MoodCalm}, "content must be at most 5000 characters"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreatePost(ctx, tt.input)
			require.Error(t, err)
			assert.True(t, models.IsCode(err, models.CodeValidation))
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	var count int64
	require.NoError(t, db.Model(&models.AuraActivity{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestPostService_CreatePostUnknownUserRollsBack(t *testing.T) {
	store, db := newTestStore(t)
	svc := NewPostService(store, nil, nil, "")

	_, err := svc.CreatePost(context.Background(), CreatePostInput{UserID: "ghost", Content: "hi", Mood: models.MoodCalm})
	assert.True(t, models.IsCode(err, models.CodeNotFound))

	var count int64
	require.NoError(t, db.Model(&models.Post{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestPostService_OwnershipEnforced(t *testing.T) {
	store, db := newTestStore(t)
	testutil.CreateUser(t, db, "owner")
	testutil.CreateUser(t, db, "intruder")
	post := testutil.CreatePost(t, db, "owner", models.MoodCalm)
	svc := NewPostService(store, nil, nil, "")
	ctx := context.Background()

	_, err := svc.UpdatePost(ctx, UpdatePostInput{UserID: "intruder", PostID: post.ID, Content: "mine now"})
	assert.True(t, models.IsCode(err, models.CodeForbidden))

	err = svc.DeletePost(ctx, DeletePostInput{UserID: "intruder", PostID: post.ID})
	assert.True(t, models.IsCode(err, models.CodeForbidden))

	updated, err := svc.UpdatePost(ctx, UpdatePostInput{UserID: "owner", PostID: post.ID, Content: "still calm"})
	require.NoError(t, err)
	assert.Equal(t, "still calm", updated.Content)

	require.NoError(t, svc.DeletePost(ctx, DeletePostInput{UserID: "owner", PostID: post.ID}))
	_, err = svc.GetPost(ctx, post.ID)
	assert.True(t, models.IsCode(err, models.CodeNotFound))
}

func TestPostService_WhisperFeedHidesAuthors(t *testing.T) {
	store, db := newTestStore(t)
	testutil.CreateUser(t, db, "u1")
	secret := testutil.CreatePost(t, db, "u1", models.MoodStressed, func(p *models.Post) { p.IsAnonymous = true })
	testutil.CreatePost(t, db, "u1", models.MoodHappy)
	svc := NewPostService(store, nil, nil, "")
	ctx := context.Background()

	whispers, err := svc.ListPosts(ctx, ListPostsInput{Anonymous: true})
	require.NoError(t, err)
	require.Len(t, whispers, 1)
	assert.Empty(t, whispers[0].UserID)
	assert.Nil(t, whispers[0].User)

	single, err := svc.GetPost(ctx, secret.ID)
	require.NoError(t, err)
	assert.Empty(t, single.UserID)

	public, err := svc.ListUserPosts(ctx, "u1", "someone-else", 0, 0)
	require.NoError(t, err)
	assert.Len(t, public, 1)

	own, err := svc.ListUserPosts(ctx, "u1", "u1", 0, 0)
	require.NoError(t, err)
	assert.Len(t, own, 2)

	_, err = svc.ListPosts(ctx, ListPostsInput{Mood: "sleepy"})
	assert.True(t, models.IsCode(err, models.CodeValidation))
}

func TestPostService_SharePost(t *testing.T) {
	store, db := newTestStore(t)
	testutil.CreateUser(t, db, "u1")
	long := strings.Repeat("é", 200)
	post := testutil.CreatePost(t, db, "u1", models.MoodGrateful, func(p *models.Post) { p.Content = long })
	svc := NewPostService(store, nil, nil, "https://aura.example/")

	link, err := svc.SharePost(context.Background(), post.ID)
	require.NoError(t, err)
	assert.Equal(t, "Grateful vibes on Aura", link.Title)
	assert.Equal(t, 140, len([]rune(link.Text)))
	assert.Equal(t, "https://aura.example/post/"+post.ID, link.ShareURL)

	_, err = svc.SharePost(context.Background(), "missing")
	assert.True(t, models.IsCode(err, models.CodeNotFound))
}
