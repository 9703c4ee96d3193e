package service

import (
	"context"
	"testing"

	"aura/internal/models"
	"aura/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoodCircleService_MemberCountTracksMembers(t *testing.T) {
	store, db := newTestStore(t)
	testutil.CreateUser(t, db, "founder")
	testutil.CreateUser(t, db, "joiner")
	svc := NewMoodCircleService(store)
	ctx := context.Background()

	circle, err := svc.CreateCircle(ctx, CreateCircleInput{UserID: "founder", Name: " Night owls ", Mood: models.MoodCalm})
	require.NoError(t, err)
	assert.Equal(t, "Night owls", circle.Name)
	assert.Equal(t, 1, circle.MemberCount)

	joined, err := svc.JoinCircle(ctx, "joiner", circle.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, joined.MemberCount)

	joined, err = svc.JoinCircle(ctx, "joiner", circle.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, joined.MemberCount)

	left, err := svc.LeaveCircle(ctx, "joiner", circle.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, left.MemberCount)

	left, err = svc.LeaveCircle(ctx, "joiner", circle.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, left.MemberCount)

	_, err = svc.JoinCircle(ctx, "joiner", "missing")
	assert.True(t, models.IsCode(err, models.CodeNotFound))
}

func TestMoodCircleService_List(t *testing.T) {
	store, db := newTestStore(t)
	testutil.CreateUser(t, db, "u1")
	svc := NewMoodCircleService(store)
	ctx := context.Background()

	_, err := svc.CreateCircle(ctx, CreateCircleInput{UserID: "u1", Name: "Calm corner", Mood: models.MoodCalm})
	require.NoError(t, err)
	_, err = svc.CreateCircle(ctx, CreateCircleInput{UserID: "u1", Name: "Hype", Mood: models.MoodExcited})
	require.NoError(t, err)

	all, err := svc.ListCircles(ctx, "", 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	calm, err := svc.ListCircles(ctx, "CALM", 0)
	require.NoError(t, err)
	require.Len(t, calm, 1)
	assert.Equal(t, "Calm corner", calm[0].Name)

	one, err := svc.ListCircles(ctx, "", 1)
	require.NoError(t, err)
	assert.Len(t, one, 1)

	_, err = svc.ListCircles(ctx, "bored", 0)
	assert.True(t, models.IsCode(err, models.CodeValidation))

	_, err = svc.CreateCircle(ctx, CreateCircleInput{UserID: "u1", Mood: models.MoodCalm})
	assert.True(t, models.IsCode(err, models.CodeValidation))
}
