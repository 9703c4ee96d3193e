package seed

import (
	"context"
	"testing"

	"aura/internal/models"
	"aura/internal/repository"
	"aura/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeeder_CirclesIsIdempotent(t *testing.T) {
	db := testutil.NewTestDB(t)
	s, err := NewSeeder(db, Options{RandSeed: 1})
	require.NoError(t, err)
	ctx := context.Background()

	first, err := s.Circles(ctx)
	require.NoError(t, err)
	second, err := s.Circles(ctx)
	require.NoError(t, err)

	require.Len(t, second, len(s.Catalog().Circles))
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
	}

	var count int64
	require.NoError(t, db.Model(&models.MoodCircle{}).Count(&count).Error)
	assert.Equal(t, int64(len(s.Catalog().Circles)), count)
}

func TestSeeder_ApplyKeepsLedgerConsistent(t *testing.T) {
	db := testutil.NewTestDB(t)
	s, err := NewSeeder(db, Options{RandSeed: 5})
	require.NoError(t, err)
	ctx := context.Background()

	preset := Preset{Name: "test", Users: 5, PostsPerUser: 2, AnonymousRatio: 0.5, CapsulesPerUser: 1, VibesPerPost: 2, CircleJoins: 2, MaxDays: 10}
	summary, err := s.Apply(ctx, preset)
	require.NoError(t, err)

	assert.Equal(t, 5, summary.Users)
	assert.Equal(t, 10, summary.Posts)
	assert.Equal(t, 5, summary.Capsules)
	assert.Equal(t, 20, summary.Vibes)
	assert.Equal(t, 10, summary.Members)

	var posts, vibes int64
	require.NoError(t, db.Model(&models.Post{}).Count(&posts).Error)
	require.NoError(t, db.Model(&models.Vibe{}).Count(&vibes).Error)
	assert.Equal(t, int64(10), posts)
	assert.Equal(t, int64(20), vibes)

	// Every user's cached total matches the ledger.
	drift, err := repository.NewStore(db).Aura().Drifted(ctx, 100)
	require.NoError(t, err)
	assert.Empty(t, drift)

	var circles []models.MoodCircle
	require.NoError(t, db.Find(&circles).Error)
	total := 0
	for _, c := range circles {
		total += c.MemberCount
	}
	assert.Equal(t, 10, total)
}

func TestSeeder_ClearAll(t *testing.T) {
	db := testutil.NewTestDB(t)
	s, err := NewSeeder(db, Options{RandSeed: 3})
	require.NoError(t, err)
	ctx := context.Background()

	_, err = s.Apply(ctx, Preset{Users: 2, PostsPerUser: 1, VibesPerPost: 1, CircleJoins: 1, MaxDays: 5})
	require.NoError(t, err)
	require.NoError(t, s.ClearAll(ctx))

	for _, model := range clearOrder {
		var count int64
		require.NoError(t, db.Model(model).Count(&count).Error)
		assert.Zero(t, count, "%T", model)
	}
}

func TestSeeder_DryRunWritesNothing(t *testing.T) {
	db := testutil.NewTestDB(t)
	s, err := NewSeeder(db, Options{RandSeed: 9, DryRun: true})
	require.NoError(t, err)

	summary, err := s.Apply(context.Background(), Preset{Users: 3, PostsPerUser: 2, MaxDays: 5})
	require.NoError(t, err)
	assert.Equal(t, 6, summary.Posts)

	var users int64
	require.NoError(t, db.Model(&models.User{}).Count(&users).Error)
	assert.Zero(t, users)
}
