package repository

import (
	"context"
	"testing"

	"aura/internal/models"
	"aura/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuraRepository_AppendKeepsTotalsInSync(t *testing.T) {
	db := testutil.NewTestDB(t)
	store := NewStore(db)
	ctx := context.Background()
	testutil.CreateUser(t, db, "u1")

	awards := []int{models.PointsSharedExperience, models.PointsTimeCapsule, models.PointsSupportiveGesture}
	for _, pts := range awards {
		err := store.Transaction(ctx, func(tx Store) error {
			return tx.Aura().Append(ctx, &models.AuraActivity{UserID: "u1", Type: models.ActivitySharedExperience, Points: pts})
		})
		require.NoError(t, err)
	}

	user, err := store.Users().GetByID(ctx, "u1")
	require.NoError(t, err)
	total, err := store.Aura().LedgerTotal(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 30, total)
	assert.Equal(t, total, user.AuraPoints)
	assert.Equal(t, 1, user.TreeLevel)

	activities, err := store.Aura().ListByUser(ctx, "u1", 50)
	require.NoError(t, err)
	assert.Len(t, activities, 3)
}

func TestAuraRepository_AppendCrossesLevel(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewAuraRepository(db)
	ctx := context.Background()
	testutil.CreateUser(t, db, "u1")
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", "u1").Update("aura_points", 495).Error)

	require.NoError(t, repo.Append(ctx, &models.AuraActivity{UserID: "u1", Type: models.ActivitySupportiveGesture, Points: 5}))

	var user models.User
	require.NoError(t, db.First(&user, "id = ?", "u1").Error)
	assert.Equal(t, 500, user.AuraPoints)
	assert.Equal(t, 2, user.TreeLevel)
}

func TestAuraRepository_AppendUnknownUserRollsBack(t *testing.T) {
	db := testutil.NewTestDB(t)
	store := NewStore(db)
	ctx := context.Background()

	err := store.Transaction(ctx, func(tx Store) error {
		return tx.Aura().Append(ctx, &models.AuraActivity{UserID: "ghost", Type: models.ActivityTimeCapsule, Points: 15})
	})
	assert.True(t, models.IsCode(err, models.CodeNotFound))

	var count int64
	require.NoError(t, db.Model(&models.AuraActivity{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestAuraRepository_DriftedAndSetPoints(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewAuraRepository(db)
	ctx := context.Background()
	testutil.CreateUser(t, db, "steady")
	testutil.CreateUser(t, db, "drifted")

	require.NoError(t, repo.Append(ctx, &models.AuraActivity{UserID: "steady", Type: models.ActivitySharedExperience, Points: 10}))
	require.NoError(t, repo.Append(ctx, &models.AuraActivity{UserID: "drifted", Type: models.ActivitySharedExperience, Points: 10}))
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", "drifted").Update("aura_points", 999).Error)

	drift, err := repo.Drifted(ctx, 100)
	require.NoError(t, err)
	require.Len(t, drift, 1)
	assert.Equal(t, PointsDrift{UserID: "drifted", AuraPoints: 999, LedgerPoints: 10}, drift[0])

	require.NoError(t, repo.SetPoints(ctx, "drifted", drift[0].LedgerPoints))
	drift, err = repo.Drifted(ctx, 100)
	require.NoError(t, err)
	assert.Empty(t, drift)
}
