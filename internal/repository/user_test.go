package repository

import (
	"context"
	"regexp"
	"testing"

	"aura/internal/models"
	"aura/internal/testutil"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository_GetByID_NotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE id = $1 ORDER BY "users"."id" LIMIT $2`)).
		WithArgs("missing", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	user, err := repo.GetByID(context.Background(), "missing")
	assert.Nil(t, user)
	assert.True(t, models.IsCode(err, models.CodeNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_UpsertKeepsAuraFields(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	email := "ada@aura.test"
	require.NoError(t, repo.Upsert(ctx, &models.User{ID: "sub-1", Email: &email, FirstName: "Ada"}))
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", "sub-1").
		Updates(map[string]interface{}{"aura_points": 740, "tree_level": 2, "display_name": "ada"}).Error)

	newEmail := "ada@lovelace.test"
	require.NoError(t, repo.Upsert(ctx, &models.User{ID: "sub-1", Email: &newEmail, FirstName: "Augusta"}))

	user, err := repo.GetByID(ctx, "sub-1")
	require.NoError(t, err)
	assert.Equal(t, "Augusta", user.FirstName)
	assert.Equal(t, newEmail, *user.Email)
	assert.Equal(t, 740, user.AuraPoints)
	assert.Equal(t, 2, user.TreeLevel)
	assert.Equal(t, "ada", user.DisplayName)
}

func TestUserRepository_UpdateProfile(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()
	testutil.CreateUser(t, db, "sub-2")

	bio := "chasing calm"
	tree := "willow"
	user, err := repo.UpdateProfile(ctx, "sub-2", ProfileUpdate{Bio: &bio, TreeType: &tree})
	require.NoError(t, err)
	assert.Equal(t, bio, user.Bio)
	assert.Equal(t, tree, user.TreeType)
	assert.Equal(t, "Test", user.FirstName)

	_, err = repo.UpdateProfile(ctx, "nobody", ProfileUpdate{Bio: &bio})
	assert.True(t, models.IsCode(err, models.CodeNotFound))
}
