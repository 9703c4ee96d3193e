// Package testutil provides shared fixtures for backend tests.
package testutil

import (
	"context"
	"testing"
	"time"

	"aura/internal/database"
	"aura/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewTestDB opens a private in-memory SQLite database with every persistent
// model migrated.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// Each new connection to :memory: is a fresh database.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.AutoMigrate(db))
	return db
}

// CreateUser inserts a user with the given id.
func CreateUser(t *testing.T, db *gorm.DB, id string) *models.User {
	t.Helper()
	email := id + "@aura.test"
	u := &models.User{ID: id, Email: &email, FirstName: "Test", TreeLevel: 1, TreeType: "oak"}
	require.NoError(t, db.WithContext(context.Background()).Create(u).Error)
	return u
}

// CreatePost inserts a post owned by userID.
func CreatePost(t *testing.T, db *gorm.DB, userID string, mood models.Mood, mutate ...func(*models.Post)) *models.Post {
	t.Helper()
	p := &models.Post{UserID: userID, Content: "feeling " + string(mood), Mood: mood}
	for _, fn := range mutate {
		fn(p)
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

// CreateCapsule inserts a time capsule owned by userID.
func CreateCapsule(t *testing.T, db *gorm.DB, userID string, unlock time.Time, public bool) *models.TimeCapsule {
	t.Helper()
	c := &models.TimeCapsule{
		UserID:     userID,
		Content:    "dear future me",
		Mood:       models.MoodReflective,
		UnlockDate: unlock,
		IsPublic:   public,
	}
	require.NoError(t, db.Create(c).Error)
	return c
}
