package service

import (
	"context"
	"sync"
	"testing"

	"aura/internal/models"
	"aura/internal/repository"
	"aura/internal/testutil"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestStore(t *testing.T) (repository.Store, *gorm.DB) {
	t.Helper()
	db := testutil.NewTestDB(t)
	return repository.NewStore(db), db
}

func newTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb, mr
}

func ledgerTotal(t *testing.T, store repository.Store, userID string) int {
	t.Helper()
	total, err := store.Aura().LedgerTotal(context.Background(), userID)
	require.NoError(t, err)
	return total
}

type moodUpdate struct {
	mood     models.Mood
	location string
}

type recordingBroadcaster struct {
	mu      sync.Mutex
	updates []moodUpdate
}

func (b *recordingBroadcaster) BroadcastMoodUpdate(_ context.Context, mood models.Mood, location string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.updates = append(b.updates, moodUpdate{mood: mood, location: location})
}
