package seed

import (
	"strings"
	"testing"
	"time"

	"aura/internal/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFactory_BuildPost(t *testing.T) {
	f := NewFactory(42, 30)
	user := f.BuildUser()
	require.True(t, strings.HasPrefix(user.ID, "seed|"))
	require.NotNil(t, user.Email)

	for i := 0; i < 50; i++ {
		p := f.BuildPost(user, i%2 == 0)
		assert.Equal(t, user.ID, p.UserID)
		assert.True(t, p.Mood.Valid())
		assert.NotEmpty(t, p.Content)
		assert.Equal(t, i%2 == 0, p.IsAnonymous)
		assert.WithinDuration(t, time.Now(), p.CreatedAt, 31*24*time.Hour)
		assert.False(t, p.CreatedAt.After(time.Now()))
		if p.Location == "" {
			assert.Nil(t, p.Latitude)
		}
	}
}

func TestFactory_BuildCapsuleIsInTheFuture(t *testing.T) {
	f := NewFactory(7, 0)
	user := f.BuildUser()
	for i := 0; i < 20; i++ {
		c := f.BuildCapsule(user)
		assert.True(t, c.UnlockDate.After(time.Now().Add(6*24*time.Hour)))
		assert.False(t, c.IsOpened)
	}
}

func TestFactory_IsReproducible(t *testing.T) {
	a := NewFactory(99, 10).BuildUser()
	b := NewFactory(99, 10).BuildUser()
	assert.Equal(t, a.ID, b.ID)
	assert.Equal(t, a.FirstName, b.FirstName)
}

func TestFactory_Pick(t *testing.T) {
	f := NewFactory(1, 0)

	picked := f.Pick(5, 3, 2)
	assert.Len(t, picked, 3)
	assert.NotContains(t, picked, 2)
	seen := map[int]bool{}
	for _, i := range picked {
		assert.False(t, seen[i])
		seen[i] = true
	}

	assert.Len(t, f.Pick(3, 10, 0), 2)
	assert.Empty(t, f.Pick(0, 3, -1))
}

func TestFactory_VibeTypeIsOfferedByClient(t *testing.T) {
	f := NewFactory(3, 30)
	for i := 0; i < 20; i++ {
		vibe := f.VibeType()
		assert.Contains(t, validation.KnownVibeTypes, vibe)
		assert.NoError(t, validation.ValidateVibeType(vibe))
	}
}
