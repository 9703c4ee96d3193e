package server

import (
	"net/http"
	"testing"
	"time"

	"aura/internal/config"
	"aura/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createCapsule(t *testing.T, env *testEnv, token string, body map[string]any) models.TimeCapsule {
	t.Helper()
	resp := env.do(t, http.MethodPost, "/api/time-capsules", token, body)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	return decode[models.TimeCapsule](t, resp)
}

func TestTimeCapsuleHandlers_Lifecycle(t *testing.T) {
	env := newTestEnv(t)
	owner := env.token(t, "owner")
	other := env.token(t, "other")

	unlockAt := time.Now().Add(30 * 24 * time.Hour).UTC().Truncate(time.Second)
	capsule := createCapsule(t, env, owner, map[string]any{
		"content":    "dear future me",
		"mood":       "reflective",
		"unlockDate": unlockAt,
		"isPublic":   true,
	})
	assert.False(t, capsule.IsOpened)
	assert.True(t, capsule.UnlockDate.Equal(unlockAt))

	resp := env.do(t, http.MethodGet, "/api/time-capsules/user", owner, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]models.TimeCapsule](t, resp), 1)

	resp = env.do(t, http.MethodGet, "/api/time-capsules/community", "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]models.TimeCapsule](t, resp), 1)

	resp = env.do(t, http.MethodPut, "/api/time-capsules/"+capsule.ID, owner, map[string]any{"content": "dear future me, again"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "dear future me, again", decode[models.TimeCapsule](t, resp).Content)

	resp = env.do(t, http.MethodPost, "/api/time-capsules/"+capsule.ID+"/unlock", other, nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp = env.do(t, http.MethodPost, "/api/time-capsules/"+capsule.ID+"/unlock", owner, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	opened := decode[models.TimeCapsule](t, resp)
	assert.True(t, opened.IsOpened)
	require.NotNil(t, opened.OpenedAt)

	resp = env.do(t, http.MethodGet, "/api/time-capsules/unlocked", owner, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]models.TimeCapsule](t, resp), 1)

	// Opened capsules leave the community shelf and can no longer be edited.
	resp = env.do(t, http.MethodGet, "/api/time-capsules/community", "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Empty(t, decode[[]models.TimeCapsule](t, resp))

	resp = env.do(t, http.MethodPut, "/api/time-capsules/"+capsule.ID, owner, map[string]any{"content": "too late"})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = env.do(t, http.MethodDelete, "/api/time-capsules/"+capsule.ID, other, nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp = env.do(t, http.MethodDelete, "/api/time-capsules/"+capsule.ID, owner, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "Time capsule deleted", decode[map[string]string](t, resp)["message"])

	resp = env.do(t, http.MethodPost, "/api/time-capsules/"+capsule.ID+"/unlock", owner, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestTimeCapsuleHandlers_RejectsPastUnlockDate(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t, "owner")

	resp := env.do(t, http.MethodPost, "/api/time-capsules", token, map[string]any{
		"content":    "already late",
		"mood":       "calm",
		"unlockDate": time.Now().Add(-time.Hour).UTC(),
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	body := decode[models.ErrorResponse](t, resp)
	assert.Equal(t, "unlockDate must be in the future", body.Message)
}

func TestTimeCapsuleHandlers_UnlockDateGate(t *testing.T) {
	env := newTestEnv(t, func(cfg *config.Config) {
		cfg.FeatureFlags = "capsule_unlock_date_gate=true"
	})
	token := env.token(t, "owner")

	capsule := createCapsule(t, env, token, map[string]any{
		"content":    "not yet",
		"mood":       "curious",
		"unlockDate": time.Now().Add(48 * time.Hour).UTC(),
	})

	resp := env.do(t, http.MethodPost, "/api/time-capsules/"+capsule.ID+"/unlock", token, nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, decode[models.ErrorResponse](t, resp).Message, "cannot be opened before")
}

func TestTimeCapsuleHandlers_CommunityLimit(t *testing.T) {
	env := newTestEnv(t)
	owner := env.token(t, "owner")

	for i := 1; i <= 12; i++ {
		createCapsule(t, env, owner, map[string]any{
			"content":    "letter",
			"mood":       "grateful",
			"unlockDate": time.Now().Add(time.Duration(i) * 24 * time.Hour).UTC(),
			"isPublic":   true,
		})
	}

	tests := []struct {
		query string
		want  int
	}{
		{query: "", want: 10},
		{query: "?limit=3", want: 3},
		{query: "?limit=50", want: 12},
		{query: "?limit=0", want: 10},
	}
	for _, tt := range tests {
		resp := env.do(t, http.MethodGet, "/api/time-capsules/community"+tt.query, "", nil)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Len(t, decode[[]models.TimeCapsule](t, resp), tt.want, tt.query)
	}
}
