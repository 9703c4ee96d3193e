package server

import (
	"net/http"
	"testing"

	"aura/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoodCircleHandlers(t *testing.T) {
	env := newTestEnv(t)
	creator := env.token(t, "creator")
	member := env.token(t, "member")

	resp := env.do(t, http.MethodPost, "/api/mood-circles", creator, map[string]any{
		"name":        "Sunday Calm",
		"description": "slow mornings",
		"mood":        "calm",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	circle := decode[models.MoodCircle](t, resp)
	assert.Equal(t, "creator", circle.CreatedBy)
	assert.Equal(t, 1, circle.MemberCount)

	resp = env.do(t, http.MethodPost, "/api/mood-circles/"+circle.ID+"/join", member, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, 2, decode[models.MoodCircle](t, resp).MemberCount)

	t.Run("joining twice keeps one membership", func(t *testing.T) {
		resp := env.do(t, http.MethodPost, "/api/mood-circles/"+circle.ID+"/join", member, nil)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Equal(t, 2, decode[models.MoodCircle](t, resp).MemberCount)
	})

	t.Run("list filters by mood", func(t *testing.T) {
		resp := env.do(t, http.MethodGet, "/api/mood-circles?mood=calm", "", nil)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Len(t, decode[[]models.MoodCircle](t, resp), 1)

		resp = env.do(t, http.MethodGet, "/api/mood-circles?mood=excited", "", nil)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Empty(t, decode[[]models.MoodCircle](t, resp))
	})

	t.Run("list honours limit", func(t *testing.T) {
		resp := env.do(t, http.MethodPost, "/api/mood-circles", creator, map[string]any{"name": "Hype Squad", "mood": "excited"})
		require.Equal(t, fiber.StatusCreated, resp.StatusCode)

		resp = env.do(t, http.MethodGet, "/api/mood-circles", "", nil)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		all := decode[[]models.MoodCircle](t, resp)
		require.Len(t, all, 2)

		resp = env.do(t, http.MethodGet, "/api/mood-circles?limit=1", "", nil)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		top := decode[[]models.MoodCircle](t, resp)
		require.Len(t, top, 1)
		assert.Equal(t, circle.ID, top[0].ID, "largest circle first")
	})

	resp = env.do(t, http.MethodPost, "/api/mood-circles/"+circle.ID+"/leave", member, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, decode[models.MoodCircle](t, resp).MemberCount)

	resp = env.do(t, http.MethodPost, "/api/mood-circles/00000000-0000-0000-0000-000000000000/join", member, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp = env.do(t, http.MethodPost, "/api/mood-circles", creator, map[string]any{"name": "", "mood": "calm"})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
