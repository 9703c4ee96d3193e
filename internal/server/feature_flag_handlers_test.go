package server

import (
	"net/http"
	"testing"

	"aura/internal/config"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetFeatureFlags(t *testing.T) {
	env := newTestEnv(t, func(cfg *config.Config) {
		cfg.FeatureFlags = "mood_room_filtering=on, capsule_unlock_date_gate=0"
	})

	resp := env.do(t, http.MethodGet, "/api/feature-flags", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/api/feature-flags", env.token(t, "flag-user"), nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := decode[struct {
		Raw       map[string]string `json:"raw"`
		Evaluated map[string]bool   `json:"evaluated"`
	}](t, resp)
	assert.Equal(t, map[string]string{
		"mood_room_filtering":      "on",
		"capsule_unlock_date_gate": "0",
	}, body.Raw)
	assert.True(t, body.Evaluated["mood_room_filtering"])
	assert.False(t, body.Evaluated["capsule_unlock_date_gate"])
}
