package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"aura/internal/config"
	"aura/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const auraOrigins = "http://localhost:5173,https://aura.example"

// middlewareApp mounts SetupMiddleware in front of a single PATCH/GET route,
// without the database-backed routes.
func middlewareApp(t *testing.T, origins string) *fiber.App {
	t.Helper()
	srv := &Server{config: &config.Config{AllowedOrigins: origins}}

	app := fiber.New()
	srv.SetupMiddleware(app)
	app.Get("/api/mood-circles", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })
	app.Patch("/api/user/profile", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })
	return app
}

func send(t *testing.T, app *fiber.App, method, path, origin string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestSetupMiddleware_CORSOrigins(t *testing.T) {
	app := middlewareApp(t, auraOrigins)

	tests := []struct {
		name       string
		origin     string
		wantOrigin string
	}{
		{name: "dev client", origin: "http://localhost:5173", wantOrigin: "http://localhost:5173"},
		{name: "public site", origin: "https://aura.example", wantOrigin: "https://aura.example"},
		{name: "unknown site", origin: "https://evil.example", wantOrigin: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := send(t, app, http.MethodGet, "/api/mood-circles", tt.origin)
			assert.Equal(t, fiber.StatusOK, resp.StatusCode)
			assert.Equal(t, tt.wantOrigin, resp.Header.Get("Access-Control-Allow-Origin"))
			if tt.wantOrigin != "" {
				assert.Equal(t, "true", resp.Header.Get("Access-Control-Allow-Credentials"))
			}
		})
	}
}

func TestSetupMiddleware_DefaultOriginsIncludeViteDevServer(t *testing.T) {
	app := middlewareApp(t, "")

	resp := send(t, app, http.MethodGet, "/api/mood-circles", "http://127.0.0.1:5173")
	assert.Equal(t, "http://127.0.0.1:5173", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestSetupMiddleware_PreflightAdvertisesAuraMethods(t *testing.T) {
	app := middlewareApp(t, auraOrigins)

	req := httptest.NewRequest(http.MethodOptions, "/api/user/profile", nil)
	req.Header.Set("Origin", "https://aura.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPatch)
	req.Header.Set("Access-Control-Request-Headers", "authorization,content-type")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "https://aura.example", resp.Header.Get("Access-Control-Allow-Origin"))
	methods := resp.Header.Get("Access-Control-Allow-Methods")
	for _, m := range []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete} {
		assert.Contains(t, methods, m)
	}
	headers := resp.Header.Get("Access-Control-Allow-Headers")
	assert.Contains(t, headers, "Authorization")
	assert.Contains(t, headers, "Sec-WebSocket-Key")
	assert.Equal(t, "86400", resp.Header.Get("Access-Control-Max-Age"))
}

func TestSetupMiddleware_GlobalLimiterKeepsCORSAndSkipsPreflight(t *testing.T) {
	app := middlewareApp(t, auraOrigins)

	for i := 0; i < 100; i++ {
		req := httptest.NewRequest(http.MethodPatch, "/api/user/profile", nil)
		req.Header.Set("Origin", "http://localhost:5173")
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		_ = resp.Body.Close()
	}

	limited := send(t, app, http.MethodPatch, "/api/user/profile", "http://localhost:5173")
	assert.Equal(t, fiber.StatusTooManyRequests, limited.StatusCode)
	assert.Equal(t, "http://localhost:5173", limited.Header.Get("Access-Control-Allow-Origin"))
	body := decode[models.ErrorResponse](t, limited)
	assert.Equal(t, "RATE_LIMITED", body.Code)

	preflight := httptest.NewRequest(http.MethodOptions, "/api/user/profile", nil)
	preflight.Header.Set("Origin", "http://localhost:5173")
	preflight.Header.Set("Access-Control-Request-Method", http.MethodPatch)
	resp, err := app.Test(preflight, -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
}
