package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"aura/internal/config"
	"aura/internal/middleware"
	"aura/internal/testutil"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testJWTSecret = "test-secret-key-12345678901234567890123456789012"

type testEnv struct {
	server *Server
	app    *fiber.App
	db     *gorm.DB
	redis  *miniredis.Miniredis
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Env:                "test",
		Port:               "0",
		JWTSecret:          testJWTSecret,
		AuthIssuer:         "aura-auth",
		AuthAudience:       "aura-client",
		SessionCookie:      "aura_session",
		AllowedOrigins:     "http://localhost:5173",
		UploadDir:          t.TempDir(),
		UploadMaxBytes:     1024 * 1024,
		PublicBaseURL:      "https://aura.example",
		WSMaxConnections:   100,
		WSInboundPerSecond: 50,
	}
}

func newTestEnv(t *testing.T, mutate ...func(*config.Config)) *testEnv {
	t.Helper()

	cfg := testConfig(t)
	for _, fn := range mutate {
		fn(cfg)
	}

	db := testutil.NewTestDB(t)
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	s, err := NewServerWithDeps(cfg, db, rdb)
	require.NoError(t, err)

	return &testEnv{server: s, app: s.App(), db: db, redis: mr}
}

// token mints a session token for userID the way the identity bridge does.
func (e *testEnv) token(t *testing.T, userID string) string {
	t.Helper()
	claims := middleware.SessionClaims{
		Email:     userID + "@aura.test",
		GivenName: "Test",
	}
	claims.Subject = userID
	tok, err := e.server.verifier.Issue(claims, time.Hour)
	require.NoError(t, err)
	return tok
}

// do sends a JSON request and returns the response. body may be nil.
func (e *testEnv) do(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}
