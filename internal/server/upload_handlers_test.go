package server

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"aura/internal/models"
	"aura/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func (e *testEnv) upload(t *testing.T, path, token, field, filename string, content []byte) *http.Response {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	if field != "" {
		part, err := writer.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	} else {
		require.NoError(t, writer.WriteField("note", "no file"))
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestUploadHandlers_Image(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t, "uploader")

	resp := env.upload(t, "/api/upload/image", token, "image", "sunset.png", pngBytes(t, 400, 300))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	uploaded := decode[service.ImageUpload](t, resp)
	assert.Regexp(t, `^/uploads/[0-9a-f-]+\.png$`, uploaded.ImageURL)
	assert.Regexp(t, `^/uploads/[0-9a-f-]+_thumb\.webp$`, uploaded.ThumbnailURL)

	resp = env.do(t, http.MethodGet, uploaded.ImageURL, "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	served, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	cfg, format, err := image.DecodeConfig(bytes.NewReader(served))
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, 400, cfg.Width)

	resp = env.do(t, http.MethodGet, uploaded.ThumbnailURL, "", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestUploadHandlers_Rejections(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t, "uploader")

	tests := []struct {
		name     string
		path     string
		field    string
		filename string
		content  []byte
		message  string
	}{
		{
			name:    "missing file",
			path:    "/api/upload/image",
			message: "No file uploaded",
		},
		{
			name:     "text posing as image",
			path:     "/api/upload/image",
			field:    "image",
			filename: "notes.png",
			content:  []byte("just some plain text"),
			message:  "Only JPEG, PNG, GIF and WebP images are allowed",
		},
		{
			name:     "too large",
			path:     "/api/upload/image",
			field:    "image",
			filename: "huge.png",
			content:  bytes.Repeat([]byte{0x89}, 1024*1024+512*1024),
			message:  "File too large (max 1MB)",
		},
		{
			name:     "image sent as audio",
			path:     "/api/upload/audio",
			field:    "audio",
			filename: "song.exe",
			content:  pngBytes(t, 4, 4),
			message:  "Only MP3, WAV, OGG, WebM and M4A audio is allowed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := env.upload(t, tt.path, token, tt.field, tt.filename, tt.content)
			assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, tt.message, decode[models.ErrorResponse](t, resp).Message)
		})
	}
}

func TestUploadHandlers_Audio(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t, "uploader")

	// Minimal RIFF/WAVE header followed by silence.
	wav := append([]byte("RIFF\x24\x00\x00\x00WAVEfmt "), make([]byte, 64)...)

	resp := env.upload(t, "/api/upload/audio", token, "audio", "hum.wav", wav)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Regexp(t, `^/uploads/[0-9a-f-]+\.wav$`, decode[service.AudioUpload](t, resp).AudioURL)
}

func TestServeUpload_NotFound(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodGet, "/uploads/missing.png", "", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "File not found", decode[models.ErrorResponse](t, resp).Message)

	resp = env.do(t, http.MethodGet, "/uploads/..%2Fetc%2Fpasswd", "", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
