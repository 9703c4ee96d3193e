package service

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder

	"aura/internal/middleware"
	"aura/internal/models"
	"aura/internal/observability"

	"github.com/chai2010/webp"
	"github.com/google/uuid"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

const (
	DefaultUploadDir   = "./uploads"
	DefaultUploadBytes = 10 * 1024 * 1024
	ThumbnailMaxSize   = 320
	WebPQuality        = 70
)

const (
	UploadKindImage = "image"
	UploadKindAudio = "audio"
)

// UploadInput is one multipart file.
type UploadInput struct {
	UserID   string
	Filename string
	Content  []byte
}

// ImageUpload is returned for a stored image and its thumbnail.
type ImageUpload struct {
	ImageURL     string `json:"imageUrl"`
	ThumbnailURL string `json:"thumbnailUrl"`
}

// AudioUpload is returned for a stored audio clip.
type AudioUpload struct {
	AudioURL string `json:"audioUrl"`
}

type UploadService struct {
	dir      string
	maxBytes int64
}

func NewUploadService(dir string, maxBytes int64) *UploadService {
	if dir == "" {
		dir = DefaultUploadDir
	}
	if maxBytes <= 0 {
		maxBytes = DefaultUploadBytes
	}
	return &UploadService{dir: dir, maxBytes: maxBytes}
}

// Dir is the directory uploads are written to and served from.
func (s *UploadService) Dir() string {
	return s.dir
}

// MaxBytes is the largest accepted upload.
func (s *UploadService) MaxBytes() int64 {
	return s.maxBytes
}

// SaveImage validates an image, stores it under a random name and writes a
// WebP thumbnail next to it.
func (s *UploadService) SaveImage(ctx context.Context, in UploadInput) (*ImageUpload, error) {
	if err := s.checkSize(in); err != nil {
		return nil, s.reject(UploadKindImage, err)
	}

	detected := http.DetectContentType(in.Content)
	if !isAllowedImageMIME(detected) {
		return nil, s.reject(UploadKindImage, models.NewValidationError("Only JPEG, PNG, GIF and WebP images are allowed"))
	}
	decoded, format, err := image.Decode(bytes.NewReader(in.Content))
	if err != nil {
		return nil, s.reject(UploadKindImage, models.NewValidationError("Invalid image file"))
	}

	id := uuid.NewString()
	name := id + "." + extensionForFormat(format)
	thumbName := id + "_thumb.webp"

	thumb, err := encodeWebP(resizeToFit(decoded, ThumbnailMaxSize, ThumbnailMaxSize), WebPQuality)
	if err != nil {
		return nil, s.fail(ctx, UploadKindImage, err)
	}
	if err := s.write(name, in.Content); err != nil {
		return nil, s.fail(ctx, UploadKindImage, err)
	}
	if err := s.write(thumbName, thumb); err != nil {
		_ = os.Remove(filepath.Join(s.dir, name))
		return nil, s.fail(ctx, UploadKindImage, err)
	}

	observability.UploadsTotal.WithLabelValues(UploadKindImage, "ok").Inc()
	return &ImageUpload{
		ImageURL:     PublicUploadPath(name),
		ThumbnailURL: PublicUploadPath(thumbName),
	}, nil
}

// SaveAudio validates and stores an audio clip under a random name.
func (s *UploadService) SaveAudio(ctx context.Context, in UploadInput) (*AudioUpload, error) {
	if err := s.checkSize(in); err != nil {
		return nil, s.reject(UploadKindAudio, err)
	}

	ext := strings.ToLower(filepath.Ext(in.Filename))
	detected := normalizeContentType(http.DetectContentType(in.Content))
	if !isAllowedAudio(detected, ext) {
		return nil, s.reject(UploadKindAudio, models.NewValidationError("Only MP3, WAV, OGG, WebM and M4A audio is allowed"))
	}
	if !allowedAudioExt[ext] {
		ext = extensionForAudio(detected)
	}

	name := uuid.NewString() + ext
	if err := s.write(name, in.Content); err != nil {
		return nil, s.fail(ctx, UploadKindAudio, err)
	}

	observability.UploadsTotal.WithLabelValues(UploadKindAudio, "ok").Inc()
	return &AudioUpload{AudioURL: PublicUploadPath(name)}, nil
}

// PublicUploadPath is the URL path a stored file is served under.
func PublicUploadPath(name string) string {
	return "/uploads/" + name
}

func (s *UploadService) checkSize(in UploadInput) error {
	if len(in.Content) == 0 {
		return models.NewValidationError("No file uploaded")
	}
	if int64(len(in.Content)) > s.maxBytes {
		return models.NewValidationError(fmt.Sprintf("File too large (max %dMB)", s.maxBytes/(1024*1024)))
	}
	return nil
}

func (s *UploadService) write(name string, data []byte) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(s.dir, name), data, 0o644)
}

func (s *UploadService) reject(kind string, err error) error {
	observability.UploadsTotal.WithLabelValues(kind, "rejected").Inc()
	return err
}

func (s *UploadService) fail(ctx context.Context, kind string, err error) error {
	observability.UploadsTotal.WithLabelValues(kind, "error").Inc()
	middleware.Logger.ErrorContext(ctx, "upload failed",
		slog.String("kind", kind),
		slog.String("error", err.Error()),
	)
	return models.NewInternalError(err)
}

func resizeToFit(src image.Image, maxWidth, maxHeight int) image.Image {
	bounds := src.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()
	if w <= 0 || h <= 0 {
		return src
	}
	if w <= maxWidth && h <= maxHeight {
		return src
	}

	scale := float64(maxWidth) / float64(w)
	if scaleH := float64(maxHeight) / float64(h); scaleH < scale {
		scale = scaleH
	}
	newW := max(int(float64(w)*scale), 1)
	newH := max(int(float64(h)*scale), 1)

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, xdraw.Over, nil)
	return dst
}

func encodeWebP(img image.Image, quality int) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if err := webp.Encode(buf, img, &webp.Options{Quality: float32(quality)}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func normalizeContentType(contentType string) string {
	mediaType, _, _ := strings.Cut(contentType, ";")
	return strings.ToLower(strings.TrimSpace(mediaType))
}

func isAllowedImageMIME(contentType string) bool {
	switch normalizeContentType(contentType) {
	case "image/jpeg", "image/png", "image/gif", "image/webp":
		return true
	default:
		return false
	}
}

func extensionForFormat(format string) string {
	switch format {
	case "jpeg":
		return "jpg"
	case "png", "gif", "webp":
		return format
	default:
		return "bin"
	}
}

var allowedAudioExt = map[string]bool{".mp3": true, ".wav": true, ".ogg": true, ".webm": true, ".m4a": true}

func isAllowedAudio(detected, ext string) bool {
	switch detected {
	case "audio/mpeg", "audio/wave", "audio/ogg", "audio/webm", "audio/mp4", "video/webm", "application/ogg":
		return true
	case "video/mp4":
		return ext == ".m4a"
	case "application/octet-stream":
		switch ext {
		case ".m4a", ".mp3", ".wav", ".ogg":
			return true
		}
	}
	return false
}

func extensionForAudio(detected string) string {
	switch detected {
	case "audio/mpeg":
		return ".mp3"
	case "audio/wave":
		return ".wav"
	case "audio/ogg", "application/ogg":
		return ".ogg"
	case "audio/webm", "video/webm":
		return ".webm"
	default:
		return ".m4a"
	}
}
