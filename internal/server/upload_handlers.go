package server

import (
	"fmt"
	"io"

	"aura/internal/models"
	"aura/internal/service"

	"github.com/gofiber/fiber/v2"
)

// UploadImage handles POST /api/upload/image
// @Summary Upload an image
// @Description Stores the image and a webp thumbnail
// @Tags uploads
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param image formData file true "Image file"
// @Success 200 {object} service.ImageUpload
// @Failure 400 {object} models.ErrorResponse
// @Router /upload/image [post]
func (s *Server) UploadImage(c *fiber.Ctx) error {
	in, err := s.readUpload(c, service.UploadKindImage)
	if err != nil {
		return nil
	}

	uploaded, err := s.uploadService.SaveImage(c.UserContext(), in)
	if err != nil {
		return s.respondError(c, "upload image", err)
	}
	return c.JSON(uploaded)
}

// UploadAudio handles POST /api/upload/audio
// @Summary Upload an audio clip
// @Tags uploads
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param audio formData file true "Audio file"
// @Success 200 {object} service.AudioUpload
// @Failure 400 {object} models.ErrorResponse
// @Router /upload/audio [post]
func (s *Server) UploadAudio(c *fiber.Ctx) error {
	in, err := s.readUpload(c, service.UploadKindAudio)
	if err != nil {
		return nil
	}

	uploaded, err := s.uploadService.SaveAudio(c.UserContext(), in)
	if err != nil {
		return s.respondError(c, "upload audio", err)
	}
	return c.JSON(uploaded)
}

// readUpload reads the multipart file in field. Files over the size cap are
// rejected before they are read into memory.
func (s *Server) readUpload(c *fiber.Ctx, field string) (service.UploadInput, error) {
	file, err := c.FormFile(field)
	if err != nil {
		_ = models.RespondWithError(c, fiber.StatusBadRequest, models.NewValidationError("No file uploaded"))
		return service.UploadInput{}, errResponseWritten
	}

	maxBytes := s.uploadService.MaxBytes()
	if file.Size > maxBytes {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(fmt.Sprintf("File too large (max %dMB)", maxBytes/(1024*1024))))
		return service.UploadInput{}, errResponseWritten
	}

	src, err := file.Open()
	if err != nil {
		_ = models.RespondWithError(c, fiber.StatusBadRequest, models.NewValidationError("Unable to read uploaded file"))
		return service.UploadInput{}, errResponseWritten
	}
	defer func() { _ = src.Close() }()

	content, err := io.ReadAll(io.LimitReader(src, maxBytes+1))
	if err != nil {
		_ = models.RespondWithError(c, fiber.StatusBadRequest, models.NewValidationError("Unable to read uploaded file"))
		return service.UploadInput{}, errResponseWritten
	}

	return service.UploadInput{
		UserID:   currentUserID(c),
		Filename: file.Filename,
		Content:  content,
	}, nil
}
