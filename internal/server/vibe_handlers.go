package server

import (
	"aura/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ToggleVibe handles POST /api/vibes
// @Summary Send or take back a vibe
// @Description Sending the same vibe twice removes it
// @Tags vibes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.ToggleVibeInput true "Vibe"
// @Success 200 {object} service.VibeToggleResult
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /vibes [post]
func (s *Server) ToggleVibe(c *fiber.Ctx) error {
	var req service.ToggleVibeInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	req.UserID = currentUserID(c)

	result, err := s.vibeService.ToggleVibe(c.UserContext(), req)
	if err != nil {
		return s.respondError(c, "toggle vibe", err)
	}
	return c.JSON(result)
}

// RemoveVibe handles DELETE /api/vibes/:postId
// @Summary Remove the caller's vibe from a post
// @Tags vibes
// @Security BearerAuth
// @Param postId path string true "Post ID"
// @Success 200 {object} object{message=string}
// @Router /vibes/{postId} [delete]
func (s *Server) RemoveVibe(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "postId")
	if err != nil {
		return nil
	}

	if err := s.vibeService.RemoveVibe(c.UserContext(), currentUserID(c), postID); err != nil {
		return s.respondError(c, "remove vibe", err)
	}
	return c.JSON(fiber.Map{"message": "Vibe removed"})
}

// GetPostVibes handles GET /api/vibes/:postId
// @Summary Vibes on a post
// @Tags vibes
// @Produce json
// @Param postId path string true "Post ID"
// @Success 200 {array} models.Vibe
// @Router /vibes/{postId} [get]
func (s *Server) GetPostVibes(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "postId")
	if err != nil {
		return nil
	}

	vibes, err := s.vibeService.ListPostVibes(c.UserContext(), postID)
	if err != nil {
		return s.respondError(c, "fetch vibes", err)
	}
	return c.JSON(vibes)
}
