package server

import (
	"aura/internal/service"

	"github.com/gofiber/fiber/v2"
)

// UpdateProfile handles PATCH /api/user/profile
// @Summary Update profile
// @Description Only the fields present in the body are changed
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.UpdateProfileInput true "Profile fields"
// @Success 200 {object} models.User
// @Failure 400 {object} models.ErrorResponse
// @Router /user/profile [patch]
func (s *Server) UpdateProfile(c *fiber.Ctx) error {
	var req service.UpdateProfileInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	req.UserID = currentUserID(c)

	user, err := s.userService.UpdateProfile(c.UserContext(), req)
	if err != nil {
		return s.respondError(c, "update profile", err)
	}

	return c.JSON(user)
}

// GetUserPosts handles GET /api/users/:id/posts
// @Summary Posts by user
// @Description Anonymous posts are only included when the caller is the author
// @Tags users
// @Produce json
// @Param id path string true "User ID"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {array} models.Post
// @Router /users/{id}/posts [get]
func (s *Server) GetUserPosts(c *fiber.Ctx) error {
	viewerID, _ := s.optionalUserID(c)
	return s.listUserPosts(c, c.Params("id"), viewerID)
}

// GetPostsByUser handles GET /api/posts/user/:userId, the session-bound
// listing used by the profile page.
// @Summary Posts by user (authenticated)
// @Description Anonymous posts are only included when the caller is the author
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param userId path string true "User ID"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {array} models.Post
// @Router /posts/user/{userId} [get]
func (s *Server) GetPostsByUser(c *fiber.Ctx) error {
	return s.listUserPosts(c, c.Params("userId"), currentUserID(c))
}

// User ids are identity provider subjects, not UUIDs.
func (s *Server) listUserPosts(c *fiber.Ctx, userID, viewerID string) error {
	page := parsePagination(c, 20)

	posts, err := s.postService.ListUserPosts(c.UserContext(), userID, viewerID, page.Limit, page.Offset)
	if err != nil {
		return s.respondError(c, "fetch posts", err)
	}

	return c.JSON(posts)
}
