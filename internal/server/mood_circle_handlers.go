package server

import (
	"aura/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetMoodCircles handles GET /api/mood-circles
// @Summary List mood circles
// @Tags mood-circles
// @Produce json
// @Param mood query string false "Mood filter"
// @Param limit query int false "Page size (default 20)"
// @Success 200 {array} models.MoodCircle
// @Failure 400 {object} models.ErrorResponse
// @Router /mood-circles [get]
func (s *Server) GetMoodCircles(c *fiber.Ctx) error {
	page := parsePagination(c, service.CircleListLimit)

	circles, err := s.circleService.ListCircles(c.UserContext(), c.Query("mood"), page.Limit)
	if err != nil {
		return s.respondError(c, "fetch mood circles", err)
	}
	return c.JSON(circles)
}

// CreateMoodCircle handles POST /api/mood-circles
// @Summary Create a mood circle
// @Description The creator joins automatically
// @Tags mood-circles
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.CreateCircleInput true "Circle"
// @Success 201 {object} models.MoodCircle
// @Failure 400 {object} models.ErrorResponse
// @Router /mood-circles [post]
func (s *Server) CreateMoodCircle(c *fiber.Ctx) error {
	var req service.CreateCircleInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	req.UserID = currentUserID(c)

	circle, err := s.circleService.CreateCircle(c.UserContext(), req)
	if err != nil {
		return s.respondError(c, "create mood circle", err)
	}
	return c.Status(fiber.StatusCreated).JSON(circle)
}

// JoinMoodCircle handles POST /api/mood-circles/:id/join
// @Summary Join a mood circle
// @Tags mood-circles
// @Produce json
// @Security BearerAuth
// @Param id path string true "Circle ID"
// @Success 200 {object} models.MoodCircle
// @Failure 404 {object} models.ErrorResponse
// @Router /mood-circles/{id}/join [post]
func (s *Server) JoinMoodCircle(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	circle, err := s.circleService.JoinCircle(c.UserContext(), currentUserID(c), id)
	if err != nil {
		return s.respondError(c, "join mood circle", err)
	}
	return c.JSON(circle)
}

// LeaveMoodCircle handles POST /api/mood-circles/:id/leave
// @Summary Leave a mood circle
// @Tags mood-circles
// @Produce json
// @Security BearerAuth
// @Param id path string true "Circle ID"
// @Success 200 {object} models.MoodCircle
// @Failure 404 {object} models.ErrorResponse
// @Router /mood-circles/{id}/leave [post]
func (s *Server) LeaveMoodCircle(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	circle, err := s.circleService.LeaveCircle(c.UserContext(), currentUserID(c), id)
	if err != nil {
		return s.respondError(c, "leave mood circle", err)
	}
	return c.JSON(circle)
}
