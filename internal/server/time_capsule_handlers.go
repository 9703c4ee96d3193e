package server

import (
	"aura/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateCapsule handles POST /api/time-capsules
// @Summary Seal a time capsule
// @Tags time-capsules
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.CreateCapsuleInput true "Capsule"
// @Success 201 {object} models.TimeCapsule
// @Failure 400 {object} models.ErrorResponse
// @Router /time-capsules [post]
func (s *Server) CreateCapsule(c *fiber.Ctx) error {
	var req service.CreateCapsuleInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	req.UserID = currentUserID(c)

	capsule, err := s.capsuleService.CreateCapsule(c.UserContext(), req)
	if err != nil {
		return s.respondError(c, "create time capsule", err)
	}

	return c.Status(fiber.StatusCreated).JSON(capsule)
}

// GetUserCapsules handles GET /api/time-capsules/user
// @Summary Caller's time capsules
// @Tags time-capsules
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.TimeCapsule
// @Router /time-capsules/user [get]
func (s *Server) GetUserCapsules(c *fiber.Ctx) error {
	capsules, err := s.capsuleService.ListUserCapsules(c.UserContext(), currentUserID(c))
	if err != nil {
		return s.respondError(c, "fetch time capsules", err)
	}
	return c.JSON(capsules)
}

// GetUnlockedCapsules handles GET /api/time-capsules/unlocked
// @Summary Caller's opened time capsules
// @Tags time-capsules
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.TimeCapsule
// @Router /time-capsules/unlocked [get]
func (s *Server) GetUnlockedCapsules(c *fiber.Ctx) error {
	capsules, err := s.capsuleService.ListUnlockedCapsules(c.UserContext(), currentUserID(c))
	if err != nil {
		return s.respondError(c, "fetch unlocked time capsules", err)
	}
	return c.JSON(capsules)
}

// GetCommunityCapsules handles GET /api/time-capsules/community
// @Summary Public capsules waiting to open
// @Tags time-capsules
// @Produce json
// @Param limit query int false "Page size (default 10)"
// @Success 200 {array} models.TimeCapsule
// @Router /time-capsules/community [get]
func (s *Server) GetCommunityCapsules(c *fiber.Ctx) error {
	page := parsePagination(c, service.CommunityCapsuleLimit)

	capsules, err := s.capsuleService.ListCommunityCapsules(c.UserContext(), page.Limit)
	if err != nil {
		return s.respondError(c, "fetch community time capsules", err)
	}
	return c.JSON(capsules)
}

// UnlockCapsule handles POST /api/time-capsules/:id/unlock
// @Summary Open a time capsule
// @Tags time-capsules
// @Produce json
// @Security BearerAuth
// @Param id path string true "Capsule ID"
// @Success 200 {object} models.TimeCapsule
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /time-capsules/{id}/unlock [post]
func (s *Server) UnlockCapsule(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	capsule, err := s.capsuleService.UnlockCapsule(c.UserContext(), currentUserID(c), id)
	if err != nil {
		return s.respondError(c, "unlock time capsule", err)
	}
	return c.JSON(capsule)
}

// UpdateCapsule handles PUT /api/time-capsules/:id
// @Summary Edit a sealed time capsule
// @Tags time-capsules
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Capsule ID"
// @Param request body service.UpdateCapsuleInput true "Fields to change"
// @Success 200 {object} models.TimeCapsule
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /time-capsules/{id} [put]
func (s *Server) UpdateCapsule(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req service.UpdateCapsuleInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	req.UserID = currentUserID(c)
	req.CapsuleID = id

	capsule, err := s.capsuleService.UpdateCapsule(c.UserContext(), req)
	if err != nil {
		return s.respondError(c, "update time capsule", err)
	}
	return c.JSON(capsule)
}

// DeleteCapsule handles DELETE /api/time-capsules/:id
// @Summary Delete a time capsule
// @Tags time-capsules
// @Security BearerAuth
// @Param id path string true "Capsule ID"
// @Success 200 {object} object{message=string}
// @Failure 403 {object} models.ErrorResponse
// @Router /time-capsules/{id} [delete]
func (s *Server) DeleteCapsule(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.capsuleService.DeleteCapsule(c.UserContext(), currentUserID(c), id); err != nil {
		return s.respondError(c, "delete time capsule", err)
	}
	return c.JSON(fiber.Map{"message": "Time capsule deleted"})
}
