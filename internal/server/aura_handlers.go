package server

import (
	"github.com/gofiber/fiber/v2"
)

// GetAuraActivities handles GET /api/aura-activities
// @Summary Caller's aura ledger
// @Tags aura
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Page size (default 50)"
// @Success 200 {array} models.AuraActivity
// @Router /aura-activities [get]
func (s *Server) GetAuraActivities(c *fiber.Ctx) error {
	page := parsePagination(c, 50)

	activities, err := s.auraService.ListActivities(c.UserContext(), currentUserID(c), page.Limit)
	if err != nil {
		return s.respondError(c, "fetch aura activities", err)
	}
	return c.JSON(activities)
}

// GetAuraSummary handles GET /api/aura/summary
// @Summary Aura tree progress
// @Tags aura
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.AuraSummary
// @Router /aura/summary [get]
func (s *Server) GetAuraSummary(c *fiber.Ctx) error {
	summary, err := s.auraService.Summary(c.UserContext(), currentUserID(c))
	if err != nil {
		return s.respondError(c, "fetch aura summary", err)
	}
	return c.JSON(summary)
}

// GetGlobalMoodStats handles GET /api/mood-stats/global
// @Summary Mood counts for a day
// @Tags mood-stats
// @Produce json
// @Param date query string false "Day as YYYY-MM-DD (default today, UTC)"
// @Success 200 {array} models.GlobalMoodStat
// @Failure 400 {object} models.ErrorResponse
// @Router /mood-stats/global [get]
func (s *Server) GetGlobalMoodStats(c *fiber.Ctx) error {
	stats, err := s.moodStatService.GlobalStats(c.UserContext(), c.Query("date"))
	if err != nil {
		return s.respondError(c, "fetch mood stats", err)
	}
	return c.JSON(stats)
}

// GetRegionMoodStats handles GET /api/mood-stats/region
// @Summary Mood history for a country
// @Tags mood-stats
// @Produce json
// @Param country query string true "Country"
// @Success 200 {array} models.GlobalMoodStat
// @Failure 400 {object} models.ErrorResponse
// @Router /mood-stats/region [get]
func (s *Server) GetRegionMoodStats(c *fiber.Ctx) error {
	stats, err := s.moodStatService.RegionStats(c.UserContext(), c.Query("country"))
	if err != nil {
		return s.respondError(c, "fetch region mood stats", err)
	}
	return c.JSON(stats)
}
