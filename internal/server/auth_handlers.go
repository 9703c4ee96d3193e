package server

import (
	"time"

	"aura/internal/cache"
	"aura/internal/middleware"
	"aura/internal/models"
	"aura/internal/observability"

	"github.com/gofiber/fiber/v2"
)

// GetCurrentUser handles GET /api/auth/user
// @Summary Current user
// @Description Returns the signed-in user, created on first sight from the session claims
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.User
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/user [get]
func (s *Server) GetCurrentUser(c *fiber.Ctx) error {
	if user, ok := c.Locals(localsUser).(*models.User); ok && user != nil {
		return c.JSON(user)
	}

	user, err := s.userService.GetUser(c.UserContext(), currentUserID(c))
	if err != nil {
		return s.respondError(c, "fetch user", err)
	}
	return c.JSON(user)
}

// Logout handles POST /api/auth/logout
// @Summary Logout
// @Description Revokes the current session token until it expires
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object{message=string}
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/logout [post]
func (s *Server) Logout(c *fiber.Ctx) error {
	claims, ok := c.Locals(localsClaims).(*middleware.SessionClaims)
	if ok && claims.ID != "" && s.redis != nil {
		ttl := time.Hour
		if claims.ExpiresAt != nil {
			ttl = time.Until(claims.ExpiresAt.Time)
		}
		if ttl > 0 {
			if err := s.redis.Set(c.UserContext(), cache.BlacklistKey(claims.ID), "1", ttl).Err(); err != nil {
				observability.RedisErrorRate.WithLabelValues("blacklist").Inc()
				return s.respondError(c, "logout", models.NewInternalError(err))
			}
		}
	}

	// The next login re-syncs profile claims.
	uid := currentUserID(c)
	cache.Invalidate(c.UserContext(), s.redis, cache.UserKey(uid), cache.UserSyncKey(uid))

	if s.config.SessionCookie != "" {
		c.Cookie(&fiber.Cookie{
			Name:     s.config.SessionCookie,
			Value:    "",
			Path:     "/",
			Expires:  time.Unix(0, 0),
			HTTPOnly: true,
			Secure:   s.config.IsProduction(),
			SameSite: fiber.CookieSameSiteLaxMode,
		})
	}

	return c.JSON(fiber.Map{"message": "Logged out"})
}
