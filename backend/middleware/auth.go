package middleware

import (
	"admissions/backend/config"
	"admissions/backend/models"
	"admissions/backend/services"
	"admissions/backend/utils"

	"github.com/gofiber/fiber/v2"
)

const userKey = "user"

// AuthMiddleware resolves the bearer token to a live profile and stores it in
// the request locals. Tokens of deleted profiles are rejected.
func AuthMiddleware(cfg *config.Config, svc *services.Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := utils.ExtractUserIDFromToken(c, cfg)
		if err != nil {
			return utils.RespondError(c, err)
		}

		user, err := svc.GetProfile(c.UserContext(), userID)
		if err != nil {
			if utils.KindOf(err) == utils.KindNotFound {
				err = utils.UnauthorizedErr("Unauthorized")
			}
			return utils.RespondError(c, err)
		}

		c.Locals(userKey, user)
		return c.Next()
	}
}

// AdminMiddleware lets through only profiles holding at least one capability.
// Individual operations still check the capability they need.
func AdminMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := CurrentUser(c)
		if user == nil {
			return utils.RespondError(c, utils.UnauthorizedErr("Unauthorized"))
		}
		if user.Privilege == 0 {
			return utils.RespondError(c, utils.ForbiddenErr("Forbidden - manager access required"))
		}
		return c.Next()
	}
}

// CurrentUser returns the profile stored by AuthMiddleware, or nil.
func CurrentUser(c *fiber.Ctx) *models.UserProfile {
	user, _ := c.Locals(userKey).(*models.UserProfile)
	return user
}
