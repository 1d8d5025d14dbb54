package controllers

import (
	"strconv"
	"strings"

	"admissions/backend/middleware"
	"admissions/backend/models"
	"admissions/backend/utils"

	"github.com/gofiber/fiber/v2"
)

func actor(c *fiber.Ctx) *models.UserProfile {
	return middleware.CurrentUser(c)
}

func paramID(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 32)
	if err != nil || id == 0 {
		return 0, utils.FieldError(name, "must be a positive integer")
	}
	return uint(id), nil
}

// queryID reads an optional id from the query string; absent means 0.
func queryID(c *fiber.Ctx, name string) (uint, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return 0, nil
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, utils.FieldError(name, "must be a positive integer")
	}
	return uint(id), nil
}

func parseBody(c *fiber.Ctx, out interface{}) error {
	if len(c.Body()) == 0 {
		return nil
	}
	if err := c.BodyParser(out); err != nil {
		return utils.Validation("Cannot parse JSON", nil)
	}
	return nil
}

type idsInput struct {
	IDs []uint `json:"ids"`
}
